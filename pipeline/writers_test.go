package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aluiziolira/go-books-report/models"
)

func sampleBooks() []models.Book {
	return []models.Book{
		{
			Title:         "A Light in the Attic",
			Price:         51.77,
			Availability:  "In stock",
			StockQuantity: 22,
			Description:   "Poems, \"quoted\",\nand a newline",
			Rating:        3,
			ProductURL:    "http://example.test/catalogue/book-1/index.html",
		},
		{
			Title:        "Tipping the Velvet",
			Price:        53.74,
			Availability: "In stock",
			Rating:       1,
			ProductURL:   "http://example.test/catalogue/book-2/index.html",
		},
	}
}

func TestCSVWriterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "books.csv")

	writer, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	if err := writer.Write(sampleBooks()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close csv: %v", err)
	}
	if err := writer.Validate(); err != nil {
		t.Fatalf("validate csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records=%d, want 3", len(records))
	}
	if records[0][0] != "title" || records[0][3] != "stock_quantity" || records[0][6] != "product_url" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	if records[1][1] != "51.77" || records[1][3] != "22" {
		t.Fatalf("unexpected first row: %v", records[1])
	}
}

func TestJSONWriterWritesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	books := sampleBooks()
	if err := writer.Write(books[:1]); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Write(books[1:]); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded []models.Book
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json array: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("json records=%d, want 2", len(decoded))
	}
	if decoded[0] != books[0] {
		t.Fatalf("decoded %+v, want %+v", decoded[0], books[0])
	}
}

func TestJSONWriterEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.json")

	writer, err := NewJSONWriter(path)
	if err != nil {
		t.Fatalf("create json writer: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close json: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var decoded []models.Book
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 0 {
		t.Fatalf("json records=%d, want 0", len(decoded))
	}
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "books.csv")
	jsonPath := filepath.Join(dir, "books.json")

	if err := SaveSnapshot(csvPath, jsonPath, sampleBooks()); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		dataset, err := Load(path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		got := dataset.Books()
		want := sampleBooks()
		if len(got) != len(want) {
			t.Fatalf("%s: books=%d, want %d", path, len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: book %d = %+v, want %+v", path, i, got[i], want[i])
			}
		}
	}
}

func TestSaveSnapshotUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	err := SaveSnapshot(filepath.Join(blocker, "books.csv"), filepath.Join(blocker, "books.json"), sampleBooks())
	if err == nil {
		t.Fatalf("expected error writing under a regular file")
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	if err := os.WriteFile(path, []byte("title,rating\nx,1\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if _, err := LoadCSV(path); err == nil {
		t.Fatalf("expected missing column error")
	}
}
