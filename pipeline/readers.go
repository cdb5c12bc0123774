package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-books-report/catalog"
	"github.com/aluiziolira/go-books-report/models"
)

// LoadCSV reads a tabular snapshot. Columns are matched by header name.
func LoadCSV(path string) (*catalog.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv snapshot: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"title", "price", "product_url"} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("csv snapshot missing column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	dataset := catalog.New()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		price, err := strconv.ParseFloat(field(record, "price"), 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: price: %w", line, err)
		}
		dataset.Add(models.Book{
			Title:         field(record, "title"),
			Price:         price,
			Availability:  field(record, "availability"),
			StockQuantity: atoiOrZero(field(record, "stock_quantity")),
			Description:   field(record, "description"),
			Rating:        atoiOrZero(field(record, "rating")),
			ProductURL:    field(record, "product_url"),
		})
	}
	return dataset, nil
}

// LoadJSON reads a record-oriented snapshot.
func LoadJSON(path string) (*catalog.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open json snapshot: %w", err)
	}
	var books []models.Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("decode json snapshot: %w", err)
	}
	return catalog.FromBooks(books), nil
}

// Load picks the reader by file extension.
func Load(path string) (*catalog.Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return LoadJSON(path)
	}
	return LoadCSV(path)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
