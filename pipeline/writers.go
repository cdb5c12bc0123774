// Package pipeline persists catalog snapshots and loads them back.
package pipeline

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/aluiziolira/go-books-report/models"
)

// Header is the column order of the tabular snapshot.
var Header = []string{"title", "price", "availability", "stock_quantity", "description", "rating", "product_url"}

// OutputWriter defines the interface for snapshot output.
type OutputWriter interface {
	Write(books []models.Book) error
	Close() error
	Validate() error
}

// CSVWriter writes records to CSV.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(Header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush csv header: %w", err)
	}

	return &CSVWriter{
		path:   filename,
		file:   f,
		writer: writer,
	}, nil
}

// Write appends books to the CSV output.
func (cw *CSVWriter) Write(books []models.Book) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, book := range books {
		record := []string{
			book.Title,
			strconv.FormatFloat(book.Price, 'f', -1, 64),
			book.Availability,
			strconv.Itoa(book.StockQuantity),
			book.Description,
			strconv.Itoa(book.Rating),
			book.ProductURL,
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		cw.file.Close()
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	return nonEmpty(cw.path, "csv")
}

// JSONWriter writes a single JSON array of records.
type JSONWriter struct {
	path   string
	file   *os.File
	writer *bufio.Writer
	count  int
	mu     sync.Mutex
}

// NewJSONWriter initialises the JSON writer and opens the array.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create json file: %w", err)
	}

	buffer := bufio.NewWriter(f)
	if err := buffer.WriteByte('['); err != nil {
		f.Close()
		return nil, fmt.Errorf("open json array: %w", err)
	}
	return &JSONWriter{
		path:   filename,
		file:   f,
		writer: buffer,
	}, nil
}

// Write appends books to the array.
func (jw *JSONWriter) Write(books []models.Book) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, book := range books {
		data, err := json.Marshal(book)
		if err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
		if jw.count > 0 {
			if err := jw.writer.WriteByte(','); err != nil {
				return fmt.Errorf("write json separator: %w", err)
			}
		}
		if _, err := jw.writer.Write(data); err != nil {
			return fmt.Errorf("write json record: %w", err)
		}
		jw.count++
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close terminates the array, flushes buffers and closes the file.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if _, err := jw.writer.WriteString("]\n"); err != nil {
		jw.file.Close()
		return fmt.Errorf("close json array: %w", err)
	}
	if err := jw.writer.Flush(); err != nil {
		jw.file.Close()
		return fmt.Errorf("flush json writer: %w", err)
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	return nonEmpty(jw.path, "json")
}

func nonEmpty(path, kind string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s file: %w", kind, err)
	}
	if info.Size() <= 0 {
		return fmt.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
