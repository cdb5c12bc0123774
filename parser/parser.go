// Package parser extracts book fields from catalog and detail page markup.
package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ParseError scopes a failure to one field of one item.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// mojibake left behind when a UTF-8 "£" is decoded as Latin-1.
const mojibakePrefix = "Â"

var ratings = map[string]int{
	"One":   1,
	"Two":   2,
	"Three": 3,
	"Four":  4,
	"Five":  5,
}

var stockPattern = regexp.MustCompile(`\((\d+) available\)`)

// NormalizePrice removes currency symbols, the mis-encoding artifact and
// surrounding whitespace.
func NormalizePrice(price string) string {
	price = strings.ReplaceAll(price, mojibakePrefix, "")
	price = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, price)
	return strings.TrimSpace(price)
}

// ParsePrice converts a displayed price such as "£51.77" to a non-negative
// decimal.
func ParsePrice(text string) (float64, error) {
	cleaned := NormalizePrice(text)
	if cleaned == "" {
		return 0, &ParseError{Field: "price", Value: text, Err: fmt.Errorf("empty")}
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ParseError{Field: "price", Value: text, Err: err}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, &ParseError{Field: "price", Value: text, Err: fmt.Errorf("out of range")}
	}
	return value, nil
}

// NormalizeAvailability trims spacing from the availability text.
func NormalizeAvailability(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// RatingToNumeric converts the class-name rating word to 1-5, or 0 when the
// word is unknown.
func RatingToNumeric(rating string) int {
	return ratings[strings.TrimSpace(rating)]
}

// StockQuantity extracts N from text containing "(N available)", or 0.
func StockQuantity(text string) int {
	m := stockPattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
