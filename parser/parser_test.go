package parser

import (
	"errors"
	"testing"
)

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with currency symbol",
			input:    "£51.77",
			expected: "51.77",
		},
		{
			name:     "mis-encoded currency",
			input:    "Â£51.77",
			expected: "51.77",
		},
		{
			name:     "with whitespace",
			input:    "  £10.50  ",
			expected: "10.50",
		},
		{
			name:     "already clean",
			input:    "25.99",
			expected: "25.99",
		},
		{
			name:     "other currency",
			input:    "€12.00",
			expected: "12.00",
		},
		{
			name:     "multiple symbols",
			input:    "£ 99.99 £",
			expected: "99.99",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizePrice(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizePrice(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "pound", input: "£51.77", want: 51.77},
		{name: "mojibake", input: "Â£53.74", want: 53.74},
		{name: "zero", input: "£0.00", want: 0},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "£abc", wantErr: true},
		{name: "negative", input: "-1.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) || parseErr.Field != "price" {
					t.Fatalf("expected price ParseError, got %T %v", err, err)
				}
				return
			}
			if got != tt.want {
				t.Fatalf("ParsePrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRatingToNumeric(t *testing.T) {
	words := map[string]int{
		"One":     1,
		"Two":     2,
		"Three":   3,
		"Four":    4,
		"Five":    5,
		"Zero":    0,
		"Invalid": 0,
		"three":   0,
		"":        0,
	}

	for word, want := range words {
		if got := RatingToNumeric(word); got != want {
			t.Errorf("RatingToNumeric(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestNormalizeAvailability(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with whitespace",
			input:    "  In stock (22 available)  ",
			expected: "In stock (22 available)",
		},
		{
			name:     "markup newlines",
			input:    "\n\n    In stock\n    \n",
			expected: "In stock",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeAvailability(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeAvailability(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestStockQuantity(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "In stock (22 available)", expected: 22},
		{input: "\n  In stock (1 available)\n", expected: 1},
		{input: "In stock", expected: 0},
		{input: "Out of stock", expected: 0},
		{input: "", expected: 0},
	}

	for _, tt := range tests {
		if got := StockQuantity(tt.input); got != tt.expected {
			t.Errorf("StockQuantity(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
