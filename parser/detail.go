package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-books-report/models"
)

// ParseDetail extracts the exact stock count and the description from a
// product page. Missing fields keep their zero values.
func ParseDetail(body []byte) (models.Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.Detail{}, fmt.Errorf("parse detail markup: %w", err)
	}

	var detail models.Detail
	if stock := doc.Find("p.instock.availability").First(); stock.Length() > 0 {
		detail.StockQuantity = StockQuantity(stock.Text())
	}
	if anchor := doc.Find("div#product_description").First(); anchor.Length() > 0 {
		detail.Description = strings.TrimSpace(anchor.NextAllFiltered("p").First().Text())
	}
	return detail, nil
}
