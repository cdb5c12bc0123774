// Package models defines data structures shared by the crawler and the report.
package models

import "time"

// Book is one catalog item. ProductURL is the identity key across the
// whole pipeline.
type Book struct {
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	Availability  string  `json:"availability"`
	StockQuantity int     `json:"stock_quantity"`
	Description   string  `json:"description"`
	Rating        int     `json:"rating"`
	ProductURL    string  `json:"product_url"`
}

// Detail holds the fields only available on an item's own page.
type Detail struct {
	StockQuantity int
	Description   string
}

// ScrapeResult summarizes one crawl run.
type ScrapeResult struct {
	StartTime      time.Time
	EndTime        time.Time
	PageCount      int
	DuplicateCount int
	SkippedCount   int
	DetailFailures int
	StopReason     string
	FailedURLs     []string
}
