package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-books-report/models"
)

// ListingItem is one product summary found on a catalog page. Err is set
// when the item could not be turned into a book; the other items on the
// page are unaffected.
type ListingItem struct {
	Book models.Book
	Err  error
}

// ListingPage is the result of parsing one catalog page. NextURL is empty
// on the last page.
type ListingPage struct {
	Items   []ListingItem
	NextURL string
}

// ParseListing extracts item summaries and the next page link from body.
// Relative links are resolved against base.
func ParseListing(body []byte, base *url.URL) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing markup: %w", err)
	}

	page := &ListingPage{}
	doc.Find("article.product_pod").Each(func(_ int, s *goquery.Selection) {
		page.Items = append(page.Items, parseItem(s, base))
	})

	if href, ok := doc.Find("li.next a").First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		next, err := resolve(base, href)
		if err != nil {
			return nil, fmt.Errorf("resolve next link %q: %w", href, err)
		}
		page.NextURL = next
	}
	return page, nil
}

func parseItem(s *goquery.Selection, base *url.URL) ListingItem {
	link := s.Find("h3 a").First()
	title := strings.TrimSpace(link.AttrOr("title", ""))
	if title == "" {
		return ListingItem{Err: &ParseError{Field: "title", Err: fmt.Errorf("missing")}}
	}

	href := strings.TrimSpace(link.AttrOr("href", ""))
	if href == "" {
		return ListingItem{Err: &ParseError{Field: "product_url", Value: title, Err: fmt.Errorf("missing")}}
	}
	productURL, err := resolve(base, href)
	if err != nil {
		return ListingItem{Err: &ParseError{Field: "product_url", Value: href, Err: err}}
	}

	priceText := s.Find("p.price_color").First().Text()
	price, err := ParsePrice(priceText)
	if err != nil {
		return ListingItem{Err: err}
	}

	return ListingItem{Book: models.Book{
		Title:        title,
		Price:        price,
		Availability: NormalizeAvailability(s.Find("p.instock.availability").First().Text()),
		Rating:       RatingToNumeric(ratingWord(s.Find("p.star-rating").First().AttrOr("class", ""))),
		ProductURL:   productURL,
	}}
}

// ratingWord returns the word after "star-rating" in a class list.
func ratingWord(class string) string {
	fields := strings.Fields(class)
	for i, f := range fields {
		if f == "star-rating" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

func resolve(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}
