package report

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Canvas is the low-level drawing surface the composer lays a document
// out on. Widths and heights are in millimetres; text is sanitized by the
// implementation.
type Canvas interface {
	AddPage()
	SetFont(style string, size float64)
	SetTextColor(r, g, b int)
	// Cell writes one full-width line and moves below it.
	Cell(h float64, text, align string)
	// TextBlock writes wrapped text.
	TextBlock(h float64, text string)
	// LinkCell writes one line that opens target when clicked.
	LinkCell(h float64, text, target string)
	Image(path string, x, w float64) error
	Rule(w float64)
	Ln(h float64)
	SetY(y float64)
	PageNo() int
	Save(path string) error
}

// PageHook draws repeated page furniture such as headers and footers.
type PageHook func(c Canvas)

const fontFamily = "Helvetica"

type pdfCanvas struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// NewPDFCanvas returns an A4 portrait canvas backed by fpdf. header and
// footer may be nil.
func NewPDFCanvas(header, footer PageHook) Canvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFont(fontFamily, "", 11)

	c := &pdfCanvas{
		pdf: pdf,
		tr:  pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if header != nil {
		pdf.SetHeaderFunc(func() { header(c) })
	}
	if footer != nil {
		pdf.SetFooterFunc(func() { footer(c) })
	}
	return c
}

func (c *pdfCanvas) text(s string) string {
	return c.tr(Sanitize(s))
}

func (c *pdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *pdfCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont(fontFamily, style, size)
}

func (c *pdfCanvas) SetTextColor(r, g, b int) {
	c.pdf.SetTextColor(r, g, b)
}

func (c *pdfCanvas) Cell(h float64, text, align string) {
	c.pdf.CellFormat(0, h, c.text(text), "", 1, align, false, 0, "")
}

func (c *pdfCanvas) TextBlock(h float64, text string) {
	c.pdf.MultiCell(0, h, c.text(text), "", "L", false)
}

func (c *pdfCanvas) LinkCell(h float64, text, target string) {
	c.pdf.CellFormat(0, h, c.text(text), "", 1, "L", false, 0, target)
}

func (c *pdfCanvas) Image(path string, x, w float64) error {
	c.pdf.ImageOptions(path, x, 0, w, 0, true, fpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}, 0, "")
	if c.pdf.Err() {
		err := c.pdf.Error()
		c.pdf.ClearError()
		return fmt.Errorf("embed image %q: %w", path, err)
	}
	return nil
}

func (c *pdfCanvas) Rule(w float64) {
	x, y := c.pdf.GetXY()
	c.pdf.Line(x, y, x+w, y)
}

func (c *pdfCanvas) Ln(h float64) {
	c.pdf.Ln(h)
}

func (c *pdfCanvas) SetY(y float64) {
	c.pdf.SetY(y)
}

func (c *pdfCanvas) PageNo() int {
	return c.pdf.PageNo()
}

func (c *pdfCanvas) Save(path string) error {
	if err := c.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %q: %w", path, err)
	}
	return nil
}
