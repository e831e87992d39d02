// Package documents turns already-fetched records into printable files.
//
// A Document is a format-neutral description (header, labelled fields,
// tables, totals, notes). Renderers draw it as PDF, HTML, spreadsheet HTML
// (.xls) or a native workbook (.xlsx). Generation never touches the network
// and never mutates its inputs.
package documents

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Kind names the family of a document; it prefixes the filename
type Kind string

const (
	KindInvoice      Kind = "invoice"
	KindRegistration Kind = "registration"
	KindDashboard    Kind = "dashboard"
	KindLedger       Kind = "ledger"
	KindReportCard   Kind = "report-card"
)

// Align is the horizontal alignment of a table column
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// SchoolInfo is printed in every document header
type SchoolInfo struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Currency string
}

// Field is a label/value pair
type Field struct {
	Label string
	Value string
}

// Section is a titled group of fields
type Section struct {
	Title  string
	Fields []Field
}

// Column describes one table column. Width is relative to the other columns.
type Column struct {
	Header string
	Align  Align
	Width  float64
}

// Table is a titled grid of preformatted cells
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
	// Footer is an optional last row drawn in bold
	Footer []string
	// Empty is shown instead of rows when there are none
	Empty string
}

// Document is the format-neutral content of a generated file
type Document struct {
	Kind     Kind
	ID       string
	Title    string
	Subtitle string
	School   SchoolInfo
	IssuedAt time.Time
	Sections []Section
	Tables   []Table
	Totals   []Field
	Notes    []string
	// QRCode, when set, is encoded as a QR image by renderers that draw images
	QRCode string
}

// Format is an output file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format
var Formats = []Format{FormatPDF, FormatHTML, FormatXLS, FormatXLSX}

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (supported: pdf, html, xls, xlsx)", s)
}

// File is a rendered document
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Renderer draws a document in one format
type Renderer interface {
	Render(doc *Document, w io.Writer) error
	Extension() string
	MIMEType() string
}

// RendererFor returns the renderer of format
func RendererFor(format Format) (Renderer, error) {
	switch format {
	case FormatPDF:
		return PDFRenderer{}, nil
	case FormatHTML:
		return HTMLRenderer{}, nil
	case FormatXLS:
		return XLSRenderer{}, nil
	case FormatXLSX:
		return XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Generate renders doc in format. The filename is derived from the
// document kind, its primary id and now's date.
func Generate(doc *Document, format Format, now time.Time) (*File, error) {
	renderer, err := RendererFor(format)
	if err != nil {
		return nil, err
	}
	return GenerateWith(doc, renderer, now)
}

// GenerateWith renders doc with a specific renderer
func GenerateWith(doc *Document, renderer Renderer, now time.Time) (*File, error) {
	if doc == nil {
		return nil, fmt.Errorf("no document to render")
	}

	var buf bytes.Buffer
	if err := renderer.Render(doc, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s %s: %w", doc.Kind, renderer.Extension(), err)
	}

	return &File{
		Name:     Filename(doc, renderer.Extension(), now),
		MIMEType: renderer.MIMEType(),
		Data:     buf.Bytes(),
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename returns "<kind>-<id>-<YYYY-MM-DD>.<ext>"
func Filename(doc *Document, ext string, now time.Time) string {
	id := strings.Trim(unsafeFilenameChars.ReplaceAllString(doc.ID, "-"), "-")
	if id == "" {
		id = "document"
	}
	return fmt.Sprintf("%s-%s-%s.%s", doc.Kind, id, now.Format("2006-01-02"), ext)
}

// columnWidths spreads total over the columns in proportion to their Width
func columnWidths(cols []Column, total float64) []float64 {
	widths := make([]float64, len(cols))
	var sum float64
	for _, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		sum += w
	}
	for i, c := range cols {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = total * w / sum
	}
	return widths
}
