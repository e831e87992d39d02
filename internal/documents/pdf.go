package documents

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// page geometry in millimetres (A4 portrait)
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	contentWidth = pageWidth - marginLeft - marginRight
	headerHeight = 30.0
	qrSize       = 32.0
)

var (
	bandColor  = [3]int{31, 78, 121}
	shadeColor = [3]int{242, 245, 249}
	mutedColor = [3]int{110, 110, 110}
)

// PDFRenderer draws documents with gofpdf
type PDFRenderer struct{}

func (PDFRenderer) Extension() string { return "pdf" }
func (PDFRenderer) MIMEType() string  { return "application/pdf" }

// Render implements Renderer
func (PDFRenderer) Render(doc *Document, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, headerHeight+8, marginRight)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("school-admin", true)
	if !doc.IssuedAt.IsZero() {
		pdf.SetCreationDate(doc.IssuedAt)
	}
	pdf.AliasNbPages("")

	// core fonts are cp1252; accents and the dash placeholder survive the translation
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFillColor(bandColor[0], bandColor[1], bandColor[2])
		pdf.Rect(0, 0, pageWidth, headerHeight, "F")
		pdf.SetTextColor(255, 255, 255)
		pdf.SetXY(marginLeft, 8)
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(contentWidth, 8, tr(doc.School.Name), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		contact := joinNonEmpty(" | ", doc.School.Address, doc.School.Phone, doc.School.Email)
		pdf.CellFormat(contentWidth, 5, tr(contact), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetY(headerHeight + 8)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(mutedColor[0], mutedColor[1], mutedColor[2])
		issued := ""
		if !doc.IssuedAt.IsZero() {
			issued = "Émis le " + doc.IssuedAt.Format(dateLayout)
		}
		pdf.CellFormat(contentWidth/2, 5, tr(issued), "", 0, "L", false, 0, "")
		pdf.CellFormat(contentWidth/2, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	titleTop := pdf.GetY()
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentWidth, 9, tr(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(mutedColor[0], mutedColor[1], mutedColor[2])
		pdf.CellFormat(contentWidth, 6, tr(doc.Subtitle), "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	if doc.QRCode != "" {
		png, err := qrcode.Encode(doc.QRCode, qrcode.Medium, 256)
		if err != nil {
			return fmt.Errorf("failed to encode QR code: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
		pdf.ImageOptions("qr", pageWidth-marginRight-qrSize, titleTop, qrSize, qrSize, false, opts, 0, "")
		if pdf.GetY() < titleTop+qrSize {
			pdf.SetY(titleTop + qrSize)
		}
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		drawSectionTitle(pdf, tr(section.Title))
		for _, f := range section.Fields {
			pdf.SetFont("Helvetica", "", 10)
			pdf.CellFormat(55, 6, tr(f.Label), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(contentWidth-55, 6, tr(f.Value), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	for _, table := range doc.Tables {
		drawTable(pdf, tr, table)
		pdf.Ln(4)
	}

	if len(doc.Totals) > 0 {
		labelWidth, valueWidth := 50.0, 45.0
		x := pageWidth - marginRight - labelWidth - valueWidth
		for i, f := range doc.Totals {
			pdf.SetX(x)
			style := ""
			if i == len(doc.Totals)-1 {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, 10)
			pdf.CellFormat(labelWidth, 7, tr(f.Label), "T", 0, "L", false, 0, "")
			pdf.CellFormat(valueWidth, 7, tr(f.Value), "T", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(doc.Notes) > 0 {
		drawSectionTitle(pdf, "Notes")
		pdf.SetFont("Helvetica", "I", 9)
		for _, note := range doc.Notes {
			pdf.MultiCell(contentWidth, 5, tr(note), "", "L", false)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func drawSectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(bandColor[0], bandColor[1], bandColor[2])
	pdf.CellFormat(contentWidth, 7, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(marginLeft, pdf.GetY(), pageWidth-marginRight, pdf.GetY())
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func drawTable(pdf *gofpdf.Fpdf, tr func(string) string, table Table) {
	if table.Title != "" {
		drawSectionTitle(pdf, tr(table.Title))
	}
	widths := columnWidths(table.Columns, contentWidth)

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(bandColor[0], bandColor[1], bandColor[2])
		pdf.SetTextColor(255, 255, 255)
		for i, col := range table.Columns {
			pdf.CellFormat(widths[i], 8, tr(col.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(shadeColor[0], shadeColor[1], shadeColor[2])
	if len(table.Rows) == 0 && table.Empty != "" {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentWidth, 7, tr(table.Empty), "1", 1, "C", false, 0, "")
	}
	for r, row := range table.Rows {
		if pdf.GetY()+7 > pageHeight-bottom {
			pdf.AddPage()
			header()
			pdf.SetFont("Helvetica", "", 9)
			pdf.SetFillColor(shadeColor[0], shadeColor[1], shadeColor[2])
		}
		fill := r%2 == 1
		for i := range table.Columns {
			pdf.CellFormat(widths[i], 7, tr(cell(row, i)), "1", 0, string(alignOf(table.Columns[i])), fill, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(table.Footer) > 0 {
		pdf.SetFont("Helvetica", "B", 9)
		for i := range table.Columns {
			pdf.CellFormat(widths[i], 7, tr(cell(table.Footer, i)), "1", 0, string(alignOf(table.Columns[i])), false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func alignOf(c Column) Align {
	if c.Align == "" {
		return AlignLeft
	}
	return c.Align
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
