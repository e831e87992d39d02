package documents

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Document"

// XLSXRenderer writes a native Excel workbook with excelize
type XLSXRenderer struct{}

func (XLSXRenderer) Extension() string { return "xlsx" }
func (XLSXRenderer) MIMEType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render implements Renderer
func (XLSXRenderer) Render(doc *Document, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	shadeStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F2F5F9"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	sw := &sheetWriter{f: f}

	sw.row(titleStyle, doc.School.Name)
	sw.row(0, doc.Title)
	if doc.Subtitle != "" {
		sw.row(0, doc.Subtitle)
	}
	sw.skip()

	for _, section := range doc.Sections {
		sw.row(boldStyle, section.Title)
		for _, field := range section.Fields {
			sw.row(0, field.Label, field.Value)
		}
		sw.skip()
	}

	width := 2
	for _, table := range doc.Tables {
		if len(table.Columns) > width {
			width = len(table.Columns)
		}
		if table.Title != "" {
			sw.row(boldStyle, table.Title)
		}
		headers := make([]string, len(table.Columns))
		for i, c := range table.Columns {
			headers[i] = c.Header
		}
		sw.row(headerStyle, headers...)
		if len(table.Rows) == 0 && table.Empty != "" {
			sw.row(0, table.Empty)
		}
		for i, r := range table.Rows {
			style := 0
			if i%2 == 1 {
				style = shadeStyle
			}
			sw.row(style, r...)
		}
		if len(table.Footer) > 0 {
			sw.row(boldStyle, table.Footer...)
		}
		sw.skip()
	}

	for _, total := range doc.Totals {
		sw.row(boldStyle, total.Label, total.Value)
	}
	if len(doc.Totals) > 0 {
		sw.skip()
	}
	for _, note := range doc.Notes {
		sw.row(0, note)
	}

	if sw.err != nil {
		return sw.err
	}

	last, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(xlsxSheet, "A", last, 22); err != nil {
		return err
	}

	return f.Write(w)
}

// sheetWriter appends rows to the document sheet and keeps the first error
type sheetWriter struct {
	f    *excelize.File
	next int
	err  error
}

func (s *sheetWriter) skip() {
	s.next++
}

func (s *sheetWriter) row(style int, values ...string) {
	if s.err != nil || len(values) == 0 {
		s.next++
		return
	}
	s.next++

	start, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := s.f.SetSheetRow(xlsxSheet, start, &cells); err != nil {
		s.err = fmt.Errorf("failed to write row %d: %w", s.next, err)
		return
	}

	if style != 0 {
		end, err := excelize.CoordinatesToCellName(len(values), s.next)
		if err != nil {
			s.err = err
			return
		}
		if err := s.f.SetCellStyle(xlsxSheet, start, end, style); err != nil {
			s.err = err
		}
	}
}
