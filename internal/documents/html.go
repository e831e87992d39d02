package documents

import (
	"fmt"
	"html/template"
	"io"
)

// HTMLRenderer writes a standalone HTML page with inline styles.
// With AutoPrint the page opens the print dialog once loaded.
type HTMLRenderer struct {
	AutoPrint bool
}

func (HTMLRenderer) Extension() string { return "html" }
func (HTMLRenderer) MIMEType() string  { return "text/html; charset=utf-8" }

// Render implements Renderer
func (r HTMLRenderer) Render(doc *Document, w io.Writer) error {
	return renderHTML(w, doc, htmlOptions{AutoPrint: r.AutoPrint})
}

// XLSRenderer writes HTML that spreadsheet applications open as a workbook
type XLSRenderer struct{}

func (XLSRenderer) Extension() string { return "xls" }
func (XLSRenderer) MIMEType() string  { return "application/vnd.ms-excel" }

// Render implements Renderer
func (XLSRenderer) Render(doc *Document, w io.Writer) error {
	return renderHTML(w, doc, htmlOptions{Spreadsheet: true})
}

type htmlOptions struct {
	AutoPrint   bool
	Spreadsheet bool
}

type htmlView struct {
	*Document
	Options htmlOptions
}

func renderHTML(w io.Writer, doc *Document, opts htmlOptions) error {
	if err := pageTemplate.Execute(w, htmlView{Document: doc, Options: opts}); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"cell":  cell,
	"align": alignCSS,
	"contact": func(s SchoolInfo) string {
		return joinNonEmpty(" | ", s.Address, s.Phone, s.Email)
	},
	"issued": func(d *Document) string {
		if d.IssuedAt.IsZero() {
			return ""
		}
		return d.IssuedAt.Format(dateLayout)
	},
}).Parse(`<!DOCTYPE html>
<html lang="fr"{{if .Options.Spreadsheet}} xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel"{{end}}>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #222; margin: 24px; }
header.school { background: #1f4e79; color: #fff; padding: 12px 16px; }
header.school h1 { margin: 0; font-size: 20px; }
header.school p { margin: 4px 0 0; font-size: 12px; }
h2 { margin: 20px 0 4px; font-size: 18px; }
.subtitle { color: #6e6e6e; margin: 0 0 12px; }
h3 { color: #1f4e79; border-bottom: 1px solid #c8c8c8; font-size: 14px; margin: 16px 0 6px; }
dl.fields { display: grid; grid-template-columns: 200px auto; margin: 0; }
dl.fields dt { font-weight: normal; }
dl.fields dd { font-weight: bold; margin: 0; }
table { border-collapse: collapse; width: 100%; font-size: 12px; }
th { background: #1f4e79; color: #fff; padding: 6px; border: 1px solid #999; }
td { padding: 5px 6px; border: 1px solid #999; }
tbody tr:nth-child(even) td { background: #f2f5f9; }
tfoot td { font-weight: bold; }
table.totals { width: auto; margin-left: auto; margin-top: 12px; }
table.totals td { border: none; border-top: 1px solid #999; }
.qr { float: right; font-family: monospace; border: 1px solid #1f4e79; padding: 6px; }
.notes { font-style: italic; font-size: 12px; }
footer { color: #6e6e6e; font-size: 11px; margin-top: 24px; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<header class="school">
<h1>{{.School.Name}}</h1>
{{with contact .School}}<p>{{.}}</p>{{end}}
</header>
{{if .QRCode}}<div class="qr" data-qr="{{.QRCode}}">{{.QRCode}}</div>{{end}}
<h2 class="title">{{.Title}}</h2>
{{if .Subtitle}}<p class="subtitle">{{.Subtitle}}</p>{{end}}
{{range .Sections}}
<section>
<h3>{{.Title}}</h3>
{{if $.Options.Spreadsheet}}<table class="fields">{{range .Fields}}<tr><td>{{.Label}}</td><td><b>{{.Value}}</b></td></tr>{{end}}</table>
{{else}}<dl class="fields">{{range .Fields}}<dt>{{.Label}}</dt><dd>{{.Value}}</dd>{{end}}</dl>{{end}}
</section>
{{end}}
{{range .Tables}}{{$table := .}}
<section>
{{if .Title}}<h3>{{.Title}}</h3>{{end}}
<table class="data">
<thead><tr>{{range .Columns}}<th>{{.Header}}</th>{{end}}</tr></thead>
<tbody>
{{range $row := .Rows}}<tr>{{range $i, $col := $table.Columns}}<td style="text-align:{{align $col}}">{{cell $row $i}}</td>{{end}}</tr>
{{else}}{{if .Empty}}<tr><td class="empty" colspan="{{len .Columns}}">{{.Empty}}</td></tr>{{end}}
{{end}}</tbody>
{{if .Footer}}<tfoot><tr>{{range $i, $col := .Columns}}<td style="text-align:{{align $col}}">{{cell $table.Footer $i}}</td>{{end}}</tr></tfoot>{{end}}
</table>
</section>
{{end}}
{{if .Totals}}<table class="totals">{{range .Totals}}<tr><td>{{.Label}}</td><td style="text-align:right">{{.Value}}</td></tr>{{end}}</table>{{end}}
{{if .Notes}}<section class="notes"><h3>Notes</h3>{{range .Notes}}<p>{{.}}</p>{{end}}</section>{{end}}
<footer>{{with issued .Document}}Émis le {{.}}{{end}}</footer>
{{if .Options.AutoPrint}}<script>window.addEventListener("load", function () { window.print(); });</script>{{end}}
</body>
</html>
`))

func alignCSS(c Column) string {
	switch c.Align {
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "left"
	}
}
