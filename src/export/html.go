package export

import (
	"html/template"
	"io"

	"rfpdesk-server/src/budget"
)

// The markup opens in word processors, which is how budgets are attached to
// the narrative volume as a .doc file.
var tableTmpl = template.Must(template.New("budget").Parse(`<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<table border="1" cellspacing="0" cellpadding="4">
<thead><tr>{{range .Table.Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Table.Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
<tfoot><tr>{{range .Table.Totals}}<th>{{.}}</th>{{end}}</tr></tfoot>
</table>
</body>
</html>
`))

func WriteHTML(w io.Writer, title string, table budget.TableExport) error {
	return tableTmpl.Execute(w, struct {
		Title string
		Table budget.TableExport
	}{title, table})
}

// ContentType maps an export format to its HTTP content type and file extension.
func ContentType(format string) (contentType, ext string, ok bool) {
	switch format {
	case "csv", "":
		return "text/csv", "csv", true
	case "html", "doc":
		return "application/msword", "doc", true
	default:
		return "", "", false
	}
}
