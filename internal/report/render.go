package report

import (
	"embed"
	"encoding/base64"
	"encoding/csv"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

//go:embed templates/document.html.tmpl
var templateFS embed.FS

//go:embed assets/logo.svg
var defaultLogo []byte

var documentTemplate = template.Must(template.ParseFS(templateFS, "templates/document.html.tmpl"))

// Letterhead is the cooperative identity printed at the top of a document.
type Letterhead struct {
	CompanyName string
	Address     string
	Phone       string
	Email       string
	FooterNote  string
}

// DefaultLetterhead is used until an administrator saves their own.
func DefaultLetterhead() Letterhead {
	return Letterhead{
		CompanyName: "Pandol Cooperative",
		Address:     "123 Cooperative Avenue, Quezon City, Metro Manila",
		Phone:       "(02) 8123-4567",
		Email:       "info@pandolcoop.com",
		FooterNote:  "This is an official document generated by the Pandol Cooperative Management System.",
	}
}

// DocumentOptions controls the printable rendering.
type DocumentOptions struct {
	Letterhead Letterhead
	// Logo is raw image bytes; the bundled logo is used when empty.
	Logo []byte
	// AutoPrint opens the print dialog once the document finished loading.
	AutoPrint bool
}

type documentData struct {
	Report     *Report
	Letterhead Letterhead
	Logo       template.URL
	AutoPrint  bool
	Year       int
}

// LogoDataURI inlines an image so the document has no external assets.
func LogoDataURI(img []byte) template.URL {
	if len(img) == 0 {
		img = defaultLogo
	}
	mime := http.DetectContentType(img)
	if strings.HasPrefix(mime, "text/") || mime == "application/octet-stream" {
		// DetectContentType does not sniff SVG.
		mime = "image/svg+xml"
	}
	return template.URL("data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img))
}

// RenderDocument writes the standalone printable HTML document for r.
func RenderDocument(w io.Writer, r *Report, opts DocumentOptions) error {
	if r == nil {
		return errors.New("nil report")
	}
	if opts.Letterhead.CompanyName == "" {
		opts.Letterhead = DefaultLetterhead()
	}

	data := documentData{
		Report:     r,
		Letterhead: opts.Letterhead,
		Logo:       LogoDataURI(opts.Logo),
		AutoPrint:  opts.AutoPrint,
		Year:       r.GeneratedAt.Year(),
	}

	return errors.Wrap(documentTemplate.Execute(w, data), "render report document")
}

// RenderCSV writes the report table, footer included, as CSV. Text cells
// that a spreadsheet would evaluate as a formula are prefixed with a quote.
func RenderCSV(w io.Writer, r *Report) error {
	if r == nil {
		return errors.New("nil report")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvRecord(r.Table.Columns)); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, row := range r.Table.Rows {
		if err := cw.Write(csvRecord(row)); err != nil {
			return errors.Wrap(err, "write csv rows")
		}
	}
	if len(r.Table.Footer) > 0 {
		if err := cw.Write(csvRecord(r.Table.Footer)); err != nil {
			return errors.Wrap(err, "write csv footer")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

func csvRecord(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = csvCell(cell)
	}
	return out
}

// csvCell leaves numbers alone, negative ones included.
func csvCell(v string) string {
	if v == "" || !strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return v
	}
	if _, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64); err == nil {
		return v
	}
	return "'" + v
}
