// Package web holds the embedded HTML templates and static assets for the
// upload UI.
package web

import (
	"embed"
	"html/template"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/pkg/money"
)

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*.css
var StaticFS embed.FS

// Funcs returns the helpers the pages use. Amounts render through the money
// formatter in the configured display currency.
func Funcs(displayCurrency string) template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return money.NewFromDecimal(d, displayCurrency).Display()
		},
		// html/template rejects data: URLs in src attributes; the charts
		// are our own rendered PNGs, so mark them safe explicitly.
		"pngDataURI": func(b64 string) template.URL {
			return template.URL("data:image/png;base64," + b64)
		},
	}
}

// Templates parses the embedded pages with helpers bound to the display
// currency.
func Templates(displayCurrency string) (*template.Template, error) {
	return template.New("web").Funcs(Funcs(displayCurrency)).ParseFS(TemplatesFS, "templates/*.html")
}
