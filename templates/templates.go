// Package templates holds the server-rendered pages of the web surface.
package templates

import (
	"embed"
	"html/template"

	"github.com/kendall-kelly/cafe-orders-api/models"
	"github.com/shopspring/decimal"
)

//go:embed *.html
var files embed.FS

// Funcs are available in every page
var Funcs = template.FuncMap{
	"money": func(amount decimal.Decimal) string {
		return amount.StringFixed(models.PriceDecimalPlaces)
	},
	"statusLabel": func(status models.OrderStatus) string {
		return status.Label()
	},
}

// Load parses every embedded page. Each page is named after its file.
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "*.html")
}

// Must is Load for program start-up; it panics on a broken template
func Must() *template.Template {
	return template.Must(Load())
}
