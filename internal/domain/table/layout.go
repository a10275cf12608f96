// internal/domain/table/layout.go
package table

import (
	"fmt"
	"net/url"
)

// Area is a seating area of the café
type Area string

const (
	AreaRoof Area = "roof"
	AreaHall Area = "hall"
	AreaOpen Area = "open"
)

// Table is a physical table and the menu URL its QR code encodes
type Table struct {
	ID    string `json:"id"`
	Area  Area   `json:"area"`
	QRURL string `json:"qr_url"`
}

var areas = []struct {
	area   Area
	prefix string
	count  int
}{
	{AreaRoof, "R", 6},
	{AreaHall, "H", 12},
	{AreaOpen, "O", 6},
}

// Layout lists every table with its QR target under publicURL
func Layout(publicURL string) []Table {
	var tables []Table
	for _, a := range areas {
		for i := 1; i <= a.count; i++ {
			id := fmt.Sprintf("%s%d", a.prefix, i)
			tables = append(tables, Table{
				ID:    id,
				Area:  a.area,
				QRURL: MenuURL(publicURL, id),
			})
		}
	}
	return tables
}

// MenuURL is the menu link for a table
func MenuURL(publicURL, tableID string) string {
	return fmt.Sprintf("%s/menu?table=%s", publicURL, url.QueryEscape(tableID))
}
