// internal/domain/table/session.go
package table

import (
	"errors"
	"strings"
)

// ErrMissingTable is returned when no table identifier is known for the
// session; customers must scan the QR code on their table
var ErrMissingTable = errors.New("no table number detected, scan the QR code on your table")

// Session is the table a browser session orders for
type Session struct {
	TableIdentifier string `json:"table"`
}

// Resolve picks the table for a request. The query parameter is
// authoritative; otherwise the stored value is used. changed reports
// whether the stored value must be updated.
func Resolve(query, stored string) (session Session, changed bool, err error) {
	query = strings.TrimSpace(query)
	stored = strings.TrimSpace(stored)

	if query != "" {
		return Session{TableIdentifier: query}, query != stored, nil
	}
	if stored != "" {
		return Session{TableIdentifier: stored}, false, nil
	}
	return Session{}, false, ErrMissingTable
}
