// internal/domain/order/entity.go
package order

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the order status as reported by the café API
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDone      Status = "done"
	StatusCanceled  Status = "canceled"
)

var (
	ErrUnknownStatus      = errors.New("unknown order status")
	ErrQuantitiesMismatch = errors.New("order items and quantities differ in length")
)

// ParseStatus maps a wire status onto the closed status set.
// "ready" is the kitchen's name for done; "cancelled" is accepted as well.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "preparing":
		return StatusPreparing, nil
	case "done", "ready":
		return StatusDone, nil
	case "canceled", "cancelled":
		return StatusCanceled, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// UnmarshalJSON normalizes status aliases
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// IsTerminal reports whether no further transitions are accepted
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCanceled
}

var validTransitions = map[Status][]Status{
	StatusPending: {
		StatusPreparing,
		StatusDone,
		StatusCanceled,
	},
	StatusPreparing: {
		StatusDone,
		StatusCanceled,
	},
}

// CanTransition reports whether a pushed status may replace the current one.
// Same-state updates (time changes, edits) are always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}

// ItemRef references a menu item inside an order. The API sends either the
// bare id (on creation) or the populated item (on reads).
type ItemRef struct {
	ID    string          `json:"_id"`
	Name  string          `json:"name,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// UnmarshalJSON accepts both "id" strings and populated item objects
func (r *ItemRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var raw struct {
		MongoID string          `json:"_id"`
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Price   decimal.Decimal `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = raw.MongoID
	if r.ID == "" {
		r.ID = raw.ID
	}
	r.Name = raw.Name
	r.Price = raw.Price
	return nil
}

// Order is the canonical order as returned by the café API
type Order struct {
	ID                   string          `json:"_id"`
	TableIdentifier      string          `json:"tableIdentifier"`
	Items                []ItemRef       `json:"items"`
	Quantities           []int           `json:"quantities"`
	Total                decimal.Decimal `json:"total"`
	Status               Status          `json:"status"`
	EstimatedTimeMinutes *float64        `json:"estimatedTime,omitempty"`
	TimeSetAt            *time.Time      `json:"timeSetAt,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            *time.Time      `json:"updatedAt,omitempty"`
}

// UnmarshalJSON decodes an order, accepting the API's field aliases and
// enforcing that items and quantities line up
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var raw struct {
		plain
		AltID       string `json:"id"`
		TableNumber string `json:"tableNumber"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Order(raw.plain)
	if o.ID == "" {
		o.ID = raw.AltID
	}
	if o.TableIdentifier == "" {
		o.TableIdentifier = raw.TableNumber
	}

	if len(o.Items) != len(o.Quantities) {
		return fmt.Errorf("%w: %d items, %d quantities", ErrQuantitiesMismatch, len(o.Items), len(o.Quantities))
	}
	return nil
}

// Version stamps this state of the order by its updatedAt
func (o *Order) Version() Version {
	if o.UpdatedAt == nil {
		return Version{}
	}
	return Version{Stamp: o.UpdatedAt.UnixNano()}
}

// Line pairs an item with its quantity
type Line struct {
	Item     ItemRef `json:"item"`
	Quantity int     `json:"quantity"`
}

// Lines zips items and quantities
func (o *Order) Lines() []Line {
	lines := make([]Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = Line{Item: item, Quantity: o.Quantities[i]}
	}
	return lines
}

// Draft is the client-built order payload sent for creation
type Draft struct {
	Items           []string        `json:"items"`
	Quantities      []int           `json:"quantities"`
	Total           decimal.Decimal `json:"total"`
	TableIdentifier string          `json:"tableIdentifier"`
	Status          Status          `json:"status"`
}

// MarshalJSON sends the total as a JSON number, which the API expects
func (d Draft) MarshalJSON() ([]byte, error) {
	type plain Draft
	return json.Marshal(struct {
		plain
		Total json.Number `json:"total"`
	}{
		plain: plain(d),
		Total: json.Number(d.Total.String()),
	})
}
