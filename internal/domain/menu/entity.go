// internal/domain/menu/entity.go
package menu

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is a dish or drink on the café menu
type Item struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id"
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var raw struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*i = Item(raw.plain)
	if i.ID == "" {
		i.ID = raw.AltID
	}
	return nil
}

// Category groups menu items
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AllCategory selects every item
const AllCategory = "all"

// StaticCategories is used when the API has no category listing
var StaticCategories = []Category{
	{ID: AllCategory, Name: "All"},
	{ID: "chai", Name: "Chai"},
	{ID: "cold-coffee", Name: "Cold Coffee"},
	{ID: "hot-coffee", Name: "Hot Coffee"},
	{ID: "maggi", Name: "Maggi"},
	{ID: "burger", Name: "Burger"},
	{ID: "pizza", Name: "Pizza"},
	{ID: "chinese", Name: "Chinese"},
	{ID: "sandwich", Name: "Sandwich"},
	{ID: "snacks", Name: "Snacks"},
	{ID: "wraps", Name: "Wraps"},
	{ID: "pasta", Name: "Pasta"},
	{ID: "cold-drinks", Name: "Cold Drinks"},
	{ID: "mocktails", Name: "Mocktails"},
	{ID: "juices", Name: "Juices"},
	{ID: "shakes", Name: "Shakes"},
	{ID: "desserts", Name: "Desserts"},
	{ID: "cakes", Name: "Cakes"},
	{ID: "water", Name: "Water"},
	{ID: "cigarettes", Name: "Cigarettes"},
	{ID: "disposables", Name: "Disposables"},
	{ID: "dips", Name: "Dips"},
}

// Filter returns the items of a category; "all" or empty returns everything
func Filter(items []Item, category string) []Item {
	if category == "" || category == AllCategory {
		return items
	}

	filtered := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Find looks an item up by id
func Find(items []Item, id string) (Item, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}
