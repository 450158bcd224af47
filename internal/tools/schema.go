package tools

import (
	"encoding/json"

	"librarydesk/pkg/ai"
)

// Specs declares the tool contract the dispatch layer selects from.
// Parameter names and types are part of the contract; renaming them changes
// which calls the model produces.
func (r *Registry) Specs() []ai.ToolSpec {
	return []ai.ToolSpec{
		{
			Name:        "find_books",
			Description: "Search for books in the library by title or author. Returns a list of matching books.",
			Parameters: schema(`{
				"type": "object",
				"properties": {
					"query_str": {"type": "string", "description": "Text fragment to match"},
					"search_by": {"type": "string", "enum": ["title", "author"], "description": "Field to search; defaults to title"}
				},
				"required": ["query_str"]
			}`),
		},
		{
			Name:        "create_order",
			Description: "Registers a new book order and automatically reduces stock levels for multiple items. Items that are unavailable or out of stock are skipped.",
			Parameters: schema(`{
				"type": "object",
				"properties": {
					"customer_id": {"type": "integer", "description": "Identifier of the ordering customer"},
					"items": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"isbn": {"type": "string"},
								"qty": {"type": "integer", "minimum": 1}
							},
							"required": ["isbn", "qty"]
						}
					}
				},
				"required": ["customer_id", "items"]
			}`),
		},
		{
			Name:        "restock_book",
			Description: "Increments the stock quantity for a specific book. Useful for inventory management tasks.",
			Parameters: schema(`{
				"type": "object",
				"properties": {
					"isbn": {"type": "string"},
					"qty": {"type": "integer", "description": "Quantity to add to current stock"}
				},
				"required": ["isbn", "qty"]
			}`),
		},
		{
			Name:        "update_price",
			Description: "Updates the selling price of a book.",
			Parameters: schema(`{
				"type": "object",
				"properties": {
					"isbn": {"type": "string"},
					"price": {"type": "number"}
				},
				"required": ["isbn", "price"]
			}`),
		},
		{
			Name:        "order_status",
			Description: "Provides a summary of a specific order including customer and book details.",
			Parameters: schema(`{
				"type": "object",
				"properties": {
					"order_id": {"type": "integer"}
				},
				"required": ["order_id"]
			}`),
		},
		{
			Name:        "inventory_summary",
			Description: "Identifies books with low stock (less than 5 units). Helpful for proactive restocking.",
			Parameters:  schema(`{"type": "object", "properties": {}}`),
		},
	}
}

func schema(raw string) json.RawMessage {
	return json.RawMessage(raw)
}
