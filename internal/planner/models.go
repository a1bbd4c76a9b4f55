package planner

import "gearplanner/internal/gear"

// ItemResult is the list after an item mutation. NewItemID names the item
// the UI should scroll into view after an add.
type ItemResult struct {
	List      gear.GearList `json:"list"`
	NewItemID string        `json:"newItemId,omitempty"`
}

type CategoriesView struct {
	ListID     string        `json:"listId"`
	ListTitle  string        `json:"listTitle"`
	Categories []gear.Bucket `json:"categories"`
}

type PackedRequest struct {
	Packed *bool `json:"packed"`
}

type SessionResponse struct {
	UserID string `json:"userId"`
	Synced bool   `json:"synced"`
}
