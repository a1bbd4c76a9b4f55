package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"gearplanner/internal/gear"
)

func listPath(listID string) string {
	return "/gear-lists/gear-list/" + url.PathEscape(listID)
}

func itemPath(listID, itemID string) string {
	return listPath(listID) + "/items/" + url.PathEscape(itemID)
}

func (c *Client) ListGearLists(ctx context.Context) ([]gear.GearList, error) {
	return call(ctx, c, request{
		op:     "fetching your gear lists",
		method: http.MethodGet,
		path:   "/gear-lists",
		auth:   true,
	}, gear.DecodeGearLists)
}

func (c *Client) GetGearList(ctx context.Context, listID string) (gear.GearList, error) {
	const op = "fetching the gear list"
	if listID == "" {
		return gear.GearList{}, inputError(op, "List ID is missing, unable to fetch the gear list.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodGet,
		path:   listPath(listID),
		auth:   true,
	}, gear.DecodeGearList)
}

func (c *Client) CreateGearList(ctx context.Context, meta gear.ListMetadata) (gear.GearList, error) {
	body := struct {
		gear.ListMetadata
		Items []gear.UserGearItem `json:"items"`
	}{ListMetadata: meta, Items: []gear.UserGearItem{}}

	return call(ctx, c, request{
		op:     "creating the gear list",
		method: http.MethodPost,
		path:   "/gear-lists/gear-list",
		body:   body,
		auth:   true,
	}, gear.DecodeGearList)
}

func (c *Client) UpdateGearList(ctx context.Context, listID string, meta gear.ListMetadata) (gear.GearList, error) {
	const op = "updating the gear list"
	if listID == "" {
		return gear.GearList{}, inputError(op, "ListId required to update list.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodPut,
		path:   listPath(listID),
		body:   meta,
		auth:   true,
	}, gear.DecodeGearList)
}

func (c *Client) DeleteGearList(ctx context.Context, listID string) error {
	const op = "deleting the gear list"
	if listID == "" {
		return inputError(op, "List ID is missing, unable to delete the gear list.")
	}
	_, err := call[struct{}](ctx, c, request{
		op:     op,
		method: http.MethodDelete,
		path:   listPath(listID),
		auth:   true,
	}, nil)
	return err
}

// AddItemResult holds whichever shape the API answered with: the created
// item, or the whole list after the insert.
type AddItemResult struct {
	Item *gear.UserGearItem
	List *gear.GearList
}

func decodeAddItem(raw []byte) (AddItemResult, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err == nil {
		if _, ok := keys["listTitle"]; ok {
			list, err := gear.DecodeGearList(raw)
			if err != nil {
				return AddItemResult{}, err
			}
			return AddItemResult{List: &list}, nil
		}
	}
	item, err := gear.DecodeUserGearItem(raw)
	if err != nil {
		return AddItemResult{}, err
	}
	return AddItemResult{Item: &item}, nil
}

func (c *Client) AddItem(ctx context.Context, listID string, data gear.ItemData) (AddItemResult, error) {
	const op = "adding item to the list"
	if listID == "" {
		return AddItemResult{}, inputError(op, "List ID is missing, unable to add gear item.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodPost,
		path:   listPath(listID) + "/items",
		body:   map[string]any{"itemData": data},
		auth:   true,
	}, decodeAddItem)
}

// EditItem sends a partial update; fields left nil in patch are not sent.
func (c *Client) EditItem(ctx context.Context, listID, itemID string, patch gear.ItemPatch) (gear.GearList, error) {
	const op = "updating the gear item"
	if listID == "" || itemID == "" {
		return gear.GearList{}, inputError(op, "List ID and item ID are required to update a gear item.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodPut,
		path:   itemPath(listID, itemID),
		body:   map[string]any{"itemData": patch},
		auth:   true,
	}, gear.DecodeGearList)
}

func (c *Client) DeleteItem(ctx context.Context, listID, itemID string) (gear.GearList, error) {
	const op = "deleting the gear item"
	if listID == "" || itemID == "" {
		return gear.GearList{}, inputError(op, "List ID and item ID are required to delete a gear item.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodDelete,
		path:   itemPath(listID, itemID),
		auth:   true,
	}, gear.DecodeGearList)
}
