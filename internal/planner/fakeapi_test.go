package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"gearplanner/internal/gear"
	"gearplanner/internal/remote"
)

// gearAPI is an in-memory stand-in for the remote gear API.
type gearAPI struct {
	mu             sync.Mutex
	lists          []gear.GearList
	common         []gear.CommonGearItem
	calls          []string
	patches        []map[string]any
	addReturnsList bool
	fail           map[string]int
	tokens         map[string]bool
	staleEdits     bool
	nextID         int
}

func newGearAPI(t *testing.T) (*gearAPI, *remote.Client) {
	t.Helper()
	api := &gearAPI{fail: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/gear-lists", api.listAll)
	mux.HandleFunc("GET /api/gear-lists/gear-list/{listID}", api.getList)
	mux.HandleFunc("POST /api/gear-lists/gear-list", api.createList)
	mux.HandleFunc("PUT /api/gear-lists/gear-list/{listID}", api.updateList)
	mux.HandleFunc("DELETE /api/gear-lists/gear-list/{listID}", api.deleteList)
	mux.HandleFunc("POST /api/gear-lists/gear-list/{listID}/items", api.addItem)
	mux.HandleFunc("PUT /api/gear-lists/gear-list/{listID}/items/{itemID}", api.editItem)
	mux.HandleFunc("DELETE /api/gear-lists/gear-list/{listID}/items/{itemID}", api.deleteItem)
	mux.HandleFunc("POST /api/user", func(w http.ResponseWriter, r *http.Request) {
		if api.record(w, r) {
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /api/commonGear", func(w http.ResponseWriter, r *http.Request) {
		if api.record(w, r) {
			return
		}
		api.mu.Lock()
		defer api.mu.Unlock()
		writeJSON(w, http.StatusOK, api.common)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, remote.NewClient(srv.URL + "/api")
}

func (a *gearAPI) seed(lists ...gear.GearList) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lists = append(a.lists, lists...)
}

func (a *gearAPI) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

func (a *gearAPI) lastCall() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.calls) == 0 {
		return ""
	}
	return a.calls[len(a.calls)-1]
}

// record logs the call and answers with a configured failure, if any.
func (a *gearAPI) record(w http.ResponseWriter, r *http.Request) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := r.Method + " " + r.URL.Path
	a.calls = append(a.calls, key)
	if r.URL.Path != "/api/commonGear" && !a.authorized(r.Header.Get("Authorization")) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return true
	}
	if status, ok := a.fail[key]; ok {
		writeJSON(w, status, map[string]string{"message": "Upstream refused"})
		return true
	}
	return false
}

// authorized accepts any bearer token unless tokens restricts it.
func (a *gearAPI) authorized(header string) bool {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	return a.tokens == nil || a.tokens[token]
}

func (a *gearAPI) index(id string) int {
	for i := range a.lists {
		if a.lists[i].ID == id {
			return i
		}
	}
	return -1
}

func (a *gearAPI) listAll(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.lists
	if out == nil {
		out = []gear.GearList{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *gearAPI) getList(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(r.PathValue("listID"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Gear list not found"})
		return
	}
	writeJSON(w, http.StatusOK, a.lists[i])
}

func (a *gearAPI) createList(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	var body gear.GearList
	_ = json.NewDecoder(r.Body).Decode(&body)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	body.ID = fmt.Sprintf("list-%d", a.nextID)
	body.Version = 1
	if body.Items == nil {
		body.Items = []gear.UserGearItem{}
	}
	a.lists = append(a.lists, body)
	writeJSON(w, http.StatusCreated, body)
}

func (a *gearAPI) updateList(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	var meta gear.ListMetadata
	_ = json.NewDecoder(r.Body).Decode(&meta)
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(r.PathValue("listID"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Gear list not found"})
		return
	}
	a.lists[i].ListTitle = meta.ListTitle
	a.lists[i].ListDescription = meta.ListDescription
	a.lists[i].Version++
	writeJSON(w, http.StatusOK, a.lists[i])
}

func (a *gearAPI) deleteList(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if i := a.index(r.PathValue("listID")); i >= 0 {
		a.lists = append(a.lists[:i], a.lists[i+1:]...)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Gear list deleted"})
}

func (a *gearAPI) addItem(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	var body struct {
		ItemData gear.UserGearItem `json:"itemData"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(r.PathValue("listID"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Gear list not found"})
		return
	}
	a.nextID++
	item := body.ItemData
	item.ID = fmt.Sprintf("item-%d", a.nextID)
	a.lists[i] = a.lists[i].WithItem(item)
	a.lists[i].Version++
	if a.addReturnsList {
		writeJSON(w, http.StatusCreated, a.lists[i])
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (a *gearAPI) editItem(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	var raw struct {
		ItemData map[string]any `json:"itemData"`
	}
	var body struct {
		ItemData gear.ItemPatch `json:"itemData"`
	}
	var payload json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&payload)
	_ = json.Unmarshal(payload, &raw)
	_ = json.Unmarshal(payload, &body)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.patches = append(a.patches, raw.ItemData)
	i := a.index(r.PathValue("listID"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Gear list not found"})
		return
	}
	list := a.lists[i].Clone()
	for j := range list.Items {
		if list.Items[j].ID == r.PathValue("itemID") {
			list.Items[j] = applyPatch(list.Items[j], body.ItemData)
		}
	}
	if a.staleEdits {
		list.Version = 1
		writeJSON(w, http.StatusOK, list)
		return
	}
	list.Version++
	a.lists[i] = list
	writeJSON(w, http.StatusOK, list)
}

func (a *gearAPI) deleteItem(w http.ResponseWriter, r *http.Request) {
	if a.record(w, r) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.index(r.PathValue("listID"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Gear list not found"})
		return
	}
	list := a.lists[i].Clone()
	items := list.Items[:0]
	for _, item := range list.Items {
		if item.ID != r.PathValue("itemID") {
			items = append(items, item)
		}
	}
	list.Items = items
	list.Version++
	a.lists[i] = list
	writeJSON(w, http.StatusOK, list)
}

func applyPatch(item gear.UserGearItem, p gear.ItemPatch) gear.UserGearItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.QuantityNeeded != nil {
		item.QuantityNeeded = ptr(*p.QuantityNeeded)
	}
	if p.QuantityToPack != nil {
		item.QuantityToPack = ptr(*p.QuantityToPack)
	}
	if p.QuantityToShop != nil {
		item.QuantityToShop = ptr(*p.QuantityToShop)
	}
	if p.Notes != nil {
		item.Notes = *p.Notes
	}
	if p.Packed != nil {
		item.Packed = ptr(*p.Packed)
	}
	return item
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func authed() context.Context {
	return remote.WithToken(context.Background(), "tok-1")
}

func ptr[T any](v T) *T { return &v }

func everestList() gear.GearList {
	return gear.GearList{
		ID:              "l1",
		ListTitle:       "Everest Trip",
		ListDescription: "Base camp trek",
		Version:         1,
		Items: []gear.UserGearItem{
			{ID: "i1", Name: "Tent", Category: "shelter", QuantityNeeded: ptr(1), QuantityToPack: ptr(1), QuantityToShop: ptr(0)},
			{ID: "i2", Name: "Socks", Category: "clothing", QuantityNeeded: ptr(3), QuantityToPack: ptr(3), QuantityToShop: ptr(1)},
			{ID: "i3", Name: "Lucky Charm"},
		},
	}
}
