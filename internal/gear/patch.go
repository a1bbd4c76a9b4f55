package gear

import "strings"

// ItemPatch carries only the fields of an item that changed. A nil field is
// left untouched by the remote API; a pointer to a zero value clears it.
type ItemPatch struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	QuantityNeeded *int    `json:"quantityNeeded,omitempty"`
	QuantityToPack *int    `json:"quantityToPack,omitempty"`
	QuantityToShop *int    `json:"quantityToShop,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	Packed         *bool   `json:"packed,omitempty"`
}

func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.QuantityNeeded == nil &&
		p.QuantityToPack == nil && p.QuantityToShop == nil && p.Notes == nil && p.Packed == nil
}

// Diff compares a submitted form against the cached item. A quantity the
// server never stored counts as its form default.
func Diff(current UserGearItem, next ItemData) ItemPatch {
	var p ItemPatch
	if current.Name != next.Name {
		p.Name = strPtr(next.Name)
	}
	if current.Category != next.Category {
		p.Category = strPtr(next.Category)
	}
	if !sameQuantity(current.QuantityNeeded, next.QuantityNeeded, defaultNeeded) {
		p.QuantityNeeded = intPtr(next.QuantityNeeded)
	}
	if !sameQuantity(current.QuantityToPack, next.QuantityToPack, defaultToPack) {
		p.QuantityToPack = intPtr(next.QuantityToPack)
	}
	if !sameQuantity(current.QuantityToShop, next.QuantityToShop, defaultToShop) {
		p.QuantityToShop = intPtr(next.QuantityToShop)
	}
	if strings.TrimSpace(current.Notes) != strings.TrimSpace(next.Notes) {
		p.Notes = strPtr(next.Notes)
	}
	return p
}

func sameQuantity(current *int, next, def int) bool {
	return quantityOr(current, def) == next
}

func quantityOr(q *int, def int) int {
	if q == nil {
		return def
	}
	return *q
}

// PackedPatch marks an item packed or unpacked. quantityToPack is still
// written for clients that read the old encoding: 0 when packed, the needed
// quantity when unpacked.
func PackedPatch(item UserGearItem, packed bool) ItemPatch {
	toPack := item.NeededQuantity()
	if packed {
		toPack = 0
	}
	return ItemPatch{
		QuantityToPack: intPtr(toPack),
		Packed:         boolPtr(packed),
	}
}
