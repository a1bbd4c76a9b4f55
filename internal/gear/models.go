package gear

// UserGearItem is one entry of a user's gear list. Quantities are pointers so
// that an absent field can be told apart from an explicit zero.
type UserGearItem struct {
	ID             string `json:"_id" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Category       string `json:"category,omitempty"`
	QuantityNeeded *int   `json:"quantityNeeded,omitempty" validate:"omitempty,min=0"`
	QuantityToPack *int   `json:"quantityToPack,omitempty" validate:"omitempty,min=0"`
	QuantityToShop *int   `json:"quantityToShop,omitempty" validate:"omitempty,min=0"`
	Notes          string `json:"notes,omitempty"`
	Packed         *bool  `json:"packed,omitempty"`
}

type GearList struct {
	ID              string         `json:"_id" validate:"required"`
	ListTitle       string         `json:"listTitle" validate:"required"`
	ListDescription string         `json:"listDescription,omitempty"`
	Items           []UserGearItem `json:"items" validate:"required,dive"`
	Version         int            `json:"__v,omitempty"`
}

// CommonGearItem is read-only suggestion data used to pre-fill a new item.
type CommonGearItem struct {
	ID       string `json:"_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type Article struct {
	ID       string   `json:"_id" validate:"required"`
	Title    string   `json:"title" validate:"required"`
	Author   string   `json:"author,omitempty"`
	Date     string   `json:"date,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	ImageAlt string   `json:"imageAlt,omitempty"`
	Content  []string `json:"content,omitempty"`
}

// NeededQuantity falls back to 1 when the server omitted quantityNeeded.
func (i UserGearItem) NeededQuantity() int {
	if i.QuantityNeeded == nil {
		return 1
	}
	return *i.QuantityNeeded
}

// IsPacked prefers the explicit flag. Items written before the flag existed
// are packed when nothing is left to pack.
func (i UserGearItem) IsPacked() bool {
	if i.Packed != nil {
		return *i.Packed
	}
	return i.QuantityToPack != nil && *i.QuantityToPack == 0
}

// Item returns the item with the given id.
func (l GearList) Item(id string) (UserGearItem, bool) {
	for _, item := range l.Items {
		if item.ID == id {
			return item, true
		}
	}
	return UserGearItem{}, false
}

// HasItemNamed is used to flag common gear suggestions that are already on the list.
func (l GearList) HasItemNamed(name string) bool {
	for _, item := range l.Items {
		if item.Name == name {
			return true
		}
	}
	return false
}

// WithItem returns a copy of the list with item appended. The receiver's
// items slice is never shared with the result.
func (l GearList) WithItem(item UserGearItem) GearList {
	items := make([]UserGearItem, 0, len(l.Items)+1)
	items = append(items, l.Items...)
	l.Items = append(items, item)
	return l
}

// Clone deep-copies the items slice so cached lists can be handed out safely.
func (l GearList) Clone() GearList {
	if l.Items != nil {
		items := make([]UserGearItem, len(l.Items))
		copy(items, l.Items)
		l.Items = items
	}
	return l
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }
