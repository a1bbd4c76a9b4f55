package gear

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTitleLength       = 60
	MaxDescriptionLength = 250
	MaxItemNameLength    = 60
	MaxNotesLength       = 500
	MaxQuantityNeeded    = 100
)

const (
	defaultNeeded = 1
	defaultToPack = 1
	defaultToShop = 0
)

// InputError is a form value that failed local validation. It is never sent
// to the remote API.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string { return e.Message }

// FormValue accepts either a JSON number or a JSON string, the way an HTML
// number input posts it, and keeps the raw text for later coercion.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	*v = FormValue(data)
	return nil
}

type ListForm struct {
	ListTitle       string `json:"listTitle"`
	ListDescription string `json:"listDescription"`
}

// ListMetadata is the trimmed, validated payload sent on create and update.
type ListMetadata struct {
	ListTitle       string `json:"listTitle" validate:"required,max=60"`
	ListDescription string `json:"listDescription" validate:"max=250"`
}

func (f ListForm) Metadata() (ListMetadata, error) {
	meta := ListMetadata{
		ListTitle:       strings.TrimSpace(f.ListTitle),
		ListDescription: strings.TrimSpace(f.ListDescription),
	}
	if err := validate.Struct(meta); err != nil {
		return ListMetadata{}, inputError(err)
	}
	return meta, nil
}

// Unchanged reports whether applying meta to list would be a no-op.
func (m ListMetadata) Unchanged(list GearList) bool {
	return list.ListTitle == m.ListTitle && list.ListDescription == m.ListDescription
}

type ItemForm struct {
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	QuantityNeeded FormValue `json:"quantityNeeded"`
	QuantityToPack FormValue `json:"quantityToPack"`
	QuantityToShop FormValue `json:"quantityToShop"`
	Notes          string    `json:"notes"`
}

// ItemData is the item payload sent to the remote API, with quantities
// already coerced to numbers.
type ItemData struct {
	Name           string `json:"name" validate:"required,max=60"`
	Category       string `json:"category,omitempty" validate:"omitempty,gearcategory"`
	QuantityNeeded int    `json:"quantityNeeded" validate:"min=1,max=100"`
	QuantityToPack int    `json:"quantityToPack" validate:"min=0"`
	QuantityToShop int    `json:"quantityToShop" validate:"min=0"`
	Notes          string `json:"notes,omitempty" validate:"max=500"`
}

func (f ItemForm) ItemData() (ItemData, error) {
	needed, err := coerceQuantity(f.QuantityNeeded, defaultNeeded, "quantityNeeded", "Quantity Needed")
	if err != nil {
		return ItemData{}, err
	}
	toPack, err := coerceQuantity(f.QuantityToPack, defaultToPack, "quantityToPack", "Quantity to Pack")
	if err != nil {
		return ItemData{}, err
	}
	toShop, err := coerceQuantity(f.QuantityToShop, defaultToShop, "quantityToShop", "Quantity to Shop")
	if err != nil {
		return ItemData{}, err
	}

	data := ItemData{
		Name:           strings.TrimSpace(f.Name),
		Category:       strings.TrimSpace(f.Category),
		QuantityNeeded: needed,
		QuantityToPack: toPack,
		QuantityToShop: toShop,
		Notes:          f.Notes,
	}
	if err := validate.Struct(data); err != nil {
		return ItemData{}, inputError(err)
	}
	return data, nil
}

// ItemEdit is a partial item form. Only the fields present in the request
// body are validated and compared; absent fields keep their stored value.
type ItemEdit struct {
	Name           *string    `json:"name"`
	Category       *string    `json:"category"`
	QuantityNeeded *FormValue `json:"quantityNeeded"`
	QuantityToPack *FormValue `json:"quantityToPack"`
	QuantityToShop *FormValue `json:"quantityToShop"`
	Notes          *string    `json:"notes"`
}

// Patch validates the supplied fields and returns the ones that differ from
// current.
func (e ItemEdit) Patch(current UserGearItem) (ItemPatch, error) {
	data := ItemData{
		Name:           current.Name,
		Category:       current.Category,
		QuantityNeeded: quantityOr(current.QuantityNeeded, defaultNeeded),
		QuantityToPack: quantityOr(current.QuantityToPack, defaultToPack),
		QuantityToShop: quantityOr(current.QuantityToShop, defaultToShop),
		Notes:          current.Notes,
	}
	var fields []string
	if e.Name != nil {
		data.Name = strings.TrimSpace(*e.Name)
		fields = append(fields, "Name")
	}
	if e.Category != nil {
		data.Category = strings.TrimSpace(*e.Category)
		fields = append(fields, "Category")
	}
	quantities := []struct {
		raw   *FormValue
		dst   *int
		def   int
		name  string
		field string
		label string
	}{
		{e.QuantityNeeded, &data.QuantityNeeded, defaultNeeded, "QuantityNeeded", "quantityNeeded", "Quantity Needed"},
		{e.QuantityToPack, &data.QuantityToPack, defaultToPack, "QuantityToPack", "quantityToPack", "Quantity to Pack"},
		{e.QuantityToShop, &data.QuantityToShop, defaultToShop, "QuantityToShop", "quantityToShop", "Quantity to Shop"},
	}
	for _, q := range quantities {
		if q.raw == nil {
			continue
		}
		n, err := coerceQuantity(*q.raw, q.def, q.field, q.label)
		if err != nil {
			return ItemPatch{}, err
		}
		*q.dst = n
		fields = append(fields, q.name)
	}
	if e.Notes != nil {
		data.Notes = *e.Notes
		fields = append(fields, "Notes")
	}
	if len(fields) == 0 {
		return ItemPatch{}, nil
	}
	if err := validate.StructPartial(data, fields...); err != nil {
		return ItemPatch{}, inputError(err)
	}
	return Diff(current, data), nil
}

func coerceQuantity(raw FormValue, def int, field, label string) (int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || n != float64(int(n)) {
		return 0, &InputError{Field: field, Message: fmt.Sprintf("Please enter a valid '%s' number", label)}
	}
	return int(n), nil
}

var inputMessages = map[string]string{
	"listTitle.required":    "List name is required to create a gear list.",
	"listTitle.max":         fmt.Sprintf("List title cannot exceed %d characters.", MaxTitleLength),
	"listDescription.max":   fmt.Sprintf("List description cannot exceed %d characters.", MaxDescriptionLength),
	"name.required":         "Item name is required.",
	"name.max":              fmt.Sprintf("Item name cannot exceed %d characters.", MaxItemNameLength),
	"category.gearcategory": "Please choose a valid category.",
	"quantityNeeded.min":    fmt.Sprintf("'Quantity Needed' must be between 1 and %d.", MaxQuantityNeeded),
	"quantityNeeded.max":    fmt.Sprintf("'Quantity Needed' must be between 1 and %d.", MaxQuantityNeeded),
	"quantityToPack.min":    "'Quantity to Pack' cannot be negative.",
	"quantityToShop.min":    "'Quantity to Shop' cannot be negative.",
	"notes.max":             fmt.Sprintf("Notes cannot exceed %d characters.", MaxNotesLength),
}

func inputError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InputError{Message: err.Error()}
	}
	fe := verrs[0]
	msg, ok := inputMessages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fmt.Sprintf("%s is invalid.", fe.Field())
	}
	return &InputError{Field: fe.Field(), Message: msg}
}
