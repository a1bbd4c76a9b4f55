package gear

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DecodeError names the first field of a server response that did not match
// the expected shape.
type DecodeError struct {
	Entity string
	Field  string
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s: field %q %s", e.Entity, e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("gearcategory", func(fl validator.FieldLevel) bool {
		return IsKnownCategory(fl.Field().String())
	})
	return v
}

func DecodeUserGearItem(data []byte) (UserGearItem, error) {
	var item UserGearItem
	if err := decodeJSON("gear item", data, &item); err != nil {
		return UserGearItem{}, err
	}
	if err := checkStruct("gear item", item); err != nil {
		return UserGearItem{}, err
	}
	return item, nil
}

// DecodeGearList validates the list and every item in it.
func DecodeGearList(data []byte) (GearList, error) {
	var list GearList
	if err := decodeJSON("gear list", data, &list); err != nil {
		return GearList{}, err
	}
	if err := list.Validate(); err != nil {
		return GearList{}, err
	}
	return list, nil
}

func DecodeGearLists(data []byte) ([]GearList, error) {
	var lists []GearList
	if err := decodeJSON("gear lists", data, &lists); err != nil {
		return nil, err
	}
	if lists == nil {
		return nil, &DecodeError{Entity: "gear lists", Reason: "must be an array"}
	}
	for i, list := range lists {
		if err := list.Validate(); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Field = indexedField(i, de.Field)
			}
			return nil, err
		}
	}
	return lists, nil
}

func DecodeCommonGear(data []byte) ([]CommonGearItem, error) {
	var items []CommonGearItem
	if err := decodeJSON("common gear", data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, &DecodeError{Entity: "common gear", Reason: "must be an array"}
	}
	for i, item := range items {
		if err := checkStruct("common gear", item); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Field = indexedField(i, de.Field)
			}
			return nil, err
		}
	}
	return items, nil
}

func DecodeArticles(data []byte) ([]Article, error) {
	var articles []Article
	if err := decodeJSON("articles", data, &articles); err != nil {
		return nil, err
	}
	if articles == nil {
		return nil, &DecodeError{Entity: "articles", Reason: "must be an array"}
	}
	for i, article := range articles {
		if err := checkStruct("articles", article); err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Field = indexedField(i, de.Field)
			}
			return nil, err
		}
	}
	return articles, nil
}

// DecodeArticle also requires the body fields a reader page needs.
func DecodeArticle(data []byte) (Article, error) {
	var article Article
	if err := decodeJSON("article", data, &article); err != nil {
		return Article{}, err
	}
	if err := checkStruct("article", article); err != nil {
		return Article{}, err
	}
	if len(article.Content) == 0 {
		return Article{}, &DecodeError{Entity: "article", Field: "content", Reason: "is required"}
	}
	if article.ImageURL == "" {
		return Article{}, &DecodeError{Entity: "article", Field: "imageUrl", Reason: "is required"}
	}
	return article, nil
}

// Validate is the deep shape check applied to every list before it is cached.
func (l GearList) Validate() error {
	return checkStruct("gear list", l)
}

func decodeJSON(entity string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &DecodeError{Entity: entity, Field: typeErr.Field, Reason: "must be " + jsonKind(typeErr.Type) + ", got " + typeErr.Value}
		}
		return &DecodeError{Entity: entity, Reason: "malformed JSON: " + err.Error()}
	}
	return nil
}

// indexedField prefixes field with its array index: "[2].items[0].name", or
// just "[2]" when the whole element failed.
func indexedField(i int, field string) string {
	if field == "" {
		return fmt.Sprintf("[%d]", i)
	}
	return fmt.Sprintf("[%d].%s", i, field)
}

func checkStruct(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &DecodeError{Entity: entity, Reason: err.Error()}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "must be at least " + fe.Param()
	}
	return &DecodeError{Entity: entity, Field: field, Reason: reason}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Ptr:
		return jsonKind(t.Elem())
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "an integer"
	case reflect.Float64, reflect.Float32:
		return "a number"
	case reflect.Slice:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return t.String()
}
