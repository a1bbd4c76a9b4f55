package gear

import "encoding/json"

// The predicates below check loosely decoded JSON (the output of
// json.Unmarshal into an any). They only look at structure; length and range
// rules belong to form validation.

// IsUserGearItem requires string _id and name. Optional fields must be absent
// or of the right type; an explicit null is not absent.
func IsUserGearItem(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if !isString(m["_id"]) || !isString(m["name"]) {
		return false
	}
	for _, key := range []string{"category", "notes"} {
		if !optional(m, key, isString) {
			return false
		}
	}
	for _, key := range []string{"quantityNeeded", "quantityToPack", "quantityToShop"} {
		if !optional(m, key, isNumber) {
			return false
		}
	}
	return optional(m, "packed", isBool)
}

// IsGearList does not look inside items beyond checking that it is an array.
// DecodeGearList is the deep check.
func IsGearList(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	if !isString(m["_id"]) || !isString(m["listTitle"]) {
		return false
	}
	if !optional(m, "listDescription", isString) {
		return false
	}
	_, ok = m["items"].([]any)
	return ok
}

func IsArrayOfGearLists(v any) bool {
	lists, ok := v.([]any)
	if !ok {
		return false
	}
	for _, list := range lists {
		if !IsGearList(list) {
			return false
		}
	}
	return true
}

func optional(m map[string]any, key string, check func(any) bool) bool {
	v, present := m[key]
	return !present || check(v)
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	switch v.(type) {
	case float64, json.Number:
		return true
	}
	return false
}
