package gear

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loose(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestIsUserGearItem(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"minimal", `{"_id":"i1","name":"Tent"}`, true},
		{"full", `{"_id":"i1","name":"Tent","category":"shelter","quantityNeeded":1,"quantityToPack":0,"quantityToShop":0,"notes":"2p"}`, true},
		{"missing id", `{"name":"Tent"}`, false},
		{"missing name", `{"_id":"i1"}`, false},
		{"numeric id", `{"_id":1,"name":"Tent"}`, false},
		{"string quantity", `{"_id":"i1","name":"Tent","quantityNeeded":"1"}`, false},
		{"null category", `{"_id":"i1","name":"Tent","category":null}`, false},
		{"numeric notes", `{"_id":"i1","name":"Tent","notes":5}`, false},
		{"null", `null`, false},
		{"array", `[]`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUserGearItem(loose(t, tc.raw)))
		})
	}
}

func TestIsGearList(t *testing.T) {
	assert.True(t, IsGearList(loose(t, `{"_id":"l1","listTitle":"Everest Trip","items":[]}`)))
	assert.True(t, IsGearList(loose(t, `{"_id":"l1","listTitle":"Everest Trip","listDescription":"","items":[]}`)))
	assert.False(t, IsGearList(loose(t, `{"listTitle":"Everest Trip","items":[]}`)))
	assert.False(t, IsGearList(loose(t, `{"_id":"l1","items":[]}`)))
	assert.False(t, IsGearList(loose(t, `{"_id":"l1","listTitle":"T","items":{}}`)))
	assert.False(t, IsGearList(loose(t, `{"_id":"l1","listTitle":"T","listDescription":3,"items":[]}`)))
	assert.False(t, IsGearList(nil))
}

// The list predicate is shallow: malformed items still pass. DecodeGearList is
// the check that protects the store.
func TestIsGearListDoesNotInspectItems(t *testing.T) {
	raw := `{"_id":"l1","listTitle":"T","items":[{"name":5},"junk",null]}`
	assert.True(t, IsGearList(loose(t, raw)))

	_, err := DecodeGearList([]byte(raw))
	assert.Error(t, err)
}

func TestIsArrayOfGearLists(t *testing.T) {
	assert.True(t, IsArrayOfGearLists(loose(t, `[]`)))
	assert.True(t, IsArrayOfGearLists(loose(t, `[{"_id":"a","listTitle":"A","items":[]},{"_id":"b","listTitle":"B","items":[]}]`)))
	assert.False(t, IsArrayOfGearLists(loose(t, `[{"_id":"a","listTitle":"A","items":[]},{"_id":"b","items":[]}]`)))
	assert.False(t, IsArrayOfGearLists(loose(t, `{"_id":"a","listTitle":"A","items":[]}`)))
	assert.False(t, IsArrayOfGearLists(nil))
}
