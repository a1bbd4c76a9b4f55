package gear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByCategory(t *testing.T) {
	items := []UserGearItem{
		{ID: "1", Name: "Rain shell", Category: "clothing"},
		{ID: "2", Name: "Tent", Category: "shelter"},
		{ID: "3", Name: "Cards"},
		{ID: "4", Name: "Pad", Category: "shelter"},
		{ID: "5", Name: "Kite", Category: "toys"},
	}

	buckets := GroupByCategory(items)
	require.Len(t, buckets, 3)
	assert.Equal(t, "Shelter & Sleep", buckets[0].Category.Label)
	assert.Equal(t, []string{"Tent", "Pad"}, names(buckets[0].Items))
	assert.Equal(t, "clothing", buckets[1].Category.ID)
	assert.Equal(t, MiscCategory, buckets[2].Category.ID)
	assert.Equal(t, []string{"Cards", "Kite"}, names(buckets[2].Items))
}

func TestGroupByCategoryEmpty(t *testing.T) {
	assert.Empty(t, GroupByCategory(nil))
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Water & Hydration", CategoryLabel("water"))
	assert.Equal(t, "Miscellaneous", CategoryLabel("unknown"))
	assert.True(t, IsKnownCategory("electronics"))
	assert.False(t, IsKnownCategory(""))
}

func TestSuggest(t *testing.T) {
	common := []CommonGearItem{
		{ID: "c1", Name: "Headlamp", Category: "electronics"},
		{ID: "c2", Name: "Tent", Category: "shelter"},
		{ID: "c3", Name: "Tent stakes", Category: "shelter"},
		{ID: "c4", Name: "Mystery"},
	}
	list := &GearList{Items: []UserGearItem{{ID: "i1", Name: "Tent"}}}

	groups := Suggest(common, "TENT", list)
	require.Len(t, groups, 1)
	assert.Equal(t, "Shelter & Sleep", groups[0].Label)
	require.Len(t, groups[0].Items, 2)
	assert.True(t, groups[0].Items[0].AlreadyAdded)
	assert.False(t, groups[0].Items[1].AlreadyAdded)

	all := Suggest(common, "", nil)
	assert.Len(t, all, 2)
}

func names(items []UserGearItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
