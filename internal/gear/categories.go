package gear

type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Order int    `json:"order"`
}

const MiscCategory = "misc"

// Categories is the fixed display grouping, already in sort order.
var Categories = []Category{
	{ID: "shelter", Label: "Shelter & Sleep", Order: 1},
	{ID: "clothing", Label: "Clothing & Footwear", Order: 2},
	{ID: "food", Label: "Food & Cooking", Order: 3},
	{ID: "water", Label: "Water & Hydration", Order: 4},
	{ID: "navigation", Label: "Navigation", Order: 5},
	{ID: "safety", Label: "Safety & First Aid", Order: 6},
	{ID: "toiletries", Label: "Toiletries & Hygiene", Order: 7},
	{ID: "electronics", Label: "Electronics", Order: 8},
	{ID: "personal", Label: "Personal Items", Order: 9},
	{ID: MiscCategory, Label: "Miscellaneous", Order: 10},
}

var categoryIndex = func() map[string]int {
	idx := make(map[string]int, len(Categories))
	for i, c := range Categories {
		idx[c.ID] = i
	}
	return idx
}()

func IsKnownCategory(id string) bool {
	_, ok := categoryIndex[id]
	return ok
}

// CategoryLabel returns the display label, or the misc label for unknown ids.
func CategoryLabel(id string) string {
	if i, ok := categoryIndex[id]; ok {
		return Categories[i].Label
	}
	return Categories[categoryIndex[MiscCategory]].Label
}

// Bucket is one category heading with its items in list order.
type Bucket struct {
	Category Category       `json:"category"`
	Items    []UserGearItem `json:"items"`
}

// GroupByCategory buckets items in category order. Empty buckets are left out
// and items with an absent or unknown category land in misc.
func GroupByCategory(items []UserGearItem) []Bucket {
	grouped := make([][]UserGearItem, len(Categories))
	for _, item := range items {
		i, ok := categoryIndex[item.Category]
		if !ok {
			i = categoryIndex[MiscCategory]
		}
		grouped[i] = append(grouped[i], item)
	}

	buckets := make([]Bucket, 0, len(Categories))
	for i, items := range grouped {
		if len(items) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{Category: Categories[i], Items: items})
	}
	return buckets
}

// SuggestionGroup is a category of common gear offered while adding an item.
type SuggestionGroup struct {
	Category string       `json:"category"`
	Label    string       `json:"label"`
	Items    []Suggestion `json:"items"`
}

type Suggestion struct {
	CommonGearItem
	AlreadyAdded bool `json:"alreadyAdded"`
}
