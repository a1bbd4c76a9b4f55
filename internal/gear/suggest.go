package gear

import "strings"

// Suggest filters common gear by a case-insensitive substring of the name and
// groups the matches by category in first-seen order. Entries without a
// category are not offered. When list is non-nil, entries whose name is
// already on it are flagged.
func Suggest(common []CommonGearItem, query string, list *GearList) []SuggestionGroup {
	query = strings.ToLower(strings.TrimSpace(query))

	var groups []SuggestionGroup
	index := map[string]int{}
	for _, item := range common {
		if item.Category == "" {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, SuggestionGroup{Category: item.Category, Label: CategoryLabel(item.Category)})
		}
		groups[i].Items = append(groups[i].Items, Suggestion{
			CommonGearItem: item,
			AlreadyAdded:   list != nil && list.HasItemNamed(item.Name),
		})
	}
	return groups
}
