package document

import (
	"cmp"
	"slices"

	"github.com/davidbz/tarifa/internal/domain"
)

// OtherCategory collects items whose category is not configured.
const OtherCategory = "other"

// Group is a category with its items, in catalog order.
type Group struct {
	Key      string        `json:"key"`
	Category Category      `json:"category"`
	Items    []domain.Item `json:"items"`
}

// Group arranges items by category, ordered by the category order and then key.
// Items with an unknown or empty category end up in a trailing "other" group.
func (b *Bundle) Group(items []domain.Item) []Group {
	byKey := make(map[string]*Group)
	var other *Group

	for _, item := range items {
		category, known := b.Categories[item.Category]
		if !known {
			if other == nil {
				other = &Group{Key: OtherCategory, Category: Category{Name: "Other", Order: 0}}
			}
			other.Items = append(other.Items, item)
			continue
		}

		group, ok := byKey[item.Category]
		if !ok {
			group = &Group{Key: item.Category, Category: category}
			byKey[item.Category] = group
		}
		group.Items = append(group.Items, item)
	}

	groups := make([]Group, 0, len(byKey)+1)
	for _, group := range byKey {
		groups = append(groups, *group)
	}
	slices.SortFunc(groups, func(a, b Group) int {
		if c := cmp.Compare(a.Category.Order, b.Category.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})

	if other != nil {
		groups = append(groups, *other)
	}
	return groups
}
