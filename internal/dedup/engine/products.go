package engine

import (
	"sort"
	"strings"

	productmodels "leadhub/internal/product/models"
)

// ProductNameKey is the grouping key for product consolidation.
func ProductNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GroupProductsByName returns the groups of two or more products that share
// a name key. Groups appear in the order their first member appears in
// products; each group is sorted oldest first with undated products last.
func GroupProductsByName(products []*productmodels.Product) [][]*productmodels.Product {
	byKey := make(map[string][]*productmodels.Product)
	var keys []string
	for _, p := range products {
		key := ProductNameKey(p.PName)
		if _, ok := byKey[key]; !ok {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], p)
	}

	var groups [][]*productmodels.Product
	for _, key := range keys {
		group := byKey[key]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			a, b := group[i].CreatedAt, group[j].CreatedAt
			switch {
			case a.IsZero():
				return false
			case b.IsZero():
				return true
			default:
				return a.Before(b)
			}
		})
		groups = append(groups, group)
	}
	return groups
}
