// Package catalog defines the item and combination catalog consumed by the
// game manager at initialization.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Combination maps an unordered item pair to a crafted result.
type Combination struct {
	Item1           string `json:"item1"`
	Item2           string `json:"item2"`
	Result          string `json:"result"`
	CreationMessage string `json:"creation_message,omitempty"`
}

// Document is the catalog file loaded once at startup. It declares every
// item in the game, the combination table, and the new-game defaults.
type Document struct {
	Items         []Item        `json:"items"`
	Combinations  []Combination `json:"combinations,omitempty"`
	StartingScene string        `json:"starting_scene,omitempty"`
	StartingItems []string      `json:"starting_items,omitempty"`
}

// CombinationKey derives the order-independent lookup key for an item pair.
// Sorting the ids first makes combine(a,b) and combine(b,a) resolve to the
// same entry.
func CombinationKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// ItemIndex builds the id -> definition map from the document.
func (d *Document) ItemIndex() map[string]Item {
	index := make(map[string]Item, len(d.Items))
	for _, item := range d.Items {
		index[item.ID] = item
	}
	return index
}

// CombinationIndex builds the symmetric-key -> result map.
func (d *Document) CombinationIndex() map[string]string {
	index := make(map[string]string, len(d.Combinations))
	for _, c := range d.Combinations {
		index[CombinationKey(c.Item1, c.Item2)] = c.Result
	}
	return index
}

// Validate checks the document for authoring mistakes: duplicate item ids,
// combinations referencing unknown items, and starting items that do not
// exist. It returns every problem found, not just the first.
func (d *Document) Validate() []error {
	var errs []error

	seen := make(map[string]bool, len(d.Items))
	for _, item := range d.Items {
		if item.ID == "" {
			errs = append(errs, fmt.Errorf("item with empty id (name %q)", item.Name))
			continue
		}
		if seen[item.ID] {
			errs = append(errs, fmt.Errorf("duplicate item id %q", item.ID))
		}
		seen[item.ID] = true
	}

	for _, c := range d.Combinations {
		for _, id := range []string{c.Item1, c.Item2, c.Result} {
			if !seen[id] {
				errs = append(errs, fmt.Errorf("combination %s+%s=%s references unknown item %q",
					c.Item1, c.Item2, c.Result, id))
			}
		}
	}

	for _, id := range d.StartingItems {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("starting item %q is not in the catalog", id))
		}
	}

	return errs
}
