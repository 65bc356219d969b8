package catalog

import (
	"strings"
	"testing"
)

func TestCombinationKey_OrderIndependent(t *testing.T) {
	if CombinationKey("key", "wire") != CombinationKey("wire", "key") {
		t.Error("Key must not depend on argument order")
	}
	if got := CombinationKey("wire", "key"); got != "key_wire" {
		t.Errorf("CombinationKey = %q, want key_wire", got)
	}
}

func TestDocument_Indexes(t *testing.T) {
	doc := &Document{
		Items: []Item{
			{ID: "key", Name: "Brass Key"},
			{ID: "wire", Name: "Copper Wire"},
			{ID: "lockpick", Name: "Lockpick"},
		},
		Combinations: []Combination{
			{Item1: "wire", Item2: "key", Result: "lockpick"},
		},
	}

	items := doc.ItemIndex()
	if len(items) != 3 {
		t.Fatalf("ItemIndex size = %d", len(items))
	}
	if items["key"].Name != "Brass Key" {
		t.Errorf("ItemIndex[key].Name = %q", items["key"].Name)
	}

	combos := doc.CombinationIndex()
	if got := combos[CombinationKey("key", "wire")]; got != "lockpick" {
		t.Errorf("CombinationIndex lookup = %q, want lockpick", got)
	}
}

func TestDocument_Validate(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		wantErrs int
		contains string
	}{
		{
			name: "valid document",
			doc: Document{
				Items: []Item{{ID: "key", Name: "Key"}, {ID: "wire"}, {ID: "lockpick"}},
				Combinations: []Combination{
					{Item1: "key", Item2: "wire", Result: "lockpick"},
				},
				StartingItems: []string{"key"},
			},
			wantErrs: 0,
		},
		{
			name:     "duplicate item id",
			doc:      Document{Items: []Item{{ID: "key"}, {ID: "key"}}},
			wantErrs: 1,
			contains: "duplicate item id",
		},
		{
			name:     "empty item id",
			doc:      Document{Items: []Item{{Name: "Nameless"}}},
			wantErrs: 1,
			contains: "empty id",
		},
		{
			name: "combination references unknown item",
			doc: Document{
				Items:        []Item{{ID: "key"}, {ID: "wire"}},
				Combinations: []Combination{{Item1: "key", Item2: "wire", Result: "ghost"}},
			},
			wantErrs: 1,
			contains: `unknown item "ghost"`,
		},
		{
			name: "unknown starting item",
			doc: Document{
				Items:         []Item{{ID: "key"}},
				StartingItems: []string{"map"},
			},
			wantErrs: 1,
			contains: "starting item",
		},
		{
			name: "multiple problems all reported",
			doc: Document{
				Items:         []Item{{ID: "key"}, {ID: "key"}},
				Combinations:  []Combination{{Item1: "a", Item2: "b", Result: "c"}},
				StartingItems: []string{"map"},
			},
			wantErrs: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.doc.Validate()
			if len(errs) != tt.wantErrs {
				t.Fatalf("Validate returned %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
			if tt.contains == "" {
				return
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.contains) {
					found = true
				}
			}
			if !found {
				t.Errorf("No error containing %q in %v", tt.contains, errs)
			}
		})
	}
}

func TestItem_DefaultFlags(t *testing.T) {
	f := false
	item := Item{ID: "key", UseWith: []string{"door"}}

	if !item.IsUsable() || !item.IsExaminable() || !item.IsCombinable() {
		t.Error("Absent flags should default to true")
	}
	item.Usable = &f
	if item.IsUsable() {
		t.Error("Explicit false should win over the default")
	}
	if !item.CanUseWith("door") {
		t.Error("CanUseWith should match a declared peer")
	}
	if item.CanUseWith("window") {
		t.Error("CanUseWith should reject undeclared peers")
	}
}
