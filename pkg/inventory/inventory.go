// Package inventory maintains the displayed list of held items. It mirrors
// the game manager's inventory but owns the UI-facing state: selection and
// the paging window. Combination resolution is delegated to the manager.
package inventory

import (
	"log/slog"
	"sync"

	"github.com/solhwan/pointclick/pkg/catalog"
	"github.com/solhwan/pointclick/pkg/game"
)

// DefaultPageSize is how many items one window shows.
const DefaultPageSize = 8

// View is the presentation-side inventory list.
type View struct {
	game   *game.Manager
	logger *slog.Logger

	mu       sync.Mutex
	items    []catalog.Item
	selected *catalog.Item
	offset   int
	pageSize int
}

func NewView(g *game.Manager, pageSize int, logger *slog.Logger) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	v := &View{game: g, pageSize: pageSize, logger: logger}
	v.Reload()
	return v
}

// Reload resyncs the displayed list from the game manager, preserving the
// manager's collection order.
func (v *View) Reload() {
	items := v.game.InventoryItems()
	v.mu.Lock()
	v.items = items
	v.clampOffsetLocked()
	v.mu.Unlock()
}

// Items returns the full displayed list.
func (v *View) Items() []catalog.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]catalog.Item(nil), v.items...)
}

// Visible returns the current page window.
func (v *View) Visible() []catalog.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	end := v.offset + v.pageSize
	if end > len(v.items) {
		end = len(v.items)
	}
	if v.offset >= end {
		return nil
	}
	return append([]catalog.Item(nil), v.items[v.offset:end]...)
}

// AddItem appends a definition if not already displayed. Returns whether it
// was added.
func (v *View) AddItem(item catalog.Item) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, held := range v.items {
		if held.ID == item.ID {
			return false
		}
	}
	v.items = append(v.items, item)
	return true
}

// RemoveItem removes and returns the definition, or nil if absent. Removing
// the selected item clears the selection.
func (v *View) RemoveItem(itemID string) *catalog.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, held := range v.items {
		if held.ID == itemID {
			v.items = append(v.items[:i], v.items[i+1:]...)
			if v.selected != nil && v.selected.ID == itemID {
				v.selected = nil
			}
			v.clampOffsetLocked()
			return &held
		}
	}
	return nil
}

// Select toggles selection: selecting the already-selected item deselects.
// Unknown ids are ignored.
func (v *View) Select(itemID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != nil && v.selected.ID == itemID {
		v.selected = nil
		return
	}
	for _, held := range v.items {
		if held.ID == itemID {
			item := held
			v.selected = &item
			return
		}
	}
}

// Selected returns the currently selected item, or nil.
func (v *View) Selected() *catalog.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return nil
	}
	item := *v.selected
	return &item
}

// Deselect clears the selection.
func (v *View) Deselect() {
	v.mu.Lock()
	v.selected = nil
	v.mu.Unlock()
}

// CombineSelectedWith attempts to combine the selected item with a second
// one. On success the displayed list loses both sources and gains the
// result; on failure it is unchanged. Selection is always cleared
// afterwards. The returned message is the combination's creation message
// (empty when none, or on failure).
func (v *View) CombineSelectedWith(targetID string) (*catalog.Item, string) {
	selected := v.Selected()
	defer v.Deselect()
	if selected == nil || selected.ID == targetID {
		return nil, ""
	}

	combo, registered := v.game.CombinationFor(selected.ID, targetID)
	result := v.game.CombineItems(selected.ID, targetID)
	if result == nil {
		return nil, ""
	}

	v.RemoveItem(selected.ID)
	v.RemoveItem(targetID)
	v.AddItem(*result)

	message := ""
	if registered {
		message = combo.CreationMessage
	}
	return result, message
}

// ScrollBack moves the window one page toward the start.
func (v *View) ScrollBack() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset -= v.pageSize
	v.clampOffsetLocked()
}

// ScrollForward moves the window one page toward the end.
func (v *View) ScrollForward() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset += v.pageSize
	v.clampOffsetLocked()
}

// Offset returns the window start index.
func (v *View) Offset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.offset
}

// clampOffsetLocked keeps the window start within [0, len-pageSize].
func (v *View) clampOffsetLocked() {
	max := len(v.items) - v.pageSize
	if max < 0 {
		max = 0
	}
	if v.offset > max {
		v.offset = max
	}
	if v.offset < 0 {
		v.offset = 0
	}
}
