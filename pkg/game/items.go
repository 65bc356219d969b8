package game

import (
	"github.com/solhwan/pointclick/pkg/catalog"
)

// CollectItem appends an item to the inventory. Returns false (no event)
// when the item is already held: collecting is idempotent.
func (m *Manager) CollectItem(itemID string) bool {
	if !m.ensureInitialized() {
		return false
	}
	m.mu.Lock()
	if m.holdsLocked(itemID) {
		m.mu.Unlock()
		return false
	}
	m.inventory = append(m.inventory, itemID)
	m.mu.Unlock()

	m.emit(Event{Type: EventItemCollected, Data: map[string]any{"item": itemID}})
	return true
}

// RemoveItem removes an item from the inventory, reporting whether it was
// held.
func (m *Manager) RemoveItem(itemID string) bool {
	if !m.ensureInitialized() {
		return false
	}
	m.mu.Lock()
	removed := m.removeLocked(itemID)
	m.mu.Unlock()

	if removed {
		m.emit(Event{Type: EventItemRemoved, Data: map[string]any{"item": itemID}})
	}
	return removed
}

// HasItem reports whether the inventory holds itemID.
func (m *Manager) HasItem(itemID string) bool {
	if !m.ensureInitialized() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holdsLocked(itemID)
}

// CollectedItems returns the held item ids in collection order.
func (m *Manager) CollectedItems() []string {
	if !m.ensureInitialized() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inventory...)
}

// InventoryItems returns the definitions of held items in collection order.
// Items missing from the catalog (authoring drift) are skipped.
func (m *Manager) InventoryItems() []catalog.Item {
	if !m.ensureInitialized() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]catalog.Item, 0, len(m.inventory))
	for _, id := range m.inventory {
		if item, ok := m.items[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

// ItemData looks up an item definition, or nil when unknown.
func (m *Manager) ItemData(itemID string) *catalog.Item {
	if !m.ensureInitialized() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[itemID]; ok {
		return &item
	}
	return nil
}

// CombineItems resolves the symmetric combination of two held items. On a
// registered pair, both inputs are removed and the result added in one
// atomic step; the result definition is returned. Unregistered pairs return
// nil with the inventory untouched - that is the expected "cannot combine"
// outcome, not an error.
func (m *Manager) CombineItems(itemA, itemB string) *catalog.Item {
	if !m.ensureInitialized() {
		return nil
	}

	key := catalog.CombinationKey(itemA, itemB)

	m.mu.Lock()
	combo, ok := m.combinations[key]
	if !ok {
		m.mu.Unlock()
		m.logger.Debug("No combination registered", "item_a", itemA, "item_b", itemB)
		m.emit(Event{Type: EventCombinationFailed, Data: map[string]any{
			"item_a": itemA,
			"item_b": itemB,
		}})
		return nil
	}

	// All three mutations happen under one lock so observers and concurrent
	// readers never see the inventory with the inputs gone but no result.
	removedA := m.removeLocked(itemA)
	removedB := m.removeLocked(itemB)
	added := !m.holdsLocked(combo.Result)
	if added {
		m.inventory = append(m.inventory, combo.Result)
	}
	result, known := m.items[combo.Result]
	m.mu.Unlock()

	if removedA {
		m.emit(Event{Type: EventItemRemoved, Data: map[string]any{"item": itemA}})
	}
	if removedB {
		m.emit(Event{Type: EventItemRemoved, Data: map[string]any{"item": itemB}})
	}
	if added {
		m.emit(Event{Type: EventItemCollected, Data: map[string]any{"item": combo.Result}})
	}
	m.emit(Event{Type: EventItemsCombined, Data: map[string]any{
		"item_a":  itemA,
		"item_b":  itemB,
		"result":  combo.Result,
		"message": combo.CreationMessage,
	}})

	if !known {
		m.logger.Warn("Combination result missing from catalog", "result", combo.Result)
		return &catalog.Item{ID: combo.Result}
	}
	return &result
}

// CombinationFor returns the registered combination for a pair, if any.
func (m *Manager) CombinationFor(itemA, itemB string) (catalog.Combination, bool) {
	if !m.ensureInitialized() {
		return catalog.Combination{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	combo, ok := m.combinations[catalog.CombinationKey(itemA, itemB)]
	return combo, ok
}

func (m *Manager) holdsLocked(itemID string) bool {
	for _, id := range m.inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

func (m *Manager) removeLocked(itemID string) bool {
	for i, id := range m.inventory {
		if id == itemID {
			m.inventory = append(m.inventory[:i], m.inventory[i+1:]...)
			return true
		}
	}
	return false
}
