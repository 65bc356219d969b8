package game

// SetFlag records a progress marker. Values come from JSON, so anything
// representable there is allowed; plain toggles use booleans.
func (m *Manager) SetFlag(name string, value any) {
	if !m.ensureInitialized() {
		return
	}
	m.mu.Lock()
	old := m.flags[name]
	m.flags[name] = value
	m.mu.Unlock()

	m.emit(Event{Type: EventFlagChanged, Data: map[string]any{
		"flag": name,
		"old":  old,
		"new":  value,
	}})
}

// Flag returns the raw flag value; absent flags read as nil.
func (m *Manager) Flag(name string) any {
	if !m.ensureInitialized() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[name]
}

// FlagBool is the boolean view: absent flags and non-boolean values other
// than truthy primitives read as false.
func (m *Manager) FlagBool(name string) bool {
	return truthy(m.Flag(name))
}

// Flags returns a copy of all flags.
func (m *Manager) Flags() map[string]any {
	if !m.ensureInitialized() {
		return map[string]any{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	flags := make(map[string]any, len(m.flags))
	for k, v := range m.flags {
		flags[k] = v
	}
	return flags
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return true
	}
}
