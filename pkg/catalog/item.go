package catalog

// ItemType classifies an item for UI grouping and authoring validation.
type ItemType string

const (
	ItemTypeKey        ItemType = "key"
	ItemTypeTool       ItemType = "tool"
	ItemTypeDocument   ItemType = "document"
	ItemTypeConsumable ItemType = "consumable"
	ItemTypeQuest      ItemType = "quest"
	ItemTypeMisc       ItemType = "misc"
)

// Item is the immutable definition of a collectible item. Instances in a
// scene reference these by id; the definitions themselves are loaded once
// from the catalog document and never mutated.
type Item struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          ItemType `json:"type,omitempty"`
	Description   string   `json:"description,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	Cursor        string   `json:"cursor,omitempty"`
	PickupMessage string   `json:"pickup_message,omitempty"`
	Usable        *bool    `json:"usable,omitempty"`     // nil means true
	Examinable    *bool    `json:"examinable,omitempty"` // nil means true
	Combinable    *bool    `json:"combinable,omitempty"` // nil means true
	UseWith       []string `json:"use_with,omitempty"`
}

// IsUsable reports whether the item can be used on hotspots. Absent in the
// catalog document means usable.
func (i Item) IsUsable() bool {
	return i.Usable == nil || *i.Usable
}

// IsExaminable reports whether right-click examine shows the description.
func (i Item) IsExaminable() bool {
	return i.Examinable == nil || *i.Examinable
}

// IsCombinable reports whether the item may participate in combinations.
func (i Item) IsCombinable() bool {
	return i.Combinable == nil || *i.Combinable
}

// CanUseWith reports whether other is a declared combination peer.
func (i Item) CanUseWith(other string) bool {
	for _, id := range i.UseWith {
		if id == other {
			return true
		}
	}
	return false
}
