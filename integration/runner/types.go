package runner

// TestSuite is one scripted walkthrough: a named sequence of player inputs
// with expectations checked against the session state after each one.
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps"`
}

// TestStep is a single input. Exactly one of Op or Input applies: Op selects
// a session operation (save, load, reset), Input is a player interaction
// posted to the interact endpoint.
type TestStep struct {
	Name  string        `json:"name,omitempty"`
	Op    string        `json:"op,omitempty"`
	Input *InteractStep `json:"input,omitempty"`

	Expect Expectations `json:"expect"`
}

// InteractStep mirrors the interact request body.
type InteractStep struct {
	Type      string  `json:"type"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Choice    int     `json:"choice,omitempty"`
	ItemID    string  `json:"item_id,omitempty"`
	TargetID  string  `json:"target_id,omitempty"`
	Direction string  `json:"direction,omitempty"`
}

// Expectations is checked against the session state fetched after the step.
// Nil and empty fields are not checked.
type Expectations struct {
	Scene        *string  `json:"scene,omitempty"`
	Inventory    []string `json:"inventory,omitempty"` // full contents, order independent
	HasItems     []string `json:"has_items,omitempty"`
	MissingItems []string `json:"missing_items,omitempty"`
	SelectedItem *string  `json:"selected_item,omitempty"`
	DialogState  *string  `json:"dialog_state,omitempty"`
	FlagsTrue    []string `json:"flags_true,omitempty"`
	FlagsFalse   []string `json:"flags_false,omitempty"`
}

// TestResult is the outcome of one step.
type TestResult struct {
	Step     string
	Passed   bool
	Failures []string
}
