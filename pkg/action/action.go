// Package action defines the declarative action values attached to hotspots,
// items, dialogue choices, and scene intro events. Actions are pure data:
// the execution engine interprets them against game state and presentation
// capabilities.
package action

// Type discriminates the action union. The set is closed; documents using an
// unknown type are logged and skipped at execution time rather than rejected
// at load time, so older engines tolerate newer authoring data.
type Type string

const (
	TypeDialog        Type = "dialog"
	TypeConversation  Type = "conversation"
	TypeChangeScene   Type = "changeScene"
	TypeGiveItem      Type = "giveItem"
	TypeRequireItem   Type = "requireItem"
	TypeToggleObject  Type = "toggleObject"
	TypePlayAnimation Type = "playAnimation"
	TypePlaySound     Type = "playSound"
	TypeSetFlag       Type = "setFlag"
	TypeConditional   Type = "conditional"
	TypeCustom        Type = "custom"
)

// Action is one effect to apply. Only the fields for its Type are meaningful;
// the rest stay zero. OnComplete chains a follow-up action after this one
// finishes, including after asynchronous completion of dialogs and tweens.
type Action struct {
	Type Type `json:"type"`

	// dialog
	Text    string `json:"text,omitempty"`
	Speaker string `json:"speaker,omitempty"`

	// conversation
	Conversation []Line `json:"conversation,omitempty"`

	// changeScene
	TargetScene string `json:"target_scene,omitempty"`

	// giveItem
	ItemID string `json:"item_id,omitempty"`

	// requireItem
	Item          string  `json:"item,omitempty"`
	ConsumeItem   bool    `json:"consume_item,omitempty"`
	SuccessAction *Action `json:"success_action,omitempty"`
	SuccessText   string  `json:"success_text,omitempty"`
	HintText      string  `json:"hint_text,omitempty"`

	// toggleObject
	ToggleTexture  string   `json:"toggle_texture,omitempty"`
	DefaultTexture string   `json:"default_texture,omitempty"`
	StateTexts     []string `json:"state_texts,omitempty"` // [off, on]

	// playAnimation
	Target         string             `json:"target,omitempty"`
	Props          map[string]float64 `json:"props,omitempty"`
	DurationMS     int                `json:"duration_ms,omitempty"`
	Ease           string             `json:"ease,omitempty"`
	Yoyo           bool               `json:"yoyo,omitempty"`
	Repeat         int                `json:"repeat,omitempty"`
	OnAnimComplete *Action            `json:"on_anim_complete,omitempty"`

	// playSound (also used by toggleObject)
	Sound string `json:"sound,omitempty"`

	// setFlag
	Flag  string `json:"flag,omitempty"`
	Value any    `json:"value,omitempty"`

	// conditional
	When string  `json:"when,omitempty"`
	Then *Action `json:"then,omitempty"`
	Else *Action `json:"else,omitempty"`

	// custom
	Handler string `json:"handler,omitempty"`

	OnComplete *Action `json:"on_complete,omitempty"`
}
