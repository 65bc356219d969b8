package action

import (
	"encoding/json"
	"fmt"
)

// Line is one step of a conversation. A line without choices advances on the
// continue signal; a line with choices blocks until one is selected.
type Line struct {
	Text    string   `json:"text"`
	Speaker string   `json:"speaker,omitempty"`
	Choices []Choice `json:"choices,omitempty"`
}

// Choice is a selectable response. Action, if present, runs before control
// flow resolves. Next steers the conversation: a jump index within the
// current sequence, or a replacement sequence of lines. When absent, the
// conversation advances to the following line.
type Choice struct {
	Text      string  `json:"text"`
	Action    *Action `json:"action,omitempty"`
	NextIndex *int    `json:"-"`
	NextLines []Line  `json:"-"`
}

type choiceAlias struct {
	Text   string          `json:"text"`
	Action *Action         `json:"action,omitempty"`
	Next   json.RawMessage `json:"next,omitempty"`
}

// UnmarshalJSON accepts "next" as either a number or an array of lines.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var alias choiceAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	c.Text = alias.Text
	c.Action = alias.Action
	c.NextIndex = nil
	c.NextLines = nil

	if len(alias.Next) == 0 || string(alias.Next) == "null" {
		return nil
	}

	var index int
	if err := json.Unmarshal(alias.Next, &index); err == nil {
		c.NextIndex = &index
		return nil
	}

	var lines []Line
	if err := json.Unmarshal(alias.Next, &lines); err == nil {
		c.NextLines = lines
		return nil
	}

	return fmt.Errorf("choice %q: next must be an index or a line sequence", alias.Text)
}

// MarshalJSON is the inverse of UnmarshalJSON, preserving the authored shape.
func (c Choice) MarshalJSON() ([]byte, error) {
	alias := choiceAlias{Text: c.Text, Action: c.Action}
	switch {
	case c.NextIndex != nil:
		raw, err := json.Marshal(*c.NextIndex)
		if err != nil {
			return nil, err
		}
		alias.Next = raw
	case c.NextLines != nil:
		raw, err := json.Marshal(c.NextLines)
		if err != nil {
			return nil, err
		}
		alias.Next = raw
	}
	return json.Marshal(alias)
}
