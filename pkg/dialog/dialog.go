// Package dialog implements the conversation state machine: single-line
// messages, linear sequences, and branching choices. Presentation is
// delegated to a Presenter; choice side effects run through a Runner so the
// machine stays independent of the action engine.
package dialog

import (
	"log/slog"
	"sync"
	"time"

	"github.com/solhwan/pointclick/pkg/action"
)

// State of the machine. Ended is transient: the machine returns to Idle in
// the same step, after clearing the conversation and hiding presentation.
type State string

const (
	StateIdle           State = "idle"
	StateShowingLine    State = "showing_line"
	StateAwaitingChoice State = "awaiting_choice"
)

// Presenter renders dialogue. choices is nil for plain lines.
type Presenter interface {
	ShowLine(text, speaker string, choices []string)
	Hide()
}

// Runner executes a choice's attached action.
type Runner interface {
	Run(act *action.Action)
}

// ShowOptions configures a single-line Show.
type ShowOptions struct {
	Speaker    string
	OnComplete func()
	// AutoClose dismisses the line after Duration without user input.
	AutoClose bool
	Duration  time.Duration
}

const defaultAutoCloseDuration = 3 * time.Second

// Machine holds at most one active conversation. Starting a new one while
// one is active replaces it outright.
type Machine struct {
	presenter Presenter
	runner    Runner
	logger    *slog.Logger

	mu           sync.Mutex
	state        State
	conversation []action.Line
	index        int
	onComplete   func()
	generation   uint64
}

func NewMachine(presenter Presenter, runner Runner, logger *slog.Logger) *Machine {
	return &Machine{
		presenter: presenter,
		runner:    runner,
		logger:    logger,
		state:     StateIdle,
	}
}

// SetRunner installs the choice-action runner after construction. The
// executor that runs choice actions also needs the machine, so startup
// wires the two in this order.
func (m *Machine) SetRunner(r Runner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runner = r
}

// State returns the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Index returns the current line index within the active conversation.
func (m *Machine) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Active reports whether a line or conversation is on screen.
func (m *Machine) Active() bool {
	return m.State() != StateIdle
}

// Show displays a single line. Any active conversation is replaced and its
// completion callback discarded.
func (m *Machine) Show(text string, opts ShowOptions) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.conversation = nil
	m.index = 0
	m.state = StateShowingLine
	m.onComplete = opts.OnComplete
	m.mu.Unlock()

	m.presenter.ShowLine(text, opts.Speaker, nil)

	if opts.AutoClose {
		d := opts.Duration
		if d <= 0 {
			d = defaultAutoCloseDuration
		}
		time.AfterFunc(d, func() {
			m.mu.Lock()
			stale := gen != m.generation
			m.mu.Unlock()
			if !stale {
				m.Continue()
			}
		})
	}
}

// ShowConversation starts a sequence at line 0, replacing any active one.
func (m *Machine) ShowConversation(lines []action.Line) {
	m.mu.Lock()
	m.generation++
	m.conversation = lines
	m.index = 0
	m.onComplete = nil
	m.mu.Unlock()

	m.showCurrent()
}

// Continue is the advance signal: next line for sequences, dismissal for
// single lines. Ignored while a choice is pending; choices are the only way
// out of AwaitingChoice.
func (m *Machine) Continue() {
	m.mu.Lock()
	switch m.state {
	case StateShowingLine:
	default:
		m.mu.Unlock()
		return
	}
	if m.conversation == nil {
		m.mu.Unlock()
		m.end()
		return
	}
	m.index++
	m.mu.Unlock()

	m.showCurrent()
}

// Choose selects a choice on the current line. The choice's action runs
// first; then next resolves: an index jumps within the sequence, a line
// sequence replaces the conversation, absence advances by one. An
// out-of-bounds result ends the conversation.
func (m *Machine) Choose(i int) {
	m.mu.Lock()
	if m.state != StateAwaitingChoice || m.conversation == nil || m.index >= len(m.conversation) {
		m.mu.Unlock()
		return
	}
	line := m.conversation[m.index]
	if i < 0 || i >= len(line.Choices) {
		m.mu.Unlock()
		m.logger.Warn("Choice index out of range", "index", i, "choices", len(line.Choices))
		return
	}
	choice := line.Choices[i]
	gen := m.generation
	m.mu.Unlock()

	if choice.Action != nil && m.runner != nil {
		m.runner.Run(choice.Action)
	}

	m.mu.Lock()
	// The choice action may have replaced the conversation (for example a
	// nested conversation action); the stale branch must not advance it.
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	switch {
	case choice.NextIndex != nil:
		m.index = *choice.NextIndex
	case choice.NextLines != nil:
		m.conversation = choice.NextLines
		m.index = 0
	default:
		m.index++
	}
	m.mu.Unlock()

	m.showCurrent()
}

func (m *Machine) showCurrent() {
	m.mu.Lock()
	if m.conversation == nil || m.index < 0 || m.index >= len(m.conversation) {
		m.mu.Unlock()
		m.end()
		return
	}
	line := m.conversation[m.index]
	if len(line.Choices) > 0 {
		m.state = StateAwaitingChoice
	} else {
		m.state = StateShowingLine
	}
	choices := make([]string, 0, len(line.Choices))
	for _, c := range line.Choices {
		choices = append(choices, c.Text)
	}
	if len(choices) == 0 {
		choices = nil
	}
	m.mu.Unlock()

	m.presenter.ShowLine(line.Text, line.Speaker, choices)
}

// end clears the active conversation, hides presentation, and fires the
// single-line completion callback exactly once.
func (m *Machine) end() {
	m.mu.Lock()
	m.generation++
	m.conversation = nil
	m.index = 0
	m.state = StateIdle
	done := m.onComplete
	m.onComplete = nil
	m.mu.Unlock()

	m.presenter.Hide()
	if done != nil {
		done()
	}
}
