package input

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"knot/internal/annotate"
	"knot/internal/config"
	"knot/internal/task"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeEdit
	ModeCommand
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "INSERT"
	case ModeEdit:
		return "EDIT"
	case ModeCommand:
		return "COMMAND"
	default:
		return "NORMAL"
	}
}

var commandNames = []string{"ls", "e ", "n ", "sort", "display_start"}

// Machine interprets key events against the current mode and produces
// mutations for the host to apply. It owns the selection index, the
// one-slot pending-key buffer for the gg/dd/za sequences, and the text
// buffer used by insert, edit and command modes.
type Machine struct {
	mode         Mode
	pending      string
	selection    int
	insertParent string
	editID       string
	input        textinput.Model
	keys         config.Keymap
	pivot        int
	clusters     []string
	now          func() time.Time
}

func NewMachine(keys config.Keymap, pivot int) *Machine {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return &Machine{
		keys:  keys,
		pivot: pivot,
		input: ti,
		now:   time.Now,
	}
}

func (m *Machine) Mode() Mode {
	return m.mode
}

func (m *Machine) Pending() string {
	return m.pending
}

func (m *Machine) Selection() int {
	return m.selection
}

func (m *Machine) SetSelection(i int) {
	m.selection = i
}

// SetClusters refreshes the cluster names offered by Tab completion.
func (m *Machine) SetClusters(names []string) {
	m.clusters = names
}

func (m *Machine) InputView() string {
	return m.input.View()
}

func (m *Machine) SetWidth(w int) {
	if w > 0 {
		m.input.Width = w
	}
}

// Handle processes one key event. Exactly one event is in flight at a
// time; the returned mutation, if any, must be applied before the next
// call.
func (m *Machine) Handle(msg tea.KeyMsg, visible []task.Entry) (Mutation, tea.Cmd) {
	switch m.mode {
	case ModeInsert, ModeEdit:
		return m.handleText(msg)
	case ModeCommand:
		return m.handleCommand(msg)
	default:
		return m.handleNormal(msg, visible), nil
	}
}

func (m *Machine) handleNormal(msg tea.KeyMsg, visible []task.Entry) Mutation {
	key := msg.String()

	// A buffered key either completes its sequence or is discarded, in
	// which case the new key is evaluated fresh below.
	if m.pending != "" {
		pending := m.pending
		m.pending = ""
		if done, mut := m.completeSequence(pending, key, visible); done {
			return mut
		}
	}

	switch key {
	case "g", "d", "z":
		m.pending = key
	case "ctrl+c", m.keys.Quit:
		return Quit{}
	case m.keys.Down, "down":
		if m.selection < len(visible)-1 {
			m.selection++
		}
	case m.keys.Up, "up":
		if m.selection > 0 {
			m.selection--
		}
	case m.keys.Bottom:
		if len(visible) > 0 {
			m.selection = len(visible) - 1
		}
	case m.keys.Toggle:
		if t := m.selected(visible); t != nil {
			return ToggleComplete{ID: t.ID}
		}
	case m.keys.MoveDown:
		if t := m.selected(visible); t != nil {
			return Move{ID: t.ID, Dir: task.MoveDown}
		}
	case m.keys.MoveUp:
		if t := m.selected(visible); t != nil {
			return Move{ID: t.ID, Dir: task.MoveUp}
		}
	case m.keys.Insert:
		m.enterInsert("", "New task...")
	case m.keys.InsertSubtask, "shift+enter":
		if t := m.selected(visible); t != nil && !t.IsSection {
			m.enterInsert(t.ID, "New subtask...")
		}
	case m.keys.Edit:
		if t := m.selected(visible); t != nil {
			m.mode = ModeEdit
			m.editID = t.ID
			m.input.Prompt = "> "
			m.input.SetValue(annotate.Render(t.Text, t.Due, t.Priority))
			m.input.CursorEnd()
			m.input.Focus()
		}
	case m.keys.Command:
		m.mode = ModeCommand
		m.input.Prompt = ":"
		m.input.Placeholder = ""
		m.input.SetValue("")
		m.input.Focus()
	}
	return nil
}

func (m *Machine) completeSequence(pending, key string, visible []task.Entry) (bool, Mutation) {
	switch pending + key {
	case "gg":
		m.selection = 0
		return true, nil
	case "dd":
		if t := m.selected(visible); t != nil {
			return true, Delete{ID: t.ID}
		}
		return true, nil
	case "za":
		if t := m.selected(visible); t != nil {
			return true, ToggleFold{ID: t.ID}
		}
		return true, nil
	}
	return false, nil
}

func (m *Machine) handleText(msg tea.KeyMsg) (Mutation, tea.Cmd) {
	switch msg.String() {
	case m.keys.Cancel:
		m.reset()
		return nil, nil
	case m.keys.Confirm:
		raw := strings.TrimSpace(m.input.Value())
		mode := m.mode
		editID := m.editID
		parent := m.insertParent
		m.reset()
		if raw == "" {
			return nil, nil
		}
		if mode == ModeEdit {
			parsed := annotate.ParseWithPivot(m.now(), raw, m.pivot)
			if parsed.Text == "" {
				return nil, nil
			}
			return UpdateTask{ID: editID, Parsed: parsed}, nil
		}
		if parent == "" {
			if name, ok := strings.CutPrefix(raw, "/section "); ok {
				name = strings.TrimSpace(name)
				if name == "" {
					return nil, nil
				}
				return InsertSection{Name: name}, nil
			}
		}
		parsed := annotate.ParseWithPivot(m.now(), raw, m.pivot)
		if parsed.Text == "" {
			return nil, nil
		}
		return InsertTask{Parsed: parsed, ParentID: parent}, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return nil, cmd
	}
}

func (m *Machine) handleCommand(msg tea.KeyMsg) (Mutation, tea.Cmd) {
	switch msg.String() {
	case m.keys.Cancel:
		m.reset()
		return nil, nil
	case m.keys.Confirm:
		line := strings.TrimSpace(m.input.Value())
		m.reset()
		if line == "" {
			return nil, nil
		}
		return RunCommand{Line: line}, nil
	case "tab":
		m.completeCommand()
		return nil, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return nil, cmd
	}
}

// completeCommand fills the buffer from command and cluster names: a single
// candidate completes outright, several complete to their longest common
// prefix.
func (m *Machine) completeCommand() {
	cands := m.candidates(m.input.Value())
	switch len(cands) {
	case 0:
		return
	case 1:
		m.input.SetValue(cands[0])
	default:
		m.input.SetValue(commonPrefix(cands))
	}
	m.input.CursorEnd()
}

func (m *Machine) candidates(cur string) []string {
	for _, verb := range []string{"e ", "n "} {
		if rest, ok := strings.CutPrefix(cur, verb); ok {
			var out []string
			for _, name := range m.clusters {
				if strings.HasPrefix(name, rest) {
					out = append(out, verb+name)
				}
			}
			return out
		}
	}
	var out []string
	for _, name := range commandNames {
		if strings.HasPrefix(name, cur) {
			out = append(out, name)
		}
	}
	return out
}

func commonPrefix(names []string) string {
	prefix := names[0]
	for _, name := range names[1:] {
		for !strings.HasPrefix(name, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}

func (m *Machine) enterInsert(parentID, placeholder string) {
	m.mode = ModeInsert
	m.insertParent = parentID
	m.input.Prompt = "> "
	m.input.Placeholder = placeholder
	m.input.Focus()
}

func (m *Machine) reset() {
	m.mode = ModeNormal
	m.pending = ""
	m.insertParent = ""
	m.editID = ""
	m.input.SetValue("")
	m.input.Placeholder = ""
	m.input.Blur()
}

func (m *Machine) selected(visible []task.Entry) *task.Task {
	if m.selection < 0 || m.selection >= len(visible) {
		return nil
	}
	return visible[m.selection].Task
}
