package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"knot/internal/config"
	"knot/internal/input"
	"knot/internal/storage"
	"knot/internal/task"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	modeStyle      = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	dueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	createdStyle   = lipgloss.NewStyle().Faint(true)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		task.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		task.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		task.PriorityMax:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
	}
)

type unknownCommandError struct {
	name string
}

func (e unknownCommandError) Error() string {
	return "Unknown command: " + e.name
}

type Model struct {
	store       *storage.Store
	cfg         config.Config
	cluster     *task.Cluster
	machine     *input.Machine
	status      string
	showCreated bool
	width       int
	height      int
}

func Run(store *storage.Store, cfg config.Config, clusterName string) error {
	cluster, err := store.Create(clusterName)
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return err
	}

	machine := input.NewMachine(cfg.Keys, cfg.YearPivot)
	machine.SetClusters(names)

	m := Model{
		store:       store,
		cfg:         cfg,
		cluster:     cluster,
		machine:     machine,
		showCreated: cfg.ShowCreated,
		status:      fmt.Sprintf("Press '%s' to add, ':' for commands.", cfg.Keys.Insert),
	}

	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		mut, cmd := m.machine.Handle(msg, m.cluster.Flatten())
		if mut == nil {
			return m, cmd
		}
		return m.apply(mut)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.machine.SetWidth(msg.Width - 10)
	}
	return m, nil
}

func (m Model) apply(mut input.Mutation) (tea.Model, tea.Cmd) {
	switch mut := mut.(type) {
	case input.Quit:
		return m, tea.Quit

	case input.ToggleComplete:
		if err := m.cluster.ToggleComplete(mut.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()

	case input.Delete:
		if err := m.cluster.Delete(mut.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()
		m.clampSelection()
		m.status = "Deleted"

	case input.Move:
		if err := m.cluster.Move(mut.ID, mut.Dir); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()
		m.selectID(mut.ID)

	case input.ToggleFold:
		if err := m.cluster.ToggleFold(mut.ID); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()
		m.clampSelection()

	case input.InsertTask:
		t := task.New(mut.Parsed.Text, mut.Parsed.Due, mut.Parsed.Priority)
		if _, err := m.cluster.Insert(mut.ParentID, -1, t); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()
		m.selectID(t.ID)

	case input.InsertSection:
		t := task.NewSection(mut.Name)
		m.cluster.Add(t)
		m.save()
		m.selectID(t.ID)

	case input.UpdateTask:
		if err := m.cluster.Update(mut.ID, mut.Parsed.Text, mut.Parsed.Due, mut.Parsed.Priority); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.save()

	case input.RunCommand:
		return m.runCommand(mut.Line)
	}
	return m, nil
}

func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	switch {
	case line == "ls":
		names, err := m.store.List()
		if err != nil {
			m.status = fmt.Sprintf("list failed: %v", err)
			return m, nil
		}
		if len(names) == 0 {
			m.status = "No clusters found"
		} else {
			m.status = "Clusters: " + strings.Join(names, ", ")
		}

	case line == "sort":
		m.cluster.Sort()
		m.save()
		m.clampSelection()
		m.status = "Tasks sorted"

	case line == "display_start":
		m.showCreated = !m.showCreated

	case strings.HasPrefix(line, "e "):
		name := strings.TrimSpace(strings.TrimPrefix(line, "e "))
		if name == "" {
			return m, nil
		}
		cluster, err := m.store.Load(name)
		if err != nil {
			var notFound storage.ClusterNotFoundError
			if errors.As(err, &notFound) {
				m.status = fmt.Sprintf("Cluster '%s' does not exist. Use :n to create.", name)
			} else {
				m.status = fmt.Sprintf("open failed: %v", err)
			}
			return m, nil
		}
		m.cluster = cluster
		m.machine.SetSelection(0)
		m.status = fmt.Sprintf("Opened cluster '%s'", name)

	case strings.HasPrefix(line, "n "):
		name := strings.TrimSpace(strings.TrimPrefix(line, "n "))
		if name == "" {
			return m, nil
		}
		cluster, err := m.store.Create(name)
		if err != nil {
			m.status = fmt.Sprintf("create failed: %v", err)
			return m, nil
		}
		m.cluster = cluster
		m.machine.SetSelection(0)
		if names, err := m.store.List(); err == nil {
			m.machine.SetClusters(names)
		}
		m.status = fmt.Sprintf("Created cluster '%s'", name)

	default:
		m.status = unknownCommandError{name: line}.Error()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("knot: " + m.cluster.Name))
	b.WriteString("\n\n")

	visible := m.cluster.Flatten()
	if len(visible) == 0 {
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.\n", m.cfg.Keys.Insert))
	} else {
		b.WriteString(m.renderEntries(visible))
	}

	b.WriteString("\n")
	switch m.machine.Mode() {
	case input.ModeInsert, input.ModeEdit, input.ModeCommand:
		b.WriteString(m.machine.InputView())
		b.WriteString("\n")
	}

	b.WriteString(modeStyle.Render(m.machine.Mode().String()))
	if m.status != "" {
		b.WriteString(" ")
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(m.cfg.Keys)))

	return b.String()
}

func (m Model) renderEntries(visible []task.Entry) string {
	var b strings.Builder
	selection := m.machine.Selection()
	currentYear := time.Now().Year()

	for i, e := range visible {
		cursor := " "
		if i == selection && m.machine.Mode() == input.ModeNormal {
			cursor = ">"
		}
		indent := strings.Repeat("  ", e.Depth)

		if e.Task.IsSection {
			b.WriteString(fmt.Sprintf("%s %s\n", cursor, sectionStyle.Render("── "+e.Task.Text+" ──")))
			continue
		}

		chevron := " "
		if e.Task.HasChildren() {
			chevron = "▾"
			if e.Task.Folded {
				chevron = "▸"
			}
		}

		checkbox := "[ ]"
		text := e.Task.Text
		if e.Task.Completed {
			checkbox = "[x]"
			text = completedStyle.Render(text)
		}

		b.WriteString(fmt.Sprintf("%s %s%s %s %s", cursor, indent, chevron, checkbox, text))

		if pri := e.Task.Priority; pri != task.PriorityNone {
			b.WriteString(" ")
			b.WriteString(priorityStyles[pri].Render("[" + pri.String() + "]"))
		}
		if m.showCreated {
			b.WriteString(" ")
			b.WriteString(createdStyle.Render("+ " + formatDay(e.Task.CreatedAt, currentYear)))
		}
		if e.Task.Due != nil {
			b.WriteString(" ")
			b.WriteString(dueStyle.Render(formatDay(*e.Task.Due, currentYear)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatDay(t time.Time, currentYear int) string {
	if t.Year() != currentYear {
		return t.Format("Jan 02, 2006")
	}
	return t.Format("Jan 02")
}

func helpLine(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • gg/%s top/bottom • %s toggle • dd delete • za fold • %s insert • %s subtask • %s edit • : commands • %s quit",
		k.Down, k.Up, k.Bottom, k.Toggle, k.Insert, k.InsertSubtask, k.Edit, k.Quit)
}

func (m *Model) save() {
	if err := m.store.Save(m.cluster); err != nil {
		m.status = fmt.Sprintf("save failed: %v", err)
	}
}

func (m Model) selectID(id string) {
	for i, e := range m.cluster.Flatten() {
		if e.Task.ID == id {
			m.machine.SetSelection(i)
			return
		}
	}
	m.clampSelection()
}

func (m Model) clampSelection() {
	m.machine.SetSelection(clampCursor(m.machine.Selection(), len(m.cluster.Flatten())))
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
