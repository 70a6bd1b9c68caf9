package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"knot/internal/config"
	"knot/internal/input"
	"knot/internal/storage"
	"knot/internal/task"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "knot.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Config{
		DefaultCluster: "main",
		YearPivot:      69,
		Keys: config.Keymap{
			Quit:          "q",
			Up:            "k",
			Down:          "j",
			Bottom:        "G",
			Toggle:        "enter",
			MoveUp:        "K",
			MoveDown:      "J",
			Insert:        "i",
			InsertSubtask: "tab",
			Edit:          "e",
			Command:       ":",
			Confirm:       "enter",
			Cancel:        "esc",
		},
	}

	cluster, err := store.Create("main")
	if err != nil {
		t.Fatal(err)
	}
	machine := input.NewMachine(cfg.Keys, cfg.YearPivot)
	machine.SetClusters([]string{"main"})

	return Model{
		store:   store,
		cfg:     cfg,
		cluster: cluster,
		machine: machine,
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestInsertPersists(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "i", "Buy milk [p:high]", "enter")

	if len(m.cluster.Tasks) != 1 {
		t.Fatalf("len(Tasks) = %d, want 1", len(m.cluster.Tasks))
	}
	got := m.cluster.Tasks[0]
	if got.Text != "Buy milk" || got.Priority != task.PriorityHigh {
		t.Errorf("inserted task = %+v", got)
	}
	if m.machine.Selection() != 0 {
		t.Errorf("selection = %d, want 0", m.machine.Selection())
	}

	loaded, err := m.store.Load("main")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Tasks) != 1 || loaded.Tasks[0].Text != "Buy milk" {
		t.Errorf("persisted cluster = %+v", loaded.Tasks)
	}
}

func TestSubtaskInsertSelectsChild(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "i", "parent", "enter")
	m = press(t, m, "tab", "child", "enter")

	visible := m.cluster.Flatten()
	if len(visible) != 2 || visible[1].Task.Text != "child" || visible[1].Depth != 1 {
		t.Fatalf("visible = %+v", visible)
	}
	if m.machine.Selection() != 1 {
		t.Errorf("selection = %d, want 1", m.machine.Selection())
	}
}

func TestDeleteClampsSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "i", "a", "enter")
	m = press(t, m, "i", "b", "enter")
	m = press(t, m, "G", "d", "d")

	if len(m.cluster.Tasks) != 1 {
		t.Fatalf("len(Tasks) = %d, want 1", len(m.cluster.Tasks))
	}
	if m.machine.Selection() != 0 {
		t.Errorf("selection = %d, want 0", m.machine.Selection())
	}
}

func TestMoveFollowsTask(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "i", "a", "enter")
	m = press(t, m, "i", "b", "enter")
	m = press(t, m, "g", "g", "J")

	if got := m.cluster.Tasks[1].Text; got != "a" {
		t.Errorf("Tasks[1] = %q, want a", got)
	}
	if m.machine.Selection() != 1 {
		t.Errorf("selection = %d, want 1", m.machine.Selection())
	}
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, ":", "frobnicate", "enter")

	if want := "Unknown command: frobnicate"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
}

func TestClusterCommands(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, ":", "n work", "enter")
	if want := "Created cluster 'work'"; m.status != want {
		t.Fatalf("status = %q, want %q", m.status, want)
	}
	if m.cluster.Name != "work" {
		t.Errorf("cluster = %q, want work", m.cluster.Name)
	}

	m = press(t, m, ":", "ls", "enter")
	if want := "Clusters: main, work"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}

	m = press(t, m, ":", "e main", "enter")
	if want := "Opened cluster 'main'"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
	if m.cluster.Name != "main" {
		t.Errorf("cluster = %q, want main", m.cluster.Name)
	}

	m = press(t, m, ":", "e ghost", "enter")
	if want := "Cluster 'ghost' does not exist. Use :n to create."; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
	if m.cluster.Name != "main" {
		t.Errorf("missing cluster switched view to %q", m.cluster.Name)
	}
}

func TestSortCommand(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "i", "b plain", "enter")
	m = press(t, m, "i", "a urgent [p:max]", "enter")

	m = press(t, m, ":", "sort", "enter")
	if want := "Tasks sorted"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
	if got := m.cluster.Tasks[0].Text; got != "a urgent" {
		t.Errorf("Tasks[0] = %q, want a urgent", got)
	}
}

func TestDisplayStartCommand(t *testing.T) {
	m := newTestModel(t)
	if m.showCreated {
		t.Fatal("showCreated starts true")
	}
	m = press(t, m, ":", "display_start", "enter")
	if !m.showCreated {
		t.Error("display_start did not enable the column")
	}
	m = press(t, m, ":", "display_start", "enter")
	if m.showCreated {
		t.Error("display_start did not toggle back")
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t)
	m = press(t, m, "i", "/section Backlog", "enter")
	m = press(t, m, "i", "Buy milk", "enter")

	view := m.View()
	for _, want := range []string{"knot: main", "Backlog", "Buy milk", "[ ]", "NORMAL"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}

	m = press(t, m, ":")
	if got := m.View(); !strings.Contains(got, "COMMAND") {
		t.Errorf("view misses COMMAND:\n%s", got)
	}
}
