package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"knot/internal/task"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "knot.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)

	due := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.Local)
	c := task.NewCluster("work")
	parent := task.New("parent", &due, task.PriorityHigh)
	c.Add(parent)
	c.Insert(parent.ID, -1, task.New("child", nil, task.PriorityNone))
	parent.Folded = true
	done := task.New("done", nil, task.PriorityNone)
	done.Completed = true
	c.Add(done)

	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load("work")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "work" {
		t.Errorf("Name = %q", loaded.Name)
	}
	if len(loaded.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(loaded.Tasks))
	}
	p := loaded.Tasks[0]
	if p.Text != "parent" || p.Priority != task.PriorityHigh || !p.Folded {
		t.Errorf("parent loaded as %+v", p)
	}
	if p.Due == nil || !p.Due.Equal(due) {
		t.Errorf("due = %v, want %v", p.Due, due)
	}
	if len(p.Children) != 1 || p.Children[0].Text != "child" {
		t.Errorf("children loaded as %+v", p.Children)
	}
	if !loaded.Tasks[1].Completed {
		t.Error("completed flag lost")
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := openTestStore(t)

	c := task.NewCluster("main")
	c.Add(task.New("first", nil, task.PriorityNone))
	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}

	c.Add(task.New("second", nil, task.PriorityNone))
	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load("main")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Tasks) != 2 {
		t.Errorf("len(Tasks) = %d, want 2", len(loaded.Tasks))
	}
}

func TestLoadMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load("nope")
	var notFound ClusterNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want ClusterNotFoundError", err)
	}
	if notFound.Name != "nope" {
		t.Errorf("Name = %q", notFound.Name)
	}
}

func TestCreate(t *testing.T) {
	s := openTestStore(t)

	c, err := s.Create("fresh")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name != "fresh" || len(c.Tasks) != 0 {
		t.Errorf("created cluster = %+v", c)
	}
	ok, err := s.Exists("fresh")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("created cluster does not exist")
	}

	// Creating again returns the stored contents untouched.
	c.Add(task.New("keep", nil, task.PriorityNone))
	if err := s.Save(c); err != nil {
		t.Fatal(err)
	}
	again, err := s.Create("fresh")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Tasks) != 1 || again.Tasks[0].Text != "keep" {
		t.Errorf("second Create lost data: %+v", again.Tasks)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)

	if names, err := s.List(); err != nil || len(names) != 0 {
		t.Fatalf("empty store: names = %v, err = %v", names, err)
	}

	for _, name := range []string{"b", "a", "c"} {
		if _, err := s.Create(name); err != nil {
			t.Fatal(err)
		}
	}

	names, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestExistsMissing(t *testing.T) {
	s := openTestStore(t)
	ok, err := s.Exists("ghost")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("ghost cluster exists")
	}
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "knot.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Create("main"); err != nil {
		t.Fatal(err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") succeeded")
	}
}
