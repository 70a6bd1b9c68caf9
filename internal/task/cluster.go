package task

import (
	"sort"
	"strings"
	"time"
)

type Direction int

const (
	MoveUp Direction = iota
	MoveDown
)

// Cluster is a named ordered list of tasks and sections. All mutation is
// id-based; ids stay stable across reorder and fold operations.
type Cluster struct {
	Name  string
	Tasks []*Task
}

func NewCluster(name string) *Cluster {
	return &Cluster{Name: name}
}

// Entry is one row of the fold-aware visible list.
type Entry struct {
	Task  *Task
	Depth int
}

func (c *Cluster) locate(id string) (*[]*Task, int, *Task) {
	return locateIn(&c.Tasks, id)
}

func locateIn(siblings *[]*Task, id string) (*[]*Task, int, *Task) {
	for i, t := range *siblings {
		if t.ID == id {
			return siblings, i, t
		}
		if owner, idx, found := locateIn(&t.Children, id); found != nil {
			return owner, idx, found
		}
	}
	return nil, 0, nil
}

func (c *Cluster) Get(id string) (*Task, error) {
	_, _, t := c.locate(id)
	if t == nil {
		return nil, NotFoundError{ID: id}
	}
	return t, nil
}

// Insert places t among the children of parentID, or at the top level when
// parentID is empty. at below zero or past the end appends.
func (c *Cluster) Insert(parentID string, at int, t *Task) (string, error) {
	list := &c.Tasks
	if parentID != "" {
		if t.IsSection {
			return "", ErrSectionNested
		}
		_, _, parent := c.locate(parentID)
		if parent == nil {
			return "", NotFoundError{ID: parentID}
		}
		if parent.IsSection {
			return "", ErrSectionChild
		}
		list = &parent.Children
	}
	if at < 0 || at > len(*list) {
		at = len(*list)
	}
	*list = append(*list, nil)
	copy((*list)[at+1:], (*list)[at:])
	(*list)[at] = t
	return t.ID, nil
}

func (c *Cluster) Add(t *Task) string {
	id, _ := c.Insert("", -1, t)
	return id
}

func (c *Cluster) ToggleComplete(id string) error {
	t, err := c.Get(id)
	if err != nil {
		return err
	}
	if t.IsSection {
		return nil
	}
	t.Completed = !t.Completed
	return nil
}

// Delete removes the entry and its whole subtree.
func (c *Cluster) Delete(id string) error {
	owner, i, t := c.locate(id)
	if t == nil {
		return NotFoundError{ID: id}
	}
	*owner = append((*owner)[:i], (*owner)[i+1:]...)
	return nil
}

// Move swaps the entry with its adjacent sibling. At a boundary the list is
// left untouched.
func (c *Cluster) Move(id string, dir Direction) error {
	owner, i, t := c.locate(id)
	if t == nil {
		return NotFoundError{ID: id}
	}
	j := i + 1
	if dir == MoveUp {
		j = i - 1
	}
	if j < 0 || j >= len(*owner) {
		return nil
	}
	(*owner)[i], (*owner)[j] = (*owner)[j], (*owner)[i]
	return nil
}

func (c *Cluster) ToggleFold(id string) error {
	t, err := c.Get(id)
	if err != nil {
		return err
	}
	if !t.HasChildren() {
		return nil
	}
	t.Folded = !t.Folded
	return nil
}

func (c *Cluster) Update(id, text string, due *time.Time, pri Priority) error {
	t, err := c.Get(id)
	if err != nil {
		return err
	}
	t.Text = text
	if !t.IsSection {
		t.Due = due
		t.Priority = pri
	}
	return nil
}

// Flatten returns the visible rows in display order, skipping the subtrees
// of folded tasks.
func (c *Cluster) Flatten() []Entry {
	var out []Entry
	flattenInto(&out, c.Tasks, 0)
	return out
}

func flattenInto(out *[]Entry, tasks []*Task, depth int) {
	for _, t := range tasks {
		*out = append(*out, Entry{Task: t, Depth: depth})
		if t.Folded {
			continue
		}
		flattenInto(out, t.Children, depth+1)
	}
}

// Sort orders every sibling level: sections after tasks, completed after
// open, then priority, due date (missing last), text.
func (c *Cluster) Sort() {
	sortTasks(c.Tasks)
}

func sortTasks(tasks []*Task) {
	for _, t := range tasks {
		if len(t.Children) > 0 {
			sortTasks(t.Children)
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.IsSection != b.IsSection {
			return !a.IsSection
		}
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if a.Priority.sortRank() != b.Priority.sortRank() {
			return a.Priority.sortRank() < b.Priority.sortRank()
		}
		switch {
		case a.Due != nil && b.Due == nil:
			return true
		case a.Due == nil && b.Due != nil:
			return false
		case a.Due != nil && b.Due != nil && !a.Due.Equal(*b.Due):
			return a.Due.Before(*b.Due)
		}
		return strings.ToLower(a.Text) < strings.ToLower(b.Text)
	})
}
