package task

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const dueLayout = "2006-01-02"

type taskDoc struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Due       string    `json:"due_date,omitempty"`
	CreatedAt int64     `json:"created_at"`
	Priority  Priority  `json:"priority"`
	IsSection bool      `json:"is_section,omitempty"`
	Folded    bool      `json:"folded,omitempty"`
	Children  []taskDoc `json:"children,omitempty"`
}

type clusterDoc struct {
	Name  string    `json:"name"`
	Tasks []taskDoc `json:"tasks"`
}

func (t *Task) doc() taskDoc {
	d := taskDoc{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt.Unix(),
		Priority:  t.Priority,
		IsSection: t.IsSection,
		Folded:    t.Folded,
	}
	if t.Due != nil {
		d.Due = t.Due.Format(dueLayout)
	}
	for _, c := range t.Children {
		d.Children = append(d.Children, c.doc())
	}
	return d
}

func (d taskDoc) task() *Task {
	t := &Task{
		ID:        d.ID,
		Text:      d.Text,
		Completed: d.Completed,
		CreatedAt: time.Unix(d.CreatedAt, 0),
		Priority:  d.Priority,
		IsSection: d.IsSection,
		Folded:    d.Folded,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if d.Due != "" {
		if due, err := time.ParseInLocation(dueLayout, d.Due, time.Local); err == nil {
			t.Due = &due
		}
	}
	for _, c := range d.Children {
		t.Children = append(t.Children, c.task())
	}
	if !t.HasChildren() {
		t.Folded = false
	}
	return t
}

// MarshalJSON emits the cluster document any storage layer persists.
func (c *Cluster) MarshalJSON() ([]byte, error) {
	doc := clusterDoc{Name: c.Name}
	for _, t := range c.Tasks {
		doc.Tasks = append(doc.Tasks, t.doc())
	}
	return json.Marshal(doc)
}

// UnmarshalJSON is forgiving: missing ids are regenerated, unknown priority
// keywords fall back to none, unparseable due dates are dropped.
func (c *Cluster) UnmarshalJSON(data []byte) error {
	var doc clusterDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	c.Name = doc.Name
	c.Tasks = nil
	for _, d := range doc.Tasks {
		c.Tasks = append(c.Tasks, d.task())
	}
	return nil
}
