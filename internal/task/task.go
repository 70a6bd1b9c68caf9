package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityMax
)

var now = time.Now

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityMax:
		return "max"
	default:
		return "none"
	}
}

// ParsePriority matches a priority keyword case-insensitively. Unknown
// keywords report ok=false so callers can strip a bad tag without failing.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "max":
		return PriorityMax, true
	default:
		return PriorityNone, false
	}
}

// sortRank orders Max first, None last.
func (p Priority) sortRank() int {
	switch p {
	case PriorityMax:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts the legacy "mid" and "top" spellings found in older
// cluster documents. Anything unknown loads as none.
func (p *Priority) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	switch s {
	case "mid":
		*p = PriorityMedium
	case "top":
		*p = PriorityMax
	default:
		v, _ := ParsePriority(s)
		*p = v
	}
	return nil
}

type Task struct {
	ID        string
	Text      string
	Completed bool
	Due       *time.Time
	CreatedAt time.Time
	Priority  Priority
	IsSection bool
	Folded    bool
	Children  []*Task
}

func New(text string, due *time.Time, pri Priority) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Text:      text,
		Due:       due,
		CreatedAt: now(),
		Priority:  pri,
	}
}

// NewSection builds a top-level list separator. Sections never carry
// children or metadata.
func NewSection(name string) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Text:      name,
		CreatedAt: now(),
		IsSection: true,
	}
}

func (t *Task) HasChildren() bool {
	return len(t.Children) > 0
}
