package task

import (
	"errors"
	"fmt"
)

// ErrSectionChild rejects inserting a subtask under a section row.
var ErrSectionChild = errors.New("sections cannot hold subtasks")

// ErrSectionNested rejects placing a section below the top level.
var ErrSectionNested = errors.New("sections are top-level only")

type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}
