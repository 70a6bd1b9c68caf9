package input

import (
	"knot/internal/annotate"
	"knot/internal/task"
)

// Mutation is an editing command produced by the machine for the host to
// apply to the active cluster. A nil Mutation means the key only changed
// machine state (movement, mode switches, buffered keys).
type Mutation interface {
	mutation()
}

type ToggleComplete struct {
	ID string
}

type Delete struct {
	ID string
}

type Move struct {
	ID  string
	Dir task.Direction
}

type ToggleFold struct {
	ID string
}

type InsertTask struct {
	Parsed   annotate.Parsed
	ParentID string
}

type InsertSection struct {
	Name string
}

type UpdateTask struct {
	ID     string
	Parsed annotate.Parsed
}

type RunCommand struct {
	Line string
}

type Quit struct{}

func (ToggleComplete) mutation() {}
func (Delete) mutation()         {}
func (Move) mutation()           {}
func (ToggleFold) mutation()     {}
func (InsertTask) mutation()     {}
func (InsertSection) mutation()  {}
func (UpdateTask) mutation()     {}
func (RunCommand) mutation()     {}
func (Quit) mutation()           {}
