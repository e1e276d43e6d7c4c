package domain

import "strings"

// Task is a single external command invocation issued by a recipe flow.
type Task struct {
	Name        string
	Command     []string
	Environment map[string]string
	WorkingDir  string
}

// NewTask creates a Task running cmd in dir.
func NewTask(name, dir string, cmd ...string) *Task {
	return &Task{
		Name:       name,
		Command:    cmd,
		WorkingDir: dir,
	}
}

// String returns the command line of the task.
func (t *Task) String() string {
	return strings.Join(t.Command, " ")
}
