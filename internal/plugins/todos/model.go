// Package todos is the task manager: a flat, per-user list of short tasks,
// newest first, that can be completed, edited or removed.
package todos

import "time"

// MaxTaskLength caps a task's text.
const MaxTaskLength = 500

// Task is one todo item.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskRequest is the body for creating or editing a task.
type TaskRequest struct {
	Text string `json:"text" form:"text"`
}

// Pending counts tasks not yet completed.
func Pending(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}
