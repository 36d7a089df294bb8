package domain

import (
	"errors"
	"time"
)

// Task is a to-do item owned by exactly one user. Tasks are removed in
// cascade when their owner's account is deleted.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var ErrTaskNotFound = errors.New("task not found")
