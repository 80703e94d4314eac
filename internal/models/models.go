package models

import (
	"fmt"
	"time"
)

// Role of an authenticated user
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// ParseRole validates a role string coming off the wire
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleEmployee, RoleManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// ItemType distinguishes the two kinds of course content
type ItemType string

const (
	ItemLesson ItemType = "lesson"
	ItemTask   ItemType = "task"
)

// TaskType is the answer shape of a task item
type TaskType string

const (
	TaskSingleChoice   TaskType = "single_choice"
	TaskMultipleChoice TaskType = "multiple_choice"
	TaskLongAnswer     TaskType = "long_answer"
)

// ParseTaskType validates a task type string coming off the wire
func ParseTaskType(s string) (TaskType, error) {
	switch TaskType(s) {
	case TaskSingleChoice, TaskMultipleChoice, TaskLongAnswer:
		return TaskType(s), nil
	}
	return "", fmt.Errorf("unknown task type %q", s)
}

// HasOptions reports whether the task type carries an option list
func (t TaskType) HasOptions() bool {
	return t == TaskSingleChoice || t == TaskMultipleChoice
}

// TaskStatus of a standalone task assignment
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "inprogress"
	StatusDone       TaskStatus = "done"
)

// ParseTaskStatus validates a status string coming off the wire
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusDone:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// Session is the locally persisted authenticated identity. It is the only
// durable state the client owns.
type Session struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Option is a single answer option of a choice task
type Option struct {
	ID        int64  `json:"id,omitempty"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// ContentItem is one entry in a course's ordered content list. Lessons carry
// Content, tasks carry Question/TaskType and, for choice types, Options.
// LocalID identifies an item inside the editor before the backend has
// assigned an ID; it is stripped on submission.
type ContentItem struct {
	ID      int64    `json:"id,omitempty"`
	LocalID string   `json:"-"`
	Type    ItemType `json:"item_type"`
	Title   string   `json:"title" validate:"required"`

	Content string `json:"content,omitempty"`

	Question string   `json:"question,omitempty"`
	TaskType TaskType `json:"task_type,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

// Key returns whichever identity the item currently has
func (i ContentItem) Key() string {
	if i.ID != 0 {
		return fmt.Sprintf("%d", i.ID)
	}
	return i.LocalID
}

// Course is the assignable unit in course mode
type Course struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Items       []ContentItem `json:"items"`
}

// Task is the assignable unit in task mode, with self-service progress
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	EmployeeID  int64      `json:"employee_id,omitempty"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress"`
}

// Comment is one remark on a task. Soft-deleted comments keep their place in
// the thread and display a placeholder instead of text.
type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Deleted   bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// Employee is an assignable user
type Employee struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// DisplayName falls back to the email when no name is set
func (e Employee) DisplayName() string {
	if e.GivenName != "" {
		return e.GivenName + " " + e.FamilyName
	}
	return e.Email
}
