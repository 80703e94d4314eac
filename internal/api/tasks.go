package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

// TaskPayload is the create/update body for a standalone task.
type TaskPayload struct {
	Title       string            `json:"title" validate:"required"`
	Description string            `json:"description"`
	Deadline    *time.Time        `json:"deadline,omitempty"`
	EmployeeID  int64             `json:"employee_id,omitempty"`
	Status      models.TaskStatus `json:"status" validate:"required,oneof=pending inprogress done"`
	Progress    int               `json:"progress" validate:"min=0,max=100"`
}

// Tasks lists task records visible to the authenticated user.
func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	return getList[models.Task](ctx, c, "/tasks/")
}

// Task fetches one task record.
func (c *Client) Task(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask validates and submits a new task record.
func (c *Client) CreateTask(ctx context.Context, p TaskPayload) (*models.Task, error) {
	if err := c.validate.Struct(p); err != nil {
		return nil, apperr.Wrap(err, apperr.Validation, "a task needs a title and a valid status")
	}
	var t models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask validates and submits a full task update.
func (c *Client) UpdateTask(ctx context.Context, id int64, p TaskPayload) (*models.Task, error) {
	if err := c.validate.Struct(p); err != nil {
		return nil, apperr.Wrap(err, apperr.Validation, "a task needs a title and a valid status")
	}
	var t models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTaskProgress is the assignee's self-service status/progress update.
func (c *Client) UpdateTaskProgress(ctx context.Context, id int64, status models.TaskStatus, progress int) (*models.Task, error) {
	if _, err := models.ParseTaskStatus(string(status)); err != nil {
		return nil, apperr.Wrap(err, apperr.Validation, "invalid status")
	}
	if progress < 0 || progress > 100 {
		return nil, apperr.New(apperr.Validation, "progress must be between 0 and 100")
	}
	body := struct {
		Status   models.TaskStatus `json:"status"`
		Progress int               `json:"progress"`
	}{Status: status, Progress: progress}

	var t models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Employees lists assignable users.
func (c *Client) Employees(ctx context.Context) ([]models.Employee, error) {
	return getList[models.Employee](ctx, c, "/employees")
}
