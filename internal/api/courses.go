package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

// CoursePayload is the bulk create body. Items must already be stripped of
// local identifiers; the backend assigns authoritative IDs.
type CoursePayload struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description" validate:"required"`
	Items       []models.ContentItem `json:"items" validate:"min=1,dive"`
}

// CreateCourse validates the payload and submits it. Validation failures
// never reach the network.
func (c *Client) CreateCourse(ctx context.Context, p CoursePayload) (*models.Course, error) {
	if err := c.validate.Struct(p); err != nil {
		return nil, apperr.Wrap(err, apperr.Validation,
			"a course needs a title, a description and at least one item")
	}
	var course models.Course
	if err := c.do(ctx, http.MethodPost, "/courses/", p, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Course fetches one course with its content list.
func (c *Client) Course(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// MyCourses lists courses owned by the authenticated manager.
func (c *Client) MyCourses(ctx context.Context) ([]models.Course, error) {
	return getList[models.Course](ctx, c, "/courses/my")
}

// AssignedCourses lists courses assigned to the authenticated employee.
func (c *Client) AssignedCourses(ctx context.Context) ([]models.Course, error) {
	return getList[models.Course](ctx, c, "/courses/assigned")
}

// AssignCourse assigns a course to one employee. Assignment only ever adds;
// there is no unassign call.
func (c *Client) AssignCourse(ctx context.Context, courseID, userID int64, deadline *time.Time) error {
	body := struct {
		UserID   int64      `json:"user_id"`
		Deadline *time.Time `json:"deadline,omitempty"`
	}{UserID: userID, Deadline: deadline}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/courses/%d/assign", courseID), body, nil)
}

// Answer is a learner's submission for one task item, shaped by task type:
// free text for long answers, option IDs for choice types.
type Answer struct {
	Text      string  `json:"answer_text,omitempty"`
	OptionIDs []int64 `json:"selected_option_ids,omitempty"`
}

// SubmitResult is the grading feedback for a submitted answer.
type SubmitResult struct {
	IsCorrect bool     `json:"is_correct"`
	Score     *float64 `json:"score,omitempty"`
}

// SubmitAnswer posts a learner's answer for a task item. The answer must be
// non-empty; that is checked before dispatch.
func (c *Client) SubmitAnswer(ctx context.Context, itemID int64, a Answer) (*SubmitResult, error) {
	if a.Text == "" && len(a.OptionIDs) == 0 {
		return nil, apperr.New(apperr.Validation, "an answer is required")
	}
	var r SubmitResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d/submit", itemID), a, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
