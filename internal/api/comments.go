package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

// Comments lists a task's comments ordered by creation time ascending. The
// backend does not guarantee order, so the sort happens here.
func (c *Client) Comments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	comments, err := getList[models.Comment](ctx, c, fmt.Sprintf("/comments/?task_id=%d", taskID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// CreateComment posts a new comment and returns the server record.
func (c *Client) CreateComment(ctx context.Context, taskID int64, text string) (*models.Comment, error) {
	if text == "" {
		return nil, apperr.New(apperr.Validation, "comment text is required")
	}
	body := struct {
		Text   string `json:"text"`
		TaskID int64  `json:"task_id"`
	}{Text: text, TaskID: taskID}

	var cm models.Comment
	if err := c.do(ctx, http.MethodPost, "/comments/", body, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

// UpdateComment edits a comment's text. The backend rejects non-authors.
func (c *Client) UpdateComment(ctx context.Context, id int64, text string) error {
	if text == "" {
		return apperr.New(apperr.Validation, "comment text is required")
	}
	body := struct {
		Text string `json:"text"`
	}{Text: text}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/comment/%d", id), body, nil)
}

// DeleteComment soft-deletes a comment. The backend rejects non-authors.
func (c *Client) DeleteComment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/comment/%d", id), nil, nil)
}
