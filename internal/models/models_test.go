package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"employee", "manager"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}
	_, err := ParseRole("admin")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestParseTaskType(t *testing.T) {
	for _, s := range []string{"single_choice", "multiple_choice", "long_answer"} {
		tt, err := ParseTaskType(s)
		require.NoError(t, err)
		assert.Equal(t, TaskType(s), tt)
	}
	_, err := ParseTaskType("essay")
	assert.Error(t, err)
}

func TestTaskTypeHasOptions(t *testing.T) {
	assert.True(t, TaskSingleChoice.HasOptions())
	assert.True(t, TaskMultipleChoice.HasOptions())
	assert.False(t, TaskLongAnswer.HasOptions())
}

func TestParseTaskStatus(t *testing.T) {
	for _, s := range []string{"pending", "inprogress", "done"} {
		st, err := ParseTaskStatus(s)
		require.NoError(t, err)
		assert.Equal(t, TaskStatus(s), st)
	}
	_, err := ParseTaskStatus("cancelled")
	assert.Error(t, err)
}

func TestContentItemKey(t *testing.T) {
	assert.Equal(t, "7", ContentItem{ID: 7, LocalID: "abc"}.Key())
	assert.Equal(t, "abc", ContentItem{LocalID: "abc"}.Key())
	assert.Equal(t, "", ContentItem{}.Key())
}

func TestEmployeeDisplayName(t *testing.T) {
	e := Employee{Email: "jo@example.com", GivenName: "Jo", FamilyName: "Smith"}
	assert.Equal(t, "Jo Smith", e.DisplayName())

	e = Employee{Email: "jo@example.com"}
	assert.Equal(t, "jo@example.com", e.DisplayName())
}

func TestDeadlineUrgency(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name     string
		deadline *time.Time
		want     Urgency
	}{
		{"no deadline", nil, UrgencyNone},
		{"already past", at(now.Add(-time.Hour)), UrgencyOverdue},
		{"later the same day", at(now.Add(6 * time.Hour)), UrgencyDueToday},
		{"within three days", at(now.Add(48 * time.Hour)), UrgencyDueSoon},
		{"exactly the window edge", at(now.Add(72 * time.Hour)), UrgencyDueSoon},
		{"far out", at(now.Add(30 * 24 * time.Hour)), UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeadlineUrgency(tt.deadline, now))
		})
	}
}

func TestUrgencyLabel(t *testing.T) {
	assert.Equal(t, "overdue", UrgencyOverdue.Label())
	assert.Equal(t, "due today", UrgencyDueToday.Label())
	assert.Equal(t, "due soon", UrgencyDueSoon.Label())
	assert.Equal(t, "", UrgencyNormal.Label())
	assert.Equal(t, "", UrgencyNone.Label())
}
