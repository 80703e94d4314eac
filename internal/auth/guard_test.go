package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skilltracker/skt/internal/models"
)

func TestAuthorize(t *testing.T) {
	employee := &models.Session{UserID: 1, Role: models.RoleEmployee}
	manager := &models.Session{UserID: 2, Role: models.RoleManager}

	tests := []struct {
		name    string
		sess    *models.Session
		allowed []models.Role
		want    Verdict
	}{
		{"signed out", nil, nil, RedirectLogin},
		{"signed out with role requirement", nil, []models.Role{models.RoleManager}, RedirectLogin},
		{"any role allowed", employee, nil, Allow},
		{"role matches", manager, []models.Role{models.RoleManager}, Allow},
		{"one of several matches", employee, []models.Role{models.RoleManager, models.RoleEmployee}, Allow},
		{"role denied", employee, []models.Role{models.RoleManager}, RedirectHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.sess, tt.allowed...))
		})
	}
}
