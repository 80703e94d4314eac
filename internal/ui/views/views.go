// Package views contains one Bubble Tea view per screen. Views never touch
// each other; they emit navigation messages the App routes on.
package views

import (
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/session"
)

// Context carries the injected dependencies every view needs. Session read
// access goes through Sessions.Current(); writes stay inside the session
// package.
type Context struct {
	API      *api.Client
	Sessions *session.Store
	Log      *zap.Logger
}

// Navigation messages, handled by the App.
type (
	// LoggedIn fires after login or registration succeeds.
	LoggedIn struct{}
	// LoggedOut fires after an explicit logout.
	LoggedOut struct{}
	// ShowLogin and ShowRegister switch between the public views.
	ShowLogin    struct{}
	ShowRegister struct{}
	// BackToDashboard returns to the role-appropriate dashboard.
	BackToDashboard struct{}

	OpenCourseViewer struct{ CourseID int64 }
	OpenCourseEditor struct{}
	OpenAssign       struct {
		CourseID int64
		Title    string
	}
	OpenTaskViewer struct{ TaskID int64 }
	// OpenTaskEditor with TaskID 0 creates a new task.
	OpenTaskEditor struct{ TaskID int64 }
)

// errMsg carries an async failure back into a view.
type errMsg struct{ err error }
