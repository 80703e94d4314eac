// Package auth is the access guard: a pure function of the session and a
// view's role requirements, re-evaluated on every navigation.
package auth

import "github.com/skilltracker/skt/internal/models"

// Verdict is the guard's decision.
type Verdict int

const (
	// Allow renders the requested view.
	Allow Verdict = iota
	// RedirectLogin sends the user to login; the caller carries the
	// originally requested view so login can return there.
	RedirectLogin
	// RedirectHome bounces a signed-in user whose role is not permitted.
	RedirectHome
)

// Authorize gates a navigation. No allowed roles means any signed-in user.
func Authorize(sess *models.Session, allowed ...models.Role) Verdict {
	if sess == nil {
		return RedirectLogin
	}
	if len(allowed) == 0 {
		return Allow
	}
	for _, r := range allowed {
		if sess.Role == r {
			return Allow
		}
	}
	return RedirectHome
}
