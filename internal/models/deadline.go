package models

import "time"

// Urgency bands a deadline relative to the current time. Computed
// client-side only; the backend knows nothing about it.
type Urgency int

const (
	UrgencyNone Urgency = iota // no deadline set
	UrgencyNormal
	UrgencyDueSoon // within three days
	UrgencyDueToday
	UrgencyOverdue
)

const dueSoonWindow = 72 * time.Hour

// DeadlineUrgency computes the urgency band for a deadline at the given time
func DeadlineUrgency(deadline *time.Time, now time.Time) Urgency {
	if deadline == nil {
		return UrgencyNone
	}
	d := *deadline
	if d.Before(now) {
		return UrgencyOverdue
	}
	ny, nm, nd := now.Date()
	dy, dm, dd := d.Date()
	if ny == dy && nm == dm && nd == dd {
		return UrgencyDueToday
	}
	if d.Sub(now) <= dueSoonWindow {
		return UrgencyDueSoon
	}
	return UrgencyNormal
}

// Label returns the short banner text for the band
func (u Urgency) Label() string {
	switch u {
	case UrgencyOverdue:
		return "overdue"
	case UrgencyDueToday:
		return "due today"
	case UrgencyDueSoon:
		return "due soon"
	}
	return ""
}
