package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Status   *StatusPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, status *StatusPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Status: status, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Flush queued state changes to the status line.
	if l.Status != nil {
		l.Status.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
