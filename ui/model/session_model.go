package model

import (
	"time"
)

// SessionModel tracks time spent on the displayed image, the accumulated annotating time
// and how many distinct images were shown. Presenters poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active      bool
	current     string
	imageStart  time.Time
	onImage     time.Duration
	accumulated time.Duration
	visited     map[string]struct{}
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model with the displayed image name ("" when none) and timestamp.
// Call periodically (for example, from a presenter tick).
func (m *SessionModel) OnTick(image string, now time.Time) {
	if m == nil {
		return
	}
	if image == "" {
		if m.active { // image -> nothing
			m.onImage = now.Sub(m.imageStart)
			m.accumulated += m.onImage
			m.active = false
			m.current = ""
		}
		return
	}
	if !m.active || image != m.current { // switched image
		if m.active {
			m.accumulated += now.Sub(m.imageStart)
		}
		m.active = true
		m.current = image
		m.imageStart = now
		if m.visited == nil {
			m.visited = make(map[string]struct{})
		}
		m.visited[image] = struct{}{}
	}
	m.onImage = now.Sub(m.imageStart)
}

// Values returns the time on the current image, the total time including it and the
// number of distinct images seen.
func (m *SessionModel) Values() (onImage, total time.Duration, visited int) {
	if m == nil {
		return 0, 0, 0
	}
	onImage = m.onImage
	total = m.accumulated
	if m.active {
		total += onImage
	}
	return onImage, total, len(m.visited)
}
