package presenter

import (
	"time"

	"github.com/soocke/boxlabel-go/ui/model"
)

// ImageSource reports the displayed image name ("" when none).
type ImageSource interface{ CurrentImage() string }

// SessionView displays time on the current image, total annotating time and images seen.
type SessionView interface {
	SetSession(onImage, total time.Duration, visited int)
}

// SessionPresenter formats session durations from the model to the view.
type SessionPresenter struct {
	sess *model.SessionModel
	src  ImageSource
	view SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, src ImageSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, src: src, view: view}
}

// Tick updates the presenter: advance the session model and push values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.src == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.src.CurrentImage(), now)
	onImage, total, visited := p.sess.Values()
	p.view.SetSession(onImage, total, visited)
}
