package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows time spent on the current image, total annotating time and images seen.
type SessionStats interface {
	SetImageTime(d time.Duration)
	SetTotal(d time.Duration)
	SetVisited(n int)
}

type sessionStats struct {
	imageLbl   *LabelWidget
	totalLbl   *LabelWidget
	visitedLbl *LabelWidget
}

// NewSessionStats creates the three labels at (row, startCol..startCol+2).
// If parent is nil, labels are positioned relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{imageLbl: Label(Width(14)), totalLbl: Label(Width(14)), visitedLbl: Label(Width(10))}
	for i, lbl := range []*LabelWidget{s.imageLbl, s.totalLbl, s.visitedLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.imageLbl.Configure(Txt("Image: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.visitedLbl.Configure(Txt("Seen: 0"))
	return s
}

// SetImageTime updates the time spent on the current image.
func (s *sessionStats) SetImageTime(d time.Duration) {
	if s == nil || s.imageLbl == nil {
		return
	}
	s.imageLbl.Configure(Txt("Image: " + clock(d)))
}

// SetTotal updates the total annotating time.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + clock(d)))
}

func (s *sessionStats) SetVisited(n int) {
	if s == nil || s.visitedLbl == nil {
		return
	}
	s.visitedLbl.Configure(Txt(fmt.Sprintf("Seen: %d", n)))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	return fmt.Sprintf("%02d:%02d", min, sec)
}
