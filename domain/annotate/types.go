package annotate

import (
	"errors"
	"fmt"
	"image"

	"github.com/soocke/boxlabel-go/domain/geometry"
	"github.com/soocke/boxlabel-go/domain/labels"
)

// State enumerates the pointer gesture states of the controller.
type State int

const (
	StateIdle State = iota
	StateDraggingNewBox
	StateResizingHandle
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDraggingNewBox:
		return "drawing"
	case StateResizingHandle:
		return "resizing"
	default:
		return "unknown"
	}
}

// StateListener is called on each successful state transition.
type StateListener func(prev, next State)

// Session is the per-run selection state: which image is shown, the zoom factor and the
// class assigned to the next new box. It never holds box geometry.
type Session struct {
	ImageIndex int
	Zoom       float64
	ArmedClass string // empty when no class is armed
}

// Armed reports whether a class is armed for new boxes.
func (s Session) Armed() bool { return s.ArmedClass != "" }

// ImageRenderer decodes the image at path and returns it resized to width x height.
type ImageRenderer interface {
	RenderImage(path string, width, height int) (image.Image, error)
}

// Prompter asks the user for input; ok is false when the prompt was cancelled.
type Prompter interface {
	AskString(title, prompt string) (value string, ok bool)
	AskInteger(title, prompt string) (value int, ok bool)
}

// LabelCodec persists one image's boxes.
type LabelCodec interface {
	Load(path string) (labels.Result, error)
	Save(path string, boxes []*geometry.Box) error
}

// Collaborators bundles the external services the controller drives.
type Collaborators struct {
	Renderer ImageRenderer
	Prompter Prompter
}

// ImageLoadError reports an image that is missing or cannot be decoded. The session
// keeps running; only that image's display is affected.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string { return fmt.Sprintf("load image %s: %v", e.Path, e.Err) }
func (e *ImageLoadError) Unwrap() error { return e.Err }

var (
	// ErrNoImages is informational: the working set is empty.
	ErrNoImages = errors.New("no images to annotate")
	// ErrLabelsLocked is returned for edits on an image whose label file failed a strict load.
	ErrLabelsLocked = errors.New("label file is malformed; editing disabled for this image")
)

// ClassCount is the number of images containing at least one box of a class.
type ClassCount struct {
	Index  int
	Name   string
	Images int
}

// Stats aggregates label coverage over the active image list.
type Stats struct {
	TotalImages     int
	AnnotatedImages int
	Unreadable      int
	Classes         []ClassCount
}
