package presenter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/soocke/boxlabel-go/domain/annotate"
	"github.com/soocke/boxlabel-go/domain/annotation"
)

// Workspace is the controller surface behind the buttons and keyboard shortcuts.
type Workspace interface {
	Next() (bool, error)
	Prev() (bool, error)
	MarkNull() (bool, error)
	ClearAll() error
	AddClass() (string, bool)
	ArmClass(name string) int
	ZoomIn() bool
	ZoomOut() bool
	Statistics() annotate.Stats
	Registry() *annotation.Registry
	Session() annotate.Session
}

// ToolbarView shows the class selector and informational dialogs.
type ToolbarView interface {
	SetClasses(names []string, selected string)
	ShowInfo(title, msg string)
	ShowError(title, msg string)
}

// ToolbarPresenter turns user actions into workspace calls and reports their outcome.
type ToolbarPresenter struct {
	ws     Workspace
	view   ToolbarView
	logger *slog.Logger

	// OnChange is called whenever the displayed image, its boxes or the zoom changed.
	OnChange func()
}

func NewToolbarPresenter(ws Workspace, view ToolbarView, logger *slog.Logger) *ToolbarPresenter {
	return &ToolbarPresenter{ws: ws, view: view, logger: logger}
}

// Next saves and shows the following image.
func (p *ToolbarPresenter) Next() {
	if p == nil || p.ws == nil {
		return
	}
	moved, err := p.ws.Next()
	p.afterNavigation(moved, err, "No more images to annotate.")
}

// Prev saves and shows the preceding image.
func (p *ToolbarPresenter) Prev() {
	if p == nil || p.ws == nil {
		return
	}
	moved, err := p.ws.Prev()
	p.afterNavigation(moved, err, "This is the first image.")
}

// MarkNull moves the current image to the null directory.
func (p *ToolbarPresenter) MarkNull() {
	if p == nil || p.ws == nil {
		return
	}
	moved, err := p.ws.MarkNull()
	if err == nil && !moved {
		p.changed()
		p.info("Info", "No images left to annotate.")
		return
	}
	p.afterNavigation(moved, err, "")
}

func (p *ToolbarPresenter) afterNavigation(moved bool, err error, boundary string) {
	if err != nil {
		p.report(err)
	}
	if moved {
		p.SyncClasses()
		p.changed()
		return
	}
	if err == nil && boundary != "" {
		p.info("Info", boundary)
	}
}

// DeleteAll removes every box of the current image.
func (p *ToolbarPresenter) DeleteAll() {
	if p == nil || p.ws == nil {
		return
	}
	p.report(p.ws.ClearAll())
	p.changed()
}

// AddClass prompts for a class name and arms it.
func (p *ToolbarPresenter) AddClass() {
	if p == nil || p.ws == nil {
		return
	}
	if _, ok := p.ws.AddClass(); ok {
		p.SyncClasses()
		p.changed()
	}
}

// SelectClass arms the class picked in the selector.
func (p *ToolbarPresenter) SelectClass(name string) {
	if p == nil || p.ws == nil {
		return
	}
	p.ws.ArmClass(name)
	p.changed()
}

// ZoomIn raises the zoom factor one step.
func (p *ToolbarPresenter) ZoomIn() {
	if p != nil && p.ws != nil && p.ws.ZoomIn() {
		p.changed()
	}
}

// ZoomOut lowers the zoom factor one step.
func (p *ToolbarPresenter) ZoomOut() {
	if p != nil && p.ws != nil && p.ws.ZoomOut() {
		p.changed()
	}
}

// ShowStatistics opens the statistics dialog.
func (p *ToolbarPresenter) ShowStatistics() {
	if p == nil || p.ws == nil {
		return
	}
	p.info("Statistics", FormatStats(p.ws.Statistics()))
}

// SyncClasses pushes the registry and armed class to the selector.
func (p *ToolbarPresenter) SyncClasses() {
	if p == nil || p.ws == nil || p.view == nil {
		return
	}
	p.view.SetClasses(ClassLabels(p.ws.Registry()), p.ws.Session().ArmedClass)
}

func (p *ToolbarPresenter) changed() {
	if p.OnChange != nil {
		p.OnChange()
	}
}

func (p *ToolbarPresenter) info(title, msg string) {
	if p.view != nil {
		p.view.ShowInfo(title, msg)
	}
}

func (p *ToolbarPresenter) report(err error) {
	if err == nil {
		return
	}
	if p.logger != nil {
		p.logger.Error("toolbar action failed", "error", err)
	}
	if p.view == nil {
		return
	}
	var ile *annotate.ImageLoadError
	switch {
	case errors.Is(err, annotate.ErrLabelsLocked):
		p.view.ShowError("Labels locked", err.Error())
	case errors.As(err, &ile):
		p.view.ShowError("Error", fmt.Sprintf("Failed to read image: %s\n%v", ile.Path, ile.Err))
	default:
		p.view.ShowError("Error", err.Error())
	}
}

// ClassLabels renders the registry as "<index>: <name>" entries ordered by index.
func ClassLabels(reg *annotation.Registry) []string {
	if reg == nil {
		return nil
	}
	classes := reg.Classes()
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = fmt.Sprintf("%d: %s", c.Index, c.Name)
	}
	return out
}

// ClassFromLabel extracts the class name from a ClassLabels entry.
func ClassFromLabel(label string) string {
	if _, name, ok := strings.Cut(label, ": "); ok {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(label)
}

// FormatStats renders statistics for the info dialog.
func FormatStats(st annotate.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total No of images: %s\n", humanize.Comma(int64(st.TotalImages)))
	fmt.Fprintf(&b, "Total Annotated Images: %s\n", humanize.Comma(int64(st.AnnotatedImages)))
	for _, c := range st.Classes {
		fmt.Fprintf(&b, "Total Annotated Images of %s: %s\n", c.Name, humanize.Comma(int64(c.Images)))
	}
	if st.Unreadable > 0 {
		fmt.Fprintf(&b, "Unreadable label files: %s\n", humanize.Comma(int64(st.Unreadable)))
	}
	return b.String()
}
