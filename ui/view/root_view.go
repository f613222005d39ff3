package view

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/ui/presenter"
	"github.com/soocke/boxlabel-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Handlers are the user actions the root view forwards. Nil handlers leave the control inert.
type Handlers struct {
	Canvas        CanvasHandlers
	Prev          func()
	Next          func()
	AddClass      func()
	ClassSelected func(label string)
	DeleteAll     func()
	MarkNull      func()
	Statistics    func()
	ZoomIn        func()
	ZoomOut       func()
	Exit          func()
}

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Canvas      *CanvasView
	Dialogs     *Dialogs
	Session     SessionStats
	ConfigPanel ConfigPanel

	// Widgets
	StatusLabel *TLabelWidget
	ClassSelect *TComboboxWidget
	classes     []string
}

func NewRootView(cfg *config.Config, cfgPath string, dialogs *Dialogs, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, Dialogs: dialogs, logger: logger}
}

// Build constructs the layout: canvas on the left, class selector on the right, the
// action row below and the status row at the bottom.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	theme.InitStyles()
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 0, Weight(1))

	canvasFrame := Frame(Borderwidth(1), Relief("sunken"))
	Grid(canvasFrame, Row(0), Column(0), Sticky("nw"), Padx("0.4m"), Pady("0.4m"))
	rv.Canvas = NewCanvasView(canvasFrame, rv.cfg.CanvasWidth, rv.cfg.CanvasHeight, h.Canvas)

	// Right column: classes and secondary actions
	side := Frame()
	Grid(side, Row(0), Column(1), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	classLbl := TLabel(Txt("Classes"), Style(theme.StyleAccentLabel))
	Grid(classLbl, In(side), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ClassSelect = TCombobox(Values([]string{"<none>"}), Width(26), State("readonly"))
	Grid(rv.ClassSelect, In(side), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(rv.ClassSelect, "<<ComboboxSelected>>", Command(func() {
		if rv.ClassSelect == nil || h.ClassSelected == nil {
			return
		}
		idxStr := rv.ClassSelect.Current(nil)
		idx, err := strconv.Atoi(idxStr)
		if err == nil && idx >= 0 && idx < len(rv.classes) {
			h.ClassSelected(rv.classes[idx])
		} else if rv.logger != nil {
			rv.logger.Error("class selection parse error", "error", err)
		}
	}))
	addBtn := TButton(Txt("Add New Class [Ctrl+N]"), Style(theme.StylePrimaryButton), Command(orNop(h.AddClass)))
	Grid(addBtn, In(side), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	statsBtn := TButton(Txt("Statistics"), Command(orNop(h.Statistics)))
	Grid(statsBtn, In(side), Row(3), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	settingsBtn := TButton(Txt("Settings"), Command(rv.ConfigPanel.OpenOrFocus))
	Grid(settingsBtn, In(side), Row(4), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	themeBtn := TButton(Txt("Toggle Dark Mode"), Command(func() { theme.ToggleDark() }))
	Grid(themeBtn, In(side), Row(5), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	exitBtn := TButton(Txt("Exit"), Style(theme.StyleDangerButton), Command(orNop(h.Exit)))
	Grid(exitBtn, In(side), Row(6), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.6m"))

	// Action row
	actions := Frame()
	Grid(actions, Row(1), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	buttons := []struct {
		text  string
		style string
		fn    func()
	}{
		{"<< Previous", theme.StylePrimaryButton, h.Prev},
		{"Next >>", theme.StylePrimaryButton, h.Next},
		{"Delete All Annotations", theme.StyleDangerButton, h.DeleteAll},
		{"Mark as Null [N]", theme.StyleDangerButton, h.MarkNull},
		{"Zoom -", "", h.ZoomOut},
		{"Zoom +", "", h.ZoomIn},
	}
	for i, b := range buttons {
		opts := []Opt{Txt(b.text), Command(orNop(b.fn))}
		if b.style != "" {
			opts = append(opts, Style(b.style))
		}
		Grid(TButton(opts...), In(actions), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}

	// Status row
	status := Frame()
	Grid(status, Row(2), Column(0), Columnspan(2), Sticky("we"), Padx("0.3m"), Pady("0.3m"))
	rv.StatusLabel = TLabel(Txt("State: idle | no images"), Style(theme.StyleStateLabel))
	Grid(rv.StatusLabel, In(status), Row(0), Column(0), Sticky("w"), Padx("0.4m"))
	rv.Session = NewSessionStats(status, 0, 1)
}

// SetStatus updates the status line.
func (rv *RootView) SetStatus(text string) {
	if rv != nil && rv.StatusLabel != nil {
		rv.StatusLabel.Configure(Txt(text))
	}
}

// SetClasses replaces the selector entries and selects the armed class when listed.
func (rv *RootView) SetClasses(labels []string, selected string) {
	if rv == nil || rv.ClassSelect == nil {
		return
	}
	rv.classes = labels
	values := labels
	if len(values) == 0 {
		values = []string{"<none>"}
	}
	rv.ClassSelect.Configure(Values(values))
	for i, l := range labels {
		if selected != "" && presenter.ClassFromLabel(l) == selected {
			rv.ClassSelect.Current(i)
			return
		}
	}
}

// SetSession updates the session duration displays.
func (rv *RootView) SetSession(onImage, total time.Duration, visited int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetImageTime(onImage)
	rv.Session.SetTotal(total)
	rv.Session.SetVisited(visited)
}

func (rv *RootView) ShowInfo(title, msg string) {
	if rv != nil && rv.Dialogs != nil {
		rv.Dialogs.ShowInfo(title, strings.TrimRight(msg, "\n"))
	}
}

func (rv *RootView) ShowError(title, msg string) {
	if rv != nil && rv.Dialogs != nil {
		rv.Dialogs.ShowError(title, msg)
	}
}

// ShowBoxMenu opens the per-box options window.
func (rv *RootView) ShowBoxMenu(m presenter.BoxMenu) {
	if rv != nil && rv.Dialogs != nil {
		rv.Dialogs.ShowBoxMenu(m)
	}
}

func orNop(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return fn
}
