package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/boxlabel-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings window. It edits the shared *config.Config in place, so
// gesture and zoom limits apply to the running session; canvas size and handle size apply
// on the next start.
type ConfigPanel interface {
	OpenOrFocus()
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	win     *ToplevelWidget
	widgets map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) OpenOrFocus() {
	if v.win != nil {
		Focus(v.win)
		return
	}
	win := App.Toplevel(Borderwidth(2))
	win.WmTitle("Settings")
	v.win = win
	c := v.cfg
	row := 0
	makeRow := func(id, label, value string) {
		lbl := win.Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := win.Text(Height(1), Width(16))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("canvasWidth", "Canvas Width (restart)", fmt.Sprintf("%d", c.CanvasWidth))
	makeRow("canvasHeight", "Canvas Height (restart)", fmt.Sprintf("%d", c.CanvasHeight))
	makeRow("handleSize", "Handle Size Px (restart)", fmt.Sprintf("%.0f", c.HandleSize))
	makeRow("minBoxSize", "Min Box Size Px", fmt.Sprintf("%.0f", c.MinBoxSize))
	makeRow("zoomStep", "Zoom Step", fmt.Sprintf("%.2f", c.ZoomStep))
	makeRow("zoomMin", "Zoom Min", fmt.Sprintf("%.2f", c.ZoomMin))
	makeRow("zoomMax", "Zoom Max", fmt.Sprintf("%.2f", c.ZoomMax))
	makeRow("strictLabels", "Strict Labels (true/false, restart)", fmt.Sprintf("%t", c.StrictLabels))
	makeRow("promptClasses", "Prompt Classes On Start (true/false)", fmt.Sprintf("%t", c.PromptClassesOnStart))
	makeRow("frameCacheSize", "Frame Cache Size (restart)", fmt.Sprintf("%d", c.FrameCacheSize))
	apply := win.Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(apply, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	closeBtn := win.Button(Txt("Close [Esc]"), Command(v.close))
	Grid(closeBtn, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	Bind(win, "<Escape>", Command(v.close))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.close)
}

func (v *configPanel) close() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
	clear(v.widgets)
}

func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		if f, ok := parseFloatField(textValue(v.widgets[id])); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		if i, ok := parseIntField(textValue(v.widgets[id])); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		if b, ok := parseBoolLoose(textValue(v.widgets[id])); ok {
			*dst = b
		}
	}
	assignInt("canvasWidth", &cfg.CanvasWidth)
	assignInt("canvasHeight", &cfg.CanvasHeight)
	assignFloat("handleSize", &cfg.HandleSize)
	assignFloat("minBoxSize", &cfg.MinBoxSize)
	assignFloat("zoomStep", &cfg.ZoomStep)
	assignFloat("zoomMin", &cfg.ZoomMin)
	assignFloat("zoomMax", &cfg.ZoomMax)
	assignBool("strictLabels", &cfg.StrictLabels)
	assignBool("promptClasses", &cfg.PromptClassesOnStart)
	assignInt("frameCacheSize", &cfg.FrameCacheSize)
	if verr := cfg.Validate(); verr != nil {
		return
	}
	// Restart-only fields keep their running values; the file gets the edited ones.
	saved := cfg
	cfg.CanvasWidth, cfg.CanvasHeight = v.cfg.CanvasWidth, v.cfg.CanvasHeight
	cfg.HandleSize, cfg.FrameCacheSize = v.cfg.HandleSize, v.cfg.FrameCacheSize
	cfg.StrictLabels = v.cfg.StrictLabels
	*v.cfg = cfg
	if err := saved.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}
