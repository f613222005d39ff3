package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/domain/annotate"
	"github.com/soocke/boxlabel-go/ui/presenter"
	"github.com/soocke/boxlabel-go/ui/view"
)

const (
	tick = 200 * time.Millisecond
)

type app struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger
	c       *AppContainer
	afterID string
	started time.Time
}

func NewApp(title string, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{cfg: cfg, cfgPath: cfgPath, logger: logger}

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, "+60+40")
	return a
}

func (a *app) Start() {
	a.started = time.Now()
	if a.cfg.DatasetPath == "" {
		a.cfg.DatasetPath = view.NewDialogs(a.logger).ChooseDataset()
	}
	if a.cfg.DatasetPath == "" {
		a.logger.Info("no dataset selected, exiting")
		Destroy(App)
		return
	}

	c, err := BuildContainer(a.cfg, a.cfgPath, a.logger)
	if err != nil {
		a.logger.Error("startup failed", "error", err)
		view.NewDialogs(a.logger).ShowError("Error", err.Error())
		Destroy(App)
		return
	}
	a.c = c

	// Handlers resolve presenters at call time; they are wired after the view exists.
	c.RootView.Build(view.Handlers{
		Canvas: view.CanvasHandlers{
			Press:       func(x, y int) { a.c.CanvasPresenter.Press(x, y) },
			Drag:        func(x, y int) { a.c.CanvasPresenter.Drag(x, y) },
			Release:     func(x, y int) { a.c.CanvasPresenter.Release(x, y) },
			Motion:      func(x, y int) { a.c.CanvasPresenter.Motion(x, y) },
			ContextMenu: func(x, y int) { a.c.CanvasPresenter.ContextMenu(x, y) },
		},
		Prev:          func() { a.c.ToolbarPresenter.Prev() },
		Next:          func() { a.c.ToolbarPresenter.Next() },
		AddClass:      func() { a.c.ToolbarPresenter.AddClass() },
		ClassSelected: func(label string) { a.c.ToolbarPresenter.SelectClass(presenter.ClassFromLabel(label)) },
		DeleteAll:     func() { a.c.ToolbarPresenter.DeleteAll() },
		MarkNull:      func() { a.c.ToolbarPresenter.MarkNull() },
		Statistics:    func() { a.c.ToolbarPresenter.ShowStatistics() },
		ZoomIn:        func() { a.c.ToolbarPresenter.ZoomIn() },
		ZoomOut:       func() { a.c.ToolbarPresenter.ZoomOut() },
		Exit:          a.exitHandler,
	})
	c.WirePresenters(a.scheduleUpdate)
	a.bindKeys()

	if a.cfg.PromptClassesOnStart {
		n := c.Controller.SeedClasses()
		a.logger.Info("classes seeded", "count", n, "registered", c.Controller.Registry().Len())
	}
	if err := c.Controller.Start(); err != nil {
		switch {
		case errors.Is(err, annotate.ErrNoImages):
			c.Dialogs.ShowInfo("Info", fmt.Sprintf("No images found in %s.", c.Layout.Images))
			a.exitHandler()
			return
		case c.Controller.ImageCount() == 0:
			a.logger.Error("dataset not opened", "error", err)
			c.Dialogs.ShowError("Error", err.Error())
			a.exitHandler()
			return
		default:
			// The first image opened with problems; the session continues.
			c.RootView.ShowError("Error", err.Error())
		}
	}
	c.ToolbarPresenter.SyncClasses()
	c.CanvasPresenter.Redraw()

	a.scheduleUpdate()

	App.Wait()
}

// bindKeys installs the window-wide shortcuts. Dialog windows have their own bindings.
func (a *app) bindKeys() {
	Bind(App, "<Left>", Command(func() { a.c.ToolbarPresenter.Prev() }))
	Bind(App, "<Right>", Command(func() { a.c.ToolbarPresenter.Next() }))
	Bind(App, "<Control-n>", Command(func() { a.c.ToolbarPresenter.AddClass() }))
	Bind(App, "<Delete>", Command(func() { a.c.ToolbarPresenter.DeleteAll() }))
	Bind(App, "<KeyPress-n>", Command(func() { a.c.ToolbarPresenter.MarkNull() }))
	Bind(App, "<Control-plus>", Command(func() { a.c.ToolbarPresenter.ZoomIn() }))
	Bind(App, "<Control-equal>", Command(func() { a.c.ToolbarPresenter.ZoomIn() }))
	Bind(App, "<Control-minus>", Command(func() { a.c.ToolbarPresenter.ZoomOut() }))
}

func (a *app) update() {
	if a.c == nil {
		return
	}
	// Loop reschedules through scheduleUpdate.
	a.c.Loop.Tick()
}

func (a *app) exitHandler() {
	// Cancel scheduled after event if any.
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	if a.c != nil {
		_, total, visited := a.c.Session.Values()
		a.logger.Info("session finished",
			"images_seen", visited,
			"annotating", total.Round(time.Second).String(),
			"since", humanize.Time(a.started),
			"cached_frames", a.c.Loader.Cached(),
		)
		a.c.Loader.Purge()
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}
