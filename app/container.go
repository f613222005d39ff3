package app

import (
	"fmt"
	"log/slog"

	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/domain/annotate"
	"github.com/soocke/boxlabel-go/domain/dataset"
	"github.com/soocke/boxlabel-go/domain/labels"
	"github.com/soocke/boxlabel-go/ui/images"
	"github.com/soocke/boxlabel-go/ui/model"
	"github.com/soocke/boxlabel-go/ui/presenter"
	"github.com/soocke/boxlabel-go/ui/view"
)

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config     *config.Config
	Logger     *slog.Logger
	Loader     *images.Loader
	Codec      *labels.Codec
	Layout     dataset.Layout
	Controller *annotate.Controller
	Session    *model.SessionModel
	Hover      *model.HoverModel
	Dialogs    *view.Dialogs
	RootView   *view.RootView

	// Presenters
	CanvasPresenter  *presenter.CanvasPresenter
	ToolbarPresenter *presenter.ToolbarPresenter
	StatusPresenter  *presenter.StatusPresenter
	SessionPresenter *presenter.SessionPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs the domain side and the root view. Presenters are wired by
// WirePresenters once the view is built.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	c := &AppContainer{Config: cfg, Logger: logger}
	loader, err := images.NewLoader(cfg.FrameCacheSize, logger)
	if err != nil {
		return nil, fmt.Errorf("frame cache: %w", err)
	}
	c.Loader = loader
	policy := labels.Strict
	if !cfg.StrictLabels {
		policy = labels.Lenient
	}
	c.Codec = labels.NewCodec(policy, logger)
	c.Layout = dataset.NewLayout(cfg.DatasetPath)
	c.Session = model.NewSessionModel()
	c.Hover = model.NewHoverModel()
	c.Dialogs = view.NewDialogs(logger)
	c.Controller = annotate.NewController(logger, cfg, c.Layout, c.Codec, annotate.Collaborators{
		Renderer: c.Loader,
		Prompter: c.Dialogs,
	}, nil)
	c.RootView = view.NewRootView(cfg, cfgPath, c.Dialogs, logger)
	return c, nil
}

// WirePresenters connects presenters to the built view and the controller listener.
func (c *AppContainer) WirePresenters(schedule func()) {
	rv := c.RootView
	c.CanvasPresenter = presenter.NewCanvasPresenter(c.Controller, rv.Canvas, rv, rv, c.Hover, c.Logger)
	c.ToolbarPresenter = presenter.NewToolbarPresenter(c.Controller, rv, c.Logger)
	c.StatusPresenter = presenter.NewStatusPresenter(c.Controller, rv)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Controller, rv)
	c.Loop = presenter.NewLoop(c.SessionPresenter, c.StatusPresenter, schedule)

	c.Controller.AddListener(c.StatusPresenter.OnState)
	// Class changes from the canvas (prompted or reassigned) must reach the selector.
	c.CanvasPresenter.OnChange = c.ToolbarPresenter.SyncClasses
	c.ToolbarPresenter.OnChange = c.CanvasPresenter.Redraw
}
