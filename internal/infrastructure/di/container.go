// Package di wires the application graph: configuration, store factory,
// interpreter bridge, renderer, and the document controller.
package di

import (
	"gnartgen/internal/app/config"
	"gnartgen/internal/application/service"
	"gnartgen/internal/infrastructure/interpreter/luabridge"
	"gnartgen/internal/infrastructure/persistence/sqlite"
	"gnartgen/internal/render"
)

// Container holds the wired application components.
type Container struct {
	Config     config.Config
	Docs       service.DocumentService
	Dispatcher *service.Dispatcher

	renderer *render.Renderer
}

// NewContainer builds the graph. The controller starts bound to a fresh
// empty in-memory project; a schema failure here is the one startup error
// the caller should treat as fatal.
func NewContainer(cfg config.Config, log service.Logger) (*Container, error) {
	renderer := render.New()
	docs, err := service.NewDocumentService(
		sqlite.NewFactory(),
		luabridge.New(),
		renderer,
		service.DocumentServiceConfig{
			ThumbWidth:  cfg.ThumbWidth,
			ThumbHeight: cfg.ThumbHeight,
		},
		log,
	)
	if err != nil {
		return nil, err
	}
	return &Container{
		Config:     cfg,
		Docs:       docs,
		Dispatcher: service.NewDispatcher(docs, log),
		renderer:   renderer,
	}, nil
}

// Renderer exposes the shared renderer for callers that need to produce
// standalone surfaces (PNG export).
func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// Close tears down the container, releasing the controller's store handle.
func (c *Container) Close() error {
	return c.Docs.Close()
}
