// Package js runs scene scripts against a layout document. Scripts see a
// small document API (lookup, creation, style and geometry mutation, hit
// testing, compositing queries) and a console wired to the engine logger.
package js

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	"paintlayer/pkg/layout"
	"paintlayer/pkg/paint"
)

// Engine executes JavaScript against one Document. Like the document it is
// not safe for concurrent use.
type Engine struct {
	vm  *goja.Runtime
	doc *layout.Document

	log     *zap.Logger
	backend paint.CompositingBackend
	running string // name of the script in Run

	// Proxies are cached so the same box is the same JS object (===).
	proxies map[*layout.Box]*goja.Object
	boxes   map[*goja.Object]*layout.Box
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes console output and engine events to l.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithBackend sets the backend document.update() reports to.
func WithBackend(b paint.CompositingBackend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// New creates an engine with a fresh goja runtime bound to doc.
func New(doc *layout.Document, opts ...Option) *Engine {
	e := &Engine{
		vm:      goja.New(),
		doc:     doc,
		log:     zap.NewNop(),
		proxies: make(map[*layout.Box]*goja.Object),
		boxes:   make(map[*goja.Object]*layout.Box),
	}
	for _, opt := range opts {
		opt(e)
	}

	c := &consoleAPI{e: e, logger: e.log.Named("console")}
	c.register(e.vm)
	e.registerDocument()
	return e
}

// Run executes src. Cancelling ctx interrupts the script.
func (e *Engine) Run(ctx context.Context, name, src string) error {
	stop := context.AfterFunc(ctx, func() {
		e.vm.Interrupt(ctx.Err())
	})
	defer stop()
	defer e.vm.ClearInterrupt()
	e.running = name
	defer func() { e.running = "" }()

	if _, err := e.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.log.Debug("script finished", zap.String("script", name), zap.Int("layers", e.doc.Tree().Len()))
	return nil
}

// Execute runs scripts in order and stops at the first error.
func (e *Engine) Execute(ctx context.Context, scripts ...string) error {
	for i, script := range scripts {
		if err := e.Run(ctx, fmt.Sprintf("script %d", i), script); err != nil {
			return err
		}
	}
	return nil
}
