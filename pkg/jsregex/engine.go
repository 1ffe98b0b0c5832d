package jsregex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
	"github.com/chosenoffset/jsregex/pkg/jsregex/metrics"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

// Engine converts trees under a fixed set of options and limits, and
// reports every conversion to its registered handlers and metrics.
type Engine struct {
	options  converter.Options
	limits   *Limits
	handlers *handlers.Registry
	recorder *metrics.Recorder
	logger   *slog.Logger
	mutex    sync.RWMutex
}

type EngineOption func(*Engine)

func WithOptions(opts converter.Options) EngineOption {
	return func(e *Engine) { e.options = opts }
}

func WithLimits(limits *Limits) EngineOption {
	return func(e *Engine) { e.limits = limits }
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

func WithRecorder(recorder *metrics.Recorder) EngineOption {
	return func(e *Engine) { e.recorder = recorder }
}

// Conversion is one converted tree.
type Conversion struct {
	ID               string `json:"id" yaml:"id"`
	Pattern          string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	converter.Result `yaml:",inline"`
	Duration         time.Duration `json:"duration_ns" yaml:"duration"`
}

func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		options:  converter.DefaultOptions(),
		limits:   DefaultLimits(),
		handlers: handlers.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.limits == nil {
		engine.limits = DefaultLimits()
	}

	return engine
}

func (e *Engine) SetLimits(limits *Limits) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.limits = limits
}

func (e *Engine) GetLimits() *Limits {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	limits := *e.limits
	return &limits
}

func (e *Engine) SetOptions(opts converter.Options) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.options = opts
}

func (e *Engine) GetOptions() converter.Options {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.options
}

// RegisterHandler subscribes handler to conversion or warning events.
func (e *Engine) RegisterHandler(eventType handlers.EventType, handler handlers.Handler) {
	e.handlers.RegisterHandler(eventType, handler)
}

// Convert converts tree with the engine's options.
func (e *Engine) Convert(tree *syntax.Tree) (*Conversion, error) {
	return e.ConvertWithOptions(tree, e.GetOptions())
}

// ConvertWithOptions converts tree with opts instead of the engine's
// options. Limits still apply.
func (e *Engine) ConvertWithOptions(tree *syntax.Tree, opts converter.Options) (*Conversion, error) {
	if err := e.GetLimits().checkTree(tree); err != nil {
		e.reject(err)
		return nil, err
	}

	start := time.Now()
	result := converter.Convert(tree, opts)
	conv := &Conversion{
		ID:       uuid.NewString(),
		Pattern:  tree.Pattern,
		Result:   result,
		Duration: time.Since(start),
	}

	e.recorder.ObserveConversion(opts.Target, result, conv.Duration)
	e.logger.Debug("converted tree",
		"id", conv.ID,
		"pattern", conv.Pattern,
		"source", result.Source,
		"flags", result.Flags,
		"warnings", len(result.Warnings),
		"target", opts.Target.String(),
	)
	e.dispatch(conv)

	return conv, nil
}

// ConvertDocument decodes a tree document and converts it.
func (e *Engine) ConvertDocument(data []byte, format syntax.Format) (*Conversion, error) {
	return e.ConvertDocumentWithOptions(data, format, e.GetOptions())
}

func (e *Engine) ConvertDocumentWithOptions(data []byte, format syntax.Format, opts converter.Options) (*Conversion, error) {
	tree, err := syntax.Decode(data, format)
	if err != nil {
		e.recorder.ObserveRejection(metrics.ReasonInvalid)
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	return e.ConvertWithOptions(tree, opts)
}

// ConvertBatch converts trees in parallel, one context per tree. Results
// keep the order of trees. The first failure cancels the rest.
func (e *Engine) ConvertBatch(ctx context.Context, trees []*syntax.Tree) ([]*Conversion, error) {
	if err := e.GetLimits().checkBatch(len(trees)); err != nil {
		return nil, err
	}

	opts := e.GetOptions()
	results := make([]*Conversion, len(trees))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, tree := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			conv, err := e.ConvertWithOptions(tree, opts)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			results[i] = conv
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) reject(err error) {
	switch {
	case errors.Is(err, ErrTreeTooLarge):
		e.recorder.ObserveRejection(metrics.ReasonTooLarge)
	case errors.Is(err, ErrTreeTooDeep):
		e.recorder.ObserveRejection(metrics.ReasonTooDeep)
	}
	e.logger.Warn("tree rejected", "error", err)
}

func (e *Engine) dispatch(conv *Conversion) {
	events := handlers.WarningEvents(conv.ID, conv.Pattern, conv.Warnings)
	events = append(events, handlers.NewEvent(handlers.ConversionEvent, conv.ID, conv.Pattern,
		fmt.Sprintf("converted to /%s/%s", conv.Source, conv.Flags)))

	for _, event := range events {
		if err := e.handlers.Dispatch(event); err != nil && !errors.Is(err, handlers.ErrNoHandlers) {
			e.logger.Error("event handler failed", "type", event.Type, "id", conv.ID, "error", err)
		}
	}
}
