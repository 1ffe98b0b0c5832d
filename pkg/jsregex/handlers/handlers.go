// Package handlers delivers conversion events to registered consumers such
// as the console, the structured log or connected WebSocket clients.
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
)

var ErrNoHandlers = errors.New("no handlers registered")

type EventType string

const (
	ConversionEvent EventType = "conversion"
	WarningEvent    EventType = "warning"
)

type Event struct {
	Type         EventType          `json:"type"`
	ConversionID string             `json:"conversion_id"`
	Pattern      string             `json:"pattern,omitempty"`
	Message      string             `json:"message"`
	Warning      *converter.Warning `json:"warning,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

type Handler interface {
	Handle(event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(event Event) error

func (f HandlerFunc) Handle(event Event) error { return f(event) }

// ConsoleHandler prints warnings in color. Unsupported constructs are red,
// the rest yellow.
type ConsoleHandler struct {
	Out io.Writer
	mu  sync.Mutex
}

func (h *ConsoleHandler) Handle(event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.Out
	if out == nil {
		out = os.Stderr
	}
	if event.Warning == nil {
		_, err := fmt.Fprintf(out, "[%s] %s\n", event.Timestamp.Format("15:04:05"), event.Message)
		return err
	}

	c := color.New(color.FgYellow)
	if event.Warning.Kind == converter.WarningUnsupported {
		c = color.New(color.FgRed)
	}
	_, err := c.Fprintf(out, "warning: %s\n", event.Warning)
	return err
}

type LogHandler struct {
	logger *slog.Logger
}

func NewLogHandler(logger *slog.Logger) *LogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogHandler{logger: logger}
}

func (h *LogHandler) Handle(event Event) error {
	if event.Warning == nil {
		h.logger.Info(event.Message, "conversion_id", event.ConversionID, "pattern", event.Pattern)
		return nil
	}
	h.logger.Warn(event.Message,
		"conversion_id", event.ConversionID,
		"pattern", event.Pattern,
		"kind", event.Warning.Kind.String(),
		"offset", event.Warning.Offset,
		"text", event.Warning.Text,
	)
	return nil
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[EventType][]Handler),
	}
}

func (r *Registry) RegisterHandler(eventType EventType, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

// Dispatch runs every handler registered for the event's type. All
// handlers run even when one fails; their errors are joined.
func (r *Registry) Dispatch(event Event) error {
	r.mu.RLock()
	handlers, exists := r.handlers[event.Type]
	if !exists {
		r.mu.RUnlock()
		return fmt.Errorf("%w for event type %s", ErrNoHandlers, event.Type)
	}
	handlersCopy := make([]Handler, len(handlers))
	copy(handlersCopy, handlers)
	r.mu.RUnlock()

	var errs []error
	for _, handler := range handlersCopy {
		if err := handler.Handle(event); err != nil {
			errs = append(errs, fmt.Errorf("handler error for %s: %w", event.Type, err))
		}
	}
	return errors.Join(errs...)
}

// NewEvent stamps an event with the current time.
func NewEvent(eventType EventType, conversionID, pattern, message string) Event {
	return Event{
		Type:         eventType,
		ConversionID: conversionID,
		Pattern:      pattern,
		Message:      message,
		Timestamp:    time.Now(),
	}
}

// WarningEvents builds one warning event per conversion warning.
func WarningEvents(conversionID, pattern string, warnings []converter.Warning) []Event {
	events := make([]Event, len(warnings))
	for i := range warnings {
		events[i] = NewEvent(WarningEvent, conversionID, pattern, warnings[i].Detail)
		events[i].Warning = &warnings[i]
	}
	return events
}
