package handlers_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
)

func TestRegistryDispatch(t *testing.T) {
	registry := handlers.NewRegistry()

	var got []handlers.Event
	registry.RegisterHandler(handlers.WarningEvent, handlers.HandlerFunc(func(e handlers.Event) error {
		got = append(got, e)
		return nil
	}))

	event := handlers.NewEvent(handlers.WarningEvent, "id-1", "(?>a)", "atomic group emulated")
	require.NoError(t, registry.Dispatch(event))
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ConversionID)
	assert.False(t, got[0].Timestamp.IsZero())

	err := registry.Dispatch(handlers.NewEvent(handlers.ConversionEvent, "id-1", "", "done"))
	assert.ErrorIs(t, err, handlers.ErrNoHandlers)
}

func TestRegistryRunsAllHandlers(t *testing.T) {
	registry := handlers.NewRegistry()
	boom := errors.New("boom")

	calls := 0
	registry.RegisterHandler(handlers.ConversionEvent, handlers.HandlerFunc(func(handlers.Event) error {
		calls++
		return boom
	}))
	registry.RegisterHandler(handlers.ConversionEvent, handlers.HandlerFunc(func(handlers.Event) error {
		calls++
		return nil
	}))

	err := registry.Dispatch(handlers.NewEvent(handlers.ConversionEvent, "id", "", "done"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestWarningEvents(t *testing.T) {
	warnings := []converter.Warning{
		{Kind: converter.WarningApproximated, Detail: "first", Offset: 0, Text: "(?>"},
		{Kind: converter.WarningUnsupported, Detail: "second", Offset: 4, Text: `\K`},
	}
	events := handlers.WarningEvents("id", "(?>a)\\K", warnings)

	require.Len(t, events, 2)
	assert.Equal(t, handlers.WarningEvent, events[1].Type)
	assert.Equal(t, "second", events[1].Message)
	assert.Equal(t, warnings[1], *events[1].Warning)
}

func TestConsoleHandler(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	h := &handlers.ConsoleHandler{Out: &out}
	event := handlers.NewEvent(handlers.WarningEvent, "id", "a", "lookbehind dropped")
	event.Warning = &converter.Warning{Kind: converter.WarningUnsupported, Detail: "lookbehind dropped", Offset: -1}

	require.NoError(t, h.Handle(event))
	assert.Equal(t, "warning: unsupported: lookbehind dropped\n", out.String())
}

func TestLogHandler(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	h := handlers.NewLogHandler(logger)

	event := handlers.NewEvent(handlers.WarningEvent, "id-7", "(?>a)", "atomic group emulated")
	event.Warning = &converter.Warning{Kind: converter.WarningApproximated, Detail: "atomic group emulated", Text: "(?>"}

	require.NoError(t, h.Handle(event))
	line := out.String()
	assert.True(t, strings.Contains(line, "level=WARN"), line)
	assert.Contains(t, line, "conversion_id=id-7")
	assert.Contains(t, line, "kind=approximated")
}
