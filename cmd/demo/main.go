package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/chosenoffset/jsregex/internal/treegen"
	"github.com/chosenoffset/jsregex/pkg/jsregex"
	"github.com/chosenoffset/jsregex/pkg/jsregex/converter"
	"github.com/chosenoffset/jsregex/pkg/jsregex/handlers"
	"github.com/chosenoffset/jsregex/pkg/jsregex/metrics"
	"github.com/chosenoffset/jsregex/pkg/jsregex/server"
	"github.com/chosenoffset/jsregex/pkg/jsregex/syntax"
)

func main() {
	fmt.Println("Starting jsregex demo...")

	reg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	engine := jsregex.NewEngine(
		jsregex.WithOptions(converter.Options{Target: converter.ES2018}),
		jsregex.WithRecorder(recorder),
	)
	engine.RegisterHandler(handlers.WarningEvent, &handlers.ConsoleHandler{Out: os.Stdout})

	samples := []struct {
		name string
		tree *syntax.Tree
	}{
		{
			name: "atomic_group",
			tree: syntax.NewTree(syntax.Seq(syntax.Atomic(syntax.Plus(syntax.Lit("a"))), syntax.Capture(syntax.Lit("b")), syntax.Ref(1)), 0),
		},
		{
			name: "possessive_digits",
			tree: syntax.NewTree(syntax.Seq(syntax.Repeat(syntax.Chars(syntax.CharDigit), 1, -1, syntax.Possessive), syntax.Lit("px")), 0),
		},
		{
			name: "named_date",
			tree: syntax.NewTree(syntax.Seq(
				syntax.Named("year", syntax.Repeat(syntax.Chars(syntax.CharDigit), 4, 4, syntax.Greedy)), syntax.Lit("-"),
				syntax.Named("month", syntax.Repeat(syntax.Chars(syntax.CharDigit), 2, 2, syntax.Greedy)), syntax.Lit("-"), syntax.RefName("month"),
			), 0),
		},
		{
			name: "greek_words",
			tree: syntax.NewTree(syntax.Seq(syntax.At(syntax.AnchorWordBoundary), syntax.Plus(syntax.CharSet(syntax.Prop("Greek"))), syntax.At(syntax.AnchorWordBoundary)), syntax.IgnoreCase),
		},
	}

	for _, sample := range samples {
		conv, err := engine.Convert(sample.tree)
		if err != nil {
			log.Printf("Error converting %s: %v", sample.name, err)
			continue
		}
		fmt.Printf("%-18s %-30s => /%s/%s\n", sample.name, conv.Pattern, conv.Source, conv.Flags)
	}

	srv := server.NewServer(engine, server.DefaultConfig(), server.WithGatherer(reg))
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()
	defer srv.Stop()

	fmt.Println()
	fmt.Println("Server available at: http://" + srv.Addr())
	fmt.Println("API endpoints:")
	fmt.Println("  - POST /api/convert  - Convert a tree document")
	fmt.Println("  - GET  /api/events   - Recent events")
	fmt.Println("  - GET  /metrics      - Prometheus metrics")
	fmt.Println("  - GET  /ws           - Live event stream")
	fmt.Println("  - GET  /             - Playground")
	fmt.Println()
	fmt.Println("Converting generated trees...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	generateLoad(ctx, engine)
}

// generateLoad converts a generated tree every two seconds so that
// connected clients see events.
func generateLoad(ctx context.Context, engine *jsregex.Engine) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	gen := treegen.New(uint64(time.Now().UnixNano()), treegen.Mixed)
	gen.MaxDepth = 3

	for {
		select {
		case <-ctx.Done():
			fmt.Println("Shutting down")
			return
		case <-ticker.C:
			tree, err := gen.Tree()
			if err != nil {
				log.Printf("Generated an invalid tree: %v", err)
				continue
			}
			conv, err := engine.Convert(tree)
			if err != nil {
				log.Printf("Conversion rejected: %v", err)
				continue
			}
			fmt.Printf("%s => /%s/%s (%d warnings)\n", conv.Pattern, conv.Source, conv.Flags, len(conv.Warnings))
		}
	}
}
