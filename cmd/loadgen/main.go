// Command loadgen sends randomly generated tree documents to a running
// jsregex server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chosenoffset/jsregex/internal/treegen"
	"github.com/chosenoffset/jsregex/pkg/jsregex/server"
)

type options struct {
	baseURL  string
	profile  string
	target   string
	seed     uint64
	workers  int
	requests int
	interval time.Duration
	timeout  time.Duration
}

type stats struct {
	sent     atomic.Int64
	ok       atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// Summary totals one load run.
type Summary struct {
	Sent     int64
	OK       int64
	Rejected int64
	Failed   int64
	Elapsed  time.Duration
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "loadgen",
		Short:         "Send random tree documents to a jsregex server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			summary, err := run(ctx, logger, opts)
			if err != nil {
				return err
			}
			logger.Info("load finished",
				"sent", summary.Sent,
				"ok", summary.OK,
				"rejected", summary.Rejected,
				"failed", summary.Failed,
				"elapsed", summary.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:9090", "server base URL")
	cmd.Flags().StringVar(&opts.profile, "profile", "", "generator profile (default: rotate through all)")
	cmd.Flags().StringVar(&opts.target, "target", "", "ECMAScript target sent with each request")
	cmd.Flags().Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "concurrent workers")
	cmd.Flags().IntVarP(&opts.requests, "requests", "n", 0, "requests per worker (0 runs until interrupted)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 100*time.Millisecond, "delay between requests of one worker")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "request timeout")

	return cmd
}

func profiles(name string) ([]treegen.Profile, error) {
	all := treegen.Profiles()
	if name == "" {
		return all, nil
	}
	for _, p := range all {
		if p.Name == name {
			return []treegen.Profile{p}, nil
		}
	}
	return nil, fmt.Errorf("unknown profile %q", name)
}

func run(ctx context.Context, logger *slog.Logger, opts options) (Summary, error) {
	selected, err := profiles(opts.profile)
	if err != nil {
		return Summary{}, err
	}

	client := &http.Client{Timeout: opts.timeout}
	var st stats
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for w := range opts.workers {
		profile := selected[w%len(selected)]
		gen := treegen.New(opts.seed+uint64(w), profile)
		g.Go(func() error {
			logger.Info("worker started", "worker", w, "profile", profile.Name)
			for i := 0; opts.requests == 0 || i < opts.requests; i++ {
				if ctx.Err() != nil {
					return nil
				}
				send(ctx, client, logger, opts, gen, &st)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(opts.interval):
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return Summary{
		Sent:     st.sent.Load(),
		OK:       st.ok.Load(),
		Rejected: st.rejected.Load(),
		Failed:   st.failed.Load(),
		Elapsed:  time.Since(start),
	}, nil
}

func send(ctx context.Context, client *http.Client, logger *slog.Logger, opts options, gen *treegen.Generator, st *stats) {
	doc, err := json.Marshal(gen.Document())
	if err != nil {
		logger.Error("failed to encode document", "error", err)
		return
	}
	body, err := json.Marshal(server.ConvertRequest{Document: doc, Target: opts.target})
	if err != nil {
		logger.Error("failed to encode request", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.baseURL+"/api/convert", bytes.NewReader(body))
	if err != nil {
		logger.Error("failed to build request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	st.sent.Add(1)
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			st.failed.Add(1)
			logger.Warn("request failed", "error", err)
		}
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		st.ok.Add(1)
	case resp.StatusCode < http.StatusInternalServerError:
		st.rejected.Add(1)
		logger.Debug("document rejected", "status", resp.StatusCode)
	default:
		st.failed.Add(1)
		logger.Warn("server error", "status", resp.StatusCode)
	}
}
