package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fluxion/internal/workload"
	"github.com/vango-dev/fluxion/pkg/fluxion"
	"github.com/vango-dev/fluxion/pkg/inspect"
	"github.com/vango-dev/fluxion/pkg/observe"
)

func demoCmd() *cobra.Command {
	var (
		addr     string
		shape    string
		width    int
		depth    int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a live reactive graph and serve the inspector",
		Long: `Run a synthetic reactive graph and serve the flush inspector.

The demo builds a graph, writes to its source on an interval, and
exposes what the runtime is doing:

  GET /stats     aggregate counters as JSON
  GET /flushes   recent flushes as JSON
  GET /ws        live flush stream over WebSocket
  GET /metrics   Prometheus metrics

Examples:
  fluxion demo
  fluxion demo --addr :8080 --shape diamond --width 100
  fluxion demo --interval 10ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(addr, shape, width, depth, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":7071", "Address for the inspector HTTP server")
	cmd.Flags().StringVar(&shape, "shape", "grid", "Graph shape: chain|diamond|grid")
	cmd.Flags().IntVar(&width, "width", 8, "Graph width (diamond arms, grid chains)")
	cmd.Flags().IntVar(&depth, "depth", 16, "Graph depth (chain and grid memo layers)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 100*time.Millisecond, "Delay between source writes")

	return cmd
}

func runDemo(addr, shape string, width, depth int, interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be > 0")
	}

	rt := fluxion.New()

	ins := inspect.New(inspect.Options{})
	defer ins.Close()
	ins.Attach(rt)
	observe.Prometheus(rt)

	g, err := workload.Build(rt, shape, width, depth)
	if err != nil {
		return err
	}
	defer g.Dispose()

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", ins.Handler())

	httpServer := &http.Server{Addr: addr, Handler: r}

	// Print banner
	printBanner()
	fmt.Println("  demo")
	fmt.Println()
	info("Workload:  %s (%d nodes), stepping every %s", g.Name, g.Nodes(), interval)
	info("Inspector: http://%s/stats", displayAddr(addr))
	info("Stream:    ws://%s/ws", displayAddr(addr))
	info("Metrics:   http://%s/metrics", displayAddr(addr))
	fmt.Println()

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	stepDone := make(chan struct{})
	go func() {
		defer close(stepDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.Step()
			}
		}
	}()
	// The stepper owns the runtime from here on. Stop it before the
	// deferred Dispose tears the graph down.
	defer func() {
		cancel()
		<-stepDone
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		errorMsg("Shutdown: %s", err)
	}

	stats := ins.Stats()
	if stats.StreamDropped > 0 {
		warn("Dropped %s stream events under pressure", humanize.Comma(int64(stats.StreamDropped)))
	}
	success("Ran %s flushes (%s effect runs)",
		humanize.Comma(int64(stats.Flushes)),
		humanize.Comma(int64(stats.EffectRuns)))
	return nil
}

// displayAddr turns a listen address into something printable,
// substituting localhost when only a port was given.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
