package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fluxion/internal/workload"
	"github.com/vango-dev/fluxion/pkg/fluxion"
)

func benchCmd() *cobra.Command {
	var (
		profile    string
		configPath string
		shape      string
		width      int
		depth      int
		iterations int
		warmup     int
		jsonOutput string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark propagation over synthetic graphs",
		Long: `Benchmark signal propagation latency over synthetic graphs.

Each case builds a graph of a known shape, warms it up, then times
a series of source writes. Every write propagates through the whole
graph before the next one starts, so the numbers measure end-to-end
flush latency.

Shapes:
  chain    one source feeding N memos in series
  diamond  one source fanning out to N memos joined by one
  grid     W independent chains of D memos off one source

Examples:
  fluxion bench
  fluxion bench --profile fast
  fluxion bench --shape grid --width 100 --depth 10
  fluxion bench --config bench.toml --json results.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveBenchConfig(profile, configPath, shape, width, depth, iterations, warmup, jsonOutput)
			if err != nil {
				return err
			}
			return runBench(cfg)
		},
	}

	cmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile: fast|standard|stress (default standard)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a bench config file (TOML)")
	cmd.Flags().StringVar(&shape, "shape", "", "Graph shape: chain|diamond|grid|all")
	cmd.Flags().IntVar(&width, "width", -1, "Graph width (diamond arms, grid chains)")
	cmd.Flags().IntVar(&depth, "depth", -1, "Graph depth (chain and grid memo layers)")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", -1, "Timed writes per case")
	cmd.Flags().IntVar(&warmup, "warmup", -1, "Untimed writes before each case")
	cmd.Flags().StringVar(&jsonOutput, "json", "", "JSON report path ('-' for stdout)")

	return cmd
}

func resolveBenchConfig(
	profile, configPath, shape string,
	width, depth, iterations, warmup int,
	jsonOutput string,
) (benchConfig, error) {
	var cfg benchConfig

	if configPath != "" {
		loaded, err := loadBenchConfig(configPath, profile)
		if err != nil {
			return benchConfig{}, err
		}
		cfg = loaded
	} else {
		name := strings.ToLower(strings.TrimSpace(profile))
		if name == "" {
			name = "standard"
		}
		base, ok := benchProfiles[name]
		if !ok {
			return benchConfig{}, fmt.Errorf("unknown profile %q", name)
		}
		cfg = configFromProfile(base)
	}

	if shape != "" {
		cfg.Shape = strings.ToLower(strings.TrimSpace(shape))
	}
	if width != -1 {
		cfg.Widths = []int{width}
	}
	if depth != -1 {
		cfg.Depths = []int{depth}
	}
	if iterations != -1 {
		cfg.Iterations = iterations
	}
	if warmup != -1 {
		cfg.Warmup = warmup
	}
	if jsonOutput != "" {
		cfg.JSONOutput = strings.TrimSpace(jsonOutput)
	}

	if err := cfg.validate(); err != nil {
		return benchConfig{}, err
	}
	return cfg, nil
}

type benchCase struct {
	shape string
	width int
	depth int
}

// expandCases turns the configured shape and size lists into concrete
// cases. Chains vary by depth, diamonds by width, grids by both.
func expandCases(cfg benchConfig) []benchCase {
	shapes := []string{cfg.Shape}
	if cfg.Shape == "all" {
		shapes = []string{"chain", "diamond", "grid"}
	}

	var cases []benchCase
	for _, shape := range shapes {
		switch shape {
		case "chain":
			for _, d := range cfg.Depths {
				cases = append(cases, benchCase{shape: "chain", width: 1, depth: d})
			}
		case "diamond":
			for _, w := range cfg.Widths {
				cases = append(cases, benchCase{shape: "diamond", width: w, depth: 1})
			}
		case "grid":
			for _, w := range cfg.Widths {
				for _, d := range cfg.Depths {
					cases = append(cases, benchCase{shape: "grid", width: w, depth: d})
				}
			}
		}
	}
	return cases
}

type caseResult struct {
	Workload    string  `json:"workload"`
	Shape       string  `json:"shape"`
	Width       int     `json:"width"`
	Depth       int     `json:"depth"`
	Nodes       int     `json:"nodes"`
	AvgUS       float64 `json:"avg_us"`
	MinUS       float64 `json:"min_us"`
	P75US       float64 `json:"p75_us"`
	P99US       float64 `json:"p99_us"`
	MaxUS       float64 `json:"max_us"`
	StepsPerSec float64 `json:"steps_per_sec"`
}

type benchReport struct {
	Version string       `json:"version"`
	Run     runInfo      `json:"run"`
	Profile profileInfo  `json:"profile"`
	Results []caseResult `json:"results"`
	GC      gcInfo       `json:"gc"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
}

type profileInfo struct {
	Name       string `json:"name"`
	Shape      string `json:"shape"`
	Widths     []int  `json:"widths"`
	Depths     []int  `json:"depths"`
	Iterations int    `json:"iterations"`
	Warmup     int    `json:"warmup"`
}

type gcInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	NumGC        uint32  `json:"num_gc"`
	PauseTotalMS float64 `json:"pause_total_ms"`
}

func runBench(cfg benchConfig) error {
	cases := expandCases(cfg)

	tbl := table.NewWriter()
	tbl.SetTitle("Fluxion propagate (%d iterations)", cfg.Iterations)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"workload", "nodes", "avg", "min", "p75", "p99", "max", "steps/s"})

	var before runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	results := make([]caseResult, 0, len(cases))
	for _, c := range cases {
		rt := fluxion.New()
		g, err := workload.Build(rt, c.shape, c.width, c.depth)
		if err != nil {
			return err
		}

		for i := 0; i < cfg.Warmup; i++ {
			g.Step()
		}

		tach := tachymeter.New(&tachymeter.Config{Size: cfg.Iterations})
		runStart := time.Now()
		for i := 0; i < cfg.Iterations; i++ {
			start := time.Now()
			g.Step()
			tach.AddTime(time.Since(start))
		}
		elapsed := time.Since(runStart)

		calc := tach.Calc()
		stepsPerSec := float64(cfg.Iterations) / elapsed.Seconds()

		tbl.AppendRows([]table.Row{
			{
				g.Name,
				g.Nodes(),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(stepsPerSec)),
			},
		})

		results = append(results, caseResult{
			Workload:    g.Name,
			Shape:       c.shape,
			Width:       c.width,
			Depth:       c.depth,
			Nodes:       g.Nodes(),
			AvgUS:       us(calc.Time.Avg),
			MinUS:       us(calc.Time.Min),
			P75US:       us(calc.Time.P75),
			P99US:       us(calc.Time.P99),
			MaxUS:       us(calc.Time.Max),
			StepsPerSec: stepsPerSec,
		})

		g.Dispose()
	}

	var after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&after)

	tbl.Render()

	if cfg.JSONOutput == "" {
		return nil
	}

	report := benchReport{
		Version: "1",
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
		},
		Profile: profileInfo{
			Name:       cfg.Profile,
			Shape:      cfg.Shape,
			Widths:     cfg.Widths,
			Depths:     cfg.Depths,
			Iterations: cfg.Iterations,
			Warmup:     cfg.Warmup,
		},
		Results: results,
		GC: gcInfo{
			AllocMB:      float64(after.TotalAlloc-before.TotalAlloc) / (1024 * 1024),
			NumGC:        after.NumGC - before.NumGC,
			PauseTotalMS: float64(after.PauseTotalNs-before.PauseTotalNs) / float64(time.Millisecond),
		},
	}
	return writeBenchJSON(cfg.JSONOutput, report)
}

func us(d time.Duration) float64 {
	return float64(d) / float64(time.Microsecond)
}

func writeBenchJSON(path string, report benchReport) error {
	var out io.Writer
	if path == "-" {
		out = os.Stdout
	} else {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
