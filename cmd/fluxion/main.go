package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┬ ┬─┐ ┬┬┌─┐┌┐┌
  ├┤ │  │ │┌┴┬┘││ ││││
  └  ┴─┘└─┘┴ └─┴└─┘┘└┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "fluxion",
		Short: "Fine-grained reactive runtime for Go",
		Long: `Fluxion is a fine-grained reactive runtime for Go.

Signals hold state, memos derive from it, and effects react to it.
Writes propagate through the dependency graph in topological order,
so every observer sees a fully settled graph. This CLI drives the
runtime from the outside:

  • bench  measures propagation latency over synthetic graphs
  • demo   runs a live graph and serves the flush inspector
  • version prints build information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(
		benchCmd(),
		demoCmd(),
		versionCmd(),
	)

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Fluxion ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
