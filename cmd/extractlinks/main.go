package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sanpo"
	"github.com/fwojciec/sanpo/extract"
	"github.com/fwojciec/sanpo/goquery"
	sanpohttp "github.com/fwojciec/sanpo/http"
	sanposlog "github.com/fwojciec/sanpo/slog"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Fetcher overrides the HTTP fetcher. Set before calling Run().
	Fetcher sanpo.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Timeout time.Duration `short:"t" default:"10s" help:"Fetch timeout"`
	Verbose bool          `short:"v" help:"Log fetch and extraction details to stderr"`
	URL     string        `arg:"" required:"" help:"Page URL to extract links from"`
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("extractlinks"),
		kong.Description("Extract deduplicated links from a web page as JSON"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("usage: extractlinks <URL>")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	fetcher := m.Fetcher
	if fetcher == nil {
		fetcher = sanpohttp.NewFetcher(sanpohttp.WithTimeout(cli.Timeout))
	}
	defer fetcher.Close()

	pipeline := &extract.Pipeline{
		Fetcher: sanposlog.NewLoggingFetcher(fetcher, logger),
		Links:   sanposlog.NewLoggingLinkExtractor(goquery.NewLinkExtractor(), logger),
	}

	result, err := pipeline.ExtractFromURL(ctx, cli.URL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
