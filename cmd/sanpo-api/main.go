package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sanpo/extract"
	"github.com/fwojciec/sanpo/goquery"
	sanpohttp "github.com/fwojciec/sanpo/http"
	sanposlog "github.com/fwojciec/sanpo/slog"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Listening is called with the bound address once the server accepts
	// connections. Optional.
	Listening func(addr net.Addr)
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Addr            string        `default:":3000" env:"SANPO_ADDR" help:"Listen address"`
	MaxBody         int64         `default:"5242880" env:"SANPO_MAX_BODY" help:"Maximum request body size in bytes"`
	Rate            float64       `default:"0" env:"SANPO_RATE" help:"Requests per second allowed (0 disables limiting)"`
	Burst           int           `default:"10" env:"SANPO_BURST" help:"Rate limit burst size"`
	AllowFetch      bool          `env:"SANPO_ALLOW_FETCH" help:"Allow POST /links to fetch caller-supplied URLs"`
	FetchTimeout    time.Duration `default:"10s" env:"SANPO_FETCH_TIMEOUT" help:"Timeout for remote fetches"`
	ShutdownTimeout time.Duration `default:"10s" help:"Grace period for in-flight requests on shutdown"`
	LogLevel        string        `default:"info" enum:"debug,info,warn,error" env:"SANPO_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
}

// Run parses args, starts the server and blocks until ctx is cancelled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sanpo-api"),
		kong.Description("Serve HTML link and transparency report extraction over HTTP"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cli.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	fetcher := sanposlog.NewLoggingFetcher(sanpohttp.NewFetcher(sanpohttp.WithTimeout(cli.FetchTimeout)), logger)
	defer fetcher.Close()

	pipeline := &extract.Pipeline{
		Fetcher: fetcher,
		Links:   sanposlog.NewLoggingLinkExtractor(goquery.NewLinkExtractor(), logger),
	}
	reports := sanposlog.NewLoggingReportExtractor(goquery.NewReportExtractor(), logger)

	srv := sanpohttp.NewServer(reports, pipeline,
		sanpohttp.WithLogger(logger),
		sanpohttp.WithMaxBodyBytes(cli.MaxBody),
		sanpohttp.WithRateLimit(cli.Rate, cli.Burst),
		sanpohttp.WithRemoteFetch(cli.AllowFetch),
	)

	ln, err := net.Listen("tcp", cli.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %q: %w", cli.Addr, err)
	}
	logger.Info("sanpo-api listening", "addr", ln.Addr().String())
	if m.Listening != nil {
		m.Listening(ln.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		logger.Info("sanpo-api shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
