package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/blob"
	"github.com/fwojciec/plansync/fs"
	"github.com/fwojciec/plansync/goquery"
	"github.com/fwojciec/plansync/harvest"
	planshttp "github.com/fwojciec/plansync/http"
	"github.com/fwojciec/plansync/pdf"
	planslog "github.com/fwojciec/plansync/slog"
	"github.com/fwojciec/plansync/sqlite"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	m.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// RegisterPageURL is where update-retailers starts. Set before calling Run().
	RegisterPageURL string

	// SQLite database backing the download index, when one is configured.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		RegisterPageURL: plansync.RegisterPageURL,
	}
}

// Close releases the index database and any opened bucket.
func (m *Main) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	m.DB = nil
	return first
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("plansync"),
		kong.Description("Mirror Australian energy retail plans from the CDR APIs."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'plansync --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if cli.Config != "" {
		if cfg, err = LoadConfigFile(cli.Config); err != nil {
			return err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return err
	}
	cfg = cfg.Merge(cli.Sync.config())
	if cli.List.Index != "" {
		cfg.Index = cli.List.Index
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps.Config = cfg

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger.Debug("config", "config", cfg)

	client := planshttp.NewClient(
		planshttp.WithTimeout(cfg.Timeout),
		planshttp.WithUserAgent(cfg.UserAgent),
	)

	switch {
	case strings.HasPrefix(kongCtx.Command(), "sync"):
		if err := m.wireSync(deps, cli.Sync.Dir, client, cli.Verbose); err != nil {
			return err
		}
	case strings.HasPrefix(kongCtx.Command(), "update-retailers"):
		dir, err := fs.ValidateOutputDir(cli.UpdateRetailers.Dir)
		if err != nil {
			return err
		}
		deps.Retailers = fs.NewRetailerFile(dir)
		var source plansync.RetailerSource = &harvest.Discoverer{
			Fetcher: client,
			Links:   goquery.NewLinkFinder(),
			Tables:  pdf.NewRegisterParser(),
			PageURL: m.RegisterPageURL,
		}
		if cli.Verbose {
			source = planslog.NewLoggingRetailerSource(source, deps.Logger)
		}
		deps.Source = source
	case strings.HasPrefix(kongCtx.Command(), "list"):
		if cfg.Index == "" {
			return plansync.Errorf(plansync.EPRECONDITION, "no index configured; pass --index or set index in the config file")
		}
		if err := m.openIndex(cfg.Index, deps); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

// wireSync builds the runner for a sync into dir.
func (m *Main) wireSync(deps *Dependencies, dir string, client *planshttp.Client, verbose bool) error {
	cfg := deps.Config

	dir, err := fs.ValidateOutputDir(dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Using existing output directory: %s\n", dir)
	deps.Retailers = fs.NewRetailerFile(dir)

	var store plansync.PlanStore = fs.NewPlanStore(dir)
	if cfg.Bucket != "" {
		bs, closeBucket, err := blob.Open(deps.Ctx, cfg.Bucket)
		if err != nil {
			return err
		}
		m.closers = append(m.closers, closeBucket)
		store = bs
	}

	if cfg.Index != "" {
		if err := m.openIndex(cfg.Index, deps); err != nil {
			return err
		}
	}

	var plans plansync.PlanClient = client
	if verbose {
		plans = planslog.NewLoggingPlanClient(plans, deps.Logger)
		store = planslog.NewLoggingPlanStore(store, deps.Logger)
	}

	var limiter plansync.DomainLimiter
	if cfg.Rate > 0 {
		limiter = harvest.NewDomainLimiter(cfg.Rate)
	}

	deps.Runner = &harvest.Runner{
		Catalogs: &harvest.CatalogBuilder{
			Client:      plans,
			PageSize:    cfg.PageSize,
			RateLimiter: limiter,
			Logger:      deps.Logger,
		},
		Downloads: &harvest.Downloader{
			Client:      plans,
			Store:       store,
			Index:       deps.Index,
			RateLimiter: limiter,
			Logger:      deps.Logger,
			Workers:     cfg.Workers,
		},
		Logger:         deps.Logger,
		CollectFirst:   cfg.CollectFirst,
		ReportInterval: cfg.ReportInterval,
	}
	return nil
}

func (m *Main) openIndex(path string, deps *Dependencies) error {
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		return plansync.Errorf(plansync.EPRECONDITION, "failed to open index at %q: %v", path, err)
	}
	m.closers = append(m.closers, m.DB.Close)
	deps.Index = sqlite.NewPlanIndex(m.DB)
	return nil
}
