package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/harvest"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Config    Config
	Retailers plansync.RetailerStore
	Source    plansync.RetailerSource
	Index     plansync.PlanIndex
	Runner    *harvest.Runner
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `type:"path" help:"YAML config file"`
	Verbose bool   `short:"v" help:"Log requests and writes to stderr"`

	Sync            SyncCmd            `cmd:"" default:"withargs" help:"Download missing plans for every retailer"`
	UpdateRetailers UpdateRetailersCmd `cmd:"" name:"update-retailers" help:"Regenerate retailers.json from the AER register"`
	List            ListCmd            `cmd:"" help:"List plans recorded in the download index"`
}

// SyncCmd is the "sync" subcommand. Zero flag values defer to the config
// file and the defaults.
type SyncCmd struct {
	Dir            string        `arg:"" help:"Output directory holding retailers.json"`
	PageSize       int           `help:"Plans per list page (default 1000)"`
	Timeout        time.Duration `help:"HTTP request timeout (default 30s)"`
	Workers        int           `short:"w" help:"Concurrent downloads per retailer (default 1)"`
	ReportInterval time.Duration `help:"Progress report interval (default 1m)"`
	Rate           float64       `help:"Requests per second per API host, 0 for unlimited"`
	CollectFirst   bool          `help:"List every retailer's plans before downloading"`
	UserAgent      string        `help:"User-Agent sent to retailer APIs"`
	Index          string        `type:"path" help:"SQLite index recording downloaded plans"`
	Bucket         string        `help:"Store plans in a bucket URL (file://, mem://) instead of the output directory"`
}

// config returns the flag values as a Config overlay.
func (c *SyncCmd) config() Config {
	return Config{
		PageSize:       c.PageSize,
		Timeout:        c.Timeout,
		Workers:        c.Workers,
		ReportInterval: c.ReportInterval,
		Rate:           c.Rate,
		CollectFirst:   c.CollectFirst,
		UserAgent:      c.UserAgent,
		Index:          c.Index,
		Bucket:         c.Bucket,
	}
}

// UpdateRetailersCmd is the "update-retailers" subcommand.
type UpdateRetailersCmd struct {
	Dir string `arg:"" help:"Output directory to write retailers.json into"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Index string `type:"path" help:"SQLite index written by sync --index"`
	Brand string `short:"b" help:"Only show plans for this brand"`
	Limit int    `short:"n" default:"50" help:"Maximum records to show"`
}
