package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/plansync"
)

// Ensure LoggingRetailerSource implements plansync.RetailerSource.
var _ plansync.RetailerSource = (*LoggingRetailerSource)(nil)

// LoggingRetailerSource wraps a RetailerSource with logging.
type LoggingRetailerSource struct {
	next   plansync.RetailerSource
	logger *slog.Logger
}

// NewLoggingRetailerSource creates a new LoggingRetailerSource.
func NewLoggingRetailerSource(next plansync.RetailerSource, logger *slog.Logger) *LoggingRetailerSource {
	return &LoggingRetailerSource{next: next, logger: logger}
}

// DiscoverRetailers delegates to the wrapped source and logs the result.
func (s *LoggingRetailerSource) DiscoverRetailers(ctx context.Context) (retailers []plansync.Retailer, err error) {
	defer func(begin time.Time) {
		s.logger.Info("discover retailers",
			"count", len(retailers),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverRetailers(ctx)
}
