package slog_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/mock"
	planslog "github.com/fwojciec/plansync/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var acme = plansync.Retailer{Brand: "AcmePower", BaseURL: "https://cdr.energymadeeasy.gov.au/acmepower"}

func TestLoggingPlanClient_ListPlans(t *testing.T) {
	t.Parallel()

	t.Run("logs page with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PlanClient{
			ListPlansFn: func(_ context.Context, _ plansync.Retailer, page, _ int) (*plansync.PlanPage, error) {
				return &plansync.PlanPage{PlanIDs: []string{"P1", "P2"}, TotalPages: 3}, nil
			},
		}

		client := planslog.NewLoggingPlanClient(inner, logger)
		result, err := client.ListPlans(context.Background(), acme, 2, 1000)

		require.NoError(t, err)
		assert.Len(t, result.PlanIDs, 2)
		output := buf.String()
		assert.Contains(t, output, "list plans")
		assert.Contains(t, output, "brand=AcmePower")
		assert.Contains(t, output, "page=2")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "totalPages=3")
		assert.Contains(t, output, "duration=")
		assert.NotContains(t, output, "err=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PlanClient{
			ListPlansFn: func(context.Context, plansync.Retailer, int, int) (*plansync.PlanPage, error) {
				return nil, errors.New("connection failed")
			},
		}

		client := planslog.NewLoggingPlanClient(inner, logger)
		_, err := client.ListPlans(context.Background(), acme, 1, 1000)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "list plans")
		assert.Contains(t, output, "err=\"connection failed\"")
		assert.NotContains(t, output, "count=")
	})
}

func TestLoggingPlanClient_FetchPlan(t *testing.T) {
	t.Parallel()

	t.Run("logs at debug level and passes the body through", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.PlanClient{
			FetchPlanFn: func(context.Context, plansync.Retailer, string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("{}")), nil
			},
		}

		client := planslog.NewLoggingPlanClient(inner, logger)
		body, err := client.FetchPlan(context.Background(), acme, "P1")

		require.NoError(t, err)
		got, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(got))
		output := buf.String()
		assert.Contains(t, output, "level=DEBUG")
		assert.Contains(t, output, "fetch plan")
		assert.Contains(t, output, "plan=P1")
	})

	t.Run("is silent at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PlanClient{
			FetchPlanFn: func(context.Context, plansync.Retailer, string) (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader("{}")), nil
			},
		}

		_, err := planslog.NewLoggingPlanClient(inner, logger).FetchPlan(context.Background(), acme, "P1")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingPlanStore(t *testing.T) {
	t.Parallel()

	t.Run("logs created plan with bytes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PlanStore{
			CreateFn: func(_ context.Context, _, _ string, r io.Reader) (int64, error) {
				return io.Copy(io.Discard, r)
			},
		}

		store := planslog.NewLoggingPlanStore(inner, logger)
		n, err := store.Create(context.Background(), "AcmePower", "P1", strings.NewReader("12345"))

		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
		output := buf.String()
		assert.Contains(t, output, "create plan")
		assert.Contains(t, output, "brand=AcmePower")
		assert.Contains(t, output, "plan=P1")
		assert.Contains(t, output, "bytes=5")
	})

	t.Run("passes prepare and exists through unlogged", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		var prepared string
		inner := &mock.PlanStore{
			PrepareFn: func(_ context.Context, brand string) error {
				prepared = brand
				return nil
			},
			ExistsFn: func(context.Context, string, string) (bool, error) { return true, nil },
		}

		store := planslog.NewLoggingPlanStore(inner, logger)
		require.NoError(t, store.Prepare(context.Background(), "AcmePower"))
		ok, err := store.Exists(context.Background(), "AcmePower", "P1")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "AcmePower", prepared)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingRetailerSource_DiscoverRetailers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.RetailerSource{
		DiscoverRetailersFn: func(context.Context) ([]plansync.Retailer, error) {
			return []plansync.Retailer{acme}, nil
		},
	}

	got, err := planslog.NewLoggingRetailerSource(inner, logger).DiscoverRetailers(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, buf.String(), "discover retailers")
	assert.Contains(t, buf.String(), "count=1")
}
