package harvest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/plansync"
	"github.com/fwojciec/plansync/fs"
	"github.com/fwojciec/plansync/harvest"
	planshttp "github.com/fwojciec/plansync/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acmeServer serves two list pages for AcmePower, the second repeating a
// plan ID in a different case, plus the plan detail documents.
func acmeServer(t *testing.T, detailHits *sync.Map) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"1": `{"data":{"plans":[{"planId":"P1"},{"planId":"P2"}]},"meta":{"totalPages":2}}`,
		"2": `{"data":{"plans":[{"planId":"p1"}]},"meta":{"totalPages":2}}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /acme/cds-au/v1/energy/plans", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-v") != "1" {
			http.Error(w, "unsupported version", http.StatusNotAcceptable)
			return
		}
		body, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	})
	mux.HandleFunc("GET /acme/cds-au/v1/energy/plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-v") != "3" {
			http.Error(w, "unsupported version", http.StatusNotAcceptable)
			return
		}
		id := r.PathValue("id")
		n, _ := detailHits.LoadOrStore(id, new(int))
		*n.(*int)++
		fmt.Fprint(w, planBody(id))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSync_AcmePower(t *testing.T) {
	t.Parallel()

	var hits sync.Map
	srv := acmeServer(t, &hits)
	root := t.TempDir()
	client := planshttp.NewClient()
	store := fs.NewPlanStore(root)
	rn := &harvest.Runner{
		Catalogs:  &harvest.CatalogBuilder{Client: client},
		Downloads: &harvest.Downloader{Client: client, Store: store},
	}
	acme := plansync.Retailer{Brand: "AcmePower", BaseURL: srv.URL + "/acme"}

	catalog, err := rn.Catalogs.BuildCatalog(context.Background(), acme)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, catalog.PlanIDs)

	var done []plansync.CounterSnapshot
	summary, err := rn.Run(context.Background(), []plansync.Retailer{acme}, func(e plansync.ProgressEvent) {
		if e.Type == plansync.ProgressRetailerDone {
			done = append(done, e.Counters)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []plansync.CounterSnapshot{{Total: 2, Checked: 2, Downloaded: 2}}, done)
	assert.Equal(t, 2, summary.Downloaded)

	for _, id := range []string{"P1", "P2"} {
		got, err := os.ReadFile(filepath.Join(root, "AcmePower", id+".json"))
		require.NoError(t, err)
		assert.Equal(t, planBody(id), string(got))
	}

	t.Run("second run downloads nothing", func(t *testing.T) {
		summary, err := rn.Run(context.Background(), []plansync.Retailer{acme}, nil)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.Downloaded)
		assert.Equal(t, 2, summary.Existing)
		hits.Range(func(key, value any) bool {
			assert.Equal(t, 1, *value.(*int), "plan %s fetched more than once", key)
			return true
		})
	})

	t.Run("no temporary files remain", func(t *testing.T) {
		entries, err := os.ReadDir(filepath.Join(root, "AcmePower"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
		}
		assert.Len(t, entries, 2)
	})
}
