package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/plansync"
)

// Ensure RetailerFile implements plansync.RetailerStore at compile time.
var _ plansync.RetailerStore = (*RetailerFile)(nil)

// RetailerFile stores the retailer list as a JSON array in the output root.
type RetailerFile struct {
	dir string
}

// NewRetailerFile creates a RetailerFile for plansync.RetailerListFile in dir.
func NewRetailerFile(dir string) *RetailerFile {
	return &RetailerFile{dir: dir}
}

// Path returns the location of the retailer list.
func (f *RetailerFile) Path() string {
	return filepath.Join(f.dir, plansync.RetailerListFile)
}

// LoadRetailers reads and validates the retailer list.
func (f *RetailerFile) LoadRetailers(ctx context.Context) ([]plansync.Retailer, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, plansync.Errorf(plansync.EPRECONDITION,
			"retailer list %s not found; run 'plansync update-retailers %s' first", f.Path(), f.dir)
	}
	if err != nil {
		return nil, err
	}

	var retailers []plansync.Retailer
	if err := json.Unmarshal(data, &retailers); err != nil {
		return nil, plansync.Errorf(plansync.EPRECONDITION, "parsing retailer list %s: %v", f.Path(), err)
	}

	seen := make(map[string]bool, len(retailers))
	for i := range retailers {
		if err := retailers[i].Validate(); err != nil {
			return nil, fmt.Errorf("retailer list entry %d: %w", i, err)
		}
		if seen[retailers[i].Brand] {
			return nil, plansync.Errorf(plansync.EINVALID, "retailer list entry %d: duplicate brand %q", i, retailers[i].Brand)
		}
		seen[retailers[i].Brand] = true
	}
	return retailers, nil
}

// SaveRetailers atomically replaces the retailer list.
func (f *RetailerFile) SaveRetailers(ctx context.Context, retailers []plansync.Retailer) error {
	if retailers == nil {
		retailers = []plansync.Retailer{}
	}
	data, err := json.MarshalIndent(retailers, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(f.dir, "."+plansync.RetailerListFile+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path())
}

// ValidateOutputDir resolves dir to an absolute path and checks that it is
// an existing directory.
func ValidateOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", plansync.Errorf(plansync.EPRECONDITION, "output directory required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", plansync.Errorf(plansync.EPRECONDITION, "invalid output directory path %q: %v", dir, err)
	}
	info, err := os.Stat(abs)
	if errors.Is(err, os.ErrNotExist) {
		return "", plansync.Errorf(plansync.EPRECONDITION, "output directory does not exist: %q", abs)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", plansync.Errorf(plansync.EPRECONDITION, "a file already exists at the output directory path: %q", abs)
	}
	return abs, nil
}
