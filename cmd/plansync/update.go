package main

import (
	"fmt"
)

// Run executes the update-retailers command.
func (c *UpdateRetailersCmd) Run(deps *Dependencies) error {
	retailers, err := deps.Source.DiscoverRetailers(deps.Ctx)
	if err != nil {
		return fmt.Errorf("discover retailers: %w", err)
	}

	if err := deps.Retailers.SaveRetailers(deps.Ctx, retailers); err != nil {
		return fmt.Errorf("save retailers: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Saved %d retailers.\n", len(retailers))
	return nil
}
