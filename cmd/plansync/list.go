package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/plansync"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	filter := plansync.PlanRecordFilter{Limit: c.Limit}
	if c.Brand != "" {
		filter.Brand = &c.Brand
	}

	recs, err := deps.Index.FindPlanRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", plansync.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No plans recorded. Use 'plansync sync --index' to record downloads.")
		return nil
	}

	for _, r := range recs {
		fmt.Fprintf(deps.Stdout, "%s  %s/%s  %d bytes  %s\n",
			r.FetchedAt.Format(time.RFC3339), r.Brand, r.PlanID, r.Size, r.ContentHash)
	}

	return nil
}
