// Package filter screens caller-supplied content before it is embedded into
// a prompt. Filters see the normalized input, never the rendered prompt, so
// the fixed instruction text cannot trip them.
package filter

import "context"

// Action represents the filter decision.
type Action string

const (
	ActionPass  Action = "pass"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// ScanInput is the normalized caller content handed to each filter.
type ScanInput struct {
	// Endpoint is "analyze-meal" or "recommendations".
	Endpoint string
	// Subject is the authenticated caller.
	Subject  string
	Lang     string
	HasImage bool
	// Texts holds every caller-controlled free-text value: the meal
	// description, or the string values found in a recommendations payload.
	Texts []string
	// PayloadFields lists the top-level keys of a recommendations payload.
	PayloadFields []string
}

// Result is returned by each filter.
type Result struct {
	Action     Action
	FilterName string
	Message    string
	Detections int
	Score      float64
}

// Filter is the interface all content filters implement.
type Filter interface {
	Name() string
	Enabled() bool
	Scan(ctx context.Context, in *ScanInput) Result
}

// Chain runs filters in order, stopping on the first Block.
type Chain struct {
	filters []Filter
}

func NewChain(filters ...Filter) *Chain {
	return &Chain{filters: filters}
}

// Run executes all enabled filters in order. Returns all results and a
// pointer to the first blocking result (nil if no filter blocked).
func (c *Chain) Run(ctx context.Context, in *ScanInput) ([]Result, *Result) {
	var results []Result
	for _, f := range c.filters {
		if !f.Enabled() {
			continue
		}
		r := f.Scan(ctx, in)
		results = append(results, r)
		if r.Action == ActionBlock {
			return results, &r
		}
	}
	return results, nil
}
