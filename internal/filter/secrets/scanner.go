package secrets

import (
	"context"
	"fmt"

	"github.com/af-corp/nutrigate/internal/config"
	"github.com/af-corp/nutrigate/internal/filter"
)

// Detection represents a detected secret in text.
type Detection struct {
	PatternName string
	Start       int // byte offset
	End         int // byte offset
}

// Scanner scans caller text for secrets using pre-compiled regex patterns.
// Any detection blocks the request.
type Scanner struct {
	patterns []Pattern
	cfg      func() config.SecretsFilterConfig
}

func NewScanner(cfg func() config.SecretsFilterConfig) *Scanner {
	return &Scanner{patterns: DefaultPatterns(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "secrets" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// ScanText checks a single text string for secrets and returns all detections.
func (s *Scanner) ScanText(text string) []Detection {
	var detections []Detection
	for _, p := range s.patterns {
		locs := p.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				PatternName: p.Name,
				Start:       loc[0],
				End:         loc[1],
			})
		}
	}
	return detections
}

// Scan implements filter.Filter.
func (s *Scanner) Scan(_ context.Context, in *filter.ScanInput) filter.Result {
	var detections []Detection
	for _, text := range in.Texts {
		detections = append(detections, s.ScanText(text)...)
	}
	if len(detections) > 0 {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "secrets",
			Message:    fmt.Sprintf("Request blocked: %d credential-like value(s) detected in input", len(detections)),
			Detections: len(detections),
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: "secrets"}
}
