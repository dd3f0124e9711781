package injection

import (
	"context"
	"fmt"

	"github.com/af-corp/nutrigate/internal/config"
	"github.com/af-corp/nutrigate/internal/filter"
)

// Detection records a matched injection pattern.
type Detection struct {
	RuleName string
	Severity float64
	Category string
	Start    int
	End      int
}

// Scanner scans caller text for prompt injection patterns.
type Scanner struct {
	rules []Rule
	cfg   func() config.InjectionFilterConfig
}

// NewScanner creates a prompt injection scanner.
func NewScanner(cfg func() config.InjectionFilterConfig) *Scanner {
	return &Scanner{rules: DefaultRules(), cfg: cfg}
}

func (s *Scanner) Name() string  { return "injection" }
func (s *Scanner) Enabled() bool { return s.cfg().Enabled }

// ScanText checks a single text string and returns all detections.
func (s *Scanner) ScanText(text string) []Detection {
	var detections []Detection
	for _, r := range s.rules {
		locs := r.Regex.FindAllStringIndex(text, -1)
		for _, loc := range locs {
			detections = append(detections, Detection{
				RuleName: r.Name,
				Severity: r.Severity,
				Category: r.Category,
				Start:    loc[0],
				End:      loc[1],
			})
		}
	}
	return detections
}

// Scan implements filter.Filter over all caller-controlled texts.
func (s *Scanner) Scan(_ context.Context, in *filter.ScanInput) filter.Result {
	var allDetections []Detection
	maxScore := 0.0
	for _, text := range in.Texts {
		detections := s.ScanText(text)
		allDetections = append(allDetections, detections...)
		for _, d := range detections {
			if d.Severity > maxScore {
				maxScore = d.Severity
			}
		}
	}

	cfg := s.cfg()
	if maxScore >= cfg.BlockThreshold {
		return filter.Result{
			Action:     filter.ActionBlock,
			FilterName: "injection",
			Message:    fmt.Sprintf("Request blocked: prompt injection detected (score %.2f)", maxScore),
			Detections: len(allDetections),
			Score:      maxScore,
		}
	}
	if maxScore >= cfg.FlagThreshold {
		return filter.Result{
			Action:     filter.ActionFlag,
			FilterName: "injection",
			Detections: len(allDetections),
			Score:      maxScore,
		}
	}
	return filter.Result{Action: filter.ActionPass, FilterName: "injection", Score: maxScore}
}
