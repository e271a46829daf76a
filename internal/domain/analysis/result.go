package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier status values the model is instructed to emit.
const (
	StatusUrgent    = "Urgent/High-Priority"
	StatusFuture    = "Future Opportunity"
	StatusNoSignals = "No relevant signals identified"
)

// TierReport is one extraction tier of the intelligence report.
type TierReport struct {
	Status     string   `json:"status"`
	Items      []string `json:"items"`
	HasSignals bool     `json:"hasSignals"`
}

// Insight is the synthesized pitch paragraph.
type Insight struct {
	Content    string `json:"content"`
	HasSignals bool   `json:"hasSignals"`
}

// Result is the structured intelligence report produced per analysis.
type Result struct {
	Tier1   TierReport `json:"tier1"`
	Tier2   TierReport `json:"tier2"`
	Insight Insight    `json:"insight"`
}

// rawResult mirrors Result with pointer fields so missing keys are
// distinguishable from zero values.
type rawResult struct {
	Tier1   *rawTier    `json:"tier1"`
	Tier2   *rawTier    `json:"tier2"`
	Insight *rawInsight `json:"insight"`
}

type rawTier struct {
	Status     *string   `json:"status"`
	Items      *[]string `json:"items"`
	HasSignals *bool     `json:"hasSignals"`
}

type rawInsight struct {
	Content    *string `json:"content"`
	HasSignals *bool   `json:"hasSignals"`
}

// ParseResult turns a raw model completion into a validated Result.
// The completion may arrive wrapped in markdown code fences; those are
// stripped before parsing. Error kinds are kept distinct: an empty
// completion, unparseable JSON, and parseable-but-wrong-shape JSON map to
// ErrEmptyResponse, ErrMalformedResponse and ErrSchemaViolation.
func ParseResult(completion string) (*Result, error) {
	trimmed := strings.TrimSpace(completion)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	trimmed = stripFences(trimmed)
	if trimmed == "" {
		return nil, ErrEmptyResponse
	}

	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedResponse)
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	t1, err := raw.Tier1.toTier("tier1")
	if err != nil {
		return nil, err
	}
	t2, err := raw.Tier2.toTier("tier2")
	if err != nil {
		return nil, err
	}
	ins, err := raw.Insight.toInsight()
	if err != nil {
		return nil, err
	}

	return &Result{Tier1: t1, Tier2: t2, Insight: ins}, nil
}

func (t *rawTier) toTier(name string) (TierReport, error) {
	if t == nil {
		return TierReport{}, fmt.Errorf("%w: missing %s", ErrSchemaViolation, name)
	}
	if t.Status == nil || t.Items == nil || t.HasSignals == nil {
		return TierReport{}, fmt.Errorf("%w: %s is incomplete", ErrSchemaViolation, name)
	}
	// The signal flag must agree with the items list, never be inferred from it.
	if *t.HasSignals != (len(*t.Items) > 0) {
		return TierReport{}, fmt.Errorf("%w: %s hasSignals contradicts items", ErrSchemaViolation, name)
	}
	return TierReport{Status: *t.Status, Items: *t.Items, HasSignals: *t.HasSignals}, nil
}

func (i *rawInsight) toInsight() (Insight, error) {
	if i == nil {
		return Insight{}, fmt.Errorf("%w: missing insight", ErrSchemaViolation)
	}
	if i.Content == nil || i.HasSignals == nil {
		return Insight{}, fmt.Errorf("%w: insight is incomplete", ErrSchemaViolation)
	}
	return Insight{Content: *i.Content, HasSignals: *i.HasSignals}, nil
}

// stripFences removes a leading ```lang line and a trailing ``` line when the
// completion was wrapped in a markdown code block.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// drop the language tag line (e.g. "json")
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
