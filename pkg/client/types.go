package client

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

// AnalysisResult is the structured report returned per successful analysis.
type AnalysisResult struct {
	Tier1   TierReport `json:"tier1"`
	Tier2   TierReport `json:"tier2"`
	Insight Insight    `json:"insight"`
}

// Health is the outcome of the diagnostic probe.
type Health struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
