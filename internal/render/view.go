package render

import "github.com/bryanwahyu/offerguard/internal/domain/analysis"

// Slot names, in render order
const (
	SlotExplanations    = "explanations"
	SlotRedFlags        = "red_flags"
	SlotRecommendations = "recommendations"
	SlotAIExplanation   = "ai_explanation"
	SlotKeywords        = "keywords"
	SlotUrgency         = "urgency"
	SlotGrammar         = "grammar"
	SlotFinancial       = "financial"
	SlotCompanyEmail    = "company_email"
	SlotCompanyWebsite  = "company_website"
	SlotDomainMatch     = "domain_match"
)

// ScorePlaceholder stands in for a missing trust score
const ScorePlaceholder = "--"

// View is the composed result page. It is plain data; hosts decide how to
// draw it.
type View struct {
	Score        string
	ScorePercent int
	RiskLabel    string
	Severity     analysis.Severity
	AnalysisID   string
	AnalyzedAt   string
	Sections     []Section
}

// Section is one named block of the page
type Section struct {
	Slot     string
	Title    string
	Summary  string
	Lines    []string
	Link     string
	Severity analysis.Severity // empty when the block has no status colour
	Fallback bool              // Lines hold the canned "nothing found" text
}

// Section returns the block for slot, if it was rendered
func (v View) Section(slot string) (Section, bool) {
	for _, s := range v.Sections {
		if s.Slot == slot {
			return s, true
		}
	}
	return Section{}, false
}

// Has reports whether slot was rendered
func (v View) Has(slot string) bool {
	_, ok := v.Section(slot)
	return ok
}

// Slots lists rendered slot names in order
func (v View) Slots() []string {
	out := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		out = append(out, s.Slot)
	}
	return out
}
