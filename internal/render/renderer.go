package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
)

const (
	FallbackExplanations    = "No common scam patterns detected."
	FallbackRedFlags        = "No red flags found."
	FallbackRecommendations = "This offer appears safe. Still verify the employer independently."
	FallbackKeywords        = "No suspicious keywords detected"
)

// Render composes the page for r. It reads r only; the same input always
// gives the same View.
func Render(r *analysis.Result) View {
	if r == nil {
		r = &analysis.Result{}
	}

	v := View{
		Score:      ScorePlaceholder,
		RiskLabel:  string(r.RiskLevel),
		Severity:   r.RiskLevel.Severity(),
		AnalysisID: r.AnalysisID,
		AnalyzedAt: formatTimestamp(r.CreatedAt),
	}
	if strings.TrimSpace(v.RiskLabel) == "" {
		v.RiskLabel = string(analysis.RiskUnknown)
	}
	if r.TrustScore != nil {
		v.Score = strconv.Itoa(*r.TrustScore)
		v.ScorePercent = clamp(*r.TrustScore, 0, 100)
	}

	v.Sections = append(v.Sections,
		listSection(SlotExplanations, "Key Findings", r.Explanations, FallbackExplanations),
		listSection(SlotRedFlags, "Red Flags", r.RedFlags, FallbackRedFlags),
		listSection(SlotRecommendations, "Recommendations", r.Recommendations, FallbackRecommendations),
	)

	if ai := strings.TrimSpace(r.AIExplanation); ai != "" {
		v.Sections = append(v.Sections, Section{
			Slot:  SlotAIExplanation,
			Title: "AI Explanation",
			Lines: []string{ai},
		})
	}

	v.Sections = append(v.Sections,
		keywordSection(r),
		Section{Slot: SlotUrgency, Title: "Urgency Score",
			Lines: []string{fmt.Sprintf("%d urgency indicator(s) detected", r.UrgencyScore)}},
		Section{Slot: SlotGrammar, Title: "Grammar Issues",
			Lines: []string{fmt.Sprintf("%d grammar issue(s) found", r.GrammarIssues)}},
		Section{Slot: SlotFinancial, Title: "Financial Red Flags",
			Lines: []string{fmt.Sprintf("%d financial red flag(s) detected", r.FinancialFlagsCount)}},
	)

	if r.HasEmail() {
		v.Sections = append(v.Sections, statusSection(SlotCompanyEmail, "Company Email", r.CompanyEmail, "",
			!r.EmailDomainSuspicious, "Professional email domain", "Free email domain detected"))
	}
	if r.HasWebsite() {
		v.Sections = append(v.Sections, statusSection(SlotCompanyWebsite, "Company Website", r.CompanyWebsite, r.CompanyWebsite,
			r.WebsiteExists, "Website verified", "Website could not be verified"))
	}
	if r.HasEmail() && r.HasWebsite() {
		v.Sections = append(v.Sections, statusSection(SlotDomainMatch, "Domain Match", "", "",
			r.CompanyMatch, "Email domain matches website", "Email domain does not match website"))
	}

	return v
}

func listSection(slot, title string, items []string, fallback string) Section {
	s := Section{Slot: slot, Title: title}
	if len(items) == 0 {
		s.Lines = []string{fallback}
		s.Fallback = true
		return s
	}
	s.Lines = append([]string(nil), items...)
	return s
}

func keywordSection(r *analysis.Result) Section {
	s := Section{
		Slot:    SlotKeywords,
		Title:   "Keyword Detections",
		Summary: fmt.Sprintf("%d suspicious keyword(s) found", r.KeywordScore),
	}
	if r.KeywordDetections.Len() == 0 {
		s.Lines = []string{FallbackKeywords}
		s.Fallback = true
		return s
	}
	for _, hit := range r.KeywordDetections {
		s.Lines = append(s.Lines, hit.Category+": "+strings.Join(hit.Keywords, ", "))
	}
	return s
}

// statusSection is a detail block coloured by a single good/bad flag
func statusSection(slot, title, value, link string, good bool, goodText, badText string) Section {
	s := Section{Slot: slot, Title: title, Link: link}
	if link == "" {
		s.Summary = value
	}
	if good {
		s.Severity = analysis.SeveritySuccess
		s.Lines = []string{goodText}
	} else {
		s.Severity = analysis.SeverityDanger
		s.Lines = []string{badText}
	}
	return s
}

// formatTimestamp accepts RFC 3339 and the zone-less ISO form the service
// emits. Unparseable values are shown as sent.
func formatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("2 Jan 2006 15:04 UTC")
		}
	}
	return raw
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
