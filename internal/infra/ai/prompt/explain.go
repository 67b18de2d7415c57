package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
)

// maxOfferChars caps how many bytes of the offer go into the prompt
const maxOfferChars = 8000

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

func GetSystemPrompt() string {
	return `You are a cybersecurity expert who helps job seekers spot recruitment scams.
Write plain text only: no markdown, no headings, no bullet characters.`
}

// GetUserPrompt asks for a 6-10 line explanation of the offer, given the
// scoring service's rule-based findings.
func GetUserPrompt(offerText string, r *analysis.Result) string {
	offerText = strings.TrimSpace(offerText)
	offerText = truncate(offerText, maxOfferChars)

	var b strings.Builder
	b.WriteString("Analyze the following job offer and explain clearly:\n")
	b.WriteString("- Why it may or may not be a scam\n")
	b.WriteString("- Mention scam patterns\n")
	b.WriteString("- Explain risks in simple terms\n")
	b.WriteString("- Give clear advice to the user\n\n")
	b.WriteString("Job Offer:\n")
	b.WriteString(offerText)
	b.WriteString("\n\nRule-based findings:\n")
	b.WriteString(findings(r))
	b.WriteString("\nWrite a detailed explanation (6-10 lines).")
	return b.String()
}

func findings(r *analysis.Result) string {
	if r == nil {
		return "none\n"
	}
	var b strings.Builder
	if r.TrustScore != nil {
		fmt.Fprintf(&b, "Trust score: %d/100\n", *r.TrustScore)
	}
	if r.RiskLevel != "" {
		fmt.Fprintf(&b, "Risk level: %s\n", r.RiskLevel)
	}
	for _, line := range r.RedFlags {
		fmt.Fprintf(&b, "Red flag: %s\n", line)
	}
	for _, line := range r.Explanations {
		fmt.Fprintf(&b, "Finding: %s\n", line)
	}
	for _, hit := range r.KeywordDetections {
		fmt.Fprintf(&b, "Keywords (%s): %s\n", hit.Category, strings.Join(hit.Keywords, ", "))
	}
	if r.UrgencyScore > 0 {
		fmt.Fprintf(&b, "Urgency indicators: %d\n", r.UrgencyScore)
	}
	if r.FinancialFlagsCount > 0 {
		fmt.Fprintf(&b, "Financial red flags: %d\n", r.FinancialFlagsCount)
	}
	if r.HasEmail() && r.EmailDomainSuspicious {
		b.WriteString("Recruiter uses a free email domain\n")
	}
	if b.Len() == 0 {
		return "none\n"
	}
	return b.String()
}
