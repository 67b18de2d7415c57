package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
)

func TestGetUserPrompt(t *testing.T) {
	score := 31
	p := GetUserPrompt("  Pay a $50 registration fee to start.  ", &analysis.Result{
		TrustScore: &score,
		RiskLevel:  analysis.RiskHigh,
		RedFlags:   []string{"Upfront payment requested"},
		KeywordDetections: analysis.KeywordDetections{
			{Category: "payment", Keywords: []string{"fee", "registration"}},
		},
		CompanyEmail:          "jobs@gmail.com",
		EmailDomainSuspicious: true,
	})

	assert.Contains(t, p, "Job Offer:\nPay a $50 registration fee to start.\n")
	assert.Contains(t, p, "Trust score: 31/100")
	assert.Contains(t, p, "Risk level: High Risk")
	assert.Contains(t, p, "Red flag: Upfront payment requested")
	assert.Contains(t, p, "Keywords (payment): fee, registration")
	assert.Contains(t, p, "free email domain")
	assert.True(t, strings.HasSuffix(p, "(6-10 lines)."))
}

func TestGetUserPrompt_NoFindingsAndTruncation(t *testing.T) {
	p := GetUserPrompt(strings.Repeat("a", maxOfferChars+10), &analysis.Result{})
	assert.Contains(t, p, "Rule-based findings:\nnone\n")
	assert.Contains(t, p, strings.Repeat("a", maxOfferChars)+"...")
	assert.NotContains(t, p, strings.Repeat("a", maxOfferChars+1))
}

func TestGetUserPrompt_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" starts at byte 7999 and ends past the cap
	offer := strings.Repeat("a", maxOfferChars-1) + "éé"
	p := GetUserPrompt(offer, &analysis.Result{})
	assert.True(t, utf8.ValidString(p))
	assert.Contains(t, p, strings.Repeat("a", maxOfferChars-1)+"...")
	assert.NotContains(t, p, "é")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab...", truncate("ab€", 4))
	assert.Equal(t, "ab€...", truncate("ab€€", 5))
	assert.Equal(t, "...", truncate("日本", 2))
}
