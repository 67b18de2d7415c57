package analysis

// RiskLevel as reported by the scoring service
type RiskLevel string

const (
	RiskSafe       RiskLevel = "Safe"
	RiskSuspicious RiskLevel = "Suspicious"
	RiskHigh       RiskLevel = "High Risk"
	RiskUnknown    RiskLevel = "Unknown"
)

// Severity is the display severity used for badges and detail blocks
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Severity maps a risk level by exact match. Anything that is not Safe or
// Suspicious is danger, so an unrecognised level is never shown as safe.
func (r RiskLevel) Severity() Severity {
	switch r {
	case RiskSafe:
		return SeveritySuccess
	case RiskSuspicious:
		return SeverityWarning
	default:
		return SeverityDanger
	}
}

// Result is the assessment returned by the scoring service. Most fields are
// optional on the wire; zero values mean "not reported".
type Result struct {
	AnalysisID string `json:"analysis_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"` // ISO-8601, zone optional

	TrustScore *int      `json:"trust_score"`
	RiskLevel  RiskLevel `json:"risk_level"`

	Explanations    []string `json:"explanations"`
	RedFlags        []string `json:"red_flags"`
	Recommendations []string `json:"recommendations"`
	AIExplanation   string   `json:"ai_explanation,omitempty"`

	KeywordDetections KeywordDetections `json:"keyword_detections"`
	KeywordScore      int               `json:"keyword_score,omitempty"`

	UrgencyScore        int `json:"urgency_score"`
	GrammarIssues       int `json:"grammar_issues"`
	FinancialFlagsCount int `json:"financial_flags_count"`

	CompanyEmail          string `json:"company_email,omitempty"`
	CompanyWebsite        string `json:"company_website,omitempty"`
	EmailDomainSuspicious bool   `json:"email_domain_suspicious"`
	WebsiteExists         bool   `json:"website_exists"`
	CompanyMatch          bool   `json:"company_match"`
}

// HasEmail / HasWebsite report whether the company field was supplied
func (r *Result) HasEmail() bool   { return r.CompanyEmail != "" }
func (r *Result) HasWebsite() bool { return r.CompanyWebsite != "" }

// Clone returns a copy that shares no slices with r
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	if r.TrustScore != nil {
		v := *r.TrustScore
		c.TrustScore = &v
	}
	c.Explanations = append([]string(nil), r.Explanations...)
	c.RedFlags = append([]string(nil), r.RedFlags...)
	c.Recommendations = append([]string(nil), r.Recommendations...)
	c.KeywordDetections = r.KeywordDetections.clone()
	return &c
}
