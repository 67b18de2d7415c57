package ai

import (
	"context"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
)

// Explainer writes a plain-language explanation of a job offer
type Explainer interface {
	Explain(ctx context.Context, offerText string, findings *analysis.Result) (string, error)
}
