package submission

import (
	"context"

	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
)

// Scorer port (the remote scoring service)
type Scorer interface {
	Analyze(ctx context.Context, in Input, token string) (*analysis.Result, error)
	Fetch(ctx context.Context, analysisID, token string) (*analysis.Result, error)
}

// Trigger is the host's submit control. Pending is called once a request is
// about to go out, Idle on every way back.
type Trigger interface {
	Pending()
	Idle()
}

// Archive port (copy of uploaded documents)
type Archive interface {
	Archive(ctx context.Context, key, filename string, content []byte) (string, error)
}
