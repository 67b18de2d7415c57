package submission

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/bryanwahyu/offerguard/internal/application"
	"github.com/bryanwahyu/offerguard/internal/domain/ai"
	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	domain "github.com/bryanwahyu/offerguard/internal/domain/submission"
)

// Service drives submissions to the scoring service.
// Safe for concurrent use; at most one submission per Request.Key is pending.
type Service struct {
	Scorer   domain.Scorer
	Attempts attempts.Repository
	Clock    application.Clock

	// optional
	Archive   domain.Archive
	Explainer ai.Explainer

	mu       sync.Mutex
	inflight map[string]struct{}
}

// Request is one user-initiated submission
type Request struct {
	// Key identifies whose trigger this is (session token, client address).
	Key   string
	Token string
	Form  domain.FormValues
}

// Outcome of a successful submission
type Outcome struct {
	AttemptID   string
	Mode        domain.Mode
	TextIgnored bool
	ArchiveURL  string
	Result      *analysis.Result
}

type noopTrigger struct{}

func (noopTrigger) Pending() {}
func (noopTrigger) Idle()    {}

//
// ==== USE CASES ====
//

// Submit validates the form, sends it and returns the unwrapped result.
//
// Validation failures return before the trigger is touched. Once Pending
// has been called, Idle is always called before Submit returns.
func (s *Service) Submit(ctx context.Context, req Request, trigger domain.Trigger) (*Outcome, error) {
	in, err := domain.Resolve(req.Form)
	if err != nil {
		return nil, err
	}

	if !s.acquire(req.Key) {
		return nil, domain.ErrSubmissionInFlight
	}
	defer s.release(req.Key)

	if trigger == nil {
		trigger = noopTrigger{}
	}
	trigger.Pending()
	defer trigger.Idle()

	start := s.clock().Now()
	out := &Outcome{
		AttemptID:   uuid.New().String(),
		Mode:        in.Mode,
		TextIgnored: domain.TextIgnored(req.Form),
	}

	if in.IsFile() && s.Archive != nil {
		key := archiveKey(start, out.AttemptID, in.File.Filename)
		url, aerr := s.Archive.Archive(ctx, key, in.File.Filename, in.File.Content)
		if aerr != nil {
			log.Printf("submission attempt=%s archive_error=%q", out.AttemptID, aerr)
		} else {
			out.ArchiveURL = url
		}
	}

	result, err := s.Scorer.Analyze(ctx, in, req.Token)
	if err == nil {
		result = s.enrich(ctx, out.AttemptID, in, result)
		out.Result = result
	}

	s.record(ctx, start, attempts.OwnerOf(req.Token), in, out, err)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", out.AttemptID, err)
	}
	return out, nil
}

// Fetch re-loads a stored analysis; nothing is cached locally
func (s *Service) Fetch(ctx context.Context, analysisID, token string) (*analysis.Result, error) {
	if strings.TrimSpace(analysisID) == "" {
		return nil, fmt.Errorf("analysis id is required")
	}
	return s.Scorer.Fetch(ctx, analysisID, token)
}

// Latest returns the most recent attempt log entries made with token.
// Other sessions' attempts are never visible.
func (s *Service) Latest(ctx context.Context, token string, limit int) ([]*attempts.Attempt, error) {
	owner := attempts.OwnerOf(token)
	if owner == "" {
		return nil, attempts.ErrOwnerRequired
	}
	return s.attemptLog().Latest(ctx, owner, attempts.Limit(limit))
}

// Pending reports whether key has a submission in flight
func (s *Service) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[key]
	return ok
}

func (s *Service) acquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		s.inflight = make(map[string]struct{})
	}
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Service) release(key string) {
	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()
}

// enrich fills a missing AI explanation when an explainer is configured and
// the offer text is available. Failures leave the result as the service sent it.
func (s *Service) enrich(ctx context.Context, attemptID string, in domain.Input, r *analysis.Result) *analysis.Result {
	if s.Explainer == nil || strings.TrimSpace(r.AIExplanation) != "" {
		return r
	}
	text, ok := offerText(in)
	if !ok {
		return r
	}

	explanation, err := s.Explainer.Explain(ctx, text, r)
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			log.Printf("submission attempt=%s ai=quota_exceeded", attemptID)
		} else {
			log.Printf("submission attempt=%s ai_error=%q", attemptID, err)
		}
		return r
	}

	enriched := r.Clone()
	enriched.AIExplanation = strings.TrimSpace(explanation)
	return enriched
}

// offerText is the plain text behind the input, if we have it
func offerText(in domain.Input) (string, bool) {
	if !in.IsFile() {
		return in.Text, true
	}
	if strings.EqualFold(path.Ext(in.File.Filename), ".txt") && utf8.Valid(in.File.Content) {
		return string(in.File.Content), true
	}
	return "", false
}

// record writes the attempt log entry. The write outlives request
// cancellation so a dropped client still leaves a trace.
func (s *Service) record(ctx context.Context, start time.Time, owner string, in domain.Input, out *Outcome, err error) {
	a := &attempts.Attempt{
		ID:         attempts.AttemptID(out.AttemptID),
		Owner:      owner,
		Mode:       string(in.Mode),
		Filename:   in.Filename(),
		Status:     attempts.StatusSuccess,
		ArchiveURL: out.ArchiveURL,
		DurationMS: application.Elapsed(s.clock(), start),
		CreatedAt:  start,
	}
	if err != nil {
		a.Status = attempts.StatusFailed
		a.ErrorKind = domain.Kind(err)
		a.Message = domain.UserMessage(err)
	} else if out.Result != nil {
		a.TrustScore = out.Result.TrustScore
		a.RiskLevel = string(out.Result.RiskLevel)
		a.AnalysisID = out.Result.AnalysisID
	}

	log.Printf("submission attempt=%s mode=%s status=%s error_kind=%s duration_ms=%d text_ignored=%t",
		a.ID, a.Mode, a.Status, a.ErrorKind, a.DurationMS, out.TextIgnored)

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if serr := s.attemptLog().Save(saveCtx, a); serr != nil {
		log.Printf("submission attempt=%s record_error=%q", a.ID, serr)
	}
}

func (s *Service) clock() application.Clock {
	if s.Clock == nil {
		return application.SystemClock{}
	}
	return s.Clock
}

func (s *Service) attemptLog() attempts.Repository {
	if s.Attempts == nil {
		return attempts.Discard{}
	}
	return s.Attempts
}

// archiveKey → uploads/<yyyy>/<mm>/<attempt>/<filename>
func archiveKey(at time.Time, attemptID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "upload"
	}
	return fmt.Sprintf("uploads/%04d/%02d/%s/%s", at.Year(), int(at.Month()), attemptID, name)
}
