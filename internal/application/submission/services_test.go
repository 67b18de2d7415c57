package submission

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/offerguard/internal/domain/ai"
	"github.com/bryanwahyu/offerguard/internal/domain/analysis"
	"github.com/bryanwahyu/offerguard/internal/domain/attempts"
	domain "github.com/bryanwahyu/offerguard/internal/domain/submission"
)

type fakeScorer struct {
	mu     sync.Mutex
	calls  []domain.Input
	tokens []string
	result *analysis.Result
	err    error
	block  chan struct{} // when set, Analyze waits on it
	panic  bool
}

func (f *fakeScorer) Analyze(ctx context.Context, in domain.Input, token string) (*analysis.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if f.panic {
		panic("scorer exploded")
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func (f *fakeScorer) Fetch(ctx context.Context, id, token string) (*analysis.Result, error) {
	return f.result, f.err
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingTrigger struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTrigger) Pending() { r.add("pending") }
func (r *recordingTrigger) Idle()    { r.add("idle") }
func (r *recordingTrigger) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}
func (r *recordingTrigger) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type memAttempts struct {
	mu    sync.Mutex
	saved []*attempts.Attempt
	err   error
}

func (m *memAttempts) Save(ctx context.Context, a *attempts.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, a)
	return m.err
}

func (m *memAttempts) Latest(ctx context.Context, owner string, limit int) ([]*attempts.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*attempts.Attempt{}
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		if m.saved[i].Owner == owner {
			out = append(out, m.saved[i])
		}
	}
	return out, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeArchive struct {
	key, filename string
	err           error
}

func (f *fakeArchive) Archive(ctx context.Context, key, filename string, content []byte) (string, error) {
	f.key, f.filename = key, filename
	if f.err != nil {
		return "", f.err
	}
	return "http://minio.local/offers/" + key, nil
}

type fakeExplainer struct {
	text string
	err  error
	seen string
}

func (f *fakeExplainer) Explain(ctx context.Context, offer string, r *analysis.Result) (string, error) {
	f.seen = offer
	return f.text, f.err
}

func intp(v int) *int { return &v }

func newService(scorer *fakeScorer) (*Service, *memAttempts) {
	repo := &memAttempts{}
	return &Service{
		Scorer:   scorer,
		Attempts: repo,
		Clock:    fixedClock{t: time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)},
	}, repo
}

func TestSubmit_TextSuccess(t *testing.T) {
	scorer := &fakeScorer{result: &analysis.Result{TrustScore: intp(82), RiskLevel: analysis.RiskSafe, AnalysisID: "a1"}}
	svc, repo := newService(scorer)
	trig := &recordingTrigger{}

	out, err := svc.Submit(context.Background(), Request{
		Key:   "tok",
		Token: "tok",
		Form:  domain.FormValues{Text: "Junior developer, on-site interview", CompanyEmail: "hr@acme.io"},
	}, trig)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeText, out.Mode)
	assert.Equal(t, 82, *out.Result.TrustScore)
	assert.NotEmpty(t, out.AttemptID)
	assert.Equal(t, []string{"pending", "idle"}, trig.Events())
	assert.Equal(t, []string{"tok"}, scorer.tokens)
	assert.Equal(t, "hr@acme.io", scorer.calls[0].Company.Email)
	assert.False(t, svc.Pending("tok"))

	require.Len(t, repo.saved, 1)
	a := repo.saved[0]
	assert.Equal(t, attempts.StatusSuccess, a.Status)
	assert.Equal(t, "text", a.Mode)
	assert.Equal(t, "Safe", a.RiskLevel)
	assert.Equal(t, "a1", a.AnalysisID)
	assert.Equal(t, 82, *a.TrustScore)
}

func TestSubmit_NoInputNeverCallsScorer(t *testing.T) {
	scorer := &fakeScorer{}
	svc, repo := newService(scorer)
	trig := &recordingTrigger{}

	_, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "  "}}, trig)

	assert.ErrorIs(t, err, domain.ErrNoInputProvided)
	assert.Equal(t, 0, scorer.callCount())
	assert.Empty(t, trig.Events())
	assert.Empty(t, repo.saved)
}

func TestSubmit_ServiceErrorRestoresTrigger(t *testing.T) {
	scorer := &fakeScorer{err: &domain.ServiceError{StatusCode: 401, Message: "Invalid token"}}
	svc, repo := newService(scorer)
	trig := &recordingTrigger{}

	_, err := svc.Submit(context.Background(), Request{Key: "k", Token: "expired", Form: domain.FormValues{Text: "offer"}}, trig)

	var svcErr *domain.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Invalid token", svcErr.Message)
	assert.Equal(t, "Invalid token", domain.UserMessage(err))
	assert.Equal(t, []string{"pending", "idle"}, trig.Events())
	assert.False(t, svc.Pending("k"))

	require.Len(t, repo.saved, 1)
	assert.Equal(t, attempts.StatusFailed, repo.saved[0].Status)
	assert.Equal(t, "service", repo.saved[0].ErrorKind)
	assert.Equal(t, "Invalid token", repo.saved[0].Message)
}

func TestSubmit_NetworkAndMalformedRestoreTrigger(t *testing.T) {
	for _, scorerErr := range []error{
		&domain.NetworkError{Err: errors.New("connection reset")},
		&domain.MalformedResponseError{ContentType: "text/html"},
	} {
		svc, _ := newService(&fakeScorer{err: scorerErr})
		trig := &recordingTrigger{}

		_, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "offer"}}, trig)

		assert.Equal(t, domain.Kind(scorerErr), domain.Kind(err))
		assert.Equal(t, []string{"pending", "idle"}, trig.Events())
	}
}

func TestSubmit_PanicStillRestoresTrigger(t *testing.T) {
	svc, _ := newService(&fakeScorer{panic: true})
	trig := &recordingTrigger{}

	assert.Panics(t, func() {
		_, _ = svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "offer"}}, trig)
	})
	assert.Equal(t, []string{"pending", "idle"}, trig.Events())
	assert.False(t, svc.Pending("k"))
}

func TestSubmit_SecondSubmissionWhilePendingIsRejected(t *testing.T) {
	scorer := &fakeScorer{result: &analysis.Result{}, block: make(chan struct{})}
	svc, _ := newService(scorer)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), Request{Key: "same", Form: domain.FormValues{Text: "first"}}, nil)
		done <- err
	}()

	require.Eventually(t, func() bool { return svc.Pending("same") }, time.Second, 5*time.Millisecond)

	trig := &recordingTrigger{}
	_, err := svc.Submit(context.Background(), Request{Key: "same", Form: domain.FormValues{Text: "second"}}, trig)
	assert.ErrorIs(t, err, domain.ErrSubmissionInFlight)
	assert.Empty(t, trig.Events(), "rejected submission must not touch the trigger")

	// a different key is independent
	other := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), Request{Key: "other", Form: domain.FormValues{Text: "x"}}, nil)
		other <- err
	}()
	require.Eventually(t, func() bool { return svc.Pending("other") }, time.Second, 5*time.Millisecond)

	close(scorer.block)
	require.NoError(t, <-done)
	require.NoError(t, <-other)
	assert.Equal(t, 2, scorer.callCount())
	assert.False(t, svc.Pending("same"))
}

func TestSubmit_FileArchivedAndWins(t *testing.T) {
	scorer := &fakeScorer{result: &analysis.Result{}}
	svc, repo := newService(scorer)
	arch := &fakeArchive{}
	svc.Archive = arch

	out, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{
		Text: "ignored text",
		File: &domain.Upload{Filename: "../offer.pdf", Content: []byte("%PDF")},
	}}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.ModeFile, out.Mode)
	assert.True(t, out.TextIgnored)
	assert.Equal(t, domain.ModeFile, scorer.calls[0].Mode)
	assert.Equal(t, "uploads/2025/03/"+out.AttemptID+"/offer.pdf", arch.key)
	assert.Equal(t, "http://minio.local/offers/"+arch.key, out.ArchiveURL)
	assert.Equal(t, "../offer.pdf", repo.saved[0].Filename)
	assert.Equal(t, out.ArchiveURL, repo.saved[0].ArchiveURL)
}

func TestSubmit_ArchiveFailureIsNotFatal(t *testing.T) {
	svc, _ := newService(&fakeScorer{result: &analysis.Result{}})
	svc.Archive = &fakeArchive{err: errors.New("bucket gone")}

	out, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{
		File: &domain.Upload{Filename: "offer.docx", Content: []byte("PK")},
	}}, nil)
	require.NoError(t, err)
	assert.Empty(t, out.ArchiveURL)
}

func TestSubmit_RecordFailureIsNotFatal(t *testing.T) {
	svc, repo := newService(&fakeScorer{result: &analysis.Result{}})
	repo.err = errors.New("db down")

	_, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "x"}}, nil)
	assert.NoError(t, err)
}

func TestSubmit_ExplainerFillsMissingExplanation(t *testing.T) {
	original := &analysis.Result{RiskLevel: analysis.RiskSuspicious}
	svc, _ := newService(&fakeScorer{result: original})
	exp := &fakeExplainer{text: "  The offer asks for a deposit.  "}
	svc.Explainer = exp

	out, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "send a deposit"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "The offer asks for a deposit.", out.Result.AIExplanation)
	assert.Equal(t, "send a deposit", exp.seen)
	assert.Empty(t, original.AIExplanation, "service result must not be modified")
}

func TestSubmit_ExplainerSkipped(t *testing.T) {
	cases := []struct {
		name   string
		result *analysis.Result
		form   domain.FormValues
	}{
		{"already explained", &analysis.Result{AIExplanation: "from service"}, domain.FormValues{Text: "x"}},
		{"binary upload", &analysis.Result{}, domain.FormValues{File: &domain.Upload{Filename: "a.pdf", Content: []byte("%PDF")}}},
	}
	for _, c := range cases {
		svc, _ := newService(&fakeScorer{result: c.result})
		exp := &fakeExplainer{text: "should not appear"}
		svc.Explainer = exp

		out, err := svc.Submit(context.Background(), Request{Key: "k", Form: c.form}, nil)
		require.NoError(t, err, c.name)
		assert.NotEqual(t, "should not appear", out.Result.AIExplanation, c.name)
		assert.Empty(t, exp.seen, c.name)
	}
}

func TestSubmit_ExplainerForTxtUpload(t *testing.T) {
	svc, _ := newService(&fakeScorer{result: &analysis.Result{}})
	exp := &fakeExplainer{text: "explained"}
	svc.Explainer = exp

	out, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{
		File: &domain.Upload{Filename: "OFFER.TXT", Content: []byte("easy money")},
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "explained", out.Result.AIExplanation)
	assert.Equal(t, "easy money", exp.seen)
}

func TestSubmit_ExplainerErrorLeavesResult(t *testing.T) {
	svc, _ := newService(&fakeScorer{result: &analysis.Result{}})
	svc.Explainer = &fakeExplainer{err: ai.ErrQuotaExceeded}

	out, err := svc.Submit(context.Background(), Request{Key: "k", Form: domain.FormValues{Text: "x"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, out.Result.AIExplanation)
}

func TestFetch(t *testing.T) {
	svc, _ := newService(&fakeScorer{result: &analysis.Result{AnalysisID: "abc"}})

	_, err := svc.Fetch(context.Background(), " ", "t")
	assert.Error(t, err)

	r, err := svc.Fetch(context.Background(), "abc", "t")
	require.NoError(t, err)
	assert.Equal(t, "abc", r.AnalysisID)
}

func TestLatest_DefaultsToDiscard(t *testing.T) {
	svc := &Service{Scorer: &fakeScorer{}}
	list, err := svc.Latest(context.Background(), "tok", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLatest_ScopedToToken(t *testing.T) {
	svc, repo := newService(&fakeScorer{result: &analysis.Result{}})
	ctx := context.Background()

	_, err := svc.Submit(ctx, Request{Key: "a", Token: "alice-token", Form: domain.FormValues{
		File: &domain.Upload{Filename: "alice-salary-offer.pdf", Content: []byte("%PDF")},
	}}, nil)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, Request{Key: "b", Token: "bob-token", Form: domain.FormValues{Text: "bob"}}, nil)
	require.NoError(t, err)

	require.Len(t, repo.saved, 2)
	assert.Equal(t, attempts.OwnerOf("alice-token"), repo.saved[0].Owner)
	assert.NotContains(t, repo.saved[0].Owner, "alice-token")

	list, err := svc.Latest(ctx, "alice-token", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice-salary-offer.pdf", list[0].Filename)

	list, err = svc.Latest(ctx, "bob-token", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "text", list[0].Mode)

	_, err = svc.Latest(ctx, "", 10)
	assert.ErrorIs(t, err, attempts.ErrOwnerRequired)
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "uploads/2024/11/id/offer.pdf", archiveKey(at, "id", "offer.pdf"))
	assert.Equal(t, "uploads/2024/11/id/offer.pdf", archiveKey(at, "id", `C:\Users\me\offer.pdf`))
	assert.Equal(t, "uploads/2024/11/id/upload", archiveKey(at, "id", ""))
}
