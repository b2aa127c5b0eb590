package records_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apprecords "github.com/bryanwahyu/mediscribe/internal/application/records"
	"github.com/bryanwahyu/mediscribe/internal/domain/ai"
	domain "github.com/bryanwahyu/mediscribe/internal/domain/records"
	"github.com/bryanwahyu/mediscribe/internal/infra/db/memory"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// stubContents serves record content from maps and counts reads.
type stubContents struct {
	mu    sync.Mutex
	texts map[string]string
	blobs map[string][]byte
	reads int32
	saves int
}

func newStubContents() *stubContents {
	return &stubContents{texts: make(map[string]string), blobs: make(map[string][]byte)}
}

func (s *stubContents) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	key := ownerID + "/" + fileName
	s.texts[key] = string(data)
	return key, int64(len(data)), nil
}

func (s *stubContents) ReadText(ctx context.Context, key string) (string, error) {
	atomic.AddInt32(&s.reads, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.texts[key]
	if !ok {
		return "", fmt.Errorf("no such object: %s", key)
	}
	return text, nil
}

func (s *stubContents) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt32(&s.reads, 1)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return b, nil
}

// stubProvider records calls and delegates to the configured funcs.
type stubProvider struct {
	textCalls  int32
	imageCalls int32
	textFn     func(ctx context.Context, prompt string) (string, error)
	imageFn    func(ctx context.Context, instruction string, image []byte, mime string) (string, error)
}

func (p *stubProvider) SummarizeText(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&p.textCalls, 1)
	if p.textFn == nil {
		return "", nil
	}
	return p.textFn(ctx, prompt)
}

func (p *stubProvider) SummarizeImage(ctx context.Context, instruction string, image []byte, mime string) (string, error) {
	atomic.AddInt32(&p.imageCalls, 1)
	if p.imageFn == nil {
		return "", nil
	}
	return p.imageFn(ctx, instruction, image, mime)
}

type fixture struct {
	svc      *apprecords.Service
	repo     *memory.RecordRepository
	contents *stubContents
	provider *stubProvider
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := memory.NewRecordRepository()
	contents := newStubContents()
	provider := &stubProvider{}
	return &fixture{
		svc: &apprecords.Service{
			Repo:            repo,
			Contents:        contents,
			Provider:        provider,
			Clock:           fixedClock{now},
			ProviderTimeout: 5 * time.Second,
		},
		repo:     repo,
		contents: contents,
		provider: provider,
		now:      now,
	}
}

func (f *fixture) seedRecord(t *testing.T, id, owner, fileName string) *domain.Record {
	t.Helper()
	rec := &domain.Record{
		ID:         domain.RecordID(id),
		OwnerID:    owner,
		FileName:   fileName,
		ContentKey: "content/" + id,
		Status:     domain.StatusPending,
		CreatedAt:  f.now,
	}
	require.NoError(t, f.repo.Create(context.Background(), rec))
	return rec
}

func TestAnalyzeTextSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "Hemoglobin 13.5 g/dL"

	var gotPrompt string
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) {
		gotPrompt = prompt
		return "Summary A", nil
	}

	rec, err := f.svc.Analyze(context.Background(), "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "Summary A", rec.Summary)
	require.NotNil(t, rec.AnalyzedAt)
	assert.Equal(t, f.now, *rec.AnalyzedAt)
	assert.Contains(t, gotPrompt, "Hemoglobin 13.5 g/dL")

	// persisted state matches the returned record
	stored, err := f.repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, "Summary A", stored.Summary)
}

func TestAnalyzeImageSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "scan.png")
	f.contents.blobs["content/r1"] = []byte{0x89, 'P', 'N', 'G'}

	f.provider.imageFn = func(ctx context.Context, instruction string, image []byte, mime string) (string, error) {
		assert.NotEmpty(t, instruction)
		assert.Equal(t, "image/png", mime)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, image)
		return "Image summary", nil
	}

	rec, err := f.svc.Analyze(context.Background(), "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, "Image summary", rec.Summary)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.provider.imageCalls))
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.provider.textCalls))
}

func TestAnalyzeNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Analyze(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// failed before any extraction or provider call
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.contents.reads))
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.provider.textCalls))
}

func TestAnalyzeUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"

	_, err := f.svc.Analyze(context.Background(), "u2", "r1")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	// no provider call, no state change
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.provider.textCalls))
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.contents.reads))
	stored, err := f.repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Empty(t, stored.Summary)
}

func TestAnalyzeProviderFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("backend exploded")
	}

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)

	stored, gerr := f.repo.Get(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Empty(t, stored.Summary)
}

func TestAnalyzeExtractionFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	// no content seeded: the read fails

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.EqualValues(t, 0, atomic.LoadInt32(&f.provider.textCalls))

	stored, gerr := f.repo.Get(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestAnalyzeEmptySummaryFallback(t *testing.T) {
	// Same fallback on both paths.
	t.Run("text", func(t *testing.T) {
		f := newFixture(t)
		f.seedRecord(t, "r1", "u1", "labs.txt")
		f.contents.texts["content/r1"] = "data"
		f.provider.textFn = func(ctx context.Context, prompt string) (string, error) { return "", nil }

		rec, err := f.svc.Analyze(context.Background(), "u1", "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.NoSummaryFallback, rec.Summary)
		assert.Equal(t, domain.StatusCompleted, rec.Status)
	})
	t.Run("image", func(t *testing.T) {
		f := newFixture(t)
		f.seedRecord(t, "r1", "u1", "scan.png")
		f.contents.blobs["content/r1"] = []byte{1, 2, 3}
		f.provider.imageFn = func(ctx context.Context, instruction string, image []byte, mime string) (string, error) {
			return "", nil
		}

		rec, err := f.svc.Analyze(context.Background(), "u1", "r1")
		require.NoError(t, err)
		assert.Equal(t, domain.NoSummaryFallback, rec.Summary)
	})
}

func TestAnalyzeQuotaErrorStaysVisible(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("%w: 429", ai.ErrQuotaExceeded)
	}

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestAnalyzeProviderTimeout(t *testing.T) {
	f := newFixture(t)
	f.svc.ProviderTimeout = 20 * time.Millisecond
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)

	stored, gerr := f.repo.Get(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestAnalyzeConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) {
		time.Sleep(30 * time.Millisecond) // hold the claim long enough for the losers to arrive
		return "only winner", nil
	}

	const n = 8
	var (
		wg        sync.WaitGroup
		completed int32
		conflicts int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Analyze(context.Background(), "u1", "r1")
			switch {
			case err == nil:
				atomic.AddInt32(&completed, 1)
			case errors.Is(err, domain.ErrAlreadyProcessing):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, completed)
	assert.EqualValues(t, n-1, conflicts)
	assert.EqualValues(t, 1, atomic.LoadInt32(&f.provider.textCalls), "exactly one provider call should be paid for")

	stored, err := f.repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, "only winner", stored.Summary)
}

// failingCompleteRepo fails the final commit while delegating everything else.
type failingCompleteRepo struct {
	*memory.RecordRepository
	completeErr error
}

func (r *failingCompleteRepo) Complete(ctx context.Context, id domain.RecordID, summary string, analyzedAt time.Time) error {
	return r.completeErr
}

func TestAnalyzeCommitFailureLeavesRecordProcessing(t *testing.T) {
	f := newFixture(t)
	commitErr := errors.New("connection reset during commit")
	f.svc.Repo = &failingCompleteRepo{RecordRepository: f.repo, completeErr: commitErr}

	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) { return "Summary A", nil }

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	require.Error(t, err)
	// the store error surfaces as-is, not normalized into the analysis error
	assert.ErrorIs(t, err, commitErr)
	assert.NotErrorIs(t, err, domain.ErrAnalysisFailed)

	// the record stays processing: visible as stuck, summary never persisted
	stored, gerr := f.repo.Get(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusProcessing, stored.Status)
	assert.Empty(t, stored.Summary)
}

func TestAnalyzeCompletedRecordDoesNotRegress(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")
	f.contents.texts["content/r1"] = "data"
	f.provider.textFn = func(ctx context.Context, prompt string) (string, error) { return "first", nil }

	_, err := f.svc.Analyze(context.Background(), "u1", "r1")
	require.NoError(t, err)

	_, err = f.svc.Analyze(context.Background(), "u1", "r1")
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessing)

	stored, gerr := f.repo.Get(context.Background(), "r1")
	require.NoError(t, gerr)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Equal(t, "first", stored.Summary)
}

func TestUploadCreatesPendingRecord(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Upload(context.Background(), apprecords.UploadCommand{
		OwnerID:  "u1",
		FileName: "labs.txt",
		Body:     strings.NewReader("Hemoglobin 13.5"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "u1", rec.OwnerID)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Empty(t, rec.Summary)
	assert.Equal(t, 1, f.contents.saves)

	stored, err := f.repo.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ContentKey, stored.ContentKey)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedRecord(t, "r1", "u1", "labs.txt")

	rec, err := f.svc.Get(context.Background(), "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("r1"), rec.ID)

	_, err = f.svc.Get(context.Background(), "u2", "r1")
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	_, err = f.svc.Get(context.Background(), "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
