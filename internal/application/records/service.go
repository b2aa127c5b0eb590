package records

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/mediscribe/internal/application"
	"github.com/bryanwahyu/mediscribe/internal/domain/ai"
	domain "github.com/bryanwahyu/mediscribe/internal/domain/records"
	"github.com/bryanwahyu/mediscribe/internal/infra/ai/prompt"
)

const defaultProviderTimeout = 90 * time.Second

// Service implements use-cases untuk Record
// Service is designed to be used concurrently and is thread-safe
type Service struct {
	Repo     domain.Repository
	Contents domain.ContentStore
	Provider ai.Provider
	Clock    application.Clock

	// ProviderTimeout bounds a single provider call so a hung backend cannot
	// pin the request forever. Zero means defaultProviderTimeout.
	ProviderTimeout time.Duration
}

//
// ==== USE CASES ====
//

// UploadCommand untuk simpan record baru
type UploadCommand struct {
	OwnerID  string
	FileName string
	Body     io.Reader
}

// Upload stores the raw content and creates the record in status pending.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.Record, error) {
	key, size, err := s.Contents.Save(ctx, cmd.OwnerID, cmd.FileName, cmd.Body)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	rec := &domain.Record{
		ID:         domain.RecordID(uuid.New().String()),
		OwnerID:    cmd.OwnerID,
		FileName:   cmd.FileName,
		ContentKey: key,
		Status:     domain.StatusPending,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	log.Printf("record uploaded: id=%s owner=%s file=%s bytes=%d", rec.ID, rec.OwnerID, rec.FileName, size)
	return rec, nil
}

// Get ambil 1 record by id, dengan ownership guard
func (s *Service) Get(ctx context.Context, requesterID string, id domain.RecordID) (*domain.Record, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(rec, requesterID); err != nil {
		return nil, err
	}
	return rec, nil
}

// List ambil N record terakhir milik requester
func (s *Service) List(ctx context.Context, requesterID string, limit int) ([]*domain.Record, error) {
	return s.Repo.ListByOwner(ctx, requesterID, limit)
}

// Analyze runs the whole pipeline for one record: fetch → ownership guard →
// claim (pending → processing) → extract → provider call → commit summary.
// Exactly one store write happens on the success path beyond the claim;
// failures mark the record failed and surface ErrAnalysisFailed.
func (s *Service) Analyze(ctx context.Context, requesterID string, id domain.RecordID) (*domain.Record, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(rec, requesterID); err != nil {
		return nil, err
	}

	// Claim the record so concurrent calls fail fast instead of each paying
	// for a provider call and racing on the final write.
	if err := s.Repo.MarkProcessing(ctx, rec.ID); err != nil {
		return nil, err
	}
	rec.Status = domain.StatusProcessing

	summary, err := s.summarize(ctx, rec)
	if err != nil {
		// Mark failed on a background context: the request may already be
		// canceled, but operators still need to see the stuck record.
		bg, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if ferr := s.Repo.MarkFailed(bg, rec.ID); ferr != nil {
			log.Printf("mark failed error: id=%s err=%v", rec.ID, ferr)
		}
		log.Printf("analysis error: id=%s owner=%s err=%v", rec.ID, rec.OwnerID, err)
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, err)
	}

	// Empty provider output is valid, not an error. Same fallback on the
	// text and image paths.
	if summary == "" {
		summary = domain.NoSummaryFallback
	}

	analyzedAt := s.Clock.Now()
	if err := s.Repo.Complete(ctx, rec.ID, summary, analyzedAt); err != nil {
		// The provider call succeeded but the commit did not; the record is
		// left processing so the inconsistency is visible and retryable.
		return nil, err
	}

	rec.Summary = summary
	rec.Status = domain.StatusCompleted
	rec.AnalyzedAt = &analyzedAt
	return rec, nil
}

// summarize picks the extraction strategy by file name and calls the provider
// under a bounded context.
func (s *Service) summarize(ctx context.Context, rec *domain.Record) (string, error) {
	timeout := s.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	switch domain.Classify(rec.FileName) {
	case domain.KindImage:
		raw, err := s.Contents.ReadBytes(ctx, rec.ContentKey)
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
		mime, err := domain.ImageMIME(rec.FileName)
		if err != nil {
			return "", err
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return s.Provider.SummarizeImage(cctx, prompt.ImageInstruction, raw, mime)
	default:
		text, err := s.Contents.ReadText(ctx, rec.ContentKey)
		if err != nil {
			return "", fmt.Errorf("read content: %w", err)
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return s.Provider.SummarizeText(cctx, prompt.ForText(text))
	}
}
