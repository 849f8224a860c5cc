package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/registry-client/internal/document"
	"github.com/serroba/registry-client/internal/ratelimit"
	"github.com/serroba/registry-client/internal/registry"
	"go.uber.org/zap"
)

// DocumentCreator files a document with the registry.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, doc *document.Document, signature string) (*registry.Result, error)
}

// Processor delivers submitted documents and records the outcome.
type Processor struct {
	creator DocumentCreator
	repo    Repository
	logger  *zap.Logger
}

// NewProcessor creates a new submission processor.
func NewProcessor(creator DocumentCreator, repo Repository, logger *zap.Logger) *Processor {
	return &Processor{
		creator: creator,
		repo:    repo,
		logger:  logger,
	}
}

// Handle delivers one submitted document. A nil return means the event is
// settled, either accepted or permanently rejected. A non-nil return asks for
// redelivery.
func (p *Processor) Handle(ctx context.Context, event *SubmittedEvent) error {
	result, err := p.creator.CreateDocument(ctx, &event.Document, event.Signature)

	switch {
	case err == nil:
		return p.record(ctx, event, Outcome{Status: StatusAccepted, RegistryID: result.DocumentID})

	case interrupted(ctx, err):
		p.logger.Info("delivery interrupted",
			zap.String("submission_id", string(event.SubmissionID)),
			zap.Error(err),
		)

		return err

	case registry.IsPermanent(err):
		return p.record(ctx, event, Outcome{Status: StatusRejected, Error: err.Error()})

	default:
		if recErr := p.record(ctx, event, Outcome{Status: StatusFailed, Error: err.Error()}); recErr != nil {
			return errors.Join(err, recErr)
		}

		return fmt.Errorf("deliver %s: %w", event.SubmissionID, err)
	}
}

// interrupted reports whether err was caused by ctx ending, either while
// waiting for a permit or while the registry call was in flight.
func interrupted(ctx context.Context, err error) bool {
	if errors.Is(err, ratelimit.ErrCancelled) {
		return true
	}

	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// record stores outcome even if ctx ended after the registry answered.
func (p *Processor) record(ctx context.Context, event *SubmittedEvent, outcome Outcome) error {
	ctx = context.WithoutCancel(ctx)

	if err := p.repo.UpdateStatus(ctx, event.SubmissionID, outcome); err != nil {
		p.logger.Error("failed to record submission outcome",
			zap.String("submission_id", string(event.SubmissionID)),
			zap.String("status", string(outcome.Status)),
			zap.Error(err),
		)

		return err
	}

	p.logger.Info("submission outcome recorded",
		zap.String("submission_id", string(event.SubmissionID)),
		zap.String("doc_id", event.Document.DocID),
		zap.String("status", string(outcome.Status)),
		zap.String("registry_id", outcome.RegistryID),
	)

	return nil
}
