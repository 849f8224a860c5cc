// Package intake exposes the HTTP API that accepts signed documents and
// reports their delivery status.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/registry-client/internal/messaging"
	"github.com/serroba/registry-client/internal/submission"
	"go.uber.org/zap"
)

// IDGenerator produces unique submission ids.
type IDGenerator func() string

// DocumentHandler accepts documents and queues them for the worker.
type DocumentHandler struct {
	repo    submission.Repository
	publish messaging.Publish[submission.SubmittedEvent]
	newID   IDGenerator
	logger  *zap.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(
	repo submission.Repository,
	publish messaging.Publish[submission.SubmittedEvent],
	newID IDGenerator,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{
		repo:    repo,
		publish: publish,
		newID:   newID,
		logger:  logger,
	}
}

func (h *DocumentHandler) SubmitDocument(
	ctx context.Context,
	req *SubmitDocumentRequest,
) (*SubmitDocumentResponse, error) {
	now := time.Now().UTC()
	meta := RequestMetaFromContext(ctx)

	sub := &submission.Submission{
		ID:        submission.ID(h.newID()),
		DocID:     req.Body.Document.DocID,
		Status:    submission.StatusPending,
		ClientIP:  meta.ClientIP,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.Save(ctx, sub); err != nil {
		h.logger.Error("failed to save submission", zap.String("doc_id", sub.DocID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save submission")
	}

	event := &submission.SubmittedEvent{
		SubmissionID: sub.ID,
		Document:     req.Body.Document,
		Signature:    req.Body.Signature,
		SubmittedAt:  now,
	}

	if err := h.publish(ctx, event); err != nil {
		h.logger.Error("failed to queue submission",
			zap.String("submission_id", string(sub.ID)),
			zap.Error(err),
		)

		outcome := submission.Outcome{Status: submission.StatusFailed, Error: "queue unavailable: " + err.Error()}
		if updErr := h.repo.UpdateStatus(ctx, sub.ID, outcome); updErr != nil {
			h.logger.Error("failed to mark submission failed",
				zap.String("submission_id", string(sub.ID)),
				zap.Error(updErr),
			)
		}

		return nil, huma.Error500InternalServerError("failed to queue submission")
	}

	h.logger.Info("submission queued",
		zap.String("submission_id", string(sub.ID)),
		zap.String("doc_id", sub.DocID),
		zap.Int("products", len(req.Body.Document.Products)),
	)

	resp := &SubmitDocumentResponse{}
	resp.Headers.Location = "/documents/" + string(sub.ID)
	resp.Body.ID = string(sub.ID)
	resp.Body.Status = string(sub.Status)
	resp.Body.CreatedAt = sub.CreatedAt

	return resp, nil
}

func (h *DocumentHandler) GetSubmission(
	ctx context.Context,
	req *GetSubmissionRequest,
) (*GetSubmissionResponse, error) {
	sub, err := h.repo.GetByID(ctx, submission.ID(req.ID))
	if err != nil {
		if errors.Is(err, submission.ErrNotFound) {
			return nil, huma.Error404NotFound("submission not found")
		}

		h.logger.Error("failed to load submission", zap.String("submission_id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to load submission")
	}

	resp := &GetSubmissionResponse{}
	resp.Body.ID = string(sub.ID)
	resp.Body.DocID = sub.DocID
	resp.Body.Status = string(sub.Status)
	resp.Body.RegistryID = sub.RegistryID
	resp.Body.Error = sub.Error
	resp.Body.CreatedAt = sub.CreatedAt
	resp.Body.UpdatedAt = sub.UpdatedAt

	return resp, nil
}
