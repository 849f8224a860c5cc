package intake

import (
	"time"

	"github.com/serroba/registry-client/internal/document"
)

// SubmitDocumentRequest is the request body for submitting a document.
type SubmitDocumentRequest struct {
	Body struct {
		Document  document.Document `doc:"The goods introduction document"            json:"document"`
		Signature string            `doc:"Detached signature over the document JSON" json:"signature" minLength:"1"`
	}
}

// SubmitDocumentResponse is returned once a document is queued for delivery.
type SubmitDocumentResponse struct {
	Headers struct {
		Location string `doc:"The submission status location" header:"Location"`
	}
	Body struct {
		ID        string    `doc:"The submission id"           example:"V1StGXR8_Z5jdHi6B-myT" json:"id"`
		Status    string    `doc:"The submission status"       example:"pending"               json:"status"`
		CreatedAt time.Time `doc:"When the submission was made"                                 json:"createdAt"`
	}
}

// GetSubmissionRequest is the request for a submission status.
type GetSubmissionRequest struct {
	ID string `doc:"The submission id" example:"V1StGXR8_Z5jdHi6B-myT" path:"id"`
}

// GetSubmissionResponse describes the current state of a submission.
type GetSubmissionResponse struct {
	Body struct {
		ID         string    `doc:"The submission id"                      json:"id"`
		DocID      string    `doc:"The document id given by the submitter" json:"docId"`
		Status     string    `doc:"pending, accepted, rejected or failed"  enum:"pending,accepted,rejected,failed" json:"status"`
		RegistryID string    `doc:"Id assigned by the registry"            json:"registryId,omitempty"`
		Error      string    `doc:"Last delivery error"                    json:"error,omitempty"`
		CreatedAt  time.Time `json:"createdAt"`
		UpdatedAt  time.Time `json:"updatedAt"`
	}
}
