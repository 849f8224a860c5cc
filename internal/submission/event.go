package submission

import (
	"time"

	"github.com/serroba/registry-client/internal/document"
)

const TopicDocumentSubmitted = "document.submitted"

// SubmittedEvent asks the worker to deliver a document to the registry.
type SubmittedEvent struct {
	SubmissionID ID                `json:"submissionId"`
	Document     document.Document `json:"document"`
	Signature    string            `json:"signature"`
	SubmittedAt  time.Time         `json:"submittedAt"`
}
