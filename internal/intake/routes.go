package intake

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the document submission routes.
func RegisterRoutes(api huma.API, h *DocumentHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "submit-document",
		Method:        http.MethodPost,
		Path:          "/documents",
		Summary:       "Submit document",
		Description:   "Queues a signed goods introduction document for delivery to the registry.",
		Tags:          []string{"Documents"},
		DefaultStatus: http.StatusAccepted,
	}, h.SubmitDocument)

	huma.Register(api, huma.Operation{
		OperationID: "get-submission",
		Method:      http.MethodGet,
		Path:        "/documents/{id}",
		Summary:     "Get submission status",
		Tags:        []string{"Documents"},
	}, h.GetSubmission)
}
