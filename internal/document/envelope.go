package document

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEmptySignature is returned when a document is wrapped without a signature.
var ErrEmptySignature = errors.New("document: signature is required")

// Envelope is the request body of the registry's create document call.
type Envelope struct {
	DocumentFormat  string `json:"document_format"`
	ProductDocument string `json:"product_document"`
	ProductGroup    string `json:"product_group,omitempty"`
	Signature       string `json:"signature"`
	Type            string `json:"type"`
}

// NewEnvelope encodes doc and its detached signature for transport.
func NewEnvelope(doc *Document, signature, productGroup string) (*Envelope, error) {
	if signature == "" {
		return nil, ErrEmptySignature
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	docType := doc.DocType
	if docType == "" {
		docType = TypeIntroduceGoods
	}

	return &Envelope{
		DocumentFormat:  FormatManual,
		ProductDocument: base64.StdEncoding.EncodeToString(payload),
		ProductGroup:    productGroup,
		Signature:       base64.StdEncoding.EncodeToString([]byte(signature)),
		Type:            docType,
	}, nil
}

// Decode reverses the base64 body back into a document.
func (e *Envelope) Decode() (*Document, error) {
	payload, err := base64.StdEncoding.DecodeString(e.ProductDocument)
	if err != nil {
		return nil, fmt.Errorf("decode product document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode product document: %w", err)
	}

	return &doc, nil
}
