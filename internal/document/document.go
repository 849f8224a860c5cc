// Package document holds the records submitted to the registry and the
// envelope they travel in.
package document

// TypeIntroduceGoods is the registry document type for goods produced in the country.
const TypeIntroduceGoods = "LP_INTRODUCE_GOODS"

// FormatManual marks a document body that is sent as base64 encoded JSON.
const FormatManual = "MANUAL"

// Description identifies the participant filing the document.
type Description struct {
	ParticipantInn string `doc:"Participant INN" json:"participantInn" pattern:"^[0-9]{10}([0-9]{2})?$"`
}

// Document is a goods introduction document.
type Document struct {
	Description    *Description `doc:"Filing participant"                 json:"description,omitempty"`
	DocID          string       `doc:"Client-side document id"            json:"doc_id"            minLength:"1"`
	DocStatus      string       `doc:"Client-side document status"        json:"doc_status"        required:"false"`
	DocType        string       `doc:"Document type"                      json:"doc_type"          example:"LP_INTRODUCE_GOODS"`
	ImportRequest  bool         `doc:"Whether the goods are imported"     json:"importRequest"     required:"false"`
	OwnerInn       string       `doc:"Owner INN"                          json:"owner_inn"         pattern:"^[0-9]{10}([0-9]{2})?$"`
	ParticipantInn string       `doc:"Participant INN"                    json:"participant_inn"   pattern:"^[0-9]{10}([0-9]{2})?$"`
	ProducerInn    string       `doc:"Producer INN"                       json:"producer_inn"      pattern:"^[0-9]{10}([0-9]{2})?$"`
	ProductionDate string       `doc:"Production date"                    json:"production_date"   format:"date"`
	ProductionType string       `doc:"Production type"                    json:"production_type"   example:"OWN_PRODUCTION"`
	Products       []Product    `doc:"Products introduced"                json:"products"          minItems:"1"`
	RegDate        string       `doc:"Registration date"                  json:"reg_date"          format:"date"`
	RegNumber      string       `doc:"Registration number"                json:"reg_number,omitempty"`
}

// Product is a single marked item within a document.
type Product struct {
	CertificateDocument       string `json:"certificate_document,omitempty"`
	CertificateDocumentDate   string `json:"certificate_document_date,omitempty"   format:"date"`
	CertificateDocumentNumber string `json:"certificate_document_number,omitempty"`
	OwnerInn                  string `json:"owner_inn"                             pattern:"^[0-9]{10}([0-9]{2})?$"`
	ProducerInn               string `json:"producer_inn"                          pattern:"^[0-9]{10}([0-9]{2})?$"`
	ProductionDate            string `json:"production_date"                       format:"date"`
	TnvedCode                 string `doc:"Commodity nomenclature code" json:"tnved_code" pattern:"^[0-9]{4,10}$"`
	UitCode                   string `json:"uit_code,omitempty"`
	UituCode                  string `json:"uitu_code,omitempty"`
}
