package types

import (
	"fmt"
	"strings"
	"time"
)

type DocumentType string

const (
	DocTypeListingAgreement   DocumentType = "LISTING_AGREEMENT"
	DocTypeQuestionnaire      DocumentType = "QUESTIONNAIRE"
	DocTypePurchaseContract   DocumentType = "PURCHASE_CONTRACT"
	DocTypeDueDiligence       DocumentType = "DUE_DILIGENCE"
	DocTypeClosingDocs        DocumentType = "CLOSING_DOCS"
	DocTypeNDA                DocumentType = "NDA"
	DocTypeFinancialStatement DocumentType = "FINANCIAL_STATEMENT"
	DocTypeCBR                DocumentType = "CBR_CIM"
	DocTypeUploadedDoc        DocumentType = "UPLOADED_DOC"
	DocTypeAfterSale          DocumentType = "AFTER_SALE"
)

func ParseDocumentType(v string) (DocumentType, error) {
	switch DocumentType(strings.ToUpper(strings.TrimSpace(v))) {
	case DocTypeListingAgreement:
		return DocTypeListingAgreement, nil
	case DocTypeQuestionnaire:
		return DocTypeQuestionnaire, nil
	case DocTypePurchaseContract:
		return DocTypePurchaseContract, nil
	case DocTypeDueDiligence:
		return DocTypeDueDiligence, nil
	case DocTypeClosingDocs:
		return DocTypeClosingDocs, nil
	case DocTypeNDA:
		return DocTypeNDA, nil
	case DocTypeFinancialStatement:
		return DocTypeFinancialStatement, nil
	case DocTypeCBR:
		return DocTypeCBR, nil
	case DocTypeUploadedDoc:
		return DocTypeUploadedDoc, nil
	case DocTypeAfterSale:
		return DocTypeAfterSale, nil
	}
	return "", fmt.Errorf("unknown document type %q", v)
}

// Document category distinguishes who supplied the file.
const (
	DocCategorySellerUpload  = "SELLER_UPLOAD"
	DocCategoryBuyerUpload   = "BUYER_UPLOAD"
	DocCategoryAgentProvided = "AGENT_PROVIDED"
)

type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusCompleted DocumentStatus = "COMPLETED"
)

// ParseDocumentStatus normalizes a status value from a request.
func ParseDocumentStatus(v string) (DocumentStatus, error) {
	switch DocumentStatus(strings.ToUpper(strings.TrimSpace(v))) {
	case DocumentStatusPending:
		return DocumentStatusPending, nil
	case DocumentStatusCompleted:
		return DocumentStatusCompleted, nil
	}
	return "", fmt.Errorf("unknown document status %q", v)
}

type Document struct {
	ID            string         `db:"id" json:"id"`
	ListingID     string         `db:"listing_id" json:"listingId"`
	SellerID      string         `db:"seller_id" json:"sellerId"`
	BuyerID       *string        `db:"buyer_id" json:"buyerId,omitempty"`
	UploaderID    string         `db:"uploader_id" json:"-"`
	UploaderName  string         `db:"uploader_name" json:"-"`
	UploaderRole  Role           `db:"uploader_role" json:"-"`
	DocumentType  DocumentType   `db:"document_type" json:"type"`
	StepID        *int           `db:"step_id" json:"stepId,omitempty"`
	Category      *string        `db:"category" json:"category,omitempty"`
	FileName      string         `db:"file_name" json:"fileName"`
	FileSizeBytes int64          `db:"file_size_bytes" json:"fileSize"`
	MimeType      string         `db:"mime_type" json:"mimeType"`
	StorageKey    string         `db:"storage_key" json:"-"`
	Status        DocumentStatus `db:"status" json:"status"`
	UploadedAt    time.Time      `db:"uploaded_at" json:"uploadedAt"`
}

// Uploader identity as exposed on the wire.
type Uploader struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

func (d *Document) Uploader() Uploader {
	return Uploader{ID: d.UploaderID, Name: d.UploaderName, Role: d.UploaderRole}
}
