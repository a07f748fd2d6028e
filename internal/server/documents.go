package server

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"dealdesk/internal/journey"
	"dealdesk/internal/utils"
	"dealdesk/pkg/types"

	"github.com/alexedwards/flow"
)

// documentPayload is the wire form of a document: record fields plus the
// uploader identity and a presigned download URL.
type documentPayload struct {
	*types.Document
	Uploader types.Uploader `json:"uploader"`
	URL      string         `json:"url"`
}

func (s *Service) documentResponse(ctx context.Context, doc *types.Document) documentPayload {
	url, err := s.documents.DownloadURL(ctx, doc.StorageKey)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", doc.ID).Warn("failed to presign document url")
	}

	return documentPayload{Document: doc, Uploader: doc.Uploader(), URL: url}
}

func (s *Service) documentsResponse(ctx context.Context, docs []*types.Document) []documentPayload {
	out := make([]documentPayload, len(docs))
	for i, doc := range docs {
		out[i] = s.documentResponse(ctx, doc)
	}
	return out
}

// canonicalProviderDocument picks the authoritative broker/agent document
// when several match a type: broker uploads outrank agent uploads, first
// match wins, no merging.
func canonicalProviderDocument(docs []*types.Document) *types.Document {
	for _, doc := range docs {
		if doc.UploaderRole == types.RoleBroker {
			return doc
		}
	}
	for _, doc := range docs {
		if doc.UploaderRole == types.RoleAgent {
			return doc
		}
	}
	return nil
}

// categoryForRole derives the default document category from the uploader's
// role.
func categoryForRole(role types.Role) string {
	switch role {
	case types.RoleSeller:
		return types.DocCategorySellerUpload
	case types.RoleBuyer:
		return types.DocCategoryBuyerUpload
	default:
		return types.DocCategoryAgentProvided
	}
}

func (s *Service) handleGetListingDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	listingID := flow.Param(ctx, "listingID")
	if _, err := s.authorizeListing(ctx, role, userID, listingID); err != nil {
		s.respondError(w, err)
		return
	}

	var (
		docs []*types.Document
	)

	if rawStep := strings.TrimSpace(r.URL.Query().Get("stepId")); rawStep != "" {
		stepID, err := strconv.Atoi(rawStep)
		if err != nil {
			s.respondError(w, types.NewValidationError("stepId", "must be an integer"))
			return
		}
		docs, err = s.documentRepo.DocumentsByStep(ctx, listingID, stepID, strings.TrimSpace(r.URL.Query().Get("category")))
		if err != nil {
			s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to fetch documents by step")
			s.respondError(w, err)
			return
		}
	} else {
		docs, err = s.documentRepo.DocumentsByListing(ctx, listingID)
		if err != nil {
			s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to fetch documents")
			s.respondError(w, err)
			return
		}
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"documents": s.documentsResponse(ctx, docs)})
}

type uploadDocumentForm struct {
	DocumentType string `form:"documentType"`
	StepID       *int   `form:"stepId"`
	Category     string `form:"category"`
	BuyerID      string `form:"buyerId"`
}

func (s *Service) handlePostListingDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	listingID := flow.Param(ctx, "listingID")
	listing, err := s.authorizeListing(ctx, role, userID, listingID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := r.ParseMultipartForm(int64(s.config.UploadMemoryLimitMB) << 20); err != nil {
		s.respondError(w, types.NewValidationError("body", "malformed multipart form"))
		return
	}

	var input uploadDocumentForm
	if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
		s.logger.WithError(err).Error("failed to decode upload form")
		s.respondError(w, types.NewValidationError("body", "malformed form fields"))
		return
	}

	docType, err := types.ParseDocumentType(input.DocumentType)
	if err != nil {
		s.respondError(w, types.NewValidationError("documentType", "unknown type"))
		return
	}

	if input.StepID != nil && !journey.ValidStep(*input.StepID) {
		s.respondError(w, types.NewValidationError("stepId", "out of range"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, types.NewValidationError("file", "required"))
		return
	}
	defer file.Close()

	if header.Size == 0 {
		s.respondError(w, types.NewValidationError("file", "empty file"))
		return
	}

	uploader, err := s.userRepo.User(ctx, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load uploader")
		s.respondError(w, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = categoryForRole(role)
	}

	var buyerID *string
	if role == types.RoleBuyer {
		buyerID = utils.StringPtr(userID)
	} else if strings.TrimSpace(input.BuyerID) != "" {
		buyerID = utils.StringPtr(strings.TrimSpace(input.BuyerID))
	}

	doc := &types.Document{
		ID:            utils.NanoID(),
		ListingID:     listing.ID,
		SellerID:      listing.SellerID,
		BuyerID:       buyerID,
		UploaderID:    uploader.ID,
		UploaderName:  uploader.DisplayName(),
		UploaderRole:  role,
		DocumentType:  docType,
		StepID:        input.StepID,
		Category:      utils.StringPtr(category),
		FileName:      header.Filename,
		FileSizeBytes: header.Size,
		MimeType:      contentType,
		StorageKey:    fmt.Sprintf("listings/%s/%s%s", listing.ID, utils.NanoIDSize(21), path.Ext(header.Filename)),
		Status:        types.DocumentStatusPending,
		UploadedAt:    time.Now(),
	}

	if err := s.documents.Upload(ctx, doc.StorageKey, file, header.Size, contentType); err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to upload document to storage")
		s.respondError(w, err)
		return
	}

	if err := s.documentRepo.CreateDocument(ctx, doc); err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to create document record")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{"document": s.documentResponse(ctx, doc)})
}

type documentStatusRequest struct {
	Status string `json:"status"`
}

func (s *Service) handlePostDocumentStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	// Document review sits with the deal team.
	if !role.Provider() {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	listingID := flow.Param(ctx, "listingID")
	documentID := flow.Param(ctx, "documentID")

	if _, err := s.authorizeListing(ctx, role, userID, listingID); err != nil {
		s.respondError(w, err)
		return
	}

	var req documentStatusRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	status, err := types.ParseDocumentStatus(req.Status)
	if err != nil {
		s.respondError(w, types.NewValidationError("status", "unknown status"))
		return
	}

	doc, err := s.documentRepo.DocumentByListingIDAndID(ctx, listingID, documentID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.documentRepo.UpdateStatus(ctx, listingID, documentID, status); err != nil {
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to update document status")
		s.respondError(w, err)
		return
	}
	doc.Status = status

	s.respondJSON(w, http.StatusOK, map[string]any{"document": s.documentResponse(ctx, doc)})
}

// removeDocument deletes the registry row, then the stored object. The row
// goes first so a storage failure leaves a retriable orphaned object rather
// than a record pointing at nothing.
func removeDocument(ctx context.Context, deleteRow, deleteObject func(context.Context) error) (objectErr, rowErr error) {
	if err := deleteRow(ctx); err != nil {
		return nil, err
	}
	return deleteObject(ctx), nil
}

func (s *Service) handleDeleteListingDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	listingID := flow.Param(ctx, "listingID")
	documentID := flow.Param(ctx, "documentID")

	if _, err := s.authorizeListing(ctx, role, userID, listingID); err != nil {
		s.respondError(w, err)
		return
	}

	doc, err := s.documentRepo.DocumentByListingIDAndID(ctx, listingID, documentID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	// Step completion is untouched here; a step the user finished stays
	// finished even without its supporting document.
	objectErr, err := removeDocument(ctx,
		func(ctx context.Context) error {
			return s.documentRepo.DeleteDocument(ctx, listingID, documentID)
		},
		func(ctx context.Context) error {
			if strings.TrimSpace(doc.StorageKey) == "" {
				return nil
			}
			return s.documents.Delete(ctx, doc.StorageKey)
		},
	)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", documentID).Error("failed to delete document record")
		s.respondError(w, err)
		return
	}
	if objectErr != nil {
		s.logger.WithError(objectErr).
			WithField("document_id", doc.ID).
			WithField("storage_key", doc.StorageKey).
			Warn("document object orphaned after record delete")
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Service) handleGetProviderDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	listingID := flow.Param(ctx, "listingID")
	if _, err := s.authorizeListing(ctx, role, userID, listingID); err != nil {
		s.respondError(w, err)
		return
	}

	docType, err := types.ParseDocumentType(r.URL.Query().Get("type"))
	if err != nil {
		s.respondError(w, types.NewValidationError("type", "unknown type"))
		return
	}

	docs, err := s.documentRepo.ProviderDocuments(ctx, listingID, docType)
	if err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to fetch provider documents")
		s.respondError(w, err)
		return
	}

	payload := map[string]any{"documents": s.documentsResponse(ctx, docs)}
	if canonical := canonicalProviderDocument(docs); canonical != nil {
		payload["canonical"] = s.documentResponse(ctx, canonical)
	}

	s.respondJSON(w, http.StatusOK, payload)
}
