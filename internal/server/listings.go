package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"dealdesk/internal/utils"
	"dealdesk/pkg/types"

	"github.com/alexedwards/flow"
)

// authorizeListing loads a listing and verifies the caller may act on it:
// ownership for sellers, assignment for brokers/agents, association for
// buyers.
func (s *Service) authorizeListing(ctx context.Context, role types.Role, userID, listingID string) (*types.Listing, error) {
	listing, err := s.listingRepo.Listing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if role == types.RoleBuyer {
		associated, err := s.listingRepo.BuyerAssociated(ctx, listingID, userID)
		if err != nil {
			return nil, err
		}
		if !associated {
			return nil, types.ErrNotAuthorized
		}
		return listing, nil
	}

	if !listing.AccessibleTo(role, userID) {
		return nil, types.ErrNotAuthorized
	}

	return listing, nil
}

func (s *Service) handleGetListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	listings, err := s.listingRepo.ListingsForUser(ctx, role, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch listings")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"listings": listings})
}

type createListingRequest struct {
	Title            string  `json:"title"`
	Description      *string `json:"description"`
	AskingPriceCents int64   `json:"askingPriceCents"`
}

func (s *Service) handlePostListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	// Only sellers open new listings.
	if role != types.RoleSeller {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	var req createListingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, types.NewValidationError("title", "required"))
		return
	}

	listing := &types.Listing{
		SellerID:         userID,
		Title:            strings.TrimSpace(req.Title),
		Description:      req.Description,
		AskingPriceCents: req.AskingPriceCents,
		Status:           types.ListingStatusActive,
	}

	if err := s.listingRepo.CreateListing(ctx, listing); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to create listing")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{"listing": listing})
}

type assignBuyerRequest struct {
	BuyerID string `json:"buyerId"`
}

func (s *Service) handlePostAssignBuyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	// Buyer introductions come from the deal team, not from other parties.
	if !role.Provider() {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	listingID := flow.Param(ctx, "listingID")
	if _, err := s.authorizeListing(ctx, role, userID, listingID); err != nil {
		s.respondError(w, err)
		return
	}

	var req assignBuyerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.BuyerID) == "" {
		s.respondError(w, types.NewValidationError("buyerId", "required"))
		return
	}

	buyer, err := s.userRepo.User(ctx, req.BuyerID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if buyer.Role != types.RoleBuyer {
		s.respondError(w, types.NewValidationError("buyerId", "user is not a buyer"))
		return
	}

	if err := s.listingRepo.AssignBuyer(ctx, listingID, buyer.ID); err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to assign buyer")
		s.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type buyerPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func buyersPayload(buyers []*types.User) []buyerPayload {
	out := make([]buyerPayload, len(buyers))
	for i, b := range buyers {
		out[i] = buyerPayload{ID: b.ID, Name: b.DisplayName()}
		if b.Email != nil {
			out[i].Email = *b.Email
		}
	}
	return out
}

func (s *Service) handleGetListingBuyers(w http.ResponseWriter, r *http.Request) {
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

	buyers, err := s.listingRepo.BuyersByListing(ctx, listingID)
	if err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to fetch listing buyers")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"buyers": buyersPayload(buyers)})
}

type listingStatusRequest struct {
	Status string `json:"status"`
}

func (s *Service) handlePostListingStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	// Deal status moves with the deal team.
	if !role.Provider() {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	listingID := flow.Param(ctx, "listingID")
	listing, err := s.authorizeListing(ctx, role, userID, listingID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req listingStatusRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	status, err := types.ParseListingStatus(req.Status)
	if err != nil {
		s.respondError(w, types.NewValidationError("status", "unknown status"))
		return
	}
	if !listing.Status.CanTransition(status) {
		s.respondError(w, types.NewValidationError("status", "invalid transition"))
		return
	}

	listing.Status = status
	if err := s.listingRepo.UpdateListing(ctx, listingID, listing); err != nil {
		s.logger.WithError(err).WithField("listing_id", listingID).Error("failed to update listing status")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"listing": listing})
}

type currentListingPayload struct {
	Listing        *types.Listing `json:"listing"`
	NeedsSelection bool           `json:"needsSelection"`
}

// resolveCurrentListing decides the active listing for a session. A valid
// selection wins; a sole eligible listing is returned without one; a stale
// selection or an ambiguous set forces the client to pick.
func resolveCurrentListing(selectedID *string, eligible []*types.Listing) currentListingPayload {
	if selectedID != nil {
		for _, l := range eligible {
			if l.ID == *selectedID {
				return currentListingPayload{Listing: l}
			}
		}
		// Previously selected listing is gone or no longer eligible.
		return currentListingPayload{NeedsSelection: true}
	}

	switch len(eligible) {
	case 0:
		return currentListingPayload{}
	case 1:
		return currentListingPayload{Listing: eligible[0]}
	default:
		return currentListingPayload{NeedsSelection: true}
	}
}

func (s *Service) handleGetCurrentListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	progress, err := s.progressForUser(ctx, userID, role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to load progress")
		s.respondError(w, err)
		return
	}

	eligible, err := s.listingRepo.ListingsForUser(ctx, role, userID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch eligible listings")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, resolveCurrentListing(progress.SelectedListingID, eligible))
}

type selectListingRequest struct {
	ListingID string `json:"listingId"`
}

func (s *Service) handlePostSelectListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}
	role, _ := s.roleFromContext(ctx)

	var req selectListingRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if strings.TrimSpace(req.ListingID) == "" {
		s.respondError(w, types.NewValidationError("listingId", "required"))
		return
	}

	listing, err := s.authorizeListing(ctx, role, userID, req.ListingID)
	if err != nil {
		// Selection stays unchanged on failure.
		if errors.Is(err, types.ErrNotAuthorized) || errors.Is(err, types.ErrListingNotFound) {
			s.respondError(w, err)
			return
		}
		s.logger.WithError(err).WithField("listing_id", req.ListingID).Error("failed to authorize listing selection")
		s.respondError(w, err)
		return
	}

	// Ensure the progress row exists before pointing it at a listing.
	if _, err := s.progressForUser(ctx, userID, role); err != nil {
		s.respondError(w, err)
		return
	}

	if err := s.progressRepo.SelectListing(ctx, userID, utils.StringPtr(listing.ID)); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to persist listing selection")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, currentListingPayload{Listing: listing})
}
