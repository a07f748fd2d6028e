package seed

import (
	"context"
	"errors"
	"fmt"

	"dealdesk/internal/journey"
	"dealdesk/internal/store"
	"dealdesk/internal/utils"
	"dealdesk/pkg/types"

	"github.com/k0kubun/pp/v3"
)

type demoUser struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	Role       types.Role
}

// Fixed IDs keep seeding idempotent across runs.
// To generate new IDs: `go run ./cmd/dealdesk nanoid`
var demoUsers = []demoUser{
	{ID: "sUJpyyLhYDRxrMrFyvOwfQ4GgrcdbU0f", Email: "sandra.ortiz+seller@example.com", GivenName: "Sandra", FamilyName: "Ortiz", Role: types.RoleSeller},
	{ID: "bhqzXMSY1y0vOSE3IcTjXhRxGCgtyDgi", Email: "marcus.lee+buyer@example.com", GivenName: "Marcus", FamilyName: "Lee", Role: types.RoleBuyer},
	{ID: "kDFR7LJ3y31A6kgfEYYHhQHo9ZUW0QLm", Email: "priya.shah+broker@example.com", GivenName: "Priya", FamilyName: "Shah", Role: types.RoleBroker},
	{ID: "aM2v5x6wJcQ0nRrBhTTzKqX1dL8sYepH", Email: "derek.cole+agent@example.com", GivenName: "Derek", FamilyName: "Cole", Role: types.RoleAgent},
}

type demoListing struct {
	ID               string
	Title            string
	Description      string
	AskingPriceCents int64
}

var demoListings = []demoListing{
	{ID: "fJ1V0o3yP9qWkLxT5mZbC7nHd2sGa8Ru", Title: "Riverside Coffee Roasters", Description: "Established specialty roaster with wholesale accounts", AskingPriceCents: 48500000},
	{ID: "tY6cQ4eU8iOoA1sDdF3gHjK9lZ0xWvBn", Title: "Lakeshore HVAC Services", Description: "Residential and light-commercial HVAC contractor", AskingPriceCents: 112000000},
}

// SeedPortal provisions the demo seller/buyer/broker/agent accounts, two
// listings owned by the demo seller, the buyer association, and fresh
// progress records.
func SeedPortal(
	ctx context.Context,
	userRepo *store.UserRepository,
	listingRepo *store.ListingRepository,
	progressRepo *store.ProgressRepository,
) error {
	for _, du := range demoUsers {
		if err := userRepo.UpsertIdentity(ctx, du.ID, du.Role, du.Email, du.GivenName, du.FamilyName); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", du.ID, err)
		}
	}

	seller := demoUsers[0]
	buyer := demoUsers[1]
	broker := demoUsers[2]
	agent := demoUsers[3]

	for _, dl := range demoListings {
		if _, err := listingRepo.Listing(ctx, dl.ID); err == nil {
			continue
		} else if !errors.Is(err, types.ErrListingNotFound) {
			return fmt.Errorf("failed to check listing %s: %w", dl.ID, err)
		}

		listing := &types.Listing{
			ID:               dl.ID,
			SellerID:         seller.ID,
			BrokerID:         utils.StringPtr(broker.ID),
			AgentID:          utils.StringPtr(agent.ID),
			Title:            dl.Title,
			Description:      utils.StringPtr(dl.Description),
			AskingPriceCents: dl.AskingPriceCents,
			Status:           types.ListingStatusActive,
		}

		if err := listingRepo.CreateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to seed listing %q: %w", dl.Title, err)
		}

		if err := listingRepo.AssignBuyer(ctx, listing.ID, buyer.ID); err != nil {
			return fmt.Errorf("failed to associate demo buyer: %w", err)
		}

		pp.Println(listing)
	}

	for _, du := range []demoUser{seller, buyer} {
		if _, err := progressRepo.ProgressByUser(ctx, du.ID); err == nil {
			continue
		} else if !errors.Is(err, types.ErrProgressNotFound) {
			return fmt.Errorf("failed to check progress for %s: %w", du.ID, err)
		}

		if err := progressRepo.CreateProgress(ctx, journey.NewProgress(du.ID, du.Role)); err != nil {
			return fmt.Errorf("failed to seed progress for %s: %w", du.ID, err)
		}
	}

	return nil
}
