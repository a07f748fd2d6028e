package server

import (
	"testing"

	"dealdesk/internal/utils"
	"dealdesk/pkg/types"
)

func testListing(id string) *types.Listing {
	return &types.Listing{ID: id, SellerID: "seller1", Status: types.ListingStatusActive}
}

func TestResolveCurrentListing(t *testing.T) {
	l1 := testListing("L1")
	l2 := testListing("L2")

	cases := []struct {
		name      string
		selected  *string
		eligible  []*types.Listing
		wantID    string
		wantNeeds bool
	}{
		{
			name:     "valid selection wins",
			selected: utils.StringPtr("L2"),
			eligible: []*types.Listing{l1, l2},
			wantID:   "L2",
		},
		{
			name:      "stale selection forces re-pick",
			selected:  utils.StringPtr("gone"),
			eligible:  []*types.Listing{l1, l2},
			wantNeeds: true,
		},
		{
			name:      "stale selection with single listing still forces re-pick",
			selected:  utils.StringPtr("gone"),
			eligible:  []*types.Listing{l1},
			wantNeeds: true,
		},
		{
			name:     "single eligible listing auto-resolves",
			eligible: []*types.Listing{l1},
			wantID:   "L1",
		},
		{
			name:      "multiple eligible and none selected",
			eligible:  []*types.Listing{l1, l2},
			wantNeeds: true,
		},
		{
			name: "no listings at all",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveCurrentListing(tc.selected, tc.eligible)
			if got.NeedsSelection != tc.wantNeeds {
				t.Fatalf("needsSelection = %v, want %v", got.NeedsSelection, tc.wantNeeds)
			}
			if tc.wantID == "" {
				if got.Listing != nil {
					t.Fatalf("expected no listing, got %q", got.Listing.ID)
				}
				return
			}
			if got.Listing == nil || got.Listing.ID != tc.wantID {
				t.Fatalf("expected listing %q, got %+v", tc.wantID, got.Listing)
			}
		})
	}
}

func TestListingAccessibleTo(t *testing.T) {
	listing := &types.Listing{
		ID:       "L1",
		SellerID: "seller1",
		BrokerID: utils.StringPtr("broker1"),
	}

	if !listing.AccessibleTo(types.RoleSeller, "seller1") {
		t.Fatal("owner should have access")
	}
	if listing.AccessibleTo(types.RoleSeller, "seller2") {
		t.Fatal("other sellers should not have access")
	}
	if !listing.AccessibleTo(types.RoleBroker, "broker1") {
		t.Fatal("assigned broker should have access")
	}
	if listing.AccessibleTo(types.RoleAgent, "agent1") {
		t.Fatal("unassigned agent should not have access")
	}
	// Buyers go through the association table, not this check.
	if listing.AccessibleTo(types.RoleBuyer, "buyer1") {
		t.Fatal("buyer access is not decided by AccessibleTo")
	}
}

func TestBuyersPayload(t *testing.T) {
	buyers := []*types.User{
		{
			ID:         "buyer1",
			Role:       types.RoleBuyer,
			Email:      utils.StringPtr("jordan@example.com"),
			GivenName:  utils.StringPtr("Jordan"),
			FamilyName: utils.StringPtr("Reyes"),
		},
		{
			ID:   "buyer2",
			Role: types.RoleBuyer,
		},
	}

	got := buyersPayload(buyers)
	if len(got) != 2 {
		t.Fatalf("expected 2 buyers, got %d", len(got))
	}
	if got[0].ID != "buyer1" || got[0].Name != "Jordan Reyes" || got[0].Email != "jordan@example.com" {
		t.Fatalf("unexpected first buyer payload: %+v", got[0])
	}
	if got[1].Email != "" || got[1].Name != "" {
		t.Fatalf("missing fields should stay empty: %+v", got[1])
	}

	if out := buyersPayload(nil); len(out) != 0 {
		t.Fatalf("expected empty payload, got %+v", out)
	}
}
