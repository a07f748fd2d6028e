package server

import (
	"context"
	"errors"
	"testing"

	"dealdesk/pkg/types"
)

func providerDoc(id string, role types.Role) *types.Document {
	return &types.Document{ID: id, UploaderRole: role, DocumentType: types.DocTypeCBR}
}

func TestCanonicalProviderDocument(t *testing.T) {
	cases := []struct {
		name   string
		docs   []*types.Document
		wantID string
	}{
		{
			name:   "broker outranks agent",
			docs:   []*types.Document{providerDoc("a", types.RoleAgent), providerDoc("b", types.RoleBroker)},
			wantID: "b",
		},
		{
			name:   "first broker wins",
			docs:   []*types.Document{providerDoc("b1", types.RoleBroker), providerDoc("b2", types.RoleBroker)},
			wantID: "b1",
		},
		{
			name:   "agent when no broker",
			docs:   []*types.Document{providerDoc("a1", types.RoleAgent), providerDoc("a2", types.RoleAgent)},
			wantID: "a1",
		},
		{
			name:   "empty",
			docs:   nil,
			wantID: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := canonicalProviderDocument(tc.docs)
			if tc.wantID == "" {
				if got != nil {
					t.Fatalf("expected nil, got %q", got.ID)
				}
				return
			}
			if got == nil || got.ID != tc.wantID {
				t.Fatalf("expected document %q, got %+v", tc.wantID, got)
			}
		})
	}
}

func TestRemoveDocumentOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("row failure skips storage", func(t *testing.T) {
		rowErr := errors.New("row delete failed")
		objectCalled := false

		objectErr, err := removeDocument(ctx,
			func(context.Context) error { return rowErr },
			func(context.Context) error {
				objectCalled = true
				return nil
			},
		)
		if !errors.Is(err, rowErr) {
			t.Fatalf("expected row error, got %v", err)
		}
		if objectErr != nil {
			t.Fatalf("unexpected object error: %v", objectErr)
		}
		if objectCalled {
			t.Fatal("storage delete must not run when the row delete fails")
		}
	})

	t.Run("storage failure after row delete is not fatal", func(t *testing.T) {
		storageErr := errors.New("storage delete failed")

		objectErr, err := removeDocument(ctx,
			func(context.Context) error { return nil },
			func(context.Context) error { return storageErr },
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(objectErr, storageErr) {
			t.Fatalf("expected storage error reported, got %v", objectErr)
		}
	})

	t.Run("clean delete", func(t *testing.T) {
		var order []string

		objectErr, err := removeDocument(ctx,
			func(context.Context) error {
				order = append(order, "row")
				return nil
			},
			func(context.Context) error {
				order = append(order, "object")
				return nil
			},
		)
		if err != nil || objectErr != nil {
			t.Fatalf("unexpected errors: %v, %v", err, objectErr)
		}
		if len(order) != 2 || order[0] != "row" || order[1] != "object" {
			t.Fatalf("expected row delete before object delete, got %v", order)
		}
	})
}

func TestCategoryForRole(t *testing.T) {
	if got := categoryForRole(types.RoleSeller); got != types.DocCategorySellerUpload {
		t.Fatalf("seller category = %q", got)
	}
	if got := categoryForRole(types.RoleBuyer); got != types.DocCategoryBuyerUpload {
		t.Fatalf("buyer category = %q", got)
	}
	if got := categoryForRole(types.RoleBroker); got != types.DocCategoryAgentProvided {
		t.Fatalf("broker category = %q", got)
	}
	if got := categoryForRole(types.RoleAgent); got != types.DocCategoryAgentProvided {
		t.Fatalf("agent category = %q", got)
	}
}
