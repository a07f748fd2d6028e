package types

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "SELLER", want: RoleSeller},
		{in: "buyer", want: RoleBuyer},
		{in: " Broker ", want: RoleBroker},
		{in: "agent", want: RoleAgent},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := ParseRole(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseRole(%q) expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRole(%q) unexpected error: %s", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseRole(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRoleProvider(t *testing.T) {
	if RoleSeller.Provider() || RoleBuyer.Provider() {
		t.Error("sellers and buyers should not be document providers")
	}
	if !RoleBroker.Provider() || !RoleAgent.Provider() {
		t.Error("brokers and agents should be document providers")
	}
}

func TestParseDocumentStatus(t *testing.T) {
	for _, in := range []string{"PENDING", "pending", " Completed "} {
		if _, err := ParseDocumentStatus(in); err != nil {
			t.Errorf("ParseDocumentStatus(%q) unexpected error: %s", in, err)
		}
	}

	if _, err := ParseDocumentStatus("ARCHIVED"); err == nil {
		t.Error("expected error for unknown document status")
	}
}

func TestParseListingStatus(t *testing.T) {
	got, err := ParseListingStatus("under_contract")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != ListingStatusUnderContract {
		t.Errorf("expected %q, got %q", ListingStatusUnderContract, got)
	}

	if _, err := ParseListingStatus("SOLD"); err == nil {
		t.Error("expected error for unknown listing status")
	}
}

func TestListingStatusCanTransition(t *testing.T) {
	cases := []struct {
		from ListingStatus
		to   ListingStatus
		want bool
	}{
		{from: ListingStatusActive, to: ListingStatusUnderContract, want: true},
		{from: ListingStatusActive, to: ListingStatusClosed, want: false},
		{from: ListingStatusActive, to: ListingStatusActive, want: false},
		{from: ListingStatusUnderContract, to: ListingStatusClosed, want: true},
		{from: ListingStatusUnderContract, to: ListingStatusActive, want: true},
		{from: ListingStatusClosed, to: ListingStatusActive, want: false},
		{from: ListingStatusClosed, to: ListingStatusUnderContract, want: false},
	}

	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.want {
			t.Errorf("CanTransition(%s -> %s) = %t, want %t", c.from, c.to, got, c.want)
		}
	}
}

func TestParseDocumentType(t *testing.T) {
	got, err := ParseDocumentType("nda")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got != DocTypeNDA {
		t.Errorf("expected %q, got %q", DocTypeNDA, got)
	}

	if _, err := ParseDocumentType("TAX_RETURN"); err == nil {
		t.Error("expected error for unknown document type")
	}
}
