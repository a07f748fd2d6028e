package types

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleSeller Role = "SELLER"
	RoleBuyer  Role = "BUYER"
	RoleBroker Role = "BROKER"
	RoleAgent  Role = "AGENT"
)

// ParseRole normalizes the role path segment / JWT claim value.
func ParseRole(v string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(v))) {
	case RoleSeller:
		return RoleSeller, nil
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleBroker:
		return RoleBroker, nil
	case RoleAgent:
		return RoleAgent, nil
	}
	return "", fmt.Errorf("unknown role %q", v)
}

// Provider reports whether the role supplies documents to sellers/buyers
// rather than consuming them.
func (r Role) Provider() bool {
	return r == RoleBroker || r == RoleAgent
}

type User struct {
	ID         string    `db:"id" json:"id"`
	Role       Role      `db:"role" json:"role"`
	Email      *string   `db:"email" json:"email,omitempty"`
	GivenName  *string   `db:"given_name" json:"givenName,omitempty"`
	FamilyName *string   `db:"family_name" json:"familyName,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// DisplayName is what document payloads report as the uploader name.
func (u *User) DisplayName() string {
	given := strings.TrimSpace(derefString(u.GivenName))
	family := strings.TrimSpace(derefString(u.FamilyName))
	name := strings.TrimSpace(given + " " + family)
	if name != "" {
		return name
	}
	return derefString(u.Email)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
