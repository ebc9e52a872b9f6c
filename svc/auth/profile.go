package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/playforge/gamekit/pkg/provider"
	"github.com/playforge/gamekit/pkg/username"
)

// profileTable is the provider table holding application profiles. Rows are
// keyed by the identity id, so an identity owns at most one profile.
const profileTable = "app_user"

// Role is the application-level role stored on a profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Profile is the application-side record for an identity. It is created by
// the client exactly once per identity; the provider only knows about the
// identity itself.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	IsStaff     bool      `json:"is_staff"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	JoinedAt    time.Time `json:"date_joined"`
}

// Admin reports whether the profile grants admin capabilities.
func (p Profile) Admin() bool {
	return p.Role == RoleAdmin || p.IsSuperuser
}

// fetchOrCreate returns the profile for the identity, creating it when the
// identity has none yet. Concurrent creators race on the primary key: the
// loser gets a conflict and re-fetches the winner's row. A conflict on a
// fresh row is treated as a taken username and retried once with a
// regenerated name.
func (s *Synchronizer) fetchOrCreate(ctx context.Context, identity provider.Identity) (Profile, error) {
	var existing Profile
	err := s.provider.From(profileTable).Select("*").Eq("id", identity.ID).Single(ctx, &existing)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, provider.ErrNotFound) {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}

	fresh := Profile{
		ID:       identity.ID,
		Email:    identity.Email,
		Username: username.FromEmail(identity.Email),
		Role:     RoleUser,
		IsActive: true,
		JoinedAt: time.Now().UTC(),
	}
	var created Profile
	err = s.provider.From(profileTable).Insert(ctx, fresh, &created)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, provider.ErrConflict) {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}

	// Someone else may have inserted the row between our fetch and insert.
	if ferr := s.provider.From(profileTable).Select("*").Eq("id", identity.ID).Single(ctx, &existing); ferr == nil {
		return existing, nil
	}

	// No row for the identity, so the conflict was on the username.
	fresh.Username = username.FromEmail(identity.Email)
	if err = s.provider.From(profileTable).Insert(ctx, fresh, &created); err != nil {
		return Profile{}, fmt.Errorf("create profile: %w", err)
	}
	return created, nil
}
