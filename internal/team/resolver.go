// Package team computes the visibility set of an identity from the invitation
// graph. The team is a derived view, recomputed on every call: one root admin
// (no inviter) plus the identities it directly invited. It is never persisted.
package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"qrlinks/internal/db"
	"qrlinks/internal/models"
	"qrlinks/internal/validation"
)

// maxWalkDepth bounds the upward walk over invited_by references. This is a
// correctness bound, not an optimization: cyclic or corrupted chains must
// terminate instead of looping.
const maxWalkDepth = 10

// ErrInvalidIdentityID indicates a malformed identifier reached the resolver.
// This is a contract violation or a tampered ID, never a routine outcome.
var ErrInvalidIdentityID = errors.New("invalid identity id")

// Store is the persistence surface the resolver needs.
type Store interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUserIDsInvitedBy(ctx context.Context, inviter uuid.UUID) ([]uuid.UUID, error)
}

// Resolver walks the invitation graph to compute team membership.
type Resolver struct {
	store Store
}

// NewResolver creates a team resolver backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// TeamIDs returns every identity ID whose resources are visible to the given
// identity. The result always contains the querying identity. When the
// invitation chain is broken or exceeds the depth ceiling, visibility narrows
// to the identity alone rather than failing the call.
//
// A missing identity is a hard failure: the caller passed an ID that does not
// exist, which is either a programming error or a tampered token.
func (r *Resolver) TeamIDs(ctx context.Context, identityID string) ([]uuid.UUID, error) {
	id, err := parseIdentityID(identityID)
	if err != nil {
		return nil, err
	}

	user, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load identity %s: %w", identityID, err)
	}

	root, found, err := r.findRoot(ctx, user)
	if err != nil {
		return nil, err
	}
	if !found {
		// Broken chain or depth ceiling: degrade to self-only visibility.
		return []uuid.UUID{user.ID}, nil
	}

	invitees, err := r.store.ListUserIDsInvitedBy(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("list invitees of %s: %w", root, err)
	}

	team := make([]uuid.UUID, 0, len(invitees)+2)
	team = append(team, root)
	team = append(team, invitees...)
	if !contains(team, user.ID) {
		team = append(team, user.ID)
	}
	return team, nil
}

// findRoot walks invited_by references upward until it reaches the tree's
// root admin. The walk is bounded; hitting the ceiling or a dangling inviter
// reports no root rather than an error.
func (r *Resolver) findRoot(ctx context.Context, user *models.User) (uuid.UUID, bool, error) {
	current := user
	for depth := 0; depth <= maxWalkDepth; depth++ {
		if current.IsRoot() {
			return current.ID, true, nil
		}
		if current.InvitedBy == nil {
			// Not a root and nowhere to go: orphaned identity.
			return uuid.Nil, false, nil
		}

		next := *current.InvitedBy
		// Re-validate before every lookup; stored references are data, not
		// trusted input.
		if !validation.ValidateIdentityID(next.String()) {
			return uuid.Nil, false, nil
		}

		inviter, err := r.store.GetUserByID(ctx, next)
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				// Dangling inviter reference.
				return uuid.Nil, false, nil
			}
			return uuid.Nil, false, fmt.Errorf("walk inviter %s: %w", next, err)
		}
		current = inviter
	}

	return uuid.Nil, false, nil
}

func parseIdentityID(identityID string) (uuid.UUID, error) {
	if !validation.ValidateIdentityID(identityID) {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidIdentityID, identityID)
	}
	id, err := uuid.Parse(identityID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidIdentityID, identityID)
	}
	return id, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
