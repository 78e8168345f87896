package team

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"qrlinks/internal/db"
	"qrlinks/internal/models"
)

// fakeStore is an in-memory Store for resolver tests.
type fakeStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[uuid.UUID]*models.User)}
}

func (s *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeStore) ListUserIDsInvitedBy(ctx context.Context, inviter uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, user := range s.users {
		if user.InvitedBy != nil && *user.InvitedBy == inviter {
			ids = append(ids, user.ID)
		}
	}
	return ids, nil
}

func (s *fakeStore) addRoot() *models.User {
	user := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	s.users[user.ID] = user
	return user
}

func (s *fakeStore) addInvitee(inviter uuid.UUID, role string) *models.User {
	user := &models.User{ID: uuid.New(), Role: role, InvitedBy: &inviter}
	s.users[user.ID] = user
	return user
}

func sameSet(t *testing.T, got []uuid.UUID, want ...uuid.UUID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("team has %d members, want %d (got %v, want %v)", len(got), len(want), got, want)
	}
	members := make(map[uuid.UUID]bool, len(got))
	for _, id := range got {
		members[id] = true
	}
	for _, id := range want {
		if !members[id] {
			t.Errorf("team %v missing expected member %s", got, id)
		}
	}
}

func TestTeamIDs_RootAndInviteesShareOneTeam(t *testing.T) {
	store := newFakeStore()
	root := store.addRoot()
	a := store.addInvitee(root.ID, models.RoleEditor)
	b := store.addInvitee(root.ID, models.RoleViewer)

	resolver := NewResolver(store)
	ctx := context.Background()

	for _, member := range []*models.User{root, a, b} {
		ids, err := resolver.TeamIDs(ctx, member.ID.String())
		if err != nil {
			t.Fatalf("TeamIDs(%s) error = %v", member.ID, err)
		}
		sameSet(t, ids, root.ID, a.ID, b.ID)
	}
}

func TestTeamIDs_RootAloneIsItsOwnTeam(t *testing.T) {
	store := newFakeStore()
	root := store.addRoot()

	resolver := NewResolver(store)

	ids, err := resolver.TeamIDs(context.Background(), root.ID.String())
	if err != nil {
		t.Fatalf("TeamIDs() error = %v", err)
	}
	sameSet(t, ids, root.ID)
}

func TestTeamIDs_BrokenChainDegradesToSelf(t *testing.T) {
	store := newFakeStore()
	ghost := uuid.New() // never stored
	z := store.addInvitee(ghost, models.RoleEditor)

	resolver := NewResolver(store)

	ids, err := resolver.TeamIDs(context.Background(), z.ID.String())
	if err != nil {
		t.Fatalf("TeamIDs() error = %v", err)
	}
	sameSet(t, ids, z.ID)
}

func TestTeamIDs_OrphanNonAdminDegradesToSelf(t *testing.T) {
	store := newFakeStore()
	orphan := &models.User{ID: uuid.New(), Role: models.RoleEditor} // no inviter, not admin
	store.users[orphan.ID] = orphan

	resolver := NewResolver(store)

	ids, err := resolver.TeamIDs(context.Background(), orphan.ID.String())
	if err != nil {
		t.Fatalf("TeamIDs() error = %v", err)
	}
	sameSet(t, ids, orphan.ID)
}

func TestTeamIDs_DepthCeilingTerminates(t *testing.T) {
	store := newFakeStore()

	// Build a chain far deeper than the ceiling, ending in a root.
	root := store.addRoot()
	prev := root
	var leaf *models.User
	for i := 0; i < maxWalkDepth*3; i++ {
		leaf = store.addInvitee(prev.ID, models.RoleEditor)
		prev = leaf
	}

	resolver := NewResolver(store)

	ids, err := resolver.TeamIDs(context.Background(), leaf.ID.String())
	if err != nil {
		t.Fatalf("TeamIDs() error = %v", err)
	}
	// The root is unreachable within the ceiling, so visibility narrows to self.
	sameSet(t, ids, leaf.ID)
}

func TestTeamIDs_CyclicChainTerminates(t *testing.T) {
	store := newFakeStore()

	idA, idB := uuid.New(), uuid.New()
	store.users[idA] = &models.User{ID: idA, Role: models.RoleEditor, InvitedBy: &idB}
	store.users[idB] = &models.User{ID: idB, Role: models.RoleEditor, InvitedBy: &idA}

	resolver := NewResolver(store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ids, err := resolver.TeamIDs(context.Background(), idA.String())
		if err != nil {
			t.Errorf("TeamIDs() error = %v", err)
			return
		}
		sameSet(t, ids, idA)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("TeamIDs() did not terminate on cyclic invited_by data")
	}
}

func TestTeamIDs_MalformedIDFailsFast(t *testing.T) {
	store := newFakeStore()
	resolver := NewResolver(store)

	for _, id := range []string{"", "short", "1; DROP TABLE users--", "not a uuid but long enough"} {
		_, err := resolver.TeamIDs(context.Background(), id)
		if !errors.Is(err, ErrInvalidIdentityID) {
			t.Errorf("TeamIDs(%q) error = %v, want ErrInvalidIdentityID", id, err)
		}
	}
}

func TestTeamIDs_UnknownIdentityIsHardError(t *testing.T) {
	store := newFakeStore()
	resolver := NewResolver(store)

	_, err := resolver.TeamIDs(context.Background(), uuid.New().String())
	if !errors.Is(err, db.ErrUserNotFound) {
		t.Errorf("TeamIDs() error = %v, want ErrUserNotFound", err)
	}
}
