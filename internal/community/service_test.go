package community

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRepo is an in-memory community repository
type fakeRepo struct {
	communities map[int64]*Community
	members     map[int64]map[int64]*Member
	nextID      int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		communities: map[int64]*Community{},
		members:     map[int64]map[int64]*Member{},
		nextID:      1,
	}
}

func (r *fakeRepo) Create(_ context.Context, c *Community) error {
	for _, existing := range r.communities {
		if existing.Name == c.Name {
			return ErrNameTaken
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.communities[c.ID] = &stored
	r.members[c.ID] = map[int64]*Member{}
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*Community, error) {
	c, ok := r.communities[id]
	if !ok {
		return nil, ErrCommunityNotFound
	}
	copied := *c
	copied.MemberCount = len(r.members[id])
	return &copied, nil
}

func (r *fakeRepo) Update(_ context.Context, c *Community) error {
	if _, ok := r.communities[c.ID]; !ok {
		return ErrCommunityNotFound
	}
	stored := *c
	r.communities[c.ID] = &stored
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.communities[id]; !ok {
		return ErrCommunityNotFound
	}
	delete(r.communities, id)
	delete(r.members, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ *ListRequest) ([]*Community, int, error) {
	var out []*Community
	for _, c := range r.communities {
		copied := *c
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepo) AddMember(_ context.Context, m *Member) error {
	byUser, ok := r.members[m.CommunityID]
	if !ok {
		return ErrCommunityNotFound
	}
	if _, exists := byUser[m.UserID]; exists {
		return ErrAlreadyMember
	}
	m.JoinedAt = time.Now()
	stored := *m
	byUser[m.UserID] = &stored
	return nil
}

func (r *fakeRepo) GetMember(_ context.Context, communityID, userID int64) (*Member, error) {
	m, ok := r.members[communityID][userID]
	if !ok {
		return nil, ErrNotMember
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) RemoveMember(_ context.Context, communityID, userID int64) error {
	if _, ok := r.members[communityID][userID]; !ok {
		return ErrNotMember
	}
	delete(r.members[communityID], userID)
	return nil
}

func (r *fakeRepo) UpdateMemberRole(_ context.Context, communityID, userID int64, role string) error {
	m, ok := r.members[communityID][userID]
	if !ok {
		return ErrNotMember
	}
	m.Role = role
	return nil
}

func (r *fakeRepo) ListMembers(_ context.Context, communityID int64, _, _ int) ([]*Member, int, error) {
	var out []*Member
	for _, m := range r.members[communityID] {
		copied := *m
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func TestCreate_OwnerBecomesFirstMember(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo)
	ctx := context.Background()

	community, err := service.Create(ctx, 1, &CreateCommunityRequest{
		Name:     "Guitar Circle",
		Category: CategoryMusic,
		Skills:   []string{"Guitar", "Music Theory"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !community.IsPublic || !community.IsActive {
		t.Error("new community should default to public and active")
	}

	member, err := repo.GetMember(ctx, community.ID, 1)
	if err != nil {
		t.Fatalf("owner not added as member: %v", err)
	}
	if member.Role != RoleOwner {
		t.Errorf("owner role = %q, want %q", member.Role, RoleOwner)
	}
	if community.MemberCount != 1 {
		t.Errorf("member count = %d, want 1", community.MemberCount)
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := service.Create(ctx, 2, &CreateCommunityRequest{Name: "Guitar Circle"}); !errors.Is(err, ErrNameTaken) {
		t.Errorf("got %v, want ErrNameTaken", err)
	}
}

func TestUpdate_OwnerOnly(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	community, _ := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"})

	newName := "Guitar & Bass Circle"
	if _, err := service.Update(ctx, 2, community.ID, &UpdateCommunityRequest{Name: &newName}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}

	updated, err := service.Update(ctx, 1, community.ID, &UpdateCommunityRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("name = %q, want %q", updated.Name, newName)
	}
}

func TestJoinAndLeave(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	community, _ := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"})

	member, err := service.Join(ctx, 2, community.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if member.Role != RoleMember {
		t.Errorf("role = %q, want %q", member.Role, RoleMember)
	}

	if _, err := service.Join(ctx, 2, community.ID); !errors.Is(err, ErrAlreadyMember) {
		t.Errorf("second join: got %v, want ErrAlreadyMember", err)
	}

	if err := service.Leave(ctx, 2, community.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := service.Leave(ctx, 2, community.ID); !errors.Is(err, ErrNotMember) {
		t.Errorf("second leave: got %v, want ErrNotMember", err)
	}
}

func TestLeave_OwnerBlocked(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	community, _ := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"})
	if err := service.Leave(ctx, 1, community.ID); !errors.Is(err, ErrOwnerCannotLeave) {
		t.Errorf("got %v, want ErrOwnerCannotLeave", err)
	}
}

func TestPromoteModerator(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo)
	ctx := context.Background()

	community, _ := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"})
	service.Join(ctx, 2, community.ID)

	if err := service.PromoteModerator(ctx, 2, community.ID, 2); !errors.Is(err, ErrNotOwner) {
		t.Errorf("non-owner promote: got %v, want ErrNotOwner", err)
	}

	if err := service.PromoteModerator(ctx, 1, community.ID, 2); err != nil {
		t.Fatalf("PromoteModerator: %v", err)
	}
	member, _ := repo.GetMember(ctx, community.ID, 2)
	if member.Role != RoleModerator {
		t.Errorf("role = %q, want %q", member.Role, RoleModerator)
	}

	if err := service.PromoteModerator(ctx, 1, community.ID, 99); !errors.Is(err, ErrNotMember) {
		t.Errorf("promote non-member: got %v, want ErrNotMember", err)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	service := NewService(newFakeRepo())
	ctx := context.Background()

	community, _ := service.Create(ctx, 1, &CreateCommunityRequest{Name: "Guitar Circle"})

	if err := service.Delete(ctx, 2, community.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("got %v, want ErrNotOwner", err)
	}
	if err := service.Delete(ctx, 1, community.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.Get(ctx, community.ID); !errors.Is(err, ErrCommunityNotFound) {
		t.Errorf("got %v, want ErrCommunityNotFound", err)
	}
}
