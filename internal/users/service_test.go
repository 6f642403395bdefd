package users

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeRepo is an in-memory user repository
type fakeRepo struct {
	users  map[int64]*User
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*User{}, nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	u.ID = r.nextID
	r.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	u.LastActiveAt = u.CreatedAt
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeRepo) UpdateProfile(_ context.Context, u *User) error {
	stored, ok := r.users[u.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored.Name = u.Name
	stored.Bio = u.Bio
	stored.City = u.City
	stored.State = u.State
	stored.Phone = u.Phone
	return nil
}

func (r *fakeRepo) UpdateSkillsOffered(_ context.Context, userID int64, skills SkillsOffered) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.SkillsOffered = skills
	return nil
}

func (r *fakeRepo) UpdateSkillsWanted(_ context.Context, userID int64, skills SkillsWanted) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.SkillsWanted = skills
	return nil
}

func (r *fakeRepo) UpdateAvatar(_ context.Context, userID int64, avatarURL string) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.AvatarURL = avatarURL
	return nil
}

func (r *fakeRepo) TouchLastActive(_ context.Context, userID int64) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.LastActiveAt = time.Now()
	return nil
}

func (r *fakeRepo) ApplyRating(_ context.Context, userID int64, rating int) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.RatingAverage = (u.RatingAverage*float64(u.RatingCount) + float64(rating)) / float64(u.RatingCount+1)
	u.RatingCount++
	return nil
}

func (r *fakeRepo) AddSkillPoints(_ context.Context, userID int64, points int) error {
	u, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.SkillPoints += points
	return nil
}

func (r *fakeRepo) Search(_ context.Context, _ *SearchRequest) ([]*User, int, error) {
	return nil, 0, nil
}

func (r *fakeRepo) FindCandidates(_ context.Context, _ int64, _, _ []string, _ int) ([]*User, error) {
	return nil, nil
}

func (r *fakeRepo) GetDashboardStats(_ context.Context, _ int64) (*DashboardStats, error) {
	return &DashboardStats{}, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, nil), repo
}

func seedUser(repo *fakeRepo) *User {
	u := &User{Name: "Dana", Email: "dana@example.com", City: "Austin", State: "TX"}
	repo.Create(context.Background(), u)
	return u
}

func TestAddOfferedSkill(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	updated, err := service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{
		Name:        "Guitar",
		Proficiency: ProficiencyAdvanced,
	})
	if err != nil {
		t.Fatalf("AddOfferedSkill: %v", err)
	}
	if len(updated.SkillsOffered) != 1 || updated.SkillsOffered[0].Name != "Guitar" {
		t.Errorf("unexpected skills: %+v", updated.SkillsOffered)
	}
}

func TestAddOfferedSkill_DuplicateCaseInsensitive(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	if _, err := service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{
		Name: "Guitar", Proficiency: ProficiencyAdvanced,
	}); err != nil {
		t.Fatalf("AddOfferedSkill: %v", err)
	}

	_, err := service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{
		Name: "guitar", Proficiency: ProficiencyBeginner,
	})
	if !errors.Is(err, ErrSkillExists) {
		t.Errorf("got %v, want ErrSkillExists", err)
	}
}

func TestAddOfferedSkill_InvalidProficiency(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)

	_, err := service.AddOfferedSkill(context.Background(), user.ID, &AddOfferedSkillRequest{
		Name: "Guitar", Proficiency: "Wizard",
	})
	if !errors.Is(err, ErrInvalidSkill) {
		t.Errorf("got %v, want ErrInvalidSkill", err)
	}
}

func TestRemoveOfferedSkill(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{Name: "Guitar", Proficiency: ProficiencyExpert})
	service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{Name: "Spanish", Proficiency: ProficiencyAdvanced})

	updated, err := service.RemoveOfferedSkill(ctx, user.ID, "GUITAR")
	if err != nil {
		t.Fatalf("RemoveOfferedSkill: %v", err)
	}
	if len(updated.SkillsOffered) != 1 || updated.SkillsOffered[0].Name != "Spanish" {
		t.Errorf("unexpected skills after removal: %+v", updated.SkillsOffered)
	}

	if _, err := service.RemoveOfferedSkill(ctx, user.ID, "Guitar"); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("got %v, want ErrSkillNotFound", err)
	}
}

func TestReplaceOfferedSkills(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	service.AddOfferedSkill(ctx, user.ID, &AddOfferedSkillRequest{Name: "Guitar", Proficiency: ProficiencyExpert})

	updated, err := service.ReplaceOfferedSkills(ctx, user.ID, &ReplaceOfferedSkillsRequest{
		Skills: []AddOfferedSkillRequest{
			{Name: "Spanish", Proficiency: ProficiencyAdvanced},
			{Name: "Cooking", Proficiency: ProficiencyIntermediate, Description: "Tex-Mex mostly"},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceOfferedSkills: %v", err)
	}
	if len(updated.SkillsOffered) != 2 || updated.SkillsOffered[0].Name != "Spanish" {
		t.Errorf("unexpected skills after replace: %+v", updated.SkillsOffered)
	}
	if updated.SkillsOffered[1].Description != "Tex-Mex mostly" {
		t.Errorf("description not kept: %+v", updated.SkillsOffered[1])
	}
}

func TestReplaceOfferedSkills_DuplicateName(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)

	_, err := service.ReplaceOfferedSkills(context.Background(), user.ID, &ReplaceOfferedSkillsRequest{
		Skills: []AddOfferedSkillRequest{
			{Name: "Guitar", Proficiency: ProficiencyExpert},
			{Name: "guitar", Proficiency: ProficiencyBeginner},
		},
	})
	if !errors.Is(err, ErrInvalidSkill) {
		t.Errorf("got %v, want ErrInvalidSkill", err)
	}
}

func TestReplaceWantedSkills_ClearsList(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	service.AddWantedSkill(ctx, user.ID, &AddWantedSkillRequest{Name: "Piano", Priority: PriorityHigh})

	updated, err := service.ReplaceWantedSkills(ctx, user.ID, &ReplaceWantedSkillsRequest{})
	if err != nil {
		t.Fatalf("ReplaceWantedSkills: %v", err)
	}
	if len(updated.SkillsWanted) != 0 {
		t.Errorf("expected empty list, got %+v", updated.SkillsWanted)
	}
}

func TestAddWantedSkill(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)
	ctx := context.Background()

	updated, err := service.AddWantedSkill(ctx, user.ID, &AddWantedSkillRequest{
		Name:     "Piano",
		Priority: PriorityHigh,
	})
	if err != nil {
		t.Fatalf("AddWantedSkill: %v", err)
	}
	if len(updated.SkillsWanted) != 1 || updated.SkillsWanted[0].Priority != PriorityHigh {
		t.Errorf("unexpected skills: %+v", updated.SkillsWanted)
	}

	if _, err := service.AddWantedSkill(ctx, user.ID, &AddWantedSkillRequest{
		Name: "Piano", Priority: PriorityLow,
	}); !errors.Is(err, ErrSkillExists) {
		t.Errorf("got %v, want ErrSkillExists", err)
	}
}

func TestAddWantedSkill_InvalidPriority(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)

	_, err := service.AddWantedSkill(context.Background(), user.ID, &AddWantedSkillRequest{
		Name: "Piano", Priority: "Urgent",
	})
	if !errors.Is(err, ErrInvalidSkill) {
		t.Errorf("got %v, want ErrInvalidSkill", err)
	}
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	service, repo := newTestService()
	user := seedUser(repo)

	bio := "Guitarist and language nerd"
	updated, err := service.UpdateProfile(context.Background(), user.ID, &UpdateProfileRequest{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Bio != bio {
		t.Errorf("bio = %q, want %q", updated.Bio, bio)
	}
	if updated.Name != "Dana" {
		t.Errorf("name changed unexpectedly to %q", updated.Name)
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	service, _ := newTestService()

	name := "Nobody"
	_, err := service.UpdateProfile(context.Background(), 99, &UpdateProfileRequest{Name: &name})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}
