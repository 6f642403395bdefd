package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skillbarter/backend/internal/users"
)

// fakeRepo is an in-memory match repository
type fakeRepo struct {
	matches  map[int64]*Match
	sessions map[int64]*Session
	nextID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		matches:  map[int64]*Match{},
		sessions: map[int64]*Session{},
		nextID:   1,
	}
}

func (r *fakeRepo) CreateMatch(_ context.Context, m *Match) error {
	m.ID = r.nextID
	r.nextID++
	m.CreatedAt = testNow
	m.UpdatedAt = testNow
	stored := *m
	r.matches[m.ID] = &stored
	return nil
}

func (r *fakeRepo) GetMatchByID(_ context.Context, id int64) (*Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeRepo) GetActiveMatchBetween(_ context.Context, userA, userB int64) (*Match, error) {
	for _, m := range r.matches {
		samePair := (m.UserAID == userA && m.UserBID == userB) ||
			(m.UserAID == userB && m.UserBID == userA)
		if samePair && (m.Status == StatusPending || m.Status == StatusAccepted) {
			copied := *m
			return &copied, nil
		}
	}
	return nil, ErrMatchNotFound
}

func (r *fakeRepo) ListMatchesForUser(_ context.Context, userID int64, status string, _, _ int) ([]*Match, int, error) {
	var out []*Match
	for _, m := range r.matches {
		if !m.Participant(userID) {
			continue
		}
		if status != "" && m.Status != status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateMatchStatus(_ context.Context, id int64, status string) error {
	m, ok := r.matches[id]
	if !ok {
		return ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeRepo) CreateSession(_ context.Context, s *Session) error {
	s.ID = r.nextID
	r.nextID++
	stored := *s
	r.sessions[s.ID] = &stored
	return nil
}

func (r *fakeRepo) GetSessionByID(_ context.Context, id int64) (*Session, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) ListSessionsForMatch(_ context.Context, matchID int64) ([]*Session, error) {
	var out []*Session
	for _, s := range r.sessions {
		if s.MatchID == matchID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateSessionStatus(_ context.Context, id int64, status string) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Status = status
	return nil
}

func (r *fakeRepo) SetSessionRating(_ context.Context, id int64, bySideA bool, rating int) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	if bySideA {
		if s.RatingByA != nil {
			return ErrAlreadyRated
		}
		s.RatingByA = &rating
	} else {
		if s.RatingByB != nil {
			return ErrAlreadyRated
		}
		s.RatingByB = &rating
	}
	return nil
}

// fakeUserStore backs the service with the test directory and records
// rating and point mutations
type fakeUserStore struct {
	fakeDirectory
	ratings   map[int64][]int
	points    map[int64]int
	pointsErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		fakeDirectory: fakeDirectory{users: map[int64]*users.User{}},
		ratings:       map[int64][]int{},
		points:        map[int64]int{},
	}
}

func (s *fakeUserStore) ApplyRating(_ context.Context, userID int64, rating int) error {
	s.ratings[userID] = append(s.ratings[userID], rating)
	return nil
}

func (s *fakeUserStore) AddSkillPoints(_ context.Context, userID int64, points int) error {
	if s.pointsErr != nil {
		return s.pointsErr
	}
	s.points[userID] += points
	return nil
}

// fakeNotifier records notification calls
type fakeNotifier struct {
	requests  []int64
	accepts   []int64
	schedules []int64
}

func (n *fakeNotifier) SendMatchRequest(to, _ *users.User) {
	n.requests = append(n.requests, to.ID)
}

func (n *fakeNotifier) SendMatchAccepted(to, _ *users.User) {
	n.accepts = append(n.accepts, to.ID)
}

func (n *fakeNotifier) SendSessionScheduled(to, _ *users.User, _ time.Time) {
	n.schedules = append(n.schedules, to.ID)
}

type serviceFixture struct {
	service  Service
	repo     *fakeRepo
	store    *fakeUserStore
	notifier *fakeNotifier
}

func newServiceFixture() *serviceFixture {
	repo := newFakeRepo()
	store := newFakeUserStore()
	notifier := &fakeNotifier{}
	engine := newTestEngine()
	discovery := NewDiscovery(store, engine, 50)

	store.users[1] = testUser(1,
		offers(users.OfferedSkill{Name: "JavaScript", Proficiency: "Advanced"}),
		wants(users.WantedSkill{Name: "Yoga", Priority: "High"}),
		rated(4.0),
	)
	store.users[2] = testUser(2,
		offers(users.OfferedSkill{Name: "Yoga", Proficiency: "Intermediate"}),
		wants(users.WantedSkill{Name: "JavaScript", Priority: "Medium"}),
		rated(4.0),
	)

	return &serviceFixture{
		service:  NewService(repo, discovery, engine, store, notifier, nil, 10),
		repo:     repo,
		store:    store,
		notifier: notifier,
	}
}

func TestCreateMatch_FreezesScoreAndExchanges(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, err := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if match.Status != StatusPending {
		t.Errorf("status = %q, want pending", match.Status)
	}
	if match.Score != 94 {
		t.Errorf("score = %d, want 94", match.Score)
	}
	if len(match.Exchanges) != 2 {
		t.Fatalf("got %d exchanges, want 2", len(match.Exchanges))
	}
	if match.Exchanges[0].SkillName != "Yoga" || match.Exchanges[0].Priority != "High" {
		t.Errorf("unexpected first exchange: %+v", match.Exchanges[0])
	}

	// Profile edits after creation must not move the stored score
	f.store.users[2].RatingAverage = 1.0
	stored, err := f.service.Get(ctx, 1, match.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Score != 94 {
		t.Errorf("stored score changed to %d after profile edit", stored.Score)
	}

	if len(f.notifier.requests) != 1 || f.notifier.requests[0] != 2 {
		t.Errorf("match request notification not sent to target: %v", f.notifier.requests)
	}
}

func TestCreateMatch_RejectsSelfMatch(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), 1, &CreateMatchRequest{TargetUserID: 1})
	if !errors.Is(err, ErrSelfMatch) {
		t.Errorf("got %v, want ErrSelfMatch", err)
	}
}

func TestCreateMatch_RejectsUnknownTarget(t *testing.T) {
	f := newServiceFixture()

	_, err := f.service.Create(context.Background(), 1, &CreateMatchRequest{TargetUserID: 99})
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
}

func TestCreateMatch_RejectsDuplicatePair(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	if _, err := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Same pair again, from either side
	if _, err := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2}); !errors.Is(err, ErrDuplicateMatch) {
		t.Errorf("got %v, want ErrDuplicateMatch", err)
	}
	if _, err := f.service.Create(ctx, 2, &CreateMatchRequest{TargetUserID: 1}); !errors.Is(err, ErrDuplicateMatch) {
		t.Errorf("reverse direction: got %v, want ErrDuplicateMatch", err)
	}
}

func TestRespond_OnlyRecipientCanAccept(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, err := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.service.Respond(ctx, 1, match.ID, true); !errors.Is(err, ErrNotRecipient) {
		t.Errorf("initiator accept: got %v, want ErrNotRecipient", err)
	}

	accepted, err := f.service.Respond(ctx, 2, match.ID, true)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if accepted.Status != StatusAccepted {
		t.Errorf("status = %q, want accepted", accepted.Status)
	}
	if len(f.notifier.accepts) != 1 || f.notifier.accepts[0] != 1 {
		t.Errorf("accept notification not sent to initiator: %v", f.notifier.accepts)
	}
}

func TestRespond_RejectsNonPending(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if _, err := f.service.Respond(ctx, 2, match.ID, false); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if _, err := f.service.Respond(ctx, 2, match.ID, true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestRespond_OutsiderForbidden(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.users[3] = testUser(3)

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if _, err := f.service.Respond(ctx, 3, match.ID, true); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("got %v, want ErrNotParticipant", err)
	}
}

func TestComplete_AwardsSkillPoints(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if _, err := f.service.Respond(ctx, 2, match.ID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	completed, err := f.service.Complete(ctx, 1, match.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}
	if f.store.points[1] != completionSkillPoints || f.store.points[2] != completionSkillPoints {
		t.Errorf("skill points = %v, want %d each", f.store.points, completionSkillPoints)
	}
}

func TestComplete_SucceedsWhenPointAwardFails(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if _, err := f.service.Respond(ctx, 2, match.ID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	f.store.pointsErr = errors.New("store down")
	completed, err := f.service.Complete(ctx, 1, match.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}
}

func TestComplete_RequiresAccepted(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	if _, err := f.service.Complete(ctx, 1, match.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("got %v, want ErrInvalidTransition", err)
	}
}

func TestCancel(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	cancelled, err := f.service.Cancel(ctx, 2, match.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}

	if _, err := f.service.Cancel(ctx, 1, match.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second cancel: got %v, want ErrInvalidTransition", err)
	}
}

func TestScheduleSession_RequiresAcceptedMatch(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	req := &ScheduleSessionRequest{
		ScheduledAt:     testNow.Add(48 * time.Hour),
		DurationMinutes: 60,
	}

	if _, err := f.service.ScheduleSession(ctx, 1, match.ID, req); !errors.Is(err, ErrMatchNotAccepted) {
		t.Errorf("got %v, want ErrMatchNotAccepted", err)
	}

	if _, err := f.service.Respond(ctx, 2, match.ID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	session, err := f.service.ScheduleSession(ctx, 1, match.ID, req)
	if err != nil {
		t.Fatalf("ScheduleSession: %v", err)
	}
	if session.Status != SessionScheduled {
		t.Errorf("status = %q, want scheduled", session.Status)
	}
	if len(f.notifier.schedules) != 1 || f.notifier.schedules[0] != 2 {
		t.Errorf("schedule notification not sent to other side: %v", f.notifier.schedules)
	}
}

func TestRateSession_AppliesRatingToOtherUser(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()

	match, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	f.service.Respond(ctx, 2, match.ID, true)
	session, err := f.service.ScheduleSession(ctx, 1, match.ID, &ScheduleSessionRequest{
		ScheduledAt:     testNow.Add(24 * time.Hour),
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("ScheduleSession: %v", err)
	}

	// Rating before completion is rejected
	if _, err := f.service.RateSession(ctx, 1, match.ID, session.ID, 5); !errors.Is(err, ErrSessionNotCompleted) {
		t.Errorf("got %v, want ErrSessionNotCompleted", err)
	}

	if _, err := f.service.CompleteSession(ctx, 1, match.ID, session.ID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if _, err := f.service.RateSession(ctx, 1, match.ID, session.ID, 5); err != nil {
		t.Fatalf("RateSession: %v", err)
	}
	if got := f.store.ratings[2]; len(got) != 1 || got[0] != 5 {
		t.Errorf("rating not applied to user 2: %v", got)
	}

	// Same side cannot rate twice
	if _, err := f.service.RateSession(ctx, 1, match.ID, session.ID, 4); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("got %v, want ErrAlreadyRated", err)
	}

	// Other side rates independently
	if _, err := f.service.RateSession(ctx, 2, match.ID, session.ID, 3); err != nil {
		t.Fatalf("RateSession by other side: %v", err)
	}
	if got := f.store.ratings[1]; len(got) != 1 || got[0] != 3 {
		t.Errorf("rating not applied to user 1: %v", got)
	}
}

func TestRateSession_WrongMatch(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	f.store.users[3] = testUser(3,
		offers(users.OfferedSkill{Name: "Chess", Proficiency: "Expert"}),
		wants(users.WantedSkill{Name: "JavaScript", Priority: "Low"}),
	)

	first, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 2})
	f.service.Respond(ctx, 2, first.ID, true)
	session, _ := f.service.ScheduleSession(ctx, 1, first.ID, &ScheduleSessionRequest{
		ScheduledAt:     testNow.Add(24 * time.Hour),
		DurationMinutes: 30,
	})

	second, _ := f.service.Create(ctx, 1, &CreateMatchRequest{TargetUserID: 3})

	if _, err := f.service.RateSession(ctx, 1, second.ID, session.ID, 5); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("got %v, want ErrSessionNotFound for session on another match", err)
	}
}

func TestDiscover_UsesDefaultLimit(t *testing.T) {
	f := newServiceFixture()

	for i := int64(10); i < 40; i++ {
		u := pianoCandidate(i, 4.0, testNow)
		u.SkillsOffered = users.SkillsOffered{{Name: "Yoga", Proficiency: "Advanced"}}
		u.SkillsWanted = users.SkillsWanted{{Name: "JavaScript", Priority: "High"}}
		f.store.users[i] = u
		f.store.candidates = append(f.store.candidates, u)
	}

	results, err := f.service.Discover(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 10 {
		t.Errorf("got %d results, want default limit 10", len(results))
	}
}
