// internal/matching/service.go
// Match lifecycle business logic

package matching

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/skillbarter/backend/internal/notification"
)

// Common errors
var (
	ErrMatchNotFound       = errors.New("match not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSelfMatch           = errors.New("cannot match with yourself")
	ErrDuplicateMatch      = errors.New("active match already exists with this user")
	ErrNotParticipant      = errors.New("not a participant in this match")
	ErrNotRecipient        = errors.New("only the recipient can respond to a match request")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrMatchNotAccepted    = errors.New("match is not accepted")
	ErrSessionNotCompleted = errors.New("session is not completed")
	ErrAlreadyRated        = errors.New("session already rated")
)

// Skill points awarded to each participant when a match completes
const completionSkillPoints = 10

// UserStore is the view of the user store the match lifecycle needs
type UserStore interface {
	UserDirectory
	ApplyRating(ctx context.Context, userID int64, rating int) error
	AddSkillPoints(ctx context.Context, userID int64, points int) error
}

// Service defines match business operations
type Service interface {
	Discover(ctx context.Context, userID int64, limit int) ([]*PotentialMatch, error)
	Preview(ctx context.Context, userID, otherID int64) (*PotentialMatch, error)
	Create(ctx context.Context, initiatorID int64, req *CreateMatchRequest) (*Match, error)
	Respond(ctx context.Context, userID, matchID int64, accept bool) (*Match, error)
	Complete(ctx context.Context, userID, matchID int64) (*Match, error)
	Cancel(ctx context.Context, userID, matchID int64) (*Match, error)
	Get(ctx context.Context, userID, matchID int64) (*Match, error)
	List(ctx context.Context, userID int64, status string, page, limit int) ([]*Match, int, error)
	ScheduleSession(ctx context.Context, userID, matchID int64, req *ScheduleSessionRequest) (*Session, error)
	ListSessions(ctx context.Context, userID, matchID int64) ([]*Session, error)
	CompleteSession(ctx context.Context, userID, matchID, sessionID int64) (*Session, error)
	RateSession(ctx context.Context, userID, matchID, sessionID int64, rating int) (*Session, error)
}

// matchService implements Service
type matchService struct {
	repo         Repository
	discovery    *Discovery
	engine       *Engine
	userStore    UserStore
	notifier     notification.Service
	metrics      *Metrics
	defaultLimit int
}

// NewService creates a match service
func NewService(repo Repository, discovery *Discovery, engine *Engine, userStore UserStore, notifier notification.Service, metrics *Metrics, defaultLimit int) Service {
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	return &matchService{
		repo:         repo,
		discovery:    discovery,
		engine:       engine,
		userStore:    userStore,
		notifier:     notifier,
		metrics:      metrics,
		defaultLimit: defaultLimit,
	}
}

func (s *matchService) Discover(ctx context.Context, userID int64, limit int) ([]*PotentialMatch, error) {
	if limit < 1 {
		limit = s.defaultLimit
	}

	start := time.Now()
	results, err := s.discovery.FindPotentialMatches(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DiscoveriesTotal.Inc()
		s.metrics.DiscoveryDuration.Observe(time.Since(start).Seconds())
		for _, r := range results {
			s.metrics.CandidatesScored.Inc()
			s.metrics.MatchScores.Observe(float64(r.Score))
		}
	}
	return results, nil
}

func (s *matchService) Preview(ctx context.Context, userID, otherID int64) (*PotentialMatch, error) {
	if userID == otherID {
		return nil, ErrSelfMatch
	}
	return s.discovery.Preview(ctx, userID, otherID)
}

// Create freezes the score and exchange proposals at request time. Later
// profile edits never change an existing match.
func (s *matchService) Create(ctx context.Context, initiatorID int64, req *CreateMatchRequest) (*Match, error) {
	if initiatorID == req.TargetUserID {
		return nil, ErrSelfMatch
	}

	initiator, err := s.userStore.GetByID(ctx, initiatorID)
	if err != nil {
		return nil, err
	}
	target, err := s.userStore.GetByID(ctx, req.TargetUserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetActiveMatchBetween(ctx, initiatorID, req.TargetUserID)
	if err != nil && !errors.Is(err, ErrMatchNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateMatch
	}

	match := &Match{
		UserAID:     initiatorID,
		UserBID:     req.TargetUserID,
		InitiatorID: initiatorID,
		Status:      StatusPending,
		Score:       s.engine.CalculateMatchScore(initiator, target),
		Exchanges:   s.engine.FindBestExchange(initiator, target),
		Message:     req.Message,
	}

	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, err
	}

	s.notifier.SendMatchRequest(target, initiator)
	if s.metrics != nil {
		s.metrics.MatchesCreated.Inc()
	}
	return match, nil
}

func (s *matchService) Respond(ctx context.Context, userID, matchID int64, accept bool) (*Match, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status != StatusPending {
		return nil, ErrInvalidTransition
	}
	if userID == match.InitiatorID {
		return nil, ErrNotRecipient
	}

	status := StatusRejected
	if accept {
		status = StatusAccepted
	}
	if err := s.repo.UpdateMatchStatus(ctx, matchID, status); err != nil {
		return nil, err
	}
	match.Status = status

	if accept {
		recipient, rerr := s.userStore.GetByID(ctx, userID)
		initiator, ierr := s.userStore.GetByID(ctx, match.InitiatorID)
		if rerr == nil && ierr == nil {
			s.notifier.SendMatchAccepted(initiator, recipient)
		}
	}
	if s.metrics != nil {
		s.metrics.MatchesByOutcome.WithLabelValues(status).Inc()
	}
	return match, nil
}

func (s *matchService) Complete(ctx context.Context, userID, matchID int64) (*Match, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status != StatusAccepted {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateMatchStatus(ctx, matchID, StatusCompleted); err != nil {
		return nil, err
	}
	match.Status = StatusCompleted

	// Both sides earn points for a finished exchange; the completion itself
	// already happened, so failures are logged and not surfaced
	for _, userID := range []int64{match.UserAID, match.UserBID} {
		if err := s.userStore.AddSkillPoints(ctx, userID, completionSkillPoints); err != nil {
			log.Printf("Failed to award skill points to user %d: %v", userID, err)
		}
	}

	if s.metrics != nil {
		s.metrics.MatchesByOutcome.WithLabelValues(StatusCompleted).Inc()
	}
	return match, nil
}

func (s *matchService) Cancel(ctx context.Context, userID, matchID int64) (*Match, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status != StatusPending && match.Status != StatusAccepted {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateMatchStatus(ctx, matchID, StatusCancelled); err != nil {
		return nil, err
	}
	match.Status = StatusCancelled

	if s.metrics != nil {
		s.metrics.MatchesByOutcome.WithLabelValues(StatusCancelled).Inc()
	}
	return match, nil
}

func (s *matchService) Get(ctx context.Context, userID, matchID int64) (*Match, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, userID int64, status string, page, limit int) ([]*Match, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListMatchesForUser(ctx, userID, status, page, limit)
}

func (s *matchService) ScheduleSession(ctx context.Context, userID, matchID int64, req *ScheduleSessionRequest) (*Session, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	if match.Status != StatusAccepted {
		return nil, ErrMatchNotAccepted
	}

	session := &Session{
		MatchID:         matchID,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Status:          SessionScheduled,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	scheduler, serr := s.userStore.GetByID(ctx, userID)
	other, oerr := s.userStore.GetByID(ctx, match.OtherParticipant(userID))
	if serr == nil && oerr == nil {
		s.notifier.SendSessionScheduled(other, scheduler, session.ScheduledAt)
	}
	if s.metrics != nil {
		s.metrics.SessionsScheduled.Inc()
	}
	return session, nil
}

func (s *matchService) ListSessions(ctx context.Context, userID, matchID int64) ([]*Session, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Participant(userID) {
		return nil, ErrNotParticipant
	}
	return s.repo.ListSessionsForMatch(ctx, matchID)
}

func (s *matchService) CompleteSession(ctx context.Context, userID, matchID, sessionID int64) (*Session, error) {
	_, session, err := s.loadMatchSession(ctx, userID, matchID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionScheduled {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateSessionStatus(ctx, sessionID, SessionCompleted); err != nil {
		return nil, err
	}
	session.Status = SessionCompleted
	return session, nil
}

// RateSession records a rating for the other participant and folds it into
// their running average.
func (s *matchService) RateSession(ctx context.Context, userID, matchID, sessionID int64, rating int) (*Session, error) {
	match, session, err := s.loadMatchSession(ctx, userID, matchID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != SessionCompleted {
		return nil, ErrSessionNotCompleted
	}

	bySideA := match.UserAID == userID
	if err := s.repo.SetSessionRating(ctx, sessionID, bySideA, rating); err != nil {
		return nil, err
	}
	if bySideA {
		session.RatingByA = &rating
	} else {
		session.RatingByB = &rating
	}

	if err := s.userStore.ApplyRating(ctx, match.OtherParticipant(userID), rating); err != nil {
		return nil, err
	}
	return session, nil
}

// loadMatchSession fetches a session and verifies both membership and that
// the session belongs to the given match.
func (s *matchService) loadMatchSession(ctx context.Context, userID, matchID, sessionID int64) (*Match, *Session, error) {
	match, err := s.repo.GetMatchByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if !match.Participant(userID) {
		return nil, nil, ErrNotParticipant
	}

	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.MatchID != matchID {
		return nil, nil, ErrSessionNotFound
	}
	return match, session, nil
}
