// Package mock provides in-memory implementations of the repository
// interfaces for tests.
package mock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"ski-portal/internal/data/entity"
	"ski-portal/internal/data/repository"

	"github.com/google/uuid"
)

// ErrSimulated is a convenience error for the *Error hooks.
var ErrSimulated = errors.New("simulated database error")

// Store is the shared state behind every mock repository.
type Store struct {
	mu sync.RWMutex

	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.Session // by token
	resorts  map[uuid.UUID]*entity.Resort
	reviews  map[uuid.UUID]*entity.Review

	// Error simulation
	FindSessionError  error
	FindUserError     error
	FindResortError   error
	FindReviewError   error
	UpsertReviewError error
	UpdateRatingError error
	FindFactsError    error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.Session),
		resorts:  make(map[uuid.UUID]*entity.Resort),
		reviews:  make(map[uuid.UUID]*entity.Review),
	}
}

// Repository wires the store into a repository.Repository.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		User:    &Users{s: s},
		Session: &Sessions{s: s},
		Resort:  &Resorts{s: s},
		Review:  &Reviews{s: s},
	}
}

// AddUser seeds a user and returns it.
func (s *Store) AddUser(username, email, passwordHash string, isAdmin bool) *entity.User {
	now := time.Now()
	u := &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
		IsActive:     true,
	}
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	return u
}

// AddSession seeds a session for userID expiring after ttl.
func (s *Store) AddSession(userID uuid.UUID, ttl time.Duration) *entity.Session {
	now := time.Now()
	sess := &entity.Session{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
		UserID:     userID,
		Token:      uuid.New(),
		ExpiresAt:  now.Add(ttl),
	}
	s.mu.Lock()
	s.sessions[sess.Token] = sess
	s.mu.Unlock()
	return sess
}

// AddResort seeds a resort.
func (s *Store) AddResort(name, state string, lat, lon float64) *entity.Resort {
	now := time.Now()
	r := &entity.Resort{
		Base:      entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		State:     state,
		Latitude:  lat,
		Longitude: lon,
	}
	s.mu.Lock()
	s.resorts[r.ID] = r
	s.mu.Unlock()
	return r
}

// Deactivate clears the active flag of a user.
func (s *Store) Deactivate(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.IsActive = false
	}
}

// AddReview seeds a review created at the given time. Resort aggregates are
// not touched.
func (s *Store) AddReview(userID, resortID uuid.UUID, rating *int, comment *string, createdAt time.Time) *entity.Review {
	r := &entity.Review{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		UserID:       userID,
		ResortID:     resortID,
		Rating:       rating,
		Comment:      comment,
	}
	s.mu.Lock()
	s.reviews[r.ID] = r
	s.mu.Unlock()
	return r
}

// Resort returns a copy of the stored resort, or nil.
func (s *Store) Resort(id uuid.UUID) *entity.Resort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resorts[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

// User returns a copy of the stored user, or nil.
func (s *Store) User(id uuid.UUID) *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

// ReviewCount returns the number of stored reviews.
func (s *Store) ReviewCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// ==================== USERS ====================

type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (m *Users) Create(_ context.Context, user *entity.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *Users) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if m.s.FindUserError != nil {
		return nil, m.s.FindUserError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Users) findBy(match func(*entity.User) bool) *entity.User {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, u := range m.s.users {
		if u.DeletedAt == nil && match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *Users) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return m.findBy(func(u *entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (m *Users) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return m.findBy(func(u *entity.User) bool { return strings.EqualFold(u.Username, username) }), nil
}

func (m *Users) active() []*entity.User {
	var users []*entity.User
	for _, u := range m.s.users {
		if u.DeletedAt == nil {
			cp := *u
			users = append(users, &cp)
		}
	}
	slices.SortFunc(users, func(a, b *entity.User) int {
		if a.IsAdmin != b.IsAdmin {
			if a.IsAdmin {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users
}

func (m *Users) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return page(m.active(), limit, offset), nil
}

func (m *Users) CountAll(_ context.Context) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return int64(len(m.active())), nil
}

func (m *Users) SetAdmin(_ context.Context, id uuid.UUID, isAdmin bool) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return fmt.Errorf("user %s not found", id)
	}
	u.IsAdmin = isAdmin
	return nil
}

func (m *Users) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[id]
	if !ok || u.DeletedAt != nil {
		return fmt.Errorf("user %s not found", id)
	}
	now := time.Now()
	u.DeletedAt = &now
	u.IsActive = false
	return nil
}

// ==================== SESSIONS ====================

type Sessions struct{ s *Store }

var _ repository.SessionRepository = (*Sessions)(nil)

func (m *Sessions) Create(_ context.Context, session *entity.Session) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *session
	m.s.sessions[session.Token] = &cp
	return nil
}

func (m *Sessions) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	if m.s.FindSessionError != nil {
		return nil, m.s.FindSessionError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	sess, ok := m.s.sessions[token]
	if !ok || sess.RevokedAt != nil || !sess.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (m *Sessions) Revoke(_ context.Context, token uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sess, ok := m.s.sessions[token]
	if !ok || sess.RevokedAt != nil {
		return fmt.Errorf("session not found or already revoked")
	}
	now := time.Now()
	sess.RevokedAt = &now
	return nil
}

func (m *Sessions) RevokeAllUserSessions(_ context.Context, userID uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now()
	for _, sess := range m.s.sessions {
		if sess.UserID == userID && sess.RevokedAt == nil {
			sess.RevokedAt = &now
		}
	}
	return nil
}

func (m *Sessions) CleanExpiredSessions(_ context.Context) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	now := time.Now()
	for token, sess := range m.s.sessions {
		if sess.ExpiresAt.Before(now) || sess.RevokedAt != nil {
			delete(m.s.sessions, token)
			n++
		}
	}
	return n, nil
}

// ==================== RESORTS ====================

type Resorts struct{ s *Store }

var _ repository.ResortRepository = (*Resorts)(nil)

func (m *Resorts) Create(_ context.Context, resort *entity.Resort) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *resort
	m.s.resorts[resort.ID] = &cp
	return nil
}

func (m *Resorts) FindByID(_ context.Context, id uuid.UUID) (*entity.Resort, error) {
	if m.s.FindResortError != nil {
		return nil, m.s.FindResortError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.resorts[id]
	if !ok || r.DeletedAt != nil {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *Resorts) filtered(filter entity.ResortFilter) []*entity.Resort {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []*entity.Resort
	for _, r := range m.s.resorts {
		if r.DeletedAt != nil {
			continue
		}
		if filter.State != "" && r.State != filter.State {
			continue
		}
		if search != "" {
			city := ""
			if r.City != nil {
				city = *r.City
			}
			if !strings.Contains(strings.ToLower(r.Name), search) && !strings.Contains(strings.ToLower(city), search) {
				continue
			}
		}
		cp := *r
		out = append(out, &cp)
	}

	slices.SortFunc(out, func(a, b *entity.Resort) int {
		switch filter.Sort {
		case entity.ResortSortRating:
			if a.AverageRating != b.AverageRating {
				if a.AverageRating > b.AverageRating {
					return -1
				}
				return 1
			}
		case entity.ResortSortReviews:
			if a.ReviewCount != b.ReviewCount {
				return b.ReviewCount - a.ReviewCount
			}
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func (m *Resorts) FindAll(_ context.Context, filter entity.ResortFilter, limit, offset int) ([]*entity.Resort, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return page(m.filtered(filter), limit, offset), nil
}

func (m *Resorts) Count(_ context.Context, filter entity.ResortFilter) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return int64(len(m.filtered(filter))), nil
}

func (m *Resorts) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var ids []uuid.UUID
	for _, r := range m.filtered(entity.ResortFilter{}) {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (m *Resorts) ListStates(_ context.Context) ([]string, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var states []string
	for _, r := range m.filtered(entity.ResortFilter{}) {
		if !slices.Contains(states, r.State) {
			states = append(states, r.State)
		}
	}
	slices.Sort(states)
	return states, nil
}

func (m *Resorts) Update(_ context.Context, resort *entity.Resort) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.resorts[resort.ID]
	if !ok || existing.DeletedAt != nil {
		return fmt.Errorf("resort %s not found", resort.ID)
	}
	cp := *resort
	cp.AverageRating = existing.AverageRating
	cp.ReviewCount = existing.ReviewCount
	m.s.resorts[resort.ID] = &cp
	return nil
}

func (m *Resorts) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.resorts[id]
	if !ok || r.DeletedAt != nil {
		return fmt.Errorf("resort %s not found", id)
	}
	now := time.Now()
	r.DeletedAt = &now
	return nil
}

func (m *Resorts) UpdateRating(_ context.Context, id uuid.UUID, avgRating float64, reviewCount int64) error {
	if m.s.UpdateRatingError != nil {
		return m.s.UpdateRatingError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.resorts[id]
	if !ok || r.DeletedAt != nil {
		return fmt.Errorf("resort %s not found", id)
	}
	r.AverageRating = avgRating
	r.ReviewCount = int(reviewCount)
	return nil
}

// ==================== REVIEWS ====================

type Reviews struct{ s *Store }

var _ repository.ReviewRepository = (*Reviews)(nil)

func (m *Reviews) Upsert(_ context.Context, review *entity.Review) (bool, error) {
	if m.s.UpsertReviewError != nil {
		return false, m.s.UpsertReviewError
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.reviews {
		if existing.UserID == review.UserID && existing.ResortID == review.ResortID {
			existing.Rating = review.Rating
			existing.Comment = review.Comment
			existing.UpdatedAt = review.UpdatedAt
			review.ID = existing.ID
			review.CreatedAt = existing.CreatedAt
			return false, nil
		}
	}
	cp := *review
	m.s.reviews[review.ID] = &cp
	return true, nil
}

func (m *Reviews) FindByID(_ context.Context, id uuid.UUID) (*entity.Review, error) {
	if m.s.FindReviewError != nil {
		return nil, m.s.FindReviewError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// visible mirrors the SQL rule that reviews by deleted users are hidden.
func (m *Reviews) visible(r *entity.Review) bool {
	u := m.s.users[r.UserID]
	return u != nil && u.DeletedAt == nil
}

func (m *Reviews) details(match func(*entity.Review, *entity.Resort) bool) []*entity.ReviewDetail {
	var out []*entity.ReviewDetail
	for _, r := range m.s.reviews {
		resort := m.s.resorts[r.ResortID]
		if resort == nil || !match(r, resort) {
			continue
		}
		d := &entity.ReviewDetail{Review: *r, ResortName: resort.Name}
		if u := m.s.users[r.UserID]; u != nil {
			d.Username = u.Username
			d.Email = u.Email
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *entity.ReviewDetail) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out
}

func (m *Reviews) FindByResortID(_ context.Context, resortID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	all := m.details(func(r *entity.Review, _ *entity.Resort) bool { return r.ResortID == resortID && m.visible(r) })
	return page(all, limit, offset), nil
}

func (m *Reviews) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.ReviewDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	all := m.details(func(r *entity.Review, rs *entity.Resort) bool {
		return r.UserID == userID && rs.DeletedAt == nil
	})
	return page(all, limit, offset), nil
}

func (m *Reviews) FindByUserAndResort(_ context.Context, userID, resortID uuid.UUID) (*entity.Review, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, r := range m.s.reviews {
		if r.UserID == userID && r.ResortID == resortID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Reviews) FindRecent(_ context.Context, limit int) ([]*entity.ReviewDetail, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	all := m.details(func(r *entity.Review, rs *entity.Resort) bool { return rs.DeletedAt == nil && m.visible(r) })
	return page(all, limit, 0), nil
}

func (m *Reviews) CountByResortID(_ context.Context, resortID uuid.UUID) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var n int64
	for _, r := range m.s.reviews {
		if r.ResortID == resortID && m.visible(r) {
			n++
		}
	}
	return n, nil
}

func (m *Reviews) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return int64(len(m.details(func(r *entity.Review, rs *entity.Resort) bool {
		return r.UserID == userID && rs.DeletedAt == nil
	}))), nil
}

func (m *Reviews) CountAll(_ context.Context) (int64, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var n int64
	for _, r := range m.s.reviews {
		if m.visible(r) {
			n++
		}
	}
	return n, nil
}

func (m *Reviews) ResortIDsByUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var ids []uuid.UUID
	for _, r := range m.s.reviews {
		if r.UserID == userID && !slices.Contains(ids, r.ResortID) {
			ids = append(ids, r.ResortID)
		}
	}
	return ids, nil
}

func (m *Reviews) Delete(_ context.Context, id uuid.UUID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.reviews[id]; !ok {
		return fmt.Errorf("review %s not found", id)
	}
	delete(m.s.reviews, id)
	return nil
}

func (m *Reviews) GetResortReviewStats(_ context.Context, resortID uuid.UUID) (*entity.RatingStats, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var stats entity.RatingStats
	var sum int64
	for _, r := range m.s.reviews {
		if r.ResortID != resortID || !m.visible(r) {
			continue
		}
		stats.ReviewCount++
		if r.Rating == nil {
			continue
		}
		stats.Distribution[*r.Rating]++
		stats.RatingCount++
		sum += int64(*r.Rating)
	}
	if stats.RatingCount > 0 {
		stats.AverageRating = float64(sum) / float64(stats.RatingCount)
	}
	return &stats, nil
}

func (m *Reviews) FindAllFacts(_ context.Context) ([]entity.ReviewFact, error) {
	if m.s.FindFactsError != nil {
		return nil, m.s.FindFactsError
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	var facts []entity.ReviewFact
	for _, r := range m.s.reviews {
		resort := m.s.resorts[r.ResortID]
		if resort == nil || resort.DeletedAt != nil || !m.visible(r) {
			continue
		}
		facts = append(facts, entity.ReviewFact{
			ReviewID:    r.ID,
			ResortID:    r.ResortID,
			ResortName:  resort.Name,
			ResortState: resort.State,
			Rating:      r.Rating,
			CreatedAt:   r.CreatedAt,
		})
	}
	return facts, nil
}
