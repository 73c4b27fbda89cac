package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/auth-account-service/internal/model"
)

// In-memory implementations of the store contracts. They back the
// service and handler tests and enforce the same invariants as the SQL
// repositories: unique emails, unique refresh tokens, and atomic
// conditional transitions guarded by a mutex instead of row-level SQL.

// MemoryUserStore keeps users in a map keyed by id.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1, users: make(map[uint64]model.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, name, email, passwordHash string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, u := range s.users {
		if u.Email == email {
			return model.User{}, ErrEmailExists
		}
	}
	now := time.Now().UTC()
	u := model.User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	s.nextID++
	return u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.TrimSpace(email) {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (s *MemoryUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	return s.mutate(id, func(u *model.User) { u.LastLogin = &at })
}

func (s *MemoryUserStore) SetEmailVerified(_ context.Context, id uint64) error {
	return s.mutate(id, func(u *model.User) { u.EmailVerified = true })
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	return s.mutate(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (s *MemoryUserStore) SetActive(_ context.Context, id uint64, active bool) error {
	return s.mutate(id, func(u *model.User) { u.IsActive = active })
}

func (s *MemoryUserStore) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *MemoryUserStore) mutate(id uint64, fn func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

// MemorySessionStore keeps sessions in a map keyed by refresh token.
type MemorySessionStore struct {
	mu       sync.Mutex
	nextID   uint64
	sessions map[string]model.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{nextID: 1, sessions: make(map[string]model.Session)}
}

func (s *MemorySessionStore) Insert(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextID
	s.nextID++
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	sess.LastActivity = sess.CreatedAt
	s.sessions[sess.RefreshToken] = *sess
	return nil
}

func (s *MemorySessionStore) GetActiveByRefreshToken(_ context.Context, refreshToken string) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[refreshToken]
	if !ok || !sess.IsActive {
		return model.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Deactivate(_ context.Context, refreshToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[refreshToken]
	if !ok || !sess.IsActive {
		return false, nil
	}
	sess.IsActive = false
	s.sessions[refreshToken] = sess
	return true, nil
}

func (s *MemorySessionStore) DeactivateAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, sess := range s.sessions {
		if sess.UserID == userID && sess.IsActive {
			sess.IsActive = false
			s.sessions[tok] = sess
		}
	}
	return nil
}

func (s *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for tok, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, tok)
			n++
		}
	}
	return n, nil
}

// MemoryOtpStore keeps codes in a map keyed by id.
type MemoryOtpStore struct {
	mu     sync.Mutex
	nextID uint64
	otps   map[uint64]model.Otp
}

func NewMemoryOtpStore() *MemoryOtpStore {
	return &MemoryOtpStore{nextID: 1, otps: make(map[uint64]model.Otp)}
}

func (s *MemoryOtpStore) Insert(_ context.Context, o *model.Otp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.ID = s.nextID
	o.Status = model.OtpStatusPending
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	s.nextID++
	s.otps[o.ID] = *o
	return nil
}

func (s *MemoryOtpStore) FindPending(_ context.Context, email, code, otpType string) (model.Otp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		best  model.Otp
		found bool
	)
	for _, o := range s.otps {
		if o.Email == email && o.Code == code && o.Type == otpType && o.Status == model.OtpStatusPending {
			if !found || o.ID > best.ID {
				best = o
				found = true
			}
		}
	}
	if !found {
		return model.Otp{}, ErrNotFound
	}
	return best, nil
}

func (s *MemoryOtpStore) Consume(_ context.Context, id uint64, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.otps[id]
	if !ok || o.Status != model.OtpStatusPending {
		return false, nil
	}
	o.Status = model.OtpStatusUsed
	o.UsedAt = &usedAt
	s.otps[id] = o
	return true, nil
}

func (s *MemoryOtpStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, o := range s.otps {
		if o.ExpiresAt.Before(now) {
			delete(s.otps, id)
			n++
		}
	}
	return n, nil
}
