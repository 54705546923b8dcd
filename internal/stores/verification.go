package stores

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrEthical07/authshield/internal"
)

var (
	ErrVerificationNotFound    = errors.New("verification record not found")
	ErrVerificationUnavailable = errors.New("verification store unavailable")
)

// VerificationRecord is what a verification token unlocks.
type VerificationRecord struct {
	Email     string
	ExpiresAt time.Time
}

func (r VerificationRecord) expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// tokenKey is the storage key for a token. Raw tokens are never used as keys.
func tokenKey(token string) string {
	return internal.HashToken(token)
}

// MemoryVerificationStore keeps verification records in process.
//
// Besides the record, Save remembers the latest token per email so it can be
// looked up with Pending. That lookup stands in for delivering the token by
// mail.
type MemoryVerificationStore struct {
	mu      sync.Mutex
	records map[string]VerificationRecord
	pending map[string]string
}

func NewMemoryVerificationStore() *MemoryVerificationStore {
	return &MemoryVerificationStore{
		records: make(map[string]VerificationRecord),
		pending: make(map[string]string),
	}
}

func (s *MemoryVerificationStore) Save(_ context.Context, token string, rec VerificationRecord, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tokenKey(token)] = rec
	s.pending[rec.Email] = token
	return nil
}

// Consume deletes the record for token and returns it. Expired and unknown
// tokens both yield ErrVerificationNotFound.
func (s *MemoryVerificationStore) Consume(_ context.Context, token string, now time.Time) (VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := tokenKey(token)
	rec, ok := s.records[key]
	if !ok {
		return VerificationRecord{}, ErrVerificationNotFound
	}
	delete(s.records, key)
	if s.pending[rec.Email] == token {
		delete(s.pending, rec.Email)
	}
	if rec.expired(now) {
		return VerificationRecord{}, ErrVerificationNotFound
	}
	return rec, nil
}

func (s *MemoryVerificationStore) Pending(_ context.Context, email string, now time.Time) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, ok := s.pending[email]
	if !ok {
		return "", false, nil
	}
	rec, ok := s.records[tokenKey(token)]
	if !ok || rec.expired(now) {
		return "", false, nil
	}
	return token, true, nil
}

func (s *MemoryVerificationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
