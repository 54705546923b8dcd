package authshield

import (
	"context"
	"sync"
)

// MemoryUserProvider is an in-process UserProvider keyed by normalized
// email. It is safe for concurrent use.
type MemoryUserProvider struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

func NewMemoryUserProvider() *MemoryUserProvider {
	return &MemoryUserProvider{users: make(map[string]UserRecord)}
}

func (p *MemoryUserProvider) GetUserByEmail(_ context.Context, email string) (UserRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rec, ok := p.users[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return rec, nil
}

// CreateUser stores rec and fails with ErrAccountExists when the email is taken.
// The check and insert happen under one lock.
func (p *MemoryUserProvider) CreateUser(_ context.Context, rec UserRecord) (UserRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[rec.Email]; exists {
		return UserRecord{}, ErrAccountExists
	}
	p.users[rec.Email] = rec
	return rec, nil
}

func (p *MemoryUserProvider) UpdateUser(_ context.Context, rec UserRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[rec.Email]; !exists {
		return ErrUserNotFound
	}
	p.users[rec.Email] = rec
	return nil
}

func (p *MemoryUserProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.users)
}
