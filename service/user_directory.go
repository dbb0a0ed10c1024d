package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aiwolfdial/werewolf-room-server/model"
)

var ErrUserNotFound = errors.New("ユーザーが見つかりません")

// UserRepository is the account store behind the directory.
type UserRepository interface {
	FindUser(ctx context.Context, id string) (model.User, error)
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewMemoryUserRepository(users ...model.User) *MemoryUserRepository {
	repository := &MemoryUserRepository{users: make(map[string]model.User)}
	for _, user := range users {
		repository.users[user.ID] = user
	}
	return repository
}

func (m *MemoryUserRepository) Put(user model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MemoryUserRepository) FindUser(ctx context.Context, id string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return user, nil
}

// UserDirectory caches display config in front of a repository. User never
// blocks: a miss or a stale entry schedules a refresh in the background.
type UserDirectory struct {
	repository UserRepository
	ttl        time.Duration
	entries    sync.Map
	inflight   sync.Map
	now        func() time.Time
}

type userEntry struct {
	user      model.User
	expiresAt time.Time
}

func NewUserDirectory(repository UserRepository, ttl time.Duration) *UserDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &UserDirectory{
		repository: repository,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (d *UserDirectory) User(id string) (model.User, bool) {
	value, ok := d.entries.Load(id)
	if !ok {
		d.refresh(id)
		return model.User{}, false
	}
	entry := value.(userEntry)
	if d.now().After(entry.expiresAt) {
		d.refresh(id)
	}
	return entry.user, true
}

// Prefetch loads ids synchronously. Call it before a room needs the names.
func (d *UserDirectory) Prefetch(ctx context.Context, ids ...string) error {
	var errs []error
	for _, id := range ids {
		if err := d.fetch(ctx, id); err != nil && !errors.Is(err, ErrUserNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *UserDirectory) Invalidate(id string) {
	d.entries.Delete(id)
}

func (d *UserDirectory) refresh(id string) {
	if _, loaded := d.inflight.LoadOrStore(id, struct{}{}); loaded {
		return
	}
	go func() {
		defer d.inflight.Delete(id)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.fetch(ctx, id); err != nil {
			slog.Warn("ユーザー情報の取得に失敗しました", "user", id, "error", err)
		}
	}()
}

func (d *UserDirectory) fetch(ctx context.Context, id string) error {
	user, err := d.repository.FindUser(ctx, id)
	if err != nil {
		return err
	}
	d.entries.Store(id, userEntry{user: user, expiresAt: d.now().Add(d.ttl)})
	return nil
}
