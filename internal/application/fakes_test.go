package application_test

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
)

// memRepo is an in-memory credential store. Each method holds the lock for
// its whole body, matching the single-statement atomicity of Postgres.
type memRepo struct {
	mu     sync.Mutex
	users  map[string]entity.User
	seq    int
	writes int

	failNextWrite error
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]entity.User{}}
}

func (r *memRepo) FindByHandleOrEmail(_ context.Context, handle, email string) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (handle != "" && u.Handle == handle) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return entity.User{}, repo.ErrNotFound
}

func (r *memRepo) FindByID(_ context.Context, id string) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entity.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (r *memRepo) Create(_ context.Context, n entity.NewUser) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Handle == n.Handle || u.Email == n.Email {
			return entity.User{}, repo.ErrDuplicate
		}
	}
	r.seq++
	now := time.Now().UTC()
	u := entity.User{
		ID:            fmt.Sprintf("u-%d", r.seq),
		Handle:        n.Handle,
		Email:         n.Email,
		DisplayName:   n.DisplayName,
		PasswordHash:  n.PasswordHash,
		AvatarURL:     n.AvatarURL,
		CoverImageURL: n.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.users[u.ID] = u
	r.writes++
	return u, nil
}

func (r *memRepo) update(id string, fn func(u *entity.User) error) (entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNextWrite; err != nil {
		r.failNextWrite = nil
		return entity.User{}, err
	}
	u, ok := r.users[id]
	if !ok {
		return entity.User{}, repo.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return entity.User{}, err
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	r.writes++
	return u, nil
}

func (r *memRepo) UpdateRefreshToken(_ context.Context, id, token string) (entity.User, error) {
	return r.update(id, func(u *entity.User) error {
		u.RefreshToken = token
		return nil
	})
}

func (r *memRepo) RotateRefreshToken(_ context.Context, id, expected, next string) (entity.User, error) {
	return r.update(id, func(u *entity.User) error {
		if u.RefreshToken != expected {
			return repo.ErrTokenMismatch
		}
		u.RefreshToken = next
		return nil
	})
}

func (r *memRepo) UpdatePasswordHash(_ context.Context, id, hash string) (entity.User, error) {
	return r.update(id, func(u *entity.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (r *memRepo) UpdateAccount(_ context.Context, id, displayName, email string) (entity.User, error) {
	r.mu.Lock()
	for oid, o := range r.users {
		if oid != id && o.Email == email {
			r.mu.Unlock()
			return entity.User{}, repo.ErrDuplicate
		}
	}
	r.mu.Unlock()
	return r.update(id, func(u *entity.User) error {
		u.DisplayName = displayName
		u.Email = email
		return nil
	})
}

func (r *memRepo) UpdateAvatar(_ context.Context, id, url string) (entity.User, error) {
	return r.update(id, func(u *entity.User) error {
		u.AvatarURL = url
		return nil
	})
}

func (r *memRepo) UpdateCoverImage(_ context.Context, id, url string) (entity.User, error) {
	return r.update(id, func(u *entity.User) error {
		u.CoverImageURL = url
		return nil
	})
}

func (r *memRepo) get(id string) entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// MockNotifier records notifications.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, template string, u entity.PublicUser, meta map[string]string) error {
	args := m.Called(ctx, template, u, meta)
	return args.Error(0)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, folder, filename, contentType, r)
	return args.String(0), args.Error(1)
}

type memCache struct {
	mu    sync.Mutex
	items map[string]entity.PublicUser
}

func newMemCache() *memCache {
	return &memCache{items: map[string]entity.PublicUser{}}
}

func (c *memCache) Get(_ context.Context, id string) (entity.PublicUser, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.items[id]
	return u, ok, nil
}

func (c *memCache) Set(_ context.Context, u entity.PublicUser) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[u.ID] = u
	return nil
}

func (c *memCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

type memIndex struct {
	mu   sync.Mutex
	docs map[string]entity.PublicUser
}

func newMemIndex() *memIndex {
	return &memIndex{docs: map[string]entity.PublicUser{}}
}

func (i *memIndex) IndexUser(_ context.Context, u entity.PublicUser) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[u.ID] = u
	return nil
}

func (i *memIndex) Search(_ context.Context, q string, size int) ([]entity.PublicUser, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := []entity.PublicUser{}
	for _, u := range i.docs {
		if strings.Contains(u.Handle, q) || strings.Contains(strings.ToLower(u.DisplayName), strings.ToLower(q)) {
			out = append(out, u)
		}
		if len(out) == size {
			break
		}
	}
	return out, nil
}

// stalled blocks every call until its context ends.
type stalled struct {
	calls atomic.Int32
}

func (s *stalled) wait(ctx context.Context) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *stalled) Insert(ctx context.Context, _ repo.AuditEntry) error { return s.wait(ctx) }

func (s *stalled) Notify(ctx context.Context, _ string, _ entity.PublicUser, _ map[string]string) error {
	return s.wait(ctx)
}

func (s *stalled) IndexUser(ctx context.Context, _ entity.PublicUser) error { return s.wait(ctx) }

func (s *stalled) Search(ctx context.Context, _ string, _ int) ([]entity.PublicUser, error) {
	return nil, s.wait(ctx)
}
