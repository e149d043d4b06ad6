package handlers_test

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
)

type memStore struct {
	mu    sync.Mutex
	users map[string]entity.User
	seq   int
}

func newMemStore() *memStore { return &memStore{users: map[string]entity.User{}} }

func (s *memStore) FindByHandleOrEmail(_ context.Context, handle, email string) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (handle != "" && u.Handle == handle) || (email != "" && u.Email == email) {
			return u, nil
		}
	}
	return entity.User{}, repo.ErrNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return entity.User{}, repo.ErrNotFound
}

func (s *memStore) Create(_ context.Context, n entity.NewUser) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Handle == n.Handle || u.Email == n.Email {
			return entity.User{}, repo.ErrDuplicate
		}
	}
	s.seq++
	now := time.Now().UTC()
	u := entity.User{
		ID: "u-" + strconv.Itoa(s.seq), Handle: n.Handle, Email: n.Email, DisplayName: n.DisplayName,
		PasswordHash: n.PasswordHash, AvatarURL: n.AvatarURL, CoverImageURL: n.CoverImageURL,
		CreatedAt: now, UpdatedAt: now,
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *memStore) mutate(id string, fn func(*entity.User) error) (entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return entity.User{}, repo.ErrNotFound
	}
	if err := fn(&u); err != nil {
		return entity.User{}, err
	}
	s.users[id] = u
	return u, nil
}

func (s *memStore) UpdateRefreshToken(_ context.Context, id, token string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error { u.RefreshToken = token; return nil })
}

func (s *memStore) RotateRefreshToken(_ context.Context, id, expected, next string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error {
		if u.RefreshToken != expected {
			return repo.ErrTokenMismatch
		}
		u.RefreshToken = next
		return nil
	})
}

func (s *memStore) UpdatePasswordHash(_ context.Context, id, hash string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error { u.PasswordHash = hash; return nil })
}

func (s *memStore) UpdateAccount(_ context.Context, id, displayName, email string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error { u.DisplayName, u.Email = displayName, email; return nil })
}

func (s *memStore) UpdateAvatar(_ context.Context, id, url string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error { u.AvatarURL = url; return nil })
}

func (s *memStore) UpdateCoverImage(_ context.Context, id, url string) (entity.User, error) {
	return s.mutate(id, func(u *entity.User) error { u.CoverImageURL = url; return nil })
}

func (s *memStore) get(id string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// fakeUploader stores nothing and returns a predictable URL.
type fakeUploader struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeUploader) Upload(_ context.Context, folder, filename, _ string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, folder+"/"+filename)
	return "https://cdn.test/" + folder + "/" + filename, nil
}
