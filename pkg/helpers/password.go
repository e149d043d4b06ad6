package helpers

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored hash.
const PasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordTooLong reports whether plain is longer than bcrypt can hash.
// The limit counts bytes, not characters.
func PasswordTooLong(plain string) bool {
	return len(plain) > MaxPasswordBytes
}

// PasswordHasher hashes and verifies passwords with bcrypt. The CPU work runs
// on its own goroutine so a cancelled request stops waiting for it.
type PasswordHasher struct {
	Cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{Cost: PasswordCost}
}

// Hash returns a salted bcrypt digest of plain.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	if PasswordTooLong(plain) {
		return "", ErrPasswordTooLong
	}
	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost())
		ch <- result{b: b, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", r.err
		}
		return string(r.b), nil
	}
}

// Verify reports whether plain matches hash. Malformed hashes and
// cancellation count as a mismatch.
func (h *PasswordHasher) Verify(ctx context.Context, plain, hash string) bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- CompareHashAndPassword(hash, plain)
	}()
	select {
	case <-ctx.Done():
		return false
	case ok := <-ch:
		return ok
	}
}

func (h *PasswordHasher) cost() int {
	if h == nil || h.Cost == 0 {
		return PasswordCost
	}
	return h.Cost
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
