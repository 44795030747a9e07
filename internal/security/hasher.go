package security

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrPasswordMismatch is returned by Compare when the password does not match the hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// PasswordHasher wraps bcrypt and bounds how many hashes run at once, so a burst
// of logins cannot starve the rest of the server of CPU.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted

	// dummyHash is compared against when the account does not exist.
	dummyHash []byte
}

func NewPasswordHasher(cost int, maxConcurrent int64) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = int64(2 * runtime.GOMAXPROCS(0))
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &PasswordHasher{
		cost:      cost,
		slots:     semaphore.NewWeighted(maxConcurrent),
		dummyHash: dummy,
	}, nil
}

func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare returns nil when password matches hash and ErrPasswordMismatch when it
// does not. Any other error means the hash itself is unusable.
func (h *PasswordHasher) Compare(ctx context.Context, hash string, password string) error {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// CompareDummy burns the same time as a real comparison. Login calls it for
// unknown emails so response timing does not reveal which accounts exist.
func (h *PasswordHasher) CompareDummy(ctx context.Context, password string) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return
	}
	defer h.slots.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
