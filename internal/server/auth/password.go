package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultCost is the bcrypt work factor used unless configured otherwise.
	DefaultCost = 12

	// MaxSecretLength is the longest plaintext bcrypt can digest without
	// silently truncating it.
	MaxSecretLength = 72
)

// PasswordHasher turns plaintext secrets into bcrypt digests and checks
// plaintexts against stored digests.
//
// bcrypt is CPU bound by design, so at most `workers` computations run at the
// same time; other callers wait for a slot. The context passed to Hash and
// Verify only bounds that wait. Once a computation starts it runs to
// completion. A PasswordHasher is safe for concurrent use.
type PasswordHasher struct {
	cost  int
	slots *semaphore.Weighted
	dummy []byte
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. A workers
// value <= 0 means runtime.NumCPU().
func NewPasswordHasher(cost, workers int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: bcrypt cost %d outside [%d, %d]", ErrInvalidInput, cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// digest of a random secret nobody knows, compared against for unknown accounts
	filler, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(filler), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt: %w", err)
	}

	return &PasswordHasher{
		cost:  cost,
		slots: semaphore.NewWeighted(int64(workers)),
		dummy: dummy,
	}, nil
}

// Cost returns the configured bcrypt work factor.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash returns a fresh digest of plaintext. The digest embeds a random salt
// and the work factor, so hashing the same plaintext twice yields different
// digests that both verify.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := validateSecret(plaintext); err != nil {
		return "", err
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// a digest that is not a bcrypt encoding yields ErrCorruptDigest.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if _, err := bcrypt.Cost([]byte(digest)); err != nil {
		return false, fmt.Errorf("%w: %v", ErrCorruptDigest, err)
	}
	if plaintext == "" || len(plaintext) > MaxSecretLength {
		return false, nil
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrCorruptDigest, err)
	}
}

// CompareDummy spends the same work as Verify against a digest no plaintext
// is known for. Login uses it for unknown accounts so that response time does
// not reveal whether an email is registered.
func (h *PasswordHasher) CompareDummy(ctx context.Context, plaintext string) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return
	}
	defer h.slots.Release(1)

	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plaintext))
}

func validateSecret(plaintext string) error {
	if plaintext == "" {
		return fmt.Errorf("%w: empty secret", ErrInvalidInput)
	}
	if len(plaintext) > MaxSecretLength {
		return fmt.Errorf("%w: secret longer than %d bytes", ErrInvalidInput, MaxSecretLength)
	}
	return nil
}
