package boltdb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.etcd.io/bbolt"
)

// Add stores a fingerprint with the token's natural expiry.
// Overwriting an existing fingerprint is not an error.
func (s *Storage) Add(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRevoked)
		value := strconv.FormatInt(expiresAt.Unix(), 10)
		return b.Put([]byte(fingerprint), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to store revocation: %w", err)
	}
	return nil
}

// Snapshot returns all stored fingerprints with their expiries.
func (s *Storage) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRevoked)
		return b.ForEach(func(k, v []byte) error {
			unix, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt expiry for fingerprint %s: %w", k, err)
			}
			out[string(k)] = time.Unix(unix, 0)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read revocations: %w", err)
	}

	return out, nil
}

// DeleteExpired removes fingerprints whose expiry is before now.
// Returns the number of deleted entries.
func (s *Storage) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRevoked)

		// Collect first: deleting inside ForEach invalidates the cursor.
		var expired [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			unix, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt expiry for fingerprint %s: %w", k, err)
			}
			if time.Unix(unix, 0).Before(now) {
				key := make([]byte, len(k))
				copy(key, k)
				expired = append(expired, key)
			}
			return nil
		}); err != nil {
			return err
		}

		for _, key := range expired {
			if err := b.Delete(key); err != nil {
				return fmt.Errorf("failed to delete fingerprint: %w", err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune revocations: %w", err)
	}

	return deleted, nil
}
