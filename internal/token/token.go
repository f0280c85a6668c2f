// Package token mints, validates and revokes bearer session tokens.
//
// Tokens are self-contained HS256 JWTs, so validation needs no database
// round-trip. Revocation is an in-memory fingerprint set guarded by a
// RWMutex; revocations are written through to an optional persistent store
// before Revoke returns, and the set is seeded from that store on startup.
package token

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RevocationStore persists token fingerprints so revocation survives
// restarts. Implementations must be safe for concurrent use.
type RevocationStore interface {
	// Add stores a fingerprint with the token's natural expiry.
	// Adding an existing fingerprint is not an error.
	Add(ctx context.Context, fingerprint string, expiresAt time.Time) error

	// Snapshot returns all stored fingerprints with their expiries.
	Snapshot(ctx context.Context) (map[string]time.Time, error)

	// DeleteExpired removes fingerprints whose expiry is before now.
	// Returns the number of deleted entries.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
}

const (
	issuer          = "identity"
	janitorInterval = 5 * time.Minute
)

// Service issues and validates session tokens bound to a subject.
type Service struct {
	secret  []byte
	ttl     time.Duration
	store   RevocationStore
	logger  *slog.Logger
	mu      sync.RWMutex
	revoked map[string]time.Time // fingerprint -> natural expiry
	stopC   chan struct{}
	stop    sync.Once
}

// NewService creates a token service. store may be nil, in which case
// revocations live only in memory. The janitor goroutine pruning expired
// revocations starts immediately; call Stop to terminate it.
func NewService(ctx context.Context, secret string, ttl time.Duration, store RevocationStore, logger *slog.Logger) (*Service, error) {
	if secret == "" {
		return nil, errors.New("token secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &Service{
		secret:  []byte(secret),
		ttl:     ttl,
		store:   store,
		logger:  logger,
		revoked: make(map[string]time.Time),
		stopC:   make(chan struct{}),
	}

	// Seed the in-memory set so restarts do not resurrect revoked tokens.
	if store != nil {
		snapshot, err := store.Snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load revocation snapshot: %w", err)
		}
		now := time.Now()
		for fp, expiresAt := range snapshot {
			if expiresAt.After(now) {
				s.revoked[fp] = expiresAt
			}
		}
	}

	go s.janitor()

	return s, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Stop terminates the janitor goroutine.
func (s *Service) Stop() {
	s.stop.Do(func() {
		close(s.stopC)
	})
}

// Issue mints a signed token bound to subject, expiring after the
// configured TTL.
func (s *Service) Issue(subject string) (string, error) {
	if subject == "" {
		return "", errors.New("subject cannot be empty")
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			// IssuedAt has second granularity; the random ID keeps two
			// tokens minted for the same subject distinct strings.
			ID: uuid.NewString(),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Validate checks signature, expiry and revocation, in that order, and
// returns the bound subject.
func (s *Service) Validate(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrMalformedToken
	}

	if s.isRevoked(Fingerprint(tokenString)) {
		return "", ErrRevokedToken
	}

	return claims.Subject, nil
}

// Revoke adds the token's fingerprint to the revocation set and writes it
// through to the persistent store before returning, so all subsequent
// Validate calls, on any goroutine, reject the token. Idempotent; revoking
// an already-expired or unverifiable token is not an error.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	claims, err := s.parseLenient(tokenString)
	if err != nil {
		// A token that never verifies cannot authenticate anyone;
		// there is nothing to revoke.
		return nil
	}

	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	fp := Fingerprint(tokenString)

	s.mu.Lock()
	s.revoked[fp] = expiresAt
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Add(ctx, fp, expiresAt); err != nil {
			return fmt.Errorf("failed to persist revocation: %w", err)
		}
	}

	return nil
}

// PruneExpired drops revocation entries whose token has expired anyway.
// The expiry check in Validate already rejects those tokens, so pruning
// only bounds the set's size.
func (s *Service) PruneExpired(ctx context.Context) (int, error) {
	now := time.Now()

	s.mu.Lock()
	pruned := 0
	for fp, expiresAt := range s.revoked {
		if expiresAt.Before(now) {
			delete(s.revoked, fp)
			pruned++
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		if _, err := s.store.DeleteExpired(ctx, now); err != nil {
			return pruned, fmt.Errorf("failed to prune revocation store: %w", err)
		}
	}

	return pruned, nil
}

// Fingerprint returns the SHA-256 hex digest of a token string. The
// revocation set stores fingerprints so it never holds a usable credential.
func Fingerprint(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}

func (s *Service) isRevoked(fingerprint string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[fingerprint]
	return ok
}

// parse verifies signature and registered claims.
func (s *Service) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// parseLenient verifies the signature but ignores expiry, so an expired
// token can still be revoked without error.
func (s *Service) parseLenient(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, err := parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) keyFunc(tok *jwt.Token) (interface{}, error) {
	if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
	}
	return s.secret, nil
}

func (s *Service) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruned, err := s.PruneExpired(context.Background())
			if err != nil {
				if s.logger != nil {
					s.logger.Warn("revocation prune failed", "error", err)
				}
				continue
			}
			if pruned > 0 && s.logger != nil {
				s.logger.Debug("pruned expired revocations", "count", pruned)
			}
		case <-s.stopC:
			return
		}
	}
}
