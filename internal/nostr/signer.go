package nostr

import (
	"sync"

	gonostr "github.com/nbd-wtf/go-nostr"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/models"
)

// Signer holds the single active signing key. The mutex is held only for
// the duration of one Sign call (or a credential swap), never across
// network operations, so unrelated publishes are not serialized behind
// key access.
type Signer struct {
	mu        sync.Mutex
	secretKey string // validated hex, empty when no credentials loaded
	creds     *models.Credentials
}

// NewSigner returns a Signer with no credentials loaded.
func NewSigner() *Signer {
	return &Signer{}
}

// SetCredentials validates the key material and makes it the active
// signing key. Malformed keys are rejected here so Sign can assume a
// resident valid key.
func (s *Signer) SetCredentials(creds *models.Credentials) error {
	sk, err := ParsePrivateKey(creds.PrivateKey)
	if err != nil {
		return err
	}
	if _, err := gonostr.GetPublicKey(sk); err != nil {
		return apperr.ErrInvalidKeyFormat
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.secretKey = sk
	s.creds = creds
	return nil
}

// ClearCredentials removes the active key.
func (s *Signer) ClearCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secretKey = ""
	s.creds = nil
}

// HasCredentials reports whether a key is loaded.
func (s *Signer) HasCredentials() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secretKey != ""
}

// Credentials returns the active credentials, or nil.
func (s *Signer) Credentials() *models.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// Status values reported by TryStatus.
const (
	StatusReady   = "ready"
	StatusMissing = "missing"
	StatusUnknown = "unknown"
)

// TryStatus is a non-blocking status probe. When the signer is busy the
// state is reported as unknown rather than waiting on the lock.
func (s *Signer) TryStatus() (publicKey, state string) {
	if !s.mu.TryLock() {
		return "", StatusUnknown
	}
	defer s.mu.Unlock()
	if s.creds == nil {
		return "", StatusMissing
	}
	return s.creds.PublicKey, StatusReady
}

// Sign computes the event ID and signature in place. Fails with
// ErrNoCredentials when no key is loaded. Signing mutates only the
// event, never signer state.
func (s *Signer) Sign(ev *gonostr.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.secretKey == "" {
		return apperr.ErrNoCredentials
	}
	return ev.Sign(s.secretKey)
}
