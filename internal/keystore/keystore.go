// Package keystore persists Nostr credentials as an encrypted blob on
// disk. The blob is sealed with AES-GCM under a key derived from a
// machine-local random key file, so the plaintext secret key never
// touches disk.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PlebOne/blogster/internal/models"
)

const (
	keyFile  = "keystore.key"
	blobFile = "credentials.enc"
)

// Store holds encrypted credentials under dir.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("keystore: create dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// aead derives the AEAD cipher from the local key file, generating the
// key file on first use.
func (s *Store) aead() (cipher.AEAD, error) {
	keyPath := filepath.Join(s.dir, keyFile)
	seed, err := os.ReadFile(keyPath)
	if os.IsNotExist(err) {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("keystore: generate key: %w", err)
		}
		if err := os.WriteFile(keyPath, seed, 0o600); err != nil {
			return nil, fmt.Errorf("keystore: write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("keystore: read key file: %w", err)
	}

	key := sha256.Sum256(seed)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("keystore: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: create AEAD: %w", err)
	}
	return aead, nil
}

// Save seals the credentials and writes them to disk.
func (s *Store) Save(creds *models.Credentials) error {
	aead, err := s.aead()
	if err != nil {
		return err
	}
	plain, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("keystore: marshal credentials: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("keystore: generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	if err := os.WriteFile(filepath.Join(s.dir, blobFile), sealed, 0o600); err != nil {
		return fmt.Errorf("keystore: write blob: %w", err)
	}
	return nil
}

// Load reads and opens the stored credentials. Returns (nil, nil) when
// no credentials have been saved.
func (s *Store) Load() (*models.Credentials, error) {
	sealed, err := os.ReadFile(filepath.Join(s.dir, blobFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("keystore: read blob: %w", err)
	}
	aead, err := s.aead()
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("keystore: blob too short")
	}
	nonce, data := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: decrypt blob: %w", err)
	}
	var creds models.Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, fmt.Errorf("keystore: unmarshal credentials: %w", err)
	}
	return &creds, nil
}

// Delete removes the stored credentials. Deleting absent credentials is
// not an error.
func (s *Store) Delete() error {
	err := os.Remove(filepath.Join(s.dir, blobFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("keystore: delete blob: %w", err)
	}
	return nil
}
