// Package nostr builds, signs, and publishes Nostr events for Blogster:
// long-form content (NIP-23/NIP-33), Blossom upload authorizations
// (BUD-02), and profile metadata.
package nostr

import (
	"encoding/hex"
	"fmt"
	"strings"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/models"
)

// ParsePrivateKey accepts a secret key as 64-char hex or bech32 nsec and
// returns the normalized hex form. Both encodings carry the same 32-byte
// secret.
func ParsePrivateKey(input string) (string, error) {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "nsec") {
		prefix, value, err := nip19.Decode(input)
		if err != nil || prefix != "nsec" {
			return "", fmt.Errorf("%w: bad nsec encoding", apperr.ErrInvalidKeyFormat)
		}
		sk, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("%w: bad nsec payload", apperr.ErrInvalidKeyFormat)
		}
		return sk, nil
	}

	if len(input) != 64 {
		return "", fmt.Errorf("%w: hex key must be 64 characters", apperr.ErrInvalidKeyFormat)
	}
	if _, err := hex.DecodeString(input); err != nil {
		return "", fmt.Errorf("%w: not valid hex", apperr.ErrInvalidKeyFormat)
	}
	return strings.ToLower(input), nil
}

// ValidatePrivateKey reports whether input parses as a usable secret key.
func ValidatePrivateKey(input string) bool {
	_, err := PublicKeyFromPrivate(input)
	return err == nil
}

// PublicKeyFromPrivate derives the hex public key from a private key in
// either hex or nsec form.
func PublicKeyFromPrivate(input string) (string, error) {
	sk, err := ParsePrivateKey(input)
	if err != nil {
		return "", err
	}
	pk, err := gonostr.GetPublicKey(sk)
	if err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrInvalidKeyFormat, err)
	}
	return pk, nil
}

// GenerateCredentials creates a fresh keypair. The private key is stored
// in nsec form, matching what users exchange with other Nostr clients.
func GenerateCredentials() (*models.Credentials, error) {
	sk := gonostr.GeneratePrivateKey()
	pk, err := gonostr.GetPublicKey(sk)
	if err != nil {
		return nil, fmt.Errorf("nostr: derive public key: %w", err)
	}
	nsec, err := nip19.EncodePrivateKey(sk)
	if err != nil {
		return nil, fmt.Errorf("nostr: encode nsec: %w", err)
	}
	return &models.Credentials{PrivateKey: nsec, PublicKey: pk}, nil
}

// ImportCredentials builds credentials from an existing private key in
// hex or nsec form.
func ImportCredentials(privateKey string) (*models.Credentials, error) {
	pk, err := PublicKeyFromPrivate(privateKey)
	if err != nil {
		return nil, err
	}
	return &models.Credentials{PrivateKey: privateKey, PublicKey: pk}, nil
}
