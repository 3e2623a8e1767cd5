// Package relays resolves the active set of Nostr relay endpoints from
// a default list and a user-managed custom list.
package relays

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/PlebOne/blogster/internal/apperr"
)

// Settings controls which relay lists are active.
type Settings struct {
	CustomRelays     []string `json:"custom_relays" yaml:"custom_relays"`
	UseDefaultRelays bool     `json:"use_default_relays" yaml:"use_default_relays"`
	UseCustomRelays  bool     `json:"use_custom_relays" yaml:"use_custom_relays"`
}

// NewSettings returns settings with only the default relays enabled.
func NewSettings() *Settings {
	return &Settings{UseDefaultRelays: true}
}

// DefaultRelays is the fixed set of well-known long-form relays.
func DefaultRelays() []string {
	return []string{
		"wss://relay.damus.io",
		"wss://nos.lol",
		"wss://relay.nostr.band",
		"wss://nostr-pub.wellorder.net",
		"wss://relay.snort.social",
	}
}

// ActiveRelays returns the effective relay set: enabled lists merged,
// sorted, and deduplicated. The result is never empty; when both flags
// are off or yield nothing, the default list is returned.
func (s *Settings) ActiveRelays() []string {
	var relays []string

	if s.UseDefaultRelays {
		relays = append(relays, DefaultRelays()...)
	}
	if s.UseCustomRelays {
		relays = append(relays, s.CustomRelays...)
	}

	sort.Strings(relays)
	relays = dedupSorted(relays)

	if len(relays) == 0 {
		return DefaultRelays()
	}
	return relays
}

// AddRelay validates and appends a custom relay URL. Duplicates fail
// with ErrDuplicateRelay and leave the list unchanged.
func (s *Settings) AddRelay(url string) error {
	if err := ValidateRelayURL(url); err != nil {
		return err
	}
	for _, r := range s.CustomRelays {
		if r == url {
			return apperr.ErrDuplicateRelay
		}
	}
	s.CustomRelays = append(s.CustomRelays, url)
	return nil
}

// RemoveRelay deletes a custom relay URL, reporting whether it was present.
func (s *Settings) RemoveRelay(url string) bool {
	for i, r := range s.CustomRelays {
		if r == url {
			s.CustomRelays = append(s.CustomRelays[:i], s.CustomRelays[i+1:]...)
			return true
		}
	}
	return false
}

// ValidateRelayURL checks that url is a plausible relay endpoint:
// ws:// or wss:// scheme, at least 10 characters, and a dot in the host.
func ValidateRelayURL(url string) error {
	return validation.Validate(url,
		validation.Required,
		validation.Length(10, 0).Error("relay URL is too short"),
		validation.By(func(value any) error {
			u, _ := value.(string)
			if !strings.HasPrefix(u, "wss://") && !strings.HasPrefix(u, "ws://") {
				return fmt.Errorf("relay URL must start with wss:// or ws://")
			}
			if !strings.Contains(u, ".") {
				return fmt.Errorf("relay URL has no host")
			}
			return nil
		}),
	)
}

func dedupSorted(sorted []string) []string {
	out := sorted[:0]
	var prev string
	for i, v := range sorted {
		if i == 0 || v != prev {
			out = append(out, v)
		}
		prev = v
	}
	return out
}
