package relays

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/PlebOne/blogster/internal/apperr"
)

func TestDefaultRelaysFixedSet(t *testing.T) {
	d := DefaultRelays()
	if len(d) != 5 {
		t.Fatalf("len = %d, want 5", len(d))
	}
	if d[0] != "wss://relay.damus.io" {
		t.Errorf("first default = %q", d[0])
	}
}

func TestActiveRelaysDefaultsOnly(t *testing.T) {
	s := NewSettings()
	got := s.ActiveRelays()
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if !sort.StringsAreSorted(got) {
		t.Errorf("result not sorted: %v", got)
	}
}

func TestActiveRelaysMergesAndDedups(t *testing.T) {
	s := &Settings{
		UseDefaultRelays: true,
		UseCustomRelays:  true,
		CustomRelays: []string{
			"wss://relay.damus.io",
			"wss://my.relay.example",
		},
	}
	got := s.ActiveRelays()
	if len(got) != 6 {
		t.Fatalf("len = %d, want 6 (5 defaults + 1 unique custom): %v", len(got), got)
	}
	seen := map[string]int{}
	for _, r := range got {
		seen[r]++
	}
	if seen["wss://relay.damus.io"] != 1 {
		t.Errorf("duplicate not collapsed: %v", got)
	}
}

func TestActiveRelaysNeverEmpty(t *testing.T) {
	cases := []*Settings{
		{},
		{UseCustomRelays: true},
		{UseCustomRelays: true, CustomRelays: nil},
	}
	for i, s := range cases {
		got := s.ActiveRelays()
		if len(got) != 5 {
			t.Errorf("case %d: len = %d, want 5 defaults", i, len(got))
		}
	}
}

func TestActiveRelaysIdempotent(t *testing.T) {
	s := &Settings{UseDefaultRelays: true, UseCustomRelays: true,
		CustomRelays: []string{"wss://my.relay.example"}}
	first := s.ActiveRelays()
	second := s.ActiveRelays()
	if len(first) != len(second) {
		t.Errorf("lengths differ: %d then %d", len(first), len(second))
	}
}

func TestAddRelay(t *testing.T) {
	s := NewSettings()
	if err := s.AddRelay("wss://my.relay.example"); err != nil {
		t.Fatalf("AddRelay: %v", err)
	}
	if len(s.CustomRelays) != 1 {
		t.Fatalf("CustomRelays = %v", s.CustomRelays)
	}
}

func TestAddRelayDuplicate(t *testing.T) {
	s := NewSettings()
	_ = s.AddRelay("wss://my.relay.example")
	err := s.AddRelay("wss://my.relay.example")
	if !errors.Is(err, apperr.ErrDuplicateRelay) {
		t.Fatalf("err = %v, want ErrDuplicateRelay", err)
	}
	if len(s.CustomRelays) != 1 {
		t.Errorf("duplicate add changed the list: %v", s.CustomRelays)
	}
}

func TestAddRelayInvalid(t *testing.T) {
	s := NewSettings()
	if err := s.AddRelay("https://not.a.relay.example"); err == nil {
		t.Error("expected error for https scheme")
	}
	if len(s.CustomRelays) != 0 {
		t.Errorf("invalid add changed the list: %v", s.CustomRelays)
	}
}

func TestRemoveRelay(t *testing.T) {
	s := NewSettings()
	_ = s.AddRelay("wss://my.relay.example")
	if !s.RemoveRelay("wss://my.relay.example") {
		t.Error("RemoveRelay = false, want true")
	}
	if s.RemoveRelay("wss://absent.relay.example") {
		t.Error("RemoveRelay = true for absent URL")
	}
}

func TestValidateRelayURL(t *testing.T) {
	valid := []string{
		"wss://relay.damus.io",
		"ws://relay.test.example",
	}
	for _, u := range valid {
		if err := ValidateRelayURL(u); err != nil {
			t.Errorf("ValidateRelayURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"",
		"wss://a.b",
		"https://relay.damus.io",
		"wss://nodothere",
		"relay.damus.io",
	}
	for _, u := range invalid {
		if err := ValidateRelayURL(u); err == nil {
			t.Errorf("ValidateRelayURL(%q) = nil, want error", u)
		}
	}
}

func TestSettingsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relays.json")

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings (absent): %v", err)
	}
	if !loaded.UseDefaultRelays {
		t.Error("absent file should yield default settings")
	}

	loaded.UseCustomRelays = true
	_ = loaded.AddRelay("wss://my.relay.example")
	if err := SaveSettings(path, loaded); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	again, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if len(again.CustomRelays) != 1 || again.CustomRelays[0] != "wss://my.relay.example" {
		t.Errorf("CustomRelays = %v", again.CustomRelays)
	}
	if !again.UseCustomRelays {
		t.Error("UseCustomRelays not persisted")
	}
}
