package nostr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	gonostr "github.com/nbd-wtf/go-nostr"

	"github.com/PlebOne/blogster/internal/apperr"
)

type stubRelay struct {
	url    string
	reject bool
	closed atomic.Bool
}

func (s *stubRelay) Publish(_ context.Context, _ gonostr.Event) error {
	if s.reject {
		return fmt.Errorf("blocked: rate limited")
	}
	return nil
}

func (s *stubRelay) Close() error {
	s.closed.Store(true)
	return nil
}

// stubDial fails to connect to URLs in failDial and returns rejecting
// relays for URLs in reject. The returned slice is safe to inspect after
// Publish returns.
func stubDial(failDial, reject map[string]bool) (DialFunc, *[]*stubRelay) {
	var mu sync.Mutex
	var relays []*stubRelay
	dial := func(_ context.Context, url string) (RelayConn, error) {
		if failDial[url] {
			return nil, fmt.Errorf("dial tcp: connection refused")
		}
		r := &stubRelay{url: url, reject: reject[url]}
		mu.Lock()
		relays = append(relays, r)
		mu.Unlock()
		return r, nil
	}
	return dial, &relays
}

func testPublisher(dial DialFunc) *Publisher {
	p := NewPublisher(nil)
	p.SettleDelay = 0
	p.dial = dial
	return p
}

func signedEvent(t *testing.T) *gonostr.Event {
	t.Helper()
	s := loadedSigner(t)
	ev, err := BuildLongFormEvent(readyPost(t))
	if err != nil {
		t.Fatalf("BuildLongFormEvent: %v", err)
	}
	if err := s.Sign(ev); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return ev
}

func TestPublishPartialAcceptance(t *testing.T) {
	urls := []string{
		"wss://a.example", "wss://b.example", "wss://c.example",
		"wss://d.example", "wss://e.example",
	}
	dial, relays := stubDial(
		map[string]bool{"wss://d.example": true},
		map[string]bool{"wss://e.example": true},
	)
	p := testPublisher(dial)
	ev := signedEvent(t)

	eventID, accepted, err := p.Publish(context.Background(), ev, urls)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if eventID != ev.ID {
		t.Errorf("eventID = %q, want %q", eventID, ev.ID)
	}
	sort.Strings(accepted)
	want := []string{"wss://a.example", "wss://b.example", "wss://c.example"}
	if len(accepted) != len(want) {
		t.Fatalf("accepted = %v, want %v", accepted, want)
	}
	for i := range want {
		if accepted[i] != want[i] {
			t.Errorf("accepted[%d] = %q, want %q", i, accepted[i], want[i])
		}
	}
	for _, r := range *relays {
		if !r.closed.Load() {
			t.Errorf("relay %s not closed", r.url)
		}
	}
}

func TestPublishAllRejected(t *testing.T) {
	urls := []string{"wss://a.example", "wss://b.example"}
	dial, _ := stubDial(nil, map[string]bool{
		"wss://a.example": true, "wss://b.example": true,
	})
	p := testPublisher(dial)

	_, _, err := p.Publish(context.Background(), signedEvent(t), urls)
	if !errors.Is(err, apperr.ErrNoRelayAccepted) {
		t.Fatalf("err = %v, want ErrNoRelayAccepted", err)
	}
}

func TestPublishAllDialsFail(t *testing.T) {
	urls := []string{"wss://a.example", "wss://b.example"}
	dial, _ := stubDial(map[string]bool{
		"wss://a.example": true, "wss://b.example": true,
	}, nil)
	p := testPublisher(dial)

	_, _, err := p.Publish(context.Background(), signedEvent(t), urls)
	if !errors.Is(err, apperr.ErrNoRelayAccepted) {
		t.Fatalf("err = %v, want ErrNoRelayAccepted", err)
	}
}

func TestPublishEmptyRelaySet(t *testing.T) {
	p := testPublisher(nil)
	_, _, err := p.Publish(context.Background(), signedEvent(t), nil)
	if err == nil {
		t.Fatal("expected error for empty relay set")
	}
}

func TestPublishDedupsURLs(t *testing.T) {
	var dials atomic.Int32
	dial := func(_ context.Context, url string) (RelayConn, error) {
		dials.Add(1)
		return &stubRelay{url: url}, nil
	}
	p := testPublisher(dial)

	_, accepted, err := p.Publish(context.Background(), signedEvent(t),
		[]string{"wss://a.example", "wss://a.example", "wss://b.example"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := dials.Load(); got != 2 {
		t.Errorf("dial count = %d, want 2", got)
	}
	if len(accepted) != 2 {
		t.Errorf("accepted = %v, want 2 unique URLs", accepted)
	}
}

func TestDedupPreservesOrder(t *testing.T) {
	got := dedup([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedup = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedup[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
