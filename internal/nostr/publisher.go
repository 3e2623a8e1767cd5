package nostr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonostr "github.com/nbd-wtf/go-nostr"
	"golang.org/x/sync/errgroup"

	"github.com/PlebOne/blogster/internal/apperr"
)

// RelayConn is the subset of a relay connection the publisher needs.
// *gonostr.Relay satisfies it.
type RelayConn interface {
	Publish(ctx context.Context, ev gonostr.Event) error
	Close() error
}

// DialFunc opens a connection to one relay.
type DialFunc func(ctx context.Context, url string) (RelayConn, error)

func dialRelay(ctx context.Context, url string) (RelayConn, error) {
	return gonostr.RelayConnect(ctx, url)
}

// Publisher delivers signed events to a set of relays and reports which
// ones accepted. A single publish moves through connect → settle →
// submit; per-relay failures are tolerated and logged, only a total
// failure is an error. There are no automatic retries: republishing the
// same post is idempotent on relays thanks to the replaceable identifier
// tag, so callers retry by publishing again.
type Publisher struct {
	// SettleDelay is a coarse wait between connection initiation and
	// submission, letting slow relay handshakes catch up. It is a
	// tunable timeout, not a protocol guarantee.
	SettleDelay time.Duration

	dial   DialFunc
	logger *slog.Logger
}

// NewPublisher creates a Publisher with the default settle delay.
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		SettleDelay: 2 * time.Second,
		dial:        dialRelay,
		logger:      logger,
	}
}

// Publish sends ev to every relay in relayURLs and returns the event ID
// plus the URLs that accepted it, ordered by acknowledgment. Duplicate
// URLs are dialed once. Fails with ErrNoRelayAccepted when nothing
// accepted the event.
func (p *Publisher) Publish(ctx context.Context, ev *gonostr.Event, relayURLs []string) (string, []string, error) {
	urls := dedup(relayURLs)
	if len(urls) == 0 {
		return "", nil, fmt.Errorf("nostr: publish: empty relay set")
	}

	type conn struct {
		url string
		rc  RelayConn
	}

	var mu sync.Mutex
	var conns []conn

	g, gCtx := errgroup.WithContext(ctx)
	for _, url := range urls {
		g.Go(func() error {
			rc, err := p.dial(gCtx, url)
			if err != nil {
				p.logger.Warn("relay connect failed",
					slog.String("relay", url),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			conns = append(conns, conn{url: url, rc: rc})
			mu.Unlock()
			p.logger.Debug("relay connected", slog.String("relay", url))
			return nil
		})
	}
	_ = g.Wait()

	defer func() {
		for _, c := range conns {
			_ = c.rc.Close()
		}
	}()

	if len(conns) == 0 {
		return "", nil, fmt.Errorf("nostr: publish: %w", apperr.ErrNoRelayAccepted)
	}

	// Coarse settling wait before submission.
	if p.SettleDelay > 0 {
		select {
		case <-time.After(p.SettleDelay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}

	var accepted []string
	sg, sCtx := errgroup.WithContext(ctx)
	for _, c := range conns {
		sg.Go(func() error {
			if err := c.rc.Publish(sCtx, *ev); err != nil {
				p.logger.Warn("relay rejected event",
					slog.String("relay", c.url),
					slog.String("error", err.Error()))
				return nil
			}
			mu.Lock()
			accepted = append(accepted, c.url)
			mu.Unlock()
			return nil
		})
	}
	_ = sg.Wait()

	if len(accepted) == 0 {
		return "", nil, fmt.Errorf("nostr: publish: %w", apperr.ErrNoRelayAccepted)
	}

	p.logger.Info("event published",
		slog.String("event_id", ev.ID),
		slog.Int("relays", len(accepted)))
	return ev.ID, accepted, nil
}

// dedup preserves first-seen order.
func dedup(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
