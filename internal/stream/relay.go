// Package stream relays newly generated cards from the backend to the
// browser over a long-lived Server-Sent Events connection.
package stream

import (
	"context"
	"log"
	"time"

	"quizrelay/internal/cards"
	"quizrelay/internal/config"
	"quizrelay/internal/httpclient"
	"quizrelay/internal/models"
)

// Reasons sent with the terminal done event
const (
	ReasonMaxIdle     = "max_idle"
	ReasonMaxDuration = "max_duration"
)

// maxSeenCards bounds the dedup set so long streams don't grow without limit
const maxSeenCards = 1000

// Fetcher retrieves the current card list for a deck. *backend.Client
// satisfies this.
type Fetcher interface {
	FetchDeckCards(ctx context.Context, deckID, userID string, timeout time.Duration) ([]map[string]interface{}, error)
}

// Emitter writes server-sent event frames. Implementations flush after every
// frame so the browser sees cards as soon as they arrive.
type Emitter interface {
	// Event writes a named event carrying a JSON payload
	Event(name string, payload interface{}) error
	// Data writes an unnamed data frame carrying a JSON payload
	Data(payload interface{}) error
	// Comment writes an SSE comment line, used for heartbeats
	Comment(text string) error
}

type cardsPayload struct {
	Cards []*models.Card `json:"cards"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type donePayload struct {
	Reason string `json:"reason"`
}

// Relay polls the backend for a deck's cards and forwards each previously
// unseen card to the client exactly once.
type Relay struct {
	Fetcher           Fetcher
	PollInterval      time.Duration
	PollTimeout       time.Duration
	MaxIdlePolls      int
	MaxDuration       time.Duration
	HeartbeatInterval time.Duration
	MaxSeen           int
}

// NewRelay wires a relay with the configured polling budgets
func NewRelay(cfg *config.Config, fetcher Fetcher) *Relay {
	return &Relay{
		Fetcher:           fetcher,
		PollInterval:      cfg.PollInterval,
		PollTimeout:       cfg.PollTimeout,
		MaxIdlePolls:      cfg.MaxIdlePolls,
		MaxDuration:       cfg.MaxStreamDuration,
		HeartbeatInterval: cfg.HeartbeatInterval,
		MaxSeen:           maxSeenCards,
	}
}

// Run drives the stream until the deck goes idle for too long, the overall
// duration cap is hit, or the client goes away. Poll timeouts count as idle
// cycles; other fetch errors additionally surface an error frame so the
// client can tell something is wrong.
func (r *Relay) Run(ctx context.Context, em Emitter, deckID, userID string) {
	seen := newSeenSet(r.MaxSeen)
	idle := 0
	iteration := 0
	start := time.Now()
	lastHeartbeat := start

	disconnected := func() {
		log.Printf("INFO: Client disconnected from stream for deck %s", deckID)
	}

	for {
		if ctx.Err() != nil {
			disconnected()
			return
		}
		if time.Since(start) > r.MaxDuration {
			log.Printf("INFO: Stream for deck %s exceeded max duration, closing", deckID)
			r.finish(em, ReasonMaxDuration)
			return
		}

		iteration++

		batch, err := r.Fetcher.FetchDeckCards(ctx, deckID, userID, r.PollTimeout)
		if err != nil && httpclient.IsTimeout(err) {
			log.Printf("WARN: Timeout fetching cards for deck %s (iteration %d)", deckID, iteration)
			idle++
			var ok bool
			if lastHeartbeat, ok = r.heartbeatIfDue(em, lastHeartbeat); !ok {
				disconnected()
				return
			}
			if idle >= r.MaxIdlePolls {
				r.finish(em, ReasonMaxIdle)
				return
			}
			r.sleep(ctx)
			continue
		}

		if err != nil {
			log.Printf("ERROR: Error in event stream (iteration %d): %v", iteration, err)
			if em.Data(errorPayload{Error: truncate(err.Error(), 100)}) != nil {
				disconnected()
				return
			}
			idle++
			var ok bool
			if lastHeartbeat, ok = r.heartbeatIfDue(em, lastHeartbeat); !ok {
				disconnected()
				return
			}
		} else {
			var fresh []*models.Card
			for _, item := range batch {
				card := cards.Normalize(item)
				if card == nil || seen.has(card.CardID) {
					continue
				}
				seen.add(card.CardID)
				// The raw payload stays out of the stream to save bandwidth.
				card.Raw = nil
				fresh = append(fresh, card)
			}

			if len(fresh) > 0 {
				if em.Data(cardsPayload{Cards: fresh}) != nil {
					disconnected()
					return
				}
				idle = 0
				lastHeartbeat = time.Now()
			} else {
				idle++
				var ok bool
				if lastHeartbeat, ok = r.heartbeatIfDue(em, lastHeartbeat); !ok {
					disconnected()
					return
				}
			}
		}

		if idle >= r.MaxIdlePolls {
			r.finish(em, ReasonMaxIdle)
			return
		}
		r.sleep(ctx)
	}
}

func (r *Relay) finish(em Emitter, reason string) {
	// Terminal frame; a write failure here just means the client left first.
	_ = em.Event("done", donePayload{Reason: reason})
}

func (r *Relay) heartbeatIfDue(em Emitter, last time.Time) (time.Time, bool) {
	if time.Since(last) < r.HeartbeatInterval {
		return last, true
	}
	if err := em.Comment("heartbeat"); err != nil {
		return last, false
	}
	return time.Now(), true
}

// sleep waits out the poll interval, capped at two seconds so disconnects
// and duration limits are noticed promptly.
func (r *Relay) sleep(ctx context.Context) {
	delay := min(r.PollInterval, 2*time.Second)
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// seenSet remembers forwarded card ids, evicting the oldest once the cap is
// exceeded.
type seenSet struct {
	ids   map[string]struct{}
	order []string
	max   int
}

func newSeenSet(max int) *seenSet {
	return &seenSet{ids: make(map[string]struct{}, max), max: max}
}

func (s *seenSet) has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *seenSet) add(id string) {
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	for len(s.order) > s.max {
		delete(s.ids, s.order[0])
		s.order = s.order[1:]
	}
}
