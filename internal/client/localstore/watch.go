package localstore

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/foodlog/internal/client/repositories/records"
	"github.com/dmitrijs2005/foodlog/internal/models"
)

type hub struct {
	mu   sync.Mutex
	next int
	subs map[models.EntityType]map[int]chan struct{}
}

func newHub() *hub {
	return &hub{subs: map[models.EntityType]map[int]chan struct{}{}}
}

func (h *hub) subscribe(t models.EntityType) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	id := h.next
	ch := make(chan struct{}, 1)
	if h.subs[t] == nil {
		h.subs[t] = map[int]chan struct{}{}
	}
	h.subs[t][id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[t], id)
	}
}

// notify never blocks: a subscriber that has a signal pending already knows
// it must re-query.
func (h *hub) notify(t models.EntityType) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[t] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscription streams snapshots of a query. A slow reader only ever sees
// the newest snapshot.
type Subscription struct {
	C    <-chan []*records.Record
	done chan struct{}
	err  error
}

// Done is closed once the subscription stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err waits for the subscription to stop and reports why. A nil error means
// the context ended it.
func (s *Subscription) Err() error {
	<-s.done
	return s.err
}

// Watch emits the owner's records of type t matching f now and after every
// committed change to t, until ctx is done or a query fails.
func (s *Store) Watch(ctx context.Context, t models.EntityType, ownerID string, f records.Filter) *Subscription {
	out := make(chan []*records.Record, 1)
	sub := &Subscription{C: out, done: make(chan struct{})}
	changed, unsubscribe := s.hub.subscribe(t)

	go func() {
		defer close(sub.done)
		defer close(out)
		defer unsubscribe()

		for {
			snapshot, err := s.Records(t).ListByOwner(ctx, ownerID, f)
			if err != nil {
				if ctx.Err() == nil {
					sub.err = err
				}
				return
			}

			select {
			case <-out:
			default:
			}
			out <- snapshot

			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()

	return sub
}
