// Package entitiestest wires an in-memory local store, runner and fake server
// for entity repository tests.
package entitiestest

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/client/localstore"
	"github.com/dmitrijs2005/foodlog/internal/client/refresh"
	"github.com/dmitrijs2005/foodlog/internal/client/remote"
	"github.com/dmitrijs2005/foodlog/internal/client/runner"
	"github.com/dmitrijs2005/foodlog/internal/client/session"
	"github.com/dmitrijs2005/foodlog/internal/client/syncqueue"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
	"github.com/stretchr/testify/require"
)

// Session is the signed-in user of every Env.
var Session = session.Session{OwnerID: "u1", Username: "ann", AccessToken: "token"}

type Env struct {
	Store     *localstore.Store
	Runner    *runner.Runner
	Refresher *refresh.Refresher
	Queue     *syncqueue.Queue
	Remote    *FakeRemote
	Reporter  *logging.Recorder
}

func New(t *testing.T) *Env {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	store, err := localstore.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	rem := NewFakeRemote()
	rep := &logging.Recorder{}
	r := runner.New(store, rem, logging.Nop{}, rep, runner.WithRemoteTimeout(2*time.Second))
	rf := refresh.New(store, rem, logging.Nop{}, rep, 2*time.Second)
	t.Cleanup(rf.Shutdown)

	return &Env{
		Store:     store,
		Runner:    r,
		Refresher: rf,
		Queue:     syncqueue.New(store, r, logging.Nop{}),
		Remote:    rem,
		Reporter:  rep,
	}
}

// Sync runs one queue pass and fails the test on error.
func (e *Env) Sync(t *testing.T) syncqueue.Report {
	t.Helper()
	rep, err := e.Queue.Process(context.Background(), Session.OwnerID)
	require.NoError(t, err)
	return rep
}

// FakeRemote is an in-memory server. It honours idempotency keys and can be
// switched offline, or told to reject calls or transform payloads.
type FakeRemote struct {
	mu      sync.Mutex
	offline bool
	reject  error
	// Transform, when set, rewrites every stored payload, the way the real
	// server recomputes derived values.
	Transform func(t models.EntityType, payload []byte) []byte

	seq   int
	byID  map[string]*remote.Record
	byKey map[string]string
	calls int
}

func NewFakeRemote() *FakeRemote {
	return &FakeRemote{byID: map[string]*remote.Record{}, byKey: map[string]string{}}
}

var ErrOffline = fmt.Errorf("%w: %w: connection refused", remote.ErrTransient, remote.ErrUnavailable)

func (f *FakeRemote) SetOffline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = v
}

// Reject makes every call fail with a rejection carrying msg. An empty msg
// stops rejecting.
func (f *FakeRemote) Reject(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg == "" {
		f.reject = nil
		return
	}
	f.reject = fmt.Errorf("%w: %s", remote.ErrRejected, msg)
}

func (f *FakeRemote) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Records returns the stored records of type t ordered by id.
func (f *FakeRemote) Records(t models.EntityType) []*remote.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*remote.Record
	for _, r := range f.byID {
		if r.EntityType == t {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put stores a record as if another device created it.
func (f *FakeRemote) Put(rec remote.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[rec.ID] = &rec
}

func (f *FakeRemote) begin() error {
	f.calls++
	if f.offline {
		return ErrOffline
	}
	return f.reject
}

func (f *FakeRemote) transform(t models.EntityType, p []byte) []byte {
	if f.Transform == nil {
		return p
	}
	return f.Transform(t, p)
}

func (f *FakeRemote) Create(_ context.Context, t models.EntityType, key string, payload []byte) (*remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	if strings.Contains(string(payload), `"tmp_`) {
		return nil, fmt.Errorf("%w: unresolved temporary reference", remote.ErrRejected)
	}
	if id, ok := f.byKey[key]; ok {
		rec := f.byID[id]
		if next := f.transform(t, payload); !bytes.Equal(rec.Payload, next) {
			rec.Payload = next
			rec.UpdatedAt = time.Now().UTC()
		}
		cp := *rec
		return &cp, nil
	}

	f.seq++
	now := time.Now().UTC()
	rec := &remote.Record{
		ID:             fmt.Sprintf("%s_%d", t, f.seq),
		EntityType:     t,
		IdempotencyKey: key,
		Payload:        f.transform(t, payload),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.byID[rec.ID] = rec
	f.byKey[key] = rec.ID
	cp := *rec
	return &cp, nil
}

func (f *FakeRemote) Update(_ context.Context, t models.EntityType, id string, payload []byte) (*remote.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	rec, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %w", remote.ErrRejected, remote.ErrNotFound)
	}
	rec.Payload = f.transform(t, payload)
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

func (f *FakeRemote) Delete(_ context.Context, _ models.EntityType, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	if real, ok := f.byKey[id]; ok {
		id = real
	}
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("%w: %w", remote.ErrRejected, remote.ErrNotFound)
	}
	delete(f.byID, id)
	return nil
}

func (f *FakeRemote) List(_ context.Context, t models.EntityType, lf remote.ListFilter) ([]*remote.Record, error) {
	f.mu.Lock()
	err := f.begin()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []*remote.Record
	for _, rec := range f.Records(t) {
		key, err := models.SortKeyOf(t, rec.Payload)
		if err != nil {
			return nil, err
		}
		if (lf.From != "" && key < lf.From) || (lf.To != "" && key > lf.To) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
