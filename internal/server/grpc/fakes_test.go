package grpc

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/foodlog/internal/common"
	"github.com/dmitrijs2005/foodlog/internal/logging"
	"github.com/dmitrijs2005/foodlog/internal/models"
	sm "github.com/dmitrijs2005/foodlog/internal/server/models"
	"github.com/dmitrijs2005/foodlog/internal/server/services"
)

type fakeUsers struct {
	regErr   error
	loginErr error
}

func (f *fakeUsers) Register(_ context.Context, userName, _ string) (*services.Session, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	return &services.Session{UserID: "u-" + userName, UserName: userName, AccessToken: "token-" + userName}, nil
}

func (f *fakeUsers) Login(ctx context.Context, userName, password string) (*services.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.Register(ctx, userName, password)
}

// Authenticate accepts tokens issued by Register.
func (f *fakeUsers) Authenticate(token string) (string, error) {
	name, ok := strings.CutPrefix(token, "token-")
	if !ok || name == "" {
		return "", common.ErrInvalidToken
	}
	return "u-" + name, nil
}

// fakeRecords keeps records per owner in memory.
type fakeRecords struct {
	mu     sync.Mutex
	recs   map[string]*sm.Record
	byKey  map[string]string
	seq    int
	err    error
	filter sm.RecordFilter
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{recs: map[string]*sm.Record{}, byKey: map[string]string{}}
}

func (f *fakeRecords) Create(_ context.Context, owner string, t models.EntityType, key string, payload []byte) (*sm.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.byKey[owner+key]; ok && key != "" {
		return f.recs[id], nil
	}
	f.seq++
	now := time.Now().UTC()
	rec := &sm.Record{
		ID:             fmt.Sprintf("rec-%d", f.seq),
		OwnerID:        owner,
		EntityType:     t,
		IdempotencyKey: key,
		Payload:        payload,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.recs[rec.ID] = rec
	if key != "" {
		f.byKey[owner+key] = rec.ID
	}
	return rec, nil
}

func (f *fakeRecords) get(owner string, t models.EntityType, id string) (*sm.Record, error) {
	if mapped, ok := f.byKey[owner+id]; ok {
		id = mapped
	}
	rec, ok := f.recs[id]
	if !ok || rec.OwnerID != owner || rec.EntityType != t {
		return nil, common.ErrorNotFound
	}
	return rec, nil
}

func (f *fakeRecords) Update(_ context.Context, owner string, t models.EntityType, id string, payload []byte) (*sm.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	rec, err := f.get(owner, t, id)
	if err != nil {
		return nil, err
	}
	rec.Payload = payload
	rec.UpdatedAt = time.Now().UTC()
	return rec, nil
}

func (f *fakeRecords) Delete(_ context.Context, owner string, t models.EntityType, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	rec, err := f.get(owner, t, id)
	if err != nil {
		return err
	}
	delete(f.recs, rec.ID)
	return nil
}

func (f *fakeRecords) List(_ context.Context, owner string, t models.EntityType, filter sm.RecordFilter) ([]*sm.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.filter = filter
	var out []*sm.Record
	for i := 1; i <= f.seq; i++ {
		rec, ok := f.recs[fmt.Sprintf("rec-%d", i)]
		if ok && rec.OwnerID == owner && rec.EntityType == t {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeMedia struct{}

func (fakeMedia) PresignPhotoUpload(_ context.Context, owner string) (string, string, error) {
	key := services.PhotoKeyPrefix(owner) + "k1"
	return key, "http://storage/" + key, nil
}

func (fakeMedia) PresignPhotoDownload(_ context.Context, owner, key string) (string, error) {
	if key == "" {
		return "", common.ErrInvalidInput
	}
	if !strings.HasPrefix(key, services.PhotoKeyPrefix(owner)) {
		return "", common.ErrForbidden
	}
	return "http://storage/" + key, nil
}

func newTestServer() (*GRPCServer, *fakeRecords) {
	recs := newFakeRecords()
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, &fakeUsers{}, recs, fakeMedia{}), recs
}
