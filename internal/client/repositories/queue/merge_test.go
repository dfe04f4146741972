package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	first := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	tests := []struct {
		existing, next Kind
		want           Kind
	}{
		{existing: KindCreate, next: KindUpdate, want: KindCreate},
		{existing: KindCreate, next: KindCreate, want: KindCreate},
		{existing: KindCreate, next: KindDelete, want: KindDelete},
		{existing: KindUpdate, next: KindUpdate, want: KindUpdate},
		{existing: KindUpdate, next: KindDelete, want: KindDelete},
		{existing: KindDelete, next: KindCreate, want: KindCreate},
		{existing: KindDelete, next: KindUpdate, want: KindUpdate},
		{existing: KindDelete, next: KindDelete, want: KindDelete},
	}

	for _, tt := range tests {
		t.Run(string(tt.existing)+"+"+string(tt.next), func(t *testing.T) {
			existing := Entry{Seq: 7, EntityType: "food", EntityID: "tmp_1", Kind: tt.existing, Payload: []byte(`{"v":1}`),
				EnqueuedAt: first, Attempts: 4, LastError: "timeout", Status: StatusRejected}
			next := Entry{EntityType: "food", EntityID: "tmp_1", Kind: tt.next, Payload: []byte(`{"v":2}`), EnqueuedAt: later}

			got := Merge(existing, next)

			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, int64(7), got.Seq)
			assert.Equal(t, first, got.EnqueuedAt)
			assert.Zero(t, got.Attempts)
			assert.Empty(t, got.LastError)
			assert.Equal(t, StatusPending, got.Status)
			if tt.want == KindDelete {
				assert.Nil(t, got.Payload)
			} else {
				assert.Equal(t, []byte(`{"v":2}`), got.Payload)
			}
		})
	}
}
