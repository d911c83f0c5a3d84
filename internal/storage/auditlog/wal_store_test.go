package auditlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adkite/adkite/internal/domain"
)

func newTestStore(t *testing.T) *WALStore {
	t.Helper()
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err, "Failed to create WALStore")
	t.Cleanup(func() {
		assert.NoError(t, store.Close(), "Failed to close WAL")
	})
	return store
}

func event(decisionID string, success bool) domain.ExecutionEvent {
	return domain.ExecutionEvent{
		Timestamp:  time.Now().UTC(),
		DecisionID: decisionID,
		OrgID:      "org1",
		Platform:   domain.PlatformGoogle,
		Tool:       "set_budget",
		EntityType: "campaign",
		EntityID:   "c1",
		Success:    success,
	}
}

func TestWALStoreAppendAndRead(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(event("d1", true)))
	require.NoError(t, store.Append(event("d2", false)))

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "d1", records[0].Event.DecisionID)
	assert.True(t, records[0].Event.Success)
	assert.Equal(t, "d2", records[1].Event.DecisionID)
	assert.False(t, records[1].Event.Success)
	assert.Equal(t, uint64(2), store.CurrentIndex())
}

func TestWALStoreEventsAfterIndex(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(event("d1", true)))
	require.NoError(t, store.Append(event("d2", true)))
	require.NoError(t, store.Append(event("d3", true)))

	records, err := store.EventsAfter(2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "d3", records[0].Event.DecisionID)
	assert.Equal(t, uint64(3), records[0].Index)

	records, err = store.EventsAfter(3)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWALStoreRequiresDecisionID(t *testing.T) {
	store := newTestStore(t)

	err := store.Append(domain.ExecutionEvent{})
	require.Error(t, err)
}

func TestWALStoreBackfillsTimestamp(t *testing.T) {
	store := newTestStore(t)

	e := event("d1", true)
	e.Timestamp = time.Time{}
	require.NoError(t, store.Append(e))

	records, err := store.EventsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Event.Timestamp.IsZero())
}
