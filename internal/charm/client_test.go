// ABOUTME: Unit tests for the Charm mirror using an in-memory KV store.
// ABOUTME: Covers key layout, prefix lookup, persist, and read-only handling.
package charm

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/makeweight/internal/models"
	"github.com/harperreed/makeweight/internal/storage"
)

type memStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	readOnly bool
	syncs    int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Keys() ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = []byte(k)
	}
	return out, nil
}

func (m *memStore) Get(key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[string(key)]
	if !ok {
		return nil, errors.New("missing key")
	}
	return v, nil
}

func (m *memStore) Set(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memStore) IsReadOnly() bool { return m.readOnly }
func (m *memStore) Sync() error      { m.syncs++; return nil }
func (m *memStore) Reset() error     { m.data = make(map[string][]byte); return nil }
func (m *memStore) Close() error     { return nil }

var testDay = time.Date(2025, 3, 3, 7, 0, 0, 0, time.UTC)

func TestKeyLayout(t *testing.T) {
	store := newMemStore()
	c := New(store, Options{})

	l := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(testDay)
	require.NoError(t, c.PutLog(l))
	require.NoError(t, c.SaveTracking(models.NewDailyTracking(testDay)))
	require.NoError(t, c.SaveProfile(models.NewAthleteProfile("Sam", 172, 165, testDay, models.ProtocolHoldWeight)))

	keys, _ := store.Keys()
	var names []string
	for _, k := range keys {
		names = append(names, string(k))
	}
	assert.Contains(t, names, "weight_log:"+l.ID.String())
	assert.Contains(t, names, "tracking:2025-03-03")
	assert.Contains(t, names, "profile")
}

func TestLogPrefixLookup(t *testing.T) {
	c := New(newMemStore(), Options{})

	a := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(testDay)
	b := models.NewWeightLog(models.MeasureBeforeBed, 172).WithRecordedAt(testDay.Add(-9 * time.Hour))
	b.ID[0] = a.ID[0]
	require.NoError(t, c.PutLog(a))
	require.NoError(t, c.PutLog(b))

	got, err := c.GetLog(a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 171.0, got.Weight)

	_, err = c.GetLog(a.ID.String()[:2])
	assert.ErrorIs(t, err, ErrAmbiguousPrefix)

	_, err = c.GetLog("zzzz")
	assert.ErrorIs(t, err, ErrNotFound)

	logs, err := c.ListLogs(0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, a.ID, logs[0].ID, "newest first")

	limited, _ := c.ListLogs(1)
	assert.Len(t, limited, 1)

	require.NoError(t, c.DeleteLog(strings.ToUpper(b.ID.String())))
	logs, _ = c.ListLogs(0)
	assert.Len(t, logs, 1)
}

func TestPersistAndLoadState(t *testing.T) {
	store := newMemStore()
	c := New(store, Options{AutoSync: true})
	ctx := context.Background()

	p := models.NewAthleteProfile("Sam", 172, 165, testDay.AddDate(0, 0, 5), models.ProtocolRapidCut)
	late := models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(testDay)
	early := models.NewWeightLog(models.MeasureBeforeBed, 172).WithRecordedAt(testDay.Add(-9 * time.Hour))
	rec := models.NewDailyTracking(testDay)
	rec.AddWater(48)

	for _, ch := range []models.Change{
		models.ProfileChange(p),
		models.LogChange(models.OpUpsert, late),
		models.LogChange(models.OpUpsert, early),
		models.TrackingChange(rec),
	} {
		require.NoError(t, c.Persist(ctx, ch))
	}
	assert.Equal(t, 4, store.syncs, "auto sync after each write")

	st, err := c.LoadState(ctx)
	require.NoError(t, err)
	require.NotNil(t, st.Profile)
	assert.Equal(t, 165.0, st.Profile.TargetClass)
	require.Len(t, st.Logs, 2)
	assert.Equal(t, early.ID, st.Logs[0].ID, "oldest first")
	assert.Equal(t, 48.0, st.Tracking[rec.Date].WaterOz)

	require.NoError(t, c.Persist(ctx, models.LogChange(models.OpDelete, early)))
	require.NoError(t, c.Persist(ctx, models.LogChange(models.OpDelete, early)))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, Counts{Profile: true, WeightLogs: 1, Tracking: 1}, n)

	data, err := c.GetAllData(ctx)
	require.NoError(t, err)
	assert.Equal(t, "makeweight", data.Tool)
	assert.Len(t, data.WeightLogs, 1)
	assert.Len(t, data.Tracking, 1)
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	store := newMemStore()
	store.readOnly = true
	c := New(store, Options{AutoSync: true})

	err := c.Persist(context.Background(), models.LogChange(models.OpUpsert, models.NewWeightLog(models.MeasureMorning, 170)))
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Zero(t, store.syncs)
	assert.NoError(t, c.Sync())
}

func TestPersistCancelled(t *testing.T) {
	c := New(newMemStore(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Persist(ctx, models.ProfileChange(&models.AthleteProfile{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMirrorRoundTripThroughMigrate(t *testing.T) {
	src := New(newMemStore(), Options{})
	dst := New(newMemStore(), Options{})
	ctx := context.Background()

	require.NoError(t, src.SaveProfile(models.NewAthleteProfile("Sam", 172, 165, testDay, models.ProtocolBuild)))
	require.NoError(t, src.PutLog(models.NewWeightLog(models.MeasureMorning, 171).WithRecordedAt(testDay)))

	summary, err := storage.MigrateData(ctx, src, dst)
	require.NoError(t, err)
	assert.True(t, summary.Profile)
	assert.Equal(t, 1, summary.WeightLogs)

	p, err := dst.GetProfile()
	require.NoError(t, err)
	assert.Equal(t, models.ProtocolBuild, p.Protocol)
}
