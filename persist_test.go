package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// kvBackends returns a fresh instance of every store backend.
func kvBackends(t *testing.T) map[string]KV {
	t.Helper()

	fileStore, err := newFileKV(t.TempDir())
	require.NoError(t, err)

	sqliteStore, err := newSQLiteKV(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	mr := miniredis.RunT(t)
	redisStore := newRedisKVWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), redisNamespace)
	t.Cleanup(func() { redisStore.Close() })

	return map[string]KV{
		"memory": newMemoryKV(),
		"file":   fileStore,
		"sqlite": sqliteStore,
		"redis":  redisStore,
	}
}

func TestKVBackends(t *testing.T) {
	ctx := context.Background()
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Put(ctx, "k/with spaces", []byte("v1")))
			require.NoError(t, kv.Put(ctx, "k/with spaces", []byte("v2")))
			got, err := kv.Get(ctx, "k/with spaces")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			require.NoError(t, kv.Delete(ctx, "k/with spaces"))
			_, err = kv.Get(ctx, "k/with spaces")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, kv.Delete(ctx, "never-set"))
		})
	}
}

func TestRecordStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	rec := Record{
		Notes: []Note{
			{ID: 1, Text: "Q?", Color: ColorPurple, Kind: KindQuestion, X: 2, Y: 1},
			{ID: 4, Text: "k", Color: ColorBlue, Kind: KindKeyword, X: 10.5, Y: 7},
		},
		Lines:           []Connection{{From: 1, To: 4}},
		SummaryText:     "sum",
		QuestionText:    "Q?",
		NextNoteID:      5,
		LastModelAnswer: "ans",
	}
	for name, kv := range kvBackends(t) {
		t.Run(name, func(t *testing.T) {
			store := NewRecordStore(kv, nil)
			require.NoError(t, store.Save(ctx, rec))
			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, rec, got)
		})
	}
}

func TestRecordStoreMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	store := NewRecordStore(kv, nil)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultRecord(), got)

	require.NoError(t, kv.Put(ctx, recordKey, []byte(`{"notes": [`)))
	got, err = store.Load(ctx)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.Equal(t, defaultRecord(), got)
}

func TestRecordLoadsOlderFields(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	raw := `{"notes":[{"id":3,"text":"a","color":"pink","type":"keyword","x":1,"y":2}],"lines":[],"summaryText":"s"}`
	require.NoError(t, kv.Put(ctx, recordKey, []byte(raw)))

	got, err := NewRecordStore(kv, nil).Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, KindKeyword, got.Notes[0].Kind)
	assert.Equal(t, "s", got.SummaryText)
	assert.Equal(t, 4, got.NextNoteID)
}

func TestRecordNormalize(t *testing.T) {
	r := Record{
		Notes: []Note{
			{ID: 1, Color: "orange", Kind: "sticky"},
			{ID: 7, Color: ColorGreen, Kind: KindFree},
		},
		Lines: []Connection{
			{From: 1, To: 7},
			{From: 7, To: 1},
			{From: 1, To: 1},
			{From: 1, To: 99},
		},
		NextNoteID: 2,
	}
	r.normalize()

	assert.Equal(t, ColorYellow, r.Notes[0].Color)
	assert.Equal(t, KindFree, r.Notes[0].Kind)
	assert.Equal(t, []Connection{{From: 1, To: 7}}, r.Lines)
	assert.Equal(t, 8, r.NextNoteID)

	empty := Record{}
	empty.normalize()
	assert.NotNil(t, empty.Notes)
	assert.NotNil(t, empty.Lines)
	assert.Equal(t, 1, empty.NextNoteID)
}

func TestRecordNormalizeKeepsNewestQuestion(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV()
	raw := `{"notes":[
		{"id":1,"text":"old?","color":"purple","type":"question","x":2,"y":1},
		{"id":2,"text":"kw","color":"pink","type":"keyword","x":10,"y":5},
		{"id":3,"text":"new?","color":"purple","type":"question","x":2,"y":1}],
		"lines":[{"from":1,"to":2},{"from":3,"to":2}],"nextNoteId":4}`
	require.NoError(t, kv.Put(ctx, recordKey, []byte(raw)))

	rec, err := NewRecordStore(kv, nil).Load(ctx)
	require.NoError(t, err)

	var questions []Note
	for _, n := range rec.Notes {
		if n.Kind == KindQuestion {
			questions = append(questions, n)
		}
	}
	require.Len(t, questions, 1)
	assert.Equal(t, 3, questions[0].ID)
	assert.Equal(t, "new?", questions[0].Text)
	assert.Len(t, rec.Notes, 2)
	assert.Equal(t, []Connection{{From: 3, To: 2}}, rec.Lines)
	assert.Equal(t, 4, rec.NextNoteID)
}

func TestFileKVKeys(t *testing.T) {
	ctx := context.Background()
	kv, err := newFileKV(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, recordKey, []byte("{}")))
	require.NoError(t, kv.Put(ctx, settingKey(settingAPIKey), []byte("x")))

	keys, err := kv.keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{recordKey, settingKey(settingAPIKey)}, keys)
}

func TestOpenKV(t *testing.T) {
	dir := t.TempDir()
	for _, store := range []string{"file", "sqlite", "memory"} {
		t.Run(store, func(t *testing.T) {
			kv, err := openKV(&Config{Store: store, DataDir: dir}, zap.NewNop())
			require.NoError(t, err)
			defer kv.Close()
			require.NoError(t, kv.Put(context.Background(), "k", []byte("v")))
		})
	}

	_, err := openKV(&Config{Store: "etcd"}, zap.NewNop())
	assert.Error(t, err)
	_, err = openKV(&Config{Store: "redis"}, zap.NewNop())
	assert.Error(t, err)
}
