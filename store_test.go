package mooglife

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mooglife/mooglife/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRawPayload(t *testing.T) {
	store, err := NewBoltStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	runId := uuid.NewString()
	payload := []byte(`{"pair": {"priceUsd": "0.001"}}`)
	require.NoError(t, store.SaveRawPayload(schema.SourceDexScreener, runId, payload))

	// empty payloads are not archived
	require.NoError(t, store.SaveRawPayload(schema.SourceDexScreener, runId, nil))

	keys, err := store.RawPayloadKeys(schema.SourceDexScreener)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], runId)

	got, err := store.LoadRawPayload(schema.SourceDexScreener, keys[0])
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// sources land in separate buckets
	keys, err = store.RawPayloadKeys(schema.SourceBirdeye)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
