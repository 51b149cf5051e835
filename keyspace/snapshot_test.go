package keyspace_test

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-orderkey/keyspace"
	"github.com/forestrie/go-orderkey/orderkey"
)

func TestSnapshotRestore(t *testing.T) {
	tc := newTestContext(t)
	s := tc.NewSpace()
	tc.Populate(s, 50)

	codec, err := keyspace.NewSnapshotCodec()
	require.NoError(t, err)

	data, err := keyspace.MarshalSnapshot(&codec, s.Snapshot())
	require.NoError(t, err)

	snap, err := keyspace.UnmarshalSnapshot(&codec, data)
	require.NoError(t, err)
	restored, err := keyspace.RestoreSpace(tc.Log, snap)
	require.NoError(t, err)

	assert.Equal(t, s.Parent(), restored.Parent())
	assert.Equal(t, s.Ordered(), restored.Ordered())

	// Encoding is deterministic.
	again, err := keyspace.MarshalSnapshot(&codec, restored.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestSnapshotKeysAreIntegerArrays(t *testing.T) {
	tc := newTestContext(t)
	s := tc.NewSpace()
	id := tc.NewID()
	require.NoError(t, s.Add(keyspace.Item{ID: id, Key: orderkey.Key{55, 23}}))

	codec, err := keyspace.NewSnapshotCodec()
	require.NoError(t, err)
	data, err := keyspace.MarshalSnapshot(&codec, s.Snapshot())
	require.NoError(t, err)

	// Decode generically: the key must arrive as a list of integers, not as
	// a byte string.
	var generic map[int]any
	require.NoError(t, cbor.Unmarshal(data, &generic))
	items, ok := generic[3].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item, ok := items[0].(map[any]any)
	require.True(t, ok)
	assert.Equal(t, []any{uint64(55), uint64(23)}, item[uint64(2)])
}

func TestRestoreSpaceRejects(t *testing.T) {
	tc := newTestContext(t)
	parent := tc.NewID()
	id := tc.NewID()

	tests := []struct {
		name    string
		snap    keyspace.Snapshot
		wantErr error
	}{
		{
			"unknown version",
			keyspace.Snapshot{Version: 9, Parent: parent[:]},
			keyspace.ErrSnapshotVersion,
		},
		{
			"short parent",
			keyspace.Snapshot{Version: keyspace.SnapshotVersionV1, Parent: []byte{1, 2}},
			keyspace.ErrSnapshotInvalid,
		},
		{
			"short item id",
			keyspace.Snapshot{
				Version: keyspace.SnapshotVersionV1, Parent: parent[:],
				Items: []keyspace.SnapshotItem{{ID: []byte{1}, Key: orderkey.Key{1}}},
			},
			keyspace.ErrSnapshotInvalid,
		},
		{
			"empty key",
			keyspace.Snapshot{
				Version: keyspace.SnapshotVersionV1, Parent: parent[:],
				Items: []keyspace.SnapshotItem{{ID: id[:], Key: orderkey.Key{}}},
			},
			orderkey.ErrEmptyKey,
		},
		{
			"zero tail key",
			keyspace.Snapshot{
				Version: keyspace.SnapshotVersionV1, Parent: parent[:],
				Items: []keyspace.SnapshotItem{{ID: id[:], Key: orderkey.Key{5, 0}}},
			},
			orderkey.ErrKeyZeroTail,
		},
		{
			"duplicate id",
			keyspace.Snapshot{
				Version: keyspace.SnapshotVersionV1, Parent: parent[:],
				Items: []keyspace.SnapshotItem{
					{ID: id[:], Key: orderkey.Key{1}},
					{ID: id[:], Key: orderkey.Key{2}},
				},
			},
			keyspace.ErrItemExists,
		},
		{
			"nil item id",
			keyspace.Snapshot{
				Version: keyspace.SnapshotVersionV1, Parent: parent[:],
				Items: []keyspace.SnapshotItem{{ID: uuid.Nil[:], Key: orderkey.Key{1}}},
			},
			keyspace.ErrNilItemID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := keyspace.RestoreSpace(tc.Log, tt.snap)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSnapshotCodecRequired(t *testing.T) {
	_, err := keyspace.MarshalSnapshot(nil, keyspace.Snapshot{})
	require.ErrorIs(t, err, keyspace.ErrCodecNotProvided)
	_, err = keyspace.UnmarshalSnapshot(nil, nil)
	require.ErrorIs(t, err, keyspace.ErrCodecNotProvided)
}

func TestUnmarshalSnapshotGarbage(t *testing.T) {
	codec, err := keyspace.NewSnapshotCodec()
	require.NoError(t, err)
	_, err = keyspace.UnmarshalSnapshot(&codec, []byte{0xff, 0x00})
	require.ErrorIs(t, err, keyspace.ErrSnapshotInvalid)
}
