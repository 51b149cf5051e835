package keyspace_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forestrie/go-orderkey/keyspace"
	"github.com/forestrie/go-orderkey/keyspacetesting"
	"github.com/forestrie/go-orderkey/orderkey"
)

func newCommitter(t *testing.T, tc keyspacetesting.TestContext) *keyspace.Committer {
	c, err := keyspace.NewCommitter(keyspace.CommitterConfig{}, tc.Log, tc.Store)
	require.NoError(t, err)
	return c
}

func TestSpaceBlobPath(t *testing.T) {
	tc := newTestContext(t)
	parent := tc.NewID()
	assert.Equal(t, "v1/keyspaces/"+parent.String()+"/siblings.cbor", keyspace.SpaceBlobPath(parent))
}

func TestCommitterCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)
	parent := tc.NewID()

	sc, err := c.GetSpaceContext(ctx, parent)
	require.NoError(t, err)
	require.True(t, sc.Creating)
	require.Empty(t, sc.ETag)
	require.Equal(t, 0, sc.Space.Len())

	first, err := sc.Space.InsertAtEnd()
	require.NoError(t, err)
	require.NoError(t, c.CommitContext(ctx, sc))
	assert.False(t, sc.Creating)
	assert.NotEmpty(t, sc.ETag)

	tags := tc.Store.Tags(sc.BlobPath)
	assert.Equal(t, parent.String(), tags[keyspace.TagParent])
	assert.Equal(t, "1", tags[keyspace.TagItemCount])

	// A fresh read sees the committed item and can extend the space.
	sc2, err := c.GetSpaceContext(ctx, parent)
	require.NoError(t, err)
	require.False(t, sc2.Creating)
	assert.Equal(t, sc.ETag, sc2.ETag)
	got, ok := sc2.Space.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, orderkey.Singleton(), got.Key)

	second, err := sc2.Space.InsertAtEnd()
	require.NoError(t, err)
	assert.Equal(t, orderkey.Key{129}, second.Key)
	require.NoError(t, c.CommitContext(ctx, sc2))
	assert.Equal(t, "2", tc.Store.Tags(sc.BlobPath)[keyspace.TagItemCount])
}

func TestCommitterStaleWriterConflicts(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)
	parent := tc.NewID()

	sc, err := c.GetSpaceContext(ctx, parent)
	require.NoError(t, err)
	_, err = sc.Space.InsertAtEnd()
	require.NoError(t, err)
	require.NoError(t, c.CommitContext(ctx, sc))

	// Two writers read the same state and both insert at the end. Without
	// the etag guard they would both store [129].
	w1, err := c.GetSpaceContext(ctx, parent)
	require.NoError(t, err)
	w2, err := c.GetSpaceContext(ctx, parent)
	require.NoError(t, err)

	k1, err := w1.Space.InsertAtEnd()
	require.NoError(t, err)
	k2, err := w2.Space.InsertAtEnd()
	require.NoError(t, err)
	require.Equal(t, k1.Key, k2.Key)

	require.NoError(t, c.CommitContext(ctx, w1))
	require.ErrorIs(t, c.CommitContext(ctx, w2), keyspace.ErrBlobConflict)

	// Two creators racing on an empty parent.
	other := tc.NewID()
	c1, err := c.GetSpaceContext(ctx, other)
	require.NoError(t, err)
	c2, err := c.GetSpaceContext(ctx, other)
	require.NoError(t, err)
	require.NoError(t, c.CommitContext(ctx, c1))
	require.ErrorIs(t, c.CommitContext(ctx, c2), keyspace.ErrBlobConflict)
}

func TestCommitterEtagRequired(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)

	sc, err := c.GetSpaceContext(ctx, tc.NewID())
	require.NoError(t, err)
	sc.Creating = false
	require.ErrorIs(t, c.CommitContext(ctx, sc), keyspace.ErrEtagRequired)
}

func TestCommitterStoreRequired(t *testing.T) {
	tc := newTestContext(t)
	_, err := keyspace.NewCommitter(keyspace.CommitterConfig{}, tc.Log, nil)
	require.ErrorIs(t, err, keyspace.ErrStoreNotProvided)
}

func TestCommitterParentMismatch(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)

	// Store a space under the path of a different parent.
	s := tc.NewSpace()
	codec, err := keyspace.NewSnapshotCodec()
	require.NoError(t, err)
	data, err := keyspace.MarshalSnapshot(&codec, s.Snapshot())
	require.NoError(t, err)

	wrong := tc.NewID()
	_, err = tc.Store.Write(ctx, keyspace.SpaceBlobPath(wrong), data, keyspace.WriteCondition{Creating: true}, nil)
	require.NoError(t, err)

	_, err = c.GetSpaceContext(ctx, wrong)
	require.ErrorIs(t, err, keyspace.ErrParentMismatch)
}

func TestCommitterUpdateRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)
	parent := tc.NewID()

	// The first attempt is raced by another writer which commits inside fn.
	attempts := 0
	sc, err := c.Update(ctx, parent, 3, func(s *keyspace.Space) error {
		attempts++
		if attempts == 1 {
			racer, err := c.GetSpaceContext(ctx, parent)
			require.NoError(t, err)
			_, err = racer.Space.InsertAtEnd()
			require.NoError(t, err)
			require.NoError(t, c.CommitContext(ctx, racer))
		}
		_, err := s.InsertAtEnd()
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 2, sc.Space.Len())
	tc.RequireStrictlyOrdered(sc.Space)
	assert.Equal(t, strconv.Itoa(2), tc.Store.Tags(sc.BlobPath)[keyspace.TagItemCount])
}

func TestCommitterUpdateGivesUp(t *testing.T) {
	ctx := context.Background()
	tc := newTestContext(t)
	c := newCommitter(t, tc)
	parent := tc.NewID()

	_, err := c.Update(ctx, parent, 0, func(s *keyspace.Space) error {
		racer, err := c.GetSpaceContext(ctx, parent)
		require.NoError(t, err)
		require.NoError(t, c.CommitContext(ctx, racer))
		return nil
	})
	require.ErrorIs(t, err, keyspace.ErrBlobConflict)
}
