package keyspace

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"
)

const (
	V1KeyspacePrefix = "v1/keyspaces"
	SiblingsBlobName = "siblings.cbor"

	TagParent    = "parent"
	TagItemCount = "itemcount"
)

// SpaceBlobPath returns the path of the blob holding the children of parent.
func SpaceBlobPath(parent uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s", V1KeyspacePrefix, parent, SiblingsBlobName)
}

// SpaceContext carries a space read from storage together with what is needed
// to write it back safely.
type SpaceContext struct {
	Parent   uuid.UUID
	BlobPath string
	// ETag is empty only when Creating is true.
	ETag     string
	Creating bool
	LastRead time.Time
	Space    *Space
}

// CommitterConfig holds the options applied to every space the committer
// reads or creates.
type CommitterConfig struct {
	SpaceOptions []Option
}

// Committer reads and writes space snapshots. Writes are guarded by the blob
// etag, so a writer working from a stale read fails with ErrBlobConflict and
// must read again. That is what serializes key generation across processes.
type Committer struct {
	Cfg   CommitterConfig
	Log   logger.Logger
	Store BlobStore
	codec dtcbor.CBORCodec
}

// NewCommitter returns a committer over store. A nil store is
// ErrStoreNotProvided.
func NewCommitter(cfg CommitterConfig, log logger.Logger, store BlobStore) (*Committer, error) {
	if store == nil {
		return nil, ErrStoreNotProvided
	}
	codec, err := NewSnapshotCodec()
	if err != nil {
		return nil, err
	}
	c := &Committer{
		Cfg:   cfg,
		Log:   log,
		Store: store,
		codec: codec,
	}
	return c, nil
}

// GetSpaceContext reads the space for parent. If nothing has been stored yet
// the context is ready to create the first blob and holds an empty space.
func (c *Committer) GetSpaceContext(ctx context.Context, parent uuid.UUID) (*SpaceContext, error) {

	sc := &SpaceContext{
		Parent:   parent,
		BlobPath: SpaceBlobPath(parent),
	}

	data, etag, err := c.Store.Read(ctx, sc.BlobPath)
	if errors.Is(err, ErrBlobNotFound) {
		c.Log.Debugf("GetSpaceContext: creating %s", sc.BlobPath)
		sc.Creating = true
		sc.Space = NewSpace(c.Log, parent, c.Cfg.SpaceOptions...)
		return sc, nil
	}
	if err != nil {
		return nil, err
	}

	snap, err := UnmarshalSnapshot(&c.codec, data)
	if err != nil {
		return nil, err
	}
	sc.Space, err = RestoreSpace(c.Log, snap, c.Cfg.SpaceOptions...)
	if err != nil {
		return nil, err
	}
	if sc.Space.Parent() != parent {
		return nil, fmt.Errorf("%w: %s read from %s", ErrParentMismatch, sc.Space.Parent(), sc.BlobPath)
	}

	sc.ETag = etag
	sc.LastRead = time.Now()
	return sc, nil
}

// CommitContext writes the space back. On success the context carries the new
// etag and is ready for further changes and commits.
func (c *Committer) CommitContext(ctx context.Context, sc *SpaceContext) error {

	// An etag is required to update. It is absent only when creating.
	if sc.ETag == "" && !sc.Creating {
		return ErrEtagRequired
	}

	snap := sc.Space.Snapshot()
	data, err := MarshalSnapshot(&c.codec, snap)
	if err != nil {
		return err
	}
	tags := map[string]string{
		TagParent:    sc.Parent.String(),
		TagItemCount: strconv.Itoa(len(snap.Items)),
	}

	etag, err := c.Store.Write(
		ctx, sc.BlobPath, data, WriteCondition{ETag: sc.ETag, Creating: sc.Creating}, tags)
	if err != nil {
		return err
	}

	c.Log.Debugf("CommitContext: %s items=%d etag=%s", sc.BlobPath, len(snap.Items), etag)
	sc.ETag = etag
	sc.Creating = false
	return nil
}

// Update reads the space, applies fn and commits the result, retrying from a
// fresh read when another writer commits first. fn may be called more than
// once and must not keep references to the space it is given.
func (c *Committer) Update(ctx context.Context, parent uuid.UUID, retries int, fn func(*Space) error) (*SpaceContext, error) {
	for attempt := 0; ; attempt++ {
		sc, err := c.GetSpaceContext(ctx, parent)
		if err != nil {
			return nil, err
		}
		if err = fn(sc.Space); err != nil {
			return nil, err
		}
		err = c.CommitContext(ctx, sc)
		if err == nil {
			return sc, nil
		}
		if !errors.Is(err, ErrBlobConflict) || attempt >= retries {
			return nil, err
		}
		c.Log.Infof("Update: %s conflict on attempt %d, retrying", sc.BlobPath, attempt)
	}
}
