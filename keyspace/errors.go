package keyspace

import "errors"

var (
	ErrItemNotFound   = errors.New("keyspace: item not found in the space")
	ErrItemExists     = errors.New("keyspace: an item with the same id is already in the space")
	ErrSelfReference  = errors.New("keyspace: an item can't be positioned relative to itself")
	ErrNilItemID      = errors.New("keyspace: the nil uuid is not a valid item id")
	ErrParentMismatch = errors.New("keyspace: the snapshot belongs to a different parent")
)

var (
	ErrSnapshotInvalid  = errors.New("keyspace: the snapshot is malformed")
	ErrSnapshotVersion  = errors.New("keyspace: the snapshot version is not supported")
	ErrCodecNotProvided = errors.New("keyspace: a CBOR codec was required but not provided")
)

var (
	ErrBlobNotFound     = errors.New("keyspace: blob not found")
	ErrBlobConflict     = errors.New("keyspace: blob was changed or created by another writer")
	ErrEtagRequired     = errors.New("keyspace: etag is required when updating an existing blob")
	ErrStoreNotProvided = errors.New("keyspace: a blob store was required but not provided")
)
