package keyspace

import (
	"fmt"

	dtcbor "github.com/datatrails/go-datatrails-common/cbor"
	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/forestrie/go-orderkey/orderkey"
)

const (
	SnapshotVersionV1 uint8 = 1
)

// SnapshotItem records one child. Key is encoded as a list of integers, see
// orderkey.Key.MarshalCBOR.
type SnapshotItem struct {
	ID  []byte       `cbor:"1,keyasint"`
	Key orderkey.Key `cbor:"2,keyasint"`
}

// Snapshot is the persisted form of a Space. Items are written in display
// order, but readers must not rely on that: the keys alone define the order.
type Snapshot struct {
	Version uint8          `cbor:"1,keyasint"`
	Parent  []byte         `cbor:"2,keyasint"`
	Items   []SnapshotItem `cbor:"3,keyasint"`
}

// NewSnapshotCodec returns the codec used for snapshots. Encoding is
// deterministic so that unchanged spaces produce identical blobs.
func NewSnapshotCodec() (dtcbor.CBORCodec, error) {
	codec, err := dtcbor.NewCBORCodec(
		dtcbor.NewDeterministicEncOpts(),
		dtcbor.NewDeterministicDecOpts(),
	)
	if err != nil {
		return dtcbor.CBORCodec{}, err
	}
	return codec, nil
}

// Snapshot captures the current items of the space.
func (s *Space) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Version: SnapshotVersionV1,
		Parent:  bytesOf(s.parent),
		Items:   make([]SnapshotItem, 0, len(s.keys)),
	}
	for _, it := range s.ordered() {
		snap.Items = append(snap.Items, SnapshotItem{ID: bytesOf(it.ID), Key: it.Key.Clone()})
	}
	return snap
}

// RestoreSpace builds a space from a snapshot. Every item id must be a uuid,
// every key non-empty, and no id may appear twice.
func RestoreSpace(log logger.Logger, snap Snapshot, opts ...Option) (*Space, error) {
	if snap.Version != SnapshotVersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snap.Version)
	}
	parent, err := uuid.FromBytes(snap.Parent)
	if err != nil {
		return nil, fmt.Errorf("%w: parent: %v", ErrSnapshotInvalid, err)
	}

	s := NewSpace(log, parent, opts...)
	for i, si := range snap.Items {
		id, err := uuid.FromBytes(si.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrSnapshotInvalid, i, err)
		}
		if err = s.Add(Item{ID: id, Key: si.Key}); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrSnapshotInvalid, i, err)
		}
	}
	return s, nil
}

// MarshalSnapshot encodes snap with codec, normally one from NewSnapshotCodec.
func MarshalSnapshot(codec *dtcbor.CBORCodec, snap Snapshot) ([]byte, error) {
	if codec == nil {
		return nil, ErrCodecNotProvided
	}
	return codec.MarshalCBOR(snap)
}

// UnmarshalSnapshot decodes a snapshot. Decode failures wrap
// ErrSnapshotInvalid; the content is checked by RestoreSpace.
func UnmarshalSnapshot(codec *dtcbor.CBORCodec, data []byte) (Snapshot, error) {
	var snap Snapshot
	if codec == nil {
		return snap, ErrCodecNotProvided
	}
	if err := codec.UnmarshalInto(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return snap, nil
}

func bytesOf(id uuid.UUID) []byte {
	b := make([]byte, len(id))
	copy(b, id[:])
	return b
}
