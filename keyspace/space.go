package keyspace

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/google/uuid"

	"github.com/forestrie/go-orderkey/orderkey"
)

// Item is a child of the space's parent together with its order key.
type Item struct {
	ID  uuid.UUID    `json:"id"`
	Key orderkey.Key `json:"key"`
}

// Space holds the order keys of the children of a single parent.
//
// The orderkey generators are pure: two inserts that both read the same
// current maximum would compute the same key. Space makes "read the
// neighbours, then generate" a single step by holding its lock across both.
type Space struct {
	mu     sync.Mutex
	log    logger.Logger
	parent uuid.UUID
	opts   Options
	keys   map[uuid.UUID]orderkey.Key
}

// NewSpace returns an empty space for the children of parent.
func NewSpace(log logger.Logger, parent uuid.UUID, opts ...Option) *Space {
	return &Space{
		log:    log,
		parent: parent,
		opts:   NewOptions(opts...),
		keys:   make(map[uuid.UUID]orderkey.Key),
	}
}

// Parent returns the id of the item whose children the space orders.
func (s *Space) Parent() uuid.UUID { return s.parent }

// Len returns the number of items in the space.
func (s *Space) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// Get returns the item with the given id.
func (s *Space) Get(id uuid.UUID) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return Item{}, false
	}
	return Item{ID: id, Key: k.Clone()}, true
}

// Ordered returns the items in display order. Items that ended up with equal
// keys are ordered by id so that every caller sees the same sequence.
func (s *Space) Ordered() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.ordered()
	for i := range items {
		items[i].Key = items[i].Key.Clone()
	}
	return items
}

// Keys returns the keys of every item, in no particular order.
func (s *Space) Keys() []orderkey.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]orderkey.Key, 0, len(s.keys))
	for _, k := range s.keys {
		keys = append(keys, k.Clone())
	}
	return keys
}

// Add adopts an item whose key was generated elsewhere. The key must pass
// orderkey.Key.Validate.
func (s *Space) Add(item Item) error {
	if item.ID == uuid.Nil {
		return ErrNilItemID
	}
	if err := item.Key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[item.ID]; ok {
		return fmt.Errorf("%w: %s", ErrItemExists, item.ID)
	}
	s.keys[item.ID] = item.Key.Clone()
	return nil
}

// Remove discards the item. The keys of the remaining items are unchanged.
func (s *Space) Remove(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	delete(s.keys, id)
	s.log.Debugf("remove: parent=%s id=%s", s.parent, id)
	return nil
}

// InsertAtEnd creates a new item after every existing item.
func (s *Space) InsertAtEnd() (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert("end", orderkey.AtEnd(s.keyList(uuid.Nil)))
}

// InsertAtStart creates a new item before every existing item.
func (s *Space) InsertAtStart() (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert("start", orderkey.AtStart(s.keyList(uuid.Nil)))
}

// InsertAfter creates a new item immediately after the item with the given id.
func (s *Space) InsertAfter(id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.keyAfter(id, uuid.Nil)
	if err != nil {
		return Item{}, err
	}
	return s.insert("after", k)
}

// InsertBefore creates a new item immediately before the item with the given
// id.
func (s *Space) InsertBefore(id uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.keyBefore(id)
	if err != nil {
		return Item{}, err
	}
	return s.insert("before", k)
}

// InsertBetween creates a new item between two items the caller knows to be
// neighbours. If they are not neighbours the new item still sorts between
// them, but other items may sort between it and either of them.
func (s *Space) InsertBetween(left, right uuid.UUID) (Item, error) {
	if left == right {
		return Item{}, fmt.Errorf("%w: %s", ErrSelfReference, left)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.keys[left]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, left)
	}
	rk, ok := s.keys[right]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, right)
	}
	return s.insert("between", orderkey.Between(lk, rk))
}

// Move gives the item a new key placing it immediately after the item
// identified by after. uuid.Nil moves it to the start. The old key is replaced,
// no other item is re-keyed.
func (s *Space) Move(id uuid.UUID, after uuid.UUID) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[id]; !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if id == after {
		return Item{}, fmt.Errorf("%w: %s", ErrSelfReference, id)
	}

	var k orderkey.Key
	if after == uuid.Nil {
		k = orderkey.AtStart(s.keyList(id))
	} else {
		var err error
		if k, err = s.keyAfter(after, id); err != nil {
			return Item{}, err
		}
	}
	s.keys[id] = k
	s.log.Debugf("move: parent=%s id=%s after=%s key=%v", s.parent, id, after, k)
	return Item{ID: id, Key: k.Clone()}, nil
}

func (s *Space) insert(where string, k orderkey.Key) (Item, error) {
	id := s.opts.newID()
	if _, ok := s.keys[id]; ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemExists, id)
	}
	s.keys[id] = k
	s.log.Debugf("insert %s: parent=%s id=%s key=%v", where, s.parent, id, k)
	return Item{ID: id, Key: k.Clone()}, nil
}

// keyAfter generates a key between the item and its successor, ignoring the
// item identified by exclude.
func (s *Space) keyAfter(id uuid.UUID, exclude uuid.UUID) (orderkey.Key, error) {
	items := s.orderedExcluding(exclude)
	i := slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if i == len(items)-1 {
		return orderkey.After(items[i].Key), nil
	}
	return orderkey.Between(items[i].Key, items[i+1].Key), nil
}

func (s *Space) keyBefore(id uuid.UUID) (orderkey.Key, error) {
	items := s.ordered()
	i := slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	if i == 0 {
		return orderkey.Before(items[i].Key), nil
	}
	return orderkey.Between(items[i-1].Key, items[i].Key), nil
}

func (s *Space) keyList(exclude uuid.UUID) []orderkey.Key {
	keys := make([]orderkey.Key, 0, len(s.keys))
	for id, k := range s.keys {
		if id == exclude {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

func (s *Space) ordered() []Item {
	return s.orderedExcluding(uuid.Nil)
}

func (s *Space) orderedExcluding(exclude uuid.UUID) []Item {
	items := make([]Item, 0, len(s.keys))
	for id, k := range s.keys {
		if id == exclude {
			continue
		}
		items = append(items, Item{ID: id, Key: k})
	}
	slices.SortFunc(items, compareItems)
	return items
}

func compareItems(a, b Item) int {
	if c := orderkey.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}
