package orderkey

import "errors"

const (
	// Step is the increment applied by After and the decrement applied by
	// Before.
	Step = 1

	// MaxByte is the largest value a key byte can hold.
	MaxByte = 255

	// SingletonByte is the only byte of the key given to the first item in an
	// empty space.
	SingletonByte = 128

	// virtualUpper pads the upper key in Between. It is one past MaxByte.
	virtualUpper = MaxByte + 1
)

var (
	ErrEmptyKey     = errors.New("orderkey: key must have at least one byte")
	ErrByteRange    = errors.New("orderkey: key byte out of range 0..255")
	ErrMalformedKey = errors.New("orderkey: key text is malformed")
	ErrKeyZeroTail  = errors.New("orderkey: key must not end in a zero byte")
)

// Key is an order key. Keys are values: the generators always return a newly
// allocated slice and never modify their arguments.
type Key []byte

// Singleton returns the key for the first item in an empty space.
func Singleton() Key {
	return Key{SingletonByte}
}

// Clone returns a copy of k that shares no storage with it.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	c := make(Key, len(k))
	copy(c, k)
	return c
}

// Validate checks the key is usable as an order key. A key ending in 0 has no
// key between it and its own prefix, so it is rejected; the generators never
// produce one.
func (k Key) Validate() error {
	if len(k) == 0 {
		return ErrEmptyKey
	}
	if k[len(k)-1] == 0 {
		return ErrKeyZeroTail
	}
	return nil
}

// Equal reports whether k and other are the same key.
func (k Key) Equal(other Key) bool { return Compare(k, other) == 0 }
// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool  { return Compare(k, other) < 0 }
