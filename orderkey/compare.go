package orderkey

import (
	"bytes"
	"slices"
)

// Compare returns -1, 0 or 1 as a is less than, equal to or greater than b.
//
// The first unequal byte decides. If one key is a strict prefix of the other
// the shorter key is less.
func Compare(a, b Key) int {
	return bytes.Compare(a, b)
}

// Max returns the greatest key in keys, or nil if keys is empty.
func Max(keys []Key) Key {
	var largest Key
	for i, k := range keys {
		if i == 0 || Compare(k, largest) > 0 {
			largest = k
		}
	}
	return largest
}

// Min returns the least key in keys, or nil if keys is empty.
func Min(keys []Key) Key {
	var smallest Key
	for i, k := range keys {
		if i == 0 || Compare(k, smallest) < 0 {
			smallest = k
		}
	}
	return smallest
}

// Sort orders keys in place, ascending. Equal keys keep their relative
// positions.
func Sort(keys []Key) {
	slices.SortStableFunc(keys, Compare)
}
