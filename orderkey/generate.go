package orderkey

// After returns the smallest convenient key strictly greater than end.
//
// Leading bytes already at MaxByte can't be incremented, so they are carried
// across unchanged. The first byte with room is incremented by Step and the
// new key ends there. If every byte is at MaxByte, Step is appended, which is
// greater because a strict prefix always compares less.
//
// An empty end is treated as an empty space and the singleton key is returned.
func After(end Key) Key {
	if len(end) == 0 {
		return Singleton()
	}

	result := make(Key, 0, len(end)+1)
	for _, v := range end {
		if v <= MaxByte-Step {
			return append(result, v+Step)
		}
		result = append(result, v)
	}
	return append(result, Step)
}

// Before returns a convenient key strictly less than start.
//
// Leading zero bytes are carried across unchanged. The first byte greater than
// Step is decremented by Step and the new key ends there. A byte in 1..Step
// can't be decremented without producing a key that ends in zero, and no key
// fits between x and x followed by zeros, so it becomes 0 and MaxByte-Step is
// appended instead.
//
// A key made only of zero bytes has no smaller key that would leave room for
// further insertions. The generators never produce one; if given one, Before
// returns a copy of it unchanged.
//
// An empty start is treated as an empty space and the singleton key is
// returned.
func Before(start Key) Key {
	if len(start) == 0 {
		return Singleton()
	}

	result := make(Key, 0, len(start)+1)
	for _, v := range start {
		switch {
		case v == 0:
			result = append(result, v)
		case v > Step:
			return append(result, v-Step)
		default:
			return append(result, 0, MaxByte-Step)
		}
	}
	return result
}

// Between returns a key strictly between p1 and p2. The arguments may be given
// in either order.
//
// Equal keys have nothing between them. Rather than fail, a copy of p1 is
// returned and the caller ends up with two equal keys.
//
// The lower key is read as if followed by an endless run of 0 bytes and the
// upper key as if followed by an endless run of 256. Positions where the two
// agree are copied. At the first position where they differ by two or more the
// floor of the midpoint is appended and the key is complete. Where they differ
// by exactly one there is no room at this depth, so the lower byte is kept and
// the result continues as a key greater than the remainder of the lower key:
// its run of MaxByte bytes is copied, then the byte half way between the next
// lower byte and 256 ends the key.
//
// The result is never more than two bytes longer than the longer argument,
// and never ends in a zero byte.
func Between(p1, p2 Key) Key {
	c := Compare(p1, p2)
	if c == 0 {
		return p1.Clone()
	}
	if c > 0 {
		p1, p2 = p2, p1
	}

	result := make(Key, 0, max(len(p1), len(p2))+2)

	for i := 0; ; i++ {
		lo := lowerAt(p1, i)
		hi := upperAt(p2, i)

		if lo == hi {
			result = append(result, byte(lo))
			continue
		}

		// p1 < p2 and the positions before i are equal, so lo < hi here.
		if hi-lo >= 2 {
			return append(result, byte((lo+hi)/2))
		}

		// Adjacent. Keep the lower byte, anything after it is below p2.
		result = append(result, byte(lo))
		j := i + 1
		for ; lowerAt(p1, j) == MaxByte; j++ {
			result = append(result, MaxByte)
		}
		return append(result, byte((lowerAt(p1, j)+virtualUpper)/2))
	}
}

// AtEnd returns a key greater than every key in keys. If keys is empty the
// singleton key is returned.
func AtEnd(keys []Key) Key {
	if len(keys) == 0 {
		return Singleton()
	}
	return After(Max(keys))
}

// AtStart returns a key less than every key in keys. If keys is empty the
// singleton key is returned.
func AtStart(keys []Key) Key {
	if len(keys) == 0 {
		return Singleton()
	}
	return Before(Min(keys))
}

// lowerAt reads position i of the lower key, padding with 0.
func lowerAt(k Key, i int) int {
	if i < len(k) {
		return int(k[i])
	}
	return 0
}

// upperAt reads position i of the upper key, padding with 256.
func upperAt(k Key, i int) int {
	if i < len(k) {
		return int(k[i])
	}
	return virtualUpper
}
