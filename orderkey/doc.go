package orderkey

/*

# Order keys for sibling items

This package provides the primitives for ordering the children of a single
parent (a page, a table, a container) using variable length byte string keys.

The functions are:

- small and pure
- byte arithmetic on slices, no hidden state
- a burden of knowledge on the caller: keys from different parents are never
  compared, and the caller serializes "read the current max, then generate"

## Ordering

Keys compare byte-wise, lexicographically. Where one key is a strict prefix of
the other, the shorter key is less:

	[55 23] < [55 24]
	[55]    < [55 0] < [55 0 0] < [55 1]

This is exactly `bytes.Compare`, so keys may be used directly as index keys in
any store that orders bytewise.

## Generating keys

There are three generators. None of them ever rewrite an existing key.

After increments the first byte that has room, carrying across leading 255
bytes by extending the key:

	After([55])       = [56]
	After([255])      = [255 1]
	After([255 255])  = [255 255 1]

Before is the mirror image, borrowing across leading zero bytes:

	Before([2])   = [1]
	Before([1])   = [0 254]
	Before([0 5]) = [0 4]

Between finds a base 256 midpoint. The lower key is treated as if padded with
an infinite run of 0 bytes and the upper key as if padded with 256, one past
the largest byte. This is what lets the midpoint converge when one key is a
prefix of the other:

	Between([55 23], [55 24])    = [55 23 128]
	Between([1 30],  [1 30 255]) = [1 30 127]

## Density

Under lexicographic order the only pairs with nothing strictly between them
are a key and that same key followed by zero bytes. None of the generators
ever produce a key whose last byte is zero, so as long as every key in a space
came from this package, Between always succeeds. Repeatedly inserting between
the same pair of neighbours grows the key by roughly one byte every eight
insertions.

The singleton key [128] sits in the middle of the byte range so that a new
space has equal room before and after its first item.

*/
