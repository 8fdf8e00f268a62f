package hashing

// EmptyRootInput is the fixed constant hashed to produce the sentinel
// root of an empty merkle input.
const EmptyRootInput = "empty"

// Root aggregates an ordered list of leaves into a single merkle root.
//
// The scheme is order-sensitive and deliberately non-standard:
//   - no leaves   → SHA256("empty") sentinel
//   - one leaf    → that leaf verbatim, no hashing
//   - each level pairs adjacent leaves left to right; an odd trailing
//     leaf is paired with itself
//   - a pair combines by concatenating the two digest strings (not
//     their raw bytes) and applying SHA256
//
// Leaf order is caller-supplied and significant.
func Root(leaves []Digest) Digest {
	if len(leaves) == 0 {
		return SHA256([]byte(EmptyRootInput))
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]Digest, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		next := make([]Digest, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			next = append(next, SHA256([]byte(string(left)+string(right))))
		}
		level = next
	}
	return level[0]
}

// RootStrings is Root over plain strings, used where leaves are raw
// identifiers (e.g. SKU IDs) rather than digests.
func RootStrings(leaves []string) Digest {
	ds := make([]Digest, len(leaves))
	for i, l := range leaves {
		ds[i] = Digest(l)
	}
	return Root(ds)
}
