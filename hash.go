// hash.go: pluggable 64-bit hashing for growtable keys
//
// The table depends only on a Hasher producing a uniform 64-bit digest; it
// reduces that digest to log2(capacity) significant bits via a right shift
// (see BaseTable.home). The default hasher below is a fixed-width
// specialization of the MurmurHash64A finalizer used by the original
// project's hash function selection, adapted for a single 8-byte key
// instead of a variable-length byte buffer.
package growtable

const (
	murmurSeed = 12039890
	murmurMul  = 0xc6a4a7935bd1e995
	murmurR    = 47
)

// murmur64Hasher is the default Hasher: MurmurHash64A specialized for a
// single 8-byte (uint64) input, seeded identically to the reference
// implementation's murmur2_hasher.
type murmur64Hasher struct{}

func (murmur64Hasher) Hash(key uint64) uint64 {
	h := uint64(murmurSeed) ^ (8 * murmurMul)

	k := key
	k *= murmurMul
	k ^= k >> murmurR
	k *= murmurMul

	h ^= k
	h *= murmurMul

	h ^= h >> murmurR
	h *= murmurMul
	h ^= h >> murmurR

	return h
}

// DefaultHasher returns the module's default 64-bit key hasher.
func DefaultHasher() Hasher { return murmur64Hasher{} }

// significantDigits is the bit-width of a Hasher's output that the table
// considers significant (all 64 bits, since Hash returns a full uint64).
const significantDigits = 64

// probeHasher runs a cheap sanity probe over a small fixed input set and
// reports whether the hasher passes it: true when the 8 probe keys yield at
// least 6 distinct digests. A constant hasher fails; the identity function
// passes. Config.Validate returns NewErrInvalidHasher when it fails.
func probeHasher(h Hasher) bool {
	seen := make(map[uint64]struct{}, 8)
	for _, k := range [...]uint64{0, 1, 2, 3, 1 << 32, 1<<64 - 1, 12345, 999999999} {
		seen[h.Hash(k)] = struct{}{}
	}
	return len(seen) >= 6
}
