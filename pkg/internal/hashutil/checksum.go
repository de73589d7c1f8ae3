// Package hashutil computes the content hashes used to name artifacts.
package hashutil

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// Sum returns the hex-encoded BLAKE3 digest of data
func Sum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short truncates a hex digest to n characters. n <= 0 or n >= len(hash)
// returns the full digest.
func Short(hash string, n int) string {
	if n <= 0 || n >= len(hash) {
		return hash
	}
	return hash[:n]
}

// Combine hashes a set of digests into one. The input order does not matter.
func Combine(hashes []string) string {
	sorted := append([]string(nil), hashes...)
	sort.Strings(sorted)

	hasher := blake3.New()
	for _, h := range sorted {
		_, _ = hasher.Write([]byte(h))
		_, _ = hasher.Write([]byte{'\n'})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
