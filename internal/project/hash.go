package project

import (
	"crypto/sha256"

	"swimat/internal/format"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine строит составной хеш: H( content || part1 || part2 ... ).
// Порядок частей должен быть детерминированным.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// OptionsDigest hashes the layout-relevant part of opt, so cached results are
// keyed by the settings that produced them.
func OptionsDigest(opt format.Options) Digest {
	return sha256.Sum256([]byte("indent=" + opt.Unit()))
}
