package pseudonym

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/nao1215/traveller/internal/graph"
)

// KeySize is the length of a run key in bytes.
const KeySize = 32

// hashSize is the BLAKE2b digest length that fits a uint64 id.
const hashSize = 8

// Key is the secret of one anonymization run.
type Key [KeySize]byte

// NewRunKey draws a key from crypto/rand.
func NewRunKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return k, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}
	return k, nil
}

// NewSalt draws a random 64-bit salt.
func NewSalt() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Hash returns the keyed BLAKE2b-64 digest of value as an integer.
func Hash(key Key, value []byte) uint64 {
	h := newHash(key)
	_, _ = h.Write(value)
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

// HashSalted hashes value followed by the little-endian bytes of salt.
func HashSalted(key Key, value []byte, salt uint64) uint64 {
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], salt)

	h := newHash(key)
	_, _ = h.Write(value)
	_, _ = h.Write(s[:])
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

func newHash(key Key) hash.Hash {
	// blake2b.New only fails for a bad size or a key longer than 64 bytes.
	h, err := blake2b.New(hashSize, key[:])
	if err != nil {
		panic(err)
	}
	return h
}

// Fingerprint is the fixed dedup hash used while a graph is being built.
// It is not a pseudonym: anyone can recompute it from the identifier.
func Fingerprint(identifier string) uint64 {
	return xxhash.Sum64String(identifier)
}

// Anonymize returns a copy of g in which every node id is replaced by its
// salted keyed hash under a fresh key and salt. Kinds, node handles and
// edges are kept. The key and salt are not retained.
func Anonymize(g *graph.Graph) (*graph.Graph, error) {
	key, err := NewRunKey()
	if err != nil {
		return nil, err
	}
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	return AnonymizeWith(g, key, salt), nil
}

// AnonymizeWith is Anonymize with a caller-supplied key and salt.
func AnonymizeWith(g *graph.Graph, key Key, salt uint64) *graph.Graph {
	var buf [8]byte
	return g.Map(func(n graph.Node) graph.Node {
		binary.LittleEndian.PutUint64(buf[:], n.ID)
		n.ID = HashSalted(key, buf[:], salt)
		return n
	})
}
