// Package reuse computes similarity between candidate text and the stored
// corpus. Documents are compared through non-reversible similarity
// signatures computed once at upload time, independent of the encryption
// key, so a reuse check never decrypts the corpus.
package reuse

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
	"strings"
	"unicode"
)

// Signature is a sorted set of 64-bit shingle hashes. It reveals nothing
// about the underlying text beyond set overlap.
type Signature []uint64

// Strategy computes signatures and scores their overlap. Implementations
// must be pure: the same text always yields the same signature, and
// Similarity is symmetric in its arguments. Scores are in [0, 1].
type Strategy interface {
	Signature(text string) Signature
	Similarity(a, b Signature) float64
}

// ShingleJaccard is the default Strategy: word k-gram shingles hashed with
// FNV-1a 64, scored by Jaccard similarity of the shingle sets. Identical
// canonical text scores 1.0.
type ShingleJaccard struct {
	// K is the shingle width in tokens.
	K int
}

func NewShingleJaccard() *ShingleJaccard {
	return &ShingleJaccard{K: 3}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func hashShingle(tokens []string) uint64 {
	h := fnv.New64a()
	for i, tok := range tokens {
		if i > 0 {
			h.Write([]byte{0x1f})
		}
		h.Write([]byte(tok))
	}
	return h.Sum64()
}

// Signature tokenizes the text and hashes every K-token window. Texts
// shorter than K tokens produce a single shingle over all their tokens, so
// short documents still participate in matching.
func (s *ShingleJaccard) Signature(text string) Signature {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	var hashes []uint64
	if len(tokens) < s.K {
		hashes = append(hashes, hashShingle(tokens))
	} else {
		for i := 0; i+s.K <= len(tokens); i++ {
			hashes = append(hashes, hashShingle(tokens[i:i+s.K]))
		}
	}

	slices.Sort(hashes)
	return Signature(slices.Compact(hashes))
}

// Similarity returns the Jaccard index of the two signatures. Both inputs
// must be sorted, which Signature guarantees. Two empty signatures score 0:
// empty text is never "reused".
func (s *ShingleJaccard) Similarity(a, b Signature) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var intersection int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			intersection++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// EncodeSignature serializes a signature for storage as a single bytea
// column: each hash as 8 big-endian bytes, preserving sort order.
func EncodeSignature(sig Signature) []byte {
	buf := make([]byte, 0, len(sig)*8)
	for _, h := range sig {
		buf = binary.BigEndian.AppendUint64(buf, h)
	}
	return buf
}

// DecodeSignature reverses EncodeSignature. Trailing partial hashes are
// ignored; they can only appear if the column was corrupted.
func DecodeSignature(b []byte) Signature {
	sig := make(Signature, 0, len(b)/8)
	for len(b) >= 8 {
		sig = append(sig, binary.BigEndian.Uint64(b[:8]))
		b = b[8:]
	}
	return sig
}
