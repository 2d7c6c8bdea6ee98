package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Hash represents a cryptographic hash
type Hash string

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex characters.
func (h Hash) Short() string {
	if len(h) < 12 {
		return string(h)
	}
	return string(h[:12])
}

// ComputeMatrixHash fingerprints labels and the exact bit patterns of values,
// so two matrices hash equal only when they are bit-identical.
func ComputeMatrixHash(rows, cols []string, values []float64) Hash {
	h := sha256.New()
	var buf [8]byte
	for _, r := range rows {
		h.Write([]byte(r))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, c := range cols {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	return Hash(hex.EncodeToString(h.Sum(nil)))
}
