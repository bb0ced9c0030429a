package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	tokenizationDomain "github.com/allisson/privmetrics/internal/tokenization/domain"
)

// prfStream is a deterministic byte stream derived from HMAC-SHA256 over a
// canonical (field type, plaintext) message. Block i is
// HMAC(key, seed || i) for a 4-byte big-endian counter, so the stream is
// arbitrarily long and fully determined by (key, field type, plaintext).
type prfStream struct {
	key     []byte
	seed    []byte
	counter uint32
	buf     []byte
	off     int
}

func newPRFStream(key []byte, fieldType tokenizationDomain.FieldType, plaintext string) *prfStream {
	// Length-prefixed fields keep the encoding injective.
	seed := make([]byte, 0, 8+len(fieldType)+len(plaintext))
	seed = binary.BigEndian.AppendUint32(seed, uint32(len(fieldType)))
	seed = append(seed, fieldType...)
	seed = binary.BigEndian.AppendUint32(seed, uint32(len(plaintext)))
	seed = append(seed, plaintext...)

	return &prfStream{key: key, seed: seed}
}

// next returns the next keystream byte.
func (s *prfStream) next() byte {
	if s.off == len(s.buf) {
		mac := hmac.New(sha256.New, s.key)
		mac.Write(s.seed)
		mac.Write(binary.BigEndian.AppendUint32(nil, s.counter))
		s.buf = mac.Sum(nil)
		s.off = 0
		s.counter++
	}
	b := s.buf[s.off]
	s.off++
	return b
}

// uniformInt returns a uniform value in [0, n) via rejection sampling, so the
// character mapping carries no modulo bias. n must be in [1, 256].
func (s *prfStream) uniformInt(n int) int {
	limit := 256 - 256%n
	for {
		b := int(s.next())
		if b < limit {
			return b % n
		}
	}
}
