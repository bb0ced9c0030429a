// Package noise implements the differential privacy mechanisms: Laplace and
// Gaussian additive noise calibrated to (epsilon, delta) guarantees.
//
// Samples are drawn from crypto/rand through a buffered reader; math/rand is
// never used. The mechanisms add noise and nothing else: clamping and
// rounding policy belongs to the caller.
package noise

import (
	"bufio"
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	apperrors "github.com/allisson/privmetrics/internal/errors"
)

// source draws uniform random values from a buffered crypto/rand reader.
type source struct {
	mu  sync.Mutex
	buf io.Reader
}

func newSource() *source {
	return &source{buf: bufio.NewReaderSize(cryptorand.Reader, 65536)}
}

func (s *source) u64() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r [8]byte
	if _, err := io.ReadFull(s.buf, r[:]); err != nil {
		return 0, apperrors.Wrap(err, "failed to read randomness")
	}
	return binary.LittleEndian.Uint64(r[:]), nil
}

// uniform returns a float64 uniformly distributed in the open interval (0,1).
// The open bounds keep log() and the Box-Muller transform well-defined.
func (s *source) uniform() (float64, error) {
	u, err := s.u64()
	if err != nil {
		return 0, err
	}
	return (float64(u>>11) + 0.5) / (1 << 53), nil
}

// sign returns +1.0 or -1.0 with equal probability.
func (s *source) sign() (float64, error) {
	u, err := s.u64()
	if err != nil {
		return 0, err
	}
	if u&1 == 1 {
		return 1.0, nil
	}
	return -1.0, nil
}
