package geom

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultPrecision is the grid spacing used to identify coincident vertices.
const DefaultPrecision = 1e-5

// Key is a vertex position snapped to an integer grid. Two positions with
// equal keys are treated as the same vertex.
type Key struct {
	X, Y, Z int64
}

// Less orders keys lexicographically.
func (k Key) Less(o Key) bool {
	if k.X != o.X {
		return k.X < o.X
	}
	if k.Y != o.Y {
		return k.Y < o.Y
	}
	return k.Z < o.Z
}

// Compare returns -1, 0 or 1.
func (k Key) Compare(o Key) int {
	switch {
	case k.Less(o):
		return -1
	case o.Less(k):
		return 1
	}
	return 0
}

// Quantizer maps positions to keys at a fixed precision.
type Quantizer struct {
	Precision float64
}

// NewQuantizer returns a quantizer, substituting DefaultPrecision for a
// non-positive precision.
func NewQuantizer(precision float64) Quantizer {
	if !(precision > 0) {
		precision = DefaultPrecision
	}
	return Quantizer{Precision: precision}
}

// Key snaps v to the grid.
func (q Quantizer) Key(v v3.Vec) Key {
	p := q.Precision
	if !(p > 0) {
		p = DefaultPrecision
	}
	return Key{
		X: int64(math.Round(v.X / p)),
		Y: int64(math.Round(v.Y / p)),
		Z: int64(math.Round(v.Z / p)),
	}
}

// Fingerprint hashes m's quantized geometry independently of polygon order
// and of which vertex each polygon starts at. Winding still matters.
func Fingerprint(m *Mesh, q Quantizer) uint64 {
	hashes := make([]uint64, 0, len(m.Polygons))
	var buf [24]byte
	for _, p := range m.Polygons {
		keys := make([]Key, len(p.Vertices))
		start := 0
		for i, v := range p.Vertices {
			keys[i] = q.Key(v)
			if keys[i].Less(keys[start]) {
				start = i
			}
		}
		d := xxhash.New()
		for i := range keys {
			k := keys[(start+i)%len(keys)]
			binary.LittleEndian.PutUint64(buf[0:], uint64(k.X))
			binary.LittleEndian.PutUint64(buf[8:], uint64(k.Y))
			binary.LittleEndian.PutUint64(buf[16:], uint64(k.Z))
			d.Write(buf[:])
		}
		hashes = append(hashes, d.Sum64())
	}
	slices.Sort(hashes)

	d := xxhash.New()
	var b [8]byte
	for _, h := range hashes {
		binary.LittleEndian.PutUint64(b[:], h)
		d.Write(b[:])
	}
	return d.Sum64()
}
