// Package meshio reads and writes meshes as STL and GLB files.
package meshio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/solidgrow/internal/logging"
	"github.com/chazu/solidgrow/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var log = logging.Named("meshio")

// ErrFormat is returned for malformed input.
var ErrFormat = errors.New("meshio: malformed file")

const (
	headerSize   = 80
	triangleSize = 50 // normal, three vertices, attribute count
)

// ReadSTL parses an ASCII or binary STL stream. Files whose header starts
// with "solid" are treated as ASCII unless their length matches the binary
// layout exactly. Zero-area facets are dropped.
func ReadSTL(r io.Reader) (*geom.Mesh, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("meshio: read: %w", err)
	}
	var m *geom.Mesh
	if isASCII(data) {
		m, err = parseASCII(data)
	} else {
		m, err = parseBinary(data)
	}
	if err != nil {
		return nil, err
	}
	return dropDegenerate(m), nil
}

func isASCII(data []byte) bool {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return false
	}
	if len(data) >= headerSize+4 {
		n := binary.LittleEndian.Uint32(data[headerSize:])
		if uint64(len(data)) == headerSize+4+uint64(n)*triangleSize {
			return false
		}
	}
	return true
}

func parseASCII(data []byte) (*geom.Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	m := geom.NewMesh()
	var vertices []v3.Vec
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "solid":
			if len(fields) > 1 && m.Name == "" {
				m.Name = strings.Join(fields[1:], " ")
			}
		case "vertex":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs three coordinates", ErrFormat, line)
			}
			var xyz [3]float64
			for i := range xyz {
				f, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
				}
				xyz[i] = f
			}
			vertices = append(vertices, v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "endfacet":
			if len(vertices) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrFormat, line, len(vertices))
			}
			m.Polygons = append(m.Polygons, geom.NewPolygon(vertices...))
			vertices = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meshio: ascii stl: %w", err)
	}
	return m, nil
}

func parseBinary(data []byte) (*geom.Mesh, error) {
	if len(data) < headerSize+4 {
		return nil, fmt.Errorf("%w: %d bytes is too short for binary stl", ErrFormat, len(data))
	}
	m := geom.NewMesh()
	m.Name = strings.TrimSpace(string(bytes.TrimRight(data[:headerSize], "\x00")))

	count := binary.LittleEndian.Uint32(data[headerSize:])
	body := data[headerSize+4:]
	if uint64(len(body)) < uint64(count)*triangleSize {
		return nil, fmt.Errorf("%w: header promises %d triangles, file holds %d", ErrFormat, count, len(body)/triangleSize)
	}

	f := func(off int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(body[off:])))
	}
	m.Polygons = make([]geom.Polygon, 0, count)
	for i := 0; i < int(count); i++ {
		base := i*triangleSize + 12 // skip the stored normal
		vs := make([]v3.Vec, 3)
		for j := range vs {
			o := base + j*12
			vs[j] = v3.Vec{X: f(o), Y: f(o + 4), Z: f(o + 8)}
		}
		m.Polygons = append(m.Polygons, geom.Polygon{Vertices: vs})
	}
	return m, nil
}

func dropDegenerate(m *geom.Mesh) *geom.Mesh {
	kept := m.Polygons[:0]
	for _, p := range m.Polygons {
		if _, err := geom.PlaneOf(p); err == nil {
			kept = append(kept, p)
		}
	}
	if dropped := len(m.Polygons) - len(kept); dropped > 0 {
		log.WithField("count", dropped).Warn("dropped zero-area facets")
	}
	m.Polygons = kept
	return m
}

// WriteSTL writes m as binary STL, triangulating every polygon.
func WriteSTL(w io.Writer, m *geom.Mesh) error {
	tris := m.Triangles()
	bw := bufio.NewWriter(w)

	header := make([]byte, headerSize)
	copy(header, m.Name)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("meshio: write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(tris))); err != nil {
		return fmt.Errorf("meshio: write count: %w", err)
	}

	var rec [triangleSize]byte
	put := func(off int, v float64) {
		binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(float32(v)))
	}
	for _, t := range tris {
		var n v3.Vec
		if pl, err := geom.PlaneOf(t); err == nil {
			n = pl.Normal
		}
		put(0, n.X)
		put(4, n.Y)
		put(8, n.Z)
		for j, v := range t.Vertices {
			put(12+j*12, v.X)
			put(16+j*12, v.Y)
			put(20+j*12, v.Z)
		}
		if _, err := bw.Write(rec[:]); err != nil {
			return fmt.Errorf("meshio: write triangle: %w", err)
		}
	}
	return bw.Flush()
}
