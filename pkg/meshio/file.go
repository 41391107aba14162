package meshio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/solidgrow/pkg/geom"
	"github.com/klauspost/compress/zstd"
)

// Compressed reports whether path names a zstd-compressed file.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// Load reads an STL file, decompressing it first when the name ends in
// ".zst". A mesh without a name is named after the file.
func Load(path string) (*geom.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	if Compressed(path) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("meshio: zstd: %w", err)
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, fmt.Errorf("meshio: %s: %w", path, err)
		}
	}
	m, err := ReadSTL(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = baseName(path)
	}
	return m, nil
}

// Save writes m as binary STL, or GLB when path ends in ".glb". STL output
// is zstd-compressed when path ends in ".zst".
func Save(path string, m *geom.Mesh) error {
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return SaveGLB(path, m)
	}
	var buf bytes.Buffer
	if err := WriteSTL(&buf, m); err != nil {
		return err
	}
	data := buf.Bytes()
	if Compressed(path) {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("meshio: zstd: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return fmt.Errorf("meshio: zstd: %w", err)
		}
	}
	return writeFile(path, bytes.NewReader(data))
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("meshio: %s: %w", path, err)
	}
	return f.Close()
}

func baseName(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{".zst", ".stl", ".glb"} {
		if strings.EqualFold(filepath.Ext(name), ext) {
			name = name[:len(name)-len(ext)]
		}
	}
	return name
}
