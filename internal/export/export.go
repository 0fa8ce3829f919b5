// Package export writes baked terrain geometry to .p2g files and reads
// them back. A .p2g file is a protobuf wire-format message built with
// protowire; there is no .proto schema, the field numbers below are the
// format.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r2"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/sprite"
	"github.com/Faultbox/paper2d/pkg/terrain"
)

// Version is the format version written by Marshal.
const Version = 1

// Extension is the file extension of exported geometry.
const Extension = ".p2g"

// Decoding errors.
var (
	ErrTruncated    = errors.New("p2g: truncated data")
	ErrUnknownField = errors.New("p2g: unknown field")
	ErrMalformed    = errors.New("p2g: malformed field")
	ErrVersion      = errors.New("p2g: unsupported version")
)

// File is the exported form of terrain.Geometry. Sprites are referenced
// by name.
type File struct {
	Version   uint64
	Name      string
	Bounds    r2.Rect
	Segments  []Segment
	Batches   []Batch
	Collision *collision.Body
}

// Segment summarises one terrain segment.
type Segment struct {
	Start  float64
	End    float64
	Rule   string
	Stamps int
}

// Batch is one material batch.
type Batch struct {
	Material  string
	DrawOrder int
	Records   []Record
}

// Record is one draw call.
type Record struct {
	Sprite      string
	Destination mgl64.Vec3
	Color       [4]float32
	Vertices    []sprite.RenderVertex
}

// VertexCount returns the number of vertices across all batches.
func (f *File) VertexCount() int {
	var n int
	for _, b := range f.Batches {
		for _, r := range b.Records {
			n += len(r.Vertices)
		}
	}
	return n
}

// FromGeometry converts built geometry into a File.
func FromGeometry(name string, g *terrain.Geometry) *File {
	f := &File{Version: Version, Name: name, Bounds: r2.EmptyRect()}
	if g == nil {
		return f
	}
	f.Bounds = g.Bounds
	f.Collision = g.Collision

	for _, s := range g.Segments {
		seg := Segment{Start: s.Start, End: s.End, Stamps: len(s.Stamps)}
		if s.Rule != nil {
			seg.Rule = s.Rule.Description
		}
		f.Segments = append(f.Segments, seg)
	}
	for _, b := range g.Batches {
		batch := Batch{Material: b.Material, DrawOrder: b.DrawOrder}
		for _, r := range b.Records {
			rec := Record{Destination: r.Destination, Color: r.Color, Vertices: r.Vertices}
			if r.Sprite != nil {
				rec.Sprite = r.Sprite.Name
			}
			batch.Records = append(batch.Records, rec)
		}
		f.Batches = append(f.Batches, batch)
	}
	return f
}

// WriteFile marshals f to path, creating parent directories.
func WriteFile(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, Marshal(f), 0644)
}

// ReadFile reads and unmarshals the file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}
