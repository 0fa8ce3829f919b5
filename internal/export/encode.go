package export

import (
	"math"

	"github.com/golang/geo/r2"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// Field numbers. Doubles are written as packed fixed64 runs.
const (
	fileVersion   protowire.Number = 1
	fileName      protowire.Number = 2
	fileBounds    protowire.Number = 3 // x.lo x.hi y.lo y.hi
	fileSegment   protowire.Number = 4
	fileBatch     protowire.Number = 5
	fileCollision protowire.Number = 6

	segmentStart  protowire.Number = 1
	segmentEnd    protowire.Number = 2
	segmentRule   protowire.Number = 3
	segmentStamps protowire.Number = 4

	batchMaterial  protowire.Number = 1
	batchDrawOrder protowire.Number = 2 // zigzag
	batchRecord    protowire.Number = 3

	recordSprite      protowire.Number = 1
	recordDestination protowire.Number = 2
	recordColor       protowire.Number = 3 // packed fixed32
	recordVertices    protowire.Number = 4 // x y u v per vertex

	collisionKind     protowire.Number = 1
	collisionBox2D    protowire.Number = 2 // cx cy sx sy
	collisionConvex2D protowire.Number = 3 // x y per vertex
	collisionBox3D    protowire.Number = 4 // center then extents
	collisionConvex3D protowire.Number = 5 // x y z per vertex
	collisionBounds   protowire.Number = 6
)

// Marshal encodes f. The version field is always written as Version.
func Marshal(f *File) []byte {
	var b []byte
	b = protowire.AppendTag(b, fileVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	if f.Name != "" {
		b = appendString(b, fileName, f.Name)
	}
	b = appendRect(b, fileBounds, f.Bounds)
	for _, s := range f.Segments {
		b = appendMessage(b, fileSegment, marshalSegment(s))
	}
	for _, batch := range f.Batches {
		b = appendMessage(b, fileBatch, marshalBatch(batch))
	}
	if f.Collision != nil {
		b = appendMessage(b, fileCollision, marshalCollision(f.Collision))
	}
	return b
}

func marshalSegment(s Segment) []byte {
	var b []byte
	b = appendDouble(b, segmentStart, s.Start)
	b = appendDouble(b, segmentEnd, s.End)
	if s.Rule != "" {
		b = appendString(b, segmentRule, s.Rule)
	}
	b = protowire.AppendTag(b, segmentStamps, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Stamps))
	return b
}

func marshalBatch(batch Batch) []byte {
	var b []byte
	b = appendString(b, batchMaterial, batch.Material)
	b = protowire.AppendTag(b, batchDrawOrder, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(batch.DrawOrder)))
	for _, r := range batch.Records {
		b = appendMessage(b, batchRecord, marshalRecord(r))
	}
	return b
}

func marshalRecord(r Record) []byte {
	var b []byte
	if r.Sprite != "" {
		b = appendString(b, recordSprite, r.Sprite)
	}
	b = appendDoubles(b, recordDestination, r.Destination[:]...)

	var colors []byte
	for _, c := range r.Color {
		colors = protowire.AppendFixed32(colors, math.Float32bits(c))
	}
	b = protowire.AppendTag(b, recordColor, protowire.BytesType)
	b = protowire.AppendBytes(b, colors)

	b = appendDoubles(b, recordVertices, flattenVertices(r.Vertices)...)
	return b
}

func flattenVertices(verts []sprite.RenderVertex) []float64 {
	out := make([]float64, 0, len(verts)*4)
	for _, v := range verts {
		out = append(out, v.X, v.Y, v.U, v.V)
	}
	return out
}

func marshalCollision(body *collision.Body) []byte {
	var b []byte
	b = protowire.AppendTag(b, collisionKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(body.Kind))
	for _, box := range body.Boxes2D {
		b = appendDoubles(b, collisionBox2D, box.Center.X, box.Center.Y, box.Size.X, box.Size.Y)
	}
	for _, c := range body.Convex2D {
		vals := make([]float64, 0, len(c.Vertices)*2)
		for _, v := range c.Vertices {
			vals = append(vals, v.X, v.Y)
		}
		b = appendDoubles(b, collisionConvex2D, vals...)
	}
	for _, box := range body.Boxes3D {
		b = appendDoubles(b, collisionBox3D,
			box.Center[0], box.Center[1], box.Center[2],
			box.Extents[0], box.Extents[1], box.Extents[2])
	}
	for _, c := range body.Convex3D {
		vals := make([]float64, 0, len(c.Vertices)*3)
		for _, v := range c.Vertices {
			vals = append(vals, v[0], v[1], v[2])
		}
		b = appendDoubles(b, collisionConvex3D, vals...)
	}
	if bounds := body.Bounds(); !bounds.IsEmpty() {
		b = appendRect(b, collisionBounds, bounds)
	}
	return b
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendDoubles(b []byte, num protowire.Number, vals ...float64) []byte {
	packed := make([]byte, 0, len(vals)*8)
	for _, v := range vals {
		packed = protowire.AppendFixed64(packed, math.Float64bits(v))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, packed)
}

func appendRect(b []byte, num protowire.Number, r r2.Rect) []byte {
	return appendDoubles(b, num, r.X.Lo, r.X.Hi, r.Y.Lo, r.Y.Hi)
}
