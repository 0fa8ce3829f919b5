package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/Faultbox/paper2d/pkg/collision"
	"github.com/Faultbox/paper2d/pkg/sprite"
)

// field is one decoded tag and its payload. varint also carries fixed64
// payloads.
type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

func wireError(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

// walk calls fn for every field in data.
func walk(data []byte, fn func(field) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return wireError(n)
		}
		data = data[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(data)
		case protowire.Fixed64Type:
			f.varint, n = protowire.ConsumeFixed64(data)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(data)
		default:
			return fmt.Errorf("%w: field %d has wire type %d", ErrMalformed, num, typ)
		}
		if n < 0 {
			return wireError(n)
		}
		data = data[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func unknown(f field) error {
	return fmt.Errorf("%w: %d", ErrUnknownField, f.num)
}

func (f field) expect(typ protowire.Type) error {
	if f.typ != typ {
		return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrMalformed, f.num, f.typ, typ)
	}
	return nil
}

// doubles decodes a packed fixed64 run whose length is a multiple of
// stride doubles.
func (f field) doubles(stride int) ([]float64, error) {
	if err := f.expect(protowire.BytesType); err != nil {
		return nil, err
	}
	if len(f.bytes)%(8*stride) != 0 {
		return nil, fmt.Errorf("%w: field %d holds %d bytes, not a multiple of %d doubles",
			ErrMalformed, f.num, len(f.bytes), stride)
	}
	out := make([]float64, 0, len(f.bytes)/8)
	for b := f.bytes; len(b) > 0; b = b[8:] {
		v, _ := protowire.ConsumeFixed64(b)
		out = append(out, math.Float64frombits(v))
	}
	return out, nil
}

func (f field) exactDoubles(n int) ([]float64, error) {
	vals, err := f.doubles(1)
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("%w: field %d holds %d doubles, want %d", ErrMalformed, f.num, len(vals), n)
	}
	return vals, nil
}

func (f field) rect() (r2.Rect, error) {
	v, err := f.exactDoubles(4)
	if err != nil {
		return r2.Rect{}, err
	}
	return r2.Rect{X: r1.Interval{Lo: v[0], Hi: v[1]}, Y: r1.Interval{Lo: v[2], Hi: v[3]}}, nil
}

func (f field) double() (float64, error) {
	if err := f.expect(protowire.Fixed64Type); err != nil {
		return 0, err
	}
	return math.Float64frombits(f.varint), nil
}

// Unmarshal decodes a .p2g payload. Unknown fields are rejected.
func Unmarshal(data []byte) (*File, error) {
	f := &File{Bounds: r2.EmptyRect()}
	err := walk(data, func(fl field) error {
		switch fl.num {
		case fileVersion:
			if err := fl.expect(protowire.VarintType); err != nil {
				return err
			}
			f.Version = fl.varint
		case fileName:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			f.Name = string(fl.bytes)
		case fileBounds:
			r, err := fl.rect()
			if err != nil {
				return err
			}
			f.Bounds = r
		case fileSegment:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			s, err := unmarshalSegment(fl.bytes)
			if err != nil {
				return fmt.Errorf("segment %d: %w", len(f.Segments), err)
			}
			f.Segments = append(f.Segments, s)
		case fileBatch:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			b, err := unmarshalBatch(fl.bytes)
			if err != nil {
				return fmt.Errorf("batch %d: %w", len(f.Batches), err)
			}
			f.Batches = append(f.Batches, b)
		case fileCollision:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			body, err := unmarshalCollision(fl.bytes)
			if err != nil {
				return fmt.Errorf("collision: %w", err)
			}
			f.Collision = body
		default:
			return unknown(fl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if f.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, f.Version)
	}
	return f, nil
}

func unmarshalSegment(data []byte) (Segment, error) {
	var s Segment
	err := walk(data, func(fl field) error {
		var err error
		switch fl.num {
		case segmentStart:
			s.Start, err = fl.double()
		case segmentEnd:
			s.End, err = fl.double()
		case segmentRule:
			if err = fl.expect(protowire.BytesType); err == nil {
				s.Rule = string(fl.bytes)
			}
		case segmentStamps:
			if err = fl.expect(protowire.VarintType); err == nil {
				s.Stamps = int(fl.varint)
			}
		default:
			err = unknown(fl)
		}
		return err
	})
	return s, err
}

func unmarshalBatch(data []byte) (Batch, error) {
	var b Batch
	err := walk(data, func(fl field) error {
		switch fl.num {
		case batchMaterial:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			b.Material = string(fl.bytes)
		case batchDrawOrder:
			if err := fl.expect(protowire.VarintType); err != nil {
				return err
			}
			b.DrawOrder = int(protowire.DecodeZigZag(fl.varint))
		case batchRecord:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			r, err := unmarshalRecord(fl.bytes)
			if err != nil {
				return fmt.Errorf("record %d: %w", len(b.Records), err)
			}
			b.Records = append(b.Records, r)
		default:
			return unknown(fl)
		}
		return nil
	})
	return b, err
}

func unmarshalRecord(data []byte) (Record, error) {
	var r Record
	err := walk(data, func(fl field) error {
		switch fl.num {
		case recordSprite:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			r.Sprite = string(fl.bytes)
		case recordDestination:
			v, err := fl.exactDoubles(3)
			if err != nil {
				return err
			}
			r.Destination = mgl64.Vec3{v[0], v[1], v[2]}
		case recordColor:
			if err := fl.expect(protowire.BytesType); err != nil {
				return err
			}
			if len(fl.bytes) != 16 {
				return fmt.Errorf("%w: color holds %d bytes", ErrMalformed, len(fl.bytes))
			}
			b := fl.bytes
			for i := range r.Color {
				v, _ := protowire.ConsumeFixed32(b)
				r.Color[i] = math.Float32frombits(v)
				b = b[4:]
			}
		case recordVertices:
			v, err := fl.doubles(4)
			if err != nil {
				return err
			}
			r.Vertices = make([]sprite.RenderVertex, 0, len(v)/4)
			for i := 0; i < len(v); i += 4 {
				r.Vertices = append(r.Vertices, sprite.RenderVertex{X: v[i], Y: v[i+1], U: v[i+2], V: v[i+3]})
			}
		default:
			return unknown(fl)
		}
		return nil
	})
	return r, err
}

func unmarshalCollision(data []byte) (*collision.Body, error) {
	body := &collision.Body{}
	err := walk(data, func(fl field) error {
		switch fl.num {
		case collisionKind:
			if err := fl.expect(protowire.VarintType); err != nil {
				return err
			}
			k := collision.Kind(fl.varint)
			if k != collision.None && k != collision.TwoD && k != collision.ThreeD {
				return fmt.Errorf("%w: collision kind %d", ErrMalformed, fl.varint)
			}
			body.Kind = k
		case collisionBox2D:
			v, err := fl.exactDoubles(4)
			if err != nil {
				return err
			}
			body.Boxes2D = append(body.Boxes2D, collision.Box2D{
				Center: r2.Point{X: v[0], Y: v[1]},
				Size:   r2.Point{X: v[2], Y: v[3]},
			})
		case collisionConvex2D:
			v, err := fl.doubles(2)
			if err != nil {
				return err
			}
			var c collision.Convex2D
			for i := 0; i < len(v); i += 2 {
				c.Vertices = append(c.Vertices, r2.Point{X: v[i], Y: v[i+1]})
			}
			body.Convex2D = append(body.Convex2D, c)
		case collisionBox3D:
			v, err := fl.exactDoubles(6)
			if err != nil {
				return err
			}
			body.Boxes3D = append(body.Boxes3D, collision.Box3D{
				Center:  mgl64.Vec3{v[0], v[1], v[2]},
				Extents: mgl64.Vec3{v[3], v[4], v[5]},
			})
		case collisionConvex3D:
			v, err := fl.doubles(3)
			if err != nil {
				return err
			}
			var c collision.Convex3D
			for i := 0; i < len(v); i += 3 {
				c.Vertices = append(c.Vertices, mgl64.Vec3{v[i], v[i+1], v[i+2]})
			}
			body.Convex3D = append(body.Convex3D, c)
		case collisionBounds:
			r, err := fl.rect()
			if err != nil {
				return err
			}
			body.Extend(r)
		default:
			return unknown(fl)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
