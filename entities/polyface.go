package entities

import (
	"slices"
	"strings"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

// PolyfaceFace 多面网格的一个面，索引从 1 开始，负数表示该边不可见。
// Layer 为 nil 时与网格相同。
type PolyfaceFace struct {
	Indices []int16
	Layer   *tables.Layer
	Color   int16

	handle string
}

// PolyfaceMesh 多面网格，以 POLYLINE + VERTEX + SEQEND 保存，
// 每个顶点和面记录以及 SEQEND 各占一个句柄。
type PolyfaceMesh struct {
	EntityBase
	Vertices []core.Point
	Faces    []*PolyfaceFace
	Flags    int16

	vertexHandles []string
	seqend        string
}

const (
	polyfaceFlag = 64
	vertexFlag   = 128
)

func init() {
	Register("POLYLINE", func() Entity { return NewPolyfaceMesh(nil, nil) })
}

func NewPolyfaceMesh(vertices []core.Point, faces []*PolyfaceFace) *PolyfaceMesh {
	return &PolyfaceMesh{
		EntityBase: newEntityBase(KindPolyfaceMesh, "POLYLINE"),
		Vertices:   vertices,
		Faces:      faces,
		Flags:      polyfaceFlag,
	}
}

// IsPolyface 读取的 POLYLINE 是否为多面网格，其他多段线不支持
func (p *PolyfaceMesh) IsPolyface() bool { return p.Flags&polyfaceFlag != 0 }

// FaceLayers 面引用的图层，nil 不计
func (p *PolyfaceMesh) FaceLayers() []*tables.Layer {
	var layers []*tables.Layer
	for _, f := range p.Faces {
		if f.Layer != nil {
			layers = append(layers, f.Layer)
		}
	}
	return layers
}

// SubHandles 顶点、面记录和 SEQEND 的句柄
func (p *PolyfaceMesh) SubHandles() []string {
	handles := slices.Clone(p.vertexHandles)
	for _, f := range p.Faces {
		handles = append(handles, f.handle)
	}
	return append(handles, p.seqend)
}

func (p *PolyfaceMesh) AssignHandle(counter uint64) uint64 {
	p.vertexHandles = make([]string, len(p.Vertices))
	for i := range p.vertexHandles {
		p.vertexHandles[i], counter = core.AssignHandle(counter)
	}
	for _, f := range p.Faces {
		f.handle, counter = core.AssignHandle(counter)
	}
	p.seqend, counter = core.AssignHandle(counter)
	return p.EntityBase.AssignHandle(counter)
}

func (p *PolyfaceMesh) FillHandles(counter uint64) uint64 {
	for len(p.vertexHandles) < len(p.Vertices) {
		p.vertexHandles = append(p.vertexHandles, "")
	}
	for i, h := range p.vertexHandles {
		if h == "" {
			p.vertexHandles[i], counter = core.AssignHandle(counter)
		}
	}
	for _, f := range p.Faces {
		if f.handle == "" {
			f.handle, counter = core.AssignHandle(counter)
		}
	}
	if p.seqend == "" {
		p.seqend, counter = core.AssignHandle(counter)
	}
	return counter
}

func (p *PolyfaceMesh) Release() {
	p.EntityBase.Release()
	p.vertexHandles = nil
	for _, f := range p.Faces {
		f.handle = ""
	}
	p.seqend = ""
}

func (p *PolyfaceMesh) Parse(s *core.Scanner, r tables.Resolver) error {
	var layer string
	for {
		tag := s.LastTag
		if tag.Code == 8 {
			layer = tag.AsString()
		}
		switch {
		case p.parseCommon(tag, r):
		case tag.Code == 70:
			p.Flags = int16(tag.AsInt())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}

	for s.Err() == nil {
		tag := s.LastTag
		if tag.Is("SEQEND") {
			parseSeqend(s, &p.seqend)
			break
		}
		if !tag.Is("VERTEX") {
			break
		}
		p.parseVertex(s, r, layer)
	}
	return s.Err()
}

func (p *PolyfaceMesh) parseVertex(s *core.Scanner, r tables.Resolver, meshLayer string) {
	var (
		handle  string
		layer   string
		flags   int
		point   core.Point
		indices []int16
		color   int16 = 256
	)
	for {
		tag := s.LastTag
		switch tag.Code {
		case 5:
			handle, _ = core.NormalizeHandle(tag.AsString())
		case 8:
			layer = tag.AsString()
		case 62:
			color = int16(tag.AsInt())
		case 70:
			flags = tag.AsInt()
		case 71, 72, 73, 74:
			if i := int16(tag.AsInt()); i != 0 {
				indices = append(indices, i)
			}
		default:
			core.ParsePoint(tag, 10, &point)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}

	if flags&polyfaceFlag != 0 {
		p.Vertices = append(p.Vertices, point)
		p.vertexHandles = append(p.vertexHandles, handle)
		return
	}
	face := &PolyfaceFace{Indices: indices, Color: color, handle: handle}
	if layer != "" && !strings.EqualFold(layer, meshLayer) {
		face.Layer = r.Layer(layer)
	}
	p.Faces = append(p.Faces, face)
}

func (p *PolyfaceMesh) Write(w *core.Writer) {
	layer := tables.NameOf(p.Layer.Get(), "0")

	p.writeCommon(w)
	w.Str(100, "AcDbPolyFaceMesh")
	w.Int16(66, 1)
	w.Point(10, core.Point{})
	w.Int16(70, p.Flags|polyfaceFlag)
	w.Int16(71, int16(len(p.Vertices)))
	w.Int16(72, int16(len(p.Faces)))
	p.WriteXData(w)

	for i, v := range p.Vertices {
		var handle string
		if i < len(p.vertexHandles) {
			handle = p.vertexHandles[i]
		}
		w.Str(0, "VERTEX")
		w.Handle(5, tables.HandleOrZero(handle))
		w.Handle(330, tables.HandleOrZero(p.Handle()))
		w.Str(100, "AcDbEntity")
		w.Str(8, layer)
		w.Str(100, "AcDbVertex")
		w.Str(100, "AcDbPolyFaceMeshVertex")
		w.Point(10, v)
		w.Int16(70, polyfaceFlag|vertexFlag)
	}
	for _, f := range p.Faces {
		w.Str(0, "VERTEX")
		w.Handle(5, tables.HandleOrZero(f.handle))
		w.Handle(330, tables.HandleOrZero(p.Handle()))
		w.Str(100, "AcDbEntity")
		w.Str(8, tables.NameOf(f.Layer, layer))
		if f.Color != 256 {
			w.Int16(62, f.Color)
		}
		w.Str(100, "AcDbFaceRecord")
		w.Point(10, core.Point{})
		w.Int16(70, vertexFlag)
		for i, idx := range f.Indices {
			if i < 4 {
				w.Int16(71+i, idx)
			}
		}
	}
	writeSeqend(w, p.seqend, p.Handle(), layer)
}

func (p *PolyfaceMesh) Clone() Entity {
	c := NewPolyfaceMesh(slices.Clone(p.Vertices), nil)
	c.EntityBase = p.cloneBase()
	c.Flags = p.Flags
	for _, f := range p.Faces {
		c.Faces = append(c.Faces, &PolyfaceFace{Indices: slices.Clone(f.Indices), Layer: f.Layer, Color: f.Color})
	}
	return c
}
