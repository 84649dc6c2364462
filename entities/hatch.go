package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// HatchBoundaryPath 填充边界。Entities 为关联的边界实体，与填充位于同一个块中。
type HatchBoundaryPath struct {
	Flags    int32
	Vertices []core.Point
	Entities notify.List[Entity]
}

func NewHatchBoundaryPath(vertices []core.Point, entities ...Entity) *HatchBoundaryPath {
	p := &HatchBoundaryPath{Flags: 1, Vertices: vertices}
	p.Entities.Init(entities...)
	return p
}

type Hatch struct {
	EntityBase
	Pattern       string
	Solid         bool
	Elevation     float64
	BoundaryPaths notify.List[*HatchBoundaryPath]
}

func init() {
	Register("HATCH", func() Entity { return NewHatch("SOLID") })
}

func NewHatch(pattern string, paths ...*HatchBoundaryPath) *Hatch {
	h := &Hatch{EntityBase: newEntityBase(KindHatch, "HATCH"), Pattern: pattern, Solid: pattern == "SOLID"}
	h.BoundaryPaths.Init(paths...)
	return h
}

// BoundaryEntities 所有边界实体
func (h *Hatch) BoundaryEntities() []Entity {
	var list []Entity
	for _, p := range h.BoundaryPaths.Items() {
		list = append(list, p.Entities.Items()...)
	}
	return list
}

func (h *Hatch) Parse(s *core.Scanner, r tables.Resolver) error {
	var (
		cur    *HatchBoundaryPath
		inPath bool
		x      float64
	)
	for {
		tag := s.LastTag
		switch {
		case h.parseCommon(tag, r):
		case tag.Code == 2:
			h.Pattern = tag.AsString()
		case tag.Code == 70:
			h.Solid = tag.AsInt() == 1
		case tag.Code == 91:
			inPath = true
		case tag.Code == 75:
			inPath = false
		case !inPath:
			if tag.Code == 30 {
				h.Elevation = tag.AsFloat()
			}
		case tag.Code == 92:
			cur = &HatchBoundaryPath{Flags: int32(tag.AsInt())}
			h.BoundaryPaths.Init(cur)
		case cur == nil:
		case tag.Code == 10:
			x = tag.AsFloat()
		case tag.Code == 20:
			cur.Vertices = append(cur.Vertices, core.Point{X: x, Y: tag.AsFloat()})
		case tag.Code == 330:
			path := cur
			handle, _ := tag.Handle()
			r.ByHandle(handle, func(obj tables.Object) {
				if e, ok := obj.(Entity); ok {
					path.Entities.Init(e)
				}
			})
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (h *Hatch) Write(w *core.Writer) {
	paths := h.BoundaryPaths.Items()
	associative := int16(0)
	if len(h.BoundaryEntities()) > 0 {
		associative = 1
	}
	solid := int16(0)
	if h.Solid {
		solid = 1
	}

	h.writeCommon(w)
	w.Str(100, "AcDbHatch")
	w.Point(10, core.Point{Z: h.Elevation})
	w.Point(210, core.Point{Z: 1})
	w.Str(2, h.Pattern)
	w.Int16(70, solid)
	w.Int16(71, associative)
	w.Int32(91, int32(len(paths)))
	for _, p := range paths {
		// 统一按多段线边界写出
		w.Int32(92, p.Flags|2)
		w.Int16(72, 0)
		w.Int16(73, 1)
		w.Int32(93, int32(len(p.Vertices)))
		for _, v := range p.Vertices {
			w.Point2D(10, v)
		}
		entities := p.Entities.Items()
		w.Int32(97, int32(len(entities)))
		for _, e := range entities {
			w.Handle(330, tables.HandleOrZero(e.Handle()))
		}
	}
	w.Int16(75, 0)
	w.Int16(76, 1)
	if !h.Solid {
		w.Double(52, 0)
		w.Double(41, 1)
		w.Int16(77, 0)
		w.Int16(78, 0)
	}
	w.Int32(98, 0)
	h.WriteXData(w)
}

// Clone 边界实体不复制，只复制边界的几何
func (h *Hatch) Clone() Entity {
	c := NewHatch(h.Pattern)
	c.EntityBase = h.cloneBase()
	c.Solid = h.Solid
	c.Elevation = h.Elevation
	for _, p := range h.BoundaryPaths.Items() {
		c.BoundaryPaths.Init(&HatchBoundaryPath{Flags: p.Flags, Vertices: slices.Clone(p.Vertices)})
	}
	return c
}
