package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

type LWPolyline struct {
	EntityBase
	Vertices  []core.Point
	Closed    bool
	Elevation float64
}

func init() {
	Register("LWPOLYLINE", func() Entity { return NewLWPolyline(false) })
}

func NewLWPolyline(closed bool, vertices ...core.Point) *LWPolyline {
	return &LWPolyline{EntityBase: newEntityBase(KindLwPolyline, "LWPOLYLINE"), Closed: closed, Vertices: vertices}
}

func (l *LWPolyline) Parse(s *core.Scanner, r tables.Resolver) error {
	var x float64
	for {
		t := s.LastTag
		switch {
		case l.parseCommon(t, r):
		case t.Code == 70:
			l.Closed = t.AsInt()&1 != 0
		case t.Code == 38:
			l.Elevation = t.AsFloat()
		case t.Code == 10:
			x = t.AsFloat()
		case t.Code == 20:
			l.Vertices = append(l.Vertices, core.Point{X: x, Y: t.AsFloat()})
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (l *LWPolyline) Write(w *core.Writer) {
	l.writeCommon(w)
	w.Str(100, "AcDbPolyline")
	w.Int32(90, int32(len(l.Vertices)))
	var flags int16
	if l.Closed {
		flags = 1
	}
	w.Int16(70, flags)
	if l.Elevation != 0 {
		w.Double(38, l.Elevation)
	}
	for _, v := range l.Vertices {
		w.Point2D(10, v)
	}
	l.WriteXData(w)
}

func (l *LWPolyline) Clone() Entity {
	return &LWPolyline{EntityBase: l.cloneBase(), Vertices: slices.Clone(l.Vertices), Closed: l.Closed, Elevation: l.Elevation}
}
