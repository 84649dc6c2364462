package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// MLine 多线，样式为 nil 时加入文档会使用 Standard
type MLine struct {
	EntityBase
	Vertices      []core.Point
	Scale         float64
	Justification int16
	Closed        bool
	Style         notify.Property[*tables.MLineStyle]
}

func init() {
	Register("MLINE", func() Entity { return NewMLine(nil) })
}

func NewMLine(style *tables.MLineStyle, vertices ...core.Point) *MLine {
	m := &MLine{EntityBase: newEntityBase(KindMLine, "MLINE"), Vertices: vertices, Scale: 1}
	m.Style.Init(style)
	return m
}

func (m *MLine) Parse(s *core.Scanner, r tables.Resolver) error {
	var v core.Point
	for {
		tag := s.LastTag
		switch {
		case m.parseCommon(tag, r):
		case tag.Code == 2:
			m.Style.Init(r.MLineStyle(tag.AsString()))
		case tag.Code == 40:
			m.Scale = tag.AsFloat()
		case tag.Code == 70:
			m.Justification = int16(tag.AsInt())
		case tag.Code == 71:
			m.Closed = tag.AsInt()&2 != 0
		case tag.Code == 11:
			v = core.Point{X: tag.AsFloat()}
		case tag.Code == 21:
			v.Y = tag.AsFloat()
		case tag.Code == 31:
			v.Z = tag.AsFloat()
			m.Vertices = append(m.Vertices, v)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (m *MLine) Write(w *core.Writer) {
	style := m.Style.Get()
	elements := 0
	if style != nil {
		elements = style.Elements.Len()
	}
	flags := int16(1)
	if m.Closed {
		flags |= 2
	}

	m.writeCommon(w)
	w.Str(100, "AcDbMline")
	w.Str(2, tables.NameOf(style, "Standard"))
	w.Handle(340, tables.HandleOrZero(tables.HandleOf(style)))
	w.Double(40, m.Scale)
	w.Int16(70, m.Justification)
	w.Int16(71, flags)
	w.Int16(72, int16(len(m.Vertices)))
	w.Int16(73, int16(elements))
	if len(m.Vertices) > 0 {
		w.Point(10, m.Vertices[0])
	}
	w.Point(210, core.Point{Z: 1})
	for _, v := range m.Vertices {
		w.Point(11, v)
		w.Point(12, core.Point{X: 1})
		w.Point(13, core.Point{Y: 1})
		for range elements {
			w.Int16(74, 0)
			w.Int16(75, 0)
		}
	}
	m.WriteXData(w)
}

func (m *MLine) Clone() Entity {
	c := NewMLine(m.Style.Get(), slices.Clone(m.Vertices)...)
	c.EntityBase = m.cloneBase()
	c.Scale = m.Scale
	c.Justification = m.Justification
	c.Closed = m.Closed
	return c
}
