package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Leader 引线。注释实体与引线位于同一个块中。
type Leader struct {
	EntityBase
	Vertices       []core.Point
	HasArrow       bool
	Style          notify.Property[*tables.DimensionStyle]
	Annotation     notify.Property[Entity]
	StyleOverrides Overrides
}

func init() {
	Register("LEADER", func() Entity { return NewLeader(nil) })
}

func NewLeader(style *tables.DimensionStyle, vertices ...core.Point) *Leader {
	l := &Leader{EntityBase: newEntityBase(KindLeader, "LEADER"), Vertices: vertices, HasArrow: true}
	l.Style.Init(style)
	return l
}

func (l *Leader) Parse(s *core.Scanner, r tables.Resolver) error {
	var x, y float64
	for {
		tag := s.LastTag
		switch {
		case l.parseCommon(tag, r):
		case tag.Code == 3:
			l.Style.Init(r.DimensionStyle(tag.AsString()))
		case tag.Code == 71:
			l.HasArrow = tag.AsInt() != 0
		case tag.Code == 340:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				e, _ := obj.(Entity)
				l.Annotation.Init(e)
			})
		case tag.Code == 10:
			x = tag.AsFloat()
		case tag.Code == 20:
			y = tag.AsFloat()
		case tag.Code == 30:
			l.Vertices = append(l.Vertices, core.Point{X: x, Y: y, Z: tag.AsFloat()})
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	parseOverrides(&l.EntityBase, &l.StyleOverrides, r)
	return s.Err()
}

func (l *Leader) Write(w *core.Writer) {
	l.writeCommon(w)
	w.Str(100, "AcDbLeader")
	w.Str(3, tables.NameOf(l.Style.Get(), "Standard"))
	var arrow int16
	if l.HasArrow {
		arrow = 1
	}
	w.Int16(71, arrow)
	w.Int16(72, 0)
	annotation := l.Annotation.Get()
	if tables.IsNil(annotation) {
		w.Int16(73, 3)
	} else {
		w.Int16(73, 0)
	}
	w.Int16(76, int16(len(l.Vertices)))
	for _, v := range l.Vertices {
		w.Point(10, v)
	}
	if !tables.IsNil(annotation) {
		w.Handle(340, tables.HandleOrZero(annotation.Handle()))
	}
	writeXData(&l.EntityBase, w, &l.StyleOverrides)
}

// Clone 注释实体不复制，需要调用方自己复制后再设置
func (l *Leader) Clone() Entity {
	c := NewLeader(l.Style.Get(), slices.Clone(l.Vertices)...)
	c.EntityBase = l.cloneBase()
	c.HasArrow = l.HasArrow
	cloneOverrides(&c.StyleOverrides, &l.StyleOverrides)
	return c
}
