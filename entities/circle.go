package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

type Circle struct {
	EntityBase
	Center core.Point
	Radius float64
}

// Arc 圆弧，角度为度
type Arc struct {
	Circle
	StartAngle float64
	EndAngle   float64
}

func init() {
	Register("CIRCLE", func() Entity { return NewCircle(core.Point{}, 1) })
	Register("ARC", func() Entity { return NewArc(core.Point{}, 1, 0, 180) })
}

func NewCircle(center core.Point, radius float64) *Circle {
	return &Circle{EntityBase: newEntityBase(KindCircle, "CIRCLE"), Center: center, Radius: radius}
}

func NewArc(center core.Point, radius, start, end float64) *Arc {
	return &Arc{
		Circle:     Circle{EntityBase: newEntityBase(KindArc, "ARC"), Center: center, Radius: radius},
		StartAngle: start,
		EndAngle:   end,
	}
}

func (c *Circle) parse(t core.Tag, r tables.Resolver) bool {
	switch {
	case c.parseCommon(t, r):
	case t.Code == 40:
		c.Radius = t.AsFloat()
	default:
		return core.ParsePoint(t, 10, &c.Center)
	}
	return true
}

func (c *Circle) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		c.parse(s.LastTag, r)
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (c *Circle) writeCircle(w *core.Writer) {
	c.writeCommon(w)
	w.Str(100, "AcDbCircle")
	w.Point(10, c.Center)
	w.Double(40, c.Radius)
}

func (c *Circle) Write(w *core.Writer) {
	c.writeCircle(w)
	c.WriteXData(w)
}

func (c *Circle) Clone() Entity {
	return &Circle{EntityBase: c.cloneBase(), Center: c.Center, Radius: c.Radius}
}

func (a *Arc) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		t := s.LastTag
		switch {
		case a.parse(t, r):
		case t.Code == 50:
			a.StartAngle = t.AsFloat()
		case t.Code == 51:
			a.EndAngle = t.AsFloat()
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (a *Arc) Write(w *core.Writer) {
	a.writeCircle(w)
	w.Str(100, "AcDbArc")
	w.Double(50, a.StartAngle)
	w.Double(51, a.EndAngle)
	a.WriteXData(w)
}

func (a *Arc) Clone() Entity {
	return &Arc{
		Circle:     Circle{EntityBase: a.cloneBase(), Center: a.Center, Radius: a.Radius},
		StartAngle: a.StartAngle,
		EndAngle:   a.EndAngle,
	}
}
