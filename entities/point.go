package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

type Point struct {
	EntityBase
	Position core.Point
}

func init() {
	Register("POINT", func() Entity { return NewPoint(core.Point{}) })
}

func NewPoint(position core.Point) *Point {
	return &Point{EntityBase: newEntityBase(KindPoint, "POINT"), Position: position}
}

func (p *Point) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		t := s.LastTag
		if !p.parseCommon(t, r) {
			core.ParsePoint(t, 10, &p.Position)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (p *Point) Write(w *core.Writer) {
	p.writeCommon(w)
	w.Str(100, "AcDbPoint")
	w.Point(10, p.Position)
	p.WriteXData(w)
}

func (p *Point) Clone() Entity {
	return &Point{EntityBase: p.cloneBase(), Position: p.Position}
}
