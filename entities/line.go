package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

type Line struct {
	EntityBase
	Start, End core.Point
	Thickness  float64
}

func init() {
	Register("LINE", func() Entity { return NewLine(core.Point{}, core.Point{}) })
}

func NewLine(start, end core.Point) *Line {
	return &Line{EntityBase: newEntityBase(KindLine, "LINE"), Start: start, End: end}
}

func (l *Line) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		t := s.LastTag
		switch {
		case l.parseCommon(t, r):
		case t.Code == 39:
			l.Thickness = t.AsFloat()
		case core.ParsePoint(t, 10, &l.Start):
		case core.ParsePoint(t, 11, &l.End):
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (l *Line) Write(w *core.Writer) {
	l.writeCommon(w)
	w.Str(100, "AcDbLine")
	if l.Thickness != 0 {
		w.Double(39, l.Thickness)
	}
	w.Point(10, l.Start)
	w.Point(11, l.End)
	l.WriteXData(w)
}

func (l *Line) Clone() Entity {
	return &Line{EntityBase: l.cloneBase(), Start: l.Start, End: l.End, Thickness: l.Thickness}
}
