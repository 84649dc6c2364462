package tables

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

// MLineStyleElement 多线中的一条线
type MLineStyleElement struct {
	Offset   float64
	Color    int16
	Linetype *Linetype
}

// MLineStyle 多线样式，元素引用线型
type MLineStyle struct {
	TableBase
	Description string
	FillColor   int16
	StartAngle  float64
	EndAngle    float64
	Elements    notify.List[*MLineStyleElement]
}

func NewMLineStyle(name string, elements ...*MLineStyleElement) *MLineStyle {
	m := &MLineStyle{
		TableBase:  NewTableBase("MLINESTYLE", name),
		FillColor:  256,
		StartAngle: 90,
		EndAngle:   90,
	}
	m.Elements.Init(elements...)
	return m
}

func (m *MLineStyle) Reserved() bool { return nameIs(m.name, "Standard") }

// Linetypes 元素引用的线型，重复的按次数返回
func (m *MLineStyle) Linetypes() []*Linetype {
	var linetypes []*Linetype
	for _, e := range m.Elements.Items() {
		if e.Linetype != nil {
			linetypes = append(linetypes, e.Linetype)
		}
	}
	return linetypes
}

func (m *MLineStyle) Parse(s *core.Scanner, r Resolver) error {
	var cur *MLineStyleElement
	for {
		tag := s.LastTag
		switch {
		case m.ParseCommon(tag, r):
		case m.parseName(tag):
		case tag.Code == 3:
			m.Description = tag.AsString()
		case tag.Code == 51:
			m.StartAngle = tag.AsFloat()
		case tag.Code == 52:
			m.EndAngle = tag.AsFloat()
		case tag.Code == 49:
			cur = &MLineStyleElement{Offset: tag.AsFloat(), Color: 256}
			m.Elements.Init(cur)
		case tag.Code == 62 && cur == nil:
			m.FillColor = int16(tag.AsInt())
		case tag.Code == 62:
			cur.Color = int16(tag.AsInt())
		case tag.Code == 6 && cur != nil:
			cur.Linetype = r.Linetype(tag.AsString())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (m *MLineStyle) Write(w *core.Writer) {
	m.WriteHeader(w)
	w.Str(100, "AcDbMlineStyle")
	w.Str(2, m.name)
	w.Int16(70, m.Flags)
	w.Str(3, m.Description)
	w.Int16(62, m.FillColor)
	w.Double(51, m.StartAngle)
	w.Double(52, m.EndAngle)
	elements := m.Elements.Items()
	w.Int16(71, int16(len(elements)))
	for _, e := range elements {
		w.Double(49, e.Offset)
		w.Int16(62, e.Color)
		w.Str(6, NameOf(e.Linetype, "ByLayer"))
	}
	m.WriteXData(w)
}
