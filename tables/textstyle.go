package tables

import "github.com/zooyer/dxfdoc/core"

type TextStyle struct {
	TableBase
	Height      float64 // 组码 40，0 表示不固定
	WidthFactor float64 // 组码 41
	Oblique     float64 // 组码 50
	LastHeight  float64 // 组码 42
	Font        string  // 组码 3
	BigFont     string  // 组码 4
	Generation  int16   // 组码 71
}

func NewTextStyle(name, font string) *TextStyle {
	return &TextStyle{
		TableBase:   NewTableBase("STYLE", name),
		WidthFactor: 1,
		LastHeight:  2.5,
		Font:        font,
	}
}

func (t *TextStyle) Reserved() bool { return nameIs(t.name, "Standard") }

func (t *TextStyle) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case t.ParseCommon(tag, r):
		case t.parseName(tag):
		case tag.Code == 40:
			t.Height = tag.AsFloat()
		case tag.Code == 41:
			t.WidthFactor = tag.AsFloat()
		case tag.Code == 50:
			t.Oblique = tag.AsFloat()
		case tag.Code == 42:
			t.LastHeight = tag.AsFloat()
		case tag.Code == 3:
			t.Font = tag.AsString()
		case tag.Code == 4:
			t.BigFont = tag.AsString()
		case tag.Code == 71:
			t.Generation = int16(tag.AsInt())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (t *TextStyle) Write(w *core.Writer) {
	t.writeRecord(w, "AcDbTextStyleTableRecord")
	w.Double(40, t.Height)
	w.Double(41, t.WidthFactor)
	w.Double(50, t.Oblique)
	w.Int16(71, t.Generation)
	w.Double(42, t.LastHeight)
	w.Str(3, t.Font)
	w.Str(4, t.BigFont)
	t.WriteXData(w)
}
