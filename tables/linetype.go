package tables

import (
	"math"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

// LinetypeSegment 线型的一段：正数为实线，负数为空白，0 为点。
// Text 非空时是文字段，文字使用 Style 样式。
type LinetypeSegment struct {
	Length   float64
	Text     string
	Style    *TextStyle
	Scale    float64
	Rotation float64
	Offset   core.Point
}

type Linetype struct {
	TableBase
	Description string
	Segments    notify.List[*LinetypeSegment]
}

func NewLinetype(name string, segments ...*LinetypeSegment) *Linetype {
	l := &Linetype{TableBase: NewTableBase("LTYPE", name)}
	l.Segments.Init(segments...)
	return l
}

func (l *Linetype) Reserved() bool { return nameIs(l.name, "ByLayer", "ByBlock", "Continuous") }

// TextStyles 文字段引用的样式
func (l *Linetype) TextStyles() []*TextStyle {
	var styles []*TextStyle
	for _, seg := range l.Segments.Items() {
		if seg.Style != nil {
			styles = append(styles, seg.Style)
		}
	}
	return styles
}

func (l *Linetype) Parse(s *core.Scanner, r Resolver) error {
	var cur *LinetypeSegment
	for {
		tag := s.LastTag
		switch {
		case l.ParseCommon(tag, r):
		case l.parseName(tag):
		case tag.Code == 3:
			l.Description = tag.AsString()
		case tag.Code == 49:
			cur = &LinetypeSegment{Length: tag.AsFloat(), Scale: 1}
			l.Segments.Init(cur)
		case cur == nil:
		case tag.Code == 9:
			cur.Text = tag.AsString()
		case tag.Code == 340:
			seg := cur
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj Object) {
				seg.Style, _ = obj.(*TextStyle)
			})
		case tag.Code == 46:
			cur.Scale = tag.AsFloat()
		case tag.Code == 50:
			cur.Rotation = tag.AsFloat()
		case tag.Code == 44:
			cur.Offset.X = tag.AsFloat()
		case tag.Code == 45:
			cur.Offset.Y = tag.AsFloat()
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (l *Linetype) Write(w *core.Writer) {
	segments := l.Segments.Items()
	total := 0.0
	for _, seg := range segments {
		total += math.Abs(seg.Length)
	}

	l.writeRecord(w, "AcDbLinetypeTableRecord")
	w.Str(3, l.Description)
	w.Int16(72, 65)
	w.Int16(73, int16(len(segments)))
	w.Double(40, total)
	for _, seg := range segments {
		w.Double(49, seg.Length)
		if seg.Text == "" {
			w.Int16(74, 0)
			continue
		}
		w.Int16(74, 2)
		w.Int16(75, 0)
		w.Handle(340, HandleOrZero(HandleOf(seg.Style)))
		w.Double(46, seg.Scale)
		w.Double(50, seg.Rotation)
		w.Double(44, seg.Offset.X)
		w.Double(45, seg.Offset.Y)
		w.Str(9, seg.Text)
	}
	l.WriteXData(w)
}
