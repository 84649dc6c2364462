package entities

import (
	"strings"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Text 单行文字。样式为 nil 时加入文档会使用 Standard。
type Text struct {
	EntityBase
	Value       string
	Position    core.Point
	Height      float64
	Rotation    float64
	WidthFactor float64
	Style       notify.Property[*tables.TextStyle]
}

func init() {
	Register("TEXT", func() Entity { return NewText("", core.Point{}, 2.5) })
	Register("MTEXT", func() Entity { return NewMText("", core.Point{}, 2.5) })
}

func NewText(value string, position core.Point, height float64) *Text {
	return &Text{
		EntityBase:  newEntityBase(KindText, "TEXT"),
		Value:       value,
		Position:    position,
		Height:      height,
		WidthFactor: 1,
	}
}

func (t *Text) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case t.parseCommon(tag, r):
		case tag.Code == 1:
			t.Value = tag.AsString()
		case tag.Code == 7:
			t.Style.Init(r.TextStyle(tag.AsString()))
		case tag.Code == 40:
			t.Height = tag.AsFloat()
		case tag.Code == 41:
			t.WidthFactor = tag.AsFloat()
		case tag.Code == 50:
			t.Rotation = tag.AsFloat()
		default:
			core.ParsePoint(tag, 10, &t.Position)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (t *Text) Write(w *core.Writer) {
	t.writeCommon(w)
	w.Str(100, "AcDbText")
	w.Point(10, t.Position)
	w.Double(40, t.Height)
	w.Str(1, t.Value)
	w.Double(50, t.Rotation)
	w.Double(41, t.WidthFactor)
	w.Str(7, tables.NameOf(t.Style.Get(), "Standard"))
	w.Str(100, "AcDbText")
	t.WriteXData(w)
}

func (t *Text) Clone() Entity {
	c := *t
	c.EntityBase = t.cloneBase()
	c.Style = notify.NewProperty(t.Style.Get())
	return &c
}

// MText 多行文字
type MText struct {
	EntityBase
	Value           string
	Position        core.Point
	Height          float64
	Width           float64
	Rotation        float64
	AttachmentPoint int16
	Style           notify.Property[*tables.TextStyle]
}

func NewMText(value string, position core.Point, height float64) *MText {
	return &MText{
		EntityBase:      newEntityBase(KindMText, "MTEXT"),
		Value:           value,
		Position:        position,
		Height:          height,
		AttachmentPoint: 1,
	}
}

func (m *MText) Parse(s *core.Scanner, r tables.Resolver) error {
	var text strings.Builder
	for {
		tag := s.LastTag
		switch {
		case m.parseCommon(tag, r):
		case tag.Code == 1 || tag.Code == 3:
			// 分段文字保留首尾空格
			v, _ := tag.Str()
			text.WriteString(v)
		case tag.Code == 7:
			m.Style.Init(r.TextStyle(tag.AsString()))
		case tag.Code == 40:
			m.Height = tag.AsFloat()
		case tag.Code == 41:
			m.Width = tag.AsFloat()
		case tag.Code == 50:
			m.Rotation = tag.AsFloat()
		case tag.Code == 71:
			m.AttachmentPoint = int16(tag.AsInt())
		default:
			core.ParsePoint(tag, 10, &m.Position)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	m.Value = text.String()
	return s.Err()
}

// mtextChunk 组码 3 每段的长度
const mtextChunk = 250

// paragraphs 换行写成 MTEXT 的分段符 \P
var paragraphs = strings.NewReplacer("\r\n", `\P`, "\n", `\P`, "\r", `\P`)

func (m *MText) Write(w *core.Writer) {
	m.writeCommon(w)
	w.Str(100, "AcDbMText")
	w.Point(10, m.Position)
	w.Double(40, m.Height)
	w.Double(41, m.Width)
	w.Int16(71, m.AttachmentPoint)
	w.Int16(72, 5)
	value := []rune(paragraphs.Replace(m.Value))
	for len(value) > mtextChunk {
		w.Str(3, string(value[:mtextChunk]))
		value = value[mtextChunk:]
	}
	w.Str(1, string(value))
	w.Str(7, tables.NameOf(m.Style.Get(), "Standard"))
	w.Double(50, m.Rotation)
	m.WriteXData(w)
}

func (m *MText) Clone() Entity {
	c := *m
	c.EntityBase = m.cloneBase()
	c.Style = notify.NewProperty(m.Style.Get())
	return &c
}
