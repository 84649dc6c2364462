package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Attrib 插入块上的属性，只能通过 Insert.Attributes 加入文档
type Attrib struct {
	EntityBase
	Location core.Point
	Tag      string // 属性标签，如 "序号"
	Text     string // 属性值
	Height   float64
	Rotation float64
	Flags    int16
	Style    notify.Property[*tables.TextStyle]
}

func init() {
	Register("ATTRIB", func() Entity { return NewAttrib("", "") })
	Register("ATTDEF", func() Entity { return NewAttributeDefinition("", "", "") })
}

func NewAttrib(tag, text string) *Attrib {
	return &Attrib{EntityBase: newEntityBase(KindAttribute, "ATTRIB"), Tag: tag, Text: text, Height: 2.5}
}

func (a *Attrib) Parse(scanner *core.Scanner, r tables.Resolver) error {
	for {
		tag := scanner.LastTag
		switch {
		case a.parseCommon(tag, r):
		case tag.Code == 40:
			a.Height = tag.AsFloat()
		case tag.Code == 50:
			a.Rotation = tag.AsFloat()
		case tag.Code == 1:
			a.Text = tag.AsString()
		case tag.Code == 2:
			a.Tag = tag.AsString()
		case tag.Code == 70:
			a.Flags = int16(tag.AsInt())
		case tag.Code == 7:
			a.Style.Init(r.TextStyle(tag.AsString()))
		default:
			core.ParsePoint(tag, 10, &a.Location)
		}
		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}
	return scanner.Err()
}

func (a *Attrib) Write(w *core.Writer) {
	a.writeCommon(w)
	w.Str(100, "AcDbText")
	w.Point(10, a.Location)
	w.Double(40, a.Height)
	w.Str(1, a.Text)
	w.Double(50, a.Rotation)
	w.Str(7, tables.NameOf(a.Style.Get(), "Standard"))
	w.Str(100, "AcDbAttribute")
	w.Str(2, a.Tag)
	w.Int16(70, a.Flags)
	a.WriteXData(w)
}

func (a *Attrib) Clone() Entity {
	c := *a
	c.EntityBase = a.cloneBase()
	c.Style = notify.NewProperty(a.Style.Get())
	return &c
}

// AttributeDefinition 块中的属性定义，插入块时按标签生成属性
type AttributeDefinition struct {
	EntityBase
	Location core.Point
	Tag      string
	Prompt   string
	Value    string // 默认值
	Height   float64
	Rotation float64
	Flags    int16
	Style    notify.Property[*tables.TextStyle]
}

func NewAttributeDefinition(tag, prompt, value string) *AttributeDefinition {
	return &AttributeDefinition{
		EntityBase: newEntityBase(KindAttributeDefinition, "ATTDEF"),
		Tag:        tag,
		Prompt:     prompt,
		Value:      value,
		Height:     2.5,
	}
}

func (a *AttributeDefinition) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case a.parseCommon(tag, r):
		case tag.Code == 40:
			a.Height = tag.AsFloat()
		case tag.Code == 50:
			a.Rotation = tag.AsFloat()
		case tag.Code == 1:
			a.Value = tag.AsString()
		case tag.Code == 2:
			a.Tag = tag.AsString()
		case tag.Code == 3:
			a.Prompt = tag.AsString()
		case tag.Code == 70:
			a.Flags = int16(tag.AsInt())
		case tag.Code == 7:
			a.Style.Init(r.TextStyle(tag.AsString()))
		default:
			core.ParsePoint(tag, 10, &a.Location)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (a *AttributeDefinition) Write(w *core.Writer) {
	a.writeCommon(w)
	w.Str(100, "AcDbText")
	w.Point(10, a.Location)
	w.Double(40, a.Height)
	w.Str(1, a.Value)
	w.Double(50, a.Rotation)
	w.Str(7, tables.NameOf(a.Style.Get(), "Standard"))
	w.Str(100, "AcDbAttributeDefinition")
	w.Str(3, a.Prompt)
	w.Str(2, a.Tag)
	w.Int16(70, a.Flags)
	a.WriteXData(w)
}

func (a *AttributeDefinition) Clone() Entity {
	c := *a
	c.EntityBase = a.cloneBase()
	c.Style = notify.NewProperty(a.Style.Get())
	return &c
}

// NewAttrib 按定义生成属性
func (a *AttributeDefinition) NewAttrib() *Attrib {
	attr := NewAttrib(a.Tag, a.Value)
	attr.Location = a.Location
	attr.Height = a.Height
	attr.Rotation = a.Rotation
	attr.Style.Init(a.Style.Get())
	attr.Layer.Init(a.Layer.Get())
	return attr
}
