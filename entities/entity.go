package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// EntityBase 存放所有实体通用的属性（如 Layer, Color, Handle）。
// 图层为 nil 时加入文档会使用 "0"，线型为 nil 时使用 ByLayer。
type EntityBase struct {
	tables.ObjectBase
	kind          Kind
	Layer         notify.Property[*tables.Layer]
	Linetype      notify.Property[*tables.Linetype]
	Color         int16   // 组码 62，256 随层
	Lineweight    int16   // 组码 370，-1 随层
	LinetypeScale float64 // 组码 48
	Invisible     bool    // 组码 60
	paper         bool
}

func newEntityBase(kind Kind, code string) EntityBase {
	return EntityBase{
		ObjectBase:    tables.NewObjectBase(code),
		kind:          kind,
		Color:         256,
		Lineweight:    -1,
		LinetypeScale: 1,
	}
}

func (b *EntityBase) Type() string { return b.CodeName() }

func (b *EntityBase) Kind() Kind { return b.kind }

func (b *EntityBase) Entity() *EntityBase { return b }

// PaperSpace 是否位于图纸空间
func (b *EntityBase) PaperSpace() bool { return b.paper }

func (b *EntityBase) SetPaperSpace(paper bool) { b.paper = paper }

// parseCommon 处理句柄、归属、扩展数据和实体公共属性
func (b *EntityBase) parseCommon(tag core.Tag, r tables.Resolver) bool {
	if b.ParseCommon(tag, r) {
		return true
	}
	switch tag.Code {
	case 8:
		b.Layer.Init(r.Layer(tag.AsString()))
	case 6:
		b.Linetype.Init(r.Linetype(tag.AsString()))
	case 62:
		b.Color = int16(tag.AsInt())
	case 370:
		b.Lineweight = int16(tag.AsInt())
	case 48:
		b.LinetypeScale = tag.AsFloat()
	case 60:
		b.Invisible = tag.AsInt() != 0
	case 67:
		b.paper = tag.AsInt() != 0
	default:
		return false
	}
	return true
}

// writeCommon 写出对象头和 AcDbEntity 子类，默认值不写
func (b *EntityBase) writeCommon(w *core.Writer) {
	b.WriteHeader(w)
	w.Str(100, "AcDbEntity")
	if b.paper {
		w.Int16(67, 1)
	}
	w.Str(8, tables.NameOf(b.Layer.Get(), "0"))
	if lt := b.Linetype.Get(); lt != nil && lt.Name() != "ByLayer" {
		w.Str(6, lt.Name())
	}
	if b.Color != 256 {
		w.Int16(62, b.Color)
	}
	if b.Lineweight != -1 {
		w.Int16(370, b.Lineweight)
	}
	if b.LinetypeScale != 1 {
		w.Double(48, b.LinetypeScale)
	}
	if b.Invisible {
		w.Int16(60, 1)
	}
}

// cloneBase 复制公共属性，不带句柄、归属和订阅
func (b *EntityBase) cloneBase() EntityBase {
	c := newEntityBase(b.kind, b.CodeName())
	c.Layer.Init(b.Layer.Get())
	c.Linetype.Init(b.Linetype.Get())
	c.Color = b.Color
	c.Lineweight = b.Lineweight
	c.LinetypeScale = b.LinetypeScale
	c.Invisible = b.Invisible
	c.paper = b.paper
	for _, e := range b.XData().Entries() {
		c.XData().Init(e.Key, tables.NewXData(e.Value.App, slices.Clone(e.Value.Records)...))
	}
	return c
}
