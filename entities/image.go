package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Image 光栅图像。每个图像对应一个 IMAGEDEF_REACTOR 对象，占用一个额外的句柄。
type Image struct {
	EntityBase
	Position   core.Point
	U          core.Point // 一个像素在 X 方向上的向量
	V          core.Point
	Size       core.Point // 像素
	Definition notify.Property[*tables.ImageDefinition]

	reactor string
}

func init() {
	Register("IMAGE", func() Entity { return NewImage(nil, core.Point{}, 1, 1) })
	for _, kind := range []tables.UnderlayKind{tables.UnderlayPDF, tables.UnderlayDWF, tables.UnderlayDGN} {
		Register(kind.EntityName(), func() Entity { return newUnderlay(kind) })
	}
}

// NewImage 按定义的像素尺寸放置，宽高为图形单位
func NewImage(def *tables.ImageDefinition, position core.Point, width, height float64) *Image {
	img := &Image{
		EntityBase: newEntityBase(KindImage, "IMAGE"),
		Position:   position,
		Size:       core.Point{X: 1, Y: 1},
	}
	if def != nil && def.Size.X > 0 && def.Size.Y > 0 {
		img.Size = def.Size
	}
	img.U = core.Point{X: width / img.Size.X}
	img.V = core.Point{Y: height / img.Size.Y}
	img.Definition.Init(def)
	return img
}

// Reactor IMAGEDEF_REACTOR 的句柄
func (i *Image) Reactor() string { return i.reactor }

func (i *Image) AssignHandle(counter uint64) uint64 {
	i.reactor, counter = core.AssignHandle(counter)
	return i.EntityBase.AssignHandle(counter)
}

func (i *Image) FillHandles(counter uint64) uint64 {
	if i.reactor == "" {
		i.reactor, counter = core.AssignHandle(counter)
	}
	return counter
}

func (i *Image) Release() {
	i.EntityBase.Release()
	i.reactor = ""
}

func (i *Image) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case i.parseCommon(tag, r):
		case tag.Code == 340:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				def, _ := obj.(*tables.ImageDefinition)
				i.Definition.Init(def)
			})
		case tag.Code == 360:
			i.reactor, _ = tag.Handle()
		case core.ParsePoint(tag, 10, &i.Position):
		case core.ParsePoint(tag, 11, &i.U):
		case core.ParsePoint(tag, 12, &i.V):
		case core.ParsePoint(tag, 13, &i.Size):
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (i *Image) Write(w *core.Writer) {
	i.writeCommon(w)
	w.Str(100, "AcDbRasterImage")
	w.Int32(90, 0)
	w.Point(10, i.Position)
	w.Point(11, i.U)
	w.Point(12, i.V)
	w.Point2D(13, i.Size)
	w.Handle(340, tables.HandleOrZero(tables.HandleOf(i.Definition.Get())))
	w.Int16(70, 7)
	w.Int16(280, 0)
	w.Int16(281, 50)
	w.Int16(282, 50)
	w.Int16(283, 0)
	w.Handle(360, tables.HandleOrZero(i.reactor))
	w.Int16(71, 1)
	w.Int32(91, 2)
	w.Point2D(14, core.Point{X: -0.5, Y: -0.5})
	w.Point2D(14, core.Point{X: i.Size.X - 0.5, Y: i.Size.Y - 0.5})
	i.WriteXData(w)
}

// WriteReactor 写出 IMAGEDEF_REACTOR 对象
func (i *Image) WriteReactor(w *core.Writer) {
	w.Str(0, "IMAGEDEF_REACTOR")
	w.Handle(5, tables.HandleOrZero(i.reactor))
	w.Handle(330, tables.HandleOrZero(i.Handle()))
	w.Str(100, "AcDbRasterImageDefReactor")
	w.Int32(90, 2)
	w.Handle(330, tables.HandleOrZero(i.Handle()))
}

func (i *Image) Clone() Entity {
	c := *i
	c.EntityBase = i.cloneBase()
	c.Definition = notify.NewProperty(i.Definition.Get())
	c.reactor = ""
	return &c
}

// Underlay PDF、DWF、DGN 参考底图，类型由定义决定
type Underlay struct {
	EntityBase
	Position   core.Point
	Scale      core.Point
	Rotation   float64
	Definition notify.Property[*tables.UnderlayDefinition]
}

func newUnderlay(kind tables.UnderlayKind) *Underlay {
	return &Underlay{
		EntityBase: newEntityBase(KindUnderlay, kind.EntityName()),
		Scale:      core.Point{X: 1, Y: 1, Z: 1},
	}
}

func NewUnderlay(def *tables.UnderlayDefinition, position core.Point) *Underlay {
	kind := tables.UnderlayPDF
	if def != nil {
		kind = def.Kind
	}
	u := newUnderlay(kind)
	u.Position = position
	u.Definition.Init(def)
	return u
}

// Type 类型名随定义变化
func (u *Underlay) Type() string {
	if def := u.Definition.Get(); def != nil {
		return def.Kind.EntityName()
	}
	return u.CodeName()
}

func (u *Underlay) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case u.parseCommon(tag, r):
		case tag.Code == 340:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				def, _ := obj.(*tables.UnderlayDefinition)
				u.Definition.Init(def)
			})
		case tag.Code == 41:
			u.Scale.X = tag.AsFloat()
		case tag.Code == 42:
			u.Scale.Y = tag.AsFloat()
		case tag.Code == 43:
			u.Scale.Z = tag.AsFloat()
		case tag.Code == 50:
			u.Rotation = tag.AsFloat()
		default:
			core.ParsePoint(tag, 10, &u.Position)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (u *Underlay) Write(w *core.Writer) {
	w.Str(0, u.Type())
	w.Handle(5, tables.HandleOrZero(u.Handle()))
	w.Handle(330, tables.HandleOrZero(u.Owner()))
	w.Str(100, "AcDbEntity")
	if u.paper {
		w.Int16(67, 1)
	}
	w.Str(8, tables.NameOf(u.Layer.Get(), "0"))
	if lt := u.Linetype.Get(); lt != nil && lt.Name() != "ByLayer" {
		w.Str(6, lt.Name())
	}
	if u.Color != 256 {
		w.Int16(62, u.Color)
	}
	w.Str(100, "AcDbUnderlayReference")
	w.Handle(340, tables.HandleOrZero(tables.HandleOf(u.Definition.Get())))
	w.Point(10, u.Position)
	w.Double(41, u.Scale.X)
	w.Double(42, u.Scale.Y)
	w.Double(43, u.Scale.Z)
	w.Double(50, u.Rotation)
	w.Point(210, core.Point{Z: 1})
	w.Int16(280, 2)
	w.Int16(281, 100)
	w.Int16(282, 0)
	u.WriteXData(w)
}

func (u *Underlay) Clone() Entity {
	c := *u
	c.EntityBase = u.cloneBase()
	c.Definition = notify.NewProperty(u.Definition.Get())
	return &c
}
