package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Viewport 图纸空间视口。ClippingBoundary 为非矩形裁剪边界，与视口位于同一个块中。
type Viewport struct {
	EntityBase
	Center           core.Point
	Width            float64
	Height           float64
	ID               int16
	ViewCenter       core.Point
	ViewHeight       float64
	Status           int32
	FrozenLayers     notify.List[*tables.Layer]
	ClippingBoundary notify.Property[Entity]
}

// clippingFlag 状态位：使用非矩形裁剪
const clippingFlag = 0x10000

func init() {
	Register("VIEWPORT", func() Entity { return NewViewport(core.Point{}, 1, 1) })
}

func NewViewport(center core.Point, width, height float64) *Viewport {
	return &Viewport{
		EntityBase: newEntityBase(KindViewport, "VIEWPORT"),
		Center:     center,
		Width:      width,
		Height:     height,
		ID:         2,
		ViewHeight: height,
	}
}

func (v *Viewport) Parse(s *core.Scanner, r tables.Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case v.parseCommon(tag, r):
		case tag.Code == 40:
			v.Width = tag.AsFloat()
		case tag.Code == 41:
			v.Height = tag.AsFloat()
		case tag.Code == 69:
			v.ID = int16(tag.AsInt())
		case tag.Code == 45:
			v.ViewHeight = tag.AsFloat()
		case tag.Code == 90:
			v.Status = int32(tag.AsInt())
		case tag.Code == 331:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				if l, ok := obj.(*tables.Layer); ok {
					v.FrozenLayers.Init(l)
				}
			})
		case tag.Code == 340:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				e, _ := obj.(Entity)
				v.ClippingBoundary.Init(e)
			})
		case core.ParsePoint(tag, 10, &v.Center):
		case core.ParsePoint(tag, 12, &v.ViewCenter):
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (v *Viewport) Write(w *core.Writer) {
	clip := v.ClippingBoundary.Get()
	status := v.Status &^ clippingFlag
	if !tables.IsNil(clip) {
		status |= clippingFlag
	}

	v.writeCommon(w)
	w.Str(100, "AcDbViewport")
	w.Point(10, v.Center)
	w.Double(40, v.Width)
	w.Double(41, v.Height)
	w.Int16(68, 1)
	w.Int16(69, v.ID)
	w.Point2D(12, v.ViewCenter)
	w.Double(45, v.ViewHeight)
	for _, l := range v.FrozenLayers.Items() {
		w.Handle(331, tables.HandleOrZero(l.Handle()))
	}
	w.Int32(90, status)
	if !tables.IsNil(clip) {
		w.Handle(340, tables.HandleOrZero(clip.Handle()))
	}
	v.WriteXData(w)
}

// Clone 裁剪边界不复制
func (v *Viewport) Clone() Entity {
	c := NewViewport(v.Center, v.Width, v.Height)
	c.EntityBase = v.cloneBase()
	c.ID = v.ID
	c.ViewCenter = v.ViewCenter
	c.ViewHeight = v.ViewHeight
	c.Status = v.Status &^ clippingFlag
	c.FrozenLayers.Init(v.FrozenLayers.Items()...)
	return c
}
