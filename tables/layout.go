package tables

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

// Layout 布局。Model 对应模型空间块，其余布局各自拥有一个图纸空间块，
// 并隐含一个图纸视口，占用一个额外的句柄。
type Layout struct {
	TableBase
	TabOrder int16
	MinLimit core.Point
	MaxLimit core.Point
	Block    notify.Property[*Block]

	viewport string
	subclass string
}

func NewLayout(name string) *Layout {
	return &Layout{
		TableBase: NewTableBase("LAYOUT", name),
		MaxLimit:  core.Point{X: 12, Y: 9},
	}
}

func (l *Layout) Reserved() bool { return nameIs(l.name, "Model") }

// IsModel 是否为模型布局
func (l *Layout) IsModel() bool { return l.Reserved() }

// Viewport 隐含图纸视口的句柄
func (l *Layout) Viewport() string { return l.viewport }

func (l *Layout) SetViewport(handle string) { l.viewport = handle }

// AssignHandle 先分配视口句柄
func (l *Layout) AssignHandle(counter uint64) uint64 {
	l.viewport, counter = core.AssignHandle(counter)
	return l.TableBase.AssignHandle(counter)
}

func (l *Layout) FillHandles(counter uint64) uint64 {
	if l.viewport == "" {
		l.viewport, counter = core.AssignHandle(counter)
	}
	return counter
}

func (l *Layout) Release() {
	l.TableBase.Release()
	l.viewport = ""
}

func (l *Layout) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case l.ParseCommon(tag, r):
		case tag.Code == 100:
			l.subclass = tag.AsString()
		case l.subclass != "AcDbLayout":
			// 打印设置不保存
		case tag.Code == 1:
			l.name = tag.AsString()
		case tag.Code == 70:
			l.Flags = int16(tag.AsInt())
		case tag.Code == 71:
			l.TabOrder = int16(tag.AsInt())
		case tag.Code == 330:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj Object) {
				b, _ := obj.(*Block)
				l.Block.Init(b)
			})
		default:
			core.ParsePoint(tag, 10, &l.MinLimit)
			core.ParsePoint(tag, 11, &l.MaxLimit)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (l *Layout) Write(w *core.Writer) {
	l.WriteHeader(w)
	w.Str(100, "AcDbPlotSettings")
	w.Str(1, "")
	w.Int16(70, 688)
	w.Str(100, "AcDbLayout")
	w.Str(1, l.name)
	w.Int16(70, l.Flags)
	w.Int16(71, l.TabOrder)
	w.Point2D(10, l.MinLimit)
	w.Point2D(11, l.MaxLimit)
	w.Handle(330, HandleOrZero(HandleOf(l.Block.Get())))
	l.WriteXData(w)
}
