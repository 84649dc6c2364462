package tables

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

// DimensionStyle 标注样式。箭头块为 nil 时使用默认的实心箭头，
// 线型为 nil 时随块。
type DimensionStyle struct {
	TableBase
	Scale         float64 // 组码 40 DIMSCALE，全局比例，影响所有标注特征
	ArrowSize     float64 // 组码 41 DIMASZ
	ExtLineOffset float64 // 组码 42 DIMEXO
	ExLimit       float64 // 组码 44 DIMEXE，标注线超出延伸线的长度
	TextHeight    float64 // 组码 140 DIMTXT
	TextGap       float64 // 组码 147 DIMGAP
	Precision     int16   // 组码 271 DIMDEC，显示的小数位数
	Suffix        string  // 组码 3 DIMPOST

	TextStyle        notify.Property[*TextStyle] // 340 DIMTXSTY
	LeaderArrow      notify.Property[*Block]     // 341 DIMLDRBLK
	Arrow1           notify.Property[*Block]     // 343 DIMBLK1
	Arrow2           notify.Property[*Block]     // 344 DIMBLK2
	DimLineLinetype  notify.Property[*Linetype]  // 345 DIMLTYPE
	ExtLine1Linetype notify.Property[*Linetype]  // 346 DIMLTEX1
	ExtLine2Linetype notify.Property[*Linetype]  // 347 DIMLTEX2
}

func NewDimensionStyle(name string) *DimensionStyle {
	return &DimensionStyle{
		TableBase:     NewTableBase("DIMSTYLE", name),
		Scale:         1, // 默认为 1.0，防止乘法归零
		ArrowSize:     0.18,
		ExtLineOffset: 0.0625,
		ExLimit:       0.18,
		TextHeight:    0.18,
		TextGap:       0.09,
		Precision:     4,
	}
}

func (d *DimensionStyle) Reserved() bool { return nameIs(d.name, "Standard") }

// Blocks 引用的箭头块，nil 不计
func (d *DimensionStyle) Blocks() []*Block {
	var blocks []*Block
	for _, p := range []*notify.Property[*Block]{&d.LeaderArrow, &d.Arrow1, &d.Arrow2} {
		if b := p.Get(); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Linetypes 引用的线型，nil 不计
func (d *DimensionStyle) Linetypes() []*Linetype {
	var linetypes []*Linetype
	for _, p := range []*notify.Property[*Linetype]{&d.DimLineLinetype, &d.ExtLine1Linetype, &d.ExtLine2Linetype} {
		if l := p.Get(); l != nil {
			linetypes = append(linetypes, l)
		}
	}
	return linetypes
}

func (d *DimensionStyle) Parse(s *core.Scanner, r Resolver) error {
	deferBlock := func(p *notify.Property[*Block], tag core.Tag) {
		h, _ := tag.Handle()
		r.ByHandle(h, func(obj Object) {
			b, _ := obj.(*Block)
			p.Init(b)
		})
	}
	deferLinetype := func(p *notify.Property[*Linetype], tag core.Tag) {
		h, _ := tag.Handle()
		r.ByHandle(h, func(obj Object) {
			l, _ := obj.(*Linetype)
			p.Init(l)
		})
	}

	for {
		tag := s.LastTag
		switch {
		case tag.Code == 5:
			// DIMSTYLE 的句柄是 105，5 是旧版的 DIMBLK 块名
		case d.ParseCommon(tag, r):
		case d.parseName(tag):
		case tag.Code == 3:
			d.Suffix = tag.AsString()
		case tag.Code == 40:
			d.Scale = tag.AsFloat()
		case tag.Code == 41:
			d.ArrowSize = tag.AsFloat()
		case tag.Code == 42:
			d.ExtLineOffset = tag.AsFloat()
		case tag.Code == 44:
			d.ExLimit = tag.AsFloat()
		case tag.Code == 140:
			d.TextHeight = tag.AsFloat()
		case tag.Code == 147:
			d.TextGap = tag.AsFloat()
		case tag.Code == 271:
			d.Precision = int16(tag.AsInt())
		case tag.Code == 340:
			h, _ := tag.Handle()
			r.ByHandle(h, func(obj Object) {
				ts, _ := obj.(*TextStyle)
				d.TextStyle.Init(ts)
			})
		case tag.Code == 341:
			deferBlock(&d.LeaderArrow, tag)
		case tag.Code == 343:
			deferBlock(&d.Arrow1, tag)
		case tag.Code == 344:
			deferBlock(&d.Arrow2, tag)
		case tag.Code == 345:
			deferLinetype(&d.DimLineLinetype, tag)
		case tag.Code == 346:
			deferLinetype(&d.ExtLine1Linetype, tag)
		case tag.Code == 347:
			deferLinetype(&d.ExtLine2Linetype, tag)
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (d *DimensionStyle) Write(w *core.Writer) {
	d.writeRecord(w, "AcDbDimStyleTableRecord")
	w.Str(3, d.Suffix)
	w.Double(40, d.Scale)
	w.Double(41, d.ArrowSize)
	w.Double(42, d.ExtLineOffset)
	w.Double(44, d.ExLimit)
	w.Double(140, d.TextHeight)
	w.Double(147, d.TextGap)
	w.Int16(271, d.Precision)
	w.Handle(340, HandleOrZero(HandleOf(d.TextStyle.Get())))
	// 箭头和线型为空时不写
	writeRef := func(code int, obj Object) {
		if h := HandleOf(obj); h != "" {
			w.Handle(code, h)
		}
	}
	writeRef(341, d.LeaderArrow.Get())
	writeRef(343, d.Arrow1.Get())
	writeRef(344, d.Arrow2.Get())
	writeRef(345, d.DimLineLinetype.Get())
	writeRef(346, d.ExtLine1Linetype.Get())
	writeRef(347, d.ExtLine2Linetype.Get())
	d.WriteXData(w)
}
