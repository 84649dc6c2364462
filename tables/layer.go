package tables

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

type Layer struct {
	TableBase
	Color      int16 // 组码 62，负数表示关闭
	Linetype   notify.Property[*Linetype]
	Plot       bool  // 组码 290
	Lineweight int16 // 组码 370，-3 为默认线宽
}

func NewLayer(name string) *Layer {
	return &Layer{TableBase: NewTableBase("LAYER", name), Color: 7, Plot: true, Lineweight: -3}
}

func (l *Layer) Reserved() bool { return l.name == "0" }

// Off 图层是否关闭
func (l *Layer) Off() bool { return l.Color < 0 }

func (l *Layer) Parse(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case l.ParseCommon(tag, r):
		case l.parseName(tag):
		case tag.Code == 62:
			l.Color = int16(tag.AsInt())
		case tag.Code == 6:
			l.Linetype.Init(r.Linetype(tag.AsString()))
		case tag.Code == 290:
			l.Plot = tag.AsBool()
		case tag.Code == 370:
			l.Lineweight = int16(tag.AsInt())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (l *Layer) Write(w *core.Writer) {
	l.writeRecord(w, "AcDbLayerTableRecord")
	w.Int16(62, l.Color)
	w.Str(6, NameOf(l.Linetype.Get(), "Continuous"))
	w.Bool(290, l.Plot)
	w.Int16(370, l.Lineweight)
	l.WriteXData(w)
}

// NameOf 取对象名称，nil 时返回 def
func NameOf[T TableObject](obj T, def string) string {
	if IsNil(obj) {
		return def
	}
	return obj.Name()
}
