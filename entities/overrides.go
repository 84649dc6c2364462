package entities

import (
	"slices"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// DimStyleOverride 标注、引线上单独覆盖的样式变量，值为对应的 DIMVAR 组码
type DimStyleOverride int16

const (
	OverrideScale            DimStyleOverride = 40
	OverrideArrowSize        DimStyleOverride = 41
	OverrideExtLineOffset    DimStyleOverride = 42
	OverrideExLimit          DimStyleOverride = 44
	OverrideTextHeight       DimStyleOverride = 140
	OverrideTextGap          DimStyleOverride = 147
	OverridePrecision        DimStyleOverride = 271
	OverrideTextStyle        DimStyleOverride = 340
	OverrideLeaderArrow      DimStyleOverride = 341
	OverrideArrow1           DimStyleOverride = 343
	OverrideArrow2           DimStyleOverride = 344
	OverrideDimLineLinetype  DimStyleOverride = 345
	OverrideExtLine1Linetype DimStyleOverride = 346
	OverrideExtLine2Linetype DimStyleOverride = 347
)

// Overrides 样式覆盖集合
type Overrides = notify.Map[DimStyleOverride, any]

// Valid 值类型是否与覆盖项匹配。箭头块允许 nil，表示使用默认箭头。
func (o DimStyleOverride) Valid(v any) bool {
	switch o {
	case OverrideScale, OverrideArrowSize, OverrideExtLineOffset, OverrideExLimit, OverrideTextHeight, OverrideTextGap:
		_, ok := v.(float64)
		return ok
	case OverridePrecision:
		_, ok := v.(int16)
		return ok
	case OverrideTextStyle:
		ts, ok := v.(*tables.TextStyle)
		return ok && ts != nil
	case OverrideLeaderArrow, OverrideArrow1, OverrideArrow2:
		_, ok := v.(*tables.Block)
		return ok
	case OverrideDimLineLinetype, OverrideExtLine1Linetype, OverrideExtLine2Linetype:
		lt, ok := v.(*tables.Linetype)
		return ok && lt != nil
	}
	return false
}

const dstyle = "DSTYLE"

// parseOverrides 从 ACAD 扩展数据中取出 DSTYLE 覆盖，剩余记录保留
func parseOverrides(b *EntityBase, m *Overrides, r tables.Resolver) {
	x := b.GetXData("ACAD")
	if x == nil {
		return
	}
	start := slices.IndexFunc(x.Records, func(t core.Tag) bool { return t.Code == 1000 && t.AsString() == dstyle })
	if start < 0 {
		return
	}
	end := start + 1
	for ; end < len(x.Records); end++ {
		if t := x.Records[end]; t.Code == 1002 && t.AsString() == "}" {
			break
		}
	}

	records := x.Records[start+1 : min(end, len(x.Records))]
	for i := 0; i+1 < len(records); i++ {
		if records[i].Code != 1070 {
			continue
		}
		key, val := DimStyleOverride(records[i].AsInt()), records[i+1]
		i++
		switch val.Code {
		case 1040:
			m.Init(key, val.AsFloat())
		case 1070:
			m.Init(key, int16(val.AsInt()))
		case 1005:
			h, _ := val.Handle()
			r.ByHandle(h, func(obj tables.Object) {
				switch key {
				case OverrideTextStyle:
					ts, _ := obj.(*tables.TextStyle)
					m.Init(key, ts)
				case OverrideLeaderArrow, OverrideArrow1, OverrideArrow2:
					blk, _ := obj.(*tables.Block)
					m.Init(key, blk)
				case OverrideDimLineLinetype, OverrideExtLine1Linetype, OverrideExtLine2Linetype:
					lt, _ := obj.(*tables.Linetype)
					m.Init(key, lt)
				}
			})
		}
	}

	x.Records = append(x.Records[:start:start], x.Records[min(end+1, len(x.Records)):]...)
	if len(x.Records) == 0 {
		b.RemoveXData("ACAD")
	}
}

// writeXData 写出扩展数据，覆盖项写在 ACAD 的 DSTYLE 中
func writeXData(b *EntityBase, w *core.Writer, m *Overrides) {
	if m.Len() == 0 {
		b.WriteXData(w)
		return
	}

	var acad []core.Tag
	for _, e := range b.XData().Entries() {
		if e.Key == "ACAD" {
			acad = e.Value.Records
			continue
		}
		w.Str(1001, e.Value.App.Name())
		for _, rec := range e.Value.Records {
			w.WriteTag(rec)
		}
	}

	w.Str(1001, "ACAD")
	w.Str(1000, dstyle)
	w.Str(1002, "{")
	for _, e := range m.Entries() {
		w.Int16(1070, int16(e.Key))
		switch v := e.Value.(type) {
		case float64:
			w.Double(1040, v)
		case int16:
			w.Int16(1070, v)
		case tables.Object:
			w.Handle(1005, tables.HandleOrZero(tables.HandleOf(v)))
		}
	}
	w.Str(1002, "}")
	for _, rec := range acad {
		w.WriteTag(rec)
	}
}

// cloneOverrides 复制覆盖项，不带订阅
func cloneOverrides(dst, src *Overrides) {
	for _, e := range src.Entries() {
		dst.Init(e.Key, e.Value)
	}
}
