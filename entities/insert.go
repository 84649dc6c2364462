package entities

import (
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// Insert 块参照。带属性时属性之后有一个 SEQEND，占用一个额外的句柄。
type Insert struct {
	EntityBase
	Block          notify.Property[*tables.Block]
	InsertionPoint core.Point
	Scale          core.Point
	Rotation       float64
	Attributes     notify.List[*Attrib]

	seqend string
}

func init() {
	Register("INSERT", func() Entity { return NewInsert(nil, core.Point{}) })
}

func NewInsert(block *tables.Block, at core.Point) *Insert {
	i := &Insert{
		EntityBase:     newEntityBase(KindInsert, "INSERT"),
		InsertionPoint: at,
		Scale:          core.Point{X: 1, Y: 1, Z: 1}, // 默认缩放为 1
	}
	i.Block.Init(block)
	return i
}

// Seqend SEQEND 的句柄
func (i *Insert) Seqend() string { return i.seqend }

// AssignHandle 先分配 SEQEND 的句柄
func (i *Insert) AssignHandle(counter uint64) uint64 {
	i.seqend, counter = core.AssignHandle(counter)
	return i.EntityBase.AssignHandle(counter)
}

func (i *Insert) FillHandles(counter uint64) uint64 {
	if i.seqend == "" {
		i.seqend, counter = core.AssignHandle(counter)
	}
	return counter
}

func (i *Insert) Release() {
	i.EntityBase.Release()
	i.seqend = ""
}

func (i *Insert) Parse(scanner *core.Scanner, r tables.Resolver) error {
	hasAttributes := false

	for {
		tag := scanner.LastTag
		switch {
		case i.parseCommon(tag, r):
		case tag.Code == 2:
			i.Block.Init(r.Block(tag.AsString()))
		case tag.Code == 41:
			i.Scale.X = tag.AsFloat()
		case tag.Code == 42:
			i.Scale.Y = tag.AsFloat()
		case tag.Code == 43:
			i.Scale.Z = tag.AsFloat()
		case tag.Code == 50:
			i.Rotation = tag.AsFloat()
		case tag.Code == 66:
			hasAttributes = tag.AsInt() == 1
		default:
			core.ParsePoint(tag, 10, &i.InsertionPoint)
		}

		if !scanner.Next() || scanner.LastTag.Code == 0 {
			break
		}
	}

	// 核心逻辑：如果标记了有属性，则继续在当前流中抓取 ATTRIB 直到 SEQEND
	for hasAttributes && scanner.Err() == nil {
		tag := scanner.LastTag
		if tag.Is("SEQEND") {
			parseSeqend(scanner, &i.seqend)
			break
		}
		if !tag.Is("ATTRIB") {
			// 缺少 SEQEND
			break
		}
		attr := NewAttrib("", "")
		if err := attr.Parse(scanner, r); err != nil {
			return err
		}
		i.Attributes.Init(attr)
	}
	return scanner.Err()
}

// parseSeqend 读取 SEQEND 的句柄，停在下一个 0 组码
func parseSeqend(s *core.Scanner, handle *string) {
	for {
		if tag := s.LastTag; tag.Code == 5 {
			*handle, _ = core.NormalizeHandle(tag.AsString())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
}

// writeSeqend 写出 SEQEND，归属为 owner
func writeSeqend(w *core.Writer, handle, owner, layer string) {
	w.Str(0, "SEQEND")
	w.Handle(5, tables.HandleOrZero(handle))
	w.Handle(330, tables.HandleOrZero(owner))
	w.Str(100, "AcDbEntity")
	w.Str(8, layer)
}

func (i *Insert) Write(w *core.Writer) {
	attrs := i.Attributes.Items()

	i.writeCommon(w)
	w.Str(100, "AcDbBlockReference")
	if len(attrs) > 0 {
		w.Int16(66, 1)
	}
	w.Str(2, tables.NameOf(i.Block.Get(), ""))
	w.Point(10, i.InsertionPoint)
	w.Double(41, i.Scale.X)
	w.Double(42, i.Scale.Y)
	w.Double(43, i.Scale.Z)
	w.Double(50, i.Rotation)
	i.WriteXData(w)

	if len(attrs) == 0 {
		return
	}
	for _, attr := range attrs {
		attr.Write(w)
	}
	writeSeqend(w, i.seqend, i.Handle(), tables.NameOf(i.Layer.Get(), "0"))
}

// Clone 属性一并复制
func (i *Insert) Clone() Entity {
	c := NewInsert(i.Block.Get(), i.InsertionPoint)
	c.EntityBase = i.cloneBase()
	c.Scale = i.Scale
	c.Rotation = i.Rotation
	for _, attr := range i.Attributes.Items() {
		c.Attributes.Init(attr.Clone().(*Attrib))
	}
	return c
}

// GetAttr 按标签取属性值
func (i *Insert) GetAttr(tag string) (string, bool) {
	for _, attr := range i.Attributes.Items() {
		if attr.Tag == tag {
			return attr.Text, true
		}
	}
	return "", false
}
