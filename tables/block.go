package tables

import (
	"strings"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

const (
	ModelSpace = "*Model_Space"
	PaperSpace = "*Paper_Space"
)

// Block 块定义。主句柄是 BLOCK_RECORD 的句柄，BLOCK 和 ENDBLK 各占一个句柄。
// 属性定义按标记名保存，不在 Entities 中。
type Block struct {
	TableBase
	Description          string
	Origin               core.Point
	XrefPath             string
	Units                int16
	Layer                notify.Property[*Layer]
	Entities             notify.List[Entity]
	AttributeDefinitions notify.Map[string, Entity]

	begin  string
	end    string
	layout string
}

func NewBlock(name string, entities ...Entity) *Block {
	b := &Block{TableBase: NewTableBase("BLOCK_RECORD", name)}
	b.Entities.Init(entities...)
	return b
}

// Reserved 模型空间和图纸空间的块随布局存在
func (b *Block) Reserved() bool { return IsLayoutBlock(b.name) }

// IsLayoutBlock 是否为模型空间或图纸空间块名
func IsLayoutBlock(name string) bool {
	upper := strings.ToUpper(name)
	return upper == strings.ToUpper(ModelSpace) || strings.HasPrefix(upper, strings.ToUpper(PaperSpace))
}

// IsPaperSpace 是否为图纸空间块
func (b *Block) IsPaperSpace() bool {
	return strings.HasPrefix(strings.ToUpper(b.name), strings.ToUpper(PaperSpace))
}

func (b *Block) BeginHandle() string { return b.begin }

func (b *Block) EndHandle() string { return b.end }

// LayoutHandle 所属布局的句柄，普通块为空
func (b *Block) LayoutHandle() string { return b.layout }

func (b *Block) SetLayoutHandle(handle string) { b.layout = handle }

// AssignHandle 依次分配 BLOCK、ENDBLK 和记录本身的句柄
func (b *Block) AssignHandle(counter uint64) uint64 {
	b.begin, counter = core.AssignHandle(counter)
	b.end, counter = core.AssignHandle(counter)
	return b.TableBase.AssignHandle(counter)
}

// FillHandles 补齐文件中缺失的 BLOCK、ENDBLK 句柄
func (b *Block) FillHandles(counter uint64) uint64 {
	if b.begin == "" {
		b.begin, counter = core.AssignHandle(counter)
	}
	if b.end == "" {
		b.end, counter = core.AssignHandle(counter)
	}
	return counter
}

// Release 同时清空子句柄
func (b *Block) Release() {
	b.TableBase.Release()
	b.begin, b.end, b.layout = "", "", ""
}

// ParseRecord 读取 BLOCK_RECORD 表记录
func (b *Block) ParseRecord(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch {
		case b.ParseCommon(tag, r):
		case tag.Code == 2:
			b.name = tag.AsString()
		case tag.Code == 70:
			b.Units = int16(tag.AsInt())
		case tag.Code == 340:
			b.layout, _ = tag.Handle()
			if b.layout == "0" {
				b.layout = ""
			}
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

// ParseBegin 读取 BLOCK 实体，句柄存为 BLOCK 的句柄
func (b *Block) ParseBegin(s *core.Scanner, r Resolver) error {
	for {
		tag := s.LastTag
		switch tag.Code {
		case 5:
			b.begin, _ = core.NormalizeHandle(tag.AsString())
		case 2:
			if b.name == "" {
				b.name = tag.AsString()
			}
		case 8:
			b.Layer.Init(r.Layer(tag.AsString()))
		case 70:
			b.Flags = int16(tag.AsInt())
		case 10:
			b.Origin.X = tag.AsFloat()
		case 20:
			b.Origin.Y = tag.AsFloat()
		case 30:
			b.Origin.Z = tag.AsFloat()
		case 1:
			b.XrefPath = tag.AsString()
		case 4:
			b.Description = tag.AsString()
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

// ParseEnd 读取 ENDBLK
func (b *Block) ParseEnd(s *core.Scanner) error {
	for {
		if tag := s.LastTag; tag.Code == 5 {
			b.end, _ = core.NormalizeHandle(tag.AsString())
		}
		if !s.Next() || s.LastTag.Code == 0 {
			break
		}
	}
	return s.Err()
}

func (b *Block) WriteRecord(w *core.Writer) {
	b.WriteHeader(w)
	w.Str(100, "AcDbSymbolTableRecord")
	w.Str(100, "AcDbBlockTableRecord")
	w.Str(2, b.name)
	w.Handle(340, HandleOrZero(b.layout))
	w.Int16(70, b.Units)
	w.Int16(280, 1)
	w.Int16(281, 0)
	b.WriteXData(w)
}

func (b *Block) WriteBegin(w *core.Writer) {
	flags := b.Flags
	if strings.HasPrefix(b.name, "*") {
		flags |= 1
	}
	if b.AttributeDefinitions.Len() > 0 {
		flags |= 2
	}

	w.Str(0, "BLOCK")
	w.Handle(5, HandleOrZero(b.begin))
	w.Handle(330, HandleOrZero(b.handle))
	w.Str(100, "AcDbEntity")
	w.Str(8, NameOf(b.Layer.Get(), "0"))
	w.Str(100, "AcDbBlockBegin")
	w.Str(2, b.name)
	w.Int16(70, flags)
	w.Point(10, b.Origin)
	w.Str(3, b.name)
	w.Str(1, b.XrefPath)
	if b.Description != "" {
		w.Str(4, b.Description)
	}
}

func (b *Block) WriteEnd(w *core.Writer) {
	w.Str(0, "ENDBLK")
	w.Handle(5, HandleOrZero(b.end))
	w.Handle(330, HandleOrZero(b.handle))
	w.Str(100, "AcDbEntity")
	w.Str(8, NameOf(b.Layer.Get(), "0"))
	w.Str(100, "AcDbBlockEnd")
}

// Merge 把 BLOCKS 段读到的 BLOCK 实体并入同名的块记录
func (b *Block) Merge(begin *Block) {
	if begin.begin != "" {
		b.begin = begin.begin
	}
	if begin.end != "" {
		b.end = begin.end
	}
	b.Flags = begin.Flags
	b.Origin = begin.Origin
	b.XrefPath = begin.XrefPath
	b.Description = begin.Description
	if l := begin.Layer.Get(); l != nil {
		b.Layer.Init(l)
	}
	b.Entities.Init(begin.Entities.Items()...)
	for _, e := range begin.AttributeDefinitions.Entries() {
		b.AttributeDefinitions.Init(e.Key, e.Value)
	}
}
