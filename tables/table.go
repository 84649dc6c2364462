package tables

import (
	"strings"

	"github.com/zooyer/dxfdoc/core"
)

// TableObject 具名对象：名称在同类对象中唯一，大小写不敏感
type TableObject interface {
	Object
	Name() string
	// Reserved 默认对象不能删除
	Reserved() bool
	table() *TableBase
}

// Entity 块中的实体，具体类型见 entities 包
type Entity interface {
	Object
	Type() string
}

// TableBase 具名对象公共部分
type TableBase struct {
	ObjectBase
	name  string
	Flags int16
}

// NewTableBase 以类型名和名称创建
func NewTableBase(code, name string) TableBase {
	return TableBase{ObjectBase: NewObjectBase(code), name: name}
}

func (t *TableBase) table() *TableBase { return t }

func (t *TableBase) Name() string { return t.name }

// SetName 加入文档前可以改名，之后需要通过注册表改名
func (t *TableBase) SetName(name string) error {
	if t.home != nil {
		return ErrNameLocked
	}
	if !IsValidName(name) {
		return ErrInvalidName
	}
	t.name = name
	return nil
}

// parseName 处理名称和标志位，返回 false 交给调用方
func (t *TableBase) parseName(tag core.Tag) bool {
	switch tag.Code {
	case 2:
		t.name = tag.AsString()
	case 70:
		t.Flags = int16(tag.AsInt())
	default:
		return false
	}
	return true
}

// writeRecord 写出符号表记录的公共头
func (t *TableBase) writeRecord(w *core.Writer, subclass string) {
	t.WriteHeader(w)
	w.Str(100, "AcDbSymbolTableRecord")
	w.Str(100, subclass)
	w.Str(2, t.name)
	w.Int16(70, t.Flags)
}

// IsValidName 名称不能为空，不能包含 DXF 保留字符
func IsValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.ContainsAny(name, "<>/\\\":;?|=`")
}

// nameIs 大小写不敏感比较
func nameIs(name string, names ...string) bool {
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}
