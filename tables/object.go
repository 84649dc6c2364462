// Package tables 定义 DXF 对象的基础身份（句柄、归属、扩展数据）、
// 按名称去重并计数引用的注册表，以及所有具名对象：图层、线型、文字样式、标注样式、
// 块、应用程序注册、UCS、视图、视口、布局、多线样式、图像定义和参考底图定义。
//
// 对象之间的反向关系（归属、引用集合）只保存句柄，通过文档的对象表查找，不保存指针。
package tables

import (
	"errors"
	"reflect"
	"strings"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/notify"
)

var (
	ErrNil         = errors.New("nil object")
	ErrInvalidName = errors.New("invalid table object name")
	ErrNameLocked  = errors.New("object already belongs to a document")
	ErrForeign     = errors.New("object belongs to another document")
	ErrNameExists  = errors.New("name already exists")
)

// Object 所有 DXF 对象的公共能力
type Object interface {
	Handle() string
	CodeName() string
	Owner() string
	Base() *ObjectBase
	AssignHandle(counter uint64) uint64
}

// SubHandles 复合对象：读取文件时主句柄已知，子对象句柄可能缺失
type SubHandles interface {
	FillHandles(counter uint64) uint64
}

// ObjectBase 对象身份：句柄、类型名、归属句柄和扩展数据
type ObjectBase struct {
	handle string
	owner  string
	code   string
	xdata  notify.Map[string, *XData]
	home   any

	// 读取文件时的临时状态
	group string
	cur   *XData
}

// NewObjectBase 以类型名创建
func NewObjectBase(code string) ObjectBase {
	return ObjectBase{code: code}
}

func (o *ObjectBase) Base() *ObjectBase { return o }

func (o *ObjectBase) Handle() string { return o.handle }

func (o *ObjectBase) CodeName() string { return o.code }

// Owner 归属对象的句柄，没有归属时为空
func (o *ObjectBase) Owner() string { return o.owner }

// SetOwner 由文档在挂接/摘除时调用
func (o *ObjectBase) SetOwner(handle string) { o.owner = handle }

// SetHandle 读取文件时保留原句柄
func (o *ObjectBase) SetHandle(handle string) { o.handle = handle }

// AssignHandle 分配一个句柄，返回下一个计数
func (o *ObjectBase) AssignHandle(counter uint64) uint64 {
	o.handle, counter = core.AssignHandle(counter)
	return counter
}

// Home 对象所在的注册表或文档，未加入时为 nil
func (o *ObjectBase) Home() any { return o.home }

// SetHome 由注册表和文档在加入时设置
func (o *ObjectBase) SetHome(home any) { o.home = home }

// Release 从文档移除后清空句柄和归属
func (o *ObjectBase) Release() {
	o.handle = ""
	o.owner = ""
	o.home = nil
}

// XData 扩展数据集合，键为大写的应用程序名
func (o *ObjectBase) XData() *notify.Map[string, *XData] {
	return &o.xdata
}

// AddXData 加入扩展数据，同名应用的旧数据被替换。返回实际加入的数据。
func (o *ObjectBase) AddXData(x *XData) (*XData, bool) {
	if x == nil || x.App == nil {
		return nil, false
	}
	return o.xdata.Set(strings.ToUpper(x.App.Name()), x)
}

// RemoveXData 删除某个应用的扩展数据
func (o *ObjectBase) RemoveXData(app string) bool {
	return o.xdata.Delete(strings.ToUpper(app))
}

// GetXData 取某个应用的扩展数据
func (o *ObjectBase) GetXData(app string) *XData {
	x, _ := o.xdata.Get(strings.ToUpper(app))
	return x
}

// ParseCommon 处理所有对象共有的组码：句柄、102 组、归属、扩展数据。
// 返回 false 表示调用方需要自己处理该组码。
func (o *ObjectBase) ParseCommon(tag core.Tag, r Resolver) bool {
	switch {
	case tag.Code == 5 || tag.Code == 105:
		if h, err := core.NormalizeHandle(tag.AsString()); err == nil {
			o.handle = h
		}
		return true
	case tag.Code == 102:
		if s := tag.AsString(); strings.HasPrefix(s, "{") {
			o.group = s
		} else {
			o.group = ""
		}
		return true
	case tag.Code == 330 && o.group == "" && o.owner == "":
		// 反应器组里的 330 忽略，组外第一次出现的是归属，之后的交给调用方
		o.owner, _ = tag.Handle()
		return true
	case tag.Code == 1001:
		o.cur = NewXData(r.AppRegistry(tag.AsString()))
		o.xdata.Init(strings.ToUpper(o.cur.App.Name()), o.cur)
		return true
	case tag.Code >= 1000 && o.cur != nil:
		o.cur.Records = append(o.cur.Records, tag)
		return true
	}
	return o.group != ""
}

// WriteHeader 写出对象头：类型、句柄、归属
func (o *ObjectBase) WriteHeader(w *core.Writer) {
	w.Str(0, o.code)
	if o.code == "DIMSTYLE" {
		w.Handle(105, HandleOrZero(o.handle))
	} else {
		w.Handle(5, HandleOrZero(o.handle))
	}
	w.Handle(330, HandleOrZero(o.owner))
}

// WriteXData 写出扩展数据，放在对象最后
func (o *ObjectBase) WriteXData(w *core.Writer) {
	for _, e := range o.xdata.Entries() {
		w.Str(1001, e.Value.App.Name())
		for _, rec := range e.Value.Records {
			w.WriteTag(rec)
		}
	}
}

// HandleOrZero 空句柄写成 0
func HandleOrZero(handle string) string {
	if handle == "" {
		return "0"
	}
	return handle
}

// HandleOf 取对象句柄，nil 时为空
func HandleOf(obj Object) string {
	if IsNil(obj) {
		return ""
	}
	return obj.Handle()
}

// IsNil 判断接口值或其中的指针是否为 nil
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
