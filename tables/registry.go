package tables

import (
	"fmt"
	"slices"
	"strings"
)

// Hooks 注册表在加入、删除对象时回调文档。
// Attach 失败时注册表撤销本次加入，Attach 自己负责清理已做的改动。
type Hooks[T TableObject] struct {
	Attach func(item T, assign bool) error
	Detach func(item T)
}

// Registry 同类具名对象的集合：按名称去重，记录每个名称被哪些对象引用。
// 引用集合保存引用方的句柄，同一对象多次引用按次数计。
type Registry[T TableObject] struct {
	ObjectBase
	name  string
	items map[string]T
	order []string
	refs  map[string]map[string]int
	hooks Hooks[T]
}

// NewRegistry code 为 TABLE 或 DICTIONARY，name 为表名
func NewRegistry[T TableObject](code, name string) *Registry[T] {
	return &Registry[T]{
		ObjectBase: NewObjectBase(code),
		name:       name,
		items:      make(map[string]T),
		refs:       make(map[string]map[string]int),
	}
}

// Name 表名，如 LAYER
func (r *Registry[T]) Name() string { return r.name }

// SetHooks 由文档设置
func (r *Registry[T]) SetHooks(hooks Hooks[T]) { r.hooks = hooks }

// Add 加入对象。同名对象已存在时返回已有的实例，调用方必须使用返回值。
func (r *Registry[T]) Add(item T, assign bool) (T, error) {
	if IsNil(item) {
		return item, ErrNil
	}
	key := strings.ToUpper(item.Name())
	if exist, ok := r.items[key]; ok {
		return exist, nil
	}
	if !IsValidName(item.Name()) {
		return item, fmt.Errorf("%w: %q", ErrInvalidName, item.Name())
	}

	b := item.Base()
	if b.home != nil && b.home != r {
		return item, fmt.Errorf("%w: %s %q", ErrForeign, item.CodeName(), item.Name())
	}

	owner := b.owner
	r.items[key] = item
	r.order = append(r.order, key)
	b.home, b.owner = r, r.handle

	if r.hooks.Attach != nil {
		if err := r.hooks.Attach(item, assign); err != nil {
			r.drop(key)
			b.home, b.owner = nil, owner
			return item, err
		}
	}
	return item, nil
}

// Remove 删除对象，默认对象和仍被引用的对象不能删除
func (r *Registry[T]) Remove(name string) bool {
	item, ok := r.Get(name)
	if !ok || item.Reserved() {
		return false
	}
	return r.Drop(name)
}

// Drop 删除对象，不检查是否为默认对象。布局删除时用来删除它的图纸空间块。
func (r *Registry[T]) Drop(name string) bool {
	key := strings.ToUpper(name)
	item, ok := r.items[key]
	if !ok || r.HasReferences(name) {
		return false
	}
	if r.hooks.Detach != nil {
		r.hooks.Detach(item)
	}
	r.drop(key)
	Release(item)
	return true
}

// Release 调用对象自己的 Release，复合对象需要清空子句柄
func Release(obj Object) {
	if rel, ok := obj.(interface{ Release() }); ok {
		rel.Release()
		return
	}
	obj.Base().Release()
}

func (r *Registry[T]) drop(key string) {
	delete(r.items, key)
	delete(r.refs, key)
	if i := slices.Index(r.order, key); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
}

// Rename 改名，引用集合跟随
func (r *Registry[T]) Rename(name, newName string) error {
	key, newKey := strings.ToUpper(name), strings.ToUpper(newName)
	item, ok := r.items[key]
	if !ok {
		return fmt.Errorf("%s %q not found", r.name, name)
	}
	if !IsValidName(newName) {
		return fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}
	if _, exists := r.items[newKey]; exists && newKey != key {
		return fmt.Errorf("%w: %s %q", ErrNameExists, r.name, newName)
	}

	item.table().name = newName
	if key == newKey {
		return nil
	}
	r.items[newKey] = item
	delete(r.items, key)
	if refs, ok := r.refs[key]; ok {
		r.refs[newKey] = refs
		delete(r.refs, key)
	}
	r.order[slices.Index(r.order, key)] = newKey
	return nil
}

// Get 按名称查找
func (r *Registry[T]) Get(name string) (T, bool) {
	item, ok := r.items[strings.ToUpper(name)]
	return item, ok
}

// Contains 是否存在同名对象
func (r *Registry[T]) Contains(name string) bool {
	_, ok := r.items[strings.ToUpper(name)]
	return ok
}

// Items 按加入顺序返回
func (r *Registry[T]) Items() []T {
	items := make([]T, 0, len(r.order))
	for _, key := range r.order {
		items = append(items, r.items[key])
	}
	return items
}

// Names 按加入顺序返回名称
func (r *Registry[T]) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.items[key].Name())
	}
	return names
}

func (r *Registry[T]) Len() int {
	return len(r.order)
}

// AddReference 记录 obj 引用了 name，name 不在表中时返回 false
func (r *Registry[T]) AddReference(name string, obj Object) bool {
	key := strings.ToUpper(name)
	if _, ok := r.items[key]; !ok || IsNil(obj) {
		return false
	}
	refs := r.refs[key]
	if refs == nil {
		refs = make(map[string]int)
		r.refs[key] = refs
	}
	refs[obj.Handle()]++
	return true
}

// RemoveReference 撤销一次引用
func (r *Registry[T]) RemoveReference(name string, obj Object) bool {
	key := strings.ToUpper(name)
	refs := r.refs[key]
	if IsNil(obj) || refs[obj.Handle()] == 0 {
		return false
	}
	if refs[obj.Handle()]--; refs[obj.Handle()] == 0 {
		delete(refs, obj.Handle())
	}
	return true
}

// HasReferences 是否仍被引用
func (r *Registry[T]) HasReferences(name string) bool {
	return len(r.refs[strings.ToUpper(name)]) > 0
}

// References 引用方句柄，已排序
func (r *Registry[T]) References(name string) []string {
	refs := r.refs[strings.ToUpper(name)]
	handles := make([]string, 0, len(refs))
	for h := range refs {
		handles = append(handles, h)
	}
	slices.Sort(handles)
	return handles
}

// ReferenceCount 引用次数，同一对象多次引用分别计数
func (r *Registry[T]) ReferenceCount(name string) int {
	n := 0
	for _, c := range r.refs[strings.ToUpper(name)] {
		n += c
	}
	return n
}
