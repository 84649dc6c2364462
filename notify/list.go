package notify

// List 可观察的有序集合。BeforeAdd 可以取消或替换待加入的元素（Old 为零值），
// BeforeRemove 可以取消删除；After* 在集合真正变化后触发。
type List[T comparable] struct {
	items        []T
	BeforeAdd    Event[T]
	AfterAdd     Signal[T]
	BeforeRemove Event[T]
	AfterRemove  Signal[T]
}

// Add 加入元素，已存在时不重复加入。返回实际加入的元素和是否加入。
func (l *List[T]) Add(item T) (T, bool) {
	var zero T
	item, ok := l.BeforeAdd.Fire(zero, item)
	if !ok || l.Contains(item) {
		return item, false
	}
	l.items = append(l.items, item)
	l.AfterAdd.Emit(item)
	return item, true
}

// Remove 删除元素
func (l *List[T]) Remove(item T) bool {
	i := l.Index(item)
	if i < 0 {
		return false
	}
	var zero T
	if _, ok := l.BeforeRemove.Fire(item, zero); !ok {
		return false
	}
	// 处理函数可能已经改动了集合，重新定位
	if i = l.Index(item); i < 0 {
		return false
	}
	l.items = append(l.items[:i:i], l.items[i+1:]...)
	l.AfterRemove.Emit(item)
	return true
}

// Clear 逐个删除，被取消的元素保留
func (l *List[T]) Clear() {
	for _, item := range l.Items() {
		l.Remove(item)
	}
}

// Index 元素位置，不存在返回 -1
func (l *List[T]) Index(item T) int {
	for i, v := range l.items {
		if v == item {
			return i
		}
	}
	return -1
}

// Contains 是否包含
func (l *List[T]) Contains(item T) bool {
	return l.Index(item) >= 0
}

// Items 返回副本
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Len 元素个数
func (l *List[T]) Len() int {
	return len(l.items)
}

// Init 不触发事件直接加入，只在对象构造和读取文件时使用
func (l *List[T]) Init(items ...T) {
	for _, item := range items {
		if !l.Contains(item) {
			l.items = append(l.items, item)
		}
	}
}

// Reset 不触发事件替换全部元素，只在对象挂接到文档时使用
func (l *List[T]) Reset(items ...T) {
	l.items = l.items[:0]
	l.Init(items...)
}
