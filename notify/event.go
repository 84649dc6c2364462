// Package notify 提供通用的变更通知：变更前事件可取消、可替换新值，变更后事件只做通知。
//
// 底层对象（表对象、实体、集合）只持有这些事件，不知道文档的存在；
// 文档在挂接对象时订阅，在摘除对象时退订。所有回调同步执行，按订阅顺序调用。
package notify

// Token 订阅凭证，用于退订
type Token int

// Change 一次待提交的变更。处理函数可以修改 New 替换新值，或者设置 Cancel 取消变更。
type Change[T any] struct {
	Old    T
	New    T
	Cancel bool
}

type handler[F any] struct {
	token Token
	fn    F
}

type handlers[F any] struct {
	list []handler[F]
	next Token
}

func (h *handlers[F]) add(fn F) Token {
	h.next++
	h.list = append(h.list, handler[F]{token: h.next, fn: fn})
	return h.next
}

func (h *handlers[F]) remove(t Token) bool {
	for i, item := range h.list {
		if item.token == t {
			h.list = append(h.list[:i:i], h.list[i+1:]...)
			return true
		}
	}
	return false
}

// Event 变更前事件
type Event[T any] struct {
	h handlers[func(*Change[T])]
}

// Subscribe 订阅，返回退订凭证
func (e *Event[T]) Subscribe(fn func(*Change[T])) Token {
	return e.h.add(fn)
}

// Unsubscribe 退订，凭证不存在时返回 false
func (e *Event[T]) Unsubscribe(t Token) bool {
	return e.h.remove(t)
}

// Len 当前订阅数
func (e *Event[T]) Len() int {
	return len(e.h.list)
}

// Fire 依次调用处理函数，任何一个取消即停止。返回最终的新值和是否允许提交。
func (e *Event[T]) Fire(old, v T) (T, bool) {
	c := &Change[T]{Old: old, New: v}
	// 复制一份，处理函数里退订不影响本次分发
	for _, item := range append([]handler[func(*Change[T])](nil), e.h.list...) {
		item.fn(c)
		if c.Cancel {
			return old, false
		}
	}
	return c.New, true
}

// Signal 变更后事件，不可取消
type Signal[T any] struct {
	h handlers[func(T)]
}

// Subscribe 订阅，返回退订凭证
func (s *Signal[T]) Subscribe(fn func(T)) Token {
	return s.h.add(fn)
}

// Unsubscribe 退订
func (s *Signal[T]) Unsubscribe(t Token) bool {
	return s.h.remove(t)
}

// Len 当前订阅数
func (s *Signal[T]) Len() int {
	return len(s.h.list)
}

// Emit 通知所有订阅者
func (s *Signal[T]) Emit(v T) {
	for _, item := range append([]handler[func(T)](nil), s.h.list...) {
		item.fn(v)
	}
}

// Property 受变更前事件保护的值，提交后触发 Changed（New 为实际提交的值）
type Property[T any] struct {
	value    T
	Changing Event[T]
	Changed  Signal[Change[T]]
}

// NewProperty 以初始值创建
func NewProperty[T any](v T) Property[T] {
	return Property[T]{value: v}
}

// Get 当前值
func (p *Property[T]) Get() T {
	return p.value
}

// Set 触发变更前事件后提交，返回实际提交的值和是否提交
func (p *Property[T]) Set(v T) (T, bool) {
	old := p.value
	v, ok := p.Changing.Fire(old, v)
	if !ok {
		return old, false
	}
	p.value = v
	p.Changed.Emit(Change[T]{Old: old, New: v})
	return v, true
}

// Init 不触发事件直接赋值，只在对象构造和读取文件时使用
func (p *Property[T]) Init(v T) {
	p.value = v
}
