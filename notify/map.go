package notify

// Entry 映射的一项
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Map 可观察的有序映射，保留插入顺序。
// 覆盖已有键时先触发旧值的删除事件，再触发新值的加入事件。
type Map[K comparable, V any] struct {
	keys         []K
	values       map[K]V
	BeforeAdd    Event[Entry[K, V]]
	AfterAdd     Signal[Entry[K, V]]
	BeforeRemove Event[Entry[K, V]]
	AfterRemove  Signal[Entry[K, V]]
}

// Get 取值
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Set 设置键值，返回实际写入的值和是否写入
func (m *Map[K, V]) Set(key K, value V) (V, bool) {
	if _, exists := m.values[key]; exists && !m.Delete(key) {
		var zero V
		return zero, false
	}

	e, ok := m.BeforeAdd.Fire(Entry[K, V]{Key: key}, Entry[K, V]{Key: key, Value: value})
	if !ok {
		var zero V
		return zero, false
	}
	if m.values == nil {
		m.values = make(map[K]V)
	}
	// 键不允许被替换
	m.values[key] = e.Value
	m.keys = append(m.keys, key)
	m.AfterAdd.Emit(Entry[K, V]{Key: key, Value: e.Value})
	return e.Value, true
}

// Delete 删除键
func (m *Map[K, V]) Delete(key K) bool {
	v, ok := m.values[key]
	if !ok {
		return false
	}
	if _, ok = m.BeforeRemove.Fire(Entry[K, V]{Key: key, Value: v}, Entry[K, V]{Key: key}); !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	m.AfterRemove.Emit(Entry[K, V]{Key: key, Value: v})
	return true
}

// Clear 逐个删除，被取消的键保留
func (m *Map[K, V]) Clear() {
	for _, k := range m.Keys() {
		m.Delete(k)
	}
}

// Keys 按插入顺序返回键
func (m *Map[K, V]) Keys() []K {
	return append([]K(nil), m.keys...)
}

// Entries 按插入顺序返回所有项
func (m *Map[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, len(m.keys))
	for _, k := range m.keys {
		entries = append(entries, Entry[K, V]{Key: k, Value: m.values[k]})
	}
	return entries
}

// Len 项数
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Init 不触发事件直接写入，只在对象构造和读取文件时使用
func (m *Map[K, V]) Init(key K, value V) {
	if m.values == nil {
		m.values = make(map[K]V)
	}
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}
