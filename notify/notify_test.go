package notify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_SubstituteAndCancel(t *testing.T) {
	p := NewProperty("0")

	tok := p.Changing.Subscribe(func(c *Change[string]) {
		c.New = strings.ToUpper(c.New)
	})
	v, ok := p.Set("wall")
	require.True(t, ok)
	assert.Equal(t, "WALL", v)
	assert.Equal(t, "WALL", p.Get())

	p.Changing.Subscribe(func(c *Change[string]) {
		if c.New == "" {
			c.Cancel = true
		}
	})
	v, ok = p.Set("")
	assert.False(t, ok)
	assert.Equal(t, "WALL", v, "取消后保持旧值")

	require.True(t, p.Changing.Unsubscribe(tok))
	assert.False(t, p.Changing.Unsubscribe(tok))
	v, _ = p.Set("door")
	assert.Equal(t, "door", v)
}

func TestEvent_Order(t *testing.T) {
	var e Event[int]
	var calls []int
	e.Subscribe(func(c *Change[int]) { calls = append(calls, 1); c.New++ })
	e.Subscribe(func(c *Change[int]) { calls = append(calls, 2); c.New *= 10 })

	v, ok := e.Fire(0, 1)
	require.True(t, ok)
	assert.Equal(t, 20, v)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestList_Events(t *testing.T) {
	var (
		l       List[string]
		added   []string
		removed []string
	)
	l.BeforeAdd.Subscribe(func(c *Change[string]) {
		if c.New == "bad" {
			c.Cancel = true
		}
	})
	l.AfterAdd.Subscribe(func(s string) { added = append(added, s) })
	l.AfterRemove.Subscribe(func(s string) { removed = append(removed, s) })

	_, ok := l.Add("a")
	assert.True(t, ok)
	_, ok = l.Add("bad")
	assert.False(t, ok)
	_, ok = l.Add("a")
	assert.False(t, ok, "重复元素不加入")
	l.Add("b")

	assert.Equal(t, []string{"a", "b"}, l.Items())
	assert.Equal(t, []string{"a", "b"}, added)

	assert.True(t, l.Remove("a"))
	assert.False(t, l.Remove("a"))
	assert.Equal(t, []string{"a"}, removed)

	l.BeforeRemove.Subscribe(func(c *Change[string]) { c.Cancel = true })
	l.Clear()
	assert.Equal(t, 1, l.Len(), "删除被取消")
}

func TestMap_Replace(t *testing.T) {
	var (
		m      Map[string, int]
		events []string
	)
	m.AfterAdd.Subscribe(func(e Entry[string, int]) { events = append(events, "+"+e.Key) })
	m.AfterRemove.Subscribe(func(e Entry[string, int]) { events = append(events, "-"+e.Key) })
	m.BeforeAdd.Subscribe(func(c *Change[Entry[string, int]]) {
		if c.New.Value < 0 {
			c.New.Value = 0
		}
	})

	m.Set("x", 1)
	m.Set("y", -5)
	m.Set("x", 2)

	v, ok := m.Get("y")
	require.True(t, ok)
	assert.Equal(t, 0, v)
	assert.Equal(t, []string{"y", "x"}, m.Keys())
	assert.Equal(t, []string{"+x", "+y", "-x", "+x"}, events)

	assert.True(t, m.Delete("y"))
	assert.Equal(t, 1, m.Len())
}

func TestProperty_Changed(t *testing.T) {
	p := NewProperty(1)
	var got []Change[int]
	p.Changed.Subscribe(func(c Change[int]) { got = append(got, c) })
	p.Changing.Subscribe(func(c *Change[int]) {
		if c.New < 0 {
			c.Cancel = true
		}
	})

	p.Set(2)
	p.Set(-1)
	p.Init(5)
	p.Set(6)

	assert.Equal(t, []Change[int]{{Old: 1, New: 2}, {Old: 5, New: 6}}, got)
}
