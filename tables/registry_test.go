package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfdoc/core"
)

func layerWithHandle(name, handle string) *Layer {
	l := NewLayer(name)
	l.SetHandle(handle)
	return l
}

func TestRegistry_AddDedupe(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")

	wall := NewLayer("Wall")
	added, err := reg.Add(wall, false)
	require.NoError(t, err)
	assert.Same(t, wall, added)

	// 名称不区分大小写，返回已有实例
	other := NewLayer("WALL")
	added, err = reg.Add(other, false)
	require.NoError(t, err)
	assert.Same(t, wall, added)
	assert.Equal(t, 1, reg.Len())
	assert.Nil(t, other.Home(), "未加入的对象不属于注册表")

	assert.Equal(t, any(reg), wall.Home())
	assert.True(t, reg.Contains("wall"))
	assert.Equal(t, []string{"Wall"}, reg.Names())
}

func TestRegistry_AddRejects(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")

	_, err := reg.Add(nil, false)
	assert.ErrorIs(t, err, ErrNil)

	_, err = reg.Add(NewLayer("a<b"), false)
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = reg.Add(NewLayer(""), false)
	assert.ErrorIs(t, err, ErrInvalidName)

	foreign := NewLayer("Pipe")
	_, err = NewRegistry[*Layer]("TABLE", "LAYER").Add(foreign, false)
	require.NoError(t, err)
	_, err = reg.Add(foreign, false)
	assert.ErrorIs(t, err, ErrForeign)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_AttachFailureRollsBack(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")
	reg.SetHandle("2")
	reg.SetHooks(Hooks[*Layer]{
		Attach: func(item *Layer, assign bool) error { return ErrNameLocked },
	})

	l := NewLayer("Wall")
	l.SetOwner("99")
	_, err := reg.Add(l, false)
	require.ErrorIs(t, err, ErrNameLocked)
	assert.False(t, reg.Contains("Wall"))
	assert.Nil(t, l.Home())
	assert.Equal(t, "99", l.Owner(), "失败时恢复原归属")
}

func TestRegistry_References(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")
	_, err := reg.Add(NewLayer("Wall"), false)
	require.NoError(t, err)

	a, b := layerWithHandle("x", "1A"), layerWithHandle("y", "2B")
	assert.True(t, reg.AddReference("wall", a))
	assert.True(t, reg.AddReference("WALL", a))
	assert.True(t, reg.AddReference("Wall", b))
	assert.False(t, reg.AddReference("Missing", a))

	assert.Equal(t, 3, reg.ReferenceCount("Wall"))
	assert.Equal(t, []string{"1A", "2B"}, reg.References("Wall"))

	assert.False(t, reg.Remove("Wall"), "仍被引用")
	assert.True(t, reg.RemoveReference("Wall", a))
	assert.True(t, reg.RemoveReference("Wall", a))
	assert.False(t, reg.RemoveReference("Wall", a))
	assert.Equal(t, []string{"2B"}, reg.References("Wall"))
	assert.True(t, reg.RemoveReference("Wall", b))

	assert.False(t, reg.HasReferences("Wall"))
	assert.True(t, reg.Remove("Wall"))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ReservedAndDrop(t *testing.T) {
	reg := NewRegistry[*Block]("TABLE", "BLOCK_RECORD")
	var detached []string
	reg.SetHooks(Hooks[*Block]{Detach: func(b *Block) { detached = append(detached, b.Name()) }})

	paper, err := reg.Add(NewBlock(PaperSpace+"1"), false)
	require.NoError(t, err)
	paper.SetHandle("1F")

	assert.False(t, reg.Remove(PaperSpace+"1"), "布局块是保留对象")
	assert.True(t, reg.Drop(PaperSpace+"1"))
	assert.Equal(t, []string{PaperSpace + "1"}, detached)
	assert.Empty(t, paper.Handle(), "删除后清空句柄")
	assert.Nil(t, paper.Home())
}

func TestRegistry_Rename(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")
	_, err := reg.Add(NewLayer("A"), false)
	require.NoError(t, err)
	_, err = reg.Add(NewLayer("B"), false)
	require.NoError(t, err)
	reg.AddReference("A", layerWithHandle("r", "30"))

	assert.ErrorIs(t, reg.Rename("A", "b"), ErrNameExists)
	assert.ErrorIs(t, reg.Rename("A", "bad|name"), ErrInvalidName)
	assert.Error(t, reg.Rename("Missing", "C"))

	require.NoError(t, reg.Rename("A", "C"))
	assert.Equal(t, []string{"C", "B"}, reg.Names(), "顺序不变")
	assert.Equal(t, 1, reg.ReferenceCount("C"))
	assert.False(t, reg.Contains("A"))

	// 只改大小写
	require.NoError(t, reg.Rename("C", "c"))
	assert.Equal(t, []string{"c", "B"}, reg.Names())
}

func TestSetName_Locked(t *testing.T) {
	reg := NewRegistry[*Layer]("TABLE", "LAYER")
	l := NewLayer("Wall")
	require.NoError(t, l.SetName("Wall2"))
	_, err := reg.Add(l, false)
	require.NoError(t, err)
	assert.ErrorIs(t, l.SetName("Other"), ErrNameLocked)
}

func TestXData_Valid(t *testing.T) {
	app := NewApplicationRegistry("MYAPP")
	assert.False(t, (*XData)(nil).Valid())
	assert.False(t, NewXData(nil).Valid())
	assert.True(t, NewXData(app).Valid())
	assert.True(t, NewXData(app, core.Tag{Code: 1000, Value: "a"}, core.Tag{Code: 1070, Value: int16(1)}).Valid())
	assert.False(t, NewXData(app, core.Tag{Code: 1001, Value: "OTHER"}).Valid(), "1001 只能出现在头部")
	assert.False(t, NewXData(app, core.Tag{Code: 8, Value: "0"}).Valid())
}
