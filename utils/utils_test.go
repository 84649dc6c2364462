package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dxf "github.com/zooyer/dxfdoc"
	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

const eps = 1e-9

func TestTransformPoint(t *testing.T) {
	ins := entities.NewInsert(nil, core.Point{X: 100, Y: 50})
	ins.Rotation = 90
	ins.Scale = core.Point{X: 2, Y: 3, Z: 1}

	got := TransformPoint(core.Point{X: 1, Y: 1}, ins)
	// 缩放 (2,3)，旋转 90 度 (-3,2)，平移
	assert.True(t, got.Equal(core.Point{X: 97, Y: 52}, eps), "%+v", got)
}

func TestCombineInserts(t *testing.T) {
	blk := tables.NewBlock("Door")
	parent := entities.NewInsert(nil, core.Point{X: 10})
	parent.Rotation = 90
	parent.Scale = core.Point{X: 2, Y: 2, Z: 1}
	child := entities.NewInsert(blk, core.Point{X: 5})
	child.Rotation = 45
	child.Attributes.Init(entities.NewAttrib("A", "1"))

	world := CombineInserts(parent, child)
	assert.Same(t, blk, world.Block.Get())
	assert.True(t, world.InsertionPoint.Equal(core.Point{X: 10, Y: 10}, eps), "%+v", world.InsertionPoint)
	assert.InDelta(t, 135, world.Rotation, eps)
	assert.Equal(t, core.Point{X: 2, Y: 2, Z: 1}, world.Scale)
	assert.Equal(t, 0, world.Attributes.Len())
	assert.Empty(t, world.Handle())
}

func TestWalkInserts(t *testing.T) {
	window := tables.NewBlock("Window")
	inner := entities.NewInsert(window, core.Point{X: 1})
	wall := tables.NewBlock("Wall", entities.NewLine(core.Point{}, core.Point{X: 1}), inner)
	top := entities.NewInsert(wall, core.Point{X: 100})

	type visit struct {
		block string
		x     float64
	}
	var visits []visit
	WalkInserts([]entities.Entity{top, entities.NewCircle(core.Point{}, 1)}, func(ins, world *entities.Insert) bool {
		visits = append(visits, visit{ins.Block.Get().Name(), world.InsertionPoint.X})
		return true
	})
	assert.Equal(t, []visit{{"Wall", 100}, {"Window", 101}}, visits)

	// 返回 false 不进入块
	visits = nil
	WalkInserts([]entities.Entity{top}, func(ins, world *entities.Insert) bool {
		visits = append(visits, visit{ins.Block.Get().Name(), world.InsertionPoint.X})
		return false
	})
	assert.Len(t, visits, 1)
}

func TestWalkInserts_Cycle(t *testing.T) {
	a := tables.NewBlock("A")
	b := tables.NewBlock("B")
	a.Entities.Init(entities.NewInsert(b, core.Point{}))
	b.Entities.Init(entities.NewInsert(a, core.Point{}))

	n := 0
	WalkInserts([]entities.Entity{entities.NewInsert(a, core.Point{})}, func(ins, world *entities.Insert) bool {
		n++
		return true
	})
	assert.Equal(t, 3, n, "A、B 各进入一次，第二次遇到 A 不再展开")
}

func TestGetDimValue(t *testing.T) {
	style := tables.NewDimensionStyle("ISO")
	style.Precision = 2
	dim := entities.NewDimension(style)
	dim.ActualMeasurement = 1234.5678

	assert.InDelta(t, 1234.57, GetDimValue(dim), eps)

	dim.StyleOverrides.Init(entities.OverridePrecision, int16(0))
	assert.InDelta(t, 1235, GetDimValue(dim), eps, "覆盖优先")

	dim.Text = "<> mm"
	assert.InDelta(t, 1235, GetDimValue(dim), eps)

	dim.Text = `\A1;约 1200`
	assert.InDelta(t, 1234.5678, GetDimValue(dim), eps, "有测量值时 GetCleanVal 返回测量值")

	dim.ActualMeasurement = 0
	assert.InDelta(t, 1200, GetDimValue(dim), eps)

	noStyle := entities.NewDimension(nil)
	noStyle.ActualMeasurement = 2.5
	assert.InDelta(t, 3, GetDimValue(noStyle), eps)
}

func TestAttrs(t *testing.T) {
	doc := dxf.New()

	blk := tables.NewBlock("Door")
	def := entities.NewAttributeDefinition("编号", "编号", "D-00")
	def.Height = 5
	blk.AttributeDefinitions.Init("编号", def)

	ins := entities.NewInsert(blk, core.Point{})
	ins.Attributes.Init(entities.NewAttrib("宽度", "900"))
	require.NoError(t, doc.AddEntity(ins))

	assert.Equal(t, map[string]string{"宽度": "900"}, GetAttrs(ins))
	assert.Equal(t, "900", GetAttr(ins, "宽度"))
	assert.Empty(t, GetAttr(ins, "编号"))

	require.NoError(t, SetAttr(doc, ins, "宽度", "1000"))
	assert.Equal(t, "1000", GetAttr(ins, "宽度"))

	// 按属性定义生成
	require.NoError(t, SetAttr(doc, ins, "编号", "D-07"))
	assert.Equal(t, "D-07", GetAttr(ins, "编号"))
	var added *entities.Attrib
	for _, a := range ins.Attributes.Items() {
		if a.Tag == "编号" {
			added = a
		}
	}
	require.NotNil(t, added)
	assert.Equal(t, 5.0, added.Height)
	assert.NotEmpty(t, added.Handle(), "加入文档后分配句柄")
	assert.Equal(t, ins.Handle(), added.Owner())

	other := entities.NewInsert(tables.NewBlock("Window"), core.Point{})
	require.NoError(t, doc.AddEntity(other))
	assert.Equal(t, []*entities.Insert{ins}, Inserts(doc, "door"))
	assert.Empty(t, Inserts(doc, "Missing"))
}
