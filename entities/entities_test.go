package entities

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/tables"
)

// resolver 按名称新建对象，句柄引用立即从 objects 中查找
type resolver struct {
	objects map[string]tables.Object
}

func (r *resolver) AppRegistry(name string) *tables.ApplicationRegistry {
	return tables.NewApplicationRegistry(name)
}
func (r *resolver) Layer(name string) *tables.Layer       { return tables.NewLayer(name) }
func (r *resolver) Linetype(name string) *tables.Linetype { return tables.NewLinetype(name) }
func (r *resolver) TextStyle(name string) *tables.TextStyle {
	return tables.NewTextStyle(name, "txt")
}
func (r *resolver) DimensionStyle(name string) *tables.DimensionStyle {
	return tables.NewDimensionStyle(name)
}
func (r *resolver) MLineStyle(name string) *tables.MLineStyle { return tables.NewMLineStyle(name) }
func (r *resolver) Block(name string) *tables.Block           { return tables.NewBlock(name) }
func (r *resolver) ByHandle(handle string, fn func(obj tables.Object)) {
	fn(r.objects[handle])
}

// roundTrip 写出后按类型名重新读取，检查读完停在下一个实体
func roundTrip(t *testing.T, e Entity, r *resolver, binary bool) Entity {
	t.Helper()
	var buf bytes.Buffer
	w := core.NewWriter(&buf, binary, nil)
	e.Write(w)
	w.Str(0, "ENDSEC")
	require.NoError(t, w.Flush())

	s := core.NewScanner(bytes.NewReader(buf.Bytes()), nil)
	require.True(t, s.Next())
	got := CreateEntity(s.LastTag.AsString())
	require.NotNil(t, got, "unknown type %v", s.LastTag.Value)
	if r == nil {
		r = &resolver{}
	}
	require.NoError(t, got.Parse(s, r))
	assert.True(t, s.LastTag.Is("ENDSEC"), "stopped at %v", s.LastTag)
	return got
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, int(kindCount))
	assert.Equal(t, "LINE", KindLine.String())
	assert.Equal(t, "POLYLINE", KindPolyfaceMesh.String())
	assert.Equal(t, "UNKNOWN", Kind(-1).String())

	for _, name := range []string{"LINE", "CIRCLE", "ARC", "POINT", "LWPOLYLINE", "TEXT", "MTEXT",
		"INSERT", "ATTRIB", "ATTDEF", "DIMENSION", "LEADER", "HATCH", "VIEWPORT", "POLYLINE",
		"IMAGE", "PDFUNDERLAY", "DWFUNDERLAY", "DGNUNDERLAY", "MLINE"} {
		assert.NotNil(t, CreateEntity(name), name)
	}
	assert.Nil(t, CreateEntity("SPLINE"))
}

func TestLine_RoundTrip(t *testing.T) {
	for _, binary := range []bool{false, true} {
		l := NewLine(core.Point{X: 1, Y: 2}, core.Point{X: 3.5, Y: -4, Z: 1})
		l.SetHandle("3F")
		l.SetOwner("1F")
		l.Layer.Init(tables.NewLayer("墙体"))
		l.Linetype.Init(tables.NewLinetype("DASHED"))
		l.Color = 1
		l.Lineweight = 25
		l.SetPaperSpace(true)

		got := roundTrip(t, l, nil, binary).(*Line)
		assert.Equal(t, "3F", got.Handle())
		assert.Equal(t, "1F", got.Owner())
		assert.Equal(t, "墙体", got.Layer.Get().Name())
		assert.Equal(t, "DASHED", got.Linetype.Get().Name())
		assert.Equal(t, int16(1), got.Color)
		assert.Equal(t, int16(25), got.Lineweight)
		assert.True(t, got.PaperSpace())
		assert.Empty(t, cmp.Diff(l.Start, got.Start))
		assert.Empty(t, cmp.Diff(l.End, got.End))
	}
}

func TestInsert_Attributes(t *testing.T) {
	ins := NewInsert(tables.NewBlock("Door"), core.Point{X: 10, Y: 20})
	ins.SetHandle("40")
	ins.FillHandles(0x41)
	ins.Rotation = 90
	ins.Scale = core.Point{X: 2, Y: 2, Z: 1}
	a := NewAttrib("编号", "D-01")
	a.SetHandle("42")
	ins.Attributes.Init(a, NewAttrib("宽度", "900"))

	got := roundTrip(t, ins, nil, false).(*Insert)
	assert.Equal(t, "Door", got.Block.Get().Name())
	assert.Equal(t, "41", got.Seqend())
	assert.InDelta(t, 90, got.Rotation, 1e-12)
	require.Equal(t, 2, got.Attributes.Len())

	v, ok := got.GetAttr("编号")
	assert.True(t, ok)
	assert.Equal(t, "D-01", v)
	v, ok = got.GetAttr("宽度")
	assert.True(t, ok)
	assert.Equal(t, "900", v)
	_, ok = got.GetAttr("高度")
	assert.False(t, ok)
}

func TestInsert_Clone(t *testing.T) {
	blk := tables.NewBlock("Door")
	ins := NewInsert(blk, core.Point{X: 1})
	ins.SetHandle("40")
	ins.Attributes.Init(NewAttrib("A", "1"))

	c := ins.Clone().(*Insert)
	assert.Empty(t, c.Handle(), "副本没有句柄")
	assert.Same(t, blk, c.Block.Get(), "表对象不复制")
	require.Equal(t, 1, c.Attributes.Len())
	assert.NotSame(t, ins.Attributes.Items()[0], c.Attributes.Items()[0])
	assert.Equal(t, "1", c.Attributes.Items()[0].Text)
}

func TestDimension_Overrides(t *testing.T) {
	style := tables.NewTextStyle("Annot", "romans.shx")
	style.SetHandle("11")
	arrow := tables.NewBlock("_Dot")
	arrow.SetHandle("12")

	dim := NewDimension(tables.NewDimensionStyle("ISO-25"))
	dim.Block.Init(tables.NewBlock("*D3"))
	dim.ActualMeasurement = 1234.5678
	dim.StyleOverrides.Init(OverridePrecision, int16(2))
	dim.StyleOverrides.Init(OverrideTextHeight, 3.5)
	dim.StyleOverrides.Init(OverrideTextStyle, style)
	dim.StyleOverrides.Init(OverrideArrow1, arrow)
	dim.StyleOverrides.Init(OverrideArrow2, (*tables.Block)(nil))
	app := tables.NewApplicationRegistry("ACAD")
	dim.XData().Init("ACAD", tables.NewXData(app, core.Tag{Code: 1000, Value: "keep"}))

	r := &resolver{objects: map[string]tables.Object{"11": style, "12": arrow}}
	got := roundTrip(t, dim, r, false).(*Dimension)

	assert.Equal(t, "ISO-25", got.Style.Get().Name())
	assert.Equal(t, "*D3", got.Block.Get().Name())
	assert.InDelta(t, 1234.5678, got.ActualMeasurement, 1e-9)

	v, ok := got.StyleOverrides.Get(OverridePrecision)
	require.True(t, ok)
	assert.Equal(t, int16(2), v)
	v, _ = got.StyleOverrides.Get(OverrideTextHeight)
	assert.Equal(t, 3.5, v)
	v, _ = got.StyleOverrides.Get(OverrideTextStyle)
	assert.Same(t, style, v)
	v, _ = got.StyleOverrides.Get(OverrideArrow1)
	assert.Same(t, arrow, v)
	v, ok = got.StyleOverrides.Get(OverrideArrow2)
	require.True(t, ok)
	assert.Nil(t, v, "默认箭头")

	// DSTYLE 以外的 ACAD 记录保留
	x := got.GetXData("ACAD")
	require.NotNil(t, x)
	assert.Equal(t, []core.Tag{{Code: 1000, Value: "keep"}}, x.Records)
}

func TestOverride_Valid(t *testing.T) {
	assert.True(t, OverrideScale.Valid(1.0))
	assert.False(t, OverrideScale.Valid(int16(1)))
	assert.True(t, OverridePrecision.Valid(int16(3)))
	assert.False(t, OverridePrecision.Valid(3))
	assert.True(t, OverrideArrow1.Valid((*tables.Block)(nil)))
	assert.False(t, OverrideTextStyle.Valid((*tables.TextStyle)(nil)))
	assert.False(t, OverrideDimLineLinetype.Valid(tables.NewLayer("0")))
	assert.False(t, DimStyleOverride(999).Valid(1.0))
}

func TestDimension_GetCleanVal(t *testing.T) {
	dim := NewDimension(nil)
	dim.ActualMeasurement = 12.5
	assert.Equal(t, 12.5, dim.GetCleanVal())

	dim.ActualMeasurement = 0
	dim.Text = `\A1;\H2.5;1500`
	assert.Equal(t, 1500.0, dim.GetCleanVal())
}

func TestDimension_BuildBlock(t *testing.T) {
	dim := NewDimension(nil)
	dim.DefPoint = core.Point{X: 0, Y: 10}
	dim.MeasureStart = core.Point{X: 0, Y: 0}
	dim.MeasureEnd = core.Point{X: 100, Y: 0}

	c13, c14 := dim.GetExtensionPoints()
	assert.True(t, c13.Equal(core.Point{X: 0, Y: 10}, 1e-9))
	assert.True(t, c14.Equal(core.Point{X: 100, Y: 10}, 1e-9))

	blk := dim.BuildBlock("*D1")
	assert.Equal(t, "*D1", blk.Name())
	assert.Equal(t, 3, blk.Entities.Len())
}

func TestAttributeDefinition_NewAttrib(t *testing.T) {
	style := tables.NewTextStyle("Annot", "romans.shx")
	def := NewAttributeDefinition("编号", "输入编号", "D-00")
	def.Location = core.Point{X: 5, Y: 5}
	def.Style.Init(style)

	a := def.NewAttrib()
	assert.Equal(t, "编号", a.Tag)
	assert.Equal(t, "D-00", a.Text)
	assert.Equal(t, def.Location, a.Location)
	assert.Same(t, style, a.Style.Get())
}

func TestPolyface_RoundTrip(t *testing.T) {
	mesh := NewPolyfaceMesh(
		[]core.Point{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
		[]*PolyfaceFace{{Indices: []int16{1, 2, 3, -4}, Layer: tables.NewLayer("Face")}},
	)
	next := mesh.AssignHandle(0x100)
	assert.Equal(t, uint64(0x100+len(mesh.SubHandles())+1), next, "顶点、面和 SEQEND 各占一个句柄")

	got := roundTrip(t, mesh, nil, true).(*PolyfaceMesh)
	assert.True(t, got.IsPolyface())
	assert.Empty(t, cmp.Diff(mesh.Vertices, got.Vertices))
	require.Len(t, got.Faces, 1)
	assert.Equal(t, []int16{1, 2, 3, -4}, got.Faces[0].Indices)
	assert.Equal(t, "Face", got.Faces[0].Layer.Name())
	assert.Equal(t, mesh.SubHandles(), got.SubHandles())
}
