package dxf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

func TestNew_Defaults(t *testing.T) {
	d := New()
	assert.Equal(t, core.R2018, d.Version())

	assert.True(t, d.AppRegistries.Contains("ACAD"))
	for _, name := range []string{"ByLayer", "ByBlock", "Continuous"} {
		assert.True(t, d.Linetypes.Contains(name), name)
	}
	assert.True(t, d.Layers.Contains("0"))
	assert.True(t, d.TextStyles.Contains("Standard"))
	assert.True(t, d.DimensionStyles.Contains("Standard"))
	assert.True(t, d.MLineStyles.Contains("Standard"))
	assert.True(t, d.VPorts.Contains("*Active"))
	assert.Equal(t, []string{"Model", "Layout1"}, d.Layouts.Names())
	require.NotNil(t, d.ModelSpace())
	require.NotNil(t, d.PaperSpace())

	// 默认对象不能删除
	assert.False(t, d.Layers.Remove("0"))
	assert.False(t, d.Linetypes.Remove("Continuous"))
	assert.False(t, d.TextStyles.Remove("Standard"))
	assert.False(t, d.AppRegistries.Remove("ACAD"))
	assert.False(t, d.Blocks.Remove(tables.ModelSpace))

	// 所有对象都有句柄且可以查到
	for _, reg := range d.tableRegistries() {
		assert.NotEmpty(t, reg.Handle())
	}
	l, _ := d.Layers.Get("0")
	obj, ok := d.Object(l.Handle())
	require.True(t, ok)
	assert.Same(t, l, obj)
	_, ok = d.Object("not-a-handle")
	assert.False(t, ok)
}

func TestNew_UnsupportedVersionFallsBack(t *testing.T) {
	d := New(WithVersion(core.R12))
	assert.Equal(t, core.R2018, d.Version())

	d = New(WithVersion(core.R2000), WithCodePage("ANSI_936"))
	assert.Equal(t, core.R2000, d.Version())
	assert.Equal(t, "ANSI_936", d.Header.CodePage)
}

func TestHandles_UniqueAndIncreasing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("handles never repeat and the seed stays ahead", prop.ForAll(
		func(n int) bool {
			d := New()
			seen := make(map[string]bool)
			var last uint64
			for i := 0; i < n; i++ {
				var e entities.Entity = entities.NewLine(core.Point{X: float64(i)}, core.Point{})
				if i%3 == 0 {
					e = entities.NewInsert(tables.NewBlock("B"), core.Point{})
				}
				if d.AddEntity(e) != nil {
					return false
				}
				h, err := core.ParseHandle(e.Handle())
				if err != nil || seen[e.Handle()] || h <= last {
					return false
				}
				seen[e.Handle()] = true
				last = h
			}
			seed, err := core.ParseHandle(d.Header.HandleSeed)
			return err == nil && seed > last
		},
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

func TestIssue_DuplicateHandleReassigned(t *testing.T) {
	d := New()
	a := entities.NewLine(core.Point{}, core.Point{X: 1})
	require.NoError(t, d.AddEntity(a))

	// 读取的句柄与已有对象冲突时重新分配
	b := entities.NewLine(core.Point{}, core.Point{Y: 1})
	b.SetHandle(a.Handle())
	require.NoError(t, d.AddEntityTo(nil, b, false))
	assert.NotEqual(t, a.Handle(), b.Handle())

	c := entities.NewLine(core.Point{}, core.Point{Y: 2})
	c.SetHandle("FFFF")
	require.NoError(t, d.AddEntityTo(nil, c, false))
	assert.Equal(t, "FFFF", c.Handle(), "不冲突的句柄保留")
}

func TestLayouts(t *testing.T) {
	d := New()

	plan, err := d.AddLayout("Plan")
	require.NoError(t, err)
	blk := plan.Block.Get()
	require.NotNil(t, blk)
	assert.Equal(t, "*Paper_Space1", blk.Name())
	assert.Equal(t, plan.Handle(), blk.LayoutHandle())
	assert.NotEmpty(t, plan.Viewport())
	assert.Equal(t, int16(2), plan.TabOrder)

	again, err := d.AddLayout("plan")
	require.NoError(t, err)
	assert.Same(t, plan, again)

	c := entities.NewCircle(core.Point{}, 5)
	require.NoError(t, d.AddEntityTo(blk, c, true))
	assert.True(t, c.PaperSpace())

	assert.False(t, d.RemoveLayout("Model"))
	assert.False(t, d.RemoveLayout("Layout1"), "当前图纸空间")
	assert.False(t, d.RemoveLayout("Missing"))

	require.True(t, d.RemoveLayout("Plan"))
	assert.False(t, d.Layouts.Contains("Plan"))
	assert.False(t, d.Blocks.Contains("*Paper_Space1"))
	assert.Empty(t, c.Handle(), "块中的实体一并删除")
	assert.Nil(t, c.Home())

	// 块名可以重复使用
	next, err := d.AddLayout("Detail")
	require.NoError(t, err)
	assert.Equal(t, "*Paper_Space1", next.Block.Get().Name())
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89}, 0o644))

	d := New(WithSupportFolders(dir))
	got, ok := d.FindFile(`C:\drawings\site.png`)
	assert.True(t, ok)
	assert.Equal(t, path, got)

	got, ok = d.FindFile(path)
	assert.True(t, ok)
	assert.Equal(t, path, got)

	_, ok = d.FindFile("missing.png")
	assert.False(t, ok)
	_, ok = d.FindFile("")
	assert.False(t, ok)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dxf.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
build_dimension_blocks = true
support_folders = ["/data/xref", "/data/images"]
code_page = "ANSI_936"
version = "AC1015"
`), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.True(t, opts.BuildDimensionBlocks)
	assert.Equal(t, []string{"/data/xref", "/data/images"}, opts.SupportFolders)

	d := New(WithOptions(opts), WithDebug(true))
	assert.Equal(t, core.R2000, d.Version())
	assert.Equal(t, "ANSI_936", d.Header.CodePage)
	assert.True(t, d.Options().Debug)
	assert.NotNil(t, d.Options().Logger)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
