// Package dxf 读写 DXF 文件并维护文档内对象之间的引用关系。
//
// 文档持有所有具名对象的注册表和一个按句柄索引的对象表。实体加入文档时，
// 它引用的图层、线型、样式、块和定义会被并入对应的注册表并登记引用；
// 之后对这些属性的修改通过 notify 事件同步到引用集合。
package dxf

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

// 对象字典的名称
const (
	dictRoot        = ""
	dictLayout      = "ACAD_LAYOUT"
	dictMLineStyle  = "ACAD_MLINESTYLE"
	dictImage       = "ACAD_IMAGE_DICT"
	dictPDF         = "ACAD_PDFDEFINITIONS"
	dictDWF         = "ACAD_DWFDEFINITIONS"
	dictDGN         = "ACAD_DGNDEFINITIONS"
	dimBlockPrefix  = "*D"
	paperBlockIndex = 1
)

var dictNames = []string{dictRoot, dictLayout, dictMLineStyle, dictImage, dictPDF, dictDWF, dictDGN}

type Document struct {
	Header   *Header
	Comments []string

	AppRegistries       *tables.Registry[*tables.ApplicationRegistry]
	Linetypes           *tables.Registry[*tables.Linetype]
	TextStyles          *tables.Registry[*tables.TextStyle]
	Layers              *tables.Registry[*tables.Layer]
	DimensionStyles     *tables.Registry[*tables.DimensionStyle]
	Blocks              *tables.Registry[*tables.Block]
	UCSs                *tables.Registry[*tables.UCS]
	Views               *tables.Registry[*tables.View]
	VPorts              *tables.Registry[*tables.VPort]
	Layouts             *tables.Registry[*tables.Layout]
	MLineStyles         *tables.Registry[*tables.MLineStyle]
	ImageDefinitions    *tables.Registry[*tables.ImageDefinition]
	UnderlayDefinitions *tables.Registry[*tables.UnderlayDefinition]

	opts    Options
	log     *log.Logger
	counter uint64
	objects map[string]tables.Object
	subs    map[tables.Object][]func()
	nested  map[entities.Entity]entities.Entity
	dicts   map[string]string

	assign   bool
	dimIndex int
}

// New 新建文档，带有全部默认对象和两个布局
func New(opts ...Option) *Document {
	o := newOptions(opts)
	version, err := core.ParseVersion(o.Version)
	if err != nil || !version.Supported() {
		o.Logger.Warn("unsupported version for new document, using AC1032", "version", o.Version)
		version = core.R2018
	}

	d := newDocument(o)
	d.Header = NewHeader(version, o.CodePage)
	d.counter = 1
	d.issueTables()
	d.ensureDefaults()
	return d
}

func newDocument(o Options) *Document {
	d := &Document{
		AppRegistries:       tables.NewRegistry[*tables.ApplicationRegistry]("TABLE", "APPID"),
		Linetypes:           tables.NewRegistry[*tables.Linetype]("TABLE", "LTYPE"),
		TextStyles:          tables.NewRegistry[*tables.TextStyle]("TABLE", "STYLE"),
		Layers:              tables.NewRegistry[*tables.Layer]("TABLE", "LAYER"),
		DimensionStyles:     tables.NewRegistry[*tables.DimensionStyle]("TABLE", "DIMSTYLE"),
		Blocks:              tables.NewRegistry[*tables.Block]("TABLE", "BLOCK_RECORD"),
		UCSs:                tables.NewRegistry[*tables.UCS]("TABLE", "UCS"),
		Views:               tables.NewRegistry[*tables.View]("TABLE", "VIEW"),
		VPorts:              tables.NewRegistry[*tables.VPort]("TABLE", "VPORT"),
		Layouts:             tables.NewRegistry[*tables.Layout]("DICTIONARY", dictLayout),
		MLineStyles:         tables.NewRegistry[*tables.MLineStyle]("DICTIONARY", dictMLineStyle),
		ImageDefinitions:    tables.NewRegistry[*tables.ImageDefinition]("DICTIONARY", dictImage),
		UnderlayDefinitions: tables.NewRegistry[*tables.UnderlayDefinition]("DICTIONARY", dictPDF),

		opts:    o,
		log:     o.Logger,
		objects: make(map[string]tables.Object),
		subs:    make(map[tables.Object][]func()),
		nested:  make(map[entities.Entity]entities.Entity),
		dicts:   make(map[string]string),
	}
	d.setHooks()
	return d
}

// tableRegistries 符号表，按写出顺序
func (d *Document) tableRegistries() []tables.Object {
	return []tables.Object{d.VPorts, d.Linetypes, d.Layers, d.TextStyles, d.Views, d.UCSs, d.AppRegistries, d.DimensionStyles, d.Blocks}
}

// issueTables 给符号表和对象字典分配句柄，已有句柄（读取的文件）保留
func (d *Document) issueTables() {
	for _, reg := range d.tableRegistries() {
		d.issue(reg, false)
	}
	for _, name := range dictNames {
		if d.dicts[name] == "" {
			d.dicts[name], d.counter = core.AssignHandle(d.counter)
		}
	}
	d.Layouts.SetHandle(d.dicts[dictLayout])
	d.MLineStyles.SetHandle(d.dicts[dictMLineStyle])
	d.ImageDefinitions.SetHandle(d.dicts[dictImage])
	d.UnderlayDefinitions.SetHandle(d.dicts[dictPDF])
	d.syncSeed()
}

// issue 分配句柄并登记到对象表。句柄缺失或与其他对象冲突时重新分配。
func (d *Document) issue(obj tables.Object, assign bool) {
	h := obj.Handle()
	if exist, ok := d.objects[h]; assign || h == "" || (ok && exist != obj) {
		if h != "" && !assign {
			d.log.Warn("duplicate handle reassigned", "handle", h, "type", obj.CodeName())
		}
		d.counter = obj.AssignHandle(d.counter)
	} else {
		// 保留的句柄之后再分配
		if n, err := core.ParseHandle(h); err == nil && n >= d.counter {
			d.counter = n + 1
		}
		if sub, ok := obj.(tables.SubHandles); ok {
			d.counter = sub.FillHandles(d.counter)
		}
	}
	d.objects[obj.Handle()] = obj
	d.syncSeed()
}

func (d *Document) syncSeed() {
	if d.Header != nil {
		d.Header.HandleSeed = core.FormatHandle(d.counter)
	}
}

// forget 退订并从对象表删除
func (d *Document) forget(obj tables.Object) {
	subs := d.subs[obj]
	for i := len(subs) - 1; i >= 0; i-- {
		subs[i]()
	}
	delete(d.subs, obj)
	if exist, ok := d.objects[obj.Handle()]; ok && exist == obj {
		delete(d.objects, obj.Handle())
	}
}

// onDetach 记录对象摘除时要执行的清理，按登记的逆序执行
func (d *Document) onDetach(obj tables.Object, fn func()) {
	d.subs[obj] = append(d.subs[obj], fn)
}

// Object 按句柄查找
func (d *Document) Object(handle string) (tables.Object, bool) {
	h, err := core.NormalizeHandle(handle)
	if err != nil {
		return nil, false
	}
	obj, ok := d.objects[h]
	return obj, ok
}

// Len 对象表中的对象数
func (d *Document) Len() int {
	return len(d.objects)
}

// Options 文档的选项
func (d *Document) Options() Options {
	return d.opts
}

// Version 文档版本
func (d *Document) Version() core.Version {
	return d.Header.Version
}

// ModelSpace 模型空间块
func (d *Document) ModelSpace() *tables.Block {
	b, _ := d.Blocks.Get(tables.ModelSpace)
	return b
}

// PaperSpace 当前图纸空间块
func (d *Document) PaperSpace() *tables.Block {
	b, _ := d.Blocks.Get(tables.PaperSpace)
	return b
}

// Entities 模型空间和当前图纸空间的实体
func (d *Document) Entities() []entities.Entity {
	var list []entities.Entity
	for _, b := range []*tables.Block{d.ModelSpace(), d.PaperSpace()} {
		if b != nil {
			list = append(list, blockEntities(b)...)
		}
	}
	return list
}

// AllEntities 所有块中的实体，包括属性定义
func (d *Document) AllEntities() []entities.Entity {
	var list []entities.Entity
	for _, b := range d.Blocks.Items() {
		list = append(list, blockEntities(b)...)
		for _, e := range b.AttributeDefinitions.Entries() {
			if ent, ok := e.Value.(entities.Entity); ok {
				list = append(list, ent)
			}
		}
	}
	return list
}

func blockEntities(b *tables.Block) []entities.Entity {
	items := b.Entities.Items()
	list := make([]entities.Entity, 0, len(items))
	for _, e := range items {
		if ent, ok := e.(entities.Entity); ok {
			list = append(list, ent)
		}
	}
	return list
}

// FindFile 在文件所在位置和支持目录中查找图像、参考底图文件
func (d *Document) FindFile(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if _, err := os.Stat(name); err == nil {
		return name, true
	}
	// 文件中可能是 Windows 路径
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	for _, dir := range d.opts.SupportFolders {
		path := filepath.Join(dir, base)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ensureDefaults 补齐默认对象，已有的不变
func (d *Document) ensureDefaults() {
	d.appRegistry("ACAD")
	for _, name := range []string{"ByLayer", "ByBlock", "Continuous"} {
		d.linetype(name)
	}
	d.layer("0")
	d.textStyle("Standard")
	d.dimensionStyle("Standard")
	d.mlineStyle("Standard")
	getOrAdd(d, d.VPorts, "*Active", func() *tables.VPort { return tables.NewVPort("*Active") })

	d.ensureLayout("Model", tables.ModelSpace, 0)
	if d.Layouts.Len() < 2 {
		d.ensureLayout("Layout1", tables.PaperSpace, 1)
	}
	d.ensureBlock(tables.PaperSpace)
}

// ensureLayout 布局不存在时连同块一起创建
func (d *Document) ensureLayout(name, blockName string, tab int16) *tables.Layout {
	if l, ok := d.Layouts.Get(name); ok {
		return l
	}
	l := tables.NewLayout(name)
	l.TabOrder = tab
	l.Block.Init(d.ensureBlock(blockName))
	return must(d, d.Layouts, l)
}

func (d *Document) ensureBlock(name string) *tables.Block {
	return getOrAdd(d, d.Blocks, name, func() *tables.Block { return tables.NewBlock(name) })
}

func (d *Document) appRegistry(name string) *tables.ApplicationRegistry {
	return getOrAdd(d, d.AppRegistries, name, func() *tables.ApplicationRegistry { return tables.NewApplicationRegistry(name) })
}

func (d *Document) linetype(name string) *tables.Linetype {
	return getOrAdd(d, d.Linetypes, name, func() *tables.Linetype { return tables.NewLinetype(name) })
}

func (d *Document) layer(name string) *tables.Layer {
	return getOrAdd(d, d.Layers, name, func() *tables.Layer { return tables.NewLayer(name) })
}

func (d *Document) textStyle(name string) *tables.TextStyle {
	return getOrAdd(d, d.TextStyles, name, func() *tables.TextStyle { return tables.NewTextStyle(name, "txt") })
}

func (d *Document) dimensionStyle(name string) *tables.DimensionStyle {
	return getOrAdd(d, d.DimensionStyles, name, func() *tables.DimensionStyle { return tables.NewDimensionStyle(name) })
}

func (d *Document) mlineStyle(name string) *tables.MLineStyle {
	return getOrAdd(d, d.MLineStyles, name, func() *tables.MLineStyle {
		return tables.NewMLineStyle(name,
			&tables.MLineStyleElement{Offset: 0.5, Color: 256},
			&tables.MLineStyleElement{Offset: -0.5, Color: 256},
		)
	})
}

func getOrAdd[T tables.TableObject](d *Document, reg *tables.Registry[T], name string, create func() T) T {
	if item, ok := reg.Get(name); ok {
		return item
	}
	return must(d, reg, create())
}

// must 加入默认对象，失败只记录日志
func must[T tables.TableObject](d *Document, reg *tables.Registry[T], item T) T {
	added, err := reg.Add(item, true)
	if err != nil {
		d.log.Error("add default object", "table", reg.Name(), "name", item.Name(), "err", err)
	}
	return added
}

// AddLayout 新建布局，同时创建 *Paper_Space<n> 块
func (d *Document) AddLayout(name string) (*tables.Layout, error) {
	if l, ok := d.Layouts.Get(name); ok {
		return l, nil
	}
	l := tables.NewLayout(name)
	l.TabOrder = int16(d.Layouts.Len())
	return d.Layouts.Add(l, true)
}

// RemoveLayout 删除布局和它的块，块中的实体一并删除。
// 模型布局和使用 *Paper_Space 的当前布局不能删除。
func (d *Document) RemoveLayout(name string) bool {
	l, ok := d.Layouts.Get(name)
	if !ok || l.Reserved() {
		return false
	}
	if blk := l.Block.Get(); blk != nil {
		if strings.EqualFold(blk.Name(), tables.PaperSpace) || d.Blocks.ReferenceCount(blk.Name()) > 1 {
			return false
		}
	}
	return d.Layouts.Remove(name)
}

// nextPaperBlock 下一个未使用的图纸空间块名
func (d *Document) nextPaperBlock() string {
	for i := paperBlockIndex; ; i++ {
		name := tables.PaperSpace + strconv.Itoa(i)
		if !d.Blocks.Contains(name) {
			return name
		}
	}
}

// nextDimBlock 下一个未使用的 *D 块名
func (d *Document) nextDimBlock() string {
	for {
		d.dimIndex++
		name := dimBlockPrefix + strconv.Itoa(d.dimIndex)
		if !d.Blocks.Contains(name) {
			return name
		}
	}
}

func isDimBlock(name string) bool {
	return strings.HasPrefix(strings.ToUpper(name), dimBlockPrefix)
}
