package dxf

import (
	"io"
	"os"
	"strings"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

// Save 写出文档。binary 为 true 时写二进制格式，注释只在文本格式中写出。
// 每次保存生成新的 $VERSIONGUID。
func (d *Document) Save(w io.Writer, binary bool) error {
	if err := d.save(w, binary); err != nil {
		d.log.Error("save failed", "err", err)
		return normalize(err, ErrSaveFailed, d.opts)
	}
	return nil
}

// SaveFile 写出到文件
func (d *Document) SaveFile(filename string, binary bool) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return d.Save(file, binary)
}

func (d *Document) save(w io.Writer, binary bool) error {
	h := d.Header
	if !h.Version.Supported() {
		return &VersionError{Version: h.Version.String()}
	}

	cw := core.NewWriter(w, binary, h.encoding(h.CodePage))

	h.VersionGUID = newGUID()
	d.syncSeed()

	for _, c := range d.Comments {
		cw.Comment(c)
	}
	h.write(cw)

	cw.Str(0, "SECTION")
	cw.Str(2, "CLASSES")
	cw.Str(0, "ENDSEC")

	d.writeTables(cw)
	d.writeBlocks(cw)
	d.writeEntities(cw)
	d.writeObjects(cw)

	cw.Str(0, "EOF")
	if err := cw.Flush(); err != nil {
		return err
	}
	d.log.Debug("document saved", "version", h.Version, "binary", binary, "objects", d.Len())
	return nil
}

func writeTable[T tables.TableObject](w *core.Writer, reg *tables.Registry[T], write func(T)) {
	w.Str(0, "TABLE")
	w.Str(2, reg.Name())
	w.Handle(5, tables.HandleOrZero(reg.Handle()))
	w.Handle(330, "0")
	w.Str(100, "AcDbSymbolTable")
	w.Int16(70, int16(reg.Len()))
	if reg.Name() == "DIMSTYLE" {
		w.Str(100, "AcDbDimStyleTable")
		w.Int16(71, 0)
	}
	for _, item := range reg.Items() {
		write(item)
	}
	w.Str(0, "ENDTAB")
}

func (d *Document) writeTables(w *core.Writer) {
	w.Str(0, "SECTION")
	w.Str(2, "TABLES")
	writeTable(w, d.VPorts, func(v *tables.VPort) { v.Write(w) })
	writeTable(w, d.Linetypes, func(l *tables.Linetype) { l.Write(w) })
	writeTable(w, d.Layers, func(l *tables.Layer) { l.Write(w) })
	writeTable(w, d.TextStyles, func(t *tables.TextStyle) { t.Write(w) })
	writeTable(w, d.Views, func(v *tables.View) { v.Write(w) })
	writeTable(w, d.UCSs, func(u *tables.UCS) { u.Write(w) })
	writeTable(w, d.AppRegistries, func(a *tables.ApplicationRegistry) { a.Write(w) })
	writeTable(w, d.DimensionStyles, func(s *tables.DimensionStyle) { s.Write(w) })
	writeTable(w, d.Blocks, func(b *tables.Block) { b.WriteRecord(w) })
	w.Str(0, "ENDSEC")
}

// activeSpace 模型空间和当前图纸空间的实体写在 ENTITIES 段
func activeSpace(b *tables.Block) bool {
	return strings.EqualFold(b.Name(), tables.ModelSpace) || strings.EqualFold(b.Name(), tables.PaperSpace)
}

func (d *Document) writeBlocks(w *core.Writer) {
	w.Str(0, "SECTION")
	w.Str(2, "BLOCKS")
	for _, b := range d.Blocks.Items() {
		b.WriteBegin(w)
		if !activeSpace(b) {
			d.writeBlockEntities(w, b)
		}
		b.WriteEnd(w)
	}
	w.Str(0, "ENDSEC")
}

func (d *Document) writeEntities(w *core.Writer) {
	w.Str(0, "SECTION")
	w.Str(2, "ENTITIES")
	if b := d.ModelSpace(); b != nil {
		d.writeBlockEntities(w, b)
	}
	if b := d.PaperSpace(); b != nil {
		d.writeBlockEntities(w, b)
	}
	w.Str(0, "ENDSEC")
}

// writeBlockEntities 图纸空间块先写布局视口，属性定义写在实体之后
func (d *Document) writeBlockEntities(w *core.Writer, b *tables.Block) {
	if b.IsPaperSpace() {
		if l, ok := d.objects[b.LayoutHandle()].(*tables.Layout); ok && l.Viewport() != "" {
			layoutViewport(b, l).Write(w)
		}
	}
	for _, e := range blockEntities(b) {
		e.Write(w)
	}
	for _, e := range b.AttributeDefinitions.Entries() {
		if def, ok := e.Value.(entities.Entity); ok {
			def.Write(w)
		}
	}
}

// layoutViewport 布局的隐含视口，按布局范围生成
func layoutViewport(b *tables.Block, l *tables.Layout) *entities.Viewport {
	width, height := l.MaxLimit.X-l.MinLimit.X, l.MaxLimit.Y-l.MinLimit.Y
	center := core.Point{X: l.MinLimit.X + width/2, Y: l.MinLimit.Y + height/2}
	vp := entities.NewViewport(center, width, height)
	vp.ID = 1
	vp.ViewCenter = center
	vp.SetHandle(l.Viewport())
	vp.SetOwner(b.Handle())
	vp.SetPaperSpace(true)
	return vp
}

func writeDictionary(w *core.Writer, handle, owner string, names, handles []string) {
	w.Str(0, "DICTIONARY")
	w.Handle(5, tables.HandleOrZero(handle))
	w.Handle(330, tables.HandleOrZero(owner))
	w.Str(100, "AcDbDictionary")
	w.Int16(281, 1)
	for i, name := range names {
		w.Str(3, name)
		w.Handle(350, tables.HandleOrZero(handles[i]))
	}
}

func entries[T tables.TableObject](items []T, keep func(T) bool) (names, handles []string) {
	for _, item := range items {
		if keep == nil || keep(item) {
			names = append(names, item.Name())
			handles = append(handles, item.Handle())
		}
	}
	return
}

func (d *Document) writeObjects(w *core.Writer) {
	w.Str(0, "SECTION")
	w.Str(2, "OBJECTS")

	root := d.dicts[dictRoot]
	var subs []string
	for _, name := range dictNames[1:] {
		subs = append(subs, d.dicts[name])
	}
	writeDictionary(w, root, "0", dictNames[1:], subs)

	names, handles := entries(d.Layouts.Items(), nil)
	writeDictionary(w, d.dicts[dictLayout], root, names, handles)
	names, handles = entries(d.MLineStyles.Items(), nil)
	writeDictionary(w, d.dicts[dictMLineStyle], root, names, handles)
	names, handles = entries(d.ImageDefinitions.Items(), nil)
	writeDictionary(w, d.dicts[dictImage], root, names, handles)
	for _, kind := range []tables.UnderlayKind{tables.UnderlayPDF, tables.UnderlayDWF, tables.UnderlayDGN} {
		names, handles = entries(d.UnderlayDefinitions.Items(), func(u *tables.UnderlayDefinition) bool { return u.Kind == kind })
		writeDictionary(w, d.dicts[kind.Dictionary()], root, names, handles)
	}

	for _, l := range d.Layouts.Items() {
		l.Write(w)
	}
	for _, m := range d.MLineStyles.Items() {
		m.Write(w)
	}
	for _, def := range d.ImageDefinitions.Items() {
		images := d.imagesOf(def)
		reactors := make([]string, 0, len(images))
		for _, img := range images {
			reactors = append(reactors, img.Reactor())
		}
		def.Write(w, reactors)
		for _, img := range images {
			img.WriteReactor(w)
		}
	}
	for _, u := range d.UnderlayDefinitions.Items() {
		u.Write(w)
	}
	w.Str(0, "ENDSEC")
}

// imagesOf 引用定义的图像，按句柄排序
func (d *Document) imagesOf(def *tables.ImageDefinition) []*entities.Image {
	var list []*entities.Image
	for _, h := range d.ImageDefinitions.References(def.Name()) {
		if img, ok := d.objects[h].(*entities.Image); ok {
			list = append(list, img)
		}
	}
	return list
}
