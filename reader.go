package dxf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

// 读取时记录对象的分组，顺序即加入注册表的顺序：被引用的先加入
const (
	groupAppID    = "APPID"
	groupStyle    = "STYLE"
	groupLinetype = "LTYPE"
	groupLayer    = "LAYER"
	groupMLine    = "MLINESTYLE"
	groupImage    = "IMAGEDEF"
	groupUnderlay = "UNDERLAY"
	groupUCS      = "UCS"
	groupView     = "VIEW"
	groupVPort    = "VPORT"
	groupDimStyle = "DIMSTYLE"
	groupBlock    = "BLOCK_RECORD"
	groupLayout   = "LAYOUT"
)

type pending struct {
	handle string
	fn     func(tables.Object)
}

type dictionary struct {
	handle  string
	owner   string
	names   []string
	handles []string
}

// reader 先把文件读成互不关联的对象，名称引用先找已读到的记录，找不到时创建占位对象；
// 全部读完后解析句柄引用，再按依赖顺序加入文档，占位对象在加入时与同名记录合并。
type reader struct {
	d   *Document
	s   *core.Scanner
	log *log.Logger

	records      map[string]map[string]tables.TableObject
	placeholders map[string]map[string]tables.TableObject
	order        map[string][]tables.TableObject
	tableHandles map[string]string

	handles   map[string]tables.Object
	deferred  []pending
	loose     []entities.Entity
	viewports map[*tables.Block]string
	dicts     []dictionary
	defs      []definition
	comments  []string
}

// definition 图像和参考底图定义的名称在字典条目里，读完字典后再登记
type definition struct {
	group string
	obj   tables.TableObject
}

func newReader(d *Document, s *core.Scanner) *reader {
	return &reader{
		d:            d,
		s:            s,
		log:          d.log,
		records:      make(map[string]map[string]tables.TableObject),
		placeholders: make(map[string]map[string]tables.TableObject),
		order:        make(map[string][]tables.TableObject),
		tableHandles: make(map[string]string),
		handles:      make(map[string]tables.Object),
		viewports:    make(map[*tables.Block]string),
	}
}

// Open 读取 DXF 文件，自动识别文本和二进制格式
func Open(filename string, opts ...Option) (doc *Document, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return Load(file, opts...)
}

// Load 从流中读取文档。版本不支持时返回 *VersionError，其余错误包装为 ErrLoadFailed，
// 调试模式下返回原始错误。
func Load(r io.Reader, opts ...Option) (*Document, error) {
	o := newOptions(opts)
	d, err := load(r, o)
	if err != nil {
		o.Logger.Error("load failed", "err", err)
		return nil, normalize(err, ErrLoadFailed, o)
	}
	return d, nil
}

func normalize(err, failed error, o Options) error {
	var verr *VersionError
	if errors.As(err, &verr) {
		return verr
	}
	if o.debug() {
		return err
	}
	return fmt.Errorf("%w: %v", failed, err)
}

func load(r io.Reader, o Options) (*Document, error) {
	d := newDocument(o)
	d.Header = NewHeader(core.VersionUnknown, o.CodePage)

	rd := newReader(d, core.NewScanner(r, core.CodePage(o.CodePage)))
	if err := rd.read(); err != nil {
		return nil, err
	}
	// 注释按读到的版本和代码页解码
	enc := d.Header.encoding(o.CodePage)
	for _, c := range rd.comments {
		d.Comments = append(d.Comments, core.DecodeString(enc, []byte(c)))
	}
	if !d.Header.Version.Supported() {
		return nil, &VersionError{Version: rd.version()}
	}
	if err := rd.finish(); err != nil {
		return nil, err
	}
	d.log.Debug("document loaded", "version", d.Header.Version, "binary", rd.s.Binary(), "objects", d.Len())
	return d, nil
}

func (r *reader) version() string {
	if r.d.Header.Version == core.VersionUnknown {
		return ""
	}
	return r.d.Header.Version.String()
}

// CheckVersion 只读到 $ACADVER 为止，返回版本和是否为二进制格式
func CheckVersion(r io.Reader) (core.Version, bool, error) {
	s := core.NewScanner(r, nil)
	for s.Next() {
		tag := s.LastTag
		if tag.Is("ENDSEC") || tag.IsEOF() {
			break
		}
		if tag.Code != 9 || !strings.EqualFold(tag.AsString(), "$ACADVER") {
			continue
		}
		if !s.Next() {
			break
		}
		value := s.LastTag.AsString()
		v, err := core.ParseVersion(value)
		if err != nil || !v.Supported() {
			return v, s.Binary(), &VersionError{Version: value}
		}
		return v, s.Binary(), nil
	}
	if err := s.Err(); err != nil {
		return core.VersionUnknown, s.Binary(), err
	}
	return core.VersionUnknown, s.Binary(), &VersionError{}
}

// CheckFileVersion 检查文件版本
func CheckFileVersion(filename string) (v core.Version, binary bool, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return
	}

	defer func() {
		if e := file.Close(); e != nil && err == nil {
			err = e
		}
	}()

	return CheckVersion(file)
}

func (r *reader) read() error {
	for r.s.Next() {
		tag := r.s.LastTag
		switch {
		case tag.IsEOF():
			return r.s.Err()
		case tag.Code == 999:
			if s, err := tag.Str(); err == nil {
				r.comments = append(r.comments, s)
			}
		case tag.Is("SECTION"):
			if !r.s.Next() {
				return r.s.Err()
			}
			name := strings.ToUpper(r.s.LastTag.AsString())
			r.log.Debug("section", "name", name, "offset", r.s.Offset())

			var err error
			switch name {
			case "HEADER":
				err = r.d.Header.parse(r.s, r.d.opts.CodePage)
			case "TABLES":
				err = r.parseTables()
			case "BLOCKS":
				err = r.parseBlocks()
			case "ENTITIES":
				err = r.parseEntities()
			case "OBJECTS":
				err = r.parseObjects()
			default:
				err = r.skipSection()
			}
			if err != nil {
				return err
			}
			if r.s.LastTag.IsEOF() {
				return r.s.Err()
			}
		}
	}
	return r.s.Err()
}

func (r *reader) skipSection() error {
	for r.s.Next() {
		if tag := r.s.LastTag; tag.Is("ENDSEC") || tag.IsEOF() {
			break
		}
	}
	return r.s.Err()
}

// skip 跳过当前对象，停在下一个 0 组码
func (r *reader) skip() error {
	for r.s.Next() {
		if r.s.LastTag.Code == 0 {
			break
		}
	}
	return r.s.Err()
}

// sectionLoop 依次处理段中的 0 组码对象，fn 负责读完对象并停在下一个 0 组码
func (r *reader) sectionLoop(fn func(tag core.Tag) (bool, error)) error {
	if !r.s.Next() {
		return r.s.Err()
	}
	for {
		tag := r.s.LastTag
		if tag.Is("ENDSEC") || tag.IsEOF() {
			return r.s.Err()
		}
		if tag.Code == 0 {
			consumed, err := fn(tag)
			if err != nil {
				return err
			}
			if consumed {
				continue
			}
		}
		if !r.s.Next() {
			return r.s.Err()
		}
	}
}

func (r *reader) parseTables() error {
	return r.sectionLoop(func(tag core.Tag) (bool, error) {
		if !tag.Is("TABLE") {
			return false, nil
		}
		return true, r.parseTable()
	})
}

// parseTable 读取一个符号表，停在 ENDTAB 之后
func (r *reader) parseTable() error {
	var name, handle string
	for r.s.Next() {
		tag := r.s.LastTag
		if tag.Code == 0 {
			break
		}
		switch tag.Code {
		case 2:
			name = strings.ToUpper(tag.AsString())
		case 5:
			handle, _ = core.NormalizeHandle(tag.AsString())
		}
	}
	if handle != "" {
		r.tableHandles[name] = handle
	}

	for {
		tag := r.s.LastTag
		switch {
		case tag.Is("ENDTAB"):
			r.s.Next()
			return r.s.Err()
		case tag.Is("ENDSEC") || tag.IsEOF():
			return r.s.Err()
		case tag.Code == 0:
			if err := r.parseRecord(strings.ToUpper(tag.AsString())); err != nil {
				return err
			}
			continue
		}
		if !r.s.Next() {
			return r.s.Err()
		}
	}
}

func (r *reader) parseRecord(code string) error {
	var (
		obj tables.TableObject
		err error
	)
	switch code {
	case "APPID":
		a := tables.NewApplicationRegistry("")
		obj, err = a, a.Parse(r.s, r)
	case "LTYPE":
		l := tables.NewLinetype("")
		obj, err = l, l.Parse(r.s, r)
	case "LAYER":
		l := tables.NewLayer("")
		obj, err = l, l.Parse(r.s, r)
	case "STYLE":
		t := tables.NewTextStyle("", "")
		obj, err = t, t.Parse(r.s, r)
	case "DIMSTYLE":
		ds := tables.NewDimensionStyle("")
		obj, err = ds, ds.Parse(r.s, r)
	case "BLOCK_RECORD":
		b := tables.NewBlock("")
		obj, err = b, b.ParseRecord(r.s, r)
	case "UCS":
		u := tables.NewUCS("", core.Point{}, core.Point{X: 1}, core.Point{Y: 1})
		obj, err = u, u.Parse(r.s, r)
	case "VIEW":
		v := tables.NewView("")
		obj, err = v, v.Parse(r.s, r)
	case "VPORT":
		v := tables.NewVPort("")
		obj, err = v, v.Parse(r.s, r)
	default:
		r.log.Warn("unsupported table record skipped", "type", code, "offset", r.s.Offset())
		return r.skip()
	}
	if err != nil {
		return err
	}
	r.record(code, obj)
	return nil
}

// record 登记读到的具名对象，同名的只保留第一个
func (r *reader) record(group string, obj tables.TableObject) {
	if h := obj.Handle(); h != "" {
		r.handles[h] = obj
	}
	if obj.Name() == "" {
		r.log.Warn("unnamed object skipped", "type", obj.CodeName(), "handle", obj.Handle())
		return
	}
	key := strings.ToUpper(obj.Name())
	if r.records[group] == nil {
		r.records[group] = make(map[string]tables.TableObject)
	}
	if _, ok := r.records[group][key]; ok {
		r.log.Warn("duplicate name", "type", obj.CodeName(), "name", obj.Name(), "handle", obj.Handle())
		return
	}
	r.records[group][key] = obj
	r.order[group] = append(r.order[group], obj)
}

// lookup 按名称找已读到的记录，没有时返回同名的占位对象
func lookup[T tables.TableObject](r *reader, group, name string, create func(string) T) T {
	var zero T
	if name == "" {
		return zero
	}
	key := strings.ToUpper(name)
	if obj, ok := r.records[group][key]; ok {
		if v, ok := obj.(T); ok {
			return v
		}
	}
	if obj, ok := r.placeholders[group][key]; ok {
		if v, ok := obj.(T); ok {
			return v
		}
	}
	v := create(name)
	if r.placeholders[group] == nil {
		r.placeholders[group] = make(map[string]tables.TableObject)
	}
	r.placeholders[group][key] = v
	return v
}

func (r *reader) AppRegistry(name string) *tables.ApplicationRegistry {
	return lookup(r, groupAppID, name, tables.NewApplicationRegistry)
}

func (r *reader) Layer(name string) *tables.Layer {
	return lookup(r, groupLayer, name, tables.NewLayer)
}

func (r *reader) Linetype(name string) *tables.Linetype {
	return lookup(r, groupLinetype, name, func(name string) *tables.Linetype { return tables.NewLinetype(name) })
}

func (r *reader) TextStyle(name string) *tables.TextStyle {
	return lookup(r, groupStyle, name, func(name string) *tables.TextStyle { return tables.NewTextStyle(name, "txt") })
}

func (r *reader) DimensionStyle(name string) *tables.DimensionStyle {
	return lookup(r, groupDimStyle, name, tables.NewDimensionStyle)
}

func (r *reader) MLineStyle(name string) *tables.MLineStyle {
	return lookup(r, groupMLine, name, func(name string) *tables.MLineStyle { return tables.NewMLineStyle(name) })
}

func (r *reader) Block(name string) *tables.Block {
	return lookup(r, groupBlock, name, func(name string) *tables.Block { return tables.NewBlock(name) })
}

func (r *reader) ByHandle(handle string, fn func(tables.Object)) {
	if h, err := core.NormalizeHandle(handle); err == nil {
		handle = h
	}
	r.deferred = append(r.deferred, pending{handle: handle, fn: fn})
}

// blockRecord BLOCK 对应的块记录。没有记录时占位对象转为记录。
func (r *reader) blockRecord(name string) *tables.Block {
	key := strings.ToUpper(name)
	if obj, ok := r.records[groupBlock][key]; ok {
		return obj.(*tables.Block)
	}
	b, ok := r.placeholders[groupBlock][key].(*tables.Block)
	if ok {
		delete(r.placeholders[groupBlock], key)
	} else {
		b = tables.NewBlock(name)
	}
	r.record(groupBlock, b)
	return b
}

func (r *reader) parseBlocks() error {
	return r.sectionLoop(func(tag core.Tag) (bool, error) {
		if !tag.Is("BLOCK") {
			return false, nil
		}
		return true, r.parseBlock()
	})
}

// parseBlock 读取 BLOCK 到 ENDBLK，停在 ENDBLK 之后的 0 组码
func (r *reader) parseBlock() error {
	begin := tables.NewBlock("")
	if err := begin.ParseBegin(r.s, r); err != nil {
		return err
	}
	if begin.Name() == "" {
		r.log.Warn("unnamed block skipped", "offset", r.s.Offset())
	}
	rec := r.blockRecord(begin.Name())
	rec.Merge(begin)

	for {
		tag := r.s.LastTag
		switch {
		case tag.Is("ENDBLK"):
			return rec.ParseEnd(r.s)
		case tag.Is("ENDSEC") || tag.IsEOF():
			return r.s.Err()
		case tag.Code == 0:
			e, err := r.parseEntity()
			if err != nil {
				return err
			}
			if e != nil {
				r.place(rec, e)
			}
			continue
		}
		if !r.s.Next() {
			return r.s.Err()
		}
	}
}

// parseEntity 读取一个实体，不支持的类型跳过并返回 nil
func (r *reader) parseEntity() (entities.Entity, error) {
	name := strings.ToUpper(r.s.LastTag.AsString())
	e := entities.CreateEntity(name)
	if e == nil {
		r.log.Warn("unsupported entity skipped", "type", name, "offset", r.s.Offset())
		return nil, r.skip()
	}
	if err := e.Parse(r.s, r); err != nil {
		return nil, err
	}
	if p, ok := e.(*entities.PolyfaceMesh); ok && !p.IsPolyface() {
		r.log.Warn("polyline skipped", "handle", e.Handle(), "flags", p.Flags)
		return nil, nil
	}
	if h := e.Handle(); h != "" {
		r.handles[h] = e
	}
	if ins, ok := e.(*entities.Insert); ok {
		for _, a := range ins.Attributes.Items() {
			if h := a.Handle(); h != "" {
				r.handles[h] = a
			}
		}
	}
	return e, nil
}

// place 把实体放入块。图纸空间块中 ID 为 1 的视口属于布局，不作为实体保存。
func (r *reader) place(b *tables.Block, e entities.Entity) {
	if vp, ok := e.(*entities.Viewport); ok && vp.ID == 1 && b.IsPaperSpace() {
		r.viewports[b] = vp.Handle()
		delete(r.handles, vp.Handle())
		return
	}
	e.Entity().SetOwner(b.Handle())
	if def, ok := e.(*entities.AttributeDefinition); ok {
		b.AttributeDefinitions.Init(strings.ToUpper(def.Tag), def)
		return
	}
	b.Entities.Init(e)
}

func (r *reader) parseEntities() error {
	return r.sectionLoop(func(tag core.Tag) (bool, error) {
		e, err := r.parseEntity()
		if err != nil {
			return true, err
		}
		if e != nil {
			r.loose = append(r.loose, e)
		}
		return true, nil
	})
}

// placeLoose ENTITIES 段的实体按归属放入块，归属不明的按图纸空间标志放入
func (r *reader) placeLoose() {
	for _, e := range r.loose {
		if b, ok := r.handles[e.Owner()].(*tables.Block); ok {
			r.place(b, e)
			continue
		}
		if e.Entity().PaperSpace() {
			r.place(r.blockRecord(tables.PaperSpace), e)
		} else {
			r.place(r.blockRecord(tables.ModelSpace), e)
		}
	}
	r.loose = nil
}

func (r *reader) parseObjects() error {
	return r.sectionLoop(func(tag core.Tag) (bool, error) {
		name := strings.ToUpper(tag.AsString())
		var (
			obj   tables.TableObject
			group string
			err   error
		)
		switch name {
		case "DICTIONARY":
			return true, r.parseDictionary()
		case "LAYOUT":
			l := tables.NewLayout("")
			obj, group, err = l, groupLayout, l.Parse(r.s, r)
		case "MLINESTYLE":
			m := tables.NewMLineStyle("")
			obj, group, err = m, groupMLine, m.Parse(r.s, r)
		case "IMAGEDEF":
			i := tables.NewImageDefinition("", "", 0, 0)
			obj, group, err = i, groupImage, i.Parse(r.s, r)
		default:
			kind, ok := tables.UnderlayKindOf(name)
			if !ok || !strings.HasSuffix(name, "DEFINITION") {
				r.log.Debug("object skipped", "type", name)
				return true, r.skip()
			}
			u := tables.NewUnderlayDefinition(kind, "", "", "")
			obj, group, err = u, groupUnderlay, u.Parse(r.s, r)
		}
		if err != nil {
			return true, err
		}
		if group == groupImage || group == groupUnderlay {
			if h := obj.Handle(); h != "" {
				r.handles[h] = obj
			}
			r.defs = append(r.defs, definition{group: group, obj: obj})
			return true, nil
		}
		r.record(group, obj)
		return true, nil
	})
}

func (r *reader) parseDictionary() error {
	var (
		dict  dictionary
		name  string
		group bool
	)
	for {
		tag := r.s.LastTag
		switch tag.Code {
		case 5:
			dict.handle, _ = core.NormalizeHandle(tag.AsString())
		case 102:
			group = strings.HasPrefix(tag.AsString(), "{")
		case 330:
			if !group && dict.owner == "" {
				dict.owner, _ = tag.Handle()
			}
		case 3:
			name, _ = tag.Str()
		case 350, 360:
			h, _ := tag.Handle()
			dict.names = append(dict.names, name)
			dict.handles = append(dict.handles, h)
		}
		if !r.s.Next() || r.s.LastTag.Code == 0 {
			break
		}
	}
	r.dicts = append(r.dicts, dict)
	return r.s.Err()
}

// finish 解析句柄引用，按依赖顺序把对象加入文档
func (r *reader) finish() error {
	d := r.d

	// 字典条目给出定义的名称和字典句柄
	for _, dict := range r.dicts {
		root := dict.owner == "" || dict.owner == "0"
		if root && d.dicts[dictRoot] == "" {
			d.dicts[dictRoot] = dict.handle
		}
		for i, h := range dict.handles {
			if root {
				for _, known := range dictNames[1:] {
					if strings.EqualFold(known, dict.names[i]) {
						d.dicts[known] = h
					}
				}
			}
			switch def := r.handles[h].(type) {
			case *tables.ImageDefinition:
				def.SetEntryName(dict.names[i])
			case *tables.UnderlayDefinition:
				def.SetEntryName(dict.names[i])
			}
		}
	}
	for _, def := range r.defs {
		r.record(def.group, def.obj)
	}

	for _, p := range r.deferred {
		p.fn(r.handles[p.handle])
	}
	r.deferred = nil
	r.placeLoose()

	for b, vp := range r.viewports {
		for _, obj := range r.order[groupLayout] {
			if l := obj.(*tables.Layout); l.Block.Get() == b {
				l.SetViewport(vp)
			}
		}
	}

	seed, _ := core.ParseHandle(d.Header.HandleSeed)
	d.counter = max(seed, r.s.MaxHandle()+1, 1)

	for _, reg := range d.tableRegistries() {
		if h := r.tableHandles[reg.(interface{ Name() string }).Name()]; h != "" {
			reg.Base().SetHandle(h)
		}
	}
	d.issueTables()

	errs := []error{
		attachAll(d.AppRegistries, r.order[groupAppID]),
		attachAll(d.TextStyles, r.order[groupStyle]),
		attachAll(d.Linetypes, r.order[groupLinetype]),
		attachAll(d.Layers, r.order[groupLayer]),
		attachAll(d.MLineStyles, r.order[groupMLine]),
		attachAll(d.ImageDefinitions, r.order[groupImage]),
		attachAll(d.UnderlayDefinitions, r.order[groupUnderlay]),
		attachAll(d.UCSs, r.order[groupUCS]),
		attachAll(d.Views, r.order[groupView]),
		attachAll(d.VPorts, r.order[groupVPort]),
		attachAll(d.DimensionStyles, r.order[groupDimStyle]),
		attachAll(d.Blocks, r.order[groupBlock]),
		attachAll(d.Layouts, r.order[groupLayout]),
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	d.ensureDefaults()
	return nil
}

// attachAll 按读取顺序加入注册表，不改动文件中的句柄
func attachAll[T tables.TableObject](reg *tables.Registry[T], list []tables.TableObject) error {
	for _, obj := range list {
		item, ok := obj.(T)
		if !ok {
			continue
		}
		if _, err := reg.Add(item, false); err != nil {
			return fmt.Errorf("%s %q: %w", reg.Name(), item.Name(), err)
		}
	}
	return nil
}
