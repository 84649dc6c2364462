package dxf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// owns 对象是否已加入本文档
func (d *Document) owns(obj tables.Object) bool {
	return !tables.IsNil(obj) && obj.Base().Home() == any(d)
}

func as[T entities.Entity](e entities.Entity) (T, error) {
	t, ok := e.(T)
	if !ok {
		return t, fmt.Errorf("%w: %s implemented by %T", ErrUnknownKind, e.Kind(), e)
	}
	return t, nil
}

// validate 检查实体和它的嵌套实体能否加入 block，不做任何修改
func (d *Document) validate(block *tables.Block, e entities.Entity) error {
	if tables.IsNil(e) {
		return &GraphError{Op: "attach", Err: ErrNilEntity}
	}
	if e.Entity().Home() != nil {
		return &GraphError{Op: "attach", Handle: e.Handle(), Err: ErrAttached}
	}
	if err := d.validateEntity(block, e, map[any]bool{e: true}); err != nil {
		return &GraphError{Op: "attach", Handle: e.Handle(), Err: err}
	}
	return nil
}

func (d *Document) validateEntity(block *tables.Block, e entities.Entity, seen map[any]bool) error {
	base := e.Entity()
	errs := []error{
		check(d.Layers, base.Layer.Get()),
		check(d.Linetypes, base.Linetype.Get()),
		d.checkXData(e),
	}

	switch e.Kind() {
	case entities.KindLine, entities.KindCircle, entities.KindArc, entities.KindPoint, entities.KindLwPolyline:
	case entities.KindText:
		t, err := as[*entities.Text](e)
		if err != nil {
			return err
		}
		errs = append(errs, check(d.TextStyles, t.Style.Get()))
	case entities.KindMText:
		t, err := as[*entities.MText](e)
		if err != nil {
			return err
		}
		errs = append(errs, check(d.TextStyles, t.Style.Get()))
	case entities.KindAttributeDefinition:
		a, err := as[*entities.AttributeDefinition](e)
		if err != nil {
			return err
		}
		errs = append(errs, check(d.TextStyles, a.Style.Get()))
	case entities.KindAttribute:
		return fmt.Errorf("%w: attributes are added through an insert", ErrOwnership)
	case entities.KindInsert:
		ins, err := as[*entities.Insert](e)
		if err != nil {
			return err
		}
		blk := ins.Block.Get()
		if blk == nil {
			return fmt.Errorf("insert without block: %w", tables.ErrNil)
		}
		errs = append(errs, d.checkBlock(blk, seen))
		for _, a := range ins.Attributes.Items() {
			errs = append(errs, d.validateAttribute(ins, a))
		}
	case entities.KindDimension:
		dim, err := as[*entities.Dimension](e)
		if err != nil {
			return err
		}
		errs = append(errs,
			check(d.DimensionStyles, dim.Style.Get()),
			d.checkBlock(dim.Block.Get(), seen),
			d.checkOverrides(&dim.StyleOverrides),
		)
	case entities.KindLeader:
		l, err := as[*entities.Leader](e)
		if err != nil {
			return err
		}
		errs = append(errs,
			check(d.DimensionStyles, l.Style.Get()),
			d.checkOverrides(&l.StyleOverrides),
			d.validateNested(block, e, l.Annotation.Get(), seen),
		)
	case entities.KindHatch:
		h, err := as[*entities.Hatch](e)
		if err != nil {
			return err
		}
		for _, p := range h.BoundaryPaths.Items() {
			if p == nil {
				return fmt.Errorf("hatch boundary path: %w", tables.ErrNil)
			}
			for _, child := range p.Entities.Items() {
				errs = append(errs, d.validateNested(block, e, child, seen))
			}
		}
	case entities.KindViewport:
		vp, err := as[*entities.Viewport](e)
		if err != nil {
			return err
		}
		for _, l := range vp.FrozenLayers.Items() {
			errs = append(errs, check(d.Layers, l))
		}
		errs = append(errs, d.validateNested(block, e, vp.ClippingBoundary.Get(), seen))
	case entities.KindPolyfaceMesh:
		p, err := as[*entities.PolyfaceMesh](e)
		if err != nil {
			return err
		}
		for _, l := range p.FaceLayers() {
			errs = append(errs, check(d.Layers, l))
		}
	case entities.KindImage:
		img, err := as[*entities.Image](e)
		if err != nil {
			return err
		}
		if img.Definition.Get() == nil {
			return fmt.Errorf("image without definition: %w", tables.ErrNil)
		}
		errs = append(errs, check(d.ImageDefinitions, img.Definition.Get()))
	case entities.KindUnderlay:
		u, err := as[*entities.Underlay](e)
		if err != nil {
			return err
		}
		if u.Definition.Get() == nil {
			return fmt.Errorf("underlay without definition: %w", tables.ErrNil)
		}
		errs = append(errs, check(d.UnderlayDefinitions, u.Definition.Get()))
	case entities.KindMLine:
		m, err := as[*entities.MLine](e)
		if err != nil {
			return err
		}
		errs = append(errs, check(d.MLineStyles, m.Style.Get()))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, e.Kind())
	}
	return errors.Join(errs...)
}

// validateNested 嵌套实体必须与父实体在同一个块中：已有归属的必须属于该块，
// 没有归属的会被收养
func (d *Document) validateNested(block *tables.Block, parent, child entities.Entity, seen map[any]bool) error {
	if tables.IsNil(child) {
		return nil
	}
	if seen[child] {
		return fmt.Errorf("%w: %s nested in itself", ErrOwnership, child.Kind())
	}
	seen[child] = true

	base := child.Entity()
	if home := base.Home(); home != nil && home != any(d) {
		return fmt.Errorf("%s %s: %w", child.Kind(), child.Handle(), ErrAttached)
	}
	if owner := base.Owner(); owner != "" && owner != block.Handle() {
		return fmt.Errorf("%w: %s %s is owned by %s", ErrOwnership, child.Kind(), child.Handle(), owner)
	}
	if p, ok := d.nested[child]; ok && p != parent && d.owns(p) {
		return fmt.Errorf("%w: %s %s is nested in %s", ErrOwnership, child.Kind(), child.Handle(), p.Handle())
	}
	if d.owns(child) {
		return nil
	}
	return d.validateEntity(block, child, seen)
}

// checkBlock 被引用的块如果还没加入文档，它的实体也要能加入
func (d *Document) checkBlock(blk *tables.Block, seen map[any]bool) error {
	if err := check(d.Blocks, blk); err != nil {
		return err
	}
	if blk == nil || d.Blocks.Contains(blk.Name()) || seen[blk] {
		return nil
	}
	seen[blk] = true
	for _, e := range blockEntities(blk) {
		if e.Entity().Home() != nil {
			return fmt.Errorf("block %q: %s %s: %w", blk.Name(), e.Kind(), e.Handle(), ErrAttached)
		}
		if err := d.validateEntity(blk, e, seen); err != nil {
			return err
		}
	}
	return check(d.Layers, blk.Layer.Get())
}

func (d *Document) validateAttribute(ins *entities.Insert, a *entities.Attrib) error {
	if a == nil {
		return fmt.Errorf("attribute: %w", ErrNilEntity)
	}
	base := a.Entity()
	if base.Home() != nil && base.Owner() != ins.Handle() {
		return fmt.Errorf("attribute %s: %w", a.Handle(), ErrAttached)
	}
	if owner := base.Owner(); owner != "" && owner != ins.Handle() {
		return fmt.Errorf("%w: attribute %s is owned by %s", ErrOwnership, a.Handle(), owner)
	}
	return errors.Join(
		check(d.Layers, base.Layer.Get()),
		check(d.Linetypes, base.Linetype.Get()),
		check(d.TextStyles, a.Style.Get()),
		d.checkXData(a),
	)
}

// attach 实体加入 block，调用前必须已经校验
func (d *Document) attach(block *tables.Block, e entities.Entity) {
	if d.owns(e) {
		return
	}
	d.issue(e, d.assign)
	base := e.Entity()
	base.SetOwner(block.Handle())
	base.SetHome(d)
	base.SetPaperSpace(block.IsPaperSpace())
	d.wire(block, e)
}

func (d *Document) attachAttribute(ins *entities.Insert, a *entities.Attrib) {
	if d.owns(a) {
		return
	}
	d.issue(a, d.assign)
	base := a.Entity()
	base.SetOwner(ins.Handle())
	base.SetHome(d)
	base.SetPaperSpace(ins.PaperSpace())
	d.wire(nil, a)
}

// wire 按实体类型登记引用并订阅修改，最后是所有实体共有的图层、线型和扩展数据
func (d *Document) wire(block *tables.Block, e entities.Entity) {
	switch e.Kind() {
	case entities.KindLine, entities.KindCircle, entities.KindArc, entities.KindPoint, entities.KindLwPolyline:
	case entities.KindText:
		t := e.(*entities.Text)
		bind(d, d.TextStyles, e, &t.Style, d.standardTextStyle)
	case entities.KindMText:
		t := e.(*entities.MText)
		bind(d, d.TextStyles, e, &t.Style, d.standardTextStyle)
	case entities.KindAttributeDefinition:
		a := e.(*entities.AttributeDefinition)
		bind(d, d.TextStyles, e, &a.Style, d.standardTextStyle)
	case entities.KindAttribute:
		a := e.(*entities.Attrib)
		bind(d, d.TextStyles, e, &a.Style, d.standardTextStyle)
	case entities.KindInsert:
		d.wireInsert(e.(*entities.Insert))
	case entities.KindDimension:
		dim := e.(*entities.Dimension)
		d.dimensionBlock(dim)
		bind(d, d.DimensionStyles, e, &dim.Style, d.standardDimensionStyle)
		bind(d, d.Blocks, e, &dim.Block, nil)
		d.bindOverrides(e, &dim.StyleOverrides)
	case entities.KindLeader:
		l := e.(*entities.Leader)
		bind(d, d.DimensionStyles, e, &l.Style, d.standardDimensionStyle)
		d.bindOverrides(e, &l.StyleOverrides)
		d.bindNested(block, e, &l.Annotation)
	case entities.KindHatch:
		d.wireHatch(block, e.(*entities.Hatch))
	case entities.KindViewport:
		vp := e.(*entities.Viewport)
		bindList(d, d.Layers, e, &vp.FrozenLayers)
		d.bindNested(block, e, &vp.ClippingBoundary)
	case entities.KindPolyfaceMesh:
		p := e.(*entities.PolyfaceMesh)
		var linked []*tables.Layer
		for _, f := range p.Faces {
			if f != nil && f.Layer != nil {
				f.Layer = link(d, d.Layers, e, f.Layer)
				linked = append(linked, f.Layer)
			}
		}
		d.onDetach(e, func() {
			for _, l := range linked {
				unlink(d.Layers, e, l)
			}
		})
	case entities.KindImage:
		img := e.(*entities.Image)
		required(d, e, &img.Definition)
		bind(d, d.ImageDefinitions, e, &img.Definition, nil)
	case entities.KindUnderlay:
		u := e.(*entities.Underlay)
		required(d, e, &u.Definition)
		bind(d, d.UnderlayDefinitions, e, &u.Definition, nil)
	case entities.KindMLine:
		m := e.(*entities.MLine)
		bind(d, d.MLineStyles, e, &m.Style, d.standardMLineStyle)
	default:
		d.log.Error("entity kind not wired", "kind", e.Kind(), "handle", e.Handle())
	}

	base := e.Entity()
	bind(d, d.Layers, e, &base.Layer, d.layerZero)
	bind(d, d.Linetypes, e, &base.Linetype, d.byLayer)
	d.bindXData(e)
}

func (d *Document) standardDimensionStyle() *tables.DimensionStyle { return d.dimensionStyle("Standard") }

func (d *Document) standardMLineStyle() *tables.MLineStyle { return d.mlineStyle("Standard") }

// dimensionBlock 标注显示块统一放在 *D 命名空间：没有块时按选项生成，名称不符时改名
func (d *Document) dimensionBlock(dim *entities.Dimension) {
	blk := dim.Block.Get()
	switch {
	case blk == nil && d.opts.BuildDimensionBlocks:
		dim.Block.Init(dim.BuildBlock(d.nextDimBlock()))
	case blk != nil && !isDimBlock(blk.Name()):
		name, old := d.nextDimBlock(), blk.Name()
		var err error
		if exist, ok := d.Blocks.Get(old); ok && exist == blk {
			err = d.Blocks.Rename(old, name)
		} else {
			err = blk.SetName(name)
		}
		if err != nil {
			d.log.Warn("rename dimension block", "block", old, "err", err)
			return
		}
		d.log.Debug("dimension block renamed", "from", old, "to", name)
	}
}

func (d *Document) wireInsert(ins *entities.Insert) {
	required(d, ins, &ins.Block)
	bind(d, d.Blocks, ins, &ins.Block, nil)

	l := &ins.Attributes
	for _, a := range l.Items() {
		d.attachAttribute(ins, a)
	}
	before := l.BeforeAdd.Subscribe(func(c *notify.Change[*entities.Attrib]) {
		if err := d.validateAttribute(ins, c.New); err != nil {
			d.log.Warn("attribute rejected", "insert", ins.Handle(), "err", err)
			c.Cancel = true
		}
	})
	after := l.AfterAdd.Subscribe(func(a *entities.Attrib) { d.attachAttribute(ins, a) })
	removed := l.AfterRemove.Subscribe(func(a *entities.Attrib) { d.detach(a) })
	d.onDetach(ins, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.AfterRemove.Unsubscribe(removed)
		for _, a := range l.Items() {
			d.detach(a)
		}
	})
}

// wireHatch 边界实体与填充在同一个块中，随填充一起删除
func (d *Document) wireHatch(block *tables.Block, h *entities.Hatch) {
	paths := make(map[*entities.HatchBoundaryPath]func())
	bindPath := func(p *entities.HatchBoundaryPath) {
		for _, child := range p.Entities.Items() {
			d.adopt(block, h, child)
		}
		l := &p.Entities
		before := l.BeforeAdd.Subscribe(func(c *notify.Change[entities.Entity]) {
			if err := d.validateNested(block, h, c.New, map[any]bool{h: true}); err != nil || tables.IsNil(c.New) {
				d.log.Warn("boundary entity rejected", "hatch", h.Handle(), "err", err)
				c.Cancel = true
			}
		})
		after := l.AfterAdd.Subscribe(func(child entities.Entity) { d.adopt(block, h, child) })
		removed := l.AfterRemove.Subscribe(func(child entities.Entity) { d.release(block, child) })
		paths[p] = func() {
			l.BeforeAdd.Unsubscribe(before)
			l.AfterAdd.Unsubscribe(after)
			l.AfterRemove.Unsubscribe(removed)
			for _, child := range l.Items() {
				d.release(block, child)
			}
		}
	}
	for _, p := range h.BoundaryPaths.Items() {
		bindPath(p)
	}

	l := &h.BoundaryPaths
	before := l.BeforeAdd.Subscribe(func(c *notify.Change[*entities.HatchBoundaryPath]) {
		if c.New == nil {
			c.Cancel = true
			return
		}
		seen := map[any]bool{h: true}
		for _, child := range c.New.Entities.Items() {
			if err := d.validateNested(block, h, child, seen); err != nil {
				d.log.Warn("boundary path rejected", "hatch", h.Handle(), "err", err)
				c.Cancel = true
				return
			}
		}
	})
	after := l.AfterAdd.Subscribe(bindPath)
	removed := l.AfterRemove.Subscribe(func(p *entities.HatchBoundaryPath) {
		if unbind, ok := paths[p]; ok {
			unbind()
			delete(paths, p)
		}
	})
	d.onDetach(h, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.AfterRemove.Unsubscribe(removed)
		for p, unbind := range paths {
			unbind()
			delete(paths, p)
		}
	})
}

// bindNested 属性中的嵌套实体与父实体同块，替换时旧实体从文档删除
func (d *Document) bindNested(block *tables.Block, parent entities.Entity, p *notify.Property[entities.Entity]) {
	if child := p.Get(); !tables.IsNil(child) {
		d.adopt(block, parent, child)
	}
	changing := p.Changing.Subscribe(func(c *notify.Change[entities.Entity]) {
		if err := d.validateNested(block, parent, c.New, map[any]bool{parent: true}); err != nil {
			d.log.Warn("nested entity rejected", "parent", parent.Handle(), "err", err)
			c.Cancel = true
		}
	})
	changed := p.Changed.Subscribe(func(c notify.Change[entities.Entity]) {
		if !tables.IsNil(c.Old) && c.Old != c.New {
			d.release(block, c.Old)
		}
		if !tables.IsNil(c.New) {
			d.adopt(block, parent, c.New)
		}
	})
	d.onDetach(parent, func() {
		p.Changing.Unsubscribe(changing)
		p.Changed.Unsubscribe(changed)
		if child := p.Get(); !tables.IsNil(child) {
			d.release(block, child)
		}
	})
}

// adopt 嵌套实体加入父实体所在的块
func (d *Document) adopt(block *tables.Block, parent, child entities.Entity) {
	if tables.IsNil(child) {
		return
	}
	d.nested[child] = parent
	switch {
	case d.owns(child):
	case block.Entities.Contains(child):
		d.attach(block, child)
	default:
		if _, ok := block.Entities.Add(child); !ok || !d.owns(child) {
			d.log.Warn("nested entity not adopted", "parent", parent.Handle(), "kind", child.Kind())
		}
	}
}

// release 父实体不再引用时把嵌套实体从块和文档中删除
func (d *Document) release(block *tables.Block, child entities.Entity) {
	if tables.IsNil(child) {
		return
	}
	delete(d.nested, child)
	if !d.owns(child) {
		return
	}
	// 块已经退订时 Remove 不会摘除
	if !block.Entities.Remove(child) || d.owns(child) {
		d.detach(child)
	}
}

// detach 撤销实体的全部引用并清空句柄和归属
func (d *Document) detach(e entities.Entity) {
	if !d.owns(e) {
		return
	}
	d.forget(e)
	delete(d.nested, e)
	tables.Release(e)
}

// AddEntity 加入模型空间，分配新句柄
func (d *Document) AddEntity(e entities.Entity) error {
	return d.AddEntityTo(nil, e, true)
}

// AddEntityTo 加入指定的块，block 为 nil 时加入模型空间。
// 块不在文档中时先加入块；同名块已存在时加入已有的块。
// 校验失败时返回 *GraphError，文档不变。
func (d *Document) AddEntityTo(block *tables.Block, e entities.Entity, assign bool) error {
	if block == nil {
		block = d.ModelSpace()
	}
	if exist, ok := d.Blocks.Get(block.Name()); ok {
		block = exist
	} else if err := d.checkBlock(block, map[any]bool{}); err != nil {
		return &GraphError{Op: "attach", Handle: tables.HandleOf(e), Err: err}
	}
	if err := d.validate(block, e); err != nil {
		return err
	}

	d.assign = assign
	defer func() { d.assign = false }()

	block, err := d.Blocks.Add(block, assign)
	if err != nil {
		return &GraphError{Op: "attach", Handle: e.Handle(), Err: err}
	}
	if d.owns(e) {
		return nil
	}
	if def, ok := e.(*entities.AttributeDefinition); ok {
		block.AttributeDefinitions.Set(strings.ToUpper(def.Tag), def)
	} else {
		block.Entities.Add(e)
	}
	if !d.owns(e) {
		return &GraphError{Op: "attach", Handle: e.Handle(), Err: ErrRejected}
	}
	return nil
}

// RemoveEntity 从所在的块删除。嵌套实体随父实体删除，属性通过 RemoveAttribute 删除。
func (d *Document) RemoveEntity(e entities.Entity) error {
	if tables.IsNil(e) {
		return &GraphError{Op: "remove", Err: ErrNilEntity}
	}
	if !d.owns(e) {
		return &GraphError{Op: "remove", Handle: e.Handle(), Err: ErrNotAttached}
	}
	handle := e.Handle()
	if parent, ok := d.nested[e]; ok && d.owns(parent) {
		return &GraphError{Op: "remove", Handle: handle, Err: fmt.Errorf("%w: nested in %s", ErrOwnership, parent.Handle())}
	}
	if a, ok := e.(*entities.Attrib); ok {
		ins, _ := d.objects[a.Owner()].(*entities.Insert)
		if ins == nil || !ins.Attributes.Remove(a) {
			return &GraphError{Op: "remove", Handle: handle, Err: ErrRejected}
		}
		return nil
	}

	block, _ := d.objects[e.Owner()].(*tables.Block)
	if block == nil {
		return &GraphError{Op: "remove", Handle: handle, Err: ErrNotAttached}
	}
	removed := false
	if def, ok := e.(*entities.AttributeDefinition); ok {
		for _, entry := range block.AttributeDefinitions.Entries() {
			if entry.Value == tables.Entity(def) {
				removed = block.AttributeDefinitions.Delete(entry.Key)
				break
			}
		}
	} else {
		removed = block.Entities.Remove(e)
	}
	if !removed {
		return &GraphError{Op: "remove", Handle: handle, Err: ErrRejected}
	}
	return nil
}

// setProperty 显式修改引用属性，与直接调用 Property.Set 走同一条路径
func setProperty[T tables.TableObject](op string, owner tables.Object, reg *tables.Registry[T], p *notify.Property[T], v T) error {
	if err := check(reg, v); err != nil {
		return &GraphError{Op: op, Handle: owner.Handle(), Err: err}
	}
	if _, ok := p.Set(v); !ok {
		return &GraphError{Op: op, Handle: owner.Handle(), Err: ErrRejected}
	}
	return nil
}

// SetLayer 修改实体的图层，nil 表示图层 "0"
func (d *Document) SetLayer(e entities.Entity, layer *tables.Layer) error {
	if tables.IsNil(e) {
		return &GraphError{Op: "set layer", Err: ErrNilEntity}
	}
	return setProperty("set layer", e, d.Layers, &e.Entity().Layer, layer)
}

// SetLinetype 修改实体的线型，nil 表示 ByLayer
func (d *Document) SetLinetype(e entities.Entity, lt *tables.Linetype) error {
	if tables.IsNil(e) {
		return &GraphError{Op: "set linetype", Err: ErrNilEntity}
	}
	return setProperty("set linetype", e, d.Linetypes, &e.Entity().Linetype, lt)
}

// SetTextStyle 修改文字、多行文字、属性和属性定义的样式
func (d *Document) SetTextStyle(e entities.Entity, style *tables.TextStyle) error {
	const op = "set text style"
	var p *notify.Property[*tables.TextStyle]
	switch t := e.(type) {
	case *entities.Text:
		p = &t.Style
	case *entities.MText:
		p = &t.Style
	case *entities.Attrib:
		p = &t.Style
	case *entities.AttributeDefinition:
		p = &t.Style
	default:
		return &GraphError{Op: op, Handle: tables.HandleOf(e), Err: ErrUnknownKind}
	}
	return setProperty(op, e, d.TextStyles, p, style)
}

// SetDimensionStyle 修改标注或引线的样式
func (d *Document) SetDimensionStyle(e entities.Entity, style *tables.DimensionStyle) error {
	const op = "set dimension style"
	var p *notify.Property[*tables.DimensionStyle]
	switch t := e.(type) {
	case *entities.Dimension:
		p = &t.Style
	case *entities.Leader:
		p = &t.Style
	default:
		return &GraphError{Op: op, Handle: tables.HandleOf(e), Err: ErrUnknownKind}
	}
	return setProperty(op, e, d.DimensionStyles, p, style)
}

// SetBlock 修改块参照引用的块
func (d *Document) SetBlock(ins *entities.Insert, blk *tables.Block) error {
	if ins == nil {
		return &GraphError{Op: "set block", Err: ErrNilEntity}
	}
	if blk != nil && !d.Blocks.Contains(blk.Name()) {
		if err := d.checkBlock(blk, map[any]bool{}); err != nil {
			return &GraphError{Op: "set block", Handle: ins.Handle(), Err: err}
		}
	}
	return setProperty("set block", ins, d.Blocks, &ins.Block, blk)
}

func overridesOf(e entities.Entity) *entities.Overrides {
	switch t := e.(type) {
	case *entities.Dimension:
		return &t.StyleOverrides
	case *entities.Leader:
		return &t.StyleOverrides
	}
	return nil
}

// SetStyleOverride 设置标注或引线的样式覆盖。箭头块为 nil 表示默认箭头，不产生引用。
func (d *Document) SetStyleOverride(e entities.Entity, key entities.DimStyleOverride, value any) error {
	const op = "set style override"
	m := overridesOf(e)
	if m == nil {
		return &GraphError{Op: op, Handle: tables.HandleOf(e), Err: ErrUnknownKind}
	}
	if err := d.checkOverride(key, value); err != nil {
		return &GraphError{Op: op, Handle: e.Handle(), Err: err}
	}
	if _, ok := m.Set(key, value); !ok {
		return &GraphError{Op: op, Handle: e.Handle(), Err: ErrRejected}
	}
	return nil
}

// RemoveStyleOverride 删除一个样式覆盖
func (d *Document) RemoveStyleOverride(e entities.Entity, key entities.DimStyleOverride) bool {
	if m := overridesOf(e); m != nil {
		return m.Delete(key)
	}
	return false
}

// AddAttribute 给块参照加入属性
func (d *Document) AddAttribute(ins *entities.Insert, a *entities.Attrib) error {
	const op = "add attribute"
	if ins == nil {
		return &GraphError{Op: op, Err: ErrNilEntity}
	}
	if err := d.validateAttribute(ins, a); err != nil {
		return &GraphError{Op: op, Handle: ins.Handle(), Err: err}
	}
	if _, ok := ins.Attributes.Add(a); !ok {
		return &GraphError{Op: op, Handle: ins.Handle(), Err: ErrRejected}
	}
	return nil
}

// RemoveAttribute 删除块参照上的属性
func (d *Document) RemoveAttribute(ins *entities.Insert, a *entities.Attrib) bool {
	if ins == nil || a == nil {
		return false
	}
	return ins.Attributes.Remove(a)
}

// AddXData 加入扩展数据，未知的应用程序自动注册
func (d *Document) AddXData(obj tables.Object, x *tables.XData) error {
	const op = "add xdata"
	if tables.IsNil(obj) {
		return &GraphError{Op: op, Err: tables.ErrNil}
	}
	if !x.Valid() {
		return &GraphError{Op: op, Handle: obj.Handle(), Err: fmt.Errorf("invalid xdata: %w", tables.ErrNil)}
	}
	if err := check(d.AppRegistries, x.App); err != nil {
		return &GraphError{Op: op, Handle: obj.Handle(), Err: err}
	}
	if _, ok := obj.Base().AddXData(x); !ok {
		return &GraphError{Op: op, Handle: obj.Handle(), Err: ErrRejected}
	}
	return nil
}

// RemoveXData 删除某个应用程序的扩展数据
func (d *Document) RemoveXData(obj tables.Object, app string) bool {
	if tables.IsNil(obj) {
		return false
	}
	return obj.Base().RemoveXData(app)
}
