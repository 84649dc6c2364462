package dxf

import (
	"errors"
	"fmt"

	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// hooks 注册表加入对象时分配句柄、登记引用，删除时撤销
func hooks[T tables.TableObject](d *Document, wire func(T) error) tables.Hooks[T] {
	return tables.Hooks[T]{
		Attach: func(item T, assign bool) error {
			if err := d.checkXData(item); err != nil {
				return err
			}
			d.issue(item, assign || d.assign)
			if wire != nil {
				if err := wire(item); err != nil {
					d.forget(item)
					return err
				}
			}
			d.bindXData(item)
			return nil
		},
		Detach: func(item T) { d.forget(item) },
	}
}

func (d *Document) setHooks() {
	d.AppRegistries.SetHooks(hooks[*tables.ApplicationRegistry](d, nil))
	d.Linetypes.SetHooks(hooks(d, d.wireLinetype))
	d.TextStyles.SetHooks(hooks[*tables.TextStyle](d, nil))
	d.Layers.SetHooks(hooks(d, d.wireLayer))
	d.DimensionStyles.SetHooks(hooks(d, d.wireDimensionStyle))
	d.Blocks.SetHooks(hooks(d, d.wireBlock))
	d.UCSs.SetHooks(hooks[*tables.UCS](d, nil))
	d.Views.SetHooks(hooks[*tables.View](d, nil))
	d.VPorts.SetHooks(hooks[*tables.VPort](d, nil))
	d.Layouts.SetHooks(hooks(d, d.wireLayout))
	d.MLineStyles.SetHooks(hooks(d, d.wireMLineStyle))
	d.ImageDefinitions.SetHooks(hooks[*tables.ImageDefinition](d, nil))
	d.UnderlayDefinitions.SetHooks(hooks(d, func(u *tables.UnderlayDefinition) error {
		// 三种参考底图各有自己的字典
		u.SetOwner(d.dicts[u.Kind.Dictionary()])
		return nil
	}))
}

func (d *Document) standardTextStyle() *tables.TextStyle { return d.textStyle("Standard") }

func (d *Document) continuous() *tables.Linetype { return d.linetype("Continuous") }

func (d *Document) byLayer() *tables.Linetype { return d.linetype("ByLayer") }

func (d *Document) layerZero() *tables.Layer { return d.layer("0") }

func (d *Document) wireLayer(l *tables.Layer) error {
	if err := check(d.Linetypes, l.Linetype.Get()); err != nil {
		return err
	}
	bind(d, d.Linetypes, l, &l.Linetype, d.continuous)
	return nil
}

// wireLinetype 文字段引用文字样式。修改段的样式需要先移除再加入该段。
func (d *Document) wireLinetype(lt *tables.Linetype) error {
	for _, seg := range lt.Segments.Items() {
		if seg == nil {
			return fmt.Errorf("linetype %q: %w", lt.Name(), tables.ErrNil)
		}
		if err := check(d.TextStyles, seg.Style); err != nil {
			return err
		}
	}
	for _, seg := range lt.Segments.Items() {
		seg.Style = link(d, d.TextStyles, lt, seg.Style)
	}

	l := &lt.Segments
	before := l.BeforeAdd.Subscribe(func(c *notify.Change[*tables.LinetypeSegment]) {
		if c.New == nil {
			c.Cancel = true
			return
		}
		if c.New.Style != nil {
			style, ok := absorb(d, d.TextStyles, c.New.Style)
			c.New.Style, c.Cancel = style, !ok
		}
	})
	after := l.AfterAdd.Subscribe(func(seg *tables.LinetypeSegment) {
		if seg.Style != nil {
			d.TextStyles.AddReference(seg.Style.Name(), lt)
		}
	})
	removed := l.AfterRemove.Subscribe(func(seg *tables.LinetypeSegment) { unlink(d.TextStyles, lt, seg.Style) })
	d.onDetach(lt, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.AfterRemove.Unsubscribe(removed)
		for _, seg := range l.Items() {
			unlink(d.TextStyles, lt, seg.Style)
		}
	})
	return nil
}

// wireMLineStyle 元素引用线型，空线型按 ByLayer 处理
func (d *Document) wireMLineStyle(m *tables.MLineStyle) error {
	for _, e := range m.Elements.Items() {
		if e == nil {
			return fmt.Errorf("mline style %q: %w", m.Name(), tables.ErrNil)
		}
		if err := check(d.Linetypes, e.Linetype); err != nil {
			return err
		}
	}
	for _, e := range m.Elements.Items() {
		if e.Linetype == nil {
			e.Linetype = d.byLayer()
		}
		e.Linetype = link(d, d.Linetypes, m, e.Linetype)
	}

	l := &m.Elements
	before := l.BeforeAdd.Subscribe(func(c *notify.Change[*tables.MLineStyleElement]) {
		if c.New == nil {
			c.Cancel = true
			return
		}
		if c.New.Linetype == nil {
			c.New.Linetype = d.byLayer()
		}
		lt, ok := absorb(d, d.Linetypes, c.New.Linetype)
		c.New.Linetype, c.Cancel = lt, !ok
	})
	after := l.AfterAdd.Subscribe(func(e *tables.MLineStyleElement) { d.Linetypes.AddReference(e.Linetype.Name(), m) })
	removed := l.AfterRemove.Subscribe(func(e *tables.MLineStyleElement) { unlink(d.Linetypes, m, e.Linetype) })
	d.onDetach(m, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.AfterRemove.Unsubscribe(removed)
		for _, e := range l.Items() {
			unlink(d.Linetypes, m, e.Linetype)
		}
	})
	return nil
}

func (d *Document) wireDimensionStyle(s *tables.DimensionStyle) error {
	blocks := []*notify.Property[*tables.Block]{&s.LeaderArrow, &s.Arrow1, &s.Arrow2}
	linetypes := []*notify.Property[*tables.Linetype]{&s.DimLineLinetype, &s.ExtLine1Linetype, &s.ExtLine2Linetype}

	errs := []error{check(d.TextStyles, s.TextStyle.Get())}
	for _, p := range blocks {
		errs = append(errs, check(d.Blocks, p.Get()))
	}
	for _, p := range linetypes {
		errs = append(errs, check(d.Linetypes, p.Get()))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	bind(d, d.TextStyles, s, &s.TextStyle, d.standardTextStyle)
	for _, p := range blocks {
		bind(d, d.Blocks, s, p, nil)
	}
	for _, p := range linetypes {
		bind(d, d.Linetypes, s, p, nil)
	}
	return nil
}

// wireBlock 块的图层、实体和属性定义。实体先全部校验再挂接。
func (d *Document) wireBlock(b *tables.Block) error {
	type attdef = notify.Entry[string, tables.Entity]

	list := blockEntities(b)
	if len(list) != b.Entities.Len() {
		return fmt.Errorf("block %q: %w", b.Name(), ErrUnknownKind)
	}
	for _, e := range list {
		if d.owns(e) {
			continue
		}
		if err := d.validate(b, e); err != nil {
			return err
		}
	}
	for _, e := range b.AttributeDefinitions.Entries() {
		def, ok := e.Value.(*entities.AttributeDefinition)
		if !ok {
			return fmt.Errorf("block %q attribute %q: %w", b.Name(), e.Key, ErrUnknownKind)
		}
		if d.owns(def) {
			continue
		}
		if err := d.validate(b, def); err != nil {
			return err
		}
	}
	if err := check(d.Layers, b.Layer.Get()); err != nil {
		return err
	}

	bind(d, d.Layers, b, &b.Layer, d.layerZero)

	l := &b.Entities
	before := l.BeforeAdd.Subscribe(func(c *notify.Change[tables.Entity]) {
		e, ok := c.New.(entities.Entity)
		if !ok {
			c.Cancel = true
			return
		}
		if err := d.validate(b, e); err != nil {
			d.log.Warn("entity rejected", "block", b.Name(), "err", err)
			c.Cancel = true
		}
	})
	after := l.AfterAdd.Subscribe(func(e tables.Entity) { d.attach(b, e.(entities.Entity)) })
	beforeRemove := l.BeforeRemove.Subscribe(func(c *notify.Change[tables.Entity]) {
		if e, ok := c.Old.(entities.Entity); ok {
			if parent, nested := d.nested[e]; nested && d.owns(parent) {
				d.log.Warn("nested entity is removed with its parent", "handle", e.Handle(), "parent", parent.Handle())
				c.Cancel = true
			}
		}
	})
	removed := l.AfterRemove.Subscribe(func(e tables.Entity) { d.detach(e.(entities.Entity)) })

	defs := &b.AttributeDefinitions
	defBefore := defs.BeforeAdd.Subscribe(func(c *notify.Change[attdef]) {
		def, ok := c.New.Value.(*entities.AttributeDefinition)
		if !ok || d.validate(b, def) != nil {
			c.Cancel = true
		}
	})
	defAfter := defs.AfterAdd.Subscribe(func(e attdef) { d.attach(b, e.Value.(entities.Entity)) })
	defRemoved := defs.AfterRemove.Subscribe(func(e attdef) { d.detach(e.Value.(entities.Entity)) })

	d.onDetach(b, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.BeforeRemove.Unsubscribe(beforeRemove)
		l.AfterRemove.Unsubscribe(removed)
		defs.BeforeAdd.Unsubscribe(defBefore)
		defs.AfterAdd.Unsubscribe(defAfter)
		defs.AfterRemove.Unsubscribe(defRemoved)
		for _, e := range blockEntities(b) {
			d.detach(e)
		}
		for _, e := range defs.Entries() {
			d.detach(e.Value.(entities.Entity))
		}
	})

	for _, e := range list {
		if !d.owns(e) {
			d.attach(b, e)
		}
	}
	for _, e := range defs.Entries() {
		d.attach(b, e.Value.(entities.Entity))
	}
	return nil
}

// wireLayout 布局引用它的块；没有块的新布局创建 *Paper_Space<n>。
// 删除布局时连同块一起删除。
func (d *Document) wireLayout(l *tables.Layout) error {
	blk := l.Block.Get()
	if blk == nil {
		if l.IsModel() {
			blk = d.ensureBlock(tables.ModelSpace)
		} else {
			blk = tables.NewBlock(d.nextPaperBlock())
		}
		l.Block.Init(blk)
	}
	if err := check(d.Blocks, blk); err != nil {
		return err
	}

	d.onDetach(l, func() {
		blk := l.Block.Get()
		if blk == nil || l.IsModel() {
			return
		}
		blk.SetLayoutHandle("")
		if !d.Blocks.Drop(blk.Name()) {
			d.log.Warn("layout block still referenced", "layout", l.Name(), "block", blk.Name())
		}
	})
	bind(d, d.Blocks, l, &l.Block, nil)
	required(d, l, &l.Block)

	if blk := l.Block.Get(); blk != nil {
		blk.SetLayoutHandle(l.Handle())
	}
	return nil
}
