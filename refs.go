package dxf

import (
	"fmt"

	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/notify"
	"github.com/zooyer/dxfdoc/tables"
)

// check 引用的表对象能否并入注册表，不做修改
func check[T tables.TableObject](reg *tables.Registry[T], v T) error {
	if tables.IsNil(v) || reg.Contains(v.Name()) {
		return nil
	}
	if !tables.IsValidName(v.Name()) {
		return fmt.Errorf("%w: %s %q", tables.ErrInvalidName, reg.Name(), v.Name())
	}
	if home := v.Base().Home(); home != nil && home != any(reg) {
		return fmt.Errorf("%w: %s %q", tables.ErrForeign, reg.Name(), v.Name())
	}
	return nil
}

// absorb 并入注册表，返回注册表中的实例
func absorb[T tables.TableObject](d *Document, reg *tables.Registry[T], v T) (T, bool) {
	if err := check(reg, v); err != nil {
		d.log.Warn("reference rejected", "table", reg.Name(), "err", err)
		return v, false
	}
	added, err := reg.Add(v, false)
	if err != nil {
		d.log.Warn("reference rejected", "table", reg.Name(), "name", v.Name(), "err", err)
		return v, false
	}
	return added, true
}

// link 并入注册表并登记 owner 的引用
func link[T tables.TableObject](d *Document, reg *tables.Registry[T], owner tables.Object, v T) T {
	if tables.IsNil(v) {
		return v
	}
	added, ok := absorb(d, reg, v)
	if ok {
		reg.AddReference(added.Name(), owner)
	}
	return added
}

func unlink[T tables.TableObject](reg *tables.Registry[T], owner tables.Object, v T) {
	if !tables.IsNil(v) {
		reg.RemoveReference(v.Name(), owner)
	}
}

// bind 登记属性当前值的引用并跟踪之后的修改。def 不为 nil 时空值换成默认对象。
func bind[T tables.TableObject](d *Document, reg *tables.Registry[T], owner tables.Object, p *notify.Property[T], def func() T) {
	v := p.Get()
	if tables.IsNil(v) && def != nil {
		v = def()
	}
	p.Init(link(d, reg, owner, v))

	changing := p.Changing.Subscribe(func(c *notify.Change[T]) {
		if tables.IsNil(c.New) {
			if def != nil {
				c.New = def()
			}
			return
		}
		added, ok := absorb(d, reg, c.New)
		if !ok {
			c.Cancel = true
			return
		}
		c.New = added
	})
	changed := p.Changed.Subscribe(func(c notify.Change[T]) {
		unlink(reg, owner, c.Old)
		if !tables.IsNil(c.New) {
			reg.AddReference(c.New.Name(), owner)
		}
	})
	d.onDetach(owner, func() {
		p.Changing.Unsubscribe(changing)
		p.Changed.Unsubscribe(changed)
		unlink(reg, owner, p.Get())
	})
}

// required 属性不允许设为空
func required[T any](d *Document, owner tables.Object, p *notify.Property[T]) {
	tok := p.Changing.Subscribe(func(c *notify.Change[T]) {
		if tables.IsNil(c.New) {
			c.Cancel = true
		}
	})
	d.onDetach(owner, func() { p.Changing.Unsubscribe(tok) })
}

// bindList 集合中的每个表对象都登记引用
func bindList[T interface {
	tables.TableObject
	comparable
}](d *Document, reg *tables.Registry[T], owner tables.Object, l *notify.List[T]) {
	var items []T
	for _, item := range l.Items() {
		if !tables.IsNil(item) {
			items = append(items, link(d, reg, owner, item))
		}
	}
	l.Reset(items...)

	before := l.BeforeAdd.Subscribe(func(c *notify.Change[T]) {
		if tables.IsNil(c.New) {
			c.Cancel = true
			return
		}
		added, ok := absorb(d, reg, c.New)
		c.New, c.Cancel = added, !ok
	})
	after := l.AfterAdd.Subscribe(func(v T) { reg.AddReference(v.Name(), owner) })
	removed := l.AfterRemove.Subscribe(func(v T) { unlink(reg, owner, v) })
	d.onDetach(owner, func() {
		l.BeforeAdd.Unsubscribe(before)
		l.AfterAdd.Unsubscribe(after)
		l.AfterRemove.Unsubscribe(removed)
		for _, v := range l.Items() {
			unlink(reg, owner, v)
		}
	})
}

// bindXData 扩展数据的应用程序登记引用
func (d *Document) bindXData(obj tables.Object) {
	type entry = notify.Entry[string, *tables.XData]

	m := obj.Base().XData()
	for _, e := range m.Entries() {
		if e.Value.Valid() {
			e.Value.App = link(d, d.AppRegistries, obj, e.Value.App)
		}
	}

	before := m.BeforeAdd.Subscribe(func(c *notify.Change[entry]) {
		x := c.New.Value
		if !x.Valid() {
			c.Cancel = true
			return
		}
		app, ok := absorb(d, d.AppRegistries, x.App)
		if !ok {
			c.Cancel = true
			return
		}
		x.App = app
	})
	after := m.AfterAdd.Subscribe(func(e entry) { d.AppRegistries.AddReference(e.Value.App.Name(), obj) })
	removed := m.AfterRemove.Subscribe(func(e entry) {
		if e.Value.Valid() {
			unlink(d.AppRegistries, obj, e.Value.App)
		}
	})
	d.onDetach(obj, func() {
		m.BeforeAdd.Unsubscribe(before)
		m.AfterAdd.Unsubscribe(after)
		m.AfterRemove.Unsubscribe(removed)
		for _, e := range m.Entries() {
			if e.Value.Valid() {
				unlink(d.AppRegistries, obj, e.Value.App)
			}
		}
	})
}

func (d *Document) checkXData(obj tables.Object) error {
	for _, e := range obj.Base().XData().Entries() {
		if !e.Value.Valid() {
			return fmt.Errorf("xdata %q: %w", e.Key, tables.ErrNil)
		}
		if err := check(d.AppRegistries, e.Value.App); err != nil {
			return err
		}
	}
	return nil
}

// 样式覆盖的值可能是文字样式、块或线型

func (d *Document) checkOverride(key entities.DimStyleOverride, v any) error {
	if !key.Valid(v) {
		return fmt.Errorf("dimension style override %d: invalid value %T", key, v)
	}
	switch o := v.(type) {
	case *tables.TextStyle:
		return check(d.TextStyles, o)
	case *tables.Block:
		return check(d.Blocks, o)
	case *tables.Linetype:
		return check(d.Linetypes, o)
	}
	return nil
}

func (d *Document) absorbOverride(v any) (any, bool) {
	switch o := v.(type) {
	case *tables.TextStyle:
		return absorb(d, d.TextStyles, o)
	case *tables.Block:
		if o == nil {
			return o, true
		}
		return absorb(d, d.Blocks, o)
	case *tables.Linetype:
		return absorb(d, d.Linetypes, o)
	}
	return v, true
}

func (d *Document) refOverride(owner tables.Object, v any) {
	switch o := v.(type) {
	case *tables.TextStyle:
		d.TextStyles.AddReference(o.Name(), owner)
	case *tables.Block:
		if o != nil {
			d.Blocks.AddReference(o.Name(), owner)
		}
	case *tables.Linetype:
		d.Linetypes.AddReference(o.Name(), owner)
	}
}

func (d *Document) unrefOverride(owner tables.Object, v any) {
	switch o := v.(type) {
	case *tables.TextStyle:
		unlink(d.TextStyles, owner, o)
	case *tables.Block:
		unlink(d.Blocks, owner, o)
	case *tables.Linetype:
		unlink(d.Linetypes, owner, o)
	}
}

func (d *Document) checkOverrides(m *entities.Overrides) error {
	for _, e := range m.Entries() {
		if err := d.checkOverride(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

// bindOverrides 样式覆盖中的表对象登记引用，空箭头块不登记
func (d *Document) bindOverrides(owner tables.Object, m *entities.Overrides) {
	type entry = notify.Entry[entities.DimStyleOverride, any]

	for _, e := range m.Entries() {
		if v, ok := d.absorbOverride(e.Value); ok {
			m.Init(e.Key, v)
			d.refOverride(owner, v)
		}
	}

	before := m.BeforeAdd.Subscribe(func(c *notify.Change[entry]) {
		if err := d.checkOverride(c.New.Key, c.New.Value); err != nil {
			d.log.Warn("override rejected", "handle", owner.Handle(), "err", err)
			c.Cancel = true
			return
		}
		v, ok := d.absorbOverride(c.New.Value)
		c.New.Value, c.Cancel = v, !ok
	})
	after := m.AfterAdd.Subscribe(func(e entry) { d.refOverride(owner, e.Value) })
	removed := m.AfterRemove.Subscribe(func(e entry) { d.unrefOverride(owner, e.Value) })
	d.onDetach(owner, func() {
		m.BeforeAdd.Unsubscribe(before)
		m.AfterAdd.Unsubscribe(after)
		m.AfterRemove.Unsubscribe(removed)
		for _, e := range m.Entries() {
			d.unrefOverride(owner, e.Value)
		}
	})
}
