package utils

import (
	"math"

	"github.com/zooyer/dxfdoc/core"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
)

// TransformPoint 将局部坐标点经过 Insert 变换转换到父级/世界坐标
func TransformPoint(p core.Point, ins *entities.Insert) core.Point {
	rad := ins.Rotation * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)

	// 1. 缩放
	tx := p.X * ins.Scale.X
	ty := p.Y * ins.Scale.Y
	tz := p.Z * ins.Scale.Z

	// 2. 旋转
	rx := tx*cos - ty*sin
	ry := tx*sin + ty*cos

	// 3. 平移
	return core.Point{
		X: rx + ins.InsertionPoint.X,
		Y: ry + ins.InsertionPoint.Y,
		Z: tz + ins.InsertionPoint.Z,
	}
}

// CombineInserts 嵌套块参照合成一个世界坐标下的块参照。
// 结果是未加入文档的临时对象，不带属性。
func CombineInserts(parent, child *entities.Insert) *entities.Insert {
	ins := entities.NewInsert(child.Block.Get(), TransformPoint(child.InsertionPoint, parent))
	ins.Rotation = parent.Rotation + child.Rotation
	ins.Scale = core.Point{
		X: parent.Scale.X * child.Scale.X,
		Y: parent.Scale.Y * child.Scale.Y,
		Z: parent.Scale.Z * child.Scale.Z,
	}
	return ins
}

// WalkInserts 深度优先遍历块参照，包括块中嵌套的。
// fn 收到原始块参照和它在世界坐标下的等效参照，返回 false 时不再进入该块。
func WalkInserts(list []entities.Entity, fn func(ins, world *entities.Insert) bool) {
	walkInserts(list, nil, map[*tables.Block]bool{}, fn)
}

func walkInserts(list []entities.Entity, parent *entities.Insert, visiting map[*tables.Block]bool, fn func(ins, world *entities.Insert) bool) {
	for _, e := range list {
		ins, ok := e.(*entities.Insert)
		if !ok {
			continue
		}
		world := ins
		if parent != nil {
			world = CombineInserts(parent, ins)
		}
		if !fn(ins, world) {
			continue
		}
		blk := ins.Block.Get()
		if blk == nil || visiting[blk] {
			continue
		}
		visiting[blk] = true
		var children []entities.Entity
		for _, item := range blk.Entities.Items() {
			if child, ok := item.(entities.Entity); ok {
				children = append(children, child)
			}
		}
		walkInserts(children, world, visiting, fn)
		delete(visiting, blk)
	}
}
