package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"github.com/zooyer/golib/xos"

	dxf "github.com/zooyer/dxfdoc"
	"github.com/zooyer/dxfdoc/entities"
	"github.com/zooyer/dxfdoc/tables"
	"github.com/zooyer/dxfdoc/utils"
)

const reportHeader = "块名,图层,X,Y,旋转,嵌套,属性\n"

// runReport 拖放模式：每个文件生成同名的 .csv 报表
func runReport(cmd *cobra.Command, args []string) error {
	if dragged() {
		defer xos.PauseExit()
	}

	if len(args) == 0 {
		path, err := zenity.SelectFile(
			zenity.Title("选择 DXF 文件"),
			zenity.FileFilters{{Name: "DXF", Patterns: []string{"*.dxf"}, CaseFold: true}},
		)
		if errors.Is(err, zenity.ErrCanceled) {
			return cmd.Help()
		}
		if err != nil {
			return err
		}
		args = []string{path}
	}

	for _, path := range args {
		doc, err := open(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		filename := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
		n, err := writeReport(doc, filename)
		if err != nil {
			return err
		}
		fmt.Println(styleTitle.Render(filepath.Base(path)), styleDim.Render("→"), filename, styleNumber.Render(fmt.Sprint(n)), "个块参照")
	}
	return nil
}

// writeReport 按块名、坐标排序写出所有块参照（含嵌套）
func writeReport(doc *dxf.Document, filename string) (int, error) {
	type row struct {
		block, layer string
		ins, world   *entities.Insert
		nested       bool
	}

	var rows []row
	utils.WalkInserts(doc.Entities(), func(ins, world *entities.Insert) bool {
		rows = append(rows, row{
			block:  tables.NameOf(ins.Block.Get(), ""),
			layer:  tables.NameOf(ins.Layer.Get(), "0"),
			ins:    ins,
			world:  world,
			nested: ins != world,
		})
		return true
	})

	// 从左到右，从上到下
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].block != rows[j].block {
			return rows[i].block < rows[j].block
		}
		if rows[i].world.InsertionPoint.X != rows[j].world.InsertionPoint.X {
			return rows[i].world.InsertionPoint.X < rows[j].world.InsertionPoint.X
		}
		return rows[i].world.InsertionPoint.Y > rows[j].world.InsertionPoint.Y
	})

	if err := os.WriteFile(filename, []byte(reportHeader), 0644); err != nil {
		return 0, err
	}
	for _, r := range rows {
		attrs := utils.GetAttrs(r.ins)
		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+"="+attrs[k])
		}

		line := fmt.Sprintf("%s,%s,%.2f,%.2f,%.1f,%t,%q\n",
			r.block, r.layer, r.world.InsertionPoint.X, r.world.InsertionPoint.Y, r.world.Rotation, r.nested,
			strings.Join(pairs, ";"),
		)
		if err := xos.AppendFile(filename, []byte(line), 0644); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}
