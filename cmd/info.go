package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	dxf "github.com/zooyer/dxfdoc"
	"github.com/zooyer/dxfdoc/core"
)

// Summary info 命令的输出
type Summary struct {
	File     string         `yaml:"file"`
	Version  string         `yaml:"version"`
	CodePage string         `yaml:"codepage"`
	Seed     string         `yaml:"handseed"`
	Objects  int            `yaml:"objects"`
	Tables   map[string]int `yaml:"tables"`
	Entities map[string]int `yaml:"entities"`
	Layouts  []string       `yaml:"layouts"`
}

func summarize(path string, doc *dxf.Document) Summary {
	s := Summary{
		File:     path,
		Version:  doc.Version().String(),
		CodePage: doc.Header.CodePage,
		Seed:     doc.Header.HandleSeed,
		Objects:  doc.Len(),
		Tables: map[string]int{
			"APPID":        doc.AppRegistries.Len(),
			"LTYPE":        doc.Linetypes.Len(),
			"LAYER":        doc.Layers.Len(),
			"STYLE":        doc.TextStyles.Len(),
			"DIMSTYLE":     doc.DimensionStyles.Len(),
			"BLOCK_RECORD": doc.Blocks.Len(),
			"UCS":          doc.UCSs.Len(),
			"VIEW":         doc.Views.Len(),
			"VPORT":        doc.VPorts.Len(),
			"MLINESTYLE":   doc.MLineStyles.Len(),
			"IMAGEDEF":     doc.ImageDefinitions.Len(),
			"UNDERLAYDEF":  doc.UnderlayDefinitions.Len(),
		},
		Entities: make(map[string]int),
		Layouts:  doc.Layouts.Names(),
	}
	for _, e := range doc.AllEntities() {
		s.Entities[e.Kind().String()]++
	}
	return s
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "显示版本、表和实体统计",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := open(args[0])
		if err != nil {
			return err
		}
		s := summarize(args[0], doc)

		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(s); err != nil {
				return err
			}
			return enc.Close()
		}

		fmt.Println(styleTitle.Render(s.File))
		fmt.Println(styleKey.Render("version"), s.Version)
		fmt.Println(styleKey.Render("codepage"), s.CodePage)
		fmt.Println(styleKey.Render("handseed"), s.Seed)
		fmt.Println(styleKey.Render("objects"), styleNumber.Render(fmt.Sprint(s.Objects)))
		printCounts("tables", s.Tables)
		printCounts("entities", s.Entities)
		fmt.Println(styleKey.Render("layouts"), s.Layouts)
		return nil
	},
}

func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println(styleTitle.Render(title))
	for _, k := range keys {
		fmt.Println("  "+styleKey.Render(k), styleNumber.Render(fmt.Sprint(counts[k])))
	}
}

var checkCmd = &cobra.Command{
	Use:   "check <file...>",
	Short: "只读取版本，判断文件能否打开",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			v, binary, err := dxf.CheckFileVersion(path)
			format := "text"
			if binary {
				format = "binary"
			}
			var verr *dxf.VersionError
			switch {
			case errors.As(err, &verr):
				failed++
				fmt.Println(renderBool(false), path, styleDim.Render(verr.Error()))
			case err != nil:
				return err
			default:
				fmt.Println(renderBool(true), path, v, styleDim.Render(format))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d file(s) not supported", failed)
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "在文本和二进制格式、不同版本之间转换",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := open(args[0])
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("version"); name != "" {
			v, err := core.ParseVersion(name)
			if err != nil || !v.Supported() {
				return &dxf.VersionError{Version: name}
			}
			doc.Header.Version = v
		}
		binary, _ := cmd.Flags().GetBool("binary")
		if err := doc.SaveFile(args[1], binary); err != nil {
			return err
		}
		logger.Info("converted", "from", args[0], "to", args[1], "version", doc.Version(), "binary", binary)
		return nil
	},
}

func init() {
	infoCmd.Flags().Bool("yaml", false, "以 YAML 输出")
	convertCmd.Flags().Bool("binary", false, "写出二进制 DXF")
	convertCmd.Flags().String("version", "", "目标版本，如 AC1027")
}
