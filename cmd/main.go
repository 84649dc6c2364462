package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zooyer/golib/xos"

	dxf "github.com/zooyer/dxfdoc"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05.00",
})

var rootCmd = &cobra.Command{
	Use:   "dxf [file...]",
	Short: "读取、检查和转换 DXF 文件",
	Long: `dxf 读取文本或二进制 DXF 文件（AC1015 及以后）。

不带子命令时按拖放模式运行：对每个文件导出块参照和属性的 CSV 报表，
没有给出文件时弹出文件选择框。`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			logger.SetLevel(log.DebugLevel)
		}
		return nil
	},
	RunE: runReport,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "输出调试日志")
	flags.String("config", "", "TOML 格式的选项文件")
	flags.String("codepage", "", "没有 $DWGCODEPAGE 时使用的代码页")
	flags.StringSlice("support", nil, "查找图像和参考底图的目录")
	flags.Bool("dim-blocks", false, "为没有显示块的标注生成 *D 块")
	flags.Bool("debug", false, "返回原始错误")
	bindFlags(flags)

	rootCmd.AddCommand(infoCmd, checkCmd, convertCmd)
}

// bindFlags 命令行参数优先，其次是 DXF_ 开头的环境变量
func bindFlags(flags *pflag.FlagSet) {
	viper.SetEnvPrefix("DXF")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	flags.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}

// options 由配置文件和命令行参数组合文档选项
func options() ([]dxf.Option, error) {
	opts := []dxf.Option{dxf.WithLogger(logger)}
	if path := viper.GetString("config"); path != "" {
		o, err := dxf.LoadOptions(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dxf.WithOptions(o))
	}
	if cp := viper.GetString("codepage"); cp != "" {
		opts = append(opts, dxf.WithCodePage(cp))
	}
	if folders := viper.GetStringSlice("support"); len(folders) > 0 {
		opts = append(opts, dxf.WithSupportFolders(folders...))
	}
	if viper.GetBool("dim-blocks") {
		opts = append(opts, dxf.WithDimensionBlocks(true))
	}
	if viper.GetBool("debug") {
		opts = append(opts, dxf.WithDebug(true))
	}
	return opts, nil
}

func open(path string) (*dxf.Document, error) {
	opts, err := options()
	if err != nil {
		return nil, err
	}
	return dxf.Open(path, opts...)
}

// dragged 程序由文件拖放或双击启动
func dragged() bool {
	return len(os.Args) < 2 || (filepath.IsAbs(os.Args[1]) && !strings.HasPrefix(os.Args[1], "-"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		if dragged() {
			_ = zenity.Error(err.Error(), zenity.Title("dxf"))
			xos.PauseExit()
		}
		os.Exit(1)
	}
}
