package dxf

import (
	"io"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/zooyer/dxfdoc/core"
)

// Options 读写选项，可以从 TOML 文件加载
type Options struct {
	// BuildDimensionBlocks 标注没有显示块时生成 *D 块
	BuildDimensionBlocks bool `toml:"build_dimension_blocks"`
	// SupportFolders 查找图像和参考底图文件的目录
	SupportFolders []string `toml:"support_folders"`
	// Debug 返回原始错误而不是 ErrLoadFailed/ErrSaveFailed
	Debug bool `toml:"debug"`
	// CodePage 新建文档的代码页，读取时以文件为准
	CodePage string `toml:"code_page"`
	// Version 新建文档的版本，如 AC1015
	Version string `toml:"version"`

	Logger *log.Logger `toml:"-"`
}

type Option func(*Options)

func WithLogger(logger *log.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

func WithDimensionBlocks(build bool) Option {
	return func(o *Options) { o.BuildDimensionBlocks = build }
}

func WithSupportFolders(folders ...string) Option {
	return func(o *Options) { o.SupportFolders = append(o.SupportFolders, folders...) }
}

func WithCodePage(name string) Option {
	return func(o *Options) { o.CodePage = name }
}

func WithVersion(v core.Version) Option {
	return func(o *Options) { o.Version = v.String() }
}

// WithOptions 整体替换，通常与 LoadOptions 一起使用
func WithOptions(opts Options) Option {
	return func(o *Options) {
		logger := o.Logger
		*o = opts
		if o.Logger == nil {
			o.Logger = logger
		}
	}
}

// LoadOptions 从 TOML 文件读取选项
func LoadOptions(path string) (Options, error) {
	var opts Options
	if _, err := toml.DecodeFile(path, &opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

func newOptions(opts []Option) Options {
	o := Options{CodePage: core.DefaultCodePage, Version: core.R2018.String()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.CodePage == "" {
		o.CodePage = core.DefaultCodePage
	}
	return o
}

// debug 返回原始错误
func (o Options) debug() bool {
	return o.Debug || core.Debug
}
