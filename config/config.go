package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/quill/layout"
)

// Config 是命令行的默认排版配置：默认值 ← YAML 文件 ← QUILL_* 环境变量。
// 脚本里的 settings 块在此基础上再覆盖。
type Config struct {
	Paper          string           `yaml:"paper"`
	PaperWidth     string           `yaml:"paper-width"`  // 与 paper-height 一起使用时为自定义纸张
	PaperHeight    string           `yaml:"paper-height"`
	Thermal        bool             `yaml:"thermal"`
	Margins        MarginsConfig    `yaml:"margins"`
	FontSize       int              `yaml:"font-size"`
	LineSpacing    float64          `yaml:"line-spacing"`
	PreserveSpaces bool             `yaml:"preserve-spaces"`
	CutGlyph       string           `yaml:"cut-glyph"`
	Fonts          layout.FontFaces `yaml:"fonts"`
	Meta           MetaConfig       `yaml:"meta"`
	Assets         string           `yaml:"assets"` // 字体与图片的相对路径根目录
	DotsPerMM      float64          `yaml:"dots-per-mm"`
}

// MarginsConfig 的每一项都接受带单位的长度，如 "4pt"、"2mm"。
type MarginsConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

type MetaConfig struct {
	Author   string   `yaml:"author"`
	Subject  string   `yaml:"subject"`
	Creator  string   `yaml:"creator"`
	Keywords []string `yaml:"keywords"`
}

// Defaults 与 layout.DefaultConfig 一致：80mm 热敏纸、12pt、1.15 倍行距。
func Defaults() *Config {
	m := layout.DefaultMargins()
	return &Config{
		Paper: layout.Thermal80mm.Name,
		Margins: MarginsConfig{
			Top:    pt(m.Top),
			Right:  pt(m.Right),
			Bottom: pt(m.Bottom),
			Left:   pt(m.Left),
		},
		FontSize:    layout.DefaultFontSize,
		LineSpacing: layout.DefaultLineSpacing,
		CutGlyph:    layout.DefaultCutGlyph,
		Meta:        MetaConfig{Creator: "quill"},
		DotsPerMM:   8,
	}
}

// Load 读取 path（为空时跳过）并应用环境变量覆盖。
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置 %s 失败: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置 %s 失败: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Paper = envStr("QUILL_PAPER", c.Paper)
	c.PaperWidth = envStr("QUILL_PAPER_WIDTH", c.PaperWidth)
	c.PaperHeight = envStr("QUILL_PAPER_HEIGHT", c.PaperHeight)
	c.Thermal = envBool("QUILL_THERMAL", c.Thermal)
	c.Margins.Top = envStr("QUILL_MARGIN_TOP", c.Margins.Top)
	c.Margins.Right = envStr("QUILL_MARGIN_RIGHT", c.Margins.Right)
	c.Margins.Bottom = envStr("QUILL_MARGIN_BOTTOM", c.Margins.Bottom)
	c.Margins.Left = envStr("QUILL_MARGIN_LEFT", c.Margins.Left)
	c.FontSize = envInt("QUILL_FONT_SIZE", c.FontSize)
	c.LineSpacing = envFloat("QUILL_LINE_SPACING", c.LineSpacing)
	c.PreserveSpaces = envBool("QUILL_PRESERVE_SPACES", c.PreserveSpaces)
	c.CutGlyph = envStr("QUILL_CUT_GLYPH", c.CutGlyph)
	c.Fonts.Default = envStr("QUILL_FONT_DEFAULT", c.Fonts.Default)
	c.Fonts.Bold = envStr("QUILL_FONT_BOLD", c.Fonts.Bold)
	c.Fonts.Italic = envStr("QUILL_FONT_ITALIC", c.Fonts.Italic)
	c.Fonts.BoldItalic = envStr("QUILL_FONT_BOLD_ITALIC", c.Fonts.BoldItalic)
	c.Meta.Author = envStr("QUILL_AUTHOR", c.Meta.Author)
	c.Meta.Creator = envStr("QUILL_CREATOR", c.Meta.Creator)
	c.Assets = envStr("QUILL_ASSETS", c.Assets)
	c.DotsPerMM = envFloat("QUILL_DOTS_PER_MM", c.DotsPerMM)
}

// ToLayout 转换为 layout.Config 并校验。
func (c *Config) ToLayout() (layout.Config, error) {
	out := layout.DefaultConfig()

	paper, err := c.paper()
	if err != nil {
		return layout.Config{}, err
	}
	out.Paper = paper

	for _, m := range []struct {
		name  string
		value string
		dst   *float64
	}{
		{"margins.top", c.Margins.Top, &out.Margins.Top},
		{"margins.right", c.Margins.Right, &out.Margins.Right},
		{"margins.bottom", c.Margins.Bottom, &out.Margins.Bottom},
		{"margins.left", c.Margins.Left, &out.Margins.Left},
	} {
		if strings.TrimSpace(m.value) == "" {
			continue
		}
		v, ok := layout.ParsePoints(m.value)
		if !ok {
			return layout.Config{}, &layout.ConfigError{Field: m.name, Reason: "无法解析长度 " + m.value}
		}
		*m.dst = v
	}

	out.Font = layout.FontSettings{Size: c.FontSize, Faces: c.Fonts}
	out.LineSpacing = c.LineSpacing
	out.PreserveLeadingSpaces = c.PreserveSpaces
	out.CutGlyph = c.CutGlyph
	out.Meta = layout.DocumentMeta{
		Author:   c.Meta.Author,
		Subject:  c.Meta.Subject,
		Creator:  c.Meta.Creator,
		Keywords: append([]string(nil), c.Meta.Keywords...),
	}
	if err := out.Validate(); err != nil {
		return layout.Config{}, err
	}
	return out, nil
}

func (c *Config) paper() (layout.Paper, error) {
	if c.PaperWidth != "" || c.PaperHeight != "" {
		w, okW := layout.ParsePoints(c.PaperWidth)
		h, okH := layout.ParsePoints(c.PaperHeight)
		if !okW || !okH {
			return layout.Paper{}, &layout.ConfigError{Field: "paper", Reason: "自定义纸张需要 paper-width 与 paper-height"}
		}
		return layout.CustomPaper(w, h, c.Thermal), nil
	}
	p, ok := layout.LookupPaper(c.Paper)
	if !ok {
		return layout.Paper{}, &layout.ConfigError{Field: "paper", Reason: "未知纸张 " + c.Paper}
	}
	return p, nil
}

func pt(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "pt" }

func envStr(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}
