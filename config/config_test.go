package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/quill/layout"
)

func TestDefaultsMatchLayout(t *testing.T) {
	got, err := Defaults().ToLayout()
	if err != nil {
		t.Fatalf("默认配置应合法: %v", err)
	}
	want := layout.DefaultConfig()
	want.Meta.Creator = "quill"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("默认配置与 layout 不一致 (-want +got):\n%s", diff)
	}
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.yaml")
	yml := `paper: thermal-58mm
font-size: 10
line-spacing: 1.5
margins:
  left: 2mm
fonts:
  bold: fonts/shop-bold.ttf
meta:
  author: till-1
  keywords: [coffee, receipt]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QUILL_FONT_SIZE", "9")
	t.Setenv("QUILL_AUTHOR", "till-2")
	t.Setenv("QUILL_LINE_SPACING", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if cfg.FontSize != 9 || cfg.Meta.Author != "till-2" {
		t.Fatalf("环境变量应覆盖文件: %+v", cfg)
	}
	if cfg.LineSpacing != 1.5 {
		t.Fatalf("无效的环境变量应被忽略，实际 %g", cfg.LineSpacing)
	}
	out, err := cfg.ToLayout()
	if err != nil {
		t.Fatalf("转换失败: %v", err)
	}
	if out.Paper != layout.Thermal58mm || out.Margins.Left != layout.MM(2) || out.Margins.Top != 8 {
		t.Fatalf("纸张或边距不符: %+v", out)
	}
	if out.Font.Faces.Bold != "fonts/shop-bold.ttf" || out.Font.Size != 9 {
		t.Fatalf("字体设置不符: %+v", out.Font)
	}
	if diff := cmp.Diff([]string{"coffee", "receipt"}, out.Meta.Keywords); diff != "" {
		t.Fatalf("关键词不符 (-want +got):\n%s", diff)
	}
}

func TestCustomPaper(t *testing.T) {
	cfg := Defaults()
	cfg.PaperWidth, cfg.PaperHeight, cfg.Thermal = "100mm", "200mm", true
	out, err := cfg.ToLayout()
	if err != nil {
		t.Fatal(err)
	}
	if out.Paper.Name != "CUSTOM" || !out.Paper.IsThermal() || out.Paper.Width != layout.MM(100) {
		t.Fatalf("自定义纸张不符: %+v", out.Paper)
	}
}

func TestToLayoutErrors(t *testing.T) {
	cases := map[string]func(*Config){
		"unknown paper":  func(c *Config) { c.Paper = "b7" },
		"half custom":    func(c *Config) { c.PaperWidth = "80mm" },
		"bad margin":     func(c *Config) { c.Margins.Top = "wide" },
		"zero font size": func(c *Config) { c.FontSize = 0 },
	}
	for name, mutate := range cases {
		cfg := Defaults()
		mutate(cfg)
		if _, err := cfg.ToLayout(); !errors.Is(err, layout.ErrInvalidConfig) {
			t.Fatalf("%s: 期望 ErrInvalidConfig，实际 %v", name, err)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("缺失的配置文件应报错")
	}
}
