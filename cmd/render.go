package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ByLCY/quill/barcode"
	"github.com/ByLCY/quill/config"
	"github.com/ByLCY/quill/dsl"
	"github.com/ByLCY/quill/layout"
	canvasrenderer "github.com/ByLCY/quill/renderer/canvas"
)

var renderCmd = &cobra.Command{
	Use:   "render <script>...",
	Short: "Render receipt scripts to PDF",
	Long: `Render parses each receipt script, binds the --data JSON into it and writes
<out>/<script name>.pdf (or .b64 with --base64).

--data accepts a JSON literal or @path to a JSON file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().String("out", "output", "PDF 输出目录")
	renderCmd.Flags().String("data", "", "绑定到脚本的 JSON 数据，@path 表示从文件读取")
	renderCmd.Flags().String("debug", "", "文档汇总 JSON 输出目录")
	renderCmd.Flags().Bool("base64", false, "以 Base64 文本输出")
}

// renderOptions 是一次批量渲染共享的参数。
type renderOptions struct {
	outDir   string
	debugDir string
	base64   bool
	data     any
	base     layout.Config
	assets   string
	dpmm     float64
	// 字体缓存按资源目录共享
	fonts map[string]*canvasrenderer.FontCache
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	base, err := cfg.ToLayout()
	if err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}
	data, err := loadData(mustGetString(cmd, "data"))
	if err != nil {
		return err
	}
	opts := &renderOptions{
		outDir:   mustGetString(cmd, "out"),
		debugDir: mustGetString(cmd, "debug"),
		base64:   mustGetBool(cmd, "base64"),
		data:     data,
		base:     base,
		assets:   cfg.Assets,
		dpmm:     cfg.DotsPerMM,
		fonts:    map[string]*canvasrenderer.FontCache{},
	}

	var bar *progressbar.ProgressBar
	if len(args) > 1 {
		bar = progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("Rendering"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("receipts"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		)
	}

	failed := 0
	for _, path := range args {
		out, summary, err := renderScript(path, opts)
		if bar != nil {
			_ = bar.Add(1)
		}
		if err != nil {
			failed++
			log.Printf("渲染 %s 失败: %v", path, err)
			continue
		}
		log.Printf("已生成 %s（文档 %s，%d 页，%d 字节）", out, summary.ID, len(summary.Pages), summary.Bytes)
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d 个脚本渲染失败", failed, len(args))
	}
	return nil
}

// renderScript 串联解析、排版、定稿与写文件，返回输出路径与文档汇总。
func renderScript(path string, opts *renderOptions) (string, layout.Summary, error) {
	script, err := dsl.ParseFile(path)
	if err != nil {
		return "", layout.Summary{}, fmt.Errorf("解析脚本失败: %w", err)
	}

	assets := opts.assets
	if assets == "" {
		assets = filepath.Dir(path)
	}
	fc, ok := opts.fonts[assets]
	if !ok {
		fc = canvasrenderer.NewFontCache(assets, nil)
		opts.fonts[assets] = fc
	}
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: assets, Fonts: fc})

	doc, err := layout.Build(script, opts.data, layout.BuildOptions{
		Sink:     r,
		Metrics:  r,
		Barcodes: &barcode.Printer{DotsPerMM: opts.dpmm},
		Images:   r,
		Base:     opts.base,
	})
	if doc != nil {
		defer doc.Close()
	}
	if err != nil {
		return "", layout.Summary{}, fmt.Errorf("排版失败: %w", err)
	}

	pdfBytes, err := doc.Finalize()
	if err != nil {
		return "", layout.Summary{}, fmt.Errorf("生成 PDF 失败: %w", err)
	}
	summary := doc.Summary()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if opts.debugDir != "" {
		if err := os.MkdirAll(opts.debugDir, 0o755); err != nil {
			return "", summary, fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := layout.WriteDebugJSON(doc, filepath.Join(opts.debugDir, name+".json")); err != nil {
			return "", summary, fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return "", summary, fmt.Errorf("创建输出目录失败: %w", err)
	}
	out := filepath.Join(opts.outDir, name+".pdf")
	payload := pdfBytes
	if opts.base64 {
		out = filepath.Join(opts.outDir, name+".b64")
		payload = []byte(base64.StdEncoding.EncodeToString(pdfBytes))
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return "", summary, fmt.Errorf("写入 %s 失败: %w", out, err)
	}
	return out, summary, nil
}

// loadData 解析 --data：JSON 字面量，或以 @ 开头的 JSON 文件路径。
func loadData(arg string) (any, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, nil
	}
	raw := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		raw, err = os.ReadFile(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("读取 data 文件失败: %w", err)
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
