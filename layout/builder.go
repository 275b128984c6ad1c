package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/quill/binding"
	"github.com/ByLCY/quill/dsl"
)

// defaultCreator 写入 PDF 元信息的 Creator 字段。
const defaultCreator = "quill"

// Build 根据脚本 AST 创建文档并依次执行 body 中的打印命令。
// 返回的文档尚未定稿，调用方负责 Finalize。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Sink == nil || opts.Metrics == nil {
		return nil, fmt.Errorf("layout: 缺少绘制后端或字宽测量")
	}

	cfg := opts.Base
	if cfg.Paper.Width == 0 && cfg.Font.Size == 0 {
		cfg = DefaultConfig()
	}
	cfg.Meta = collectMeta(doc, cfg.Meta)
	for _, block := range doc.Blocks("settings") {
		if err := applySettings(&cfg, block); err != nil {
			return nil, err
		}
	}

	out, err := NewDocument(cfg, opts.Sink, opts.Metrics)
	if err != nil {
		return nil, err
	}
	b := &builder{doc: out, opts: opts}
	for _, block := range doc.Blocks("body") {
		if err := b.processBlock(block, data); err != nil {
			return out, err
		}
	}
	return out, nil
}

type builder struct {
	doc  *Document
	opts BuildOptions
}

// processBlock 依次执行 block 内的命令；裸字符串等同于 text。
func (b *builder) processBlock(block *dsl.Block, data any) error {
	if block == nil {
		return nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			if err := b.doc.PrintLine(binding.Interpolate(string(stmt.Text.Value), data)); err != nil {
				return err
			}
		case stmt.Command != nil:
			if err := b.command(stmt.Command, data); err != nil {
				return fmt.Errorf("第 %d 行 %s: %w", stmt.Command.Pos.Line, stmt.Command.Name, err)
			}
		case stmt.Assignment != nil:
			return fmt.Errorf("body 中不允许赋值语句 %s", stmt.Assignment.Key)
		}
	}
	return nil
}

func (b *builder) command(cmd *dsl.Command, data any) error {
	args := splitArgs(cmd.Args)
	switch strings.ToLower(cmd.Name) {
	case "text":
		role, err := args.role()
		if err != nil {
			return err
		}
		content := strings.Join(args.texts, "")
		if cmd.Block != nil {
			content += extractText(cmd.Block)
		}
		return b.doc.PrintLineAs(binding.Interpolate(content, data), role)
	case "line":
		role, err := args.role()
		if err != nil {
			return err
		}
		return b.doc.PrintRule(args.first(), role)
	case "runs":
		runs, err := collectRuns(cmd.Block, data)
		if err != nil {
			return err
		}
		_, err = b.doc.PrintRuns(runs)
		return err
	case "image":
		return b.image(args, data)
	case "barcode":
		if b.opts.Barcodes == nil {
			return fmt.Errorf("未配置条码组件")
		}
		payload := binding.Interpolate(args.first(), data)
		symbology := "qr"
		if len(args.words) > 0 {
			symbology = args.words[0]
		}
		return b.opts.Barcodes.PrintBarcode(b.doc, payload, symbology)
	case "skip":
		n := 1
		if len(args.numbers) > 0 {
			v, err := strconv.Atoi(args.numbers[0])
			if err != nil || v < 0 {
				return fmt.Errorf("skip 行数不合法: %s", args.numbers[0])
			}
			n = v
		}
		return b.doc.SkipLines(n)
	case "cut":
		return b.doc.CutSignal()
	case "page":
		return b.doc.NewPage()
	case "font-size":
		if len(args.numbers) == 0 {
			return fmt.Errorf("font-size 缺少字号")
		}
		size, ok := ParsePoints(args.numbers[0])
		if !ok {
			return fmt.Errorf("字号不合法: %s", args.numbers[0])
		}
		fs := b.doc.Config().Font
		fs.Size = int(size + 0.5)
		return b.doc.SetFontSettings(fs)
	case "each":
		return b.each(cmd, data)
	default:
		return fmt.Errorf("未知命令")
	}
}

// each 展开 `each path as name { ... }`，在子作用域中绑定当前元素。
func (b *builder) each(cmd *dsl.Command, data any) error {
	var path []string
	name := "item"
	for i := 0; i < len(cmd.Args); i++ {
		if cmd.Args[i].Value == "as" && cmd.Args[i].Type == "Ident" {
			if i+1 < len(cmd.Args) {
				name = cmd.Args[i+1].Value
			}
			break
		}
		path = append(path, cmd.Args[i].Value)
	}
	if len(path) == 0 {
		return fmt.Errorf("each 缺少数据路径")
	}
	items, ok := binding.Items(data, strings.Join(path, ""))
	if !ok {
		return nil
	}
	for _, item := range items {
		if err := b.processBlock(cmd.Block, binding.With(data, name, item)); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) image(args commandArgs, data any) error {
	if b.opts.Images == nil {
		return fmt.Errorf("未配置图片加载")
	}
	ref := binding.Interpolate(args.first(), data)
	if ref == "" && len(args.words) > 0 {
		ref = args.words[0]
	}
	if ref == "" {
		return fmt.Errorf("image 缺少图片路径")
	}
	raster, err := b.opts.Images.LoadImage(ref)
	if err != nil {
		return fmt.Errorf("加载图片 %s 失败: %w", ref, err)
	}
	bounds := raster.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return fmt.Errorf("图片 %s 尺寸为空", ref)
	}
	aspect := float64(bounds.Dy()) / float64(bounds.Dx())

	width := b.doc.metrics.MaxLineWidth()
	var height float64
	if len(args.numbers) > 0 {
		if w, ok := ParsePoints(args.numbers[0]); ok && w > 0 {
			width = w
		}
	}
	if len(args.numbers) > 1 {
		if h, ok := ParsePoints(args.numbers[1]); ok && h > 0 {
			height = h
		}
	}
	if height == 0 {
		height = width * aspect
	}
	return b.doc.PrintImage(raster, width, height)
}

// collectRuns 读取 runs 块里的 `run "内容" [角色] [字号]`。
func collectRuns(block *dsl.Block, data any) ([]TextRun, error) {
	if block == nil {
		return nil, fmt.Errorf("runs 缺少内容")
	}
	var runs []TextRun
	for _, stmt := range block.Statements {
		switch {
		case stmt.Text != nil:
			runs = append(runs, Run(binding.Interpolate(string(stmt.Text.Value), data), RoleDefault, 0))
		case stmt.Command != nil && stmt.Command.Name == "run":
			args := splitArgs(stmt.Command.Args)
			role, err := args.role()
			if err != nil {
				return nil, err
			}
			var size float64
			if len(args.numbers) > 0 {
				v, ok := ParsePoints(args.numbers[0])
				if !ok || v <= 0 {
					return nil, fmt.Errorf("run 字号不合法: %s", args.numbers[0])
				}
				size = v
			}
			content := strings.Join(args.texts, "")
			runs = append(runs, Run(binding.Interpolate(content, data), role, size))
		case stmt.Command != nil:
			return nil, fmt.Errorf("runs 中只允许 run 命令，遇到 %s", stmt.Command.Name)
		}
	}
	return runs, nil
}

// commandArgs 按词法类型拆分命令参数。
type commandArgs struct {
	texts   []string
	words   []string
	numbers []string
}

func splitArgs(args []*dsl.Lexeme) commandArgs {
	var out commandArgs
	for _, a := range args {
		switch a.Type {
		case "String":
			out.texts = append(out.texts, a.Value)
		case "Number":
			out.numbers = append(out.numbers, a.Value)
		case "Ident":
			out.words = append(out.words, a.Value)
		}
	}
	return out
}

func (a commandArgs) first() string {
	if len(a.texts) == 0 {
		return ""
	}
	return a.texts[0]
}

func (a commandArgs) role() (FontRole, error) {
	if len(a.words) == 0 {
		return RoleDefault, nil
	}
	return ParseFontRole(a.words[0])
}

// applySettings 把 settings 块中的赋值写入配置，未出现的键保持原值。
func applySettings(cfg *Config, block *dsl.Block) error {
	if block == nil {
		return nil
	}
	var customW, customH float64
	thermal := cfg.Paper.IsThermal()
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		key := strings.ToLower(stmt.Assignment.Key)
		val := stmt.Assignment.Value
		raw := valueToString(val)
		switch key {
		case "paper":
			if strings.EqualFold(raw, "custom") {
				continue
			}
			p, ok := LookupPaper(raw)
			if !ok {
				return invalid("paper", fmt.Sprintf("未知纸张 %s", raw))
			}
			cfg.Paper = p
			thermal = p.IsThermal()
		case "paper-width", "paper-height":
			v, ok := ParsePoints(raw)
			if !ok {
				return invalid(key, fmt.Sprintf("无法解析长度 %s", raw))
			}
			if key == "paper-width" {
				customW = v
			} else {
				customH = v
			}
		case "thermal":
			thermal = parseBool(raw)
		case "margin":
			m, err := resolveMargin(valueToStringSlice(val))
			if err != nil {
				return err
			}
			cfg.Margins = m
		case "margin-top", "margin-right", "margin-bottom", "margin-left":
			v, ok := ParsePoints(raw)
			if !ok {
				return invalid(key, fmt.Sprintf("无法解析长度 %s", raw))
			}
			switch key {
			case "margin-top":
				cfg.Margins.Top = v
			case "margin-right":
				cfg.Margins.Right = v
			case "margin-bottom":
				cfg.Margins.Bottom = v
			default:
				cfg.Margins.Left = v
			}
		case "font-size":
			v, ok := ParsePoints(raw)
			if !ok {
				return invalid(key, fmt.Sprintf("无法解析字号 %s", raw))
			}
			cfg.Font.Size = int(v + 0.5)
		case "line-spacing":
			v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "x"), 64)
			if err != nil {
				return invalid(key, fmt.Sprintf("无法解析行距 %s", raw))
			}
			cfg.LineSpacing = v
		case "preserve-spaces":
			cfg.PreserveLeadingSpaces = parseBool(raw)
		case "cut-glyph":
			cfg.CutGlyph = raw
		case "fonts":
			if val == nil || val.Object == nil {
				return invalid(key, "fonts 需要 { default: ...; bold: ... } 形式")
			}
			for _, entry := range val.Object.Entries {
				role, err := ParseFontRole(entry.Key)
				if err != nil {
					return invalid(key, err.Error())
				}
				src := valueToString(entry.Value)
				switch role {
				case RoleBold:
					cfg.Font.Faces.Bold = src
				case RoleItalic:
					cfg.Font.Faces.Italic = src
				case RoleBoldItalic:
					cfg.Font.Faces.BoldItalic = src
				default:
					cfg.Font.Faces.Default = src
				}
			}
		default:
			return invalid(key, "未知的设置项")
		}
	}
	if customW > 0 || customH > 0 {
		if customW == 0 {
			customW = cfg.Paper.Width
		}
		if customH == 0 {
			customH = cfg.Paper.Height
		}
		cfg.Paper = CustomPaper(customW, customH, thermal)
	} else if thermal != cfg.Paper.IsThermal() {
		cfg.Paper = CustomPaper(cfg.Paper.Width, cfg.Paper.Height, thermal)
	}
	return nil
}

func collectMeta(doc *dsl.Document, base DocumentMeta) DocumentMeta {
	meta := base
	if meta.Creator == "" {
		meta.Creator = defaultCreator
	}
	if meta.Title == "" {
		meta.Title = doc.Name
	}
	for _, block := range doc.Blocks("meta") {
		for _, stmt := range block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			switch key {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

// resolveMargin 采用 CSS 语义：
// 1 个值：四边相同；2 个值：上下、左右；3 个值：上、左右、下；4 个值：上、右、下、左。
func resolveMargin(values []string) (Margins, error) {
	vals := make([]float64, 0, 4)
	for _, s := range values {
		v, ok := ParsePoints(s)
		if !ok {
			return Margins{}, invalid("margin", fmt.Sprintf("无法解析长度 %s", s))
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		return Margins{Top: v, Right: v, Bottom: v, Left: v}, nil
	case 2:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}, nil
	case 3:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}, nil
	case 4:
		return Margins{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	default:
		return Margins{}, invalid("margin", "需要 1 到 4 个值")
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Expr != nil:
		return val.Expr.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
