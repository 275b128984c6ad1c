package layout

import (
	"encoding/base64"
	"image"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Config 是一份文档的完整排版配置，在 NewDocument 时一次性校验。
type Config struct {
	Paper                 Paper
	Margins               Margins
	Font                  FontSettings
	LineSpacing           float64
	PreserveLeadingSpaces bool
	// CutGlyph 是裁切标记行重复的字符，空串使用 DefaultCutGlyph。
	CutGlyph string
	Meta     DocumentMeta
}

// DefaultConfig 返回 80mm 热敏纸、默认边距与 12pt 字号的配置。
func DefaultConfig() Config {
	return Config{
		Paper:       Thermal80mm,
		Margins:     DefaultMargins(),
		Font:        FontSettings{Size: DefaultFontSize},
		LineSpacing: DefaultLineSpacing,
		CutGlyph:    DefaultCutGlyph,
	}
}

// Validate 检查配置能否得到合法的排版尺寸。
func (c Config) Validate() error {
	_, err := NewMetrics(c.Paper, c.Margins, float64(c.Font.Size), c.LineSpacing)
	return err
}

// Document 是一次文档会话：持有排版尺寸、页面游标与后端，定稿后拒绝写入。
type Document struct {
	ID string

	cfg     Config
	metrics *Metrics
	sink    ContentSink
	fonts   FontMetrics
	cursor  *PageCursor

	closed   bool
	result   *Finalized
	finalErr error
}

// NewDocument 校验配置并绑定后端。后端若实现 FaceBinder / MetaSetter，会收到字体句柄与元信息。
func NewDocument(cfg Config, sink ContentSink, fonts FontMetrics) (*Document, error) {
	if sink == nil {
		return nil, invalid("sink", "未提供绘制后端")
	}
	if fonts == nil {
		return nil, invalid("fonts", "未提供字宽测量")
	}
	metrics, err := NewMetrics(cfg.Paper, cfg.Margins, float64(cfg.Font.Size), cfg.LineSpacing)
	if err != nil {
		return nil, err
	}
	if binder, ok := sink.(FaceBinder); ok {
		if err := binder.BindFaces(cfg.Font.Faces); err != nil {
			return nil, invalid("fonts", err.Error())
		}
	}
	if setter, ok := sink.(MetaSetter); ok {
		setter.SetMeta(cfg.Meta)
	}
	cursor := NewPageCursor(metrics, sink, fonts)
	cursor.SetCutGlyph(cfg.CutGlyph)
	return &Document{
		ID:      uuid.NewString(),
		cfg:     cfg,
		metrics: metrics,
		sink:    sink,
		fonts:   fonts,
		cursor:  cursor,
	}, nil
}

// Config 返回当前配置的副本。
func (d *Document) Config() Config { return d.cfg }

// Metrics 返回当前排版尺寸的快照。
func (d *Document) Metrics() MetricsSnapshot { return d.metrics.Snapshot() }

// Closed 报告文档是否已经定稿。
func (d *Document) Closed() bool { return d.closed }

// PrintLine 以默认字体打印文本，见 PrintLineAs。
func (d *Document) PrintLine(text string) error {
	return d.PrintLineAs(text, RoleDefault)
}

// PrintLineAs 先做 NFC 规范化，再按换行符分段，每段按可写宽度折行后逐行写入。
// 空段落写成空行。
func (d *Document) PrintLineAs(text string, role FontRole) error {
	if d.closed {
		return ErrAlreadyClosed
	}
	font := FontSpec{Role: role, Size: d.metrics.FontSize()}
	widthOf := func(r rune) float64 { return d.fonts.RuneWidth(r, font) }
	for _, paragraph := range strings.Split(norm.NFC.String(text), "\n") {
		lines := Wrap(paragraph, widthOf, d.metrics.MaxLineWidth(), d.cfg.PreserveLeadingSpaces)
		if len(lines) == 0 {
			lines = []string{""}
		}
		for _, line := range lines {
			if err := d.cursor.WriteLine(line, role); err != nil {
				return err
			}
		}
	}
	return nil
}

// PrintRuns 把混合字体/字号的 run 排成若干行写入。
func (d *Document) PrintRuns(runs []TextRun) ([]TextLinePlan, error) {
	if d.closed {
		return nil, ErrAlreadyClosed
	}
	normalized := make([]TextRun, len(runs))
	for i, r := range runs {
		if r.Font.Size <= 0 {
			r.Font.Size = d.metrics.FontSize()
		}
		r.Content = norm.NFC.String(strings.ReplaceAll(r.Content, "\n", " "))
		normalized[i] = r
	}
	return d.cursor.WriteRuns(normalized)
}

// PrintImage 居中写入一张图片，尺寸单位 pt。
func (d *Document) PrintImage(raster image.Image, width, height float64) error {
	if d.closed {
		return ErrAlreadyClosed
	}
	return d.cursor.WriteImage(raster, width, height)
}

// PrintRule 写一行铺满行宽的分隔线，glyph 为空时使用裁切字符。
func (d *Document) PrintRule(glyph string, role FontRole) error {
	if d.closed {
		return ErrAlreadyClosed
	}
	return d.cursor.WriteRule(glyph, role)
}

// CutSignal 写入裁切标记。
func (d *Document) CutSignal() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	return d.cursor.WriteCutSignal()
}

// SkipLines 空出 n 行。
func (d *Document) SkipLines(n int) error {
	if d.closed {
		return ErrAlreadyClosed
	}
	return d.cursor.Skip(n)
}

// NewPage 强制换页。
func (d *Document) NewPage() error {
	if d.closed {
		return ErrAlreadyClosed
	}
	return d.cursor.NewPage()
}

// SetFontSettings 替换字号与字体句柄，并重算排版尺寸。校验失败时文档保持原状。
func (d *Document) SetFontSettings(fs FontSettings) error {
	if d.closed {
		return ErrAlreadyClosed
	}
	if err := d.metrics.SetFontSize(float64(fs.Size)); err != nil {
		return err
	}
	if binder, ok := d.sink.(FaceBinder); ok {
		if err := binder.BindFaces(fs.Faces); err != nil {
			_ = d.metrics.SetFontSize(float64(d.cfg.Font.Size))
			return invalid("fonts", err.Error())
		}
	}
	d.cfg.Font = fs
	return nil
}

// Finalize 关闭当前页并定稿，返回最终文件字节。
// 只有第一次调用会访问后端；之后的调用直接返回缓存的结果（包括失败时的错误）。
// 没有写入任何内容的文档会输出一张空白页。
func (d *Document) Finalize() ([]byte, error) {
	if d.closed {
		return d.bytes(), d.finalErr
	}
	d.closed = true
	defer d.cursor.Close()

	if err := d.cursor.Close(); err != nil {
		d.finalErr = err
		return nil, err
	}
	if d.cursor.PageCount() == 0 {
		if err := d.cursor.NewPage(); err != nil {
			d.finalErr = err
			return nil, err
		}
		if err := d.cursor.Close(); err != nil {
			d.finalErr = err
			return nil, err
		}
	}
	res, err := Finalize(d.sink, d.cursor.Pages(), d.metrics)
	if err != nil {
		d.finalErr = err
		return nil, err
	}
	d.result = res
	return d.bytes(), nil
}

func (d *Document) bytes() []byte {
	if d.result == nil {
		return nil
	}
	return d.result.Data
}

// Base64 定稿并以标准 Base64 编码返回。
func (d *Document) Base64() (string, error) {
	data, err := d.Finalize()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Close 定稿并丢弃字节，满足 io.Closer。
func (d *Document) Close() error {
	_, err := d.Finalize()
	return err
}

// PageCount 返回页数；定稿后为实际输出的页数。
func (d *Document) PageCount() int {
	if d.result != nil {
		return len(d.result.Pages)
	}
	return d.cursor.PageCount()
}

// Summary 汇总文档状态，用于日志与调试 JSON。
func (d *Document) Summary() Summary {
	s := Summary{
		ID:      d.ID,
		Closed:  d.closed,
		Metrics: d.metrics.Snapshot(),
		Meta:    d.cfg.Meta,
	}
	if d.result != nil {
		s.Pages = append(s.Pages, d.result.Pages...)
		s.Bytes = len(d.result.Data)
		return s
	}
	for _, p := range d.cursor.Pages() {
		s.Pages = append(s.Pages, FinalPage{PageRecord: p})
	}
	return s
}
