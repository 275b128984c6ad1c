package layout

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// DefaultCutGlyph 是裁切标记行默认重复的字符。
const DefaultCutGlyph = "-"

// PageRecord 记录一页的句柄与该页已写高度，供定稿阶段使用。
type PageRecord struct {
	Handle        PageHandle `json:"handle"`
	WrittenHeight float64    `json:"writtenHeight"`
}

// PageCursor 跟踪当前页的纵向位置：写入前预测内容高度，放不下就换页，
// 然后把绘制命令交给 ContentSink。首页在第一次写入时才创建。
// PageCursor 没有内部同步，同一时刻只能由一个调用方使用。
type PageCursor struct {
	metrics  *Metrics
	sink     ContentSink
	fonts    FontMetrics
	cutGlyph string

	pages         []PageRecord
	open          bool
	writtenHeight float64
}

// NewPageCursor 绑定排版尺寸、绘制后端与字宽测量。
func NewPageCursor(metrics *Metrics, sink ContentSink, fonts FontMetrics) *PageCursor {
	return &PageCursor{
		metrics:  metrics,
		sink:     sink,
		fonts:    fonts,
		cutGlyph: DefaultCutGlyph,
	}
}

// SetCutGlyph 设置裁切标记行使用的字符，空串恢复默认值。
func (c *PageCursor) SetCutGlyph(glyph string) {
	if strings.TrimSpace(glyph) == "" {
		glyph = DefaultCutGlyph
	}
	c.cutGlyph = glyph
}

// WrittenHeight 返回当前页已写高度。
func (c *PageCursor) WrittenHeight() float64 { return c.writtenHeight }

// Pages 返回迄今为止创建的全部页面记录（副本）。
func (c *PageCursor) Pages() []PageRecord {
	out := make([]PageRecord, len(c.pages))
	copy(out, c.pages)
	return out
}

// PageCount 返回已创建的页数。
func (c *PageCursor) PageCount() int { return len(c.pages) }

// ensureRoom 在当前页放不下 height 时换页；没有页面时创建首页。
func (c *PageCursor) ensureRoom(height float64) error {
	limit := c.metrics.PageWritingHeight()
	if height > limit+widthEpsilon {
		return fmt.Errorf("%w: 需要 %.2fpt，可写高度 %.2fpt", ErrUnitTooLarge, height, limit)
	}
	if c.open && c.writtenHeight+height <= limit+widthEpsilon {
		return nil
	}
	return c.NewPage()
}

// NewPage 关闭当前页（若有）并打开新页，已写高度归零。
func (c *PageCursor) NewPage() error {
	if err := c.Close(); err != nil {
		return err
	}
	paper := c.metrics.Paper()
	handle, err := c.sink.OpenPage(paper.Width, paper.Height)
	if err != nil {
		return sinkErr("openPage", err)
	}
	c.pages = append(c.pages, PageRecord{Handle: handle})
	c.open = true
	c.writtenHeight = 0
	return nil
}

// Close 关闭当前页。每页只会关闭一次，即使后端关闭失败也不会再次尝试。
func (c *PageCursor) Close() error {
	if !c.open {
		return nil
	}
	c.open = false
	return sinkErr("closePage", c.sink.ClosePage(c.current().Handle))
}

func (c *PageCursor) current() *PageRecord { return &c.pages[len(c.pages)-1] }

func (c *PageCursor) advance(height float64) {
	c.writtenHeight += height
	c.current().WrittenHeight = c.writtenHeight
}

// top 是当前写入位置的上边缘。
func (c *PageCursor) top() float64 { return c.metrics.ContentTop() - c.writtenHeight }

// WriteLine 写一行默认字号的文本，基线 y = StartY - writtenHeight，随后前进一个行高。
// 空文本相当于空一行。
func (c *PageCursor) WriteLine(text string, role FontRole) error {
	lh := c.metrics.LineHeight()
	if err := c.ensureRoom(lh); err != nil {
		return err
	}
	if text != "" {
		y := c.metrics.StartY() - c.writtenHeight
		font := FontSpec{Role: role, Size: c.metrics.FontSize()}
		if err := c.sink.DrawText(c.current().Handle, c.metrics.StartX(), y, text, font); err != nil {
			return sinkErr("drawText", err)
		}
	}
	c.advance(lh)
	return nil
}

// Skip 前进 n 个空行，跨页时照常换页。
func (c *PageCursor) Skip(n int) error {
	lh := c.metrics.LineHeight()
	for i := 0; i < n; i++ {
		if err := c.ensureRoom(lh); err != nil {
			return err
		}
		c.advance(lh)
	}
	return nil
}

// WriteImage 在可写宽度内水平居中绘制图片，预测高度为图片高度加一个行高的尾随间距。
// 宽于行宽或高于页面的图片按比例缩小。
func (c *PageCursor) WriteImage(raster image.Image, width, height float64) error {
	if raster == nil {
		return fmt.Errorf("图片为空")
	}
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("图片尺寸必须为正数: %gx%g", width, height)
	}
	lh := c.metrics.LineHeight()
	maxW := c.metrics.MaxLineWidth()
	if width > maxW {
		height *= maxW / width
		width = maxW
	}
	if maxH := c.metrics.PageWritingHeight() - lh; height > maxH {
		if maxH <= 0 {
			return fmt.Errorf("%w: 页面放不下图片", ErrUnitTooLarge)
		}
		width *= maxH / height
		height = maxH
	}
	if err := c.ensureRoom(height + lh); err != nil {
		return err
	}
	x := c.metrics.StartX() + (maxW-width)/2
	y := c.top() - height
	if err := c.sink.DrawImage(c.current().Handle, x, y, width, height, raster); err != nil {
		return sinkErr("drawImage", err)
	}
	c.advance(height + lh)
	return nil
}

// WriteRuns 先用 LineComposer 排成若干行，再逐行按该行自身行高（最大字号 × 行距）换页、
// 绘制并前进。返回已放置好坐标的行计划。
func (c *PageCursor) WriteRuns(runs []TextRun) ([]TextLinePlan, error) {
	composer := LineComposer{
		Metrics:  c.fonts,
		StartX:   c.metrics.StartX(),
		MaxWidth: c.metrics.MaxLineWidth(),
	}
	plans := composer.Compose(runs)
	for i := range plans {
		plan := &plans[i]
		lh := c.metrics.LineHeightFor(plan.MaxFontSize)
		if err := c.ensureRoom(lh); err != nil {
			return plans[:i], err
		}
		plan.Y = c.top() - plan.MaxFontSize
		for j := range plan.Runs {
			run := &plan.Runs[j]
			run.Y = plan.Y
			if err := c.sink.DrawText(c.current().Handle, run.X, run.Y, run.Content, run.Font); err != nil {
				return plans[:i], sinkErr("drawText", err)
			}
		}
		c.advance(lh)
	}
	return plans, nil
}

// WriteCutSignal 画一行铺满行宽的重复字符作为裁切标记，前进两个行高；
// 单张纸上随后无条件换页，把逻辑上不同的小票分开。
func (c *PageCursor) WriteCutSignal() error {
	lh := c.metrics.LineHeight()
	if err := c.ensureRoom(2 * lh); err != nil {
		return err
	}
	font := FontSpec{Role: RoleDefault, Size: c.metrics.FontSize()}
	y := c.metrics.StartY() - c.writtenHeight - lh/2
	line := c.fullWidthLine(c.cutGlyph, font)
	if err := c.sink.DrawText(c.current().Handle, c.metrics.StartX(), y, line, font); err != nil {
		return sinkErr("drawText", err)
	}
	c.advance(2 * lh)
	if !c.metrics.Paper().IsThermal() {
		return c.NewPage()
	}
	return nil
}

// WriteRule 写一行由 glyph 重复铺满行宽的分隔线，占一个行高。
func (c *PageCursor) WriteRule(glyph string, role FontRole) error {
	if strings.TrimSpace(glyph) == "" {
		glyph = c.cutGlyph
	}
	font := FontSpec{Role: role, Size: c.metrics.FontSize()}
	return c.WriteLine(c.fullWidthLine(glyph, font), role)
}

func (c *PageCursor) fullWidthLine(glyph string, font FontSpec) string {
	glyphWidth := c.fonts.TextWidth(glyph, font)
	reps := 1
	if glyphWidth > 0 {
		reps = int(math.Floor((c.metrics.MaxLineWidth() + widthEpsilon) / glyphWidth))
	}
	if reps < 1 {
		reps = 1
	}
	return strings.Repeat(glyph, reps)
}
