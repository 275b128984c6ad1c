package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/quill/layout"
	"github.com/ByLCY/quill/renderer"
)

// ErrSerialized 表示渲染器已经输出过文件，不能再使用。
var ErrSerialized = errors.New("渲染器已完成序列化")

// Renderer records draw operations per page and replays them through
// github.com/tdewolff/canvas into a PDF on Serialize.
type Renderer struct {
	baseDir string
	fonts   *FontCache
	images  map[string][]byte // by unique name

	faces      layout.FontFaces
	meta       layout.DocumentMeta
	pages      []*page
	serialized bool
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts 可在多个 Renderer 间共享；为空时按 BaseDir 新建。
	Fonts  *FontCache
	Images map[string][]byte // built-in images accessible via built-in:<name>
}

type opKind int

const (
	opText opKind = iota
	opImage
)

type drawOp struct {
	kind opKind
	x, y float64
	w, h float64
	text string
	src  string
	size float64
	img  image.Image
}

type page struct {
	width, height float64
	ops           []drawOp
	texts         []string
	closed        bool
	region        *[4]float64
}

// box 返回输出时的页面框：设置了可见区域时按区域裁剪。
func (p *page) box() (x, y, w, h float64) {
	if p.region != nil {
		return p.region[0], p.region[1], p.region[2], p.region[3]
	}
	return 0, 0, p.width, p.height
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	fc := opts.Fonts
	if fc == nil {
		fc = NewFontCache(opts.BaseDir, nil)
	}
	r := &Renderer{
		baseDir: opts.BaseDir,
		fonts:   fc,
		images:  map[string][]byte{},
	}
	for name, blob := range opts.Images {
		if name != "" && len(blob) > 0 {
			r.images[name] = blob
		}
	}
	return r
}

// BindFaces 预先加载四个角色的字体，任何一个失败都返回错误且不改变当前绑定。
func (r *Renderer) BindFaces(faces layout.FontFaces) error {
	for role := layout.RoleDefault; role <= layout.RoleBoldItalic; role++ {
		src := resolveSource(faces, role)
		if err := r.fonts.Load(src); err != nil {
			return fmt.Errorf("加载 %s 字体 %s 失败: %w", role, src, err)
		}
	}
	r.faces = faces
	return nil
}

// SetMeta 保存 PDF 元信息，在 Serialize 时写入。
func (r *Renderer) SetMeta(meta layout.DocumentMeta) {
	meta.Keywords = append([]string(nil), meta.Keywords...)
	r.meta = meta
}

// RuneWidth 返回字符宽度（pt）。
func (r *Renderer) RuneWidth(ch rune, font layout.FontSpec) float64 {
	return r.fonts.RuneWidth(resolveSource(r.faces, font.Role), ch, font.Size)
}

// TextWidth 是逐字符宽度之和，与换行时的前缀宽度保持一致。
func (r *Renderer) TextWidth(s string, font layout.FontSpec) float64 {
	src := resolveSource(r.faces, font.Role)
	total := 0.0
	for _, ch := range s {
		total += r.fonts.RuneWidth(src, ch, font.Size)
	}
	return total
}

func (r *Renderer) OpenPage(width, height float64) (layout.PageHandle, error) {
	if r.serialized {
		return 0, ErrSerialized
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("页面尺寸无效：%gx%g", width, height)
	}
	r.pages = append(r.pages, &page{width: width, height: height})
	return layout.PageHandle(len(r.pages) - 1), nil
}

// page 按句柄查找页面。
func (r *Renderer) page(h layout.PageHandle) (*page, error) {
	if r.serialized {
		return nil, ErrSerialized
	}
	if int(h) < 0 || int(h) >= len(r.pages) {
		return nil, fmt.Errorf("页面句柄 %d 不存在", h)
	}
	return r.pages[h], nil
}

func (r *Renderer) openPage(h layout.PageHandle) (*page, error) {
	p, err := r.page(h)
	if err != nil {
		return nil, err
	}
	if p.closed {
		return nil, fmt.Errorf("页面 %d 已关闭", h)
	}
	return p, nil
}

func (r *Renderer) DrawText(h layout.PageHandle, x, y float64, text string, font layout.FontSpec) error {
	p, err := r.openPage(h)
	if err != nil {
		return err
	}
	src := resolveSource(r.faces, font.Role)
	p.ops = append(p.ops, drawOp{kind: opText, x: x, y: y, text: text, src: src, size: font.Size})
	p.texts = append(p.texts, text)
	return nil
}

func (r *Renderer) DrawImage(h layout.PageHandle, x, y, width, height float64, raster image.Image) error {
	p, err := r.openPage(h)
	if err != nil {
		return err
	}
	if raster == nil {
		return fmt.Errorf("图片为空")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("图片尺寸无效：%gx%g", width, height)
	}
	p.ops = append(p.ops, drawOp{kind: opImage, x: x, y: y, w: width, h: height, img: raster})
	return nil
}

func (r *Renderer) ClosePage(h layout.PageHandle) error {
	p, err := r.openPage(h)
	if err != nil {
		return err
	}
	p.closed = true
	return nil
}

func (r *Renderer) SetVisibleRegion(h layout.PageHandle, x, y, width, height float64) error {
	p, err := r.page(h)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("可见区域无效：%gx%g", width, height)
	}
	p.region = &[4]float64{x, y, width, height}
	return nil
}

func (r *Renderer) ExtractText(h layout.PageHandle) (string, error) {
	p, err := r.page(h)
	if err != nil {
		return "", err
	}
	return strings.Join(p.texts, "\n"), nil
}

// Serialize 按顺序把页面回放到 PDF。可见区域成为输出页面尺寸，内容随之平移。
func (r *Renderer) Serialize(handles []layout.PageHandle) ([]byte, error) {
	if r.serialized {
		return nil, ErrSerialized
	}
	if len(handles) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	for _, h := range handles {
		p, err := r.page(h)
		if err != nil {
			return nil, err
		}
		if !p.closed {
			return nil, fmt.Errorf("页面 %d 尚未关闭", h)
		}
	}

	var buf bytes.Buffer
	var writer *pdf.PDF
	for i, h := range handles {
		p := r.pages[h]
		x0, y0, w, hgt := p.box()
		wMM, hMM := toMm(w), toMm(hgt)
		if i == 0 {
			writer = pdf.New(&buf, wMM, hMM, nil)
			r.applyMeta(writer)
		} else {
			writer.NewPage(wMM, hMM)
		}
		c := canvas.New(wMM, hMM)
		ctx := canvas.NewContext(c)
		if err := r.drawPage(ctx, p, x0, y0); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.serialized = true
	r.pages = nil
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, p *page, x0, y0 float64) error {
	for _, op := range p.ops {
		x, y := toMm(op.x-x0), toMm(op.y-y0)
		switch op.kind {
		case opText:
			face, err := r.fonts.Face(op.src, op.size)
			if err != nil {
				return err
			}
			ctx.DrawText(x, y, canvas.NewTextLine(face, op.text, canvas.Left))
		case opImage:
			raster := fitRaster(op.img, op.w, op.h)
			dpmm := float64(raster.Bounds().Dx()) / toMm(op.w)
			if dpmm <= 0 {
				dpmm = 1
			}
			ctx.DrawImage(x, y, raster, canvas.DPMM(dpmm))
		}
	}
	return nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF) {
	keywords := strings.Join(r.meta.Keywords, ", ")
	writer.SetInfo(r.meta.Title, r.meta.Subject, keywords, r.meta.Author, r.meta.Creator)
}
