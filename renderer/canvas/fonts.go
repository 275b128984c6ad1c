package canvasrenderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/quill/fonts"
	"github.com/ByLCY/quill/layout"
)

// FontCache 按字体来源缓存已加载的字体家族、字体面与字符宽度。
// 同一个 FontCache 可被多个文档的 Renderer 共享。
type FontCache struct {
	baseDir string
	blobs   map[string][]byte // built-in:<name> 注入的字体

	mu       sync.Mutex
	families map[string]*canvas.FontFamily
	faces    map[faceKey]*canvas.FontFace
	widths   map[faceKey]map[rune]float64
}

type faceKey struct {
	src  string
	size float64
}

// NewFontCache 创建字体缓存；相对路径按 baseDir 解析。
func NewFontCache(baseDir string, blobs map[string][]byte) *FontCache {
	fc := &FontCache{
		baseDir:  baseDir,
		blobs:    map[string][]byte{},
		families: map[string]*canvas.FontFamily{},
		faces:    map[faceKey]*canvas.FontFace{},
		widths:   map[faceKey]map[rune]float64{},
	}
	for name, data := range blobs {
		if name != "" && len(data) > 0 {
			fc.blobs[name] = data
		}
	}
	return fc
}

// Load 确保 src 对应的字体可以加载。
func (fc *FontCache) Load(src string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	_, err := fc.family(src)
	return err
}

// Face 返回 src 在 size（pt）下的字体面。
func (fc *FontCache) Face(src string, size float64) (*canvas.FontFace, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.face(src, size)
}

// RuneWidth 返回字符宽度，单位 pt。字体加载失败时退回内置字体。
func (fc *FontCache) RuneWidth(src string, r rune, size float64) float64 {
	if size <= 0 {
		return 0
	}
	fc.mu.Lock()
	defer fc.mu.Unlock()
	key := faceKey{src: src, size: size}
	if w, ok := fc.widths[key][r]; ok {
		return w
	}
	face, err := fc.face(src, size)
	if err != nil {
		face, err = fc.face(fonts.Default(0), size)
		if err != nil {
			return 0
		}
	}
	w := toPt(face.TextWidth(string(r)))
	if fc.widths[key] == nil {
		fc.widths[key] = map[rune]float64{}
	}
	fc.widths[key][r] = w
	return w
}

func (fc *FontCache) face(src string, size float64) (*canvas.FontFace, error) {
	key := faceKey{src: src, size: size}
	if face, ok := fc.faces[key]; ok {
		return face, nil
	}
	family, err := fc.family(src)
	if err != nil {
		return nil, err
	}
	face := family.Face(size, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	fc.faces[key] = face
	return face, nil
}

// 每个来源单独成一个家族，按 Regular 样式载入；粗体、斜体由不同来源表达。
func (fc *FontCache) family(src string) (*canvas.FontFamily, error) {
	if family, ok := fc.families[src]; ok {
		return family, nil
	}
	data, err := fc.loadFontBytes(src)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(src)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	fc.families[src] = family
	return family, nil
}

func (fc *FontCache) loadFontBytes(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体来源为空")
	}
	if fonts.IsBuiltin(src) {
		name := src[strings.Index(src, ":")+1:]
		if blob, ok := fc.blobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(src)
	}
	path := src
	if fc.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 builtin:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(fc.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// resolveSource 返回角色实际使用的字体来源。
// 未设置的角色：若默认角色是字体文件，沿用它；否则用内置 Go Mono 对应样式。
func resolveSource(faces layout.FontFaces, role layout.FontRole) string {
	if src := strings.TrimSpace(faces.Face(role)); src != "" {
		return src
	}
	if def := strings.TrimSpace(faces.Default); def != "" && !fonts.IsBuiltin(def) {
		return def
	}
	return fonts.Default(int(role))
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
