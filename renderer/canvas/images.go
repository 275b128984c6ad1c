package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// LoadImage 按引用加载图片：built-in:<name> 取注入的图片资源，其余按路径读取。
func (r *Renderer) LoadImage(ref string) (image.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("图片引用为空")
	}
	if strings.HasPrefix(ref, "built-in:") || strings.HasPrefix(ref, "builtin:") {
		name := ref[strings.Index(ref, ":")+1:]
		blob, ok := r.images[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
		return img, nil
	}
	if r.baseDir == "" && !filepath.IsAbs(ref) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in:）", ref)
	}
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", ref, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", ref, err)
	}
	return img, nil
}

// fitRaster 把图片重采样到与目标宽高比一致的像素尺寸，宽度像素数保持不变。
// 灰度与调色板图（条码、二维码）用最近邻，保证边缘锐利。
func fitRaster(src image.Image, width, height float64) image.Image {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || width <= 0 || height <= 0 {
		return src
	}
	pw := b.Dx()
	ph := int(math.Round(float64(pw) * height / width))
	if ph < 1 {
		ph = 1
	}
	if ph == b.Dy() {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	var scaler draw.Scaler = draw.CatmullRom
	switch src.(type) {
	case *image.Gray, *image.Paletted:
		scaler = draw.NearestNeighbor
	}
	scaler.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
