package layout

import "image"

// PageHandle 是后端分配的不透明页面句柄。
type PageHandle int

// ContentSink 是绘制后端：负责页面生命周期、绘制原语与最终序列化。
// 坐标系与 PDF 一致：原点在页面左下角，单位 pt，y 轴向上。
type ContentSink interface {
	OpenPage(width, height float64) (PageHandle, error)
	// DrawText 在基线 (x, y) 处绘制一段文本。
	DrawText(page PageHandle, x, y float64, text string, font FontSpec) error
	// DrawImage 以 (x, y) 为左下角绘制图片，并缩放到 width×height。
	DrawImage(page PageHandle, x, y, width, height float64, raster image.Image) error
	ClosePage(page PageHandle) error
	// Serialize 按给定顺序输出页面，返回最终文件字节。
	Serialize(pages []PageHandle) ([]byte, error)
	// ExtractText 返回页面上绘制过的全部文本，仅用于空白页判断。
	ExtractText(page PageHandle) (string, error)
	// SetVisibleRegion 设置页面的可见区域（PDF CropBox），仅用于热敏纸裁剪。
	SetVisibleRegion(page PageHandle, x, y, width, height float64) error
}

// FontMetrics 负责测量文本宽度（单位 pt）。
type FontMetrics interface {
	RuneWidth(r rune, font FontSpec) float64
	TextWidth(s string, font FontSpec) float64
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// MetaSetter 由支持文档元信息的后端实现。
type MetaSetter interface {
	SetMeta(meta DocumentMeta)
}

// FaceBinder 由需要知道每个角色对应字体句柄的后端实现。
type FaceBinder interface {
	BindFaces(faces FontFaces) error
}

// BuildOptions 配置脚本构建阶段所需的依赖。
type BuildOptions struct {
	Sink     ContentSink
	Metrics  FontMetrics
	Barcodes BarcodePrinter
	// Images 按脚本中的名称/路径加载图片。
	Images ImageLoader
	// Base 是脚本 settings 之外的默认文档配置。
	Base Config
}

// BarcodePrinter 由条码组件实现，把条码当作图片写入文档。
type BarcodePrinter interface {
	PrintBarcode(doc *Document, payload, symbology string) error
}

// ImageLoader 根据脚本中的引用加载图片。
type ImageLoader interface {
	LoadImage(ref string) (image.Image, error)
}
