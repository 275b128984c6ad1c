package barcode

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// ErrUnsupported 表示制式可以识别但无法编码。
var ErrUnsupported = errors.New("不支持的条码制式")

// Encode 把内容编码为 widthPx×heightPx 的灰度图。
// 一维码的原生宽度大于 widthPx 时按原生宽度输出，保证每个模块至少一个像素。
func Encode(payload string, sym Symbology, widthPx, heightPx int) (*image.Gray, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("条码内容为空")
	}
	if widthPx <= 0 || heightPx <= 0 {
		return nil, fmt.Errorf("条码尺寸无效：%dx%d", widthPx, heightPx)
	}
	if sym == QR {
		return encodeQR(payload, widthPx)
	}
	code, err := encode1D(payload, sym)
	if err != nil {
		return nil, fmt.Errorf("编码 %s 条码 %q 失败: %w", sym, payload, err)
	}
	if native := code.Bounds().Dx(); widthPx < native {
		widthPx = native
	}
	scaled, err := barcode.Scale(code, widthPx, heightPx)
	if err != nil {
		return nil, fmt.Errorf("缩放 %s 条码失败: %w", sym, err)
	}
	return toGray(scaled), nil
}

// 二维码总是正方形，边长取 size。
func encodeQR(payload string, size int) (*image.Gray, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("编码二维码失败: %w", err)
	}
	q.DisableBorder = true
	return toGray(q.Image(size)), nil
}

func encode1D(payload string, sym Symbology) (barcode.Barcode, error) {
	switch sym {
	case UPCA:
		// UPC-A 即首位为 0 的 EAN-13
		if !digitsOnly(payload) || (len(payload) != 11 && len(payload) != 12) {
			return nil, fmt.Errorf("UPC-A 需要 11 或 12 位数字")
		}
		return ean.Encode("0" + payload)
	case EAN8:
		if !digitsOnly(payload) || (len(payload) != 7 && len(payload) != 8) {
			return nil, fmt.Errorf("EAN-8 需要 7 或 8 位数字")
		}
		return ean.Encode(payload)
	case EAN13:
		if !digitsOnly(payload) || (len(payload) != 12 && len(payload) != 13) {
			return nil, fmt.Errorf("EAN-13 需要 12 或 13 位数字")
		}
		return ean.Encode(payload)
	case ITF:
		return twooffive.Encode(payload, true)
	case Code128:
		return code128.Encode(payload)
	case Codabar:
		// 缺少起止符时补上 A…A
		if !strings.ContainsAny(payload[:1], "ABCD") {
			payload = "A" + payload + "A"
		}
		return codabar.Encode(payload)
	case Code39:
		return code39.Encode(strings.ToUpper(payload), false, false)
	default:
		return nil, ErrUnsupported
	}
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
