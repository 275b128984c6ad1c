package barcode

import (
	"fmt"
	"strings"
)

// Symbology 是支持的条码制式。
type Symbology int

const (
	UPCA Symbology = iota
	UPCE
	EAN8
	EAN13
	ITF
	Code128
	Codabar
	Code39
	QR
)

var symbologyNames = [...]string{
	UPCA:    "upc-a",
	UPCE:    "upc-e",
	EAN8:    "ean-8",
	EAN13:   "ean-13",
	ITF:     "itf",
	Code128: "code128",
	Codabar: "codabar",
	Code39:  "code39",
	QR:      "qr",
}

// 别名在比较前去掉了大小写、连字符、下划线与空格。
var symbologyAliases = map[string]Symbology{
	"upca":            UPCA,
	"upc":             UPCA,
	"upce":            UPCE,
	"ean8":            EAN8,
	"ean13":           EAN13,
	"ean":             EAN13,
	"itf":             ITF,
	"itf14":           ITF,
	"i2of5":           ITF,
	"interleaved2of5": ITF,
	"code128":         Code128,
	"c128":            Code128,
	"codabar":         Codabar,
	"nw7":             Codabar,
	"code39":          Code39,
	"c39":             Code39,
	"qr":              QR,
	"qrcode":          QR,
}

func (s Symbology) String() string {
	if s < 0 || int(s) >= len(symbologyNames) {
		return fmt.Sprintf("Symbology(%d)", int(s))
	}
	return symbologyNames[s]
}

// Is2D 报告是否为二维码。
func (s Symbology) Is2D() bool { return s == QR }

// ParseSymbology 按名称解析制式，空字符串视为 QR。
func ParseSymbology(name string) (Symbology, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return QR, nil
	}
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	if sym, ok := symbologyAliases[key]; ok {
		return sym, nil
	}
	return QR, fmt.Errorf("未知的条码制式：%s", name)
}
