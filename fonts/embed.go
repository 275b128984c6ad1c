package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体表：Go 字体家族（比例字体与等宽字体各四种样式）。
var builtin = map[string][]byte{
	"go":                  goregular.TTF,
	"go-bold":             gobold.TTF,
	"go-italic":           goitalic.TTF,
	"go-bold-italic":      gobolditalic.TTF,
	"go-mono":             gomono.TTF,
	"go-mono-bold":        gomonobold.TTF,
	"go-mono-italic":      gomonoitalic.TTF,
	"go-mono-bold-italic": gomonobolditalic.TTF,
}

// 默认使用等宽字体，小票上的列对齐依赖它。
var defaults = [4]string{"go-mono", "go-mono-bold", "go-mono-italic", "go-mono-bold-italic"}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-mono"、"embed:go-mono" 或直接 "go-mono"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range []string{"builtin:", "built-in:", "embed:"} {
		key = strings.TrimPrefix(key, prefix)
	}
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
	}
	return data, nil
}

// IsBuiltin 报告 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	s := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(s, "builtin:") || strings.HasPrefix(s, "built-in:") || strings.HasPrefix(s, "embed:")
}

// Default 返回第 i 个字体角色（默认、粗体、斜体、粗斜体）的内置字体名。
func Default(role int) string {
	if role < 0 || role >= len(defaults) {
		role = 0
	}
	return "builtin:" + defaults[role]
}

// Names 列出全部内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
