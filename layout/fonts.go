package layout

import (
	"fmt"
	"strings"
)

// FontRole 是字体角色的封闭集合。
type FontRole int

const (
	RoleDefault FontRole = iota
	RoleBold
	RoleItalic
	RoleBoldItalic
)

func (r FontRole) String() string {
	switch r {
	case RoleBold:
		return "bold"
	case RoleItalic:
		return "italic"
	case RoleBoldItalic:
		return "bold-italic"
	default:
		return "default"
	}
}

// ParseFontRole 解析 default/regular、bold、italic、bold-italic（也接受 italic-bold）。
func ParseFontRole(s string) (FontRole, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "regular", "normal":
		return RoleDefault, nil
	case "bold", "b":
		return RoleBold, nil
	case "italic", "i", "oblique":
		return RoleItalic, nil
	case "bold-italic", "italic-bold", "bolditalic", "bi":
		return RoleBoldItalic, nil
	default:
		return RoleDefault, fmt.Errorf("未知的字体角色：%s", s)
	}
}

// FontFaces 为四种角色各保存一个字体句柄（后端自行解释，如 "builtin:go" 或字体文件路径）。
type FontFaces struct {
	Default    string `json:"default" yaml:"default"`
	Bold       string `json:"bold" yaml:"bold"`
	Italic     string `json:"italic" yaml:"italic"`
	BoldItalic string `json:"boldItalic" yaml:"bold-italic"`
}

// Face 返回角色对应的句柄。
func (f FontFaces) Face(role FontRole) string {
	switch role {
	case RoleBold:
		return f.Bold
	case RoleItalic:
		return f.Italic
	case RoleBoldItalic:
		return f.BoldItalic
	default:
		return f.Default
	}
}

// FontSettings 是字号加四个角色句柄。它是值类型：任何组件保存它时得到的都是独立快照。
type FontSettings struct {
	Size  int       `json:"size" yaml:"size"`
	Faces FontFaces `json:"faces" yaml:"faces"`
}

// Spec 返回指定角色、按本设置字号的 FontSpec。
func (s FontSettings) Spec(role FontRole) FontSpec {
	return FontSpec{Role: role, Size: float64(s.Size)}
}

// FontSpec 是一次测量或绘制所需的全部字体信息。
type FontSpec struct {
	Role FontRole `json:"role"`
	Size float64  `json:"size"`
}
