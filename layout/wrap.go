package layout

import (
	"sort"
	"strings"
	"unicode"
)

// widthEpsilon 吸收前缀和累加的浮点误差，避免“恰好放满”的一行被判为溢出。
const widthEpsilon = 1e-9

// WidthFunc 返回单个字符的宽度（pt）。
type WidthFunc func(r rune) float64

// Wrap 按最大宽度贪心折行。
// 整段放得下时原样返回一行；否则用逐字宽度的前缀和二分查找每行最远的切点，
// 切点落在单词内部时回退到 start 之后最近的空白处，没有空白则在切点硬切。
// 每行去掉行尾空白；preserveLeadingSpaces 为 false 时跳过每行行首空白。
func Wrap(text string, widthOf WidthFunc, maxWidth float64, preserveLeadingSpaces bool) []string {
	if text == "" {
		return nil
	}
	if !preserveLeadingSpaces && strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	prefix := prefixWidths(runes, widthOf)
	n := len(runes)

	if prefix[n] <= maxWidth+widthEpsilon {
		line := strings.TrimRightFunc(text, unicode.IsSpace)
		if !preserveLeadingSpaces {
			line = strings.TrimLeftFunc(line, unicode.IsSpace)
		}
		if line == "" {
			return nil
		}
		return []string{line}
	}

	var lines []string
	start := 0
	for start < n {
		if !preserveLeadingSpaces {
			for start < n && unicode.IsSpace(runes[start]) {
				start++
			}
			if start >= n {
				break
			}
		}
		end, next := cutPoint(runes, prefix, start, maxWidth)
		line := strings.TrimRightFunc(string(runes[start:end]), unicode.IsSpace)
		if line != "" {
			lines = append(lines, line)
		}
		start = next
	}
	return lines
}

// SplitAt 在 available 宽度处把 text 切成能放下的头部与剩余的尾部，
// 切点规则与 Wrap 相同。头部去掉行尾空白，尾部去掉行首空白。
func SplitAt(text string, widthOf WidthFunc, available float64) (head, tail string) {
	runes := []rune(text)
	if len(runes) == 0 {
		return "", ""
	}
	prefix := prefixWidths(runes, widthOf)
	if prefix[len(runes)] <= available+widthEpsilon {
		return text, ""
	}
	end, next := cutPoint(runes, prefix, 0, available)
	head = strings.TrimRightFunc(string(runes[:end]), unicode.IsSpace)
	tail = strings.TrimLeftFunc(string(runes[next:]), unicode.IsSpace)
	return head, tail
}

func prefixWidths(runes []rune, widthOf WidthFunc) []float64 {
	prefix := make([]float64, len(runes)+1)
	for i, r := range runes {
		prefix[i+1] = prefix[i] + widthOf(r)
	}
	return prefix
}

// cutPoint 返回本行的结束位置 end（不含）与下一行的起点 next。
// 至少前进一个字符，保证单个字符宽于 maxWidth 时也能终止。
func cutPoint(runes []rune, prefix []float64, start int, maxWidth float64) (end, next int) {
	n := len(runes)
	base := prefix[start]
	// 第一个放不下的长度 k：prefix[start+k]-base > maxWidth
	k := sort.Search(n-start+1, func(k int) bool {
		return prefix[start+k]-base > maxWidth+widthEpsilon
	})
	end = start + k - 1
	if end <= start {
		end = start + 1
	}
	if end >= n {
		return n, n
	}
	if !unicode.IsSpace(runes[end-1]) && !unicode.IsSpace(runes[end]) {
		for i := end - 1; i > start; i-- {
			if unicode.IsSpace(runes[i]) {
				// 在空白处断行，并吃掉这一个分隔空白
				return i, i + 1
			}
		}
		return end, end
	}
	if unicode.IsSpace(runes[end]) {
		return end, end + 1
	}
	return end, end
}
