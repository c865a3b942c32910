package utils

import (
	"regexp"
	"strings"
)

var (
	reBrackets = regexp.MustCompile(`[\[【].*?[\]】]`)
	reQuality  = regexp.MustCompile(`(?i)\b(1080p|720p|4k|2k|web-dl|web-rip|bluray|dvdrip)\b`)
	reTokens   = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

// CleanMovieTitle 清理手动录入标题中的杂质信息
// 保留圆括号与标点，只移除方括号标签与画质提示
func CleanMovieTitle(title string) string {
	if title == "" {
		return ""
	}

	// 1. 移除方括号及其内容（压制组、分辨率等标签）
	title = reBrackets.ReplaceAllString(title, " ")

	// 2. 移除常见的画质提示词
	title = reQuality.ReplaceAllString(title, " ")

	// 3. 处理多余空格
	return strings.Join(strings.Fields(title), " ")
}

// Tokenize 小写并切分为字母数字词元
func Tokenize(text string) []string {
	return reTokens.FindAllString(strings.ToLower(text), -1)
}

// Truncate 按字符截断，超出部分以 ... 结尾
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
