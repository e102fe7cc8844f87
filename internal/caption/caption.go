// Package caption は商品データからチャンネル投稿用の本文を組み立てる。
package caption

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	paragraphRe = regexp.MustCompile(`</?p>`)
	lineBreakRe = regexp.MustCompile(`<br\s*/?>`)
	anyTagRe    = regexp.MustCompile(`<.*?>`)
)

// CleanHTML はTelegramが受け付けないHTMLタグを落とす。
// <p>と<br>は改行に変換し、それ以外のタグは除去する。
func CleanHTML(text string) string {
	if text == "" {
		return ""
	}
	text = paragraphRe.ReplaceAllString(text, "\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Build は固定テンプレートの投稿本文を返す（HTMLパースモード前提）。
func Build(name, description, url string) string {
	return fmt.Sprintf("🛒 <b>%s</b>\n\n%s\n\n🔗 More info: %s", name, CleanHTML(description), url)
}
