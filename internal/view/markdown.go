package view

import (
	"bytes"
	"html/template"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown 将 Markdown 转为经过清洗的 HTML
func RenderMarkdown(content string) (template.HTML, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// MarkdownHTML 渲染失败时退回转义后的原文
func MarkdownHTML(content string) string {
	out, err := RenderMarkdown(content)
	if err != nil {
		log.Printf("[view] render markdown: %v", err)
		return template.HTMLEscapeString(content)
	}
	return string(out)
}
