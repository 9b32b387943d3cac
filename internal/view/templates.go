package view

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// SiteName 是后台页面显示的站点名称
const SiteName = "Student Committee"

// Templates 解析后台页面模板
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "_", " ")
		},
		"year": func() int { return time.Now().Year() },
	}).ParseFS(templateFS, "templates/*.html"))
}
