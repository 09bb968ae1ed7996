package handler

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/bitacora/internal/service"
	"github.com/bitacora/internal/view"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithUnsafe()),
	)
	sanitizer = buildContentSanitizer()
)

// renderMarkdown converts an article body to sanitised HTML. Bodies written
// as raw HTML pass through goldmark untouched and are sanitised the same way.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(source)), &buf); err != nil {
		return template.HTML(sanitizer.Sanitize(template.HTMLEscapeString(source)))
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}

// TemplateFuncs returns the helpers available to every template. Dates are
// shown in loc, or UTC when loc is nil.
func TemplateFuncs(images *service.ImageStore, loc *time.Location) template.FuncMap {
	if loc == nil {
		loc = time.UTC
	}
	return template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"sub":      func(a, b int) int { return a - b },
		"markdown": renderMarkdown,
		"media": func(rel string) string {
			if images == nil {
				return ""
			}
			return images.URL(rel)
		},
		"fecha":      func(t time.Time) string { return formatDate(t, loc) },
		"socialIcon": view.SocialIconSVG,
		"hasError": func(errs service.ValidationErrors, field string) bool {
			_, ok := errs[field]
			return ok
		},
		"containsID": func(ids []uint, id uint) bool {
			for _, candidate := range ids {
				if candidate == id {
					return true
				}
			}
			return false
		},
	}
}

// formatDate renders t in loc as "2 de marzo de 2024".
func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(loc)
	return strings.Join([]string{
		strconv.Itoa(t.Day()), "de", service.SpanishMonth(t.Month()), "de", strconv.Itoa(t.Year()),
	}, " ")
}
