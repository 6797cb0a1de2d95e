package site

import (
	"fmt"
	"html"
	"strings"

	json "github.com/goccy/go-json"
)

// RenderHead generates the <head> section with SEO, Open Graph and JSON-LD.
// nonce is the CSP nonce for the inline style and script elements.
func RenderHead(cfg PageConfig, nonce, customCSS string) string {
	var sb strings.Builder

	themeColor := cfg.ThemeColor
	if themeColor == "" {
		themeColor = Colors["primary"]
	}

	sb.WriteString("<head>\n")

	sb.WriteString(`<meta charset="UTF-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")

	sb.WriteString(fmt.Sprintf("<title>%s</title>\n", html.EscapeString(cfg.Title)))

	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.Author != "" {
		sb.WriteString(fmt.Sprintf(`<meta name="author" content="%s">`+"\n", html.EscapeString(cfg.Author)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<link rel="canonical" href="%s">`+"\n", html.EscapeString(cfg.URL)))
	}
	sb.WriteString(fmt.Sprintf(`<meta name="theme-color" content="%s">`+"\n", html.EscapeString(themeColor)))

	sb.WriteString(renderOpenGraph(cfg))
	sb.WriteString(renderJSONLD(cfg, nonce))

	sb.WriteString(fmt.Sprintf("<style nonce=\"%s\">\n", html.EscapeString(nonce)))
	sb.WriteString(RenderStyles(WithBreakpoint(cfg.Breakpoint)))
	if customCSS != "" {
		sb.WriteString("\n")
		sb.WriteString(customCSS)
	}
	sb.WriteString("\n</style>\n")

	sb.WriteString("</head>\n")

	return sb.String()
}

func renderOpenGraph(cfg PageConfig) string {
	var sb strings.Builder

	sb.WriteString(`<meta property="og:type" content="profile">` + "\n")
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:title" content="%s">`+"\n", html.EscapeString(cfg.Title)))
	}
	if cfg.Description != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:description" content="%s">`+"\n", html.EscapeString(cfg.Description)))
	}
	if cfg.URL != "" {
		sb.WriteString(fmt.Sprintf(`<meta property="og:url" content="%s">`+"\n", html.EscapeString(cfg.URL)))
	}

	return sb.String()
}

func renderJSONLD(cfg PageConfig, nonce string) string {
	data, err := json.Marshal(map[string]string{
		"@context":    "https://schema.org",
		"@type":       "Person",
		"name":        cfg.Author,
		"description": cfg.Description,
		"url":         cfg.URL,
	})
	if err != nil {
		return ""
	}
	// Marshal escapes HTML characters, so values cannot close the element.
	return fmt.Sprintf(`<script type="application/ld+json" nonce="%s">%s</script>`+"\n", html.EscapeString(nonce), data)
}

// RenderDocument wraps body in a complete HTML document.
func RenderDocument(cfg PageConfig, nonce, customCSS, body string) string {
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
%s<body>
%s
</body>
</html>`, html.EscapeString(lang), RenderHead(cfg, nonce, customCSS), body)
}
