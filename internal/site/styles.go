package site

import (
	"fmt"
	"sort"
	"strings"
)

// Color palette (WCAG 2.1 AA compliant - 4.5:1 minimum contrast ratio)
var Colors = map[string]string{
	// Backgrounds
	"bg":      "#0F172A", // Dark blue - main background
	"bgAlt":   "#1E293B", // Lighter - cards, alternating sections
	"bgHover": "#334155", // Hover states

	// Text
	"text":      "#F8FAFC", // 15.5:1 on bg
	"textMuted": "#CBD5E1", // 8.5:1 on bg
	"textDim":   "#94A3B8", // 5.2:1 on bg

	// Brand
	"primary":   "#A78BFA", // 7:1 on bg
	"secondary": "#22D3EE", // 8:1 on bg

	// Borders
	"border":      "#334155",
	"borderLight": "#475569",
}

// Typography uses system font stack for instant loading
var FontFamily = `system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif`
var FontMono = `'SF Mono', SFMono-Regular, ui-monospace, 'DejaVu Sans Mono', Menlo, Consolas, monospace`

// BarHeight is the height of the expanded navigation bar in pixels. The
// navigator's bar offset should match it.
const BarHeight = 80

// StyleOption allows customizing the generated CSS
type StyleOption func(*styleConfig)

type styleConfig struct {
	customColors map[string]string
	breakpoint   int
	includeReset bool
}

// WithCustomColors overrides default colors
func WithCustomColors(colors map[string]string) StyleOption {
	return func(cfg *styleConfig) {
		for k, v := range colors {
			cfg.customColors[k] = v
		}
	}
}

// WithBreakpoint sets the mobile menu breakpoint in pixels.
func WithBreakpoint(px int) StyleOption {
	return func(cfg *styleConfig) {
		if px > 0 {
			cfg.breakpoint = px
		}
	}
}

// WithReset includes a CSS reset
func WithReset(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeReset = include
	}
}

// RenderStyles generates the complete CSS for the portfolio page.
func RenderStyles(opts ...StyleOption) string {
	cfg := &styleConfig{
		customColors: make(map[string]string),
		breakpoint:   768,
		includeReset: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	colors := make(map[string]string)
	for k, v := range Colors {
		colors[k] = v
	}
	for k, v := range cfg.customColors {
		colors[k] = v
	}

	var sb strings.Builder

	if cfg.includeReset {
		sb.WriteString(cssReset())
	}
	sb.WriteString(cssVariables(colors))
	sb.WriteString(cssBase())
	sb.WriteString(cssNavbar())
	sb.WriteString(cssSections())
	sb.WriteString(cssAccessibility())
	sb.WriteString(cssResponsive(cfg.breakpoint))

	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;tab-size:4}
body{line-height:1.6;-webkit-font-smoothing:antialiased;-moz-osx-font-smoothing:grayscale}
img,picture,video,canvas,svg{display:block;max-width:100%}
input,button,textarea,select{font:inherit}
p,h1,h2,h3,h4,h5,h6{overflow-wrap:break-word}
a{color:inherit;text-decoration:none}
ul,ol{list-style:none}
`
}

// cssVariables emits custom properties in name order so the page is stable
// across renders.
func cssVariables(colors map[string]string) string {
	names := make([]string, 0, len(colors))
	for name := range colors {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]string, len(names))
	for i, name := range names {
		vars[i] = fmt.Sprintf("--color-%s:%s", name, colors[name])
	}
	return fmt.Sprintf(`:root{%s;--font-sans:%s;--font-mono:%s;--bar-height:%dpx}`,
		strings.Join(vars, ";"), FontFamily, FontMono, BarHeight)
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-bg);color:var(--color-text);min-height:100vh}
::selection{background:var(--color-primary);color:white}
h1{font-size:clamp(2rem,5vw,3.5rem);font-weight:800;letter-spacing:-0.02em;line-height:1.1}
h2{font-size:clamp(1.5rem,3vw,2rem);font-weight:700;line-height:1.2;margin-bottom:1.5rem}
h3{font-size:1.125rem;font-weight:600;margin:1.25rem 0 0.25rem}
p{color:var(--color-textMuted)}
code{font-family:var(--font-mono);font-size:0.9em}
.container{width:100%;max-width:1100px;margin:0 auto;padding:0 1rem}
`
}

func cssNavbar() string {
	return `
.nav{position:fixed;top:0;left:0;right:0;z-index:100;height:var(--bar-height);display:flex;align-items:center;background:transparent;transition:background 0.3s ease,box-shadow 0.3s ease,height 0.3s ease}
.nav.nav-compact{height:calc(var(--bar-height) - 16px);background:rgba(15,23,42,0.85);backdrop-filter:blur(12px);box-shadow:0 4px 20px rgba(0,0,0,0.3);border-bottom:1px solid var(--color-border)}
.nav-inner{display:flex;align-items:center;justify-content:space-between;gap:1rem}
.nav-group{display:none;align-items:center;gap:0.25rem;flex:1}
.nav-group-right{justify-content:flex-end}
.nav-link{padding:0.5rem 0.9rem;border-radius:0.5rem;color:var(--color-textMuted);font-weight:500;transition:color 0.2s ease,background 0.2s ease}
.nav-link:hover{color:var(--color-text);background:var(--color-bgHover)}
.nav-link.is-active{color:var(--color-primary);background:rgba(167,139,250,0.12)}
.brand{font-size:1.35rem;font-weight:800;letter-spacing:-0.02em;color:var(--color-text)}
.nav-toggle{display:inline-flex;align-items:center;justify-content:center;width:2.75rem;height:2.75rem;border-radius:0.5rem;border:1px solid var(--color-border);background:transparent;color:var(--color-text);cursor:pointer}
.nav-toggle-bar{display:block;width:1.25rem;height:2px;background:currentColor;box-shadow:0 6px 0 currentColor,0 -6px 0 currentColor}
.nav-toggle[aria-expanded="true"] .nav-toggle-bar{box-shadow:none;transform:rotate(45deg)}
.nav-menu{position:fixed;top:var(--bar-height);left:0;right:0;z-index:99;background:var(--color-bgAlt);border-bottom:1px solid var(--color-border)}
.nav-menu ul{display:flex;flex-direction:column;padding:0.5rem 1rem 1rem}
.nav-menu .nav-link{display:block;padding:0.75rem 0.5rem}
`
}

func cssSections() string {
	return `
main{padding-top:var(--bar-height)}
.page-section{padding:4rem 0;min-height:60vh}
.page-section:nth-child(even){background:var(--color-bgAlt)}
.page-section-home{min-height:90vh;display:flex;align-items:center}
.prose p{margin-bottom:1rem;max-width:65ch}
.prose ul{list-style:disc;padding-left:1.25rem;color:var(--color-textMuted)}
.prose table{border-collapse:collapse;width:100%;max-width:720px}
.prose th,.prose td{text-align:left;padding:0.5rem 0.75rem;border-bottom:1px solid var(--color-border)}
.section-links{display:flex;flex-wrap:wrap;gap:0.75rem;margin-top:1.5rem}
.btn{display:inline-flex;align-items:center;padding:0.75rem 1.25rem;border-radius:0.5rem;font-weight:600;min-height:2.75rem;border:1px solid var(--color-border)}
.btn:hover{border-color:var(--color-primary)}
.footer{padding:2rem 0;text-align:center;color:var(--color-textDim);font-size:0.875rem;border-top:1px solid var(--color-border)}
`
}

func cssAccessibility() string {
	return `
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
.skip-link{position:absolute;top:-40px;left:0;background:#7C3AED;color:#FFFFFF;padding:0.5rem 1rem;z-index:1000;transition:top 0.3s;font-weight:600}
.skip-link:focus{top:0}
:focus-visible{outline:2px solid var(--color-primary);outline-offset:2px}
@media(prefers-reduced-motion:reduce){*{transition-duration:0.01ms!important}}
`
}

// cssResponsive switches between the collapsed and the desktop bar at the
// navigation breakpoint.
func cssResponsive(breakpoint int) string {
	return fmt.Sprintf(`
@media(min-width:%dpx){
.nav-group{display:flex}
.nav-toggle{display:none}
.nav-menu{display:none}
.container{padding:0 1.5rem}
.page-section{padding:6rem 0}
}
`, breakpoint)
}
