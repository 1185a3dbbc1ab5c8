package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// layoutFiles maps workspace-relative paths to the built-in templates.
// Uninstall removes exactly these.
var layoutFiles = map[string]string{
	"layouts/_default/baseof.html":  baseofTemplate,
	"layouts/_default/single.html":  singleTemplate,
	"layouts/_default/list.html":    listTemplate,
	"layouts/index.html":            indexTemplate,
	"layouts/partials/head.html":    headTemplate,
	"layouts/partials/navbar.html":  navbarTemplate,
	"layouts/partials/sidebar.html": sidebarTemplate,
	"layouts/partials/footer.html":  footerTemplate,
}

// stageLayouts writes the built-in layout templates. They are regenerated
// every build; site customization happens through the config params and CSS,
// not by editing these files.
func stageLayouts(_ context.Context, bs *BuildState) error {
	for rel, content := range layoutFiles {
		path := filepath.Join(bs.Generator.docsDir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fatalErr(StageLayouts, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fatalErr(StageLayouts, fmt.Errorf("write %s: %w", rel, err))
		}
	}
	return nil
}

const baseofTemplate = `<!DOCTYPE html>
<html lang="{{ .Site.LanguageCode | default "en" }}">
<head>
  {{ partial "head.html" . }}
</head>
<body>
  {{ partial "navbar.html" . }}
  <div class="refdocs-layout">
    {{ if .Site.GetPage "/reference" }}{{ partial "sidebar.html" . }}{{ end }}
    <main class="refdocs-main">
      {{ block "main" . }}{{ end }}
    </main>
  </div>
  {{ partial "footer.html" . }}
  {{ if .Site.Params.darkMode }}<script src="/dark-mode-toggle.js" defer></script>{{ end }}
  {{ if .Site.Params.sidebarFilter }}<script src="/sidebar-filter.js" defer></script>{{ end }}
  {{ if eq .Site.Params.githubStyle "widget" }}<script src="/github-widget.js" defer></script>{{ end }}
  <script src="/reference-switcher.js" defer></script>
</body>
</html>`

const headTemplate = `<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ if not .IsHome }}{{ .Title }} | {{ end }}{{ .Site.Title }}</title>
{{ with .Site.Params.description }}<meta name="description" content="{{ . }}">{{ end }}
<style>:root{--refdocs-primary:{{ .Site.Params.primaryColor }};--refdocs-accent:{{ .Site.Params.accentColor }}}</style>
<link rel="stylesheet" href="/refdocs.css">
{{ if .Site.Params.darkMode }}<script src="/theme-init.js"></script>{{ end }}`

const navbarTemplate = `<nav class="refdocs-navbar">
  <a class="refdocs-brand" href="/">{{ .Site.Title }}</a>
  <ul class="refdocs-menu">
    {{ range .Site.Menus.main }}
    <li><a href="{{ .URL }}">{{ .Name }}</a></li>
    {{ end }}
  </ul>
  <div class="refdocs-navbar-tools">
    {{ if and .Site.Params.github (ne .Site.Params.githubStyle "off") }}
    <div id="github-widget" data-owner="{{ .Site.Params.githubOwner }}" data-repo="{{ .Site.Params.githubRepo }}" data-style="{{ .Site.Params.githubStyle }}"></div>
    {{ end }}
    {{ if .Site.Params.darkMode }}<button id="dark-mode-toggle" aria-label="Toggle dark mode"></button>{{ end }}
  </div>
</nav>`

const sidebarTemplate = `<aside class="refdocs-sidebar" data-min-items="{{ .Site.Params.sidebarMinItems }}">
  {{ $reference := .Site.GetPage "/reference" }}
  {{ with $reference }}
  {{ if $.Site.GetPage "/reference/cli" }}
  <div id="reference-switcher" data-active="{{ if hasPrefix $.RelPermalink "/reference/cli" }}cli{{ else }}api{{ end }}"></div>
  {{ end }}
  {{ range .Sections }}
  <section class="sidebar-section">
    <h3>{{ .Title }}</h3>
    <ul class="sidebar-list" data-count="{{ len .RegularPages }}">
      {{ range .RegularPages }}
      <li><a href="{{ .RelPermalink }}">{{ .Title }}</a></li>
      {{ end }}
    </ul>
  </section>
  {{ end }}
  {{ end }}
</aside>`

const listTemplate = `{{ define "main" }}
<header class="refdocs-page-header">
  <h1>{{ .Title }}</h1>
</header>
{{ .Content }}
{{ if .RegularPages }}
<table class="refdocs-index">
  <tbody>
    {{ range .RegularPages }}
    <tr>
      <td><a href="{{ .RelPermalink }}">{{ .Title }}</a></td>
      <td>{{ .Params.synopsis }}</td>
    </tr>
    {{ end }}
  </tbody>
</table>
{{ end }}
{{ end }}`

const singleTemplate = `{{ define "main" }}
<article class="refdocs-article">
  <header class="refdocs-page-header">
    <h1>{{ .Title }}</h1>
    {{ if and .Params.sourceUrl (ne .Site.Params.linkPlacement "body") }}
    <a class="refdocs-source-link" href="{{ .Params.sourceUrl }}">View source</a>
    {{ end }}
  </header>
  {{ .Content }}
</article>
{{ end }}`

const indexTemplate = `{{ define "main" }}
<article class="refdocs-landing">
  {{ .Content }}
</article>
{{ end }}`

const footerTemplate = `<footer class="refdocs-footer">
  <span>{{ .Site.Title }}{{ with .Site.Params.goVersion }} · go {{ . }}{{ end }}</span>
  <a href="/llms.txt">llms.txt</a>
</footer>`
