package theme

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

const (
	stylesheetHref = "/refdocs.css"

	scriptThemeInit = "/theme-init.js"
	scriptDarkMode  = "/dark-mode-toggle.js"
	scriptFilter    = "/sidebar-filter.js"
	scriptGitHub    = "/github-widget.js"
	scriptSwitcher  = "/reference-switcher.js"
)

// findElement returns the first element with the given tag, depth first.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collect gathers every element matching pred, depth first.
func collect(n *html.Node, pred func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && pred(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func elem(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func attr(key, val string) html.Attribute { return html.Attribute{Key: key, Val: val} }

func byID(doc *html.Node, id string) *html.Node {
	nodes := collect(doc, func(n *html.Node) bool { return getAttr(n, "id") == id })
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// ensureStylesheet keeps exactly one refdocs stylesheet link, appending
// one to head when missing.
func ensureStylesheet(doc, head *html.Node) {
	links := collect(doc, func(n *html.Node) bool {
		return n.Data == "link" && getAttr(n, "rel") == "stylesheet" && getAttr(n, "href") == stylesheetHref
	})
	if len(links) == 0 {
		head.AppendChild(elem("link", attr("rel", "stylesheet"), attr("href", stylesheetHref)))
		return
	}
	for _, extra := range links[1:] {
		extra.Parent.RemoveChild(extra)
	}
}

// ensureScripts wires the widget scripts: theme-init belongs in head so
// the theme applies before first paint, the rest load at the end of body.
// A script that is already present anywhere stays where it is; only
// duplicates are dropped.
func ensureScripts(doc, head, body *html.Node, opts Options) {
	ensureScript(doc, head, scriptThemeInit, opts.DarkMode)
	ensureScript(doc, body, scriptDarkMode, opts.DarkMode)
	ensureScript(doc, body, scriptFilter, opts.SidebarFilter)
	ensureScript(doc, body, scriptGitHub, opts.githubEnabled())
	ensureScript(doc, body, scriptSwitcher, true)
}

func ensureScript(doc, parent *html.Node, src string, want bool) {
	scripts := collect(doc, func(n *html.Node) bool {
		return n.Data == "script" && getAttr(n, "src") == src
	})
	if !want {
		// Never strip what a page already carries; the layouts decide.
		return
	}
	if len(scripts) == 0 {
		parent.AppendChild(elem("script", attr("src", src)))
		return
	}
	for _, extra := range scripts[1:] {
		extra.Parent.RemoveChild(extra)
	}
}

// decorateNavbar makes sure the navbar carries the dark-mode button and
// the GitHub widget mount.
func decorateNavbar(doc *html.Node, opts Options) {
	navs := collect(doc, func(n *html.Node) bool {
		return n.Data == "nav" && hasClass(n, "refdocs-navbar")
	})
	if len(navs) == 0 {
		return
	}
	nav := navs[0]

	var tools *html.Node
	if found := collect(nav, func(n *html.Node) bool {
		return n.Data == "div" && hasClass(n, "refdocs-navbar-tools")
	}); len(found) > 0 {
		tools = found[0]
	} else {
		tools = elem("div", attr("class", "refdocs-navbar-tools"))
		nav.AppendChild(tools)
	}

	if opts.githubEnabled() && byID(doc, "github-widget") == nil {
		tools.AppendChild(elem("div",
			attr("id", "github-widget"),
			attr("data-owner", opts.GitHubOwner),
			attr("data-repo", opts.GitHubRepo),
			attr("data-style", opts.GitHubStyle)))
	}
	if opts.DarkMode && byID(doc, "dark-mode-toggle") == nil {
		tools.AppendChild(elem("button",
			attr("id", "dark-mode-toggle"),
			attr("aria-label", "Toggle dark mode")))
	}
}

// countSidebarLists tags each sidebar list with its item count so the
// filter script can decide whether an input is worth showing.
func countSidebarLists(doc *html.Node) {
	lists := collect(doc, func(n *html.Node) bool {
		return n.Data == "ul" && hasClass(n, "sidebar-list")
	})
	for _, list := range lists {
		count := 0
		for c := list.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				count++
			}
		}
		setAttr(list, "data-count", strconv.Itoa(count))
	}
}
