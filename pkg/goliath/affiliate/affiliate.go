// Package affiliate selects, sanitizes and injects sponsor blocks
// into generated artifacts.
package affiliate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/mikanntool/goliath/pkg/goliath/config"
)

// relTokens every sponsor anchor must carry. Existing rel values are
// merged in, never overwritten.
var relTokens = []string{"nofollow", "sponsored", "noopener"}

// Select picks up to limit catalog entries for injection, highest
// priority first; anything containing script markup is rejected
// outright.
func Select(entries []config.AffiliateEntry, limit int) []config.AffiliateEntry {
	if limit <= 0 {
		limit = 2
	}

	ranked := make([]config.AffiliateEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	var out []config.AffiliateEntry
	for _, e := range ranked {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.HTML), "<script") {
			continue
		}
		if strings.TrimSpace(e.HTML) == "" {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Sanitize rewrites every anchor in a sponsor snippet: target set to
// _blank and the rel attribute extended with nofollow, sponsored and
// noopener. Malformed markup is normalized by the parser rather than
// rejected.
func Sanitize(snippet string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(snippet), ctx)
	if err != nil {
		return "", fmt.Errorf("parse sponsor snippet: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		rewriteAnchors(n)
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func rewriteAnchors(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		setAttr(n, "target", "_blank")
		setAttr(n, "rel", mergeRel(getAttr(n, "rel")))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteAnchors(c)
	}
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
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// mergeRel unions the required rel tokens with whatever the snippet
// already declared, preserving the original token order.
func mergeRel(existing string) string {
	out := strings.Fields(existing)
	have := make(map[string]struct{}, len(out))
	for _, t := range out {
		have[t] = struct{}{}
	}
	for _, t := range relTokens {
		if _, ok := have[t]; !ok {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// hookScript reports sponsor clicks to the tracking endpoint, keyed
// by the container's sponsor id and page slug. Best-effort: a blocked
// or failing beacon never disturbs the page.
const hookScript = `<script>document.querySelectorAll(".aff-item a").forEach(function(a){a.addEventListener("click",function(){var w=a.closest(".aff-item");try{navigator.sendBeacon(%q,JSON.stringify({event:"click",ad_id:w.dataset.affId,page:w.dataset.page,ts:new Date().toISOString()}))}catch(e){}})});</script>`

// Render wraps sanitized entries in containers keyed by sponsor id
// and page slug and joins them into the block that replaces the
// sponsor placeholder. When clickEndpoint is set a click hook script
// is attached after the containers.
func Render(entries []config.AffiliateEntry, page, clickEndpoint string) (string, error) {
	var parts []string
	for _, e := range entries {
		clean, err := Sanitize(e.HTML)
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf(`<div class="aff-item" data-aff-id="%s" data-page="%s">%s</div>`,
			html.EscapeString(e.ID), html.EscapeString(page), clean))
	}
	if len(parts) > 0 && clickEndpoint != "" {
		parts = append(parts, fmt.Sprintf(hookScript, clickEndpoint))
	}
	return strings.Join(parts, "\n"), nil
}

// Inject places the rendered sponsor block into the artifact: at the
// placeholder marker when present, otherwise directly after the
// opening main tag, otherwise before the closing body tag.
func Inject(artifact, block, marker string) string {
	if block == "" {
		return artifact
	}
	if strings.Contains(artifact, marker) {
		return strings.Replace(artifact, marker, block, 1)
	}
	if idx := openTagEnd(artifact, "<main"); idx >= 0 {
		return artifact[:idx] + "\n" + block + artifact[idx:]
	}
	if idx := strings.Index(strings.ToLower(artifact), "</body>"); idx >= 0 {
		return artifact[:idx] + block + "\n" + artifact[idx:]
	}
	return artifact + "\n" + block
}

// openTagEnd returns the index just past the ">" of the first opening
// tag with the given prefix, or -1.
func openTagEnd(doc, prefix string) int {
	lower := strings.ToLower(doc)
	start := strings.Index(lower, prefix)
	if start < 0 {
		return -1
	}
	end := strings.Index(lower[start:], ">")
	if end < 0 {
		return -1
	}
	return start + end + 1
}

// Priority maps an observed click count onto the catalog priority
// scale: 30 + 20*ln(1+clicks), clamped to [30, 90].
func Priority(clicks int) int {
	if clicks < 0 {
		clicks = 0
	}
	p := 30 + 20*math.Log(1+float64(clicks))
	if p < 30 {
		p = 30
	}
	if p > 90 {
		p = 90
	}
	return int(math.Round(p))
}
