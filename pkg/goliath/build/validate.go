package build

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Markers the structural contract looks for. Generation is instructed
// to emit these; the validator only ever reads them.
const (
	SponsorSlotMarker = "AFF_SLOT"
	SponsorSlotID     = "aff-slot"
	RelatedHook       = "window.__RELATED__"
	RelatedHookID     = "related-data"
	LangSwitcherID    = "langSel"
	HubPath           = "/hub/"
)

// policySections in required order; the reported reason names the first
// one missing.
var policySections = []string{"privacy", "terms", "disclaimer", "about", "contact"}

// Validator checks a generated artifact against the fixed structural
// contract. Checks run in a fixed order and the first failure is the
// verdict; the repair loop fixes one issue per iteration.
type Validator struct {
	MinI18nBindings int
}

// Validate applies the structural contract to raw artifact text.
func (v *Validator) Validate(artifact string) Verdict {
	trimmed := strings.TrimSpace(artifact)
	lower := strings.ToLower(trimmed)
	if !strings.HasPrefix(lower, "<!doctype html") {
		return Invalid("missing document wrapper: doctype")
	}
	if !strings.Contains(lower, "<html") || !strings.Contains(lower, "</html>") {
		return Invalid("missing document wrapper: html element")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(artifact))
	if err != nil {
		return Invalid(fmt.Sprintf("unparseable document: %v", err))
	}

	for _, section := range policySections {
		if !hasComplianceLink(doc, section) {
			return Invalid(fmt.Sprintf("missing policy sections: ['%s']", section))
		}
	}

	if doc.Find("select#" + LangSwitcherID).Length() == 0 {
		return Invalid("missing language switcher")
	}

	min := v.MinI18nBindings
	if min <= 0 {
		min = 12
	}
	if n := doc.Find("[data-i18n]").Length(); n < min {
		return Invalid(fmt.Sprintf("too few localizable bindings: %d < %d", n, min))
	}

	if !hasHubBacklink(doc) {
		return Invalid("missing hub back-link")
	}

	if !strings.Contains(artifact, SponsorSlotMarker) && doc.Find("#"+SponsorSlotID).Length() == 0 {
		return Invalid("missing sponsor placeholder marker")
	}

	if !strings.Contains(artifact, RelatedHook) && doc.Find("#"+RelatedHookID).Length() == 0 {
		return Invalid("missing related-links data hook")
	}

	return Ok()
}

// hasComplianceLink accepts either a link whose href mentions the
// section or an element carrying its i18n key, matching the shapes the
// generator is asked to produce.
func hasComplianceLink(doc *goquery.Document, section string) bool {
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(strings.ToLower(href), section) {
			found = true
			return false
		}
		return true
	})
	if found {
		return true
	}
	return doc.Find(fmt.Sprintf("[data-i18n=%q]", section)).Length() > 0
}

func hasHubBacklink(doc *goquery.Document) bool {
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if strings.Contains(href, HubPath) {
			found = true
			return false
		}
		return true
	})
	return found
}
