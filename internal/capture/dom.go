package capture

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// personName matches capitalised multi-word names such as "Kalle Lehto".
var personName = regexp.MustCompile(`[A-ZÄÖÅ][a-zäöå]+(?:\s+[A-ZÄÖÅ][a-zäöå]+)+`)

// FromDOM reads person names from the open dialog, or from the body when no dialog is
// open. Nothing is returned unless the scope mentions the nationality word or one of the
// watched names. A name whose container also lists the nationality code is tagged with it.
func FromDOM(doc *goquery.Document, url string, nat Nationality, watch []string) []Sighting {
	scope := doc.Find(`[role="dialog"]`).First()
	if scope.Length() == 0 {
		scope = doc.Find("body")
	}

	var leaves []*goquery.Selection
	var texts []string
	scope.Find("*").Not("script, style, noscript").Each(func(_ int, el *goquery.Selection) {
		if el.Children().Length() > 0 {
			return
		}
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}
		leaves = append(leaves, el)
		texts = append(texts, text)
	})

	if !mentions(strings.ToLower(strings.Join(texts, " ")), nat.Word, watch) {
		return nil
	}

	var codePattern *regexp.Regexp
	if nat.Code != "" {
		codePattern = regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToUpper(nat.Code)) + `\b`)
	}

	seen := make(map[string]bool)
	out := make([]Sighting, 0)
	for i, el := range leaves {
		for _, name := range personName.FindAllString(texts[i], -1) {
			if seen[name] {
				continue
			}
			seen[name] = true

			s := Sighting{Name: name, Source: SourceDOM, URL: url}
			if codePattern != nil && codePattern.MatchString(siblingText(el)) {
				s.NationalityCode = strings.ToUpper(nat.Code)
			}
			out = append(out, s)
		}
	}
	return out
}

func mentions(text, word string, watch []string) bool {
	if word != "" && strings.Contains(text, strings.ToLower(word)) {
		return true
	}
	for _, w := range watch {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// siblingText joins the texts of el and its siblings with spaces.
func siblingText(el *goquery.Selection) string {
	var parts []string
	el.Parent().Children().Each(func(_ int, c *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(c.Text()))
	})
	return strings.Join(parts, " ")
}
