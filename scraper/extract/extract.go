// Package extract holds the null-safe DOM lookups every crawler is built on.
// A missing element yields nil or an empty slice, never an error.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text returns the normalized text of the first element matching selector
// under sel, or nil when nothing matches or the text is empty.
// An empty selector reads sel itself.
func Text(sel *goquery.Selection, selector string) *string {
	el := first(sel, selector)
	if el == nil {
		return nil
	}
	text := TextOf(el)
	if text == "" {
		return nil
	}
	return &text
}

// Attr returns the trimmed attribute value of the first element matching
// selector, or nil when the element or attribute is missing or blank.
func Attr(sel *goquery.Selection, selector, attr string) *string {
	el := first(sel, selector)
	if el == nil {
		return nil
	}
	val, ok := el.Attr(attr)
	if !ok {
		return nil
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	return &val
}

// All returns every element matching selector under sel, in document order.
func All(sel *goquery.Selection, selector string) []*goquery.Selection {
	if sel == nil {
		return nil
	}
	matches := sel.Find(selector)
	out := make([]*goquery.Selection, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s)
	})
	return out
}

// Texts returns the non-empty normalized texts of every match.
func Texts(sel *goquery.Selection, selector string) []string {
	var out []string
	for _, el := range All(sel, selector) {
		if text := TextOf(el); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// TextOf returns the element text with each line's whitespace collapsed and
// blank lines dropped, which approximates a stripped innerText.
func TextOf(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var lines []string
	for _, line := range strings.Split(sel.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// CollapseSpace joins all whitespace runs, newlines included, into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ResolveURL makes href absolute against base. Absolute hrefs are returned as is.
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if ref.IsAbs() {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

func first(sel *goquery.Selection, selector string) *goquery.Selection {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	if selector == "" {
		return sel.First()
	}
	el := sel.Find(selector).First()
	if el.Length() == 0 {
		return nil
	}
	return el
}
