package sitescore

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// AssetKind distinguishes the two external asset classes of a page.
type AssetKind int

const (
	Stylesheet AssetKind = iota
	Script
)

func (k AssetKind) String() string {
	if k == Script {
		return "script"
	}
	return "stylesheet"
}

// Assets holds everything a page pulls in, inline and by reference.
type Assets struct {
	InlineCSS string
	CSSLinks  []string
	InlineJS  string
	JSLinks   []string
}

// Inline returns the inline content of the given kind.
func (a *Assets) Inline(kind AssetKind) string {
	if kind == Script {
		return a.InlineJS
	}
	return a.InlineCSS
}

// Links returns the external references of the given kind in document order.
func (a *Assets) Links(kind AssetKind) []string {
	if kind == Script {
		return a.JSLinks
	}
	return a.CSSLinks
}

// Extract parses an HTML document and collects its styles and scripts.
// Parsing is lenient: malformed markup never fails, only a read error does.
func Extract(r io.Reader) (*Assets, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	doc := goquery.NewDocumentFromNode(root)

	return &Assets{
		InlineCSS: joinText(doc.Find("style")),
		CSSLinks:  collectAttr(doc.Find(`link[rel="stylesheet"]`), "href"),
		InlineJS:  joinText(doc.Find("script:not([src])")),
		JSLinks:   collectAttr(doc.Find("script[src]"), "src"),
	}, nil
}

func joinText(sel *goquery.Selection) string {
	texts := sel.Map(func(_ int, s *goquery.Selection) string {
		return s.Text()
	})
	return strings.Join(texts, "\n")
}

func collectAttr(sel *goquery.Selection, name string) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(name); ok {
			out = append(out, v)
		}
	})
	return out
}
