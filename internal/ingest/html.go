package ingest

import (
	"bytes"
	"strings"

	"github.com/ppiankov/zuordnung/internal/model"
	"golang.org/x/net/html"
)

// HTMLAdapter reads cross-reference tables published as HTML pages
type HTMLAdapter struct{}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle checks the filename extension
func (a *HTMLAdapter) CanHandle(filename string) bool {
	low := strings.ToLower(filename)
	return strings.HasSuffix(low, ".html") || strings.HasSuffix(low, ".htm")
}

// Read collects the cell text of every table row in the document, then
// resolves columns the same way the CSV adapter does
func (a *HTMLAdapter) Read(data []byte) (*Document, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	records := tableRecords(doc)
	if len(records) == 0 {
		return &Document{Shape: model.ShapeTabular}, nil
	}

	if cm, ok := detectColumns(records[0]); ok {
		return &Document{
			Shape:           model.ShapeTabular,
			Rows:            rowsFromRecords(records[1:], cm),
			ColumnsDeclared: true,
		}, nil
	}

	cm := columnMap{source: 0, target: 1, title: -1, description: -1, category: -1}
	return &Document{
		Shape: model.ShapeTabular,
		Rows:  rowsFromRecords(records, cm),
	}, nil
}

// tableRecords walks the node tree and returns one record per <tr>,
// with one cell per <td>/<th>
func tableRecords(doc *html.Node) [][]string {
	var records [][]string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(nodeText(c)))
				}
			}
			if len(cells) > 0 {
				records = append(records, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return records
}

// nodeText extracts the visible text of a node, skipping scripts/styles
func nodeText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if buf.Len() > 0 {
					buf.WriteString(" ")
				}
				buf.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
