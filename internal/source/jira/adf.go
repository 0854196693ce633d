package jira

import "strings"

// FlattenADF converts an Atlassian Document Format tree to plain text.
// Top-level blocks are separated by a blank line; the children of a block
// are separated by a single newline, each child contributing the
// concatenation of every text node beneath it.
func FlattenADF(doc *ADFNode) string {
	if doc == nil {
		return ""
	}

	blocks := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		lines := make([]string, 0, len(block.Content))
		for _, child := range block.Content {
			lines = append(lines, collectText(child))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

// collectText concatenates every text node in the subtree rooted at n.
func collectText(n ADFNode) string {
	if len(n.Content) == 0 {
		return n.Text
	}

	var b strings.Builder
	b.WriteString(n.Text)
	for _, c := range n.Content {
		b.WriteString(collectText(c))
	}
	return b.String()
}
