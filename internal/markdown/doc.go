// Package markdown loads chapter pages from a content tree: it splits the
// front matter from the body, reads the book/chapter/section from the path
// and records the headings, fenced code blocks, shortcodes and quiz blocks
// the lint rules inspect.
package markdown
