// Package content understands the note body formats: validation, plain text,
// preview and title derivation, and the attachment hashes a body references.
package content

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Tiptap is the HTML based format written by the editor.
const Tiptap = "tiptap"

// HeadlineLimit caps the length of a derived preview, in runes.
const HeadlineLimit = 150

var (
	blockEnd   = regexp.MustCompile(`(?i)</(p|h[1-6]|li|div|blockquote|pre|tr)>|<br\s*/?>|<hr\s*/?>`)
	tags       = regexp.MustCompile(`<[^>]*>`)
	spaces     = regexp.MustCompile(`[ \t\f\v\r]+`)
	blankLines = regexp.MustCompile(`\n{2,}`)
	hashAttr   = regexp.MustCompile(`data-hash="([^"]+)"`)
	media      = regexp.MustCompile(`(?i)<(img|iframe|video|audio)\b`)
)

// Content is a parsed note body.
type Content struct {
	Format string
	Data   string
}

// Validate reports core.ErrInvalidContentType for formats nothing can render.
func Validate(format string) error {
	if format != Tiptap {
		return fmt.Errorf("%w: %q", core.ErrInvalidContentType, format)
	}
	return nil
}

// New validates the format and wraps the data.
func New(format, data string) (Content, error) {
	if err := Validate(format); err != nil {
		return Content{}, err
	}
	return Content{Format: format, Data: data}, nil
}

// Text converts the body to plain text, one block per line.
func (c Content) Text() string {
	s := blockEnd.ReplaceAllString(c.Data, "\n")
	s = tags.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaces.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// Headline is a single line preview of the body.
func (c Content) Headline() string {
	return truncate(strings.Join(strings.Fields(c.Text()), " "), HeadlineLimit)
}

// Title is the first non-empty line of the body.
func (c Content) Title() string {
	for _, line := range strings.Split(c.Text(), "\n") {
		if line != "" {
			return truncate(line, HeadlineLimit)
		}
	}
	return ""
}

// IsEmpty reports whether the body has neither text nor embedded media.
func (c Content) IsEmpty() bool {
	if strings.TrimSpace(c.Data) == "" {
		return true
	}
	return c.Text() == "" && !media.MatchString(c.Data) && !hashAttr.MatchString(c.Data)
}

// AttachmentHashes lists the attachments referenced by the body, without duplicates.
func (c Content) AttachmentHashes() []string {
	var hashes []string
	seen := make(map[string]bool)
	for _, m := range hashAttr.FindAllStringSubmatch(c.Data, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			hashes = append(hashes, m[1])
		}
	}
	return hashes
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
