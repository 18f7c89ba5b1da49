package database

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// Lookup searches notes and notebooks. Every non-stopword term of the query
// must occur; results are ranked by how often the terms occur.
type Lookup struct {
	env
	notes     *Notes
	notebooks *Notebooks
	stop      *stopwords.Stopwords
}

func newLookup(e env) *Lookup {
	return &Lookup{env: e, stop: stopwords.MustGet("en")}
}

// Notes searches the title and plain text of live notes. Locked notes are
// matched on their title only.
func (l *Lookup) Notes(ctx context.Context, query string) ([]core.Note, error) {
	m, err := l.matcher(query)
	if err != nil || m == nil {
		return nil, err
	}
	notes, err := l.notes.All(ctx)
	if err != nil {
		return nil, err
	}
	var hits []scored[core.Note]
	for _, note := range notes {
		text := note.Title
		if !note.Locked && note.ContentID != "" {
			if body, err := l.notes.content.Parsed(ctx, note.ContentID); err == nil {
				text += "\n" + body.Text()
			}
		}
		if score := m.score(text); score > 0 {
			hits = append(hits, scored[core.Note]{item: note, score: score})
		}
	}
	return ranked(hits), nil
}

// Notebooks searches notebook titles, descriptions and topic titles.
func (l *Lookup) Notebooks(ctx context.Context, query string) ([]core.Notebook, error) {
	m, err := l.matcher(query)
	if err != nil || m == nil {
		return nil, err
	}
	all, err := l.notebooks.All(ctx)
	if err != nil {
		return nil, err
	}
	var hits []scored[core.Notebook]
	for _, nb := range all {
		parts := []string{nb.Title, nb.Description}
		for _, t := range nb.Topics {
			parts = append(parts, t.Title)
		}
		if score := m.score(strings.Join(parts, "\n")); score > 0 {
			hits = append(hits, scored[core.Notebook]{item: nb, score: score})
		}
	}
	return ranked(hits), nil
}

// Terms splits a query into lowercase search terms without stopwords. A
// query made only of stopwords keeps them.
func (l *Lookup) Terms(query string) []string {
	var all, kept []string
	seen := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-'
	}) {
		if seen[f] {
			continue
		}
		seen[f] = true
		all = append(all, f)
		if !l.stop.Contains(f) {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return all
	}
	return kept
}

type termMatcher struct {
	ac    *ahocorasick.Automaton
	terms int
}

func (l *Lookup) matcher(query string) (*termMatcher, error) {
	terms := l.Terms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build search automaton: %w", err)
	}
	return &termMatcher{ac: ac, terms: len(terms)}, nil
}

// score is the number of term occurrences in text, or 0 when a term is missing.
func (m *termMatcher) score(text string) int {
	matches := m.ac.FindAllOverlapping([]byte(strings.ToLower(text)))
	found := make(map[int]bool, m.terms)
	for _, match := range matches {
		found[match.PatternID] = true
	}
	if len(found) < m.terms {
		return 0
	}
	return len(matches)
}

type scored[T any] struct {
	item  T
	score int
}

func ranked[T any](hits []scored[T]) []T {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}
