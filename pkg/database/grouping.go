package database

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

// GroupBy selects how notes are bucketed.
type GroupBy string

const (
	GroupDefault GroupBy = "default"
	GroupNone    GroupBy = "none"
	GroupABC     GroupBy = "abc"
	GroupMonth   GroupBy = "month"
	GroupWeek    GroupBy = "week"
	GroupYear    GroupBy = "year"
)

// SortBy selects the field notes are ordered by.
type SortBy string

const (
	SortDateCreated SortBy = "dateCreated"
	SortDateEdited  SortBy = "dateEdited"
	SortTitle       SortBy = "title"
)

// SortOptions controls Group.
type SortOptions struct {
	GroupBy   GroupBy
	SortBy    SortBy
	Ascending bool
}

// Group is one bucket of notes.
type Group struct {
	Title string      `json:"title"`
	Notes []core.Note `json:"notes"`
}

const (
	GroupPinned   = "Pinned"
	GroupRecent   = "Recent"
	GroupLastWeek = "Last week"
	GroupOlder    = "Older"
)

// Group buckets the live notes. Pinned notes come first in their own group;
// the rest keep the requested order inside their bucket.
func (n *Notes) Group(ctx context.Context, opts SortOptions) ([]Group, error) {
	notes, err := n.All(ctx)
	if err != nil {
		return nil, err
	}
	return GroupNotes(notes, opts, n.clock()), nil
}

// GroupNotes buckets notes relative to now.
func GroupNotes(notes []core.Note, opts SortOptions, now time.Time) []Group {
	if opts.GroupBy == "" {
		opts.GroupBy = GroupDefault
	}
	if opts.SortBy == "" {
		opts.SortBy = SortDateEdited
	}
	if opts.GroupBy == GroupABC {
		opts.SortBy = SortTitle
	}
	sorted := make([]core.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		less := lessNote(sorted[i], sorted[j], opts.SortBy)
		if opts.Ascending {
			return less
		}
		return lessNote(sorted[j], sorted[i], opts.SortBy)
	})

	var groups []Group
	index := make(map[string]int)
	add := func(title string, note core.Note) {
		i, ok := index[title]
		if !ok {
			i = len(groups)
			index[title] = i
			groups = append(groups, Group{Title: title})
		}
		groups[i].Notes = append(groups[i].Notes, note)
	}

	var pinned []core.Note
	for _, note := range sorted {
		if note.Pinned {
			pinned = append(pinned, note)
		}
	}
	if len(pinned) > 0 {
		groups = append(groups, Group{Title: GroupPinned, Notes: pinned})
		index[GroupPinned] = 0
	}
	for _, note := range sorted {
		if note.Pinned {
			continue
		}
		add(groupTitle(note, opts, now), note)
	}
	return groups
}

func lessNote(a, b core.Note, by SortBy) bool {
	switch by {
	case SortTitle:
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	case SortDateCreated:
		return a.DateCreated < b.DateCreated
	default:
		return noteDate(a, SortDateEdited) < noteDate(b, SortDateEdited)
	}
}

func noteDate(note core.Note, by SortBy) int64 {
	if by == SortDateEdited && note.DateEdited != 0 {
		return note.DateEdited
	}
	return note.DateCreated
}

func groupTitle(note core.Note, opts SortOptions, now time.Time) string {
	date := time.UnixMilli(noteDate(note, opts.SortBy)).In(now.Location())
	switch opts.GroupBy {
	case GroupNone:
		return "All"
	case GroupABC:
		if r, _ := utf8.DecodeRuneInString(note.Title); unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
		return "#"
	case GroupYear:
		return date.Format("2006")
	case GroupMonth:
		return date.Format("January 2006")
	case GroupWeek:
		start := date.AddDate(0, 0, -((int(date.Weekday()) + 6) % 7))
		end := start.AddDate(0, 0, 6)
		return start.Format("02 Jan") + " - " + end.Format("02 Jan, 2006")
	default:
		age := now.Sub(date)
		switch {
		case age <= 7*24*time.Hour:
			return GroupRecent
		case age <= 14*24*time.Hour:
			return GroupLastWeek
		default:
			return GroupOlder
		}
	}
}
