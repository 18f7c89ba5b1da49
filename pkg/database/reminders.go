package database

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
	"github.com/streetwriters/notesnook-sub014/pkg/typed"
)

type Reminders struct {
	env
	coll *typed.Collection[core.Reminder]

	relations *Relations
}

func newReminders(e env, repo core.Repository) *Reminders {
	return &Reminders{env: e, coll: typed.NewCollection[core.Reminder](CollectionReminders, repo, e.collectionOptions()...)}
}

// Add creates or updates a reminder and returns its id. Zero fields of in
// keep the stored value; use SetDisabled and Snooze to clear flags.
func (r *Reminders) Add(ctx context.Context, in core.Reminder) (string, error) {
	if in.ID == "" {
		in.ID = core.NewID()
	}
	rem, err := r.coll.Get(ctx, in.ID)
	switch {
	case errors.Is(err, core.ErrNotFound):
		rem = core.Reminder{Base: core.Base{ID: in.ID, Type: core.KindReminder, DateCreated: r.now()}}
	case err != nil:
		return "", err
	}

	if t := strings.TrimSpace(in.Title); t != "" {
		rem.Title = t
	}
	if in.Description != "" {
		rem.Description = in.Description
	}
	if in.Date != 0 {
		rem.Date = in.Date
	}
	if in.Mode != "" {
		rem.Mode = in.Mode
	}
	if in.RecurringMode != "" {
		rem.RecurringMode = in.RecurringMode
	}
	if in.SelectedDays != nil {
		rem.SelectedDays = slices.Clone(in.SelectedDays)
	}
	if in.Priority != "" {
		rem.Priority = in.Priority
	}
	if in.Disabled {
		rem.Disabled = true
	}
	if in.SnoozeUntil != 0 {
		rem.SnoozeUntil = in.SnoozeUntil
	}
	if in.LocalOnly {
		rem.LocalOnly = true
	}

	if rem.Title == "" || rem.Date == 0 {
		return "", fmt.Errorf("%w: title and date are required", core.ErrReminderInvalid)
	}
	if rem.Mode == "" {
		rem.Mode = core.ReminderOnce
	}
	if rem.Priority == "" {
		rem.Priority = core.PriorityVibrate
	}
	if rem.Mode == core.ReminderRepeat && rem.RecurringMode == "" {
		return "", fmt.Errorf("%w: repeating reminders need a recurring mode", core.ErrReminderInvalid)
	}
	rem.DateModified = r.now()
	return rem.ID, r.coll.Add(ctx, rem)
}

// SetDisabled turns a reminder off or back on.
func (r *Reminders) SetDisabled(ctx context.Context, id string, disabled bool) error {
	return r.update(ctx, id, func(rem *core.Reminder) { rem.Disabled = disabled })
}

// Snooze delays the next occurrence until the given unix millisecond time.
// Zero cancels a snooze.
func (r *Reminders) Snooze(ctx context.Context, id string, until int64) error {
	return r.update(ctx, id, func(rem *core.Reminder) { rem.SnoozeUntil = until })
}

func (r *Reminders) update(ctx context.Context, id string, fn func(*core.Reminder)) error {
	rem, err := r.coll.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("reminder %s: %w", id, err)
	}
	fn(&rem)
	rem.DateModified = r.now()
	return r.coll.Add(ctx, rem)
}

// Merge stores a synced reminder as is.
func (r *Reminders) Merge(ctx context.Context, rem core.Reminder) error {
	return r.coll.Add(ctx, rem)
}

func (r *Reminders) Reminder(ctx context.Context, id string) (core.Reminder, error) {
	return r.coll.Get(ctx, id)
}

// All returns every reminder ordered by its next occurrence.
func (r *Reminders) All(ctx context.Context) ([]core.Reminder, error) {
	all, err := r.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	now := r.clock()
	sort.SliceStable(all, func(i, j int) bool {
		return NextOccurrence(all[i], now) < NextOccurrence(all[j], now)
	})
	return all, nil
}

// Remove deletes reminders and the relations pointing at them.
func (r *Reminders) Remove(ctx context.Context, ids ...string) error {
	if err := r.coll.Delete(ctx, ids...); err != nil {
		return err
	}
	return r.relations.Cleanup(ctx)
}

// Active returns the enabled reminders that will still fire after now.
func (r *Reminders) Active(ctx context.Context, now time.Time) ([]core.Reminder, error) {
	all, err := r.coll.All(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(rem core.Reminder) bool {
		return rem.Disabled || NextOccurrence(rem, now) == 0
	}), nil
}

// Upcoming is Active ordered by next occurrence.
func (r *Reminders) Upcoming(ctx context.Context, now time.Time) ([]core.Reminder, error) {
	active, err := r.Active(ctx, now)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(active, func(i, j int) bool {
		return NextOccurrence(active[i], now) < NextOccurrence(active[j], now)
	})
	return active, nil
}

// NextOccurrence returns when the reminder fires next, in unix milliseconds,
// or 0 when it will not fire again. Permanent reminders always report their date.
func NextOccurrence(rem core.Reminder, now time.Time) int64 {
	if rem.SnoozeUntil > now.UnixMilli() {
		return rem.SnoozeUntil
	}
	date := time.UnixMilli(rem.Date).In(now.Location())
	switch rem.Mode {
	case core.ReminderPermanent:
		return rem.Date
	case core.ReminderRepeat:
		return nextRepeat(rem, date, now).UnixMilli()
	default:
		if date.After(now) {
			return rem.Date
		}
		return 0
	}
}

func nextRepeat(rem core.Reminder, date, now time.Time) time.Time {
	at := func(d time.Time) time.Time {
		return time.Date(d.Year(), d.Month(), d.Day(), date.Hour(), date.Minute(), 0, 0, now.Location())
	}
	switch rem.RecurringMode {
	case core.RecurringDay:
		next := at(now)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	case core.RecurringWeek:
		days := rem.SelectedDays
		if len(days) == 0 {
			days = []int{int(date.Weekday())}
		}
		for i := 0; i <= 7; i++ {
			next := at(now.AddDate(0, 0, i))
			if slices.Contains(days, int(next.Weekday())) && next.After(now) {
				return next
			}
		}
	case core.RecurringMonth:
		days := rem.SelectedDays
		if len(days) == 0 {
			days = []int{date.Day()}
		}
		for i := 0; i <= 62; i++ {
			next := at(now.AddDate(0, 0, i))
			if slices.Contains(days, next.Day()) && next.After(now) {
				return next
			}
		}
	}
	return date
}
