package feed

import (
	"sort"
	"time"
)

// BuildView flattens all groups into a single chronological entry list and
// injects a date separator whenever the calendar day (local time) changes.
//
// The sort is stable: comments sharing a timestamp keep their flattening
// order across calls, so repeated builds of the same snapshot are identical.
// now is the reference clock for the Today/Yesterday labels; one invocation
// uses it consistently for every separator.
func BuildView(groups []*Group, now time.Time) []Entry {
	var flat []Entry
	for _, g := range groups {
		for i := range g.Comments {
			flat = append(flat, Entry{
				Kind:        EntryComment,
				Comment:     g.Comments[i],
				GroupID:     g.ID,
				GroupStatus: g.Status,
				Assignee:    g.Assignee,
			})
		}
	}
	sort.SliceStable(flat, func(i, j int) bool {
		return flat[i].Comment.CreatedAt.Before(flat[j].Comment.CreatedAt)
	})

	out := make([]Entry, 0, len(flat)+4)
	var prevDay time.Time
	for _, e := range flat {
		day := dayOf(e.Comment.CreatedAt)
		if prevDay.IsZero() || !day.Equal(prevDay) {
			out = append(out, Entry{
				Kind:       EntryDateSeparator,
				Label:      dayLabel(day, now),
				AnchorDate: day,
			})
			prevDay = day
		}
		out = append(out, e)
	}
	return out
}

// dayOf truncates a timestamp to local midnight.
func dayOf(t time.Time) time.Time {
	local := t.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}

// dayLabel renders a separator label relative to now: Today, Yesterday,
// a weekday name within the last seven days, otherwise an absolute date.
func dayLabel(day, now time.Time) string {
	today := dayOf(now)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	case day.Before(today) && day.After(today.AddDate(0, 0, -7)):
		return day.Weekday().String()
	default:
		return day.Format("January 2, 2006")
	}
}
