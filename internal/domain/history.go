package domain

import "time"

const (
	MaxHistoryEntries = 7
	HistoryDateLayout = "2006-01-02"
)

type HistoryEntry struct {
	Date  string `json:"date"`
	Steps uint   `json:"steps"`
}

// HistoryLog is ordered by insertion, oldest first.
type HistoryLog []HistoryEntry

func DateOf(t time.Time) string {
	return t.Format(HistoryDateLayout)
}

// Record returns a copy of h with steps recorded against date. An existing
// entry for date is overwritten even when steps is zero; a missing one is only
// appended for a non-zero count. The result keeps the newest
// MaxHistoryEntries entries.
func (h HistoryLog) Record(date string, steps uint) HistoryLog {
	out := make(HistoryLog, len(h), len(h)+1)
	copy(out, h)

	updated := false
	for i := range out {
		if out[i].Date == date {
			out[i].Steps = steps
			updated = true
			break
		}
	}

	if !updated && steps > 0 {
		out = append(out, HistoryEntry{Date: date, Steps: steps})
	}

	return out.Trim(MaxHistoryEntries)
}

func (h HistoryLog) Trim(max int) HistoryLog {
	if max < 0 {
		max = 0
	}
	if len(h) <= max {
		return h
	}

	return h[len(h)-max:]
}

func (h HistoryLog) MostRecentFirst() HistoryLog {
	out := make(HistoryLog, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out = append(out, h[i])
	}
	return out
}

// Lookup returns the entry recorded for date.
func (h HistoryLog) Lookup(date string) (HistoryEntry, bool) {
	for _, entry := range h {
		if entry.Date == date {
			return entry, true
		}
	}
	return HistoryEntry{}, false
}

// ShortLabel formats an ISO date as "Jan 2". Unparseable dates are returned
// unchanged.
func (e HistoryEntry) ShortLabel() string {
	parsed, err := time.Parse(HistoryDateLayout, e.Date)
	if err != nil {
		return e.Date
	}

	return parsed.Format("Jan 2")
}
