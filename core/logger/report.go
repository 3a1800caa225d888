package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Report holds aggregate statistics about a stream of logged events.
type Report struct {
	LogEntries int `json:"log_entries"`
	Sessions   int `json:"sessions"`

	// RunCommands counts dispatched commands by name.
	RunCommands StrCounter `json:"run_commands,omitempty"`
	// UnknownCommands counts unresolvable command names.
	UnknownCommands StrCounter `json:"unknown_commands,omitempty"`
	// ParseErrors counts rejected lines by error text.
	ParseErrors StrCounter `json:"parse_errors,omitempty"`
}

// Update folds one entry into the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch {
	case le.SessionStart != nil:
		r.Sessions++
	case le.RunCommand != nil && len(le.RunCommand.Command) > 0:
		r.RunCommands.Increment(le.RunCommand.Command[0])
	case le.UnknownCommand != nil && len(le.UnknownCommand.Command) > 0:
		r.UnknownCommands.Increment(le.UnknownCommand.Command[0])
	case le.ParseError != nil:
		r.ParseErrors.Increment(le.ParseError.Error)
	}
}

// WriteTo renders the report as a human readable table.
func (r *Report) WriteTo(w io.Writer) {
	fmt.Fprintf(w, "Log entries: %d\n", r.LogEntries)
	fmt.Fprintf(w, "Sessions: %d\n", r.Sessions)

	for _, section := range []struct {
		title   string
		counter StrCounter
	}{
		{"Commands", r.RunCommands},
		{"Unknown commands", r.UnknownCommands},
		{"Parse errors", r.ParseErrors},
	} {
		if len(section.counter) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", section.title)
		section.counter.WriteTo(w)
	}
}

// StrCounter counts occurrences of strings.
type StrCounter map[string]int

// Increment adds one occurrence of key.
func (c *StrCounter) Increment(key string) {
	if *c == nil {
		*c = make(map[string]int)
	}
	(*c)[key]++
}

// WriteTo renders the counter sorted by descending count, breaking ties
// alphabetically.
func (c StrCounter) WriteTo(w io.Writer) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if c[keys[i]] != c[keys[j]] {
			return c[keys[i]] > c[keys[j]]
		}
		return keys[i] < keys[j]
	})

	tw := tabwriter.NewWriter(w, 2, 2, 2, ' ', 0)
	defer tw.Flush()
	for _, k := range keys {
		label := strings.TrimSpace(k)
		fmt.Fprintf(tw, "  %d\t%s\n", c[k], label)
	}
}
