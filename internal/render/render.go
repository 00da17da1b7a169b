package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/luciusscala/hackmitmentra/internal/view"
)

// Dashboard prints stats and recent jobs.
func Dashboard(out io.Writer, d view.Dashboard) {
	if !meta(out, d.Meta) {
		return
	}

	fmt.Fprintln(out, "Dashboard")
	for _, s := range d.Stats {
		fmt.Fprintf(out, "  %-17s %s\n", s.Title+":", s.Value)
	}
	if d.Summary.Failed > 0 {
		fmt.Fprintf(out, "  %-17s %d\n", "Failed:", d.Summary.Failed)
	}

	if d.EmptyState != nil {
		emptyState(out, d.EmptyState)
		return
	}

	fmt.Fprintln(out, "Recent")
	cards(out, d.Recent)
}

// Library prints every matching job.
func Library(out io.Writer, l view.Library) {
	if !meta(out, l.Meta) {
		return
	}

	header := fmt.Sprintf("Library (%s)", l.CountLabel)
	if l.Filter != "" && l.Filter != view.FilterAll {
		header += " status=" + string(l.Filter)
	}
	if l.Search != "" {
		header += fmt.Sprintf(" q=%q", l.Search)
	}
	fmt.Fprintln(out, header)

	if l.EmptyState != nil {
		emptyState(out, l.EmptyState)
		return
	}
	cards(out, l.Videos)
}

// meta prints load status and reports whether content should follow.
func meta(out io.Writer, m view.Meta) bool {
	switch {
	case m.Error != nil:
		fmt.Fprintf(out, "error: %s", m.Error.Message)
		if m.Error.Detail != "" {
			fmt.Fprintf(out, " (%s)", m.Error.Detail)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "press r to retry")
		return false
	case m.FetchedAt == nil:
		fmt.Fprintln(out, "loading...")
		return false
	}

	if m.Stale {
		fmt.Fprintf(out, "(stale: last updated %s)\n", m.FetchedAt.Local().Format(time.TimeOnly))
	}
	return true
}

func cards(out io.Writer, cs []view.Card) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range cs {
		fmt.Fprintf(tw, "  [%s]\t%s\t%s\t%s\t%s\n", c.Status, c.Title, c.Size, c.Age, actions(c.Actions))
	}
	tw.Flush()
}

func actions(as []view.Action) string {
	labels := make([]string, 0, len(as))
	for _, a := range as {
		if a.Enabled {
			labels = append(labels, a.Label)
		} else {
			labels = append(labels, "("+a.Label+")")
		}
	}
	return strings.Join(labels, " ")
}

func emptyState(out io.Writer, e *view.EmptyState) {
	fmt.Fprintf(out, "%s. %s\n", e.Title, e.Message)
}

// Error prints an error line.
func Error(out io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}
