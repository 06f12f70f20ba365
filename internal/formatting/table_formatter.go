package formatting

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"robotmk/internal/results"
	pkgstrings "robotmk/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// FormatStatus renders the phase followed by one table per result file.
func (f *TableFormatter) FormatStatus(w io.Writer, status results.Status) error {
	phase := "not started"
	if status.Phase != nil {
		phase = status.Phase.String()
	}
	fmt.Fprintf(w, "%s %s\n\n", f.color(text.FgHiBlue, "Phase:"), phase)

	if len(status.Reports) == 0 {
		fmt.Fprintln(w, f.emptyMessage("No plan results yet"))
	} else {
		fmt.Fprintln(w, f.reportsTable(status.Reports))
	}

	if len(status.SetupFailures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.setupFailuresTable(status.SetupFailures))
	}

	if len(status.BuildStates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.buildStatesTable(status.BuildStates))
	}
	return nil
}

func (f *TableFormatter) reportsTable(reports []results.SuiteExecutionReport) string {
	t := f.createTable()
	t.AppendHeader(f.header("PLAN", "ATTEMPTS", "RESULT", "REBOT", "EXECUTION ID"))
	for _, r := range reports {
		result := "-"
		if n := len(r.Attempts); n > 0 {
			result = f.outcome(r.Attempts[n-1])
		}
		t.AppendRow(table.Row{
			r.SuiteID,
			fmt.Sprintf("%d/%d", len(r.Attempts), r.Config.NAttemptsMax),
			result,
			f.rebot(r.Rebot),
			r.ExecutionID,
		})
	}
	return t.Render()
}

func (f *TableFormatter) setupFailuresTable(failures []results.SetupFailure) string {
	t := f.createTable()
	t.SetTitle("Setup failures")
	t.AppendHeader(f.header("PLAN", "SUMMARY", "DETAILS"))
	for _, failure := range failures {
		t.AppendRow(table.Row{failure.PlanID, failure.Summary, pkgstrings.Truncate(failure.Details, pkgstrings.DefaultDetailMaxLen)})
	}
	return t.Render()
}

func (f *TableFormatter) buildStatesTable(states map[string]results.BuildOutcome) string {
	ids := make([]string, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := f.createTable()
	t.SetTitle("Environment builds")
	t.AppendHeader(f.header("PLAN", "STATE"))
	for _, id := range ids {
		t.AppendRow(table.Row{id, f.buildState(states[id])})
	}
	return t.Render()
}

func (f *TableFormatter) outcome(o results.AttemptOutcome) string {
	switch o.Kind {
	case results.AllTestsPassed:
		return f.color(text.FgGreen, o.String())
	case results.TestFailures:
		return f.color(text.FgYellow, o.String())
	default:
		return f.color(text.FgRed, pkgstrings.Truncate(o.String(), 60))
	}
}

func (f *TableFormatter) rebot(r *results.RebotOutcome) string {
	switch {
	case r == nil:
		return "-"
	case r.Ok != nil:
		return f.color(text.FgGreen, "ok")
	default:
		return f.color(text.FgRed, pkgstrings.Truncate(r.Error, 60))
	}
}

func (f *TableFormatter) buildState(b results.BuildOutcome) string {
	switch b.Status {
	case results.BuildSuccess:
		return f.color(text.FgGreen, fmt.Sprintf("Success (%s)", time.Duration(b.Duration)*time.Second))
	case results.BuildFailure:
		return f.color(text.FgRed, "Failure: "+pkgstrings.Truncate(b.Detail, 80))
	case results.BuildTimeout:
		return f.color(text.FgRed, string(b.Status))
	case results.BuildInProgress:
		return fmt.Sprintf("InProgress since %s", time.Unix(b.StartTime, 0).Format(time.RFC3339))
	default:
		return string(b.Status)
	}
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, 0, len(names))
	for _, name := range names {
		row = append(row, f.color(text.FgHiCyan, name))
	}
	return row
}

func (f *TableFormatter) emptyMessage(message string) string {
	return f.color(text.FgYellow, message)
}

func (f *TableFormatter) color(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}
