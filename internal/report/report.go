// Package report renders evaluation results for people and spreadsheets.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/underwrite-cli/internal/model"
	"github.com/sells-group/underwrite-cli/internal/rules"
)

// Format is an output encoding.
type Format string

const (
	JSON  Format = "json"
	YAML  Format = "yaml"
	Table Format = "table"
	CSV   Format = "csv"
	XLSX  Format = "xlsx"
)

// ParseFormat converts a name like "json" into a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, Table, CSV, XLSX:
		return f, nil
	default:
		return "", eris.Errorf("unknown format: %q (valid: json, yaml, table, csv, xlsx)", s)
	}
}

// CheckSingle returns an error unless f can render a single result.
func CheckSingle(f Format) error {
	switch f {
	case JSON, YAML, Table:
		return nil
	default:
		return eris.Errorf("report: format %q is not supported for a single result", f)
	}
}

// metricFor maps each flag to the metric it is classified from.
var metricFor = map[model.FlagName]string{
	model.TotalRevenue5CrFlag:    rules.MetricTotalRevenue,
	model.BorrowingToRevenueFlag: rules.MetricBorrowingRatio,
	model.ISCRFlag:               rules.MetricISCR,
}

// WriteResult renders a single assessment. Without detail, json and yaml
// emit only {"flags": {...}}.
func WriteResult(w io.Writer, format Format, a *rules.Assessment, detail bool) error {
	if a == nil {
		return eris.New("report: nil assessment")
	}
	if err := CheckSingle(format); err != nil {
		return err
	}

	var v any = model.Output{Flags: a.Flags}
	if detail {
		v = a
	}

	switch format {
	case JSON:
		if err := json.NewEncoder(w).Encode(v); err != nil {
			return eris.Wrap(err, "report: encode json")
		}
		return nil
	case YAML:
		return writeYAML(w, v)
	case Table:
		return writeResultTable(w, a, detail)
	default:
		return eris.Errorf("report: format %q is not supported for a single result", format)
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "report: close yaml encoder")
	}
	return nil
}

func writeResultTable(w io.Writer, a *rules.Assessment, detail bool) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if detail {
		fmt.Fprintf(tw, "Period:\t%d (%s)\n", a.PeriodIndex, natureLabel(a.Nature))
	}
	fmt.Fprintln(tw, "FLAG\tVALUE\tCODE\tMETRIC")
	for _, name := range model.FlagNames() {
		f, ok := a.Flags[name]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, f, int(f), formatMetric(p, a, metricFor[name]))
	}

	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "report: flush table")
	}
	return nil
}

// formatMetric renders a metric value; revenue as a grouped whole number,
// ratios with three decimals, n/a when the input was missing.
func formatMetric(p *message.Printer, a *rules.Assessment, name string) string {
	m, ok := a.Metric(name)
	if !ok || !m.Available {
		return "n/a"
	}
	if name == rules.MetricTotalRevenue {
		return p.Sprintf("%.0f", m.Value)
	}
	return p.Sprintf("%.3f", m.Value)
}

func natureLabel(nature string) string {
	if nature == "" {
		return "unspecified"
	}
	return nature
}
