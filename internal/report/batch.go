package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/underwrite-cli/internal/batch"
	"github.com/sells-group/underwrite-cli/internal/model"
)

const sheetName = "flags"

// BatchRow is the flattened, serializable form of one batch outcome.
type BatchRow struct {
	Path   string                 `json:"path" yaml:"path"`
	Status string                 `json:"status" yaml:"status"`
	Flags  model.EvaluationResult `json:"flags,omitempty" yaml:"flags,omitempty"`
	Error  string                 `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchReport is the json/yaml document for a batch run.
type BatchReport struct {
	Summary   batch.Summary `json:"summary" yaml:"summary"`
	Documents []BatchRow    `json:"documents" yaml:"documents"`
}

// Rows flattens outcomes in order.
func Rows(outcomes []batch.Outcome) []BatchRow {
	rows := make([]BatchRow, 0, len(outcomes))
	for _, o := range outcomes {
		row := BatchRow{Path: o.Path, Status: "ok"}
		switch {
		case o.Err != nil:
			row.Status = "error"
			row.Error = o.Err.Error()
		case o.Assessment != nil:
			row.Flags = o.Assessment.Flags
		}
		rows = append(rows, row)
	}
	return rows
}

// header is the column layout shared by table, csv and xlsx output.
func header() []string {
	cols := []string{"path", "status"}
	for _, name := range model.FlagNames() {
		cols = append(cols, string(name))
	}
	return append(cols, "error")
}

// cells returns one row's flag codes as strings; empty when not evaluated.
func (r BatchRow) cells() []string {
	out := []string{r.Path, r.Status}
	for _, name := range model.FlagNames() {
		if f, ok := r.Flags[name]; ok {
			out = append(out, strconv.Itoa(int(f)))
		} else {
			out = append(out, "")
		}
	}
	return append(out, r.Error)
}

// WriteBatch renders every outcome of a batch run.
func WriteBatch(w io.Writer, format Format, outcomes []batch.Outcome) error {
	rows := Rows(outcomes)

	switch format {
	case JSON:
		return writeJSONIndent(w, BatchReport{Summary: batch.Summarize(outcomes), Documents: rows})
	case YAML:
		return writeYAML(w, BatchReport{Summary: batch.Summarize(outcomes), Documents: rows})
	case Table:
		return writeBatchTable(w, rows, batch.Summarize(outcomes))
	case CSV:
		return writeBatchCSV(w, rows)
	case XLSX:
		return writeBatchXLSX(w, rows)
	default:
		return eris.Errorf("report: unknown format %q", format)
	}
}

func writeBatchTable(w io.Writer, rows []BatchRow, s batch.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tSTATUS\tREVENUE\tBORROWING\tISCR\tERROR")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Path, r.Status,
			flagLabel(r, model.TotalRevenue5CrFlag),
			flagLabel(r, model.BorrowingToRevenueFlag),
			flagLabel(r, model.ISCRFlag),
			r.Error,
		)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "report: flush table")
	}
	_, err := fmt.Fprintf(w, "\n%d documents: %d ok, %d failed\n", s.Total, s.Succeeded, s.Failed)
	return err
}

func flagLabel(r BatchRow, name model.FlagName) string {
	f, ok := r.Flags[name]
	if !ok {
		return "-"
	}
	return f.String()
}

func writeBatchCSV(w io.Writer, rows []BatchRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return eris.Wrap(err, "report: write csv header")
	}
	for _, r := range rows {
		if err := cw.Write(r.cells()); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

func writeBatchXLSX(w io.Writer, rows []BatchRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "report: add xlsx sheet")
	}

	hdr := sheet.AddRow()
	for _, col := range header() {
		hdr.AddCell().SetString(col)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Path)
		row.AddCell().SetString(r.Status)
		for _, name := range model.FlagNames() {
			cell := row.AddCell()
			if flag, ok := r.Flags[name]; ok {
				cell.SetInt(int(flag))
			} else {
				cell.SetString("")
			}
		}
		row.AddCell().SetString(r.Error)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

func writeJSONIndent(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "report: encode json")
	}
	return nil
}
