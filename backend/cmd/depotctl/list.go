package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"depot-records/backend/internal/engine"
	"depot-records/backend/internal/model"
)

type listOptions struct {
	status    string
	trainID   string
	carID     string
	query     string
	dueBefore string
	limit     int
	output    string
}

func newListCmd(opts *rootOptions) *cobra.Command {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list <type>",
		Short: "List records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			filter, err := lo.filter()
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			records, total, err := a.Service.Records.List(cmd.Context(), kind, filter)
			if err != nil {
				return err
			}
			return writeRecords(cmd.OutOrStdout(), kind, records, total, lo.output)
		},
	}

	cmd.Flags().StringVar(&lo.status, "status", "", "filter by status")
	cmd.Flags().StringVar(&lo.trainID, "train", "", "filter by train ID")
	cmd.Flags().StringVar(&lo.carID, "car", "", "filter by car ID")
	cmd.Flags().StringVarP(&lo.query, "query", "q", "", "substring match on identifier and description")
	cmd.Flags().StringVar(&lo.dueBefore, "due-before", "", "job cards due before YYYY-MM-DD")
	cmd.Flags().IntVar(&lo.limit, "limit", 50, "maximum records to show")
	cmd.Flags().StringVarP(&lo.output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func (lo *listOptions) filter() (engine.ListFilter, error) {
	f := engine.ListFilter{
		Status:  lo.status,
		TrainID: lo.trainID,
		CarID:   lo.carID,
		Query:   lo.query,
		Limit:   lo.limit,
	}
	if lo.dueBefore != "" {
		d, err := model.ParseDate(lo.dueBefore)
		if err != nil {
			return f, fmt.Errorf("--due-before: %w", err)
		}
		f.DueBefore = &d
	}
	return f, nil
}

func writeRecords(out io.Writer, kind model.EntityType, records []model.Record, total int64, format string) error {
	switch format {
	case "json":
		return printJSON(out, records)
	case "yaml":
		docs := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			doc, err := engine.ToDocument(rec)
			if err != nil {
				return err
			}
			docs = append(docs, plainValues(doc))
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeTable(out, kind, records, total)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// plainValues 将 json.Number 转为原生数值，避免 YAML 输出带引号
func plainValues(doc engine.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				out[k] = i
				continue
			}
		}
		out[k] = v
	}
	return out
}

func writeTable(out io.Writer, kind model.EntityType, records []model.Record, total int64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSUMMARY\tUPDATED\tBY")
	for _, rec := range records {
		status := ""
		if s, ok := rec.(model.Stateful); ok {
			status = s.CurrentStatus()
		}
		audit := rec.Audit()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.Identifier(), status, summary(rec),
			audit.UpdatedAt.UTC().Format(time.DateTime), audit.UpdatedBy)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d %s record(s)\n", len(records), total, kind)
	return nil
}

func summary(rec model.Record) string {
	var s string
	switch r := rec.(type) {
	case *model.JobCard:
		s = fmt.Sprintf("%s/%s %s due %s", r.TrainID, r.CarID, r.Category, r.DueDate)
	case *model.NCRReport:
		s = fmt.Sprintf("%s x%d %s", r.PartNumber, r.Quantity, r.ItemDescription)
	case *model.Letter:
		s = fmt.Sprintf("%s %s: %s", r.Direction, r.Counterparty, r.Subject)
	case *model.Vendor:
		s = r.Name
	}
	if len(s) > 60 {
		s = s[:57] + "..."
	}
	return s
}
