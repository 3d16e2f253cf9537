package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"depot-records/backend/internal/engine"
)

// readDocument 从指定文件读取 JSON 对象，文件名为空或 "-" 时读取标准输入
func readDocument(cmd *cobra.Command, name string) (engine.Document, error) {
	var r io.Reader = cmd.InOrStdin()
	if name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	doc, err := engine.DecodeDocument(r)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return doc, nil
}

func fileArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// reportViolations 逐行输出字段错误
func reportViolations(out io.Writer, errs engine.FieldErrors) {
	for _, field := range errs.Fields() {
		for _, msg := range errs[field] {
			fmt.Fprintf(out, "  %s: %s\n", field, msg)
		}
	}
}

// describeError 展开生命周期错误，便于终端阅读
func describeError(cmd *cobra.Command, err error) error {
	if ve, ok := engine.IsValidationError(err); ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "validation failed:")
		reportViolations(cmd.ErrOrStderr(), ve.Fields)
		return fmt.Errorf("record rejected")
	}
	if te, ok := engine.IsTransitionError(err); ok && len(te.Fields) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n", te.Error())
		reportViolations(cmd.ErrOrStderr(), te.Fields)
		return fmt.Errorf("transition rejected")
	}
	return err
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <type> [file]",
		Short: "Dry-run validation of a record",
		Long:  "Validates a JSON record as it would be on create, without writing it. Reads stdin when no file is given.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd, fileArg(args, 1))
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			errs, err := a.Service.Records.Validate(cmd.Context(), kind, doc)
			if err != nil {
				return err
			}
			if len(errs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "valid")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "invalid:")
			reportViolations(cmd.OutOrStdout(), errs)
			return fmt.Errorf("%d field(s) invalid", len(errs))
		},
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <type> [file]",
		Short: "Create a record from JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			doc, err := readDocument(cmd, fileArg(args, 1))
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Service.Records.Create(cmd.Context(), kind, doc, opts.actor)
			if err != nil {
				return describeError(cmd, err)
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}

func newTransitionCmd(opts *rootOptions) *cobra.Command {
	var (
		reopen   bool
		reason   string
		expected string
	)

	cmd := &cobra.Command{
		Use:   "transition <type> <id> <status>",
		Short: "Move a record to another status",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			req := engine.TransitionRequest{To: args[2], Reopen: reopen, Reason: reason}
			if expected != "" {
				t, err := time.Parse(time.RFC3339Nano, expected)
				if err != nil {
					return fmt.Errorf("--expected-updated-at: %w", err)
				}
				req.ExpectedUpdatedAt = &t
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Service.Records.Transition(cmd.Context(), kind, args[1], req, opts.actor)
			if err != nil {
				return describeError(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", res.Record.Identifier(), res.Event.FromStatus, res.Event.ToStatus)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reopen, "reopen", false, "flag the transition as a reopening")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded with the transition")
	cmd.Flags().StringVar(&expected, "expected-updated-at", "", "reject if the record changed since this RFC 3339 timestamp")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delay overdue job cards once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			moved, err := a.Service.Sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d job card(s) delayed\n", moved)
			return nil
		},
	}
}
