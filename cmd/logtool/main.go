package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwebster45206/ascension-log/pkg/ingest"
	"github.com/jwebster45206/ascension-log/pkg/render"
	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

type rootOptions struct {
	inputFormat string
	iteration   string
	restArea    string
}

type renderOptions struct {
	format string
	start  string
	wrap   int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "logtool",
		Short:         "Reconstruct and render ascension logs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.inputFormat, "input-format", "", "Input encoding: json, yaml or jsonl (default: from file extension)")
	root.PersistentFlags().StringVar(&opts.iteration, "iteration", "mafia", "Turn iteration for repeated turn numbers: mafia or strict")
	root.PersistentFlags().StringVar(&opts.restArea, "rest-area", "", "Area whose nested encounters are free rests")

	root.AddCommand(
		newValidateCmd(opts),
		newSummaryCmd(opts),
		newRundownCmd(opts),
		newRenderCmd(opts),
		newRangeCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) base() (timeline.Options, error) {
	base := timeline.DefaultOptions()
	it, err := timeline.ParseTurnIteration(o.iteration)
	if err != nil {
		return base, err
	}
	base.Iteration = it
	if o.restArea != "" {
		base.Interleave.RestArea = o.restArea
	}
	return base, nil
}

func (o *rootOptions) format(path string) (ingest.Format, error) {
	switch strings.ToLower(o.inputFormat) {
	case "":
		return ingest.FormatFromPath(path), nil
	case "json":
		return ingest.FormatJSON, nil
	case "yaml", "yml":
		return ingest.FormatYAML, nil
	case "jsonl", "ndjson":
		return ingest.FormatJSONL, nil
	default:
		return ingest.FormatJSON, fmt.Errorf("unknown input format %q", o.inputFormat)
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// load reads, decodes and reconstructs a log. Rejected records are reported
// on stderr and do not stop the command.
func (o *rootOptions) load(cmd *cobra.Command, path string) (*timeline.Store, ingest.Report, error) {
	f, err := o.format(path)
	if err != nil {
		return nil, ingest.Report{}, err
	}
	base, err := o.base()
	if err != nil {
		return nil, ingest.Report{}, err
	}
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, ingest.Report{}, err
	}
	st, rep, err := ingest.Load(data, f, base)
	if err != nil {
		return nil, rep, err
	}
	return st, rep, nil
}

func warnRejected(cmd *cobra.Command, rep ingest.Report) {
	for _, msg := range rep.Messages() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", msg)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a log document and report every rejected record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, rep, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, msg := range rep.Messages() {
				fmt.Fprintln(out, msg)
			}
			units, err := st.Units()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: %d records accepted, %d rejected, %d reconciled units\n",
				args[0], rep.Accepted, len(rep.Errors), len(units))
			if !rep.OK() {
				return fmt.Errorf("%d records rejected", len(rep.Errors))
			}
			return nil
		},
	}
}

func newSummaryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "Print the log summary as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, rep, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			warnRejected(cmd, rep)
			sum, err := st.LogSummary()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sum)
		},
	}
}

func (r *renderOptions) resolve() (render.Format, time.Time, error) {
	f, err := formatByName(r.format)
	if err != nil {
		return f, time.Time{}, err
	}
	if r.wrap > 0 {
		f.WrapWidth = r.wrap
	}
	var start time.Time
	if r.start != "" {
		start, err = time.Parse(ingest.DateLayout, r.start)
		if err != nil {
			return f, start, fmt.Errorf("--start must be a YYYY-MM-DD date: %w", err)
		}
	}
	return f, start, nil
}

func (r *renderOptions) addFlags(cmd *cobra.Command, withStart bool) {
	cmd.Flags().StringVarP(&r.format, "format", "f", "plain", "Output format: "+strings.Join(formatNames(), ", "))
	cmd.Flags().IntVar(&r.wrap, "wrap", 0, "Wrap paragraphs at this many columns")
	if withStart {
		cmd.Flags().StringVar(&r.start, "start", "", "Real date of the first day, YYYY-MM-DD")
	}
}

func newRundownCmd(opts *rootOptions) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "rundown FILE",
		Short: "Print the turn rundown, one block per interval or day change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := ro.resolve()
			if err != nil {
				return err
			}
			st, rep, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			warnRejected(cmd, rep)
			blocks, err := st.TurnRundown(f)
			if err != nil {
				return err
			}
			for _, b := range blocks {
				fmt.Fprint(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
	ro.addFlags(cmd, false)
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Render the full textual log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, start, err := ro.resolve()
			if err != nil {
				return err
			}
			st, rep, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			warnRejected(cmd, rep)
			text, err := st.FullTextualLog(f, start)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	ro.addFlags(cmd, true)
	return cmd
}

func newRangeCmd(opts *rootOptions) *cobra.Command {
	var start, end int
	ro := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "range FILE",
		Short: "Summarize or render a sub-range of turns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, rep, err := opts.load(cmd, args[0])
			if err != nil {
				return err
			}
			warnRejected(cmd, rep)
			sub, err := st.SubIntervalLogData(start, end)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				sum, err := sub.LogSummary()
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			f, startDate, err := ro.resolve()
			if err != nil {
				return err
			}
			text, err := sub.FullTextualLog(f, startDate)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "First turn of the range")
	cmd.Flags().IntVar(&end, "end", 0, "Last turn of the range")
	_ = cmd.MarkFlagRequired("end")
	cmd.Flags().StringVarP(&ro.format, "format", "f", "plain", "Render the range as text in this format instead of a JSON summary")
	cmd.Flags().IntVar(&ro.wrap, "wrap", 0, "Wrap paragraphs at this many columns")
	return cmd
}
