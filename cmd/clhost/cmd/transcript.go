package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tsawler/go-clhost/transcript"
)

var (
	transcriptFormat string
	failedOnly       bool
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript",
	Short: "Inspect recorded transcripts",
}

var transcriptShowCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print a transcript as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := transcript.FormatForPath(args[0])
		if transcriptFormat != "" {
			f, err := transcript.ParseFormat(transcriptFormat)
			if err != nil {
				return err
			}
			format = f
		}
		t, err := transcript.Load(args[0], format)
		if err != nil {
			return err
		}
		renderTranscript(cmd.OutOrStdout(), t, failedOnly)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.AddCommand(transcriptShowCmd)
	transcriptShowCmd.Flags().StringVar(&transcriptFormat, "format", "", "json or proto (default from the file extension)")
	transcriptShowCmd.Flags().BoolVar(&failedOnly, "failed", false, "only show failed calls")
}

func renderTranscript(w io.Writer, t *transcript.Transcript, failed bool) {
	fmt.Fprintf(w, "Session %s (%s driver), started %s\n", t.Session, t.Driver, t.CreatedAt.Format("2006-01-02 15:04:05"))

	table := tablewriter.NewWriter(w)
	table.Header("#", "Operation", "Args", "Outcome", "Duration")
	for _, e := range t.Entries {
		if failed && !e.Failed() {
			continue
		}
		outcome := "ok"
		switch {
		case e.Status != "":
			outcome = e.Status
		case e.ErrorKind != "":
			outcome = e.ErrorKind
		case e.Failed():
			outcome = "error"
		}
		table.Append([]string{
			fmt.Sprintf("%d", e.Seq),
			e.Op,
			summarize(e.Args),
			outcome,
			e.Duration().String(),
		})
	}
	table.Render()
}

// summarize shortens an argument list for a table cell.
func summarize(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		s := fmt.Sprint(a)
		if len(s) > 24 {
			s = s[:21] + "..."
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}
