package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/pickup-monitor/internal/monitor"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// printPassTable writes one row per device followed by the store status
// lines of each device.
func printPassTable(w io.Writer, p *monitor.Pass) error {
	tw := newTabWriter(w)
	tw.writef("DEVICE\tOUTCOME\tSTORES\tRETAINED\tAVAILABLE\tNOTIFIED\tERROR\n")
	for i := range p.Results {
		r := &p.Results[i]
		tw.writef("%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.Device, r.Outcome, r.Stores, r.Retained, r.Available, r.Notified, r.Error)
	}
	if err := tw.finish(); err != nil {
		return err
	}

	for i := range p.Results {
		r := &p.Results[i]
		if len(r.Messages) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n%s:\n", r.Device); err != nil {
			return err
		}
		for _, m := range r.Messages {
			if _, err := fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(m, "\n", "\n  ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
