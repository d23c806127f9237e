package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/formula"
	"github.com/zephyrtronium/formula/quantity"
)

func newSheetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "sheet file",
		Short: "Compute the quantities of the phase items in a YAML sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := quantity.LoadFile(args[0])
			if err != nil {
				return err
			}
			c := quantity.Calculator{
				Cache:   a.cache,
				Logger:  a.logger,
				Workers: a.cfg.GetInt("workers"),
			}
			res, err := c.Sheet(cmd.Context(), s)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			return writeTable(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "write results as JSON")
	f.Int("workers", 4, "items to compute at once (0 for no limit)")
	_ = a.cfg.BindPFlag("workers", f.Lookup("workers"))
	return cmd
}

func writeTable(w io.Writer, res []quantity.ItemResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tTOTAL\tUNIT\tFAILED\tERROR")
	for _, r := range res {
		msg := ""
		if r.Err != nil {
			msg = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", r.ID, strconv.FormatFloat(r.Total, 'f', -1, 64), r.Unit, r.Failed(), len(r.Intervals), msg)
	}
	return tw.Flush()
}

type jsonItem struct {
	ID        string         `json:"id"`
	Unit      string         `json:"unit,omitempty"`
	Total     float64        `json:"total"`
	Error     *jsonError     `json:"error,omitempty"`
	Intervals []jsonInterval `json:"intervals"`
}

type jsonInterval struct {
	Quantity float64    `json:"quantity"`
	Error    *jsonError `json:"error,omitempty"`
	Dropped  []string   `json:"dropped,omitempty"`
}

type jsonError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func newJSONError(err error) *jsonError {
	if err == nil {
		return nil
	}
	return &jsonError{Kind: formula.KindOf(err).String(), Message: err.Error()}
}

func writeJSON(w io.Writer, res []quantity.ItemResult) error {
	items := make([]jsonItem, len(res))
	for i, r := range res {
		items[i] = jsonItem{ID: r.ID, Unit: r.Unit, Total: r.Total, Error: newJSONError(r.Err), Intervals: []jsonInterval{}}
		for _, iv := range r.Intervals {
			items[i].Intervals = append(items[i].Intervals, jsonInterval{Quantity: iv.Quantity, Error: newJSONError(iv.Err), Dropped: iv.Dropped})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
