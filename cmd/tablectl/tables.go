package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.tablekeeper.dev/seating/allocator"
	mbp "go.tablekeeper.dev/seating/mainboilerplate"
	"gopkg.in/yaml.v2"
)

type cmdTablesList struct {
	Format   string `long:"format" short:"o" choice:"table" choice:"yaml" choice:"json" default:"table" description:"Output format"`
	Waitlist bool   `long:"waitlist" short:"w" description:"Also list waitlisted groups (table format only)"`
}

func addTableCommands(cr mbp.CommandRegistry) {
	cr.AddCommand("tables", "list", "List tables", `
List tables in layout order, with their occupancy and seated groups.

Results can be output in a variety of --format options:
yaml:  Prints tables and the waitlist as YAML.
json:  Prints tables and the waitlist as JSON.
table: Prints as a table. Use --waitlist to also list waitlisted groups,
       in the order they'll be offered seats.
`, &cmdTablesList{})
}

func (cmd *cmdTablesList) Execute([]string) error {
	startup()

	var snapshot, err = baseCfg.Seating.BuildClient().Snapshot(context.Background())
	mbp.Must(err, "failed to fetch tables")

	return writeSnapshot(os.Stdout, cmd.Format, cmd.Waitlist, snapshot)
}

func writeSnapshot(w io.Writer, format string, waitlist bool, s allocator.Snapshot) error {
	switch format {
	case "yaml":
		return writeYAML(w, s)
	case "json":
		return writeJSON(w, s)
	}
	if err := writeTableViews(w, format, s.Tables); err != nil {
		return err
	}
	if waitlist {
		fmt.Fprintf(w, "\n%d waitlisted group(s):\n", len(s.Waitlist))
		return writeWaitlist(w, s.Waitlist)
	}
	return nil
}

func writeTableViews(w io.Writer, format string, views []allocator.TableView) error {
	switch format {
	case "yaml":
		return writeYAML(w, views)
	case "json":
		return writeJSON(w, views)
	}
	var table = tablewriter.NewWriter(w)
	table.Header("Table", "Capacity", "Occupied", "State", "Groups")

	for _, v := range views {
		var groups []string
		for _, g := range v.Groups {
			groups = append(groups, fmt.Sprintf("%d (%d)", g.ID, g.Size))
		}
		if err := table.Append([]string{
			fmt.Sprintf("%d", v.Index),
			fmt.Sprintf("%d", v.Capacity),
			fmt.Sprintf("%d", v.Occupied),
			tableState(v),
			strings.Join(groups, ", "),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func writeWaitlist(w io.Writer, groups []allocator.ClientsGroup) error {
	var table = tablewriter.NewWriter(w)
	table.Header("Position", "Group", "Size", "Arrived")

	for i, g := range groups {
		var arrived = "<unknown>"
		if !g.ArrivedAt.IsZero() {
			arrived = humanize.Time(g.ArrivedAt)
		}
		if err := table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", g.ID),
			fmt.Sprintf("%d", g.Size),
			arrived,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func tableState(v allocator.TableView) string {
	switch {
	case v.IsEmpty():
		return "empty"
	case v.IsFull():
		return "full"
	default:
		return "partial"
	}
}

func writeYAML(w io.Writer, v interface{}) error {
	var b, err = yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func writeJSON(w io.Writer, v interface{}) error {
	var enc = json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
