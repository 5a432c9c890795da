package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.tablekeeper.dev/seating/allocator"
	mbp "go.tablekeeper.dev/seating/mainboilerplate"
)

type groupConfig struct {
	ID   int64 `long:"id" required:"true" description:"ID of the group"`
	Size int   `long:"size" required:"true" description:"Number of clients in the group"`
}

type cmdGroupsAdmit struct{ groupConfig }

type cmdGroupsLeave struct{ groupConfig }

type cmdGroupsLookup struct {
	ID     int64  `long:"id" required:"true" description:"ID of the group"`
	Format string `long:"format" short:"o" choice:"table" choice:"yaml" choice:"json" default:"table" description:"Output format"`
}

func addGroupCommands(cr mbp.CommandRegistry) {
	cr.AddCommand("groups", "admit", "Admit an arriving group", `
Admit an arriving group of clients. The group is seated at the first empty
table able to hold it or, failing that, at the first table with enough free
seats. Otherwise the group joins the waitlist, and is seated as other groups
leave.

>    tablectl groups admit --id 42 --size 4
`, &cmdGroupsAdmit{})

	cr.AddCommand("groups", "leave", "Remove a departing group", `
Remove a seated group which is leaving. Freed seats are offered to waitlisted
groups, smallest first.

>    tablectl groups leave --id 42 --size 4
`, &cmdGroupsLeave{})

	cr.AddCommand("groups", "lookup", "Look up the table of a group", `
Look up the table at which a group is seated. Waitlisted and unknown groups
are reported as not seated.
`, &cmdGroupsLookup{})
}

func (cmd *cmdGroupsAdmit) Execute([]string) error {
	startup()

	var ctx = context.Background()
	var c = baseCfg.Seating.BuildClient()
	var g = allocator.NewClientsGroup(allocator.GroupID(cmd.ID), cmd.Size)

	mbp.Must(c.Admit(ctx, g), "failed to admit group", "group", cmd.ID)

	if view, err := c.Lookup(ctx, g.ID); err == nil {
		fmt.Printf("Group %d is seated at table %d (%d of %d seats occupied).\n",
			g.ID, view.Index, view.Occupied, view.Capacity)
	} else {
		log.WithField("err", err).Debug("lookup after admission failed")
		fmt.Printf("Group %d is waitlisted.\n", g.ID)
	}
	return nil
}

func (cmd *cmdGroupsLeave) Execute([]string) error {
	startup()

	var c = baseCfg.Seating.BuildClient()
	var g = allocator.ClientsGroup{ID: allocator.GroupID(cmd.ID), Size: cmd.Size}

	mbp.Must(c.Remove(context.Background(), g), "failed to remove group", "group", cmd.ID)
	fmt.Printf("Group %d has left.\n", g.ID)
	return nil
}

func (cmd *cmdGroupsLookup) Execute([]string) error {
	startup()

	var c = baseCfg.Seating.BuildClient()
	var view, err = c.Lookup(context.Background(), allocator.GroupID(cmd.ID))

	if errors.Is(err, allocator.ErrUnknownGroup) {
		fmt.Printf("Group %d is not seated.\n", cmd.ID)
		return nil
	}
	mbp.Must(err, "failed to look up group", "group", cmd.ID)

	return writeTableViews(os.Stdout, cmd.Format, []allocator.TableView{view})
}
