package main

import (
	"github.com/jessevdk/go-flags"
	mbp "go.tablekeeper.dev/seating/mainboilerplate"
)

const iniFilename = "tablectl.ini"

var (
	baseCfg = new(struct {
		Seating mbp.ClientConfig `group:"Seating" namespace:"seating" env-namespace:"SEATING"`
		Log     mbp.LogConfig    `group:"Logging" namespace:"log" env-namespace:"LOG"`
	})
	commands = mbp.NewCommandRegistry()
)

func startup() {
	mbp.InitLog(baseCfg.Log)
}

func main() {
	var parser = flags.NewParser(baseCfg, flags.Default)

	parser.LongDescription = `tablectl is a tool for interacting with the seating service.

	See --help pages of each sub-command for documentation and usage examples.
	Optionally configure tablectl with a '` + iniFilename + `' file in the current working directory,
	or with '~/.config/tablekeeper/` + iniFilename + `'. Use the 'print-config' sub-command to inspect
	the tool's current configuration.
	`

	// Commands which only organize further nested sub-commands.
	commands.AddCommand("", "groups", "Admit, remove, and look up groups", "", &struct{}{})
	commands.AddCommand("", "tables", "Inspect tables and the waitlist", "", &struct{}{})

	addGroupCommands(commands)
	addTableCommands(commands)

	mbp.Must(commands.AddCommands("", parser.Command), "could not add sub-commands")
	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.AddVersionCmd(parser)
	mbp.MustParseConfig(parser, iniFilename)
}
