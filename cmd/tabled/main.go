package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.tablekeeper.dev/seating/allocator"
	"go.tablekeeper.dev/seating/http_gateway"
	"go.tablekeeper.dev/seating/layout"
	mbp "go.tablekeeper.dev/seating/mainboilerplate"
	"go.tablekeeper.dev/seating/server"
	"go.tablekeeper.dev/seating/task"
)

const iniFilename = "tabled.ini"

// Config is the top-level configuration object of a seating service.
var Config = new(struct {
	Seating struct {
		mbp.ServiceConfig
	} `group:"Seating" namespace:"seating" env-namespace:"SEATING"`

	Tables layout.Config `group:"Tables" namespace:"tables" env-namespace:"TABLES"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`
})

type cmdServe struct{}

func (cmdServe) Execute(args []string) error {
	mbp.InitLog(Config.Log)
	Config.Seating.Resolve()

	var lo, err = Config.Tables.Build(afero.NewOsFs())
	mbp.Must(err, "building table layout")

	alloc, err := allocator.New(lo.Tables)
	mbp.Must(err, "building allocator")

	srv, err := server.New(Config.Seating.Iface, Config.Seating.Port, Config.Seating.MaxConns)
	mbp.Must(err, "building Server instance")

	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics, srv.HTTPMux)()
	srv.HTTPMux.Handle("/api/", http_gateway.NewGateway(alloc))

	log.WithFields(log.Fields{
		"id":       Config.Seating.ID,
		"host":     Config.Seating.Host,
		"endpoint": srv.Endpoint(),
		"tables":   len(lo.Tables),
		"seats":    lo.Seats(),
	}).Info("starting seating service")

	var tasks = task.NewGroup(context.Background())
	srv.QueueTasks(tasks)

	var signalCh = make(chan os.Signal, 1)
	tasks.Queue("watch signals", func() error {
		select {
		case sig := <-signalCh:
			log.WithField("signal", sig).Info("caught signal; stopping")
			tasks.Cancel()
		case <-tasks.Context().Done():
		}
		return nil
	})

	// Install signal handler & start service tasks.
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)
	tasks.GoRun()

	// Block until all tasks complete. Assert none returned an error.
	mbp.Must(tasks.Wait(), "seating service task failed")

	var snapshot = alloc.Snapshot()
	log.WithFields(log.Fields{
		"waitlist": len(snapshot.Waitlist),
	}).Info("goodbye")

	return nil
}

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	_, _ = parser.AddCommand("serve", "Serve as the seating service", `
Serve the seating service with the provided table layout, until signaled to
exit (via SIGTERM or SIGINT). Seating state is held in memory only, and is
discarded upon exit.

The table layout is given either as a YAML file:

    tables: [2, 4, 4, 6]

via --tables.path, or as repeated --tables.size flags, eg:

    --tables.size 2 --tables.size 4 --tables.size 4 --tables.size 6
`, &cmdServe{})

	mbp.AddPrintConfigCmd(parser, iniFilename)
	mbp.AddVersionCmd(parser)
	mbp.MustParseConfig(parser, iniFilename)
}
