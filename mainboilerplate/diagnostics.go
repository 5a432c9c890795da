package mainboilerplate

import (
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// DiagnosticsConfig configures pull-based application metrics, debugging and diagnostics.
type DiagnosticsConfig struct {
	Profiling bool `long:"pprof" env:"PPROF" description:"Serve pprof profiles under /debug/pprof/"`
}

// InitDiagnosticsAndRecover serves metrics and debugging services on |mux|,
// and installs a SIGUSR2 handler which toggles debug logging. It returns a
// closure which should be deferred, which recovers a panic and attempts to
// log a K8s termination message before re-panicking.
func InitDiagnosticsAndRecover(cfg DiagnosticsConfig, mux *http.ServeMux) func() {
	// Serve a liveness check at /debug/ready.
	mux.HandleFunc("/debug/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Serve Prometheus metrics at /debug/metrics.
	mux.Handle("/debug/metrics", promhttp.Handler())

	if cfg.Profiling {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	toggleDebugOnSignal(syscall.SIGUSR2)

	return func() {
		if r := recover(); r != nil {
			// Make a best effort attempt to write a termination message.
			// Bug: https://github.com/kubernetes/kubernetes/issues/31839
			if f, err := os.OpenFile(k8sTerminationLog, os.O_WRONLY, 0777); err == nil {
				fmt.Fprintf(f, "%+v", r)
				f.Close()
			}
			panic(r)
		}
	}
}

// toggleDebugOnSignal switches between debug logging and the prior
// log level upon each delivery of |sig|.
func toggleDebugOnSignal(sig os.Signal) {
	var ch = make(chan os.Signal, 1)
	signal.Notify(ch, sig)

	go func() {
		var prior = log.GetLevel()
		var debug bool

		for range ch {
			if debug {
				log.SetLevel(prior)
			} else {
				prior = log.GetLevel()
				log.SetLevel(log.DebugLevel)
			}
			debug = !debug
			log.WithField("level", log.GetLevel()).Warn("toggled log level")
		}
	}()
}

// Must panics if |err| is non-nil, supplying |msg| and |extra| as
// formatter and fields of the generated panic.
func Must(err error, msg string, extra ...interface{}) {
	if err == nil {
		return
	}
	var f = log.Fields{"err": err}
	for i := 0; i+1 < len(extra); i += 2 {
		f[extra[i].(string)] = extra[i+1]
	}
	log.WithFields(f).Panic(msg)
}

const (
	// k8sTerminationLog is the location to write a termination message for
	// Kubernetes to retrieve.
	//
	// Link: https://kubernetes.io/docs/tasks/debug-application-cluster/determine-reason-pod-failure/#setting-the-termination-log-file
	k8sTerminationLog = "/dev/termination-log"
)
