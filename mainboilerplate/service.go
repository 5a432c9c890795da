package mainboilerplate

import (
	"os"

	petname "github.com/dustinkirkland/golang-petname"
)

// ServiceConfig represents identification and addressing configuration of the process.
type ServiceConfig struct {
	ID       string `long:"id" env:"ID" description:"Unique ID of this process. Auto-generated if not set"`
	Host     string `long:"host" env:"HOST" description:"Addressable, advertised hostname or IP of this process. Hostname is used if not set"`
	Iface    string `long:"iface" env:"IFACE" default:"" description:"Network interface to bind. All interfaces are bound if not set"`
	Port     uint16 `long:"port" env:"PORT" default:"8080" description:"Service port for HTTP and gRPC requests. A random port is used if zero"`
	MaxConns int    `long:"max-conns" env:"MAX_CONNS" default:"0" description:"Maximum number of concurrently accepted connections. Unlimited if zero"`
}

// Resolve fills in an auto-generated ID and the hostname, where not set.
func (cfg *ServiceConfig) Resolve() {
	if cfg.ID == "" {
		cfg.ID = petname.Generate(2, "-")
	}
	if cfg.Host == "" {
		var err error
		cfg.Host, err = os.Hostname()
		Must(err, "failed to determine hostname")
	}
}
