package main

import (
	"bufio"
	"context"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	mbp "go.gazette.dev/core/mainboilerplate"

	"github.com/paysys/payline/go/ingest"
	"github.com/paysys/payline/go/runtime"
)

// Config is the top-level configuration object of payline.
var Config = new(struct {
	Engine struct {
		Shards int `long:"shards" env:"SHARDS" default:"4" description:"Number of transaction shards"`
		Queue  int `long:"queue" env:"QUEUE" default:"10000" description:"Capacity of each pipeline queue"`
	} `group:"Engine" namespace:"engine" env-namespace:"ENGINE"`

	Log         mbp.LogConfig         `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Diagnostics mbp.DiagnosticsConfig `group:"Debug" namespace:"debug" env-namespace:"DEBUG"`

	Args struct {
		Input flags.Filename `positional-arg-name:"INPUT" description:"Path of the input transaction CSV"`
	} `positional-args:"yes" required:"yes"`
})

func main() {
	var parser = flags.NewParser(Config, flags.Default)
	parser.LongDescription = `
payline ingests an ordered CSV log of client transaction events and
prints the final per-client account balances as CSV on stdout.
`
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	defer mbp.InitDiagnosticsAndRecover(Config.Diagnostics)()
	mbp.InitLog(Config.Log)

	log.WithFields(log.Fields{
		"config":    Config,
		"version":   mbp.Version,
		"buildDate": mbp.BuildDate,
	}).Info("payline configuration")

	var file, err = os.Open(string(Config.Args.Input))
	mbp.Must(err, "opening transaction log")
	defer file.Close()

	source, err := ingest.NewReader(bufio.NewReader(file))
	mbp.Must(err, "reading transaction log header")

	accounts, err := runtime.Run(context.Background(), source, runtime.Config{
		Shards:    Config.Engine.Shards,
		QueueSize: Config.Engine.Queue,
	})
	mbp.Must(err, "processing transaction log")

	var out = bufio.NewWriter(os.Stdout)
	mbp.Must(accounts.WriteCSV(out), "writing account balances")
	mbp.Must(out.Flush(), "writing account balances")
}
