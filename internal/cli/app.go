// Package cli implements the ATM command line: an interactive user session,
// an interactive admin session and a one-shot statement report.
package cli

import (
	"context"
	"flag"
	"log"

	"github.com/google/subcommands"

	"github.com/sheikh-saqib/atm-ledger/internal/config"
	"github.com/sheikh-saqib/atm-ledger/internal/events/kafka"
	"github.com/sheikh-saqib/atm-ledger/internal/ledger"
	"github.com/sheikh-saqib/atm-ledger/internal/storage"
)

// Commands are the subcommands a main package registers.
var Commands = []subcommands.Command{
	&loginCmd{},
	&adminCmd{},
	&reportCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var envFile = flag.String("env", ".env", "optional dotenv file with the LEDGER_* settings")

// OpenLedger loads the configured ledger. The returned close function
// releases the backend; it does not save.
func OpenLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	cfg, err := config.Load(*envFile)
	if err != nil {
		return nil, nil, err
	}
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var opts []ledger.Option
	var publisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers)
		opts = append(opts, ledger.WithPublisher(publisher, cfg.KafkaTopic))
	}

	l := ledger.NewLedger(backend.Snapshots, backend.History, opts...)
	l.Load(ctx)

	closeFn := func() {
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				log.Println("warning, closing event publisher:", err)
			}
		}
		if err := backend.Close(); err != nil {
			log.Println("warning, closing storage:", err)
		}
	}
	return l, closeFn, nil
}
