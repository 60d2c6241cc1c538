package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	wastewater "github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/config"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/conflate"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/import_"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/log"
	"github.com/VERSO-UVM/Wastewater-Infrastructure-Mapping/stats"
)

func PrintCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Available commands:")
	fmt.Fprintln(os.Stderr, "\tlinear")
	fmt.Fprintln(os.Stderr, "\tpoints")
	fmt.Fprintln(os.Stderr, "\tassign-towns")
	fmt.Fprintln(os.Stderr, "\tversion")
}

func parseErrors(errs []error) {
	if len(errs) == 1 && errs[0] == flag.ErrHelp {
		os.Exit(2)
	}
	config.ReportErrors(errs)
}

func startProfiling(opts *config.Base) {
	if err := opts.SetupLog(); err != nil {
		log.Fatalf("[fatal] %s", err)
	}
	if opts.Httpprofile != "" {
		stats.StartHttpPProf(opts.Httpprofile)
	}
	if opts.MemProfile != "" {
		go stats.MemProfiler(opts.MemProfile, 10*time.Second)
	}
}

func Main(usage func()) {
	if len(os.Args) <= 1 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "linear", "points":
		kind, err := conflate.ParseKind(os.Args[1])
		if err != nil {
			log.Fatalf("[fatal] %s", err)
		}
		opts, errs := config.ParseConflate(kind, os.Args[2:])
		if len(errs) != 0 {
			parseErrors(errs)
		}
		startProfiling(&opts.Base)
		if _, err := import_.Conflate(ctx, opts); err != nil {
			log.Fatalf("[fatal] %s", err)
		}
	case "assign-towns":
		opts, errs := config.ParseAssignTowns(os.Args[2:])
		if len(errs) != 0 {
			parseErrors(errs)
		}
		startProfiling(&opts.Base)
		if _, err := import_.AssignTowns(opts); err != nil {
			log.Fatalf("[fatal] %s", err)
		}
	case "version":
		fmt.Println(wastewater.Version)
		os.Exit(0)
	default:
		usage()
		log.Fatalf("[fatal] invalid command: '%s'", os.Args[1])
	}
}

func main() {
	Main(PrintCmds)
}
