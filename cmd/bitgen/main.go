// Command bitgen assembles a device configuration bitstream from a
// compiled config database and the outputs of synthesis, packing,
// placement and routing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/princeton-csl/bitgen/internal/bitstream"
	"github.com/princeton-csl/bitgen/internal/blif"
	"github.com/princeton-csl/bitgen/internal/configdb"
	"github.com/princeton-csl/bitgen/internal/packing"
	"github.com/princeton-csl/bitgen/internal/placement"
	"github.com/princeton-csl/bitgen/internal/routing"
	"github.com/princeton-csl/bitgen/internal/xlog"
)

type options struct {
	verbose    string
	configDB   string
	blif       string
	net        string
	place      string
	route      string
	outputMemh string
	memhWidth  int
}

func parseFlags(args []string) (*options, error) {
	fs := pflag.NewFlagSet("bitgen", pflag.ContinueOnError)
	o := &options{}
	fs.StringVarP(&o.verbose, "verbose", "v", "info", "log level: trace|debug|info|warn|err|critical|off")
	fs.StringVarP(&o.configDB, "config_db", "c", "", "path to the binary config database (required)")
	fs.StringVarP(&o.blif, "blif", "b", "", "path to the synthesized BLIF netlist (required)")
	fs.StringVarP(&o.net, "net", "n", "", "path to the packing result XML (required)")
	fs.StringVarP(&o.place, "place", "p", "", "path to the placement trace (required)")
	fs.StringVarP(&o.route, "route", "r", "", "path to the routing trace (required)")
	fs.StringVar(&o.outputMemh, "output_memh", "", "path to write the memory-image file")
	fs.IntVar(&o.memhWidth, "memh_width", 16, "memory-image word width: 4, 8, 16, 32 or 64")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for flag, val := range map[string]string{
		"config_db": o.configDB,
		"blif":      o.blif,
		"net":       o.net,
		"place":     o.place,
		"route":     o.route,
	} {
		if val == "" {
			return nil, fmt.Errorf("missing required flag --%s", flag)
		}
	}
	return o, nil
}

func run(o *options) error {
	if err := xlog.Configure(o.verbose); err != nil {
		return err
	}

	db := configdb.New()
	if err := db.ParseDatabase(o.configDB); err != nil {
		return fmt.Errorf("config database: %w", err)
	}

	blifMgr := blif.NewManager()
	f, err := os.Open(o.blif)
	if err != nil {
		return fmt.Errorf("blif: %w", err)
	}
	err = blifMgr.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("blif: %w", err)
	}

	packMgr := packing.NewBitchainManager()
	netFile, err := os.Open(o.net)
	if err != nil {
		return fmt.Errorf("packing result: %w", err)
	}
	parser := packing.NewParser(db, blifMgr, packMgr)
	err = parser.Parse(netFile)
	netFile.Close()
	if err != nil {
		return fmt.Errorf("packing result: %w", err)
	}

	dst := bitstream.New(db)

	if err := placement.Apply(o.place, db, packMgr, dst); err != nil {
		return fmt.Errorf("placement: %w", err)
	}

	result, err := routing.Apply(o.route, db, dst)
	if err != nil {
		return fmt.Errorf("routing: %w", err)
	}
	xlog.Logger.Info().Int("nets", result.Routed).Int("global_nodes", len(result.GlobalNodes)).Msg("routing applied")

	if o.outputMemh != "" {
		if err := bitstream.WriteMemh(o.outputMemh, dst, o.memhWidth); err != nil {
			return fmt.Errorf("memory image: %w", err)
		}
	}

	return nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(o); err != nil {
		xlog.Logger.Error().Err(err).Msg("bitgen failed")
		os.Exit(1)
	}
}
