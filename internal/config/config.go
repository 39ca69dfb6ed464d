// Package config holds the handful of knobs the demonstration program
// needs, populated from flags via the standard library flag package — the
// minimal, flag-driven configuration style this codebase's lineage already
// uses, rather than introducing a config file format it never had.
package config

import "flag"

// Config is the demonstration program's runtime configuration.
type Config struct {
	Symbol        string
	OrderLogPath  string
	TradeLogPath  string
	MetricsAddr   string
	MetricsEnable bool
	ScriptPath    string
	DepthToPrint  int
}

// Parse populates a Config from the process's command-line flags.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("lobcore", flag.ContinueOnError)
	cfg := &Config{}
	fs.StringVar(&cfg.Symbol, "symbol", "DEMO", "instrument symbol to run")
	fs.StringVar(&cfg.OrderLogPath, "order-log", "", "path to the order warm-start log (empty disables persistence)")
	fs.StringVar(&cfg.TradeLogPath, "trade-log", "", "path to the trade append log (empty disables persistence)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", ":9090", "address to serve Prometheus metrics on, when enabled")
	fs.BoolVar(&cfg.MetricsEnable, "metrics", false, "serve Prometheus metrics")
	fs.StringVar(&cfg.ScriptPath, "script", "", "path to a newline-delimited JSON order script (defaults to stdin)")
	fs.IntVar(&cfg.DepthToPrint, "depth", 5, "number of book levels to print per side after each order")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
