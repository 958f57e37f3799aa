package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/pathtrace/pathtrace/internal/diag"
)

func main() {
	flags := flag.NewFlagSet("pathtrace", flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: pathtrace [flags] <access-log>\n\n")
		flags.PrintDefaults()
	}

	var (
		configPath   = flags.String("config", "", "config file (YAML/JSON/TOML) overlaying defaults")
		concurrency  = flags.IntP("concurrency", "C", 0, "worker thread count, 1..4096 (default: CPU count)")
		index        = flags.StringP("index", "i", "", "column overrides, kind=col,...")
		session      = flags.StringP("session", "S", defaultSessionFields, "session key fields, comma list of ipaddr,useragent")
		truncatePath = flags.StringP("truncate-patterns", "T", "", "truncation pattern file")
		format       = flags.StringP("format", "f", defaultFormat, "output format (dot-graph)")
		output       = flags.StringP("output", "o", defaultOutput, "output path, - for stdout")
		showVersion  = flags.BoolP("version", "V", false, "print version information")
		dumpSchema   = flags.Bool("dump-schema", false, "print the inferred scan plan as YAML to stderr")
	)

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return
		}
		os.Exit(1)
	}

	if *showVersion {
		fmt.Printf("pathtrace %s (%s)\n", version, commit)
		return
	}

	args := flags.Args()
	if len(args) != 1 {
		flags.Usage()
		diag.Fatal("exactly one access-log path is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		diag.Fatalf("loading config: %v", err)
	}

	cfg.LogPath = args[0]
	if flags.Changed("concurrency") {
		cfg.Concurrency = *concurrency
	}
	if flags.Changed("index") {
		cfg.IndexOverrides = *index
	}
	if flags.Changed("session") {
		cfg.SessionFields = *session
	}
	if flags.Changed("truncate-patterns") {
		cfg.TruncatePatterns = *truncatePath
	}
	if flags.Changed("format") {
		cfg.Format = *format
	}
	if flags.Changed("output") {
		cfg.Output = *output
	}
	if flags.Changed("dump-schema") {
		cfg.DumpSchema = *dumpSchema
	}

	if err := run(cfg); err != nil {
		diag.Fatalf("%v", err)
	}
}
