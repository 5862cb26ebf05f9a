// Command ratpm is the entry point for the RPM package manager client.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ratpm/ratpm/internal/catalog/fedora"
	"github.com/ratpm/ratpm/internal/cli"
	"github.com/ratpm/ratpm/internal/config"
	installeddbfedora "github.com/ratpm/ratpm/internal/installeddb/fedora"
	"github.com/ratpm/ratpm/internal/output"
	"github.com/ratpm/ratpm/internal/rtctx"
)

const installedDBDir = "/var/lib/ratpm/installed"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	var assumeYes, noColor bool
	fs := flag.NewFlagSet("ratpm", flag.ContinueOnError)
	fs.BoolVar(&assumeYes, "y", false, "assume yes for all prompts")
	fs.BoolVar(&assumeYes, "assume-yes", false, "assume yes for all prompts")
	fs.BoolVar(&noColor, "no-color", false, "disable colored output")
	fs.Usage = func() {}

	args, rest := splitGlobalFlags(fs, argv)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if assumeYes {
		cfg.System.AssumeYes = true
	}
	if noColor {
		cfg.System.Color = false
	}

	cat, err := fedora.New(cfg.Repos.RepoDir, cfg.System.CacheDir, cfg.Repos.GPGCheck)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ratpm: failed to initialize catalog:", err)
		return 1
	}
	db, err := installeddbfedora.New(installedDBDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ratpm: failed to initialize installed database:", err)
		return 1
	}

	backend := rtctx.Backend{Catalog: cat, InstalledDB: db}
	ctx := rtctx.New(cfg, backend, os.Geteuid() == 0)

	logger := log.New(os.Stderr)
	out := output.New(os.Stdout, logger, cfg.System.Color)

	return cli.Dispatch(append(fs.Args(), rest...), ctx, out)
}

// splitGlobalFlags separates ratpm's global flags (-y/--assume-yes,
// --no-color), which may appear before or mixed in ahead of the
// subcommand, from everything else. Once the first non-flag token is
// seen, the rest is left untouched for the subcommand's own FlagSet to
// parse.
func splitGlobalFlags(fs *flag.FlagSet, argv []string) (globals, rest []string) {
	known := map[string]bool{}
	fs.VisitAll(func(f *flag.Flag) { known[f.Name] = true })

	for i := 0; i < len(argv); i++ {
		a := argv[i]
		name := trimFlagPrefix(a)
		if name != "" && known[name] {
			globals = append(globals, a)
			continue
		}
		rest = append(rest, argv[i:]...)
		break
	}
	return globals, rest
}

func trimFlagPrefix(s string) string {
	switch {
	case len(s) > 2 && s[:2] == "--":
		return s[2:]
	case len(s) > 1 && s[:1] == "-":
		return s[1:]
	default:
		return ""
	}
}
