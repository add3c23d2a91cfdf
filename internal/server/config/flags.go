package config

import (
	"flag"
	"os"
	"time"

	"github.com/jeranbbs/jeran/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   client listen address (e.g., ":3103")
//	-v string   credential-store file path
//	-p string   post snapshot directory
//	-s int      snapshot period, seconds
//	-t string   banner texts directory
//	-r          enable the remote admin shell
//	-m string   admin shell listen address
//
// Args are pre-filtered with flagx.FilterArgs so the -c/-config flags of
// the JSON layer never collide with this flag set.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-v", "-p", "-s", "-t", "-r", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.VerifierDBPath, "v", config.VerifierDBPath, "credential store path")
	fs.StringVar(&config.PostSaveDir, "p", config.PostSaveDir, "post snapshot directory")

	snapshotPeriod := fs.Int("s", int(config.SnapshotPeriod.Seconds()), "snapshot period (in seconds)")

	fs.StringVar(&config.TextsDir, "t", config.TextsDir, "banner texts directory")
	fs.BoolVar(&config.AdminShellEnabled, "r", config.AdminShellEnabled, "enable remote admin shell")
	fs.StringVar(&config.AdminShellAddr, "m", config.AdminShellAddr, "admin shell address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SnapshotPeriod = time.Duration(*snapshotPeriod) * time.Second
}
