package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool             `help:"Show timing telemetry for operations." env:"BEANCOUNT_TELEMETRY"`
	LogLevel  string           `help:"Log level (debug, info, warn, error)." default:"warn" env:"BEANCOUNT_LOG_LEVEL" enum:"debug,info,warn,error"`
	Config    kong.ConfigFlag  `help:"Load flag defaults from a TOML file." placeholder:"FILE"`
	Version   kong.VersionFlag `help:"Show version information."`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Load a ledger document and report transactions that cannot be completed."`
	Complete CompleteCmd `cmd:"" help:"Fill in incomplete postings and print the completed document."`
}

// Options returns the kong options the command line is parsed with. Flag values
// come from the command line, then BEANCOUNT_* environment variables, then the
// TOML config file.
func Options(cmds *Commands) []kong.Option {
	return []kong.Option{
		kong.Name("beancount-complete"),
		kong.Description("Complete the incomplete postings of ledger transactions."),
		kong.Vars{
			"version": BuildVersion(),
		},
		kong.UsageOnError(),
		kong.Configuration(TOMLLoader, DefaultConfigPath),
		kong.Bind(&cmds.Globals),
	}
}

// BuildVersion returns the version string shown by --version.
func BuildVersion() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, CommitSHA)
}
