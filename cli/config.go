package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
)

// DefaultConfigPath is consulted for flag defaults when --config is not given.
const DefaultConfigPath = "~/.config/beancount-complete/config.toml"

// TOMLLoader is a kong.ConfigurationLoader for TOML files. Flags are looked up
// in a table named after the running command first, then at the top level:
//
//	log-level = "debug"
//
//	[check]
//	format = "json"
func TOMLLoader(r io.Reader) (kong.Resolver, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		var sections [][]string
		if parent != nil && parent.Command != nil {
			sections = append(sections, []string{parent.Command.Name})
		}
		sections = append(sections, nil)

		for _, section := range sections {
			for _, name := range configKeys(flag.Name) {
				value := tree.GetPath(append(section, name))
				if value == nil {
					continue
				}
				if _, ok := value.(*toml.Tree); ok {
					continue
				}
				return configValue(value), nil
			}
		}
		return nil, nil
	}
	return f, nil
}

// configKeys returns the spellings a flag may use in the config file.
func configKeys(name string) []string {
	underscored := strings.ReplaceAll(name, "-", "_")
	if underscored == name {
		return []string{name}
	}
	return []string{name, underscored}
}

func configValue(value any) any {
	if list, ok := value.([]any); ok {
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = fmt.Sprint(v)
		}
		return out
	}
	return fmt.Sprint(value)
}

// LoadEnv loads environment variables from .env files. Without arguments the
// .env file in the working directory is loaded if present; explicitly named
// files must exist. Variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		_ = godotenv.Load()
		return nil
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}
