// Prefsctl inspects and edits typed preferences from the command line.
//
// By default it operates on the embedded sample preference screen. Pointing
// --prefs and --res at a preference screen and its resource directory loads
// that screen at runtime instead.
//
// Usage:
//
//	prefsctl [command] [flags]
//
// See 'prefsctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the persistent flags after the config file has been merged in.
type options struct {
	configPath string
	logLevel   string
	store      string
	dsn        string
	namespace  string
	locale     string
	res        string
	prefs      string
	cache      string
	cacheAddr  string
	cacheTTL   string
	listenAddr string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "prefsctl",
		Short: "Typed preference inspection utility",
		Long: `Inspect, edit and serve typed preferences.

Every preference has a key, a declared type and a default that is either a
literal or a resource resolved for the selected locale. Values are kept in the
selected store; clearing a value makes reads fall back to the default.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.mergeConfig(cmd)
		},
	}

	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	flags.StringVar(&opts.store, "store", "memory", "Storage backend (memory, sqlite, postgres, redis)")
	flags.StringVar(&opts.dsn, "dsn", "", "Storage location: SQLite file, PostgreSQL connection string or redis:// URL")
	flags.StringVar(&opts.namespace, "namespace", "typedprefs", "Redis hash holding the preferences")
	flags.StringVar(&opts.locale, "locale", "", "Resource locale, for example fr or fr-CA")
	flags.StringVar(&opts.res, "res", "", "Resource directory (defaults to the embedded sample)")
	flags.StringVar(&opts.prefs, "prefs", "", "Preference screen XML (defaults to the embedded sample)")
	flags.StringVar(&opts.cache, "cache", "", "Read cache in front of the store (memory, redis)")
	flags.StringVar(&opts.cacheAddr, "cache-addr", "localhost:6379", "Redis address of the redis cache")
	flags.StringVar(&opts.cacheTTL, "cache-ttl", "", "Cache entry lifetime, for example 5m")

	rootCmd.AddCommand(newDumpCmd(opts))
	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newSetCmd(opts))
	rootCmd.AddCommand(newClearCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newGenCmd(opts))

	return rootCmd
}

// mergeConfig fills every flag the user did not set from the config file.
func (o *options) mergeConfig(cmd *cobra.Command) error {
	cfg, err := loadConfig(o.configPath)
	if err != nil {
		return err
	}

	set := func(name string, dst *string, value string) {
		if value != "" && !cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("log-level", &o.logLevel, cfg.LogLevel)
	set("store", &o.store, cfg.Store)
	set("dsn", &o.dsn, cfg.DSN)
	set("namespace", &o.namespace, cfg.Namespace)
	set("locale", &o.locale, cfg.Locale)
	set("res", &o.res, cfg.Res)
	set("prefs", &o.prefs, cfg.Prefs)
	set("cache", &o.cache, cfg.Cache.Type)
	set("cache-addr", &o.cacheAddr, cfg.Cache.Addr)
	set("cache-ttl", &o.cacheTTL, cfg.Cache.TTL)
	set("listen-addr", &o.listenAddr, cfg.ListenAddr)
	return nil
}
