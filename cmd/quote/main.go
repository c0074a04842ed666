// Command quote prices a SaaS configuration from the pricing documents.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/tarifa/internal/config"
	"github.com/davidbz/tarifa/internal/format"
	"github.com/davidbz/tarifa/internal/observability"
	"github.com/davidbz/tarifa/internal/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// rootOptions holds the persistent flags. Set flags override the environment.
type rootOptions struct {
	dataDir   string
	sourceURL string
	redisAddr string
	locale    string
	logLevel  string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "quote",
		Short: "Price a SaaS configuration",
		Long: `quote builds a pricing engine from the pricing documents (a data
directory or a remote base URL) and prices a selection of modules, users,
storage, surcharges, billing cycle and display currency.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data-dir", "", "directory holding the pricing documents (env DATA_DIR)")
	flags.StringVar(&opts.sourceURL, "source-url", "", "base URL serving the pricing documents (env SOURCE_URL)")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the document cache (env REDIS_ADDR)")
	flags.StringVar(&opts.locale, "locale", "", "locale used to format amounts (env QUOTE_LOCALE)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newEstimateCmd(opts),
		newModulesCmd(opts),
		newSchemaCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quote %s\n", version)
		},
	}
}

// loadConfig reads the environment and applies the flags that were set.
func (o *rootOptions) loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.Data.Dir = o.dataDir
	}
	if flags.Changed("source-url") {
		cfg.Remote.URL = o.sourceURL
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = o.redisAddr
	}
	if flags.Changed("locale") {
		cfg.Format.Locale = o.locale
	}
	cfg.Log.Level = o.logLevel

	return cfg
}

// buildContainer wires the CLI dependencies.
func (o *rootOptions) buildContainer(cmd *cobra.Command) (*dig.Container, error) {
	cfg := o.loadConfig(cmd)
	container := dig.New()

	providers := []interface{}{
		func() *config.Config { return cfg },
		config.ParseDependenciesConfig,
		observability.InitLogger,
		observability.NewEventBus,
		source.NewConfigSource,
		func(cfg *config.FormatConfig) (*format.Formatter, error) {
			return format.NewFormatter(cfg.Locale)
		},
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, fmt.Errorf("failed to wire dependencies: %w", err)
		}
	}

	return container, nil
}

// invoke runs fn inside the container and unwraps dig's error decoration.
func (o *rootOptions) invoke(cmd *cobra.Command, fn interface{}) error {
	container, err := o.buildContainer(cmd)
	if err != nil {
		return err
	}

	// The logger is built first so the global logger honours --log-level.
	if err := container.Invoke(func(*zap.Logger) {}); err != nil {
		return dig.RootCause(err)
	}

	if err := container.Invoke(fn); err != nil {
		return dig.RootCause(err)
	}

	return container.Invoke(func(logger *zap.Logger) {
		_ = logger.Sync()
	})
}
