package commands

import (
	"github.com/spf13/cobra"

	"github.com/nadzzz/mandirate/internal/catalog"
	"github.com/nadzzz/mandirate/internal/config"
	"github.com/nadzzz/mandirate/internal/dispatch"
	"github.com/nadzzz/mandirate/internal/intent"
	"github.com/nadzzz/mandirate/internal/livefeed"
)

var (
	configFile string
	cfg        *config.Config
)

// Execute runs the mandirate command line.
func Execute(version string) error {
	root := &cobra.Command{
		Use:          "mandirate",
		Short:        "Multilingual mandi price assistant",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			c, err := config.Load(configFile)
			if err != nil {
				return err
			}
			config.SetupLogging(c.Logging)
			cfg = c
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file (e.g. configs/mandirate.yaml)")

	root.AddCommand(serveCmd(version), askCmd(), pricesCmd(), versionCmd(version))
	return root.Execute()
}

// engine is the price-query pipeline shared by serve and ask.
type engine struct {
	matcher    *intent.Matcher
	prices     *catalog.SnapshotStore
	dispatcher *dispatch.Dispatcher
}

// newEngine builds the catalog and pipeline. A defective catalog panics.
func newEngine() *engine {
	cat := catalog.MustDefault()
	store := catalog.NewSnapshotStore(catalog.Static(cat))
	m := intent.NewMatcher(cat)
	return &engine{
		matcher:    m,
		prices:     store,
		dispatcher: dispatch.New(m, store),
	}
}

func newFeed(c config.LiveFeedConfig) *livefeed.Feed {
	return livefeed.New(livefeed.Config{
		Enabled:    c.Enabled,
		Endpoint:   c.Endpoint,
		ResourceID: c.ResourceID,
		APIKey:     c.APIKey,
		Timeout:    c.Timeout,
	}, nil)
}
