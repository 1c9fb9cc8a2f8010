// Command vortis runs the vortis API and manages its database schema.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "vortis",
		Short:        "vortis stock analysis API",
		Long:         `vortis serves rate-limited stock analyses, Stripe checkout and the Clerk and Stripe webhooks that keep subscriptions in sync.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
