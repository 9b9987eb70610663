// Package cli implements the orderdesk command line client. It drives the
// store API for catalog management and composes order drafts locally before
// submitting them.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orderdesk/orderdesk/internal/storeapi"
)

const defaultAPIURL = "http://localhost:8080"

func newRootCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:           "orderdesk",
		Short:         "Compose and manage orders against the orderdesk store API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "store API base URL (or ORDERDESK_API_URL env)")

	client := func() (*storeapi.Client, error) {
		u := apiURL
		if u == "" {
			u = os.Getenv("ORDERDESK_API_URL")
		}
		if u == "" {
			u = defaultAPIURL
		}
		return storeapi.NewClient(u)
	}

	cmd.AddCommand(newProductsCmd(client))
	cmd.AddCommand(newOrdersCmd(client))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
