package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAPIKeyCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the caller's API key",
		Long: `Manage the API key of the calling user.

Examples:
  # Ask the backend to issue a key for an email address
  gosimctl apikey request dev@example.com

  # Activate the received key, then read it back
  gosimctl apikey save gsk_0123abcd
  gosimctl apikey get`,
	}

	request := &cobra.Command{
		Use:   "request <email>",
		Short: "Request a new API key for an email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.users.RequestAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "api key requested for %s\n", args[0])
			return nil
		},
	}

	save := &cobra.Command{
		Use:   "save <api-key>",
		Short: "Save the caller's active API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.users.SaveAPIKey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "api key saved")
			return nil
		},
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the caller's active API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := opts.users.GetAPIKey(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.APIKey)
			return nil
		},
	}

	cmd.AddCommand(request, save, get)
	return cmd
}
