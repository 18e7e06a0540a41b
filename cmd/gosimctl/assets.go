package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

func newAssetsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assets",
		Aliases: []string{"asset"},
		Short:   "Manage the files of a project",
		Long: `Manage the files attached to a project.

Examples:
  # Upload a PDF
  gosimctl assets upload proj-12345-6789 ./design.pdf

  # Download it again
  gosimctl assets download proj-12345-6789 <asset-id> -o design.pdf`,
	}

	var page domain.Page
	list := &cobra.Command{
		Use:   "list <project-id>",
		Short: "List the assets of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.projects.ListAssets(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			return printAssets(cmd, opts, items)
		},
	}
	addPageFlags(list, &page)

	upload := &cobra.Command{
		Use:   "upload <project-id> <file>",
		Short: "Upload a file to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()

			a, err := opts.projects.UploadAsset(cmd.Context(), args[0], filepath.Base(args[1]), f)
			if err != nil {
				return err
			}
			if a == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s\n", filepath.Base(args[1]))
				return nil
			}
			return printAssets(cmd, opts, []domain.Asset{*a})
		},
	}

	var output string
	download := &cobra.Command{
		Use:   "download <project-id> <asset-id>",
		Short: "Download the content of an asset",
		Long:  "Download the content of an asset. Without --output the bytes are written to stdout.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.projects.FetchAssetFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d bytes to %s\n", len(data), output)
			return nil
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "", "file to write, - for stdout")

	urlCmd := &cobra.Command{
		Use:   "url <project-id> [asset-id]",
		Short: "Print the public URL of an asset",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assetID := ""
			if len(args) == 2 {
				assetID = args[1]
			}
			fmt.Fprintln(cmd.OutOrStdout(), opts.projects.AssetURL(args[0], assetID))
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <project-id> <asset-id>",
		Short: "Delete an asset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.projects.DeleteAsset(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted asset %s\n", args[1])
			return nil
		},
	}

	cmd.AddCommand(list, upload, download, urlCmd, del)
	return cmd
}

func newProcessesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "processes",
		Aliases: []string{"process"},
		Short:   "Inspect the processes of a project",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list <project-id>",
		Short: "List the processes of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.projects.ListProcesses(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, items)
			}
			rows := make([][]string, 0, len(items))
			for _, p := range items {
				rows = append(rows, []string{p.ID, p.AssetID, p.Status, formatTime(p.UpdatedAt)})
			}
			return writeTable(out, []string{"ID", "ASSET", "STATUS", "UPDATED"}, rows)
		},
	})
	return cmd
}

func printAssets(cmd *cobra.Command, opts *rootOptions, items []domain.Asset) error {
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return writeJSON(out, items)
	}
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{a.ID, a.Filename, strconv.FormatInt(a.Size, 10), formatTime(a.CreatedAt)})
	}
	return writeTable(out, []string{"ID", "FILENAME", "SIZE", "CREATED"}, rows)
}
