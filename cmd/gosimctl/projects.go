package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/go-sim-client/internal/projects/domain"
)

func addPageFlags(cmd *cobra.Command, page *domain.Page) {
	cmd.Flags().IntVar(&page.Page, "page", 0, "page number, starting at 1 (requires --page-size)")
	cmd.Flags().IntVar(&page.PageSize, "page-size", 0, "items per page (requires --page)")
}

func newProjectsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long: `Manage projects on the backend.

Examples:
  # List the second page of projects
  gosimctl projects list --page 2 --page-size 20

  # Create a project
  gosimctl projects create --name "Checkout flow" --description "Q3 redesign"`,
	}

	get := &cobra.Command{
		Use:   "get <project-id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.projects.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProjects(cmd, opts, []domain.Project{*p})
		},
	}

	var page domain.Page
	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := opts.projects.ListProjects(cmd.Context(), page)
			if err != nil {
				return err
			}
			return printProjects(cmd, opts, items)
		},
	}
	addPageFlags(list, &page)

	var req domain.CreateProjectRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := opts.projects.CreateProject(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printProjects(cmd, opts, []domain.Project{*p})
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "project name (required)")
	create.Flags().StringVar(&req.Description, "description", "", "project description")
	_ = create.MarkFlagRequired("name")

	del := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.projects.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted project %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(get, list, create, del)
	return cmd
}

func printProjects(cmd *cobra.Command, opts *rootOptions, items []domain.Project) error {
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return writeJSON(out, items)
	}
	rows := make([][]string, 0, len(items))
	for _, p := range items {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			strconv.Itoa(len(p.AssetIDs)),
			strconv.Itoa(len(p.ProcessIDs)),
			formatTime(p.CreatedAt),
		})
	}
	return writeTable(out, []string{"ID", "NAME", "ASSETS", "PROCESSES", "CREATED"}, rows)
}
