package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sebasr/target-manager/internal/listing"
	"github.com/sebasr/target-manager/internal/ui"
	"github.com/sebasr/target-manager/internal/validation"
)

func newListCommand(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every target",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			page := listing.New(a.store, listing.Options{Variant: validation.Full})

			for {
				err := page.Load(ctx)
				if err == nil {
					return a.print(page.Targets(), func() string { return ui.ListView(page) })
				}

				fmt.Fprint(a.opts.Err, ui.ListView(page))
				if !interactive {
					return errReported
				}
				retry, perr := a.opts.Prompter.Confirm("Retry?", page.Banner())
				if perr != nil || !retry {
					return errReported
				}
				page.DismissBanner()
			}
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "offer to retry when loading fails")
	return cmd
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one target (id or unique id prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.newPage(cmd.Context(), validation.Full)
			if err != nil {
				return err
			}
			target, err := page.Resolve(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			// Fetch by id so the output reflects the server's copy.
			fresh, err := a.store.GetTarget(cmd.Context(), target.ID)
			if err != nil {
				return err
			}
			return a.print(fresh, func() string { return ui.Details(*fresh) })
		},
	}
}

func newHealthCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := a.store.Health(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(status, func() string {
				return fmt.Sprintf("%s (version %s, %s)\n", status.Status, status.Version, status.Timestamp.Format("2006-01-02 15:04:05Z07:00"))
			})
		},
	}
}
