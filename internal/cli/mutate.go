package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sebasr/target-manager/internal/form"
	"github.com/sebasr/target-manager/internal/listing"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/ui"
	"github.com/sebasr/target-manager/internal/validation"
)

// fieldFlags holds one string flag per form field.
type fieldFlags map[validation.Field]*string

func flagName(f validation.Field) string {
	return strings.ReplaceAll(string(f), "_", "-")
}

func addFieldFlags(cmd *cobra.Command) fieldFlags {
	values := make(fieldFlags, len(validation.Fields))
	for _, f := range validation.Fields {
		values[f] = cmd.Flags().String(flagName(f), "", ui.FieldLabel(f))
	}
	return values
}

func variantOf(simple bool) validation.Variant {
	if simple {
		return validation.Simple
	}
	return validation.Full
}

func newAddCommand(a *app) *cobra.Command {
	var simple bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a target",
		Long: `Create a target. When any field flag is given the target is built from flags
alone; otherwise an interactive form is shown.`,
		Example: `  targetctl add --latitude 45.5 --longitude -122.6 --altitude 100 \
    --frequency 915 --speed 25 --bearing 180 --ip-address 10.0.0.1`,
		Args: cobra.NoArgs,
	}
	values := addFieldFlags(cmd)
	cmd.Flags().BoolVar(&simple, "simple", false, "pick the frequency from the common list")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		page := listing.New(a.store, listing.Options{Variant: variantOf(simple)})
		if err := page.OpenCreate(); err != nil {
			return err
		}
		target, err := a.runForm(cmd, page.Form(), values)
		if err != nil {
			return err
		}
		a.note("Created target %s", target.ID)
		return a.print(target, func() string { return ui.Details(*target) })
	}
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var simple bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a target (id or unique id prefix)",
		Long: `Edit a target. Fields given as flags replace the stored values; without
field flags an interactive form pre-filled with the current values is shown.`,
		Example: `  targetctl edit 550e8400 --ip-address 10.10.10.10`,
		Args:    cobra.ExactArgs(1),
	}
	values := addFieldFlags(cmd)
	cmd.Flags().BoolVar(&simple, "simple", false, "pick the frequency from the common list")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		page, err := a.newPage(cmd.Context(), variantOf(simple))
		if err != nil {
			return err
		}
		if err := page.OpenEdit(args[0]); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		target, err := a.runForm(cmd, page.Form(), values)
		if err != nil {
			return err
		}
		a.note("Updated target %s", target.ID)
		return a.print(target, func() string { return ui.Details(*target) })
	}
	return cmd
}

// runForm fills the open form from flags, or interactively when no field flag
// was given, and submits it.
func (a *app) runForm(cmd *cobra.Command, f *form.Controller, values fieldFlags) (*models.Target, error) {
	ctx := cmd.Context()

	fromFlags := false
	for _, field := range validation.Fields {
		if cmd.Flags().Changed(flagName(field)) {
			if err := f.SetField(field, *values[field]); err != nil {
				return nil, err
			}
			fromFlags = true
		}
	}
	if fromFlags {
		return a.submit(ctx, f)
	}

	for {
		draft := f.Draft()
		if err := a.opts.Prompter.EditDraft(f.Title(), &draft, f.Variant()); err != nil {
			_ = f.Cancel()
			return nil, err
		}
		for _, field := range validation.Fields {
			if err := f.SetField(field, draft.Get(field)); err != nil {
				return nil, err
			}
		}

		target, err := a.submit(ctx, f)
		if err == nil {
			return target, nil
		}
		again, perr := a.opts.Prompter.Confirm("Try again?", "Your input is kept.")
		if perr != nil || !again {
			_ = f.Cancel()
			return nil, errReported
		}
	}
}

func (a *app) submit(ctx context.Context, f *form.Controller) (*models.Target, error) {
	a.log.WithField("label", f.SubmitLabel()).Debug("submitting form")
	target, err := f.Submit(ctx)
	if err != nil {
		if errors.Is(err, form.ErrSubmitInFlight) || errors.Is(err, form.ErrClosed) {
			return nil, err
		}
		fmt.Fprint(a.opts.Err, ui.FormErrors(f))
		return nil, errReported
	}
	return target, nil
}

func newDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a target (id or unique id prefix)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			page, err := a.newPage(ctx, validation.Full)
			if err != nil {
				return err
			}
			target, err := page.RequestDelete(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if !yes {
				fmt.Fprint(a.opts.Out, ui.DeleteConfirmation(target))
				ok, err := a.opts.Prompter.Confirm("Delete this target?", "")
				if err != nil || !ok {
					page.CancelDelete()
					fmt.Fprintln(a.opts.Out, "Delete cancelled.")
					if errors.Is(err, errAborted) {
						return nil
					}
					return err
				}
			}

			if err := page.ConfirmDelete(ctx); err != nil {
				return err
			}
			a.note("Deleted target %s", target.ID)
			if msg := page.Banner(); msg != "" {
				fmt.Fprintln(a.opts.Err, ui.Banner(msg))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
