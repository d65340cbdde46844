package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/endocare/internal/models"
)

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var ownerID uint

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Print stored records of a kind as JSON",
		Long:  "Print stored records of one kind (sleep, diet, menstrual, symptoms, prediction) newest date first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, rootOpts, args[0], ownerID)
		},
	}
	cmd.Flags().UintVar(&ownerID, "owner", 0, "owner id (defaults to auth.default_owner_id)")

	return cmd
}

func runList(cmd *cobra.Command, rootOpts *RootOptions, rawKind string, ownerID uint) error {
	kind, err := models.ParseKind(rawKind)
	if err != nil {
		return err
	}

	rt, err := loadRuntime(rootOpts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()
	if ownerID == 0 {
		ownerID = rt.cfg.Auth.DefaultOwnerID
	}

	backend, err := openBackend(cmd.Context(), rt.cfg)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer backend.Close()

	store, err := newRecordStore(rt.cfg, backend, rt.logger)
	if err != nil {
		return err
	}
	records, err := store.ListAll(cmd.Context(), ownerID, kind)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}
