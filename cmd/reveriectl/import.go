package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/reverie/internal/plugins/auth"
	"github.com/keyxmakerx/reverie/internal/plugins/journal"
	"github.com/keyxmakerx/reverie/internal/plugins/media"
)

func newImportCmd() *cobra.Command {
	var email, file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a journalData.json export into a user's journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			// Sessions are not needed here, so no Redis client.
			users := auth.NewAuthService(auth.NewUserRepository(db), nil, cfg.Auth.SessionTTL)
			user, err := users.EnsureUser(cmd.Context(), email)
			if err != nil {
				return fmt.Errorf("resolving user %s: %w", email, err)
			}

			mediaSvc := media.NewMediaService(media.NewMediaRepository(db), cfg.Upload.MediaPath, cfg.Upload.MaxSize)
			// Entries without a sketch are picked up by the server's backfill.
			svc := journal.NewJournalService(journal.NewEntryRepository(db), mediaSvc, nil, cfg.Location())

			res, err := svc.Import(cmd.Context(), user.ID, raw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries (%d sketches) for %s, skipped %d\n",
				res.Imported, res.Sketches, user.Email, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (created when missing)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to journalData.json")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
