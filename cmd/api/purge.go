package main

import (
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/spf13/cobra"

	"docsearch/internal/storage"
)

func newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every stored document and blob",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to purge without --yes")
			}

			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()

			// One attempt: an unreachable store fails the command instead of hanging it.
			blobs := e.blobStore(storage.WithBackOff(&backoff.StopBackOff{}))
			blobs.Start(cmd.Context())
			if err := blobs.Wait(cmd.Context()); err != nil {
				return fmt.Errorf("blob store: %w", err)
			}

			res, err := e.router(blobs).Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d documents and %d blobs\n", res.Documents, res.Blobs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion of all stored files")
	return cmd
}
