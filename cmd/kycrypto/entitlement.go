package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newEntitlementCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entitlement",
		Short: "Inspect or revoke the detailed-analysis entitlement",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether the entitlement is active",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			if !a.ent.IsActive(ctx) {
				fmt.Println("inactive")
				return nil
			}
			st, err := a.ent.Status(ctx)
			if err != nil {
				return err
			}
			if st.ExpiresAt == nil {
				fmt.Println("active, never expires")
				return nil
			}
			fmt.Printf("active, expires %s (%s)\n", st.ExpiresAt.Format(time.RFC3339), humanize.Time(*st.ExpiresAt))
			return nil
		},
	}, &cobra.Command{
		Use:   "revoke",
		Short: "Clear the entitlement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts.configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.ent.Revoke(context.Background()); err != nil {
				return err
			}
			fmt.Println("entitlement revoked")
			return nil
		},
	})
	return cmd
}
