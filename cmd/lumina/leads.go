package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lumina-ai/lumina/config"
	"github.com/lumina-ai/lumina/internal/store"
)

func leadsCMD() *cobra.Command {
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "leads",
		Short: "List captured leads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()
			st, err := store.NewWithDSN(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer st.DB.Close()

			leads, err := st.ListLeads(ctx)
			if err != nil {
				return err
			}
			if len(leads) == 0 {
				fmt.Println("no leads captured yet")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tSTATUS\tCREATED\tNOTES")
			for _, l := range leads {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					l.Email, l.Name.String, l.Status,
					l.CreatedAt.Format("2006-01-02 15:04"), l.Notes.String)
			}
			return w.Flush()
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
