package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lumina-ai/lumina/config"
)

func indexCMD() *cobra.Command {
	var cfgPath string

	var cmd = &cobra.Command{
		Use:   "index",
		Short: "Inspect or reset the vector index",
	}

	var stats = &cobra.Command{
		Use:   "stats",
		Short: "Show vector index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			vectors, err := buildVectorStore(cfg.Vector)
			if err != nil {
				return err
			}
			stats, err := vectors.Stats(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("vectors: %d\ndimension: %d\nfullness: %.4f\n",
				stats.TotalVectors, stats.Dimension, stats.IndexFullness)
			return nil
		},
	}

	var yes bool
	var reset = &cobra.Command{
		Use:   "reset",
		Short: "Delete every vector in the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Print("This deletes ALL vectors. Type 'yes' to continue: ")
				line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				if strings.TrimSpace(line) != "yes" {
					fmt.Println("aborted")
					return nil
				}
			}
			cfg := config.LoadConfig(cfgPath)
			vectors, err := buildVectorStore(cfg.Vector)
			if err != nil {
				return err
			}
			if err := vectors.Clear(context.Background()); err != nil {
				return err
			}
			fmt.Println("index cleared")
			return nil
		},
	}
	reset.Flags().BoolVar(&yes, "yes", false, "skip confirmation")

	cmd.AddCommand(stats, reset)
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
