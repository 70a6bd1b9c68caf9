package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"knot/internal/config"
	"knot/internal/storage"
	"knot/internal/ui"
)

var (
	configPath  string
	clusterName string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "knot",
		Short:         "Keyboard-driven task manager",
		Long:          "knot is a keyboard-driven task manager with clusters, subtasks, due dates and priorities.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			name := clusterName
			if name == "" {
				name = cfg.DefaultCluster
			}
			return ui.Run(store, cfg, name)
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.Flags().StringVarP(&clusterName, "cluster", "c", "", "cluster to open")
	cmd.AddCommand(lsCmd())
	return cmd
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.List()
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Println("No clusters found")
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	return config.LoadOrCreate(path)
}
