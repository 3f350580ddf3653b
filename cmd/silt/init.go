package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/silt/internal/platform"
)

var (
	initOwner  string
	initRemote string
)

// initCmd writes a silt.yaml into the current directory.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a workspace in the current directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		path := filepath.Join(cwd, platform.ConfigFile)
		if _, err := os.Stat(path); err == nil {
			fatal("Workspace already initialized", fmt.Errorf("%s exists", path))
		}

		cfg := platform.Config{
			Owner:   initOwner,
			Remote:  initRemote,
			DataDir: platform.DefaultDataDir,
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fatal("Failed to encode config", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fatal("Failed to write config", err)
		}

		fmt.Printf("Initialized workspace for '%s' (remote: %s)\n", initOwner, initRemote)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initOwner, "owner", "", "Owner uid for all documents")
	initCmd.Flags().StringVar(&initRemote, "remote", "", "Remote directory (shared between devices)")
	initCmd.MarkFlagRequired("owner")
	initCmd.MarkFlagRequired("remote")
}
