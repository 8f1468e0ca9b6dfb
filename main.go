package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bomt1me/paris/cmd"
	"github.com/bomt1me/paris/pkg/log"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paris",
		Short: "Provision object-storage buckets and upload files through a worker pool",
	}

	uploadCmd, err := cmd.CreateUploadCommand()
	if err != nil {
		log.Errorf("unable to create upload command: %v", err)
		os.Exit(1)
	}
	bootstrapCmd, err := cmd.CreateBootstrapCommand()
	if err != nil {
		log.Errorf("unable to create bootstrap command: %v", err)
		os.Exit(1)
	}
	countManifestCmd, err := cmd.CreateCountManifestCommand()
	if err != nil {
		log.Errorf("unable to create count-manifest command: %v", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(uploadCmd, bootstrapCmd, countManifestCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
