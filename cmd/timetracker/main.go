package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/model"
)

var Version = "dev"

func main() {
	log.SetFlags(0)
	log.SetPrefix("timetracker: ")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timetracker",
		Short:         "Track time on tasks and reconcile it with Jira worklogs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", model.DefaultConfigPath(), "Path to the config file")
	root.PersistentFlags().BoolP("yes", "y", false, "Answer yes to every confirmation")

	root.AddCommand(addCmd())
	root.AddCommand(editCmd())
	root.AddCommand(listCmd())
	root.AddCommand(showCmd())
	root.AddCommand(deleteCmd())
	root.AddCommand(startCmd())
	root.AddCommand(pauseCmd())
	root.AddCommand(doneCmd())
	root.AddCommand(reopenCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(commentCmd())
	root.AddCommand(syncCmd())
	root.AddCommand(testConnectionCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(settingsCmd())
	root.AddCommand(configCmd())
	root.AddCommand(uiCmd())

	return root
}
