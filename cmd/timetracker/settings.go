package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/timetracker/internal/credential"
	"github.com/nhle/timetracker/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the Jira credentials",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the stored Jira settings with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			s, err := e.settings(cmd.Context())
			if err != nil {
				return err
			}
			s = s.Redacted()
			fmt.Fprintf(e.out, "URL:   %s\nEmail: %s\nToken: %s\n", s.JiraURL, s.JiraEmail, s.JiraToken)
			return nil
		},
	})

	set := &cobra.Command{
		Use:   "set",
		Short: "Store Jira credentials (prompts for any not given as flags)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			ctx := cmd.Context()
			s, err := e.settings(ctx)
			if err != nil {
				return err
			}

			url, _ := cmd.Flags().GetString("url")
			email, _ := cmd.Flags().GetString("email")
			token, _ := cmd.Flags().GetString("token")
			if url != "" {
				s.JiraURL = url
			}
			if email != "" {
				s.JiraEmail = email
			}
			if token != "" {
				s.JiraToken = token
			}

			if url == "" || email == "" || token == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Jira URL").Placeholder("https://your-domain.atlassian.net").Value(&s.JiraURL),
					huh.NewInput().Title("Email").Value(&s.JiraEmail),
					huh.NewInput().Title("API token").EchoMode(huh.EchoModePassword).Value(&s.JiraToken),
				))
				if err := form.Run(); err != nil {
					return err
				}
			}

			if e.cfg.Sync.UseKeyring {
				ring, err := credential.Open()
				if err != nil {
					return err
				}
				if s, err = ring.StashToken(s); err != nil {
					return err
				}
			}

			if err := e.tasks.SaveSettings(ctx, s); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Settings saved.")
			return nil
		},
	}
	set.Flags().String("url", "", "Jira base URL")
	set.Flags().String("email", "", "Jira account email")
	set.Flags().String("token", "", "Jira API token")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored Jira credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if !e.confirm("Remove the stored Jira credentials?") {
				return nil
			}
			if e.cfg.Sync.UseKeyring {
				if ring, err := credential.Open(); err == nil {
					if err := ring.Delete(credential.TokenKey); err != nil {
						return err
					}
				}
			}
			return e.tasks.ClearSettings(cmd.Context())
		},
	})

	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := model.SaveConfig(path, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}
