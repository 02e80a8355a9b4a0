package main

import (
	"fmt"
	"os"

	"github.com/safe2go/helpdesk/internal/cli"
	"github.com/safe2go/helpdesk/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "safe2god",
		Short: "Safe2Go helpdesk daemon and CLI",
		Long:  "Safe2Go helpdesk daemon for running the API server and managing user accounts",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.UserCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
