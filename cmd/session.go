package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkarpinos/shorty/internal/session"
)

// Register command
var registerCmd = &cobra.Command{
	Use:     "register",
	Short:   "Register this client and store the session",
	Args:    cobra.NoArgs,
	PreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var d session.Details
		d.Name, _ = flags.GetString("name")
		d.Email, _ = flags.GetString("email")
		d.RollNo, _ = flags.GetString("roll-no")
		d.MobileNo, _ = flags.GetString("mobile")
		d.GithubUsername, _ = flags.GetString("github")
		d.AccessCode, _ = flags.GetString("access-code")

		fmt.Println("Registering...")
		s, err := shorty.Sessions.Register(cmd.Context(), d)
		if err != nil {
			return err
		}

		fmt.Printf("Registered %s <%s>\n", s.Name, s.Email)
		fmt.Printf("Client ID: %s\n", s.ClientID)
		fmt.Printf("API token: %s\n", s.Token)
		return nil
	},
}

// Logout command
var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Reset the registration",
	Args:    cobra.NoArgs,
	PreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := shorty.Sessions.Clear(); err != nil {
			return err
		}
		fmt.Println("Registration cleared.")
		return nil
	},
}

// Whoami command
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the registered session",
	Args:    cobra.NoArgs,
	PreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := shorty.Sessions.Current()
		if errors.Is(err, session.ErrUnregistered) {
			fmt.Println("Not registered.")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("Name:       %s\n", s.Name)
		fmt.Printf("Email:      %s\n", s.Email)
		fmt.Printf("Roll no:    %s\n", s.RollNo)
		fmt.Printf("Client ID:  %s\n", s.ClientID)
		fmt.Printf("Registered: %s\n", s.IssuedAt.Local().Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Full name")
	registerCmd.Flags().String("email", "", "Email address")
	registerCmd.Flags().String("roll-no", "", "Roll number")
	registerCmd.Flags().String("mobile", "", "Mobile number")
	registerCmd.Flags().String("github", "", "GitHub username")
	registerCmd.Flags().String("access-code", "", "Access code")
}
