package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"librarydesk/internal/auth"
	"librarydesk/internal/service"
)

var (
	userAdmin bool
	userPhone string
	userEmail string
)

// useraddCmd registers a user from the terminal
var useraddCmd = &cobra.Command{
	Use:   "useradd <username>",
	Short: "Register a user or librarian",
	Long: `Register a user. The password is read from the terminal without echo.

Examples:
  libraryctl useradd alice
  libraryctl useradd --admin bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}

		e, err := openEnv(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer e.Close()

		reg := service.Registration{
			Username: args[0],
			Password: password,
			Phone:    userPhone,
			Email:    userEmail,
		}
		if userAdmin {
			reg.AdminCode = e.cfg.AdminSecretCode
		}

		authService := service.NewAuthService(
			e.store.Users(),
			auth.NewBcryptHasher(e.cfg.BcryptCost),
			auth.NewJWTService(e.cfg.JWTSecret),
			auth.NewTokenStore(e.cache),
			e.cfg.AdminSecretCode,
			service.PolicyFromConfig(e.cfg),
		)
		user, err := authService.Register(cmd.Context(), reg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (role=%s, max_borrow=%d)\n", user.Username, user.Role, user.MaxBorrow)
		return nil
	},
}

func init() {
	useraddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Register as librarian")
	useraddCmd.Flags().StringVar(&userPhone, "phone", "", "Phone number")
	useraddCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	rootCmd.AddCommand(useraddCmd)
}

// readPassword reads a password with masking when stdin is a terminal.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return strings.TrimSpace(string(bytePassword)), nil
}
