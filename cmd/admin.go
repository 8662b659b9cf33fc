package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"travel-admin/models"
	"travel-admin/validators"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new admin account",
		Example: `  travel-admin admin create --email sarah@acme.co --name "Sarah Jones" --password secret
  travel-admin admin create --email sarah@acme.co --name "Sarah Jones"  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := promptPassword(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = p
			}
			return runAdminCreate(cmd.Context(), cmd.OutOrStdout(), validators.CreateAdminRequest{
				Email:    email,
				Name:     name,
				Password: password,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&name, "name", "", "Admin display name (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("name")

	return cmd
}

func promptPassword(out io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}

	fmt.Fprint(out, "Password: ")
	pw, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, "Confirm password: ")
	confirm, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Fprintln(out)

	if string(pw) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pw), nil
}

func runAdminCreate(ctx context.Context, out io.Writer, req validators.CreateAdminRequest) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	admin, err := a.accounts.CreateAdmin(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created admin %q (id %d)\n", admin.Email, admin.ID)
	return nil
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List admin accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, log, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			admins, err := a.accounts.ListAdmins(ctx)
			if err != nil {
				return err
			}
			return printAdmins(cmd.OutOrStdout(), admins, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func printAdmins(out io.Writer, admins []models.PublicAdmin, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(admins)
	}

	if len(admins) == 0 {
		fmt.Fprintln(out, "No admin accounts. Use 'travel-admin admin create' to create one.")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-32s %-24s\n", "ID", "EMAIL", "NAME")
	fmt.Fprintf(out, "%-6s %-32s %-24s\n", "--", "-----", "----")
	for _, a := range admins {
		fmt.Fprintf(out, "%-6d %-32s %-24s\n", a.ID, a.Email, a.Name)
	}
	return nil
}
