// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/claim-ledger/auth"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/export"
	"github.com/danielhkuo/claim-ledger/models"
	"github.com/danielhkuo/claim-ledger/notify"
	"github.com/danielhkuo/claim-ledger/validate"
)

func createUserCmd(opts *globalOptions) *cobra.Command {
	var req models.CreateUserRequest
	var sendWelcome bool

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account",
		Long: `Create an ADMINISTRADOR or LIQUIDADOR account.

The password may also be passed through CLAIMS_USER_PASSWORD to keep it out
of the shell history. With --notify the welcome email is sent through the
SMTP_* settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("CLAIMS_USER_PASSWORD")
			}
			if err := validate.NewUser(req); err != nil {
				return err
			}

			conn, st, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			hash, err := auth.HashPassword(req.Password)
			if err != nil {
				return err
			}
			user, err := st.CreateUser(cmd.Context(), models.User{
				Username:    req.Email,
				Role:        req.Role,
				HandlerName: strings.ToUpper(strings.TrimSpace(req.Name)),
			}, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s, %s)\n", user.Username, user.Role, user.HandlerName)

			if !sendWelcome {
				return nil
			}
			mailer, loginURL, err := mailSettings()
			if err != nil {
				return fmt.Errorf("account created but mail settings are invalid: %w", err)
			}
			msg, err := notify.WelcomeMessage(notify.Welcome{
				Name:     strings.TrimSpace(req.Name),
				Username: user.Username,
				Role:     user.Role,
				LoginURL: loginURL,
			})
			if err != nil {
				return err
			}
			if err := mailer.Send(cmd.Context(), msg); err != nil {
				return fmt.Errorf("account created but welcome email failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome email sent to %s\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name; upper-cased as the handler name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleHandler, "ADMINISTRADOR or LIQUIDADOR")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password (prefer CLAIMS_USER_PASSWORD)")
	cmd.Flags().BoolVar(&sendWelcome, "notify", false, "Send the welcome email")

	return cmd
}

// mailSettings reads SMTP_*, MAIL_FROM and APP_URL the same way the
// server does
func mailSettings() (notify.Mailer, string, error) {
	var cfg cliparse.Config
	if err := cliparse.LoadMailEnv(&cfg); err != nil {
		return nil, "", err
	}
	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	return mailer, cfg.AppURL, nil
}

func exportCmd(opts *globalOptions) *cobra.Command {
	var viewName, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the ledger to an xlsx workbook",
		Long: `Write the ledger to an xlsx workbook.

Views:
  ledger  - every stored row (Bitacora_Operacion.xlsx)
  latest  - the latest row of each claim (Bitacora_UltimoEstatus.xlsx)
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := export.ParseView(viewName)
			if err != nil {
				return err
			}
			if output == "" {
				output = view.FileName()
			}

			conn, st, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			rows, err := st.AllRecords(cmd.Context())
			if err != nil {
				return err
			}
			rows = view.Rows(rows)

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.Write(f, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			info, err := os.Stat(output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s (%s)\n", len(rows), output, humanize.Bytes(uint64(info.Size())))
			return nil
		},
	}

	cmd.Flags().StringVar(&viewName, "view", string(export.ViewLedger), "ledger or latest")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default depends on the view)")

	return cmd
}

func summaryCmd(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}

			conn, st, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			// always computed fresh; the server cache is not consulted
			svc := dashboard.NewService(st, nil, cat, 0)
			sum, err := svc.Summary(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			return printSummary(out, sum)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the summary as JSON")

	return cmd
}

func printSummary(out io.Writer, sum models.DashboardSummary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Claims\t%d\n", sum.TotalClaims)
	fmt.Fprintf(tw, "Closed\t%d (%d%%)\n", sum.ClosedClaims, sum.ClosedPercent)
	fmt.Fprintf(tw, "Avg business days to close\t%.1f\n", sum.AvgBusinessDays)

	fmt.Fprintln(tw, "\nSTATUS\tCLAIMS")
	for _, b := range sum.ByStatus {
		fmt.Fprintf(tw, "%s\t%d\n", b.Label, b.Total)
	}
	fmt.Fprintln(tw, "\nHANDLER\tCLAIMS")
	for _, b := range sum.ByHandler {
		fmt.Fprintf(tw, "%s\t%d\n", b.Label, b.Total)
	}
	return tw.Flush()
}

func usersCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, st, err := opts.open()
			if err != nil {
				return err
			}
			defer conn.Close()

			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "USERNAME\tROLE\tHANDLER\tCREATED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Username, u.Role, u.HandlerName, humanize.Time(u.CreatedAt))
			}
			return tw.Flush()
		},
	}
}
