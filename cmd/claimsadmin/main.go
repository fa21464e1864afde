// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command claimsadmin runs administrative claim ledger operations against
// the server's database.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/db"
	"github.com/danielhkuo/claim-ledger/store"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the connection flags shared by every subcommand
type globalOptions struct {
	databaseURL  string
	databaseType string
	catalogFile  string
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "claimsadmin",
		Short: "Administer the claim ledger",
		Long: `Administrative operations on the claim ledger database.

Available commands:
  create-user  - Create an ADMINISTRADOR or LIQUIDADOR account
  export       - Write the ledger to an xlsx workbook
  summary      - Print the dashboard summary
  users        - List accounts

The database is selected with --db/--db-type or DATABASE_URL/DATABASE_TYPE.
`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.databaseURL, "db", "d", os.Getenv("DATABASE_URL"), "Database URL")
	cmd.PersistentFlags().StringVarP(&opts.databaseType, "db-type", "t", envOr("DATABASE_TYPE", "sqlite"), "Database type (sqlite or postgres)")
	cmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", os.Getenv("CATALOG_FILE"), "YAML file overriding the status catalog")

	cmd.AddCommand(createUserCmd(opts))
	cmd.AddCommand(exportCmd(opts))
	cmd.AddCommand(summaryCmd(opts))
	cmd.AddCommand(usersCmd(opts))

	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// open connects to the database and makes sure the schema exists
func (o *globalOptions) open() (*sql.DB, *store.Store, error) {
	if o.databaseURL == "" {
		return nil, nil, errors.New("database URL required (use --db or DATABASE_URL env)")
	}
	conn, err := db.Open(o.databaseType, o.databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return conn, store.New(conn), nil
}

func (o *globalOptions) catalog() (catalog.Catalog, error) {
	if o.catalogFile == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFromFile(o.catalogFile)
}
