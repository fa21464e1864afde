// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Flags fall back to environment variables, then to defaults. CLI flags take
precedence over environment variables. The binaries load a .env file first,
so the same variables can live there during development.

# Settings

	Flag                   Env                    Default
	-p                     PORT                   3318
	-d                     DATABASE_URL           (required)
	-t                     DATABASE_TYPE          sqlite (or postgres)
	-session-secret        SESSION_SECRET         (required, 16+ chars)
	-session-ttl           SESSION_TTL            12h
	-tz                    TIMEZONE               America/Mexico_City
	-filestore             FILESTORE              s3 (or memory)
	-bucket                S3_BUCKET              (required for s3)
	-region                S3_REGION              us-east-1
	-s3-endpoint           S3_ENDPOINT
	-folder-link-base      FOLDER_LINK_BASE
	-max-upload                                   32 MiB
	-redis                 REDIS_URL              (in-process cache when empty)
	-cooldown              DASHBOARD_COOLDOWN     1m
	-smtp-host             SMTP_HOST              (mail is logged when empty)
	-smtp-port             SMTP_PORT              587
	-smtp-user             SMTP_USER
	                       SMTP_PASSWORD
	-mail-from             MAIL_FROM              SMTP_USER
	-app-url               APP_URL
	-catalog               CATALOG_FILE
	-allow-duplicate-claims ENFORCE_UNIQUE_CLAIMS  enforced

The time zone database is embedded, so TIMEZONE resolves on hosts without
zoneinfo files.
*/
package cliparse
