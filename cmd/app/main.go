// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/privmetrics/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "privmetrics",
		Usage:   "Privacy-preserving analytics service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-master-key",
				Usage: "Generate a new master key for the key hierarchy",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "id",
						Aliases: []string{"i"},
						Value:   "",
						Usage:   "Master key ID (e.g., prod-master-key-2026)",
					},
					&cli.StringFlag{
						Name:  "kms-provider",
						Value: "",
						Usage: "KMS provider (e.g., gcpkms, awskms, azurekeyvault, hashivault, localsecrets)",
					},
					&cli.StringFlag{
						Name:  "kms-key-uri",
						Value: "",
						Usage: "KMS key URI used to wrap the master key",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateMasterKey(
						ctx,
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				},
			},
			{
				Name:  "rotate-token-keys",
				Usage: "Create a new key generation and retire the active one",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"alg"},
						Value:   "aes-gcm",
						Usage:   "Encryption algorithm to use (aes-gcm or chacha20-poly1305)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotateTokenKeys(ctx, cmd.String("algorithm"))
				},
			},
			{
				Name:  "destroy-token-key",
				Usage: "Permanently erase the key material for a generation (crypto-erasure)",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:     "generation",
						Aliases:  []string{"g"},
						Required: true,
						Usage:    "Key generation number to destroy",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDestroyTokenKey(ctx, cmd.Uint("generation"))
				},
			},
			{
				Name:  "verify-audit-chain",
				Usage: "Verify digests and signatures over a range of the audit chain",
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:  "from-seq",
						Value: 1,
						Usage: "First sequence number to verify",
					},
					&cli.Uint64Flag{
						Name:  "to-seq",
						Value: 0,
						Usage: "Last sequence number to verify (0 means end of chain)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyAuditChain(
						ctx,
						commands.DefaultIO().Writer,
						cmd.Uint64("from-seq"),
						cmd.Uint64("to-seq"),
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
