package main

import (
	"fmt"
	"time"

	"github.com/edgestore/customerstore/api"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func commandToken() *cobra.Command {
	var (
		jwtSecret string
		tenant    string
		ttl       time.Duration
	)
	cmd := cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := jwtSecret
			if secret == "" {
				secret = viper.GetString("jwt_secret")
			}

			if secret == "" {
				return fmt.Errorf("jwt secret is required")
			}

			if tenant == "" {
				return fmt.Errorf("tenant is required")
			}

			token, err := api.NewToken(secret, tenant, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "HS256 secret (defaults to CUSTOMERSTORE_JWT_SECRET)")

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return &cmd
}
