package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/edgestore/customerstore/api"
	"github.com/go-pg/pg/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func parseDatabase(raw string) (*pg.Options, error) {
	if raw == "" {
		return nil, nil
	}

	return pg.ParseURL(raw)
}

func parseCache(raw string) (*redis.Options, error) {
	if raw == "" {
		return nil, nil
	}

	if !strings.Contains(raw, "://") {
		return &redis.Options{Addr: raw}, nil
	}

	conn, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}

	if conn.Scheme != "redis" && conn.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported cache scheme %q", conn.Scheme)
	}

	return redis.ParseURL(raw)
}

func newConfig() (api.Config, error) {
	cfg := api.DefaultConfig()

	db, err := parseDatabase(viper.GetString("database"))
	if err != nil {
		return cfg, err
	}

	cacheOpts, err := parseCache(viper.GetString("cache"))
	if err != nil {
		return cfg, err
	}

	cfg.Store = viper.GetString("store")
	cfg.Database = db
	cfg.BoltPath = viper.GetString("bolt_path")
	cfg.Compress = viper.GetBool("compress")
	cfg.Cache = cacheOpts
	cfg.CacheExpiration = viper.GetDuration("cache_expiration")
	cfg.SnapshotSize = viper.GetInt("snapshot_size")
	cfg.JWTSecret = viper.GetString("jwt_secret")

	cfg.Server.HTTPPort = viper.GetInt("port")
	cfg.Server.RPCPort = viper.GetInt("rpc_port")
	cfg.Server.LoggerFormat = viper.GetString("log_format")
	cfg.Server.LoggerLevel = viper.GetString("log_level")

	return cfg, nil
}

func commandServe() *cobra.Command {
	var (
		boltPath        string
		cache           string
		cacheExpiration time.Duration
		compress        bool
		database        string
		jwtSecret       string
		logFormat       string
		logLevel        string
		port            int
		rpcPort         int
		snapshotSize    int
		store           string
	)
	cmd := cobra.Command{
		Use:     "serve",
		Short:   "Start HTTP server",
		Example: ShortDescription + " serve --store bolt --bolt-path customers.db",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := newConfig()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}

			if err := serve(cfg); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&store, "store", api.StoreMemory, "Event store (memory, postgres, bolt)")
	viper.BindPFlag("store", cmd.Flags().Lookup("store"))

	cmd.Flags().StringVar(&database, "database", "", "Postgres connection URL")
	viper.BindPFlag("database", cmd.Flags().Lookup("database"))

	cmd.Flags().StringVar(&boltPath, "bolt-path", "customerstore.db", "Bolt database file")
	viper.BindPFlag("bolt_path", cmd.Flags().Lookup("bolt-path"))

	cmd.Flags().BoolVar(&compress, "compress", true, "Snappy compress stored events")
	viper.BindPFlag("compress", cmd.Flags().Lookup("compress"))

	cmd.Flags().StringVar(&cache, "cache", "", "Redis address or URL (in-memory cache when empty)")
	viper.BindPFlag("cache", cmd.Flags().Lookup("cache"))

	cmd.Flags().DurationVar(&cacheExpiration, "cache-expiration", 0, "Read model expiration (0 never expires)")
	viper.BindPFlag("cache_expiration", cmd.Flags().Lookup("cache-expiration"))

	cmd.Flags().IntVar(&snapshotSize, "snapshot-size", 1024, "Number of customer snapshots kept in memory")
	viper.BindPFlag("snapshot_size", cmd.Flags().Lookup("snapshot-size"))

	cmd.Flags().StringVar(&jwtSecret, "jwt-secret", "", "HS256 secret for bearer tokens (tenant header when empty)")
	viper.BindPFlag("jwt_secret", cmd.Flags().Lookup("jwt-secret"))

	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Logger format")
	viper.BindPFlag("log_format", cmd.Flags().Lookup("log-format"))

	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Logger level")
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	viper.BindPFlag("port", cmd.Flags().Lookup("port"))

	cmd.Flags().IntVar(&rpcPort, "rpc-port", 8081, "gRPC health port (0 disables)")
	viper.BindPFlag("rpc_port", cmd.Flags().Lookup("rpc-port"))

	return &cmd
}

func serve(cfg api.Config) error {
	svc, err := api.New(cfg)
	if err != nil {
		return err
	}

	return svc.Run()
}
