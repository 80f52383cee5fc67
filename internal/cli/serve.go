package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tablelayout/pkg/cache"
	"github.com/matzehuels/tablelayout/pkg/observability"
	"github.com/matzehuels/tablelayout/pkg/pipeline"
	"github.com/matzehuels/tablelayout/pkg/server"
	"github.com/matzehuels/tablelayout/pkg/store"
)

// Environment variables read by the serve command when the matching flag is unset.
const (
	envRedisAddr = "TABLELAYOUT_REDIS_ADDR"
	envMongoURI  = "TABLELAYOUT_MONGO_URI"
	envAddr      = "TABLELAYOUT_ADDR"
)

const defaultServeCacheSize = 1024

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr           string
	redisAddr      string
	redisPrefix    string
	mongoURI       string
	mongoDatabase  string
	storeDir       string
	memoryStore    bool
	cacheSize      int
	maxBodyBytes   int64
	requestTimeout time.Duration
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		cacheSize:      defaultServeCacheSize,
		maxBodyBytes:   server.DefaultMaxBodyBytes,
		requestTimeout: server.DefaultRequestTimeout,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts and rendered artifacts are cached in Redis when --redis (or
TABLELAYOUT_REDIS_ADDR) is set, otherwise in an in-process LRU cache.
Stored programs live in MongoDB when --mongo (or TABLELAYOUT_MONGO_URI) is
set, otherwise as JSON files under --store-dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyEnv()
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+server.DefaultAddr+", env "+envAddr+")")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the shared cache (env "+envRedisAddr+")")
	cmd.Flags().StringVar(&opts.redisPrefix, "redis-prefix", appName+":", "prefix for Redis keys")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for program storage (env "+envMongoURI+")")
	cmd.Flags().StringVar(&opts.mongoDatabase, "mongo-db", store.DefaultMongoDatabase, "MongoDB database name")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "directory for stored programs (default: user config dir)")
	cmd.Flags().BoolVar(&opts.memoryStore, "memory-store", false, "keep stored programs in memory only")
	cmd.Flags().IntVar(&opts.cacheSize, "cache-size", opts.cacheSize, "entries in the in-process cache")
	cmd.Flags().Int64Var(&opts.maxBodyBytes, "max-body", opts.maxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&opts.requestTimeout, "timeout", opts.requestTimeout, "per-request timeout")

	return cmd
}

// applyEnv fills unset options from the environment.
func (o *serveOpts) applyEnv() {
	if o.addr == "" {
		o.addr = os.Getenv(envAddr)
	}
	if o.redisAddr == "" {
		o.redisAddr = os.Getenv(envRedisAddr)
	}
	if o.mongoURI == "" {
		o.mongoURI = os.Getenv(envMongoURI)
	}
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	cc, err := newServeCache(ctx, opts, logger)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(cc, nil, logger)
	defer runner.Close()

	st, err := newServeStore(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	observability.SetHTTPHooks(observability.NewLogHTTPHooks(logger))
	observability.SetImposeHooks(observability.NewLogImposeHooks(logger))
	defer observability.Reset()

	srv := server.New(server.Config{
		Addr:           opts.addr,
		MaxBodyBytes:   opts.maxBodyBytes,
		RequestTimeout: opts.requestTimeout,
	}, runner, st, logger)

	return srv.ListenAndServe(ctx)
}

// newServeCache connects to Redis when configured, otherwise creates an LRU cache.
func newServeCache(ctx context.Context, opts serveOpts, logger *log.Logger) (cache.Cache, error) {
	if opts.redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: opts.redisAddr, Prefix: opts.redisPrefix})
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", opts.redisAddr, err)
		}
		logger.Info("using redis cache", "addr", opts.redisAddr)
		return rc, nil
	}
	logger.Info("using memory cache", "size", opts.cacheSize)
	return cache.NewMemoryCache(opts.cacheSize)
}

// newServeStore opens MongoDB when configured, then falls back to a file
// store, or to memory when asked.
func newServeStore(ctx context.Context, opts serveOpts, logger *log.Logger) (store.Store, error) {
	switch {
	case opts.mongoURI != "":
		ms, err := store.NewMongoStore(ctx, store.MongoOptions{URI: opts.mongoURI, Database: opts.mongoDatabase})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		logger.Info("using mongo store", "database", opts.mongoDatabase)
		return ms, nil
	case opts.memoryStore:
		logger.Info("using memory store")
		return store.NewMemoryStore(), nil
	}
	fs, err := store.NewFileStore(opts.storeDir)
	if err != nil {
		return nil, err
	}
	logger.Info("using file store", "dir", fs.Path())
	return fs, nil
}
