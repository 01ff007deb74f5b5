package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"authportal/internal/cli/config"
	httpclient "authportal/internal/cli/http"
	"authportal/internal/cli/loader"
	"authportal/internal/cli/repl"
	"authportal/internal/cli/session"
	"authportal/internal/cli/state"
	"authportal/pkg/utils/logger"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/authportal.yaml"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("authportal", flag.ContinueOnError)
	configPath := fs.String("config", defaultConfigPath, "Path to config file")
	baseURL := fs.String("base", "", "Override API base URL")
	timeout := fs.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	store := fs.String("store", "", "Override token store driver (file|redis|memory)")
	statePath := fs.String("state", "", "Override token state file path")
	redisAddr := fs.String("redis", "", "Override redis address for the redis token store")
	legacyOrder := fs.Bool("legacy-token-order", false, "Store the login token before checking the HTTP status")
	logLevel := fs.String("log-level", "", "Override log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config failed: %w", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *store != "" {
		cfg.TokenStore.Driver = *store
	}
	if *statePath != "" {
		cfg.TokenStore.Path = *statePath
	}
	if *redisAddr != "" {
		cfg.Redis.Addr = *redisAddr
	}
	if *legacyOrder {
		cfg.TokenStore.PersistBeforeStatus = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Init(cfg.Log); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	storage, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		logger.Error(ctx, "open token store failed", zap.String("driver", cfg.TokenStore.Driver), zap.Error(err))
		return fmt.Errorf("open token store failed: %w", err)
	}
	defer closeStorage()

	tokens := state.NewTokenStore(storage, cfg.TokenStore.Key, cfg.TokenStore.TTL)
	client := httpclient.New(cfg.BaseURL, cfg.Timeout)

	prompter, err := repl.NewLinePrompter(historyPath(cfg))
	if err != nil {
		return fmt.Errorf("open terminal failed: %w", err)
	}
	defer prompter.Close()

	interactive := readline.IsTerminal(int(os.Stdout.Fd()))
	logger.Info(ctx, "authportal started",
		zap.String("base_url", cfg.BaseURL),
		zap.String("token_store", cfg.TokenStore.Driver),
		zap.Bool("persist_before_status", cfg.TokenStore.PersistBeforeStatus),
		zap.Bool("interactive", interactive),
	)
	portal := repl.New(client, session.New(tokens), cfg, prompter, prompter.Stdout(),
		loader.WithAnimation(interactive))
	if err := portal.Run(ctx); err != nil {
		logger.Error(ctx, "repl stopped", zap.Error(err))
		return err
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Config) (state.Storage, func(), error) {
	switch cfg.TokenStore.Driver {
	case config.DriverRedis:
		redisCfg := state.DefaultRedisConfig()
		redisCfg.Addr = cfg.Redis.Addr
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.KeyPrefix = cfg.Redis.KeyPrefix
		redisCfg.DialTimeout = cfg.Redis.Timeout
		redisCfg.ReadTimeout = cfg.Redis.Timeout
		redisCfg.WriteTimeout = cfg.Redis.Timeout
		storage, err := state.NewRedisStorage(redisCfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "using redis token store", zap.String("addr", cfg.Redis.Addr))
		return storage, func() { _ = storage.Close() }, nil
	case config.DriverMemory:
		return state.NewMemoryStorage(), func() {}, nil
	default:
		return state.NewFileStorage(cfg.TokenStore.Path), func() {}, nil
	}
}

func historyPath(cfg config.Config) string {
	return filepath.Join(filepath.Dir(cfg.TokenStore.Path), "authportal_history")
}
