package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/config"
	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/adapters/file"
	"github.com/aretw0/hostline/pkg/adapters/memory"
	"github.com/aretw0/hostline/pkg/adapters/redis"
	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/chat"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/persistence/middleware"
	"github.com/aretw0/hostline/pkg/ports"
)

// app carries what every command needs: configuration, a logger and the
// static restaurant data.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	kb        *knowledge.Base
	responder *chat.Responder
}

func newApp(cmd *cobra.Command, format logging.Format) (*app, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("templates"); v != "" {
		cfg.TemplateDir = v
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, logging.WithFormat(format))

	responder, err := chat.New()
	if err != nil {
		return nil, err
	}
	kb, err := knowledge.Load(knowledge.WithMaxTokens(cfg.MaxTokens), knowledge.WithPredefined(responder))
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, kb: kb, responder: responder}, nil
}

func (a *app) engine(ctx context.Context, hooks domain.LifecycleHooks) (*hostline.Engine, error) {
	return hostline.New(ctx,
		hostline.WithLogger(a.logger),
		hostline.WithKnowledge(a.kb),
		hostline.WithTemplateDir(a.cfg.TemplateDir),
		hostline.WithLifecycleHooks(hooks),
		hostline.WithMaxInputBytes(a.cfg.MaxInputBytes),
	)
}

// store returns the conversation store: Redis when REDIS_ADDR is set, a
// directory of JSON files when SESSION_DIR is set, memory otherwise. The
// locker is nil unless Redis is used. Encryption and PII masking wrap
// whichever backend is chosen.
func (a *app) store(ctx context.Context) (ports.ConversationStore, ports.DistributedLocker, func() error, error) {
	var (
		backend ports.ConversationStore
		locker  ports.DistributedLocker
		closer  = func() error { return nil }
	)
	switch {
	case a.cfg.RedisAddr != "":
		st := redis.New(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, redis.WithTTL(a.cfg.SessionTTL))
		if err := st.Ping(ctx); err != nil {
			_ = st.Close()
			return nil, nil, nil, fmt.Errorf("redis %s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Info("using redis conversation store", "addr", a.cfg.RedisAddr, "ttl", a.cfg.SessionTTL)
		backend, locker, closer = st, redis.NewLocker(st.Client(), redis.DefaultPrefix), st.Close
	case a.cfg.SessionDir != "":
		a.logger.Info("using file conversation store", "dir", a.cfg.SessionDir)
		backend = file.New(a.cfg.SessionDir)
	default:
		a.logger.Info("using in-memory conversation store")
		backend = memory.NewStore()
	}

	mws, err := a.storeMiddleware()
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	return middleware.Chain(backend, mws...), locker, closer, nil
}

func (a *app) storeMiddleware() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if a.cfg.MaskPII || len(a.cfg.MaskSlots) > 0 {
		pii, err := middleware.NewPIIMiddleware(a.cfg.MaskSlots)
		if err != nil {
			return nil, fmt.Errorf("SESSION_MASK_SLOTS: %w", err)
		}
		mws = append(mws, pii)
		a.logger.Info("masking caller details in stored conversations", "slots", a.cfg.MaskSlots)
	}
	if a.cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(a.cfg.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("SESSION_ENCRYPTION_KEY: %w", err)
		}
		ec := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range a.cfg.FallbackKeys {
			b, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("SESSION_ENCRYPTION_FALLBACK_KEYS: %w", err)
			}
			ec.FallbackKeys = append(ec.FallbackKeys, b)
		}
		enc, err := middleware.NewEncryptionMiddleware(ec)
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
		a.logger.Info("encrypting stored conversations", "fallback_keys", len(ec.FallbackKeys))
	}
	return mws, nil
}

// callLogger writes to Google Sheets when configured. Without a sheet every
// write reports "not configured" and the call is only logged locally.
func (a *app) callLogger(ctx context.Context, opts ...calllog.Option) (*calllog.Logger, error) {
	opts = append([]calllog.Option{calllog.WithLogger(a.logger)}, opts...)
	if !a.cfg.SheetsEnabled() {
		a.logger.Warn("call log sheet not configured; set GOOGLE_SHEET_ID and credentials")
		return calllog.NewLogger(nil, opts...), nil
	}

	sc := calllog.SheetsConfig{
		SpreadsheetID:       a.cfg.SheetID,
		ServiceAccountEmail: a.cfg.ServiceAccountEmail,
		PrivateKey:          a.cfg.PrivateKey,
	}
	if a.cfg.CredentialsFile != "" {
		b, err := os.ReadFile(a.cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		sc.CredentialsJSON = b
	}
	sink, err := calllog.NewSheetsSink(ctx, sc)
	if err != nil {
		return nil, err
	}
	return calllog.NewLogger(sink, opts...), nil
}
