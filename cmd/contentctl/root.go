package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harvestchurch/content-platform/internal/client/session"
	redisdb "github.com/harvestchurch/content-platform/internal/infrastructure/db/redis"
	"github.com/harvestchurch/content-platform/internal/infrastructure/localstore"
	"github.com/harvestchurch/content-platform/internal/pkg/config"
	"github.com/harvestchurch/content-platform/pkg/logger"
)

const redisKeyPrefix = "contentctl:"

// app carries what every subcommand needs once the root pre-run has built
// the session.
type app struct {
	server      string
	credentials string
	redisAddr   string
	logLevel    string

	log     zerolog.Logger
	manager *session.Manager
	session *session.Context
	closers []func() error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "contentctl",
		Short: "Command line client for the content platform",
		Long: `contentctl signs in to the content platform, keeps one credential on this
machine and manages posts and sermons with it. The video and preview
commands run locally and need no account.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.server, "server", "", "server root URL (env CONTENTCTL_SERVER)")
	root.PersistentFlags().StringVar(&a.credentials, "credentials", "", "credential file path (env CONTENTCTL_CREDENTIALS)")
	root.PersistentFlags().StringVar(&a.redisAddr, "redis", "", "keep the credential in this Redis instead of a file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newWhoamiCmd(a),
		newRefreshCmd(a),
		newLogoutCmd(a),
		newCanCmd(a),
		newPinCmd(a),
		newEmbedCmd(),
		newPreviewCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadClient(ctx)
	if err != nil {
		return err
	}
	if a.server == "" {
		a.server = cfg.Server
	}
	if a.credentials == "" {
		a.credentials = cfg.CredentialsPath
	}
	if a.redisAddr == "" {
		a.redisAddr = cfg.RedisAddr
	}
	if a.logLevel == "" {
		a.logLevel = cfg.LogLevel
	}

	a.log = logger.New(logger.Options{Level: a.logLevel, Pretty: true, Output: os.Stderr})

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	a.manager = session.NewManager(session.Config{BaseURL: a.server}, store, a.log)
	a.session = session.NewContext(a.manager, a.log)
	return nil
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if a.redisAddr != "" {
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: a.redisAddr})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.log.Debug().Str("addr", a.redisAddr).Msg("credential kept in redis")
		return redisdb.NewStore(client, redisKeyPrefix, 0), nil
	}

	path := a.credentials
	if path == "" {
		p, err := localstore.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locate credential file: %w", err)
		}
		path = p
	}
	a.log.Debug().Str("path", path).Msg("credential kept in file")
	return localstore.New(path), nil
}

func (a *app) close() error {
	var first error
	for _, fn := range a.closers {
		if err := fn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contentctl %s (%s)\n", version, commit)
		},
	}
}
