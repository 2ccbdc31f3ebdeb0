package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-yaml"
	chatcore "github.com/lumora-ai/chatcore"
	"github.com/lumora-ai/chatcore/config"
	"github.com/lumora-ai/chatcore/internal/mylog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// serverConfig is the optional YAML config file overlaying the env defaults.
type serverConfig struct {
	Log      *config.LogConfig      `yaml:"log"`
	Database *config.DatabaseConfig `yaml:"database"`
	Chat     *config.ChatConfig     `yaml:"chat"`
}

func newCmd() *cobra.Command {
	params := &struct {
		Port       int
		ConfigFile string
	}{}
	cmd := &cobra.Command{
		Use:   "chatd",
		Short: "Conversation orchestration server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var opts []chatcore.Option
			if params.ConfigFile != "" {
				fileCfg, err := loadServerConfig(params.ConfigFile)
				if err != nil {
					return err
				}
				if fileCfg.Log != nil {
					opts = append(opts, chatcore.WithLogConfig(fileCfg.Log))
				}
				if fileCfg.Database != nil {
					opts = append(opts, chatcore.WithDatabaseConfig(fileCfg.Database))
				}
				if fileCfg.Chat != nil {
					opts = append(opts, chatcore.WithChatConfig(fileCfg.Chat))
				}
			}

			logConfig := config.NewLogConfig()
			if err := logConfig.Resolve(); err != nil {
				return err
			}
			logger := mylog.NewLogger(logConfig.LogLevel, logConfig.LogHandler)
			opts = append(opts, chatcore.WithLogger(logger))

			core, err := chatcore.New(ctx, opts...)
			if err != nil {
				return errors.Wrap(err, "failed to create chat core")
			}
			defer func() {
				if err := core.Close(); err != nil {
					logger.Warn("failed to close chat core", "error", err)
				}
			}()

			server := &http.Server{
				Addr:    fmt.Sprintf(":%d", params.Port),
				Handler: core.Handler(),
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			go func() {
				<-ctx.Done()
				if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.Error("failed to shutdown server", "error", err)
				}
			}()

			logger.Info("server started", "port", params.Port)
			defer logger.Info("server stopped")

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, "failed to serve")
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&params.Port, "port", "p", 8090, "port to listen on")
	cmd.Flags().StringVarP(&params.ConfigFile, "config", "c", "", "path to YAML config file")

	return cmd
}

func loadServerConfig(path string) (*serverConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	var cfg serverConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config file: %s", path)
	}

	return &cfg, nil
}
