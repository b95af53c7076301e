// Package servecmder provides the serve command that runs the web chat server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hallwaylabs/parley/pkg/backend"
	"github.com/hallwaylabs/parley/pkg/backend/huggingface"
	"github.com/hallwaylabs/parley/pkg/backend/ollama"
	"github.com/hallwaylabs/parley/pkg/config"
	"github.com/hallwaylabs/parley/pkg/logger"
	"github.com/hallwaylabs/parley/web"
)

const serveLongDesc string = `Run the web chat server.

The server serves the single-page chat interface and its JSON API in front
of one inference backend. Conversation logs are held in memory per browser
session and discarded on restart.

Examples:
  parley serve
  parley serve --listen :8090 --backend ollama
  parley serve --backend huggingface
  OLLAMA_HOST=ollama.internal parley serve`

const serveShortDesc string = "Run the web chat server"

type serveCommander struct {
	listen      string
	backendKind string
	hfURL       string
	ollamaHost  string
	model       string
	debug       bool

	logger *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			// Flags win over config file and environment.
			if !cmd.Flags().Changed("listen") {
				cmder.listen = cfg.Server.Listen
			}
			if !cmd.Flags().Changed("backend") {
				cmder.backendKind = cfg.Backend.Kind
			}
			if !cmd.Flags().Changed("hf-url") {
				cmder.hfURL = cfg.HuggingFace.URL
			}
			if !cmd.Flags().Changed("ollama-host") {
				cmder.ollamaHost = cfg.Ollama.Host
			}
			if !cmd.Flags().Changed("model") {
				cmder.model = cfg.Ollama.Model
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", defaults.Server.Listen, "Address to listen on")
	cmd.Flags().StringVarP(&cmder.backendKind, "backend", "b", defaults.Backend.Kind, "Inference backend (huggingface, ollama)")
	cmd.Flags().StringVar(&cmder.hfURL, "hf-url", defaults.HuggingFace.URL, "Hosted inference API model URL")
	cmd.Flags().StringVar(&cmder.ollamaHost, "ollama-host", defaults.Ollama.Host, "Ollama host name")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Ollama.Model, "Default Ollama model")

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	b, err := c.createBackend()
	if err != nil {
		return err
	}

	server := web.New(web.Config{ListenAddr: c.listen}, b, c.logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("chat server failed: %w", err)
	case sig := <-sigChan:
		c.logger.Info("shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// createBackend builds the configured inference backend.
func (c *serveCommander) createBackend() (backend.Backend, error) {
	switch c.backendKind {
	case "huggingface":
		return huggingface.New(huggingface.Config{URL: c.hfURL}, c.logger), nil
	case "ollama":
		return ollama.New(ollama.Config{Host: c.ollamaHost, Model: c.model}, c.logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want huggingface or ollama)", c.backendKind)
	}
}
