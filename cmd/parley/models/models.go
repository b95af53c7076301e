// Package modelscmder provides the models command that lists the models
// available on the local inference server.
package modelscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hallwaylabs/parley/pkg/backend/ollama"
	"github.com/hallwaylabs/parley/pkg/cliui"
	"github.com/hallwaylabs/parley/pkg/config"
	"github.com/hallwaylabs/parley/pkg/logger"
)

const modelsLongDesc string = `List models available on the local inference server.

Probes the Ollama listing endpoint and prints the installed model names.
An unreachable server is reported as offline, not as an error.

Examples:
  parley models
  OLLAMA_HOST=ollama.internal parley models`

const modelsShortDesc string = "List local inference server models"

type modelsCommander struct {
	ollamaHost string
}

func NewModelsCmd() *cobra.Command {
	cmder := &modelsCommander{}

	cmd := &cobra.Command{
		Use:   "models",
		Short: modelsShortDesc,
		Long:  modelsLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("ollama-host") {
				cmder.ollamaHost = cfg.Ollama.Host
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			return cmder.run(cmd, debug)
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVar(&cmder.ollamaHost, "ollama-host", defaults.Ollama.Host, "Ollama host name")

	return cmd
}

func (c *modelsCommander) run(cmd *cobra.Command, debug bool) error {
	log := logger.NewLogger(debug)
	defer func() { _ = log.Sync() }()

	client := ollama.New(ollama.Config{Host: c.ollamaHost}, log)
	st := client.Status(cmd.Context())

	mark := cliui.StatusMark(st.State == ollama.StateReady)
	switch st.State {
	case ollama.StateUnreachable:
		fmt.Printf("%s Ollama is offline at %s\n", mark, c.ollamaHost)
		fmt.Printf("  %s\n", cliui.DimStyle.Render("Start it with: ollama serve"))
	case ollama.StateNoModels:
		fmt.Printf("%s Ollama is online, but no models are installed\n", mark)
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Pull one with: ollama pull %s", ollama.DefaultModel)))
	case ollama.StateReady:
		fmt.Printf("%s Ollama is online %s\n",
			mark,
			cliui.DimStyle.Render(fmt.Sprintf("(%d models)", len(st.Models))),
		)
		for _, name := range st.Models {
			fmt.Printf("  • %s\n", cliui.NameStyle.Render(name))
		}
	}

	return nil
}
