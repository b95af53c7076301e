// Package parleycmder provides the parley root command.
package parleycmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/hallwaylabs/parley/cmd/parley/chat"
	modelscmder "github.com/hallwaylabs/parley/cmd/parley/models"
	servecmder "github.com/hallwaylabs/parley/cmd/parley/serve"
)

const parleyLongDesc string = `Parley is a chat assistant in front of a language-model inference backend.

Run services using:
  parley serve     Run the web chat server
  parley chat      Chat with the backend from the terminal
  parley models    List models available on the local backend`

const parleyShortDesc string = "Parley - AI Chat Assistant"

func NewParleyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parley",
		Short: parleyShortDesc,
		Long:  parleyLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ~/.parley, then the working directory)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(modelscmder.NewModelsCmd())

	return cmd
}
