// Package chatcmder provides the chat command for interactive terminal chat
// against the configured inference backend.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hallwaylabs/parley/pkg/backend"
	"github.com/hallwaylabs/parley/pkg/backend/huggingface"
	"github.com/hallwaylabs/parley/pkg/backend/ollama"
	"github.com/hallwaylabs/parley/pkg/chat"
	"github.com/hallwaylabs/parley/pkg/cliui"
	"github.com/hallwaylabs/parley/pkg/config"
	"github.com/hallwaylabs/parley/pkg/logger"
)

const chatLongDesc string = `Start an interactive chat session in the terminal.

Messages go to the configured inference backend; the conversation log lives
in memory for the duration of the session. "/clear" resets the conversation,
"/exit" or Ctrl+D quits.

Examples:
  parley chat
  parley chat --model mistral:7b
  parley chat --backend huggingface`

const chatShortDesc string = "Interactive chat in the terminal"

type chatCommander struct {
	backendKind string
	hfURL       string
	ollamaHost  string
	model       string
	debug       bool

	logger *zap.Logger
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfg, err := config.Load(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
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
			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.backendKind, "backend", "b", defaults.Backend.Kind, "Inference backend (huggingface, ollama)")
	cmd.Flags().StringVar(&cmder.hfURL, "hf-url", defaults.HuggingFace.URL, "Hosted inference API model URL")
	cmd.Flags().StringVar(&cmder.ollamaHost, "ollama-host", defaults.Ollama.Host, "Ollama host name")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", defaults.Ollama.Model, "Ollama model to chat with")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	b, err := c.createBackend()
	if err != nil {
		return err
	}

	fmt.Println()
	c.printBackendInfo(ctx, b)
	fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /clear resets, /exit or Ctrl+D quits."))

	log := chat.NewLog()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(cliui.UserPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}
		if input == "/clear" {
			log.Clear()
			fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Conversation cleared."))
			continue
		}

		log.Append(chat.RoleUser, input)

		// Blocks until the backend answers or its retry budget runs out;
		// either way the result is conversation content.
		reply := backend.Reply(ctx, b, input)
		log.Append(chat.RoleAssistant, reply)

		fmt.Print(cliui.AssistantPrompt)
		fmt.Println(strings.TrimSpace(cliui.RenderMarkdown(reply)))
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

// printBackendInfo shows the sidebar equivalent for the terminal: backend
// name, reachability, and the active model.
func (c *chatCommander) printBackendInfo(ctx context.Context, b backend.Backend) {
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Backend:"), cliui.NameStyle.Render(b.Name()))

	if oc, ok := b.(*ollama.Client); ok {
		st := oc.Status(ctx)
		mark := cliui.StatusMark(st.State == ollama.StateReady)
		switch st.State {
		case ollama.StateReady:
			fmt.Printf("  %s Online %s\n",
				mark,
				cliui.DimStyle.Render(fmt.Sprintf("(%d models)", len(st.Models))),
			)
			fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.NameStyle.Render(c.model))
		case ollama.StateNoModels:
			fmt.Printf("  %s Online, but no models are installed. Try: ollama pull %s\n",
				mark, ollama.DefaultModel)
		case ollama.StateUnreachable:
			fmt.Printf("  %s Offline. Make sure Ollama is running (ollama serve).\n", mark)
		}
		return
	}

	fmt.Printf("  %s Online\n", cliui.StatusMark(true))
}

// createBackend builds the configured inference backend.
func (c *chatCommander) createBackend() (backend.Backend, error) {
	switch c.backendKind {
	case "huggingface":
		return huggingface.New(huggingface.Config{URL: c.hfURL}, c.logger), nil
	case "ollama":
		return ollama.New(ollama.Config{Host: c.ollamaHost, Model: c.model}, c.logger), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want huggingface or ollama)", c.backendKind)
	}
}
