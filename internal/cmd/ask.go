package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johanfleming/hansel/internal/advisor"
	"github.com/johanfleming/hansel/internal/config"
	"github.com/johanfleming/hansel/internal/logging"
	"github.com/johanfleming/hansel/internal/transcript"
	"github.com/johanfleming/hansel/internal/tui"
)

var askNoContext bool

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the advisor a one-off question",
	Long: `Send a question straight to the advisor, outside any supervised
session. The tail of the transcript is included as context so the advisor
sees what the last session was doing; --no-context sends the bare question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askNoContext, "no-context", false, "omit transcript context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if cfg.Advisor.APIKey == "" {
		return fmt.Errorf("no advisor API key: set OPENAI_API_KEY or advisor.api_key in %s", config.ConfigFile())
	}

	question := strings.Join(args, " ")

	var recent []string
	if !askNoContext {
		store := transcript.New(cfg.Paths.BufferFile(), logging.NopLogger())
		tail, err := store.Tail(cfg.Session.BufferTrimLines)
		if err != nil {
			return fmt.Errorf("reading transcript: %w", err)
		}
		recent = tail
	}

	client := advisor.New(advisor.Options{
		APIKey:          cfg.Advisor.APIKey,
		Model:           cfg.Advisor.Model,
		Endpoint:        cfg.Advisor.Endpoint,
		SystemPrompt:    loadSystemPrompt(cfg),
		Temperature:     cfg.Advisor.Temperature,
		MaxAnswerTokens: cfg.Advisor.MaxAnswerTokens,
		MaxMenuTokens:   cfg.Advisor.MaxMenuTokens,
	})

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Advisor.RequestTimeout())
	defer cancel()

	answer, err := client.Consult(ctx, question, recent)
	if err != nil {
		return fmt.Errorf("consulting advisor: %w", err)
	}

	fmt.Println(tui.AdviceStyle.Render(answer))
	return nil
}
