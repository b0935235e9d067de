// Package chat implements the interactive planning REPL.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"planpilot/internal/llm"
	"planpilot/internal/utils"
	"planpilot/pkg/collaborators"
	"planpilot/pkg/database"
	"planpilot/pkg/logger"
	"planpilot/pkg/orchestrator"
	"planpilot/pkg/registry"
)

var (
	planMode  string
	userID    string
	sessionID string
	watch     bool
)

// ChatCmd is the interactive planning conversation.
var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive planning conversation",
	Long: `Starts a terminal conversation that gathers what you want to plan,
asks clarifying questions, and saves the confirmed plan as an activity
with ordered tasks.`,
	RunE: runChat,
}

func init() {
	ChatCmd.Flags().StringVar(&planMode, "mode", "quick", "question depth (quick, detailed)")
	ChatCmd.Flags().StringVar(&userID, "user", "local", "user id to attribute activities to")
	ChatCmd.Flags().StringVar(&sessionID, "session", "", "resume a stored session by id")
	ChatCmd.Flags().BoolVar(&watch, "watch", false, "hot-reload the domain catalog on file change")
}

func runChat(cmd *cobra.Command, args []string) error {
	log := buildLogger()
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg, err := loadRegistry(ctx, log)
	if err != nil {
		return err
	}

	store, err := database.NewSQLiteDB(viper.GetString("db"), log)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	model, err := llm.New(llm.Config{
		Provider:  llm.ParseProvider(viper.GetString("provider")),
		ModelID:   viper.GetString("model"),
		ServerURL: viper.GetString("ollama-url"),
		Logger:    log,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	orch := orchestrator.New(reg, store, orchestrator.Collaborators{
		Classifier:  collaborators.NewLLMDomainClassifier(model, reg, log),
		Inferencer:  collaborators.NewLLMIntentInferencer(model, reg, log),
		Questions:   collaborators.NewLLMQuestionGenerator(model, reg, log),
		GapNLU:      collaborators.NewLLMGapNLU(model, log),
		Enricher:    collaborators.NewLLMEnrichmentGateway(model, log),
		Synthesizer: collaborators.NewLLMPlanSynthesizer(model, log),
	}, orchestrator.Config{}, log)

	session, err := resolveSession(ctx, store)
	if err != nil {
		return err
	}

	fmt.Println("planpilot — tell me what you'd like to plan. Type \"exit\" to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		resp, err := orch.HandleTurn(ctx, session, input)
		if err != nil {
			return fmt.Errorf("conversation turn failed: %w", err)
		}

		printResponse(resp)
		saveSession(ctx, store, session, log)

		if resp.Phase == orchestrator.PhaseConfirmed {
			fmt.Println("\nAll set. See you next time!")
			break
		}
	}

	return scanner.Err()
}

func buildLogger() logger.Logger {
	log, err := logger.CreateLogger(
		viper.GetString("log-file"),
		viper.GetString("log-level"),
		viper.GetString("log-format"),
		false,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v, using defaults\n", err)
		return logger.CreateDefaultLogger()
	}
	return log
}

func loadRegistry(ctx context.Context, log utils.ExtendedLogger) (*registry.Registry, error) {
	catalog := viper.GetString("catalog")
	if catalog == "" {
		return registry.Builtin(log), nil
	}

	reg, err := registry.LoadFile(log, catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain catalog: %w", err)
	}
	if watch {
		go func() {
			if err := reg.Watch(ctx); err != nil {
				log.WithError(err).Warn("catalog watcher stopped")
			}
		}()
	}
	return reg, nil
}

func resolveSession(ctx context.Context, store database.Storage) (*orchestrator.Session, error) {
	mode := registry.ParsePlanMode(planMode)
	if sessionID == "" {
		return orchestrator.NewSession(userID, mode), nil
	}

	rec, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session %s: %w", sessionID, err)
	}
	session, err := orchestrator.SessionFromRecord(rec)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Resumed session %s (phase: %s)\n", session.ID, session.Phase)
	return session, nil
}

func saveSession(ctx context.Context, store database.Storage, session *orchestrator.Session, log utils.ExtendedLogger) {
	rec, err := session.ToRecord()
	if err == nil {
		err = store.SaveSession(ctx, rec)
	}
	if err != nil {
		// A failed snapshot loses resumability, not the running conversation.
		log.WithError(err).Warnf("failed to snapshot session %s", session.ID)
	}
}

func printResponse(resp *orchestrator.TurnResponse) {
	fmt.Printf("\nplanpilot> %s\n", resp.Message)

	if resp.Progress != nil && resp.Phase == orchestrator.PhaseGathering {
		fmt.Printf("  [%d/%d answered, %d%%]\n", resp.Progress.Answered, resp.Progress.Total, resp.Progress.Percentage)
		for _, chip := range resp.ContextChips {
			if chip.Filled {
				fmt.Printf("  ✓ %s: %s\n", chip.SlotPath, chip.Value)
			}
		}
	}
	fmt.Println()
}
