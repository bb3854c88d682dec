// Package cli implements the salesbot CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
	"github.com/RivenKid69/crm-sales-bot/internal/knowledge"
)

var (
	kbPath     string
	dbPath     string
	formatFlag string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "salesbot",
	Short: "SPIN sales dialogue engine",
	Long:  "Dialogue engine for SPIN-style sales conversations: intent classification, slot extraction, phase state machine, and knowledge retrieval. Structured output only; response generation is up to the caller.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&kbPath, "kb", "k", "", "Knowledge base YAML (default: $SALESBOT_KB or ./data/knowledge.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Embedding index path (default: $SALESBOT_DB or ~/.salesbot/index.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getKBPath() string {
	if kbPath != "" {
		return kbPath
	}
	if env := os.Getenv("SALESBOT_KB"); env != "" {
		return env
	}
	return filepath.Join("data", "knowledge.yaml")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SALESBOT_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".salesbot", "index.db")
}

func newLogger() *zap.Logger {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			exitErr("init logger", err)
		}
		return l
	}
	return zap.NewNop()
}

func loadBase() *knowledge.Base {
	base, err := knowledge.Load(getKBPath())
	if err != nil {
		exitErr("load knowledge base", err)
	}
	return base
}

// openRetriever loads the base, attaches any stored vectors, and wires
// the embedder from the environment. Missing vectors or a missing
// embedder degrade to keyword-only retrieval.
func openRetriever(ctx context.Context, logger *zap.Logger) *knowledge.Retriever {
	base := loadBase()

	emb := embedding.NewFromEnv()
	if emb != nil {
		idx, err := knowledge.OpenIndex(getDBPath())
		if err != nil {
			logger.Warn("embedding index unavailable", zap.Error(err))
		} else {
			defer idx.Close()
			n, err := idx.LoadVectors(ctx, base)
			if err != nil {
				logger.Warn("load vectors", zap.Error(err))
			} else {
				logger.Debug("vectors loaded", zap.Int("count", n))
			}
		}
	}

	return knowledge.NewRetriever(base, emb)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
