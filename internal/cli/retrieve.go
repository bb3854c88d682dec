package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RivenKid69/crm-sales-bot/internal/knowledge"
	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "retrieve [query]",
		Short: "Query the knowledge base",
		Long:  "Run a retrieval query against the knowledge base, optionally scoped to an intent's categories.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRetrieve,
	}

	cmd.Flags().StringP("intent", "i", "", "Intent to narrow categories (e.g. price_question)")
	cmd.Flags().IntP("top", "t", knowledge.DefaultTopK, "Max results")

	RootCmd.AddCommand(cmd)
}

func runRetrieve(cmd *cobra.Command, args []string) {
	intentFlag, _ := cmd.Flags().GetString("intent")
	top, _ := cmd.Flags().GetInt("top")
	query := strings.Join(args, " ")

	logger := newLogger()
	defer logger.Sync()

	retriever := openRetriever(cmd.Context(), logger)
	retriever.SetTopK(top)

	matches, err := retriever.Retrieve(cmd.Context(), query, model.Intent(intentFlag))
	if err != nil {
		if errors.Is(err, knowledge.ErrIndexNotReady) {
			exitErr("retrieve", fmt.Errorf("%w (run `salesbot index` first)", err))
		}
		exitErr("retrieve", err)
	}

	if formatFlag == "json" {
		printJSON(matches)
		return
	}
	if len(matches) == 0 {
		fmt.Println("no matching facts")
		return
	}
	for _, m := range matches {
		fmt.Printf("%.2f [%s] %s/%s: %s\n", m.Score, m.Method, m.Fact.Category, m.Fact.Topic, m.Fact.Text)
	}
}
