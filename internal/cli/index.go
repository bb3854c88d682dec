package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
	"github.com/RivenKid69/crm-sales-bot/internal/knowledge"
)

func init() {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the embedding index",
		Long:  "Embed every fact in the knowledge base and store the vectors in SQLite. Requires an embedding provider (SALESBOT_EMBED_PROVIDER).",
		Run:   runIndex,
	}

	cmd.Flags().Bool("clear", false, "Drop stored vectors instead of building")

	RootCmd.AddCommand(cmd)
}

func runIndex(cmd *cobra.Command, args []string) {
	clearFlag, _ := cmd.Flags().GetBool("clear")

	idx, err := knowledge.OpenIndex(getDBPath())
	if err != nil {
		exitErr("open index", err)
	}
	defer idx.Close()

	if clearFlag {
		if err := idx.Clear(cmd.Context()); err != nil {
			exitErr("clear index", err)
		}
		fmt.Println("index cleared")
		return
	}

	base := loadBase()
	emb := embedding.NewFromEnv()
	if emb == nil {
		exitErr("index", fmt.Errorf("no embedding provider configured, set SALESBOT_EMBED_PROVIDER"))
	}

	n, err := knowledge.BuildIndex(cmd.Context(), idx, base, emb)
	if err != nil {
		exitErr("build index", err)
	}
	fmt.Printf("indexed %d facts with %s\n", n, emb.Name())
}
