package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/RivenKid69/crm-sales-bot/internal/knowledge"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show knowledge base and index statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	base := loadBase()

	byCategory := map[string]int{}
	for _, f := range base.Facts {
		byCategory[f.Category]++
	}

	var idxStats *knowledge.IndexStats
	if idx, err := knowledge.OpenIndex(getDBPath()); err == nil {
		defer idx.Close()
		idxStats, _ = idx.Stats(cmd.Context())
	}

	if formatFlag == "json" {
		printJSON(struct {
			Company    string                `json:"company"`
			Facts      int                   `json:"facts"`
			ByCategory map[string]int        `json:"by_category"`
			Index      *knowledge.IndexStats `json:"index,omitempty"`
		}{base.Company, len(base.Facts), byCategory, idxStats})
		return
	}

	fmt.Printf("company: %s\n", base.Company)
	fmt.Printf("facts: %d\n", len(base.Facts))
	cats := make([]string, 0, len(byCategory))
	for c := range byCategory {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("  %-14s %d\n", c, byCategory[c])
	}
	if idxStats != nil && idxStats.Vectors > 0 {
		fmt.Printf("index: %d vectors, %d dims, %s\n", idxStats.Vectors, idxStats.Dims, idxStats.Provider)
	} else {
		fmt.Println("index: not built")
	}
}
