package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RivenKid69/crm-sales-bot/internal/model"
	"github.com/RivenKid69/crm-sales-bot/internal/nlu"
)

func init() {
	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify one utterance",
		Long:  "Run the NLU pipeline on a single utterance and print the classification and extracted slots. The --state flag sets the dialogue state the classifier assumes.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runClassify,
	}

	cmd.Flags().StringP("state", "s", string(model.StateGreeting), "Dialogue state to classify against")

	RootCmd.AddCommand(cmd)
}

func runClassify(cmd *cobra.Command, args []string) {
	stateFlag, _ := cmd.Flags().GetString("state")
	state := model.State(stateFlag)
	if !state.IsValid() {
		exitErr("classify", fmt.Errorf("unknown state %q", stateFlag))
	}

	text := strings.Join(args, " ")
	tokens := nlu.Normalize(text)
	slots := nlu.Extract(text)
	cls := nlu.Classify(tokens, state, slots)

	out := struct {
		Tokens     []string           `json:"tokens"`
		Intent     model.Intent       `json:"intent"`
		Confidence float64            `json:"confidence"`
		Tier       int                `json:"tier"`
		Method     string             `json:"method"`
		Slots      map[string]any     `json:"slots,omitempty"`
		Candidates []nlu.ScoredIntent `json:"candidates,omitempty"`
	}{tokens, cls.Intent, cls.Confidence, cls.Tier, cls.Method, slots, cls.Candidates}

	if formatFlag == "json" {
		printJSON(out)
		return
	}
	fmt.Printf("tokens: %s\n", strings.Join(tokens, " "))
	fmt.Printf("intent: %s (%.2f, tier %d, %s)\n", cls.Intent, cls.Confidence, cls.Tier, cls.Method)
	if len(slots) > 0 {
		fmt.Printf("slots: %v\n", slots)
	}
}
