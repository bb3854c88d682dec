package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RivenKid69/crm-sales-bot/internal/bot"
	"github.com/RivenKid69/crm-sales-bot/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive diagnostic session",
		Long:  "Run an interactive session against the dialogue engine. Each turn prints the engine result (intent, state, slots, facts). Commands: /status, /reset, /quit.",
		Run:   runChat,
	}

	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer logger.Sync()

	retriever := openRetriever(cmd.Context(), logger)
	engine := bot.New(retriever, logger)
	session := model.NewSession()

	fmt.Printf("session %s started (state: %s). /status /reset /quit\n", session.ID, session.State)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return
		case "/reset":
			session.Reset()
			fmt.Printf("session reset (state: %s)\n", session.State)
			continue
		case "/status":
			printJSON(session.Status())
			continue
		}

		res, err := engine.Process(cmd.Context(), session, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printTurn(res)

		if res.Final {
			fmt.Printf("conversation finished in %s\n", res.State)
		}
	}
}

func printTurn(res *bot.TurnResult) {
	if formatFlag == "json" {
		printJSON(res)
		return
	}

	fmt.Printf("intent=%s (%.2f, %s)  %s -> %s  action=%s\n",
		res.Intent, res.Confidence, res.Method, res.PrevState, res.State, res.Action)
	if len(res.Slots) > 0 {
		fmt.Printf("slots: %v\n", res.Slots)
	}
	if len(res.Missing) > 0 {
		fmt.Printf("missing: %s\n", strings.Join(res.Missing, ", "))
	}
	for _, f := range res.Facts {
		fmt.Printf("fact [%s/%s]: %s\n", f.Category, f.Topic, f.Text)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
