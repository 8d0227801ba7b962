package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/metalsim"
	"github.com/etnz/metalsim/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

const assistModel = "gemini-2.5-pro"

const assistInstruction = `You are a precious-metals savings-plan analyst.
You receive the full result of a plan simulation: a summary (invested
capital, nominal and real final value, gain, CAGR, final holdings) and,
when available, the trend allocation audit. Answer the user's questions
about that result in plain language. Be factual about what the numbers
show; never give investment advice or predictions.`

// assistCmd holds the flags for the 'assist' subcommand.
type assistCmd struct {
	configFlags
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "discuss a simulation result with the AI assistant" }
func (*assistCmd) Usage() string {
	return `msim assist -start <date> [flags] [question...]

  Runs a simulation, hands the result to Gemini, and starts an
  interactive session about it. Requires GEMINI_API_KEY. Type 'bye'
  to exit.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) { c.configFlags.SetFlags(f) }

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.Config()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	prices, err := LoadPrices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	inflation, err := LoadInflation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	ledger, err := metalsim.Run(prices, inflation, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running simulation: %v\n", err)
		return subcommands.ExitFailure
	}
	report, err := metalsim.NewReport(ledger, prices)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building report: %v\n", err)
		return subcommands.ExitFailure
	}

	var result strings.Builder
	result.WriteString(renderer.RenderSummary(renderer.NewSummary(report)))
	if cfg.Trend.Enabled {
		result.WriteString("\n")
		result.WriteString(renderer.RenderTrend(renderer.NewTrendTable(ledger)))
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: assistInstruction}}},
	}
	chat, err := client.Chats.Create(ctx, assistModel, config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting chat:", err)
		return subcommands.ExitFailure
	}

	// Hand the simulation result over before the first question.
	if _, err := chat.Send(ctx, &genai.Part{Text: "Here is the simulation result:\n\n" + result.String()}); err != nil {
		fmt.Fprintln(os.Stderr, "Error sending simulation result:", err)
		return subcommands.ExitFailure
	}

	if err := c.repl(ctx, chat, strings.Join(f.Args(), " ")); err != nil {
		fmt.Fprintln(os.Stderr, "Assist failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

const assistPrompt = "assist> "

// repl runs the interactive loop, starting with the initial question
// when one was given on the command line.
func (c *assistCmd) repl(ctx context.Context, chat *genai.Chat, initial string) error {
	fmt.Println("Welcome to msim assist. Type 'bye' to exit.")
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(assistPrompt)
		var input string
		if initial != "" {
			input, initial = initial, ""
			fmt.Println(input)
		} else {
			var err error
			input, err = reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // Clean exit on Ctrl+D
				}
				return err
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "bye" {
			return nil
		}

		resp, err := chat.Send(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no response from the assistant")
		}
		printMarkdown(resp.Candidates[0].Content.Parts[0].Text)
	}
}
