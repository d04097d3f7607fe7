// Command steercore is a headless driver for the Agent Orchestration
// Engine: it wires a Tool Registry, Provider Clients, and a Session
// Actor together and drives one interactive turn-taking loop over
// stdin/stdout.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/BrendanGraham14/steer-sub006/internal/log"
	"github.com/BrendanGraham14/steer-sub006/internal/session"
)

var version = "0.1.0"

func init() {
	_ = godotenv.Load()
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	modelFlag      string
	configFlag     string
	mcpConfigFlag  bool
	planModeFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "steercore",
	Short: "Headless driver for the agent orchestration engine core",
	Long: `steercore drives a single Session Actor over stdin/stdout: type a
message and press Enter to start a turn, /cancel to interrupt an
in-flight turn, /clear to reset the conversation, /model <id> to switch
models, and /compact to summarize conversation history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "claude-sonnet-4-5", "initial model id")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "path to a SessionConfig YAML file")
	rootCmd.Flags().BoolVar(&mcpConfigFlag, "mcp", false, "connect configured MCP servers at startup")
	rootCmd.Flags().BoolVar(&planModeFlag, "plan", false, "start in read-only plan mode")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("steercore version %s\n", version)
	},
}

func runInteractive() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}

	sess, err := newSession(cwd)
	if err != nil {
		return err
	}

	ctx, cancel := newRootContext()
	defer cancel()

	lines := make(chan string)
	go readLines(lines)

	go sess.Run(ctx)

	fmt.Println("steercore ready. Type a message and press Enter; /help for commands.")
	dispatch(sess, lines)
	return nil
}

// readLines streams stdin line by line onto lines, closing it at EOF.
func readLines(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}
