// Package commands provides CLI commands for orbchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/logging"
	"github.com/diogo/orbchat/internal/models"
)

var (
	// Global flags
	modelFlag  string
	outputFlag string
	fileFlag   string
	attachFlag string
	rawFlag    bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "orbchat [prompt]",
	Short: "CLI for the Orb chat backend",
	Long: `orbchat is a command-line client for the Orb chat backend. Responses
stream in as they are generated; thinking models show their reasoning
as collapsible blocks.

Examples:
  orbchat chat                          Start interactive chat
  orbchat config show                   Show settings
  orbchat "What is Go?"                 Send a single query
  orbchat -f prompt.md                  Read prompt from file
  cat prompt.md | orbchat               Read prompt from stdin
  orbchat "Describe this" -a photo.png  Attach a file
  orbchat "Hello" -o response.md        Save response to file`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("orbchat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if fileFlag != "" {
			data, err := os.ReadFile(fileFlag)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			return runQuery(string(data), rawFlag)
		}

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runQuery(string(data), rawFlag)
		}

		if len(args) > 0 {
			return runQuery(args[0], rawFlag)
		}

		// No input, no attachment - show help
		if attachFlag != "" {
			return runQuery("", rawFlag)
		}
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	initLogging()
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (id or name, e.g. thinking)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save response to file")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read prompt from file")
	rootCmd.Flags().StringVarP(&attachFlag, "attach", "a", "", "Path to a file to attach")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the raw response text")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(modelsCmd)
}

func initLogging() {
	cfg, err := config.LoadConfig()
	if err != nil {
		return
	}
	dir, err := config.EnsureConfigDir()
	if err != nil {
		return
	}
	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	_ = logging.Init(dir, level)
}

// getLLM resolves the model from flag or config, with local capability
// overrides applied.
func getLLM(cfg config.Config) models.LLM {
	available := config.ApplyCapabilityOverrides(models.AllLLMs(), cfg.CapabilityOverrides)

	ref := modelFlag
	if ref == "" {
		ref = cfg.DefaultLLM
	}

	for _, llm := range available {
		if llm.ID == ref || llm.Name == ref {
			return llm
		}
	}
	if len(available) > 0 {
		return available[0]
	}
	return models.DefaultLLM
}
