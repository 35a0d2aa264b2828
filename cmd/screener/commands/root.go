package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "Fundamentus value screener",
	Long: `Value Screener CLI

fundamentus 결과 테이블을 내려받아 정규화 → 필터 → 랭킹 → 상위 N개 출력.

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --top 20 --out result.csv
  go run ./cmd/screener strategy validate config/strategy/fundamentus_default.yaml
  go run ./cmd/screener api
  go run ./cmd/screener scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default is STRATEGY_FILE or built-in)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
