package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/strategyconfig"
	"github.com/wonny/valuescreen/pkg/logger"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "전략 설정 조회/검증",
	Long: `스크리닝 전략 YAML을 조회하거나 검증합니다.

Subcommands:
  show      - 적용될 전략(YAML)과 해시 출력
  validate  - 전략 파일 검증 (오류 시 exit 1)

Example:
  go run ./cmd/screener strategy show
  go run ./cmd/screener strategy show --strategy config/strategy/fundamentus_default.yaml
  go run ./cmd/screener strategy validate config/strategy/fundamentus_default.yaml`,
}

var (
	strategyShowCmd = &cobra.Command{
		Use:   "show",
		Short: "적용될 전략 출력",
		RunE:  showStrategy,
	}

	strategyValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "전략 파일 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  validateStrategy,
	}
)

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyShowCmd)
	strategyCmd.AddCommand(strategyValidateCmd)
}

func showStrategy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strategy, path, err := loadStrategy(cfg, logger.New(cfg))
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return err
	}

	if path == "" {
		path = "(built-in)"
	}
	fmt.Printf("# source: %s\n", path)
	fmt.Printf("# hash:   %s\n", hash)

	return strategyconfig.Encode(os.Stdout, strategy)
}

func validateStrategy(cmd *cobra.Command, args []string) error {
	path := args[0]

	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if err := strategyconfig.Validate(strategy); err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return err
	}

	if _, err := strategy.RankSpec(); err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return err
	}

	warnings := strategyconfig.Warn(strategy)
	if len(warnings) > 0 {
		items := make([]string, 0, len(warnings))
		for _, w := range warnings {
			items = append(items, fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
		PrintWarning(fmt.Sprintf("%d warning(s)", len(warnings)))
		PrintList(items)
		fmt.Println()
	}

	PrintSuccess(fmt.Sprintf("%s is valid (strategy %s v%s)", path, strategy.Meta.StrategyID, strategy.Meta.Version))
	return nil
}
