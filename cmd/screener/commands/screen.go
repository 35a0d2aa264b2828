package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/valuescreen/internal/export"
)

var (
	screenTop     int
	screenOut     string
	screenFormat  string
	screenInput   string
	screenNoCache bool
	screenSaveDB  bool
	screenQuiet   bool
)

// screenCmd runs the pipeline once and prints the ranked table
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "스크리닝 1회 실행",
	Long: `fundamentus 결과 테이블을 가져와 필터/랭킹 후 상위 N개를 출력합니다.

Pipeline:
  acquire → normalize → filter → rank → truncate → persist

Examples:
  go run ./cmd/screener screen
  go run ./cmd/screener screen --top 0
  go run ./cmd/screener screen --out result.csv
  go run ./cmd/screener screen --input saved/resultado.html --format json --out result.json
  go run ./cmd/screener screen --save-db`,
	RunE: runScreen,
}

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().IntVarP(&screenTop, "top", "n", 15, "number of rows to keep (<= 0 keeps all)")
	screenCmd.Flags().StringVarP(&screenOut, "out", "o", "", "write the result set to this file")
	screenCmd.Flags().StringVarP(&screenFormat, "format", "f", "", "output file format: csv, json, text (default from --out extension)")
	screenCmd.Flags().StringVar(&screenInput, "input", "", "read a saved results page instead of fetching")
	screenCmd.Flags().BoolVar(&screenNoCache, "no-cache", false, "bypass the Redis snapshot cache")
	screenCmd.Flags().BoolVar(&screenSaveDB, "save-db", false, "store the run in PostgreSQL")
	screenCmd.Flags().BoolVarP(&screenQuiet, "quiet", "q", false, "print only the table")
}

func runScreen(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, appOptions{
		Input:   screenInput,
		NoCache: screenNoCache,
		SaveDB:  screenSaveDB,
		OutPath: screenOut,
		EnvOut:  true,
		Format:  screenFormat,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.outPath

	top := a.defaultTop()
	if cmd.Flags().Changed("top") {
		top = screenTop
	}

	source := a.cfg.Fundamentus.URL
	if screenInput != "" {
		source = screenInput
	}

	config := a.runConfig(top, out != "" || screenSaveDB)
	config.RunID = uuid.NewString()

	if !screenQuiet {
		PrintRunHeader(RunMetadata{
			RunID:      config.RunID,
			StrategyID: config.StrategyID,
			Source:     source,
			Top:        top,
			Timestamp:  time.Now().Format("2006-01-02 15:04:05"),
		})
	}

	result, err := a.orchestrator.Run(ctx, config)
	if err != nil {
		if !screenQuiet {
			PrintError(err.Error())
		}
		return err
	}

	if !screenQuiet {
		PrintRunSummary(result)
		fmt.Println()
	}

	if err := (export.TextExporter{}).Export(os.Stdout, result.Result); err != nil {
		return err
	}

	if out != "" {
		fmt.Printf("saved to %s\n", out)
	}
	if screenSaveDB {
		fmt.Printf("stored run %s\n", result.RunID)
	}

	if !screenQuiet {
		PrintRunCompletion(result.RunID, result.Duration)
	}

	return nil
}
