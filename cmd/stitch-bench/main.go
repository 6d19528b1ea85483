package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CaiusDai/whippet-sort/pkg/bench"
	"github.com/CaiusDai/whippet-sort/pkg/column"
	"github.com/CaiusDai/whippet-sort/pkg/storage"
	"github.com/CaiusDai/whippet-sort/pkg/util"
)

var cfgFileName = "whippet.toml"
var defCfgDirs = []string{".", "etc"}

var benchCfg = &util.Config{}

var info = "stitch-bench runs multi-round stitch sort plans over u32 key columns and reports where time goes"

var rootCmd = &cobra.Command{
	Use:          "stitch-bench",
	Short:        "stitch sort timing harness",
	Long:         info,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		applyFlags(cmd)
		return run()
	},
}

func init() {
	cobra.OnInitialize(loadConfig)

	flags := rootCmd.Flags()
	flags.String("out", "", "report file path (required)")
	flags.Int("rows", 0, "rows per column")
	flags.Int("cols", 0, "number of generated columns")
	flags.Float64("card", 0, "cardinality rate in (0,1]")
	flags.Int("runs", 0, "repetitions per plan")
	flags.Int64("seed", 0, "generator seed, 0 means nondeterministic")
	flags.String("profile", "", "workload profile: scatter or centric")
	flags.String("data", "", "load columns from this parquet file instead of generating")
	flags.String("save-data", "", "write the generated columns to this parquet file")
	flags.Bool("verify", false, "verify the final permutation of the last plan")
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func loadConfig() {
	for _, dirPath := range defCfgDirs {
		fpath := filepath.Join(dirPath, cfgFileName)
		if !util.FileIsValid(fpath) {
			continue
		}
		if _, err := toml.DecodeFile(fpath, benchCfg); err != nil {
			util.Error("load config file failed",
				zap.String("fpath", fpath),
				zap.Error(err))
			continue
		}
		util.Info("config loaded", zap.String("fpath", fpath))
		break
	}
}

// applyFlags lets explicit flags override whatever the config file set.
func applyFlags(cmd *cobra.Command) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("out", func() { benchCfg.Bench.Out = viper.GetString("out") })
	set("rows", func() { benchCfg.Bench.Rows = viper.GetInt("rows") })
	set("cols", func() { benchCfg.Bench.Cols = viper.GetInt("cols") })
	set("card", func() { benchCfg.Bench.Card = viper.GetFloat64("card") })
	set("runs", func() { benchCfg.Bench.Runs = viper.GetInt("runs") })
	set("seed", func() { benchCfg.Bench.Seed = viper.GetInt64("seed") })
	set("profile", func() { benchCfg.Bench.Profile = viper.GetString("profile") })
	set("data", func() { benchCfg.Bench.Data = viper.GetString("data") })
	set("save-data", func() { benchCfg.Bench.SaveData = viper.GetString("save-data") })
	set("verify", func() { benchCfg.Bench.Verify = viper.GetBool("verify") })
}

func fillDefaults(cfg *util.BenchOptions) {
	if cfg.Rows <= 0 {
		cfg.Rows = bench.DefaultRows
	}
	if cfg.Cols <= 0 {
		cfg.Cols = bench.DefaultColumns
	}
	if cfg.Card == 0 {
		cfg.Card = bench.DefaultCardinality
	}
	if cfg.Runs <= 0 {
		cfg.Runs = bench.DefaultRuns
	}
}

// profileCard maps the named workloads onto a cardinality rate: scatter
// spreads values over rows/1000 distinct keys, centric packs them into
// about a hundred.
func profileCard(profile string, rows int) (float64, error) {
	switch profile {
	case "":
		return 0, nil
	case "scatter":
		return 0.001, nil
	case "centric":
		card := 100.0 / float64(rows)
		if card > 1 {
			card = 1
		}
		return card, nil
	default:
		return 0, fmt.Errorf("unknown profile %q, want scatter or centric", profile)
	}
}

func buildDataset(cfg *util.BenchOptions) (*column.Dataset, error) {
	if cfg.Data != "" {
		util.Info("loading dataset", zap.String("path", cfg.Data))
		return storage.LoadDataset(cfg.Data)
	}

	card := cfg.Card
	if pc, err := profileCard(cfg.Profile, cfg.Rows); err != nil {
		return nil, err
	} else if pc != 0 {
		card = pc
	}

	gen, err := column.NewGenerator(cfg.Rows, cfg.Cols, card)
	if err != nil {
		return nil, err
	}
	if cfg.Seed != 0 {
		gen.Seed(cfg.Seed)
	}
	util.Info("generating dataset",
		zap.Int("rows", cfg.Rows),
		zap.Int("cols", cfg.Cols),
		zap.Float64("card", card))
	data, err := gen.Generate()
	if err != nil {
		return nil, err
	}

	if cfg.SaveData != "" {
		util.Info("saving dataset", zap.String("path", cfg.SaveData))
		if err = storage.SaveDataset(cfg.SaveData, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// catalogue picks the registered plans: the fixed four-column catalogue
// when the dataset has four columns, otherwise a chunked plan plus a
// one-column-per-round plan covering every column.
func catalogue(columnCount int) []bench.StitchPlan {
	if columnCount == bench.DefaultColumns {
		return bench.DefaultPlans()
	}
	var chunked bench.StitchPlan
	for start := 0; start < columnCount; start += 4 {
		end := min(start+4, columnCount)
		round := make([]int, 0, end-start)
		for c := start; c < end; c++ {
			round = append(round, c)
		}
		chunked = append(chunked, round)
	}
	var single bench.StitchPlan
	for c := 0; c < columnCount; c++ {
		single = append(single, []int{c})
	}
	if columnCount == 1 {
		return []bench.StitchPlan{single}
	}
	return []bench.StitchPlan{chunked, single}
}

func run() error {
	if benchCfg.Debug.LogLevel != "" {
		util.SetLogLevel(benchCfg.Debug.LogLevel)
	}
	fillDefaults(&benchCfg.Bench)
	if benchCfg.Bench.Out == "" {
		return errors.New("--out is required")
	}

	data, err := buildDataset(&benchCfg.Bench)
	if err != nil {
		return err
	}
	if benchCfg.Debug.Summarize {
		for i := 0; i < data.ColumnCount(); i++ {
			sum := column.Summarize(data.Column(i))
			util.Info("column summary",
				zap.Int("column", i),
				zap.Int("rows", sum.Rows),
				zap.Int("distinct", sum.Distinct),
				zap.Uint32("min", sum.Min),
				zap.Uint32("max", sum.Max))
		}
	}

	b, err := bench.NewBenchmark(benchCfg.Bench.Out)
	if err != nil {
		return err
	}
	defer b.Close()

	plans := catalogue(data.ColumnCount())
	b.RegisterPlans(plans)
	if err = b.RegisterData(data); err != nil {
		return err
	}
	if benchCfg.Debug.PrintPlan {
		fmt.Println(b.Describe())
	}

	final, err := b.RunAll(benchCfg.Bench.Runs)
	if err != nil {
		return err
	}

	if benchCfg.Bench.Verify {
		last := plans[len(plans)-1]
		var idxs []int
		for _, round := range last {
			idxs = append(idxs, round...)
		}
		cols, err := data.Select(idxs)
		if err != nil {
			return err
		}
		if !bench.VerifySorted(cols, final) {
			return fmt.Errorf("verification failed for plan %s", last)
		}
		util.Info("verification passed", zap.Stringer("plan", last))
	}

	util.Info("benchmark finished", zap.String("report", benchCfg.Bench.Out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
