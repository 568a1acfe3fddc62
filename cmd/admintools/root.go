package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/theplant/admintools/bank"
	"github.com/theplant/admintools/config"
	"github.com/theplant/admintools/filter"
	"github.com/theplant/admintools/internal/logging"
	"github.com/theplant/admintools/nft"
	"github.com/theplant/admintools/query"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// app holds the resources of one invocation. Handles are opened on first use
// and released by close.
type app struct {
	cfgFile string
	output  string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *query.Metrics

	db      *gorm.DB
	checks  *bank.Store
	wallet  *nft.Wallet
	closers []func() error
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "admintools",
		Short:        "Back office tools for checks, NFTs, employees, surveys and estimates",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setUp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.reportMetrics()
		},
	}
	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table, json or yaml")

	cmd.AddCommand(
		newBankCmd(a),
		newNFTCmd(a),
		newEmployeeCmd(a),
		newSurveyCmd(a),
		newCalcCmd(a),
	)
	return cmd
}

func (a *app) setUp() error {
	if !lo.Contains([]string{outputTable, outputJSON, outputYAML}, a.output) {
		return errors.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func() error {
		_ = a.logger.Sync()
		return nil
	})

	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = query.NewMetrics(a.registry)
	}
	return nil
}

// close releases handles in reverse opening order.
func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func queryHooks[T any](a *app, collection string) []func(next query.Querier[T]) query.Querier[T] {
	hooks := []func(next query.Querier[T]) query.Querier[T]{
		query.EnsureLimits[T](filter.DefaultLimits),
		query.WithLogger[T](a.logger, collection),
	}
	if a.metrics != nil {
		hooks = append(hooks, query.WithMetrics[T](a.metrics, collection))
	}
	return hooks
}

func (a *app) bankStore(ctx context.Context) (*bank.Store, error) {
	if a.checks != nil {
		return a.checks, nil
	}
	store, err := bank.Open(ctx, a.cfg.Bank.DSN, bank.WithQueryHooks(queryHooks[*bank.Check](a, bank.Schema.Collection)...))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)

	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	existing, err := store.Query(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 && a.cfg.Bank.Checks > 0 {
		seed := a.cfg.Bank.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		if err := store.Seed(ctx, rand.New(rand.NewPCG(seed, seed)), a.cfg.Bank.Checks); err != nil {
			return nil, err
		}
		a.logger.Debug("seeded checks", zap.Int("count", a.cfg.Bank.Checks), zap.Uint64("seed", seed))
	}
	a.checks = store
	return store, nil
}

func (a *app) gormDB() (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.cfg.Postgres.DSN == "" {
		return nil, errors.New("postgres dsn is not configured, set ADMINTOOLS_POSTGRES_DSN or CONNECTION_DB")
	}
	db, err := gorm.Open(postgres.Open(a.cfg.Postgres.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(a.logger),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres handle")
	}
	a.closers = append(a.closers, sqlDB.Close)
	a.db = db
	return db, nil
}

func (a *app) nftWallet() (*nft.Wallet, error) {
	if a.wallet != nil {
		return a.wallet, nil
	}
	client, err := nft.NewClient(a.cfg.Alchemy.APIKey, nft.WithBaseURL(a.cfg.Alchemy.BaseURL))
	if err != nil {
		return nil, err
	}
	spam, err := nft.OpenSpamRegistry(a.cfg.Alchemy.SpamFile)
	if err != nil {
		return nil, err
	}
	a.wallet = nft.NewWallet(client, spam, queryHooks[*nft.NFT](a, nft.Schema.Collection)...)
	return a.wallet, nil
}

// render writes v as json or yaml, or headers and rows as a table.
func (a *app) render(w io.Writer, v any, headers []string, rows [][]string) error {
	switch a.output {
	case outputJSON:
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
		if err != nil {
			return errors.Wrap(err, "marshal json")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "marshal yaml")
		}
		return enc.Close()
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (a *app) reportMetrics() {
	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.logger.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("name", mf.GetName())}
			for _, l := range m.GetLabel() {
				fields = append(fields, zap.String(l.GetName(), l.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields,
					zap.Uint64("count", m.GetHistogram().GetSampleCount()),
					zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			a.logger.Info("metric", fields...)
		}
	}
}
