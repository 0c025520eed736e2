package main

import (
	"net/http"
	"os"
	"strings"

	"github.com/microschoolhq/finance-engine/internal/api"
	"github.com/microschoolhq/finance-engine/internal/checklist"
	"github.com/microschoolhq/finance-engine/internal/config"
	"github.com/microschoolhq/finance-engine/internal/domain"
	"github.com/microschoolhq/finance-engine/internal/forecast"
	"github.com/microschoolhq/finance-engine/internal/logger"
	"github.com/microschoolhq/finance-engine/internal/reconciler"
	"github.com/microschoolhq/finance-engine/internal/repository"
	"github.com/microschoolhq/finance-engine/internal/repository/mysqlstore"
	"github.com/microschoolhq/finance-engine/internal/service"
	"github.com/microschoolhq/finance-engine/internal/suggest"
	"github.com/rs/zerolog"
)

const feedDateFormat = "2006-01-02"

type stores struct {
	txns  domain.TransactionStore
	stmts domain.StatementStore
	steps domain.ChecklistStore
	opps  domain.OpportunityStore
}

func main() {
	cfg := config.New()
	log := logger.New()

	st, cleanup, err := openStores(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store).Msg("failed to open store")
	}
	defer cleanup()

	if err := seedChecklist(st.steps); err != nil {
		log.Fatal().Err(err).Msg("failed to seed checklist")
	}

	if err := preloadFeeds(cfg, st, log); err != nil {
		log.Fatal().Err(err).Msg("failed to preload feed files")
	}

	cl := checklist.NewChecklist(st.steps)
	handler := &api.Handler{
		Transactions: reconciler.NewTransactionReconciler(st.txns, suggest.NewDefaultSuggester()),
		Statements:   reconciler.NewStatementReconciler(st.stmts),
		Checklist:    cl,
		Forecast:     forecast.NewEngine(st.opps),
		Activity:     service.NewActivityService(st.txns, st.stmts, cl),
	}

	engine := api.Register(handler, log)

	log.Info().Str("addr", cfg.Addr).Str("store", cfg.Store).Msg("finance engine listening")
	if err := http.ListenAndServe(cfg.Addr, engine); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func openStores(cfg config.Config, log zerolog.Logger) (stores, func(), error) {
	switch cfg.Store {
	case config.StoreMySQL:
		db, err := mysqlstore.Open(cfg.MySQLDSN())
		if err != nil {
			return stores{}, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("closing store")
			}
		}
		return stores{txns: db, stmts: db, steps: db, opps: db}, cleanup, nil

	default:
		mem := repository.NewMemoryStore()
		return stores{txns: mem, stmts: mem, steps: mem, opps: mem}, func() {}, nil
	}
}

// seedChecklist installs the default month-close steps, skipping any that
// already exist so restarts keep operator progress.
func seedChecklist(store domain.ChecklistStore) error {
	for _, step := range checklist.DefaultSteps() {
		if _, err := store.GetStep(step.ID); err == nil {
			continue
		}
		if err := store.PutStep(step); err != nil {
			return err
		}
	}
	return nil
}

// preloadFeeds loads the optional FEED_FILE and STATEMENT_FILES CSVs into
// the store at startup.
func preloadFeeds(cfg config.Config, st stores, log zerolog.Logger) error {
	feedRepo := repository.NewCSVFeedRepository(feedDateFormat, log)

	if feedFile := os.Getenv("FEED_FILE"); feedFile != "" {
		txns, err := feedRepo.LoadTransactions(feedFile)
		if err != nil {
			return err
		}
		for _, txn := range txns {
			if err := st.txns.PutTransaction(txn); err != nil {
				return err
			}
		}
		log.Info().Str("file", feedFile).Int("transactions", len(txns)).Msg("loaded activity feed")
	}

	for _, stmtFile := range strings.Split(os.Getenv("STATEMENT_FILES"), ",") {
		stmtFile = strings.TrimSpace(stmtFile)
		if stmtFile == "" {
			continue
		}
		stmt, err := feedRepo.LoadStatement(stmtFile)
		if err != nil {
			return err
		}
		if err := st.stmts.PutStatement(stmt); err != nil {
			return err
		}
		log.Info().Str("file", stmtFile).Int("lines", len(stmt.Lines)).Msg("loaded statement")
	}

	return nil
}
