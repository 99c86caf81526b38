// src/services/statement_service.go
package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/mpesaviz/backend/src/ledger"
	"github.com/username/mpesaviz/backend/src/logger"
	"github.com/username/mpesaviz/backend/src/models"
	"github.com/username/mpesaviz/backend/src/parsers"
	"github.com/username/mpesaviz/backend/src/processors"
	"github.com/username/mpesaviz/backend/src/utils"
)

const (
	// Analytics cache, keyed by a content hash of the statement. The cache
	// is invalidated wholesale by key rotation: a changed statement hashes
	// to a new key and the old entry ages out.
	ckAnalytics = "analytics_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type statementServiceImpl struct {
	builder        *ledger.Builder
	netFlow        processors.NetFlowProcessor
	fees           processors.FeeProcessor
	trends         processors.TrendProcessor
	counterparties processors.CounterpartyProcessor
	recurring      processors.RecurringProcessor
	analyticsCache *cache.Cache
}

func NewStatementService(builder *ledger.Builder, analyticsCache *cache.Cache) StatementService {
	return &statementServiceImpl{
		builder:        builder,
		netFlow:        processors.NewNetFlowProcessor(),
		fees:           processors.NewFeeProcessor(),
		trends:         processors.NewTrendProcessor(),
		counterparties: processors.NewCounterpartyProcessor(),
		recurring:      processors.NewRecurringProcessor(),
		analyticsCache: analyticsCache,
	}
}

// Normalize classifies each raw record and assembles the canonical
// Statement. Row-level anomalies become diagnostics; only an entirely
// empty normalization is an error.
func (s *statementServiceImpl) Normalize(records []models.RawRecord) (*StatementResult, error) {
	startTime := time.Now()

	rows := make([]parsers.ClassifiedRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, parsers.Classify(record))
	}

	statement, diags := s.builder.Build(rows)
	if len(statement.Transactions) == 0 && len(statement.Summaries) == 0 {
		return nil, fmt.Errorf("%w: no usable rows in %d records", ErrParsingFailed, len(records))
	}

	logger.L.Info("Statement normalized",
		"records", len(records),
		"transactions", len(statement.Transactions),
		"summaries", len(statement.Summaries),
		"diagnostics", len(diags),
		"duration", time.Since(startTime))

	return &StatementResult{Statement: statement, Diagnostics: diags}, nil
}

// Analytics derives every analytic view of the statement. Results are pure
// reads and cached under the statement's content hash.
func (s *statementServiceImpl) Analytics(statement *models.Statement) (*Analytics, error) {
	hash, err := utils.GenerateETag(statement)
	if err != nil {
		return nil, fmt.Errorf("failed to hash statement for analytics cache: %w", err)
	}
	cacheKey := fmt.Sprintf(ckAnalytics, hash)

	if cached, found := s.analyticsCache.Get(cacheKey); found {
		logger.L.Debug("Cache hit for statement analytics", "hash", hash)
		return cached.(*Analytics), nil
	}

	result := &Analytics{
		NetFlow:        s.netFlow.Process(statement),
		Fees:           s.fees.Process(statement),
		Trends:         s.trends.Process(statement),
		Counterparties: s.counterparties.Process(statement),
		Recurring:      s.recurring.Process(statement),
	}

	s.analyticsCache.Set(cacheKey, result, cache.DefaultExpiration)
	logger.L.Info("Computed statement analytics", "hash", hash, "transactions", len(statement.Transactions))
	return result, nil
}
