package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"salestats/internal/core"
	"salestats/internal/log"
)

// TransactionReader is the read side of the record store.
type TransactionReader interface {
	ListTransactions(ctx context.Context, f core.ListFilter) (core.TransactionPage, error)
	TransactionsByMonth(ctx context.Context, month int) ([]core.Transaction, error)
}

// StatsService answers listing and month-scoped aggregate queries.
// Every call reads the store; nothing is memoized.
type StatsService struct {
	reader TransactionReader
	logger *log.Logger
}

func NewStatsService(reader TransactionReader, logger *log.Logger) *StatsService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &StatsService{
		reader: reader,
		logger: logger.WithComponent(log.ComponentStats),
	}
}

// List returns one page of transactions matching the filter and the
// total match count.
func (s *StatsService) List(ctx context.Context, f core.ListFilter) (core.TransactionPage, error) {
	page, err := s.reader.ListTransactions(ctx, f)
	if err != nil {
		return core.TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}
	s.logger.DebugContext(ctx, "Listed transactions",
		log.NewFields().WithOperation(log.OpList).WithListing(f.Search, f.Page, f.PerPage).ToSlice()...)
	return page, nil
}

func (s *StatsService) Statistics(ctx context.Context, month int) (core.MonthStatistics, error) {
	txs, err := s.monthTransactions(ctx, month, log.OpStatistics)
	if err != nil {
		return core.MonthStatistics{}, err
	}
	return core.ComputeStatistics(txs), nil
}

func (s *StatsService) BarChart(ctx context.Context, month int) (core.BarChart, error) {
	txs, err := s.monthTransactions(ctx, month, log.OpBarChart)
	if err != nil {
		return nil, err
	}
	return core.ComputeBarChart(txs), nil
}

func (s *StatsService) PieChart(ctx context.Context, month int) (core.PieChart, error) {
	txs, err := s.monthTransactions(ctx, month, log.OpPieChart)
	if err != nil {
		return nil, err
	}
	return core.ComputePieChart(txs), nil
}

// Combined runs Statistics, BarChart and PieChart concurrently. The first
// failure cancels the others and fails the call.
func (s *StatsService) Combined(ctx context.Context, month int) (core.Combined, error) {
	if !core.ValidMonth(month) {
		return core.Combined{}, invalidMonth(month)
	}

	var out core.Combined
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.Statistics(gctx, month)
		out.Statistics = stats
		return err
	})
	g.Go(func() error {
		bar, err := s.BarChart(gctx, month)
		out.BarChart = bar
		return err
	})
	g.Go(func() error {
		pie, err := s.PieChart(gctx, month)
		out.PieChart = pie
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Combined query failed",
			log.NewFields().WithOperation(log.OpCombined).WithMonth(month).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		return core.Combined{}, err
	}
	return out, nil
}

func (s *StatsService) monthTransactions(ctx context.Context, month int, op string) ([]core.Transaction, error) {
	if !core.ValidMonth(month) {
		return nil, invalidMonth(month)
	}
	txs, err := s.reader.TransactionsByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("%s for month %d: %w", op, month, err)
	}
	s.logger.DebugContext(ctx, "Loaded month transactions",
		log.NewFields().WithOperation(op).WithMonth(month).ToSlice()...)
	return txs, nil
}

func invalidMonth(month int) error {
	return fmt.Errorf("%w: month must be between 1 and 12, got %d", core.ErrInvalidArgument, month)
}
