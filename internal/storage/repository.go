package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salestats/internal/core"
	"salestats/internal/log"

	_ "modernc.org/sqlite"
)

// busy_timeout lets concurrent readers wait on a writer instead of failing
// with SQLITE_BUSY.
const dsnParams = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type SQLiteRepository struct {
	db      *sql.DB
	dbPath  string
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		dbPath:  dbPath,
		queries: New(db),
	}

	if err := repo.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", core.ErrStore, err)
	}
	return nil
}

// EnsureSchema applies pending migrations. Safe to call repeatedly.
func (r *SQLiteRepository) EnsureSchema(ctx context.Context) error {
	if err := RunMigrations(r.dbPath + dsnParams); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStore, err)
	}
	slog.DebugContext(ctx, "Schema up to date",
		log.FieldComponent, log.ComponentStorage,
		"db_path", r.dbPath)
	return nil
}

// InsertMany stores all transactions in a single SQL transaction. Either
// every row is committed or none is.
func (r *SQLiteRepository) InsertMany(ctx context.Context, txs []core.Transaction) ([]int64, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", core.ErrStore, err)
	}
	defer sqlTx.Rollback()

	qtx := r.queries.WithTx(sqlTx)
	ids := make([]int64, 0, len(txs))
	for i, t := range txs {
		id, err := qtx.CreateTransaction(ctx, CreateTransactionParams{
			Title:       t.Title,
			Description: t.Description,
			Price:       t.Price,
			Sold:        t.Sold,
			Category:    t.Category,
			DateOfSale:  t.DateOfSale.String(),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: insert transaction %d: %w", core.ErrStore, i, err)
		}
		ids = append(ids, id)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", core.ErrStore, err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite",
		log.FieldComponent, log.ComponentStorage,
		log.FieldInserted, len(ids))
	return ids, nil
}

// ListTransactions returns one page of transactions matching the filter,
// in insertion order, plus the number of matching rows. Out-of-range paging
// is clamped by core.ListFilter.Normalize. The count and the page are read
// in one transaction so they agree while a seed commits.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f core.ListFilter) (core.TransactionPage, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return core.TransactionPage{}, err
	}

	params := ListTransactionsParams{
		Search: f.Search,
		Month:  int64(f.Month),
		Limit:  int64(f.PerPage),
	}
	if price, ok := core.ParseNumericSearch(f.Search); ok {
		params.MatchPrice = true
		params.Price = price
	}

	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return core.TransactionPage{}, fmt.Errorf("%w: begin: %w", core.ErrStore, err)
	}
	defer sqlTx.Rollback()
	qtx := r.queries.WithTx(sqlTx)

	total, err := qtx.CountTransactions(ctx, params)
	if err != nil {
		return core.TransactionPage{}, fmt.Errorf("%w: count transactions: %w", core.ErrStore, err)
	}

	page := core.TransactionPage{Transactions: []core.Transaction{}, Total: total}
	offset, ok := f.Offset()
	if !ok || f.PerPage == 0 || offset >= total {
		return page, sqlTx.Commit()
	}
	params.Offset = offset

	rows, err := qtx.ListTransactions(ctx, params)
	if err != nil {
		return core.TransactionPage{}, fmt.Errorf("%w: list transactions: %w", core.ErrStore, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return core.TransactionPage{}, fmt.Errorf("%w: commit: %w", core.ErrStore, err)
	}

	page.Transactions, err = toCore(rows)
	if err != nil {
		return core.TransactionPage{}, err
	}
	return page, nil
}

// TransactionsByMonth returns every transaction sold in the given calendar
// month of any year.
func (r *SQLiteRepository) TransactionsByMonth(ctx context.Context, month int) ([]core.Transaction, error) {
	if !core.ValidMonth(month) {
		return nil, fmt.Errorf("%w: month must be between 1 and 12, got %d", core.ErrInvalidArgument, month)
	}
	rows, err := r.queries.GetTransactionsByMonth(ctx, int64(month))
	if err != nil {
		return nil, fmt.Errorf("%w: get transactions by month: %w", core.ErrStore, err)
	}
	return toCore(rows)
}

func toCore(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		date, err := core.ParseDate(row.DateOfSale)
		if err != nil {
			return nil, fmt.Errorf("%w: transaction %d has malformed date %q: %w", core.ErrStore, row.ID, row.DateOfSale, err)
		}
		out[i] = core.Transaction{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			Price:       row.Price,
			Sold:        row.Sold,
			Category:    row.Category,
			DateOfSale:  date,
		}
	}
	return out, nil
}
