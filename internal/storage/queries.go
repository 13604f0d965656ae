package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transaction is a row of the transactions table.
type Transaction struct {
	ID          int64
	Title       string
	Description string
	Price       float64
	Sold        bool
	Category    string
	DateOfSale  string
}

const createTransaction = `INSERT INTO transactions (title, description, price, sold, category, date_of_sale)
VALUES (?, ?, ?, ?, ?, ?)`

type CreateTransactionParams struct {
	Title       string
	Description string
	Price       float64
	Sold        bool
	Category    string
	DateOfSale  string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createTransaction,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.Sold,
		arg.Category,
		arg.DateOfSale,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ?1 search term, ?2 whether the price branch applies, ?3 numeric price,
// ?4 month (0 = any).
const transactionFilter = `
WHERE (?1 = ''
    OR title LIKE '%' || ?1 || '%'
    OR description LIKE '%' || ?1 || '%'
    OR (?2 AND price = ?3))
  AND (?4 = 0 OR CAST(strftime('%m', date_of_sale) AS INTEGER) = ?4)`

const listTransactions = `SELECT id, title, description, price, sold, category, date_of_sale
FROM transactions` + transactionFilter + `
ORDER BY id
LIMIT ?5 OFFSET ?6`

const countTransactions = `SELECT COUNT(*) FROM transactions` + transactionFilter

type ListTransactionsParams struct {
	Search     string
	MatchPrice bool
	Price      float64
	Month      int64
	Limit      int64
	Offset     int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.Search,
		arg.MatchPrice,
		arg.Price,
		arg.Month,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func (q *Queries) CountTransactions(ctx context.Context, arg ListTransactionsParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactions,
		arg.Search,
		arg.MatchPrice,
		arg.Price,
		arg.Month,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getTransactionsByMonth = `SELECT id, title, description, price, sold, category, date_of_sale
FROM transactions
WHERE CAST(strftime('%m', date_of_sale) AS INTEGER) = ?
ORDER BY id`

func (q *Queries) GetTransactionsByMonth(ctx context.Context, month int64) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, getTransactionsByMonth, month)
	if err != nil {
		return nil, err
	}
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]Transaction, error) {
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var i Transaction
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Description,
			&i.Price,
			&i.Sold,
			&i.Category,
			&i.DateOfSale,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
