// Package seed fetches the remote transaction feed and stores it.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"salestats/internal/core"
	"salestats/internal/log"
)

// maxBodyBytes bounds the size of a seed payload.
const maxBodyBytes = 32 << 20

// Store is the persistence surface the loader writes to.
type Store interface {
	EnsureSchema(ctx context.Context) error
	InsertMany(ctx context.Context, txs []core.Transaction) ([]int64, error)
}

// Publisher announces committed seed batches.
type Publisher interface {
	PublishSeedCompleted(ctx context.Context, inserted int, source string) error
}

// Result reports a completed seed.
type Result struct {
	Inserted int
	Source   string
}

// item is one element of the remote JSON array.
type item struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	Sold        bool     `json:"sold"`
	Category    string   `json:"category" validate:"required"`
	DateOfSale  string   `json:"dateOfSale" validate:"required"`
}

type Loader struct {
	store     Store
	client    *http.Client
	url       string
	publisher Publisher
	validate  *validator.Validate
	logger    *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithPublisher enables seed-completed notifications.
func WithPublisher(p Publisher) Option {
	return func(l *Loader) {
		l.publisher = p
	}
}

// WithHTTPClient replaces the default client built from the timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) {
		l.logger = logger.WithComponent(log.ComponentSeed)
	}
}

func NewLoader(store Store, url string, timeout time.Duration, opts ...Option) *Loader {
	l := &Loader{
		store:    store,
		client:   &http.Client{Timeout: timeout},
		url:      url,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   log.New(log.DefaultConfig()).WithComponent(log.ComponentSeed),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Seed ensures the schema, downloads the feed and inserts every item in
// one transaction. No rows are written if any item is invalid.
func (l *Loader) Seed(ctx context.Context) (Result, error) {
	start := time.Now()

	if err := l.store.EnsureSchema(ctx); err != nil {
		return Result{}, err
	}

	items, err := l.fetch(ctx)
	if err != nil {
		l.logger.ErrorContext(ctx, "Seed fetch failed",
			log.NewFields().WithOperation(log.OpSeed).WithSeed(l.url, 0).WithError(err, errorType(err)).ToSlice()...)
		return Result{}, err
	}

	txs, err := l.convert(items)
	if err != nil {
		l.logger.ErrorContext(ctx, "Seed payload rejected",
			log.NewFields().WithOperation(log.OpSeed).WithSeed(l.url, 0).WithError(err, log.ErrorTypeParse).ToSlice()...)
		return Result{}, err
	}

	ids, err := l.store.InsertMany(ctx, txs)
	if err != nil {
		return Result{}, err
	}

	res := Result{Inserted: len(ids), Source: l.url}
	l.logger.InfoContext(ctx, "Seed completed",
		log.NewFields().WithOperation(log.OpSeed).WithSeed(l.url, res.Inserted).ToSlice()...)
	l.logger.DebugContext(ctx, "Seed timing", log.FieldDuration, time.Since(start).Milliseconds())

	if l.publisher != nil {
		if err := l.publisher.PublishSeedCompleted(ctx, res.Inserted, res.Source); err != nil {
			l.logger.WarnContext(ctx, "Failed to publish seed completed message",
				log.NewFields().WithOperation(log.OpPublish).WithError(err, log.ErrorTypeNetwork).ToSlice()...)
		}
	}

	return res, nil
}

func (l *Loader) fetch(ctx context.Context) ([]item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", core.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", core.ErrFetch, l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: get %s: unexpected status %d", core.ErrFetch, l.url, resp.StatusCode)
	}

	var items []item
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes))
	if err := dec.Decode(&items); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, fmt.Errorf("%w: read body: %w", core.ErrFetch, err)
		}
		return nil, fmt.Errorf("%w: decode seed payload: %w", core.ErrParse, err)
	}
	return items, nil
}

func (l *Loader) convert(items []item) ([]core.Transaction, error) {
	txs := make([]core.Transaction, 0, len(items))
	for i, it := range items {
		if err := l.validate.Struct(it); err != nil {
			return nil, fmt.Errorf("%w: item %d: %s", core.ErrParse, i, describe(err))
		}
		date, err := core.ParseDate(it.DateOfSale)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: dateOfSale %q: %w", core.ErrParse, i, it.DateOfSale, err)
		}
		tx := core.Transaction{
			Title:       it.Title,
			Description: it.Description,
			Price:       *it.Price,
			Sold:        it.Sold,
			Category:    it.Category,
			DateOfSale:  date,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", core.ErrParse, i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("field %s failed %s=%s", lowerFirst(fe.Field()), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("field %s failed %s", lowerFirst(fe.Field()), fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}

func errorType(err error) string {
	if errors.Is(err, core.ErrParse) {
		return log.ErrorTypeParse
	}
	return log.ErrorTypeNetwork
}
