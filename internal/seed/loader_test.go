package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salestats/internal/core"
	"salestats/internal/log"
	"salestats/internal/storage"
)

type fakeStore struct {
	schemaCalls int
	schemaErr   error
	insertErr   error
	inserted    []core.Transaction
}

func (f *fakeStore) EnsureSchema(ctx context.Context) error {
	f.schemaCalls++
	return f.schemaErr
}

func (f *fakeStore) InsertMany(ctx context.Context, txs []core.Transaction) ([]int64, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	ids := make([]int64, len(txs))
	for i := range txs {
		f.inserted = append(f.inserted, txs[i])
		ids[i] = int64(len(f.inserted))
	}
	return ids, nil
}

type fakePublisher struct {
	calls    int
	inserted int
	source   string
	err      error
}

func (p *fakePublisher) PublishSeedCompleted(ctx context.Context, inserted int, source string) error {
	p.calls++
	p.inserted = inserted
	p.source = source
	return p.err
}

const validPayload = `[
	{"id": 1, "title": "Ring", "description": "Gold ring", "price": 150, "sold": true, "category": "jewelery", "dateOfSale": "2021-03-05", "image": "x.png"},
	{"title": "Shirt", "description": "Cotton shirt", "price": 0, "category": "men's clothing", "dateOfSale": "2022-11-20"}
]`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Format: "text", Output: io.Discard})
}

func TestSeedInsertsAllItems(t *testing.T) {
	srv := serve(t, http.StatusOK, validPayload)
	store := &fakeStore{}
	pub := &fakePublisher{}

	l := NewLoader(store, srv.URL, 5*time.Second, WithPublisher(pub), WithLogger(quietLogger()))
	res, err := l.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if res.Inserted != 2 || res.Source != srv.URL {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.schemaCalls != 1 {
		t.Errorf("EnsureSchema called %d times", store.schemaCalls)
	}

	ring := store.inserted[0]
	if ring.Title != "Ring" || ring.Price != 150 || !ring.Sold || !ring.DateOfSale.Equal(core.NewDate(2021, 3, 5).Time) {
		t.Errorf("unexpected first record %+v", ring)
	}
	shirt := store.inserted[1]
	if shirt.Sold {
		t.Error("missing sold should default to false")
	}
	if shirt.Price != 0 {
		t.Errorf("expected zero price, got %v", shirt.Price)
	}

	if pub.calls != 1 || pub.inserted != 2 || pub.source != srv.URL {
		t.Errorf("unexpected publish %+v", pub)
	}
}

func TestSeedRejectsBadPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed JSON", `[{"title": "x"`, "decode"},
		{"not an array", `{"title": "x"}`, "decode"},
		{"missing title", `[{"description": "d", "price": 1, "category": "c", "dateOfSale": "2021-01-01"}]`, "item 0: field title failed required"},
		{"missing price", `[{"title": "t", "description": "d", "category": "c", "dateOfSale": "2021-01-01"}]`, "item 0: field price failed required"},
		{"negative price", `[{"title": "t", "description": "d", "price": -1, "category": "c", "dateOfSale": "2021-01-01"}]`, "item 0: field price failed gte=0"},
		{"price as string", `[{"title": "t", "description": "d", "price": "12", "category": "c", "dateOfSale": "2021-01-01"}]`, "decode"},
		{"timestamp date", `[{"title": "t", "description": "d", "price": 1, "category": "c", "dateOfSale": "2021-11-27T20:29:54+05:30"}]`, "item 0: dateOfSale"},
		{"blank category", `[{"title": "t", "description": "d", "price": 1, "category": "  ", "dateOfSale": "2021-01-01"}]`, "item 0: empty category"},
		{
			"second item invalid",
			`[{"title": "t", "description": "d", "price": 1, "category": "c", "dateOfSale": "2021-01-01"},
			  {"title": "t", "description": "d", "price": 1, "category": "c", "dateOfSale": "2021-13-01"}]`,
			"item 1: dateOfSale",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)
			store := &fakeStore{}
			pub := &fakePublisher{}

			_, err := NewLoader(store, srv.URL, 5*time.Second, WithPublisher(pub), WithLogger(quietLogger())).Seed(context.Background())
			if !errors.Is(err, core.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not contain %q", err, tt.wantMsg)
			}
			if len(store.inserted) != 0 {
				t.Errorf("expected nothing inserted, got %d", len(store.inserted))
			}
			if pub.calls != 0 {
				t.Error("publisher should not be called on failure")
			}
		})
	}
}

func TestSeedFetchFailures(t *testing.T) {
	t.Run("non-2xx status", func(t *testing.T) {
		srv := serve(t, http.StatusNotFound, "missing")
		_, err := NewLoader(&fakeStore{}, srv.URL, 5*time.Second, WithLogger(quietLogger())).Seed(context.Background())
		if !errors.Is(err, core.ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
		if !strings.Contains(err.Error(), "404") {
			t.Errorf("error should mention status: %v", err)
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewLoader(&fakeStore{}, url, 5*time.Second, WithLogger(quietLogger())).Seed(context.Background())
		if !errors.Is(err, core.ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		_, err := NewLoader(&fakeStore{}, srv.URL, 50*time.Millisecond, WithLogger(quietLogger())).Seed(context.Background())
		if !errors.Is(err, core.ErrFetch) {
			t.Fatalf("expected ErrFetch, got %v", err)
		}
	})
}

func TestSeedStoreFailures(t *testing.T) {
	boom := fmt.Errorf("%w: disk full", core.ErrStore)

	t.Run("schema", func(t *testing.T) {
		srv := serve(t, http.StatusOK, validPayload)
		_, err := NewLoader(&fakeStore{schemaErr: boom}, srv.URL, time.Second, WithLogger(quietLogger())).Seed(context.Background())
		if !errors.Is(err, core.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
	})

	t.Run("insert", func(t *testing.T) {
		srv := serve(t, http.StatusOK, validPayload)
		pub := &fakePublisher{}
		_, err := NewLoader(&fakeStore{insertErr: boom}, srv.URL, time.Second, WithPublisher(pub), WithLogger(quietLogger())).Seed(context.Background())
		if !errors.Is(err, core.ErrStore) {
			t.Fatalf("expected ErrStore, got %v", err)
		}
		if pub.calls != 0 {
			t.Error("publisher should not be called when insert fails")
		}
	})
}

func TestSeedPublishFailureDoesNotFail(t *testing.T) {
	srv := serve(t, http.StatusOK, validPayload)
	pub := &fakePublisher{err: errors.New("broker down")}

	res, err := NewLoader(&fakeStore{}, srv.URL, time.Second, WithPublisher(pub), WithLogger(quietLogger())).Seed(context.Background())
	if err != nil {
		t.Fatalf("publish failure must not fail the seed: %v", err)
	}
	if res.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", res.Inserted)
	}
}

func TestSeedEmptyArray(t *testing.T) {
	srv := serve(t, http.StatusOK, `[]`)
	res, err := NewLoader(&fakeStore{}, srv.URL, time.Second, WithLogger(quietLogger())).Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if res.Inserted != 0 {
		t.Errorf("expected 0 inserted, got %d", res.Inserted)
	}
}

func TestSeedTwiceDuplicatesRows(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer repo.Close()

	srv := serve(t, http.StatusOK, validPayload)
	l := NewLoader(repo, srv.URL, time.Second, WithLogger(quietLogger()))

	for i := 0; i < 2; i++ {
		if _, err := l.Seed(context.Background()); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	page, err := repo.ListTransactions(context.Background(), core.ListFilter{Page: 1, PerPage: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected 4 rows after two seeds, got %d", page.Total)
	}
	if page.Transactions[0].ID == page.Transactions[2].ID {
		t.Error("duplicate rows must get distinct ids")
	}
}
