package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/config"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/model"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.ClearRecord{},
		&model.OrderMirror{},
		&model.MenuMirror{},
		&model.DailyCodeMirror{},
	))
	return store.NewGormStore(db)
}

func newTestClient(baseURL string) *upstream.Client {
	return upstream.NewClient(&config.UpstreamConfig{APIBase: baseURL, Token: "secret"})
}

func TestSyncOrders_CoalesceAndIdempotence(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	snapshot := []map[string]any{
		{
			"id": "ord-1", "tableNo": "3", "amount": 12000, "status": "received",
			"createdAt": created, "cleared": true, "paymentKey": "pk-1",
			"items": []map[string]any{{"name": "Tea", "qty": 2}},
		},
		{
			// Optional fields absent; the sync fills safe defaults.
			"id": "ord-2", "tableNo": "5", "amount": 4500,
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("includeCleared"))
		json.NewEncoder(w).Encode(snapshot)
	}))
	defer server.Close()

	s := newTestStore(t)
	r := New(newTestClient(server.URL), s, OverwriteAll)
	ctx := context.Background()

	count, err := r.SyncOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	full, err := s.GetOrder(ctx, "ord-1")
	require.NoError(t, err)
	require.NotNil(t, full)
	assert.Equal(t, "3", full.TableNo)
	assert.Equal(t, int64(12000), full.Amount)
	assert.True(t, full.Cleared)
	assert.Equal(t, "pk-1", full.PaymentKey)
	assert.True(t, created.Equal(full.CreatedAt))
	assert.JSONEq(t, `[{"name":"Tea","qty":2}]`, string(full.Items))

	sparse, err := s.GetOrder(ctx, "ord-2")
	require.NoError(t, err)
	require.NotNil(t, sparse)
	assert.Equal(t, model.StatusReceived, sparse.Status)
	assert.False(t, sparse.Cleared)
	assert.Equal(t, "", sparse.PaymentKey)
	assert.False(t, sparse.CreatedAt.IsZero())
	assert.JSONEq(t, `[]`, string(sparse.Items))

	// A second sync of the unchanged snapshot leaves ord-1 identical.
	before, err := s.GetOrder(ctx, "ord-1")
	require.NoError(t, err)
	count, err = r.SyncOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	after, err := s.GetOrder(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncOrders_ItemsMustBeAnArray(t *testing.T) {
	snapshot := []map[string]any{
		{"id": "ord-null", "tableNo": "1", "amount": 100, "items": nil},
		{"id": "ord-scalar", "tableNo": "2", "amount": 200, "items": 7},
		{"id": "ord-array", "tableNo": "3", "amount": 300, "items": []string{"a"}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(snapshot)
	}))
	defer server.Close()

	s := newTestStore(t)
	r := New(newTestClient(server.URL), s, OverwriteAll)
	ctx := context.Background()

	count, err := r.SyncOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// JSON null and non-array payloads both fall back to the empty sequence.
	for _, id := range []string{"ord-null", "ord-scalar"} {
		got, err := s.GetOrder(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, got, id)
		assert.JSONEq(t, `[]`, string(got.Items), id)
	}

	got, err := s.GetOrder(ctx, "ord-array")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `["a"]`, string(got.Items))
}

// flakyStore fails UpsertOrder for one order id and delegates the rest.
type flakyStore struct {
	store.Store
	failID string
}

func (f *flakyStore) UpsertOrder(ctx context.Context, o model.OrderMirror) error {
	if o.ID == f.failID {
		return errors.New("disk full")
	}
	return f.Store.UpsertOrder(ctx, o)
}

func TestSyncOrders_ContinuesPastRowFailure(t *testing.T) {
	snapshot := []map[string]any{
		{"id": "ord-1", "tableNo": "1", "amount": 100},
		{"id": "ord-2", "tableNo": "2", "amount": 200},
		{"id": "ord-3", "tableNo": "3", "amount": 300},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(snapshot)
	}))
	defer server.Close()

	s := &flakyStore{Store: newTestStore(t), failID: "ord-2"}
	r := New(newTestClient(server.URL), s, OverwriteAll)
	ctx := context.Background()

	count, err := r.SyncOrders(ctx)

	// The failed row is skipped, not rolled into an abort: the count
	// excludes it and the first failure comes back to the caller.
	assert.Equal(t, 2, count)
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")

	for _, id := range []string{"ord-1", "ord-3"} {
		got, getErr := s.GetOrder(ctx, id)
		require.NoError(t, getErr)
		assert.NotNil(t, got, id)
	}
	missing, getErr := s.GetOrder(ctx, "ord-2")
	require.NoError(t, getErr)
	assert.Nil(t, missing)
}

func TestSyncOrders_NeverDeletes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": "ord-new", "tableNo": "1", "amount": 100}})
	}))
	defer server.Close()

	s := newTestStore(t)
	ctx := context.Background()

	old := model.OrderMirror{
		ID: "ord-old", TableNo: "9", Amount: 777, Status: "done",
		CreatedAt: time.Now().UTC(), Items: datatypes.JSON("[]"),
	}
	require.NoError(t, s.UpsertOrder(ctx, old))

	r := New(newTestClient(server.URL), s, OverwriteAll)
	_, err := r.SyncOrders(ctx)
	require.NoError(t, err)

	// ord-old is absent from the snapshot but must remain untouched.
	got, err := s.GetOrder(ctx, "ord-old")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, int64(777), got.Amount)
}

func TestSyncOrders_MergePolicies(t *testing.T) {
	snapshot := []map[string]any{
		{"id": "ord-1", "tableNo": "3", "amount": 100, "status": "received", "cleared": false},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(snapshot)
	}))
	defer server.Close()

	testCases := []struct {
		name            string
		policy          MergePolicy
		expectedCleared bool
	}{
		{"OverwriteAll lets the snapshot clobber a local clear", OverwriteAll, false},
		{"PreserveCleared keeps the local clear", PreserveCleared, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(t)
			ctx := context.Background()

			require.NoError(t, s.UpsertOrder(ctx, model.OrderMirror{
				ID: "ord-1", TableNo: "3", Amount: 100, Status: "received",
				Cleared: true, CreatedAt: time.Now().UTC(), Items: datatypes.JSON("[]"),
			}))

			r := New(newTestClient(server.URL), s, tc.policy)
			_, err := r.SyncOrders(ctx)
			require.NoError(t, err)

			got, err := s.GetOrder(ctx, "ord-1")
			require.NoError(t, err)
			assert.Equal(t, tc.expectedCleared, got.Cleared)
		})
	}
}

func TestSyncOrders_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestStore(t)
	r := New(newTestClient(server.URL), s, OverwriteAll)

	count, err := r.SyncOrders(context.Background())
	assert.Equal(t, 0, count)
	require.Error(t, err)
	assert.True(t, upstream.IsUnavailable(err))
}

func TestSyncMenu_LocalRowsStayVisible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/menu", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Tea", "price": 3000, "active": true, "soldout": false},
		})
	}))
	defer server.Close()

	s := newTestStore(t)
	ctx := context.Background()

	// A locally known item the snapshot no longer carries.
	require.NoError(t, s.UpsertMenu(ctx, model.MenuMirror{
		ID: 2, Name: "Ade", Price: 4500, Active: true, UpdatedAt: time.Now().UTC(),
	}))

	r := New(newTestClient(server.URL), s, OverwriteAll)
	menus, err := r.SyncMenu(ctx)
	require.NoError(t, err)

	require.Len(t, menus, 2)
	assert.Equal(t, "Ade", menus[0].Name)
	assert.Equal(t, "Tea", menus[1].Name)
}

func TestSyncDailyCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/daily-code", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"date": "2025-06-01", "code": "4242", "override": true})
	}))
	defer server.Close()

	s := newTestStore(t)
	r := New(newTestClient(server.URL), s, OverwriteAll)
	ctx := context.Background()

	code, err := r.SyncDailyCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4242", code.Code)

	got, err := s.GetDailyCode(ctx, "2025-06-01")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "4242", got.Code)
	assert.True(t, got.Override)
}
