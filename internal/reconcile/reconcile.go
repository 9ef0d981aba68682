package reconcile

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gorm.io/datatypes"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/model"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

var emptyItems = datatypes.JSON("[]")

// Reconciler pulls snapshots from the upstream service and merges them into
// the mirror store. It never deletes mirror rows; a record missing from a
// snapshot is left untouched.
type Reconciler struct {
	client *upstream.Client
	store  store.Store
	policy MergePolicy
}

// New creates a reconciler using the given merge policy for order rows.
func New(client *upstream.Client, s store.Store, policy MergePolicy) *Reconciler {
	return &Reconciler{client: client, store: s, policy: policy}
}

// SyncOrders mirrors the full upstream order list, cleared orders included.
// Rows are upserted independently; a failure on one row does not undo the
// previous ones. It returns the number of rows upserted and the first error
// encountered, if any.
func (r *Reconciler) SyncOrders(ctx context.Context) (int, error) {
	payloads, err := r.client.FetchOrders(ctx, true)
	if err != nil {
		return 0, err
	}

	existing, err := r.store.FetchAllOrders(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	count := 0
	var firstErr error
	for _, p := range payloads {
		row := coalesceOrder(p, now)
		var prev *model.OrderMirror
		if old, ok := existing[row.ID]; ok {
			prev = &old
		}
		if err := r.store.UpsertOrder(ctx, r.policy(row, prev)); err != nil {
			log.Printf("order sync: upsert %s failed: %v", row.ID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	return count, firstErr
}

// SyncMenu mirrors the full upstream menu and returns the local table, which
// keeps any rows not present in the fetched snapshot visible.
func (r *Reconciler) SyncMenu(ctx context.Context) ([]model.MenuMirror, error) {
	payloads, err := r.client.FetchMenu(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, p := range payloads {
		m := model.MenuMirror{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Active:    p.Active,
			Soldout:   p.Soldout,
			UpdatedAt: now,
		}
		if err := r.store.UpsertMenu(ctx, m); err != nil {
			return nil, err
		}
	}
	return r.store.ListMenus(ctx)
}

// SyncDailyCode fetches the current daily code, upserts it keyed by its
// date, and returns the fetched payload.
func (r *Reconciler) SyncDailyCode(ctx context.Context) (*upstream.DailyCodePayload, error) {
	code, err := r.client.FetchDailyCode(ctx)
	if err != nil {
		return nil, err
	}
	row := model.DailyCodeMirror{
		CodeDate: code.Date,
		Code:     code.Code,
		Override: code.Override,
		SavedAt:  time.Now().UTC(),
	}
	if err := r.store.UpsertDailyCode(ctx, row); err != nil {
		return nil, err
	}
	return code, nil
}

// Run periodically syncs orders and menu until the context is cancelled.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	log.Println("Starting background reconcile loop...")

	r.syncOnce(ctx)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reconcile loop shutting down.")
			return
		case <-timer.C:
			r.syncOnce(ctx)
			timer.Reset(interval)
		}
	}
}

func (r *Reconciler) syncOnce(ctx context.Context) {
	if count, err := r.SyncOrders(ctx); err != nil {
		log.Printf("order sync: %d rows mirrored, first error: %v", count, err)
	} else {
		log.Printf("order sync: %d rows mirrored", count)
	}
	if _, err := r.SyncMenu(ctx); err != nil {
		log.Printf("menu sync failed: %v", err)
	}
}

// coalesceOrder maps an upstream payload onto a mirror row, filling absent
// optional fields with safe defaults.
func coalesceOrder(p upstream.OrderPayload, now time.Time) model.OrderMirror {
	row := model.OrderMirror{
		ID:        p.ID,
		TableNo:   p.TableNo,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: now,
		Items:     emptyItems,
	}
	if row.Status == "" {
		row.Status = model.StatusReceived
	}
	if p.CreatedAt != nil {
		row.CreatedAt = *p.CreatedAt
	}
	if p.Cleared != nil {
		row.Cleared = *p.Cleared
	}
	if p.PaymentKey != nil {
		row.PaymentKey = *p.PaymentKey
	}
	// Only a real JSON array passes; null decodes into a nil slice and
	// keeps the default, as does anything malformed.
	var items []json.RawMessage
	if len(p.Items) > 0 && json.Unmarshal(p.Items, &items) == nil && items != nil {
		row.Items = datatypes.JSON(p.Items)
	}
	return row
}
