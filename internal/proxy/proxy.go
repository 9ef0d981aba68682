package proxy

import (
	"context"
	"log"
	"time"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/model"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/store"
	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/upstream"
)

// Proxy forwards admin mutations to the upstream service and records the
// resulting state in the mirror store. The forward and the local write are
// not atomic as a pair; readers between the two steps see the mirror lag
// upstream by at most one round trip.
type Proxy struct {
	client *upstream.Client
	store  store.Store
}

// New creates a write-through proxy.
func New(client *upstream.Client, s store.Store) *Proxy {
	return &Proxy{client: client, store: s}
}

// UpdateOrderStatus forwards a status change and persists it locally.
// Unlike every other mutation here, the local write runs even when the
// forward fails; the forward error is only logged. Callers rely on this.
func (p *Proxy) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if err := p.client.PatchOrderStatus(ctx, id, status); err != nil {
		log.Printf("order-status forward for %s failed, mirror updated anyway: %v", id, err)
	}
	return p.store.SetOrderStatus(ctx, id, status)
}

// Refund forwards a refund. On upstream failure nothing is written locally;
// on success the mirrored order is marked refunded.
func (p *Proxy) Refund(ctx context.Context, id string) error {
	if err := p.client.PostRefund(ctx, id); err != nil {
		return err
	}
	return p.store.SetOrderStatus(ctx, id, model.StatusRefunded)
}

// CreateMenu forwards a new menu item and mirrors the submitted fields.
// The caller must have validated that m.ID is present.
func (p *Proxy) CreateMenu(ctx context.Context, m upstream.MenuPatch) error {
	if err := p.client.CreateMenu(ctx, m); err != nil {
		return err
	}
	row := model.MenuMirror{ID: *m.ID, UpdatedAt: time.Now().UTC()}
	if m.Name != nil {
		row.Name = *m.Name
	}
	if m.Price != nil {
		row.Price = *m.Price
	}
	if m.Active != nil {
		row.Active = *m.Active
	}
	if m.Soldout != nil {
		row.Soldout = *m.Soldout
	}
	return p.store.UpsertMenu(ctx, row)
}

// UpdateMenu forwards a partial menu update and coalesces the submitted
// fields with the mirrored row; absent fields are left unchanged.
func (p *Proxy) UpdateMenu(ctx context.Context, id int64, m upstream.MenuPatch) error {
	if err := p.client.PatchMenu(ctx, id, m); err != nil {
		return err
	}
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if m.Name != nil {
		fields["name"] = *m.Name
	}
	if m.Price != nil {
		fields["price"] = *m.Price
	}
	if m.Active != nil {
		fields["active"] = *m.Active
	}
	if m.Soldout != nil {
		fields["soldout"] = *m.Soldout
	}
	return p.store.UpdateMenuFields(ctx, id, fields)
}

// RegenDailyCode asks the upstream for a fresh code. The mutating response
// does not carry the full record, so the code is re-read before persisting.
// The regen payload is returned to the caller.
func (p *Proxy) RegenDailyCode(ctx context.Context) (*upstream.DailyCodePayload, error) {
	code, err := p.client.RegenDailyCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.persistCurrentCode(ctx); err != nil {
		return nil, err
	}
	return code, nil
}

// ClearDailyCode drops any override code upstream, then re-reads and
// persists the resulting record.
func (p *Proxy) ClearDailyCode(ctx context.Context) (*upstream.DailyCodePayload, error) {
	code, err := p.client.ClearDailyCode(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.persistCurrentCode(ctx); err != nil {
		return nil, err
	}
	return code, nil
}

func (p *Proxy) persistCurrentCode(ctx context.Context) error {
	code, err := p.client.FetchDailyCode(ctx)
	if err != nil {
		return err
	}
	return p.store.UpsertDailyCode(ctx, model.DailyCodeMirror{
		CodeDate: code.Date,
		Code:     code.Code,
		Override: code.Override,
		SavedAt:  time.Now().UTC(),
	})
}
