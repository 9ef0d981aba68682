package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/makersnr-dev/qr-order-nr-admin-v2/internal/model"
)

// OrderFilter narrows ListOrders. Zero value lists every non-cleared order.
type OrderFilter struct {
	TableNo        string
	IncludeCleared bool
}

// Store defines the interface for all mirror database operations.
// Every write is a single statement; callers get no partial writes.
type Store interface {
	UpsertOrder(ctx context.Context, o model.OrderMirror) error
	FetchAllOrders(ctx context.Context) (map[string]model.OrderMirror, error)
	GetOrder(ctx context.Context, id string) (*model.OrderMirror, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]model.OrderMirror, error)
	SetOrderStatus(ctx context.Context, id, status string) error
	SetOrderCleared(ctx context.Context, id string, cleared bool) error

	UpsertMenu(ctx context.Context, m model.MenuMirror) error
	UpdateMenuFields(ctx context.Context, id int64, fields map[string]any) error
	GetMenu(ctx context.Context, id int64) (*model.MenuMirror, error)
	ListMenus(ctx context.Context) ([]model.MenuMirror, error)

	UpsertDailyCode(ctx context.Context, d model.DailyCodeMirror) error
	GetDailyCode(ctx context.Context, date string) (*model.DailyCodeMirror, error)

	SetClear(ctx context.Context, orderID string, cleared bool) error
	ListClears(ctx context.Context) ([]model.ClearRecord, error)

	AddTable(ctx context.Context, tableNo string) error
	ToggleTable(ctx context.Context, tableNo string, active bool) error
	ListTables(ctx context.Context) ([]model.TableRecord, error)

	AppendQRHistory(ctx context.Context, url string, tableNo *string) error
	LatestQRHistory(ctx context.Context, limit int) ([]model.QRHistoryEntry, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// UpsertOrder inserts or fully overwrites the mirror row for o.ID.
func (s *gormStore) UpsertOrder(ctx context.Context, o model.OrderMirror) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"table_no", "amount", "status", "created_at", "cleared", "payment_key", "items"}),
	}).Create(&o).Error
	if err != nil {
		return fmt.Errorf("upsert order %s: %w", o.ID, err)
	}
	return nil
}

// FetchAllOrders returns every mirror row keyed by order id.
func (s *gormStore) FetchAllOrders(ctx context.Context) (map[string]model.OrderMirror, error) {
	var orders []model.OrderMirror
	if err := s.db.WithContext(ctx).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	orderMap := make(map[string]model.OrderMirror, len(orders))
	for _, o := range orders {
		orderMap[o.ID] = o
	}
	return orderMap, nil
}

func (s *gormStore) GetOrder(ctx context.Context, id string) (*model.OrderMirror, error) {
	var o model.OrderMirror
	err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &o, nil
}

// ListOrders returns mirror rows newest-first. Unless IncludeCleared is set,
// orders cleared on the row itself or in the clear ledger are excluded.
func (s *gormStore) ListOrders(ctx context.Context, f OrderFilter) ([]model.OrderMirror, error) {
	q := s.db.WithContext(ctx).Model(&model.OrderMirror{})
	if f.TableNo != "" {
		q = q.Where("table_no = ?", f.TableNo)
	}
	if !f.IncludeCleared {
		cleared := s.db.Model(&model.ClearRecord{}).Select("order_id").Where("cleared = ?", true)
		q = q.Where("cleared = ?", false).Where("id NOT IN (?)", cleared)
	}
	var orders []model.OrderMirror
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// SetOrderStatus updates the status column in place. Missing rows are a
// no-op, matching the write-through path where the mirror may lag upstream.
func (s *gormStore) SetOrderStatus(ctx context.Context, id, status string) error {
	err := s.db.WithContext(ctx).Model(&model.OrderMirror{}).
		Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return fmt.Errorf("set order %s status: %w", id, err)
	}
	return nil
}

func (s *gormStore) SetOrderCleared(ctx context.Context, id string, cleared bool) error {
	err := s.db.WithContext(ctx).Model(&model.OrderMirror{}).
		Where("id = ?", id).Update("cleared", cleared).Error
	if err != nil {
		return fmt.Errorf("set order %s cleared: %w", id, err)
	}
	return nil
}

// UpsertMenu inserts or fully overwrites the mirror row for m.ID.
func (s *gormStore) UpsertMenu(ctx context.Context, m model.MenuMirror) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price", "active", "soldout", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("upsert menu %d: %w", m.ID, err)
	}
	return nil
}

// UpdateMenuFields applies a partial update; only the given columns change.
// A no-op if the menu item is not mirrored yet.
func (s *gormStore) UpdateMenuFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Model(&model.MenuMirror{}).
		Where("id = ?", id).Updates(fields).Error
	if err != nil {
		return fmt.Errorf("update menu %d: %w", id, err)
	}
	return nil
}

func (s *gormStore) GetMenu(ctx context.Context, id int64) (*model.MenuMirror, error) {
	var m model.MenuMirror
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu %d: %w", id, err)
	}
	return &m, nil
}

func (s *gormStore) ListMenus(ctx context.Context) ([]model.MenuMirror, error) {
	var menus []model.MenuMirror
	if err := s.db.WithContext(ctx).Order("name").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// UpsertDailyCode inserts or overwrites the row for d.CodeDate.
func (s *gormStore) UpsertDailyCode(ctx context.Context, d model.DailyCodeMirror) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "override", "saved_at"}),
	}).Create(&d).Error
	if err != nil {
		return fmt.Errorf("upsert daily code %s: %w", d.CodeDate, err)
	}
	return nil
}

func (s *gormStore) GetDailyCode(ctx context.Context, date string) (*model.DailyCodeMirror, error) {
	var d model.DailyCodeMirror
	err := s.db.WithContext(ctx).First(&d, "code_date = ?", date).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily code %s: %w", date, err)
	}
	return &d, nil
}

// SetClear records or removes an admin clear mark. Clearing upserts the
// ledger row; unclearing deletes it, since absence means "not cleared".
func (s *gormStore) SetClear(ctx context.Context, orderID string, cleared bool) error {
	if !cleared {
		err := s.db.WithContext(ctx).Delete(&model.ClearRecord{}, "order_id = ?", orderID).Error
		if err != nil {
			return fmt.Errorf("unclear order %s: %w", orderID, err)
		}
		return nil
	}
	rec := model.ClearRecord{OrderID: orderID, Cleared: true, ClearedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cleared", "cleared_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("clear order %s: %w", orderID, err)
	}
	return nil
}

func (s *gormStore) ListClears(ctx context.Context) ([]model.ClearRecord, error) {
	var clears []model.ClearRecord
	if err := s.db.WithContext(ctx).Where("cleared = ?", true).Find(&clears).Error; err != nil {
		return nil, fmt.Errorf("list clears: %w", err)
	}
	return clears, nil
}

// AddTable registers a table once; re-adding an existing table is a no-op.
func (s *gormStore) AddTable(ctx context.Context, tableNo string) error {
	rec := model.TableRecord{TableNo: tableNo, Active: true}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("add table %s: %w", tableNo, err)
	}
	return nil
}

// ToggleTable flips a table's active flag. Unknown tables are a no-op,
// not an error.
func (s *gormStore) ToggleTable(ctx context.Context, tableNo string, active bool) error {
	err := s.db.WithContext(ctx).Model(&model.TableRecord{}).
		Where("table_no = ?", tableNo).Update("active", active).Error
	if err != nil {
		return fmt.Errorf("toggle table %s: %w", tableNo, err)
	}
	return nil
}

// ListTables returns all tables, numeric table numbers first in ascending
// numeric order, non-numeric ones last in lexical order.
func (s *gormStore) ListTables(ctx context.Context) ([]model.TableRecord, error) {
	var tables []model.TableRecord
	if err := s.db.WithContext(ctx).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	sort.SliceStable(tables, func(i, j int) bool {
		ni, errI := strconv.Atoi(tables[i].TableNo)
		nj, errJ := strconv.Atoi(tables[j].TableNo)
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return tables[i].TableNo < tables[j].TableNo
		}
	})
	return tables, nil
}

// AppendQRHistory records a generated QR URL. Append-only.
func (s *gormStore) AppendQRHistory(ctx context.Context, url string, tableNo *string) error {
	entry := model.QRHistoryEntry{URL: url, TableNo: tableNo, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append qr history: %w", err)
	}
	return nil
}

// LatestQRHistory returns up to limit entries, newest first.
func (s *gormStore) LatestQRHistory(ctx context.Context, limit int) ([]model.QRHistoryEntry, error) {
	var entries []model.QRHistoryEntry
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("latest qr history: %w", err)
	}
	return entries, nil
}
