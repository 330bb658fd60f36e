// Package paymentsdb is the local, persistent mirror of a node's payment
// history. It is kept current by Sync, which pulls records changed since the
// highest update index already stored.
package paymentsdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	lexeerr "github.com/mrz1836/lexe/pkg/errors"
	"github.com/mrz1836/lexe/pkg/types"
)

const (
	// FileName is the SQLite file inside the store directory.
	FileName = "payments.sqlite"

	// DefaultPageSize is the number of records requested per sync page.
	DefaultPageSize = 100

	dirPerm  = 0o700
	filePerm = 0o600
)

// Option configures a DB.
type Option func(*DB)

// WithPageSize sets the sync page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(db *DB) {
		if n > 0 {
			db.pageSize = n
		}
	}
}

// WithLogger sets the logger used for sync progress.
func WithLogger(logger *zap.Logger) Option {
	return func(db *DB) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// DB is a payments store rooted at one directory.
type DB struct {
	dir      string
	pageSize int
	logger   *zap.Logger

	flight singleflight.Group

	// lifetime bounds shared sync runs; it ends when the store is closed.
	lifetime context.Context
	stop     context.CancelFunc

	mu      sync.RWMutex
	gdb     *gorm.DB
	ix      *index
	closed  bool
	deleted bool

	// localNotes holds notes written while a sync is running. Nil when no
	// sync is in flight.
	localNotes map[types.PaymentCreatedIndex]*string
}

// Exists reports whether a store file is present in dir.
func Exists(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && info.Mode().IsRegular()
}

// Create initializes an empty store in dir.
func Create(dir string, opts ...Option) (*DB, error) {
	if Exists(dir) {
		return nil, lexeerr.WithDetails(lexeerr.ErrStoreExists, map[string]string{"dir": dir})
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}

	db := newDB(dir, opts)
	path := filepath.Join(dir, FileName)

	gdb, err := openGorm(path)
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}

	err = gdb.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&paymentRow{}, &metaRow{}); err != nil {
			return err
		}
		return tx.Create(&metaRow{Key: metaKeySchemaVersion, Value: strconv.Itoa(schemaVersion)}).Error
	})
	if err != nil {
		closeGorm(gdb)
		_ = os.Remove(path)
		return nil, lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	if err := os.Chmod(path, filePerm); err != nil {
		db.logger.Debug("could not restrict payments db permissions", zap.Error(err))
	}

	db.gdb = gdb
	db.logger.Debug("created payments db", zap.String("dir", dir))
	return db, nil
}

// Open loads an existing store from dir and rebuilds the in-memory views.
func Open(dir string, opts ...Option) (*DB, error) {
	if !Exists(dir) {
		return nil, lexeerr.WithDetails(lexeerr.ErrStoreNotFound, map[string]string{"dir": dir})
	}

	db := newDB(dir, opts)
	gdb, err := openGorm(filepath.Join(dir, FileName))
	if err != nil {
		return nil, lexeerr.WithCause(lexeerr.ErrStoreCorrupt, err)
	}

	ix, err := load(gdb)
	if err != nil {
		closeGorm(gdb)
		return nil, err
	}

	db.gdb = gdb
	db.ix = ix
	db.logger.Debug("opened payments db",
		zap.String("dir", dir),
		zap.Int("payments", ix.count(viewAll)),
	)
	return db, nil
}

func newDB(dir string, opts []Option) *DB {
	db := &DB{
		dir:      dir,
		pageSize: DefaultPageSize,
		logger:   zap.NewNop(),
		ix:       newIndex(),
	}
	db.lifetime, db.stop = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// sqliteDSN builds a file: URI for path. The path is escaped so characters
// such as '?' and '#' in a data directory are not read as URI syntax.
func sqliteDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Opaque:   escapePath(filepath.ToSlash(path)),
		RawQuery: "_busy_timeout=5000&_synchronous=FULL",
	}
	return u.String()
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func openGorm(path string) (*gorm.DB, error) {
	dsn := sqliteDSN(path)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// load validates the schema and decodes every row.
func load(gdb *gorm.DB) (*index, error) {
	corrupt := func(err error) error {
		return lexeerr.WithCause(lexeerr.ErrStoreCorrupt, err)
	}

	migrator := gdb.Migrator()
	if !migrator.HasTable(&metaRow{}) || !migrator.HasTable(&paymentRow{}) {
		// HasTable swallows errors, so probe the file to surface the cause.
		var n int64
		if err := gdb.Raw("SELECT count(*) FROM sqlite_master").Scan(&n).Error; err != nil {
			return nil, corrupt(err)
		}
		return nil, corrupt(errors.New("missing tables"))
	}

	var meta metaRow
	if err := gdb.Where(&metaRow{Key: metaKeySchemaVersion}).First(&meta).Error; err != nil {
		return nil, corrupt(fmt.Errorf("reading schema version: %w", err))
	}
	version, err := strconv.Atoi(meta.Value)
	if err != nil || version < 1 || version > schemaVersion {
		return nil, corrupt(fmt.Errorf("unsupported schema version %q", meta.Value))
	}

	var rows []paymentRow
	if err := gdb.Order("created_index").Find(&rows).Error; err != nil {
		return nil, corrupt(err)
	}

	ix := newIndex()
	for i := range rows {
		p, err := fromRow(&rows[i])
		if err != nil {
			return nil, corrupt(err)
		}
		ix.upsert(p)
	}
	return ix, nil
}

// Dir returns the store directory.
func (db *DB) Dir() string {
	return db.dir
}

// PageSize returns the number of records requested per sync page.
func (db *DB) PageSize() int {
	return db.pageSize
}

// Close releases the database handle. In-memory reads keep working.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closeLocked()
}

func (db *DB) closeLocked() error {
	if db.closed {
		return nil
	}
	db.closed = true
	db.stop()
	sqlDB, err := db.gdb.DB()
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	if err := sqlDB.Close(); err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return nil
}

// Delete removes the store directory and clears memory. The DB behaves like
// an empty, closed store afterwards.
func (db *DB) Delete() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.deleted {
		return nil
	}
	if err := db.closeLocked(); err != nil {
		db.logger.Warn("closing payments db before delete", zap.Error(err))
	}
	db.ix = newIndex()
	db.localNotes = nil
	db.deleted = true

	if err := os.RemoveAll(db.dir); err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	db.logger.Info("deleted payments db", zap.String("dir", db.dir))
	return nil
}

// LatestUpdatedIndex returns the sync cursor: the highest update index
// stored, or nil when the store is empty.
func (db *DB) LatestUpdatedIndex() *types.PaymentUpdatedIndex {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.ix.maxUpdated == nil {
		return nil
	}
	u := *db.ix.maxUpdated
	return &u
}

// NumPayments returns the number of stored payments.
func (db *DB) NumPayments() int { return db.count(viewAll) }

// NumPending returns the number of pending payments.
func (db *DB) NumPending() int { return db.count(viewPending) }

// NumPendingNotJunk returns the number of pending, non-junk payments.
func (db *DB) NumPendingNotJunk() int { return db.count(viewPendingNotJunk) }

// NumFinalized returns the number of finalized payments.
func (db *DB) NumFinalized() int { return db.count(viewFinalized) }

// NumFinalizedNotJunk returns the number of finalized, non-junk payments.
func (db *DB) NumFinalizedNotJunk() int { return db.count(viewFinalizedNotJunk) }

func (db *DB) count(v view) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ix.count(v)
}

// GetPaymentByCreatedIndex returns a copy of the payment, or nil.
func (db *DB) GetPaymentByCreatedIndex(idx types.PaymentCreatedIndex) *types.BasicPayment {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ix.byCreated[idx].Clone()
}

// GetPaymentByScrollIdx returns the i-th payment, newest first, or nil.
func (db *DB) GetPaymentByScrollIdx(i int) *types.BasicPayment {
	return db.at(viewAll, i)
}

// GetPendingPaymentByScrollIdx returns the i-th pending payment, or nil.
func (db *DB) GetPendingPaymentByScrollIdx(i int) *types.BasicPayment {
	return db.at(viewPending, i)
}

// GetPendingNotJunkPaymentByScrollIdx returns the i-th pending, non-junk
// payment, or nil.
func (db *DB) GetPendingNotJunkPaymentByScrollIdx(i int) *types.BasicPayment {
	return db.at(viewPendingNotJunk, i)
}

// GetFinalizedPaymentByScrollIdx returns the i-th finalized payment, or nil.
func (db *DB) GetFinalizedPaymentByScrollIdx(i int) *types.BasicPayment {
	return db.at(viewFinalized, i)
}

// GetFinalizedNotJunkPaymentByScrollIdx returns the i-th finalized, non-junk
// payment, or nil.
func (db *DB) GetFinalizedNotJunkPaymentByScrollIdx(i int) *types.BasicPayment {
	return db.at(viewFinalizedNotJunk, i)
}

func (db *DB) at(v view, i int) *types.BasicPayment {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.ix.at(v, i).Clone()
}

// writeLocked persists records in one transaction. Callers hold mu.
func (db *DB) writeLocked(records []*types.BasicPayment) error {
	if db.closed {
		return lexeerr.ErrStoreClosed
	}
	rows := make([]*paymentRow, 0, len(records))
	for _, p := range records {
		row, err := toRow(p)
		if err != nil {
			return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
		}
		rows = append(rows, row)
	}
	err := db.gdb.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return lexeerr.WithCause(lexeerr.ErrStoreIO, err)
	}
	return nil
}
