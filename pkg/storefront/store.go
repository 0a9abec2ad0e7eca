package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/coffeemania/pkg/db"
)

// SessionStore persists the session state between process runs.
type SessionStore interface {
	LoadSession(ctx context.Context) (State, error)
	SaveSession(ctx context.Context, st State) error
}

type MemoryStore struct {
	mu      sync.Mutex
	entries []MirrorEntry
	state   State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: Guest{}}
}

func (s *MemoryStore) Load(context.Context) ([]MirrorEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MirrorEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, entries []MirrorEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]MirrorEntry, len(entries))
	copy(s.entries, entries)
	return nil
}

func (s *MemoryStore) LoadSession(context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, nil
}

func (s *MemoryStore) SaveSession(_ context.Context, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return nil
}

type mirrorRow struct {
	ProductID uint `gorm:"primaryKey;autoIncrement:false"`
	Position  int  `gorm:"not null"`
	Name      string
	Price     decimal.Decimal `gorm:"type:text;not null"`
	Image     string
	Quantity  int `gorm:"not null"`
}

func (mirrorRow) TableName() string { return "mirror_entries" }

type sessionRow struct {
	ID     uint `gorm:"primaryKey;autoIncrement:false"`
	UserID uint
	Token  string
}

func (sessionRow) TableName() string { return "session" }

// SQLiteStore keeps the mirror and the session token in a local SQLite file.
type SQLiteStore struct {
	db *gorm.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	gdb, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := gdb.AutoMigrate(&mirrorRow{}, &sessionRow{}); err != nil {
		_ = db.Close(gdb)
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &SQLiteStore{db: gdb}, nil
}

func (s *SQLiteStore) Close() error {
	return db.Close(s.db)
}

func (s *SQLiteStore) Load(ctx context.Context) ([]MirrorEntry, error) {
	var rows []mirrorRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load mirror entries: %w", err)
	}
	out := make([]MirrorEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, MirrorEntry{ID: r.ProductID, Name: r.Name, Price: r.Price, Image: r.Image, Quantity: r.Quantity})
	}
	return out, nil
}

func (s *SQLiteStore) Save(ctx context.Context, entries []MirrorEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM mirror_entries").Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]mirrorRow, 0, len(entries))
		for i, e := range entries {
			rows = append(rows, mirrorRow{ProductID: e.ID, Position: i, Name: e.Name, Price: e.Price, Image: e.Image, Quantity: e.Quantity})
		}
		return tx.Create(&rows).Error
	})
}

func (s *SQLiteStore) LoadSession(ctx context.Context) (State, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Guest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return Authenticated{UserID: row.UserID, Token: row.Token}, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, st State) error {
	tx := s.db.WithContext(ctx)
	switch st := st.(type) {
	case Authenticated:
		return tx.Save(&sessionRow{ID: 1, UserID: st.UserID, Token: st.Token}).Error
	default:
		return tx.Exec("DELETE FROM session").Error
	}
}
