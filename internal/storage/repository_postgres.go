package storage

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"github.com/luxeshop/luxe-shop-backend/internal/store"
)

// PostgresRepository keeps one snapshot row per namespace key. The JSON
// blob is authoritative; the product-id array is denormalized alongside
// it for ad-hoc SQL and never read back.
type PostgresRepository struct {
	db *sql.DB
}

const (
	upsertSnapshotQuery = `
        INSERT INTO store_snapshots (key, data, "productIds", "updatedAt")
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (key) DO UPDATE
        SET data = EXCLUDED.data,
            "productIds" = EXCLUDED."productIds",
            "updatedAt" = EXCLUDED."updatedAt"
    `
	loadSnapshotQuery = `SELECT data FROM store_snapshots WHERE key = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate ensures the snapshot table exists.
func (r *PostgresRepository) Migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS store_snapshots (
        key TEXT PRIMARY KEY,
        data jsonb NOT NULL DEFAULT '{}',
        "productIds" integer[] NOT NULL DEFAULT '{}',
        "updatedAt" TEXT
    )`)
	return err
}

func (r *PostgresRepository) Save(key string, snap store.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ids := make([]int, 0, len(snap.Cart))
	for _, line := range snap.Cart {
		ids = append(ids, line.ProductID)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.Exec(upsertSnapshotQuery, key, string(data), pq.Array(ids), now)
	return err
}

func (r *PostgresRepository) Load(key string) (store.Snapshot, error) {
	var raw string
	if err := r.db.QueryRow(loadSnapshotQuery, key).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return store.Snapshot{}, ErrNotFound
		}
		return store.Snapshot{}, err
	}
	var snap store.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return store.Snapshot{}, err
	}
	return snap, nil
}
