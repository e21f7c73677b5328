package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/unitsim/internal/unit"
)

// UnitRepo stores the latest snapshot of every unit. A save replaces the
// whole table in one transaction, so a crash leaves the previous save intact.
type UnitRepo struct {
	db *DB
}

func NewUnitRepo(db *DB) *UnitRepo {
	return &UnitRepo{db: db}
}

const insertUnit = `INSERT INTO units (id, team, type, x, y, rotation, elevation, vel_x, vel_y,
	health, ammo, flag, item, item_amount, spawned_by_core, factory_id,
	max_health, armor, hit_size, drag, dead)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

func (r *UnitRepo) SaveAll(ctx context.Context, snaps []unit.Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("save units begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM units`); err != nil {
		return fmt.Errorf("clear units: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range snaps {
		batch.Queue(insertUnit, unitArgs(s)...)
	}
	br := tx.SendBatch(ctx, batch)
	for range snaps {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert unit: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert units: %w", err)
	}

	return tx.Commit(ctx)
}

func unitArgs(s unit.Snapshot) []any {
	return []any{
		s.ID, int32(s.Team), s.Type, s.X, s.Y, s.Rotation, s.Elevation, s.VelX, s.VelY,
		s.Health, s.Ammo, s.Flag, s.Item, int32(s.ItemAmount), s.SpawnedByCore, s.FactoryID,
		s.MaxHealth, s.Armor, s.HitSize, s.Drag, s.Dead,
	}
}

// LoadAll returns the stored snapshots in ID order.
func (r *UnitRepo) LoadAll(ctx context.Context) ([]unit.Snapshot, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, team, type, x, y, rotation, elevation, vel_x, vel_y,
		        health, ammo, flag, item, item_amount, spawned_by_core, factory_id,
		        max_health, armor, hit_size, drag, dead
		 FROM units ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var out []unit.Snapshot
	for rows.Next() {
		var s unit.Snapshot
		var team, amount int32
		if err := rows.Scan(&s.ID, &team, &s.Type, &s.X, &s.Y, &s.Rotation, &s.Elevation,
			&s.VelX, &s.VelY, &s.Health, &s.Ammo, &s.Flag, &s.Item, &amount,
			&s.SpawnedByCore, &s.FactoryID, &s.MaxHealth, &s.Armor, &s.HitSize, &s.Drag, &s.Dead); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		s.Team = unit.Team(team)
		s.ItemAmount = int(amount)
		out = append(out, s)
	}
	return out, rows.Err()
}
