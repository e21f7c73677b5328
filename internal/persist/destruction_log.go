package persist

import (
	"context"
	"fmt"
)

// DestructionEntry is one destroyed unit, appended from UnitDestroyed events.
type DestructionEntry struct {
	UnitID        int32
	Team          int
	Type          string
	X, Y          float64
	Explosiveness float64
	Flying        bool
	Tick          uint64
}

type DestructionLog struct {
	db *DB
}

func NewDestructionLog(db *DB) *DestructionLog {
	return &DestructionLog{db: db}
}

// Append writes a batch of entries in a single transaction.
func (l *DestructionLog) Append(ctx context.Context, entries []DestructionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := l.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("destruction log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO destruction_log (unit_id, team, type, x, y, explosiveness, flying, tick)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.UnitID, int32(e.Team), e.Type, e.X, e.Y, e.Explosiveness, e.Flying, int64(e.Tick),
		); err != nil {
			return fmt.Errorf("destruction log insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Recent returns the newest entries, newest first.
func (l *DestructionLog) Recent(ctx context.Context, limit int) ([]DestructionEntry, error) {
	rows, err := l.db.Pool.Query(ctx,
		`SELECT unit_id, team, type, x, y, explosiveness, flying, tick
		 FROM destruction_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query destruction log: %w", err)
	}
	defer rows.Close()

	var out []DestructionEntry
	for rows.Next() {
		var e DestructionEntry
		var team int32
		var tick int64
		if err := rows.Scan(&e.UnitID, &team, &e.Type, &e.X, &e.Y, &e.Explosiveness, &e.Flying, &tick); err != nil {
			return nil, fmt.Errorf("scan destruction log: %w", err)
		}
		e.Team = int(team)
		e.Tick = uint64(tick)
		out = append(out, e)
	}
	return out, rows.Err()
}
