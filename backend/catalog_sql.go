// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQL drivers supported by SQLCatalog.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var catalogSchema = []string{
	`CREATE TABLE IF NOT EXISTS players (
	   id TEXT PRIMARY KEY,
	   name TEXT NOT NULL,
	   ordinal INTEGER NOT NULL
	 )`,
	`CREATE TABLE IF NOT EXISTS player_stats (
	   player_id TEXT NOT NULL REFERENCES players(id),
	   attribute TEXT NOT NULL,
	   ordinal INTEGER NOT NULL,
	   score DOUBLE PRECISION NOT NULL,
	   PRIMARY KEY (player_id, attribute)
	 )`,
}

// SQLCatalog reads the catalog from a players table and a player_stats
// table, both ordered by their ordinal column.
type SQLCatalog struct {
	db     *sql.DB
	driver string
}

// OpenSQLCatalog opens the database and creates the schema if needed.
func OpenSQLCatalog(ctx context.Context, driver, dsn string) (*SQLCatalog, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("catalog dsn is required")
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}
	if driver == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	for _, stmt := range catalogSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLCatalog{db: db, driver: driver}, nil
}

// Close closes the database handle.
func (s *SQLCatalog) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// placeholder returns the n-th (1-based) bind parameter for the driver.
func (s *SQLCatalog) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// LoadPlayers reads all players with their stats in catalog order.
func (s *SQLCatalog) LoadPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, st.attribute, st.score
		   FROM players p
		   LEFT JOIN player_stats st ON st.player_id = p.id
		  ORDER BY p.ordinal, p.id, st.ordinal`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var (
			id, name  string
			attribute sql.NullString
			score     sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &attribute, &score); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		if len(players) == 0 || players[len(players)-1].ID != id {
			players = append(players, Player{ID: id, Name: name, Stats: Stats{}})
		}
		if attribute.Valid && score.Valid {
			p := &players[len(players)-1]
			p.Stats = append(p.Stats, Stat{Name: attribute.String, Score: score.Float64})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

// ReplacePlayers deletes the stored catalog and writes players in one
// transaction.
func (s *SQLCatalog) ReplacePlayers(ctx context.Context, players []Player) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := s.writePlayers(ctx, tx, players, true); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SeedPlayers writes players if the players table is empty.
func (s *SQLCatalog) SeedPlayers(ctx context.Context, players []Player) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&count); err != nil {
		return false, fmt.Errorf("count players: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.writePlayers(ctx, tx, players, false); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return true, nil
}

func (s *SQLCatalog) writePlayers(ctx context.Context, tx *sql.Tx, players []Player, clear bool) error {
	if clear {
		if _, err := tx.ExecContext(ctx, `DELETE FROM player_stats`); err != nil {
			return fmt.Errorf("clear stats: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM players`); err != nil {
			return fmt.Errorf("clear players: %w", err)
		}
	}
	insertPlayer := fmt.Sprintf(`INSERT INTO players (id, name, ordinal) VALUES (%s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3))
	insertStat := fmt.Sprintf(`INSERT INTO player_stats (player_id, attribute, ordinal, score) VALUES (%s, %s, %s, %s)`,
		s.placeholder(1), s.placeholder(2), s.placeholder(3), s.placeholder(4))

	for i, p := range players {
		if _, err := tx.ExecContext(ctx, insertPlayer, p.ID, p.Name, i); err != nil {
			return fmt.Errorf("insert player %q: %w", p.ID, err)
		}
		for j, st := range p.Stats {
			if _, err := tx.ExecContext(ctx, insertStat, p.ID, st.Name, j, st.Score); err != nil {
				return fmt.Errorf("insert stat %q of player %q: %w", st.Name, p.ID, err)
			}
		}
	}
	return nil
}
