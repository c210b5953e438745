package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/game/cards"
)

const schema = `
CREATE TABLE IF NOT EXISTS card_templates (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL DEFAULT 0,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	rarity      TEXT NOT NULL,
	attack      INTEGER NOT NULL,
	defense     INTEGER NOT NULL,
	speed       INTEGER NOT NULL,
	health      INTEGER NOT NULL,
	max_level   INTEGER NOT NULL DEFAULT 0,
	abilities   JSONB NOT NULL DEFAULT '[]'
)`

const selectTemplates = `
SELECT id, name, description, category, rarity,
       attack, defense, speed, health, max_level, abilities
FROM card_templates
ORDER BY position, id`

const upsertTemplate = `
INSERT INTO card_templates (
	id, position, name, description, category, rarity,
	attack, defense, speed, health, max_level, abilities
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	position = EXCLUDED.position,
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	category = EXCLUDED.category,
	rarity = EXCLUDED.rarity,
	attack = EXCLUDED.attack,
	defense = EXCLUDED.defense,
	speed = EXCLUDED.speed,
	health = EXCLUDED.health,
	max_level = EXCLUDED.max_level,
	abilities = EXCLUDED.abilities`

// PostgresSource reads templates from the card_templates table.
type PostgresSource struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresSource connects to databaseURL and checks the connection.
func NewPostgresSource(ctx context.Context, databaseURL string, logger *zap.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("card catalog database connected",
		zap.Int32("max_conns", pool.Config().MaxConns),
	)
	return &PostgresSource{pool: pool, logger: logger}, nil
}

func (s *PostgresSource) Close() {
	s.pool.Close()
}

// EnsureSchema creates the card_templates table if it is missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create card_templates: %w", err)
	}
	return nil
}

// Templates implements Source.
func (s *PostgresSource) Templates(ctx context.Context) ([]cards.Template, error) {
	rows, err := s.pool.Query(ctx, selectTemplates)
	if err != nil {
		return nil, fmt.Errorf("query card templates: %w", err)
	}
	defer rows.Close()

	var templates []cards.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read card templates: %w", err)
	}
	s.logger.Debug("loaded card templates", zap.Int("count", len(templates)))
	return templates, nil
}

// Upsert writes templates in one transaction, keeping their order as the
// catalog position.
func (s *PostgresSource) Upsert(ctx context.Context, templates []cards.Template) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, t := range templates {
		abilities, err := json.Marshal(t.Abilities)
		if err != nil {
			return 0, fmt.Errorf("encode abilities of %s: %w", t.ID, err)
		}
		if t.Abilities == nil {
			abilities = []byte("[]")
		}
		if _, err := tx.Exec(ctx, upsertTemplate,
			t.ID, i, t.Name, t.Description, string(t.Category), string(t.Rarity),
			t.Attack, t.Defense, t.Speed, t.Health, t.MaxLevel, string(abilities),
		); err != nil {
			return 0, fmt.Errorf("upsert %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("card templates upserted", zap.Int("count", len(templates)))
	return len(templates), nil
}

func scanTemplate(row pgx.Row) (cards.Template, error) {
	var (
		t         cards.Template
		category  string
		rarity    string
		abilities []byte
	)
	if err := row.Scan(
		&t.ID, &t.Name, &t.Description, &category, &rarity,
		&t.Attack, &t.Defense, &t.Speed, &t.Health, &t.MaxLevel, &abilities,
	); err != nil {
		return cards.Template{}, fmt.Errorf("scan card template: %w", err)
	}
	t.Category = cards.Category(category)
	t.Rarity = cards.Rarity(rarity)
	if len(abilities) > 0 {
		if err := json.Unmarshal(abilities, &t.Abilities); err != nil {
			return cards.Template{}, fmt.Errorf("decode abilities of %s: %w", t.ID, err)
		}
	}
	return t, nil
}
