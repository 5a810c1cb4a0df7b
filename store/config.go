package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ConfigStore persists runtime configuration as key/value rows. It satisfies
// maintenance.ConfigReader, so the engine's flag source reads straight from
// the app_config table.
type ConfigStore struct {
	db *sql.DB
}

// GetConfig returns the stored value, or fallback when the key is absent. An
// absent key is not an error: missing flags read as their documented default.
func (c *ConfigStore) GetConfig(ctx context.Context, key, fallback string) (string, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM app_config WHERE key = ?`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		return "", fmt.Errorf("store: get config: %w", err)
	}
	return value, nil
}

// Set upserts a configuration value.
func (c *ConfigStore) Set(ctx context.Context, key, value string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO app_config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		                               updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: set config: %w", err)
	}
	return nil
}

// All returns every configuration row.
func (c *ConfigStore) All(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM app_config`)
	if err != nil {
		return nil, fmt.Errorf("store: list config: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("store: scan config: %w", err)
		}
		out[key] = value
	}

	return out, rows.Err()
}
