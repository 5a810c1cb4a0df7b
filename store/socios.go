package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Socio is one member-registry entry. Numero is the member number printed on
// the card; it is unique but not the primary key, because registries get
// renumbered and rows must survive that.
type Socio struct {
	ID        string    `json:"id"`
	Numero    int       `json:"numero"`
	Nombre    string    `json:"nombre"`
	Documento string    `json:"documento"`
	Categoria string    `json:"categoria"`
	AlDia     bool      `json:"al_dia"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SociosStore persists the member registry.
type SociosStore struct {
	db *sql.DB
}

// Create inserts a socio, assigning an ID when the caller did not.
func (s *SociosStore) Create(ctx context.Context, socio *Socio) error {
	if socio.ID == "" {
		socio.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO socios (id, numero, nombre, documento, categoria, al_dia)
		VALUES (?, ?, ?, ?, ?, ?)
	`, socio.ID, socio.Numero, socio.Nombre, socio.Documento, socio.Categoria,
		boolToInt(socio.AlDia))
	if err != nil {
		return fmt.Errorf("store: create socio: %w", err)
	}

	return nil
}

// GetByID returns one socio or ErrNotFound.
func (s *SociosStore) GetByID(ctx context.Context, id string) (*Socio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, numero, nombre, documento, categoria, al_dia, updated_at
		FROM socios WHERE id = ?
	`, id)
	return scanSocio(row)
}

// GetByNumero returns the socio holding a member number, or ErrNotFound.
func (s *SociosStore) GetByNumero(ctx context.Context, numero int) (*Socio, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, numero, nombre, documento, categoria, al_dia, updated_at
		FROM socios WHERE numero = ?
	`, numero)
	return scanSocio(row)
}

// List returns the registry ordered by member number.
func (s *SociosStore) List(ctx context.Context) ([]Socio, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, numero, nombre, documento, categoria, al_dia, updated_at
		FROM socios ORDER BY numero
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list socios: %w", err)
	}
	defer rows.Close()

	var socios []Socio
	for rows.Next() {
		socio, err := scanSocio(rows)
		if err != nil {
			return nil, err
		}
		socios = append(socios, *socio)
	}

	return socios, rows.Err()
}

// Update rewrites every mutable field of a socio.
func (s *SociosStore) Update(ctx context.Context, socio *Socio) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE socios SET numero = ?, nombre = ?, documento = ?, categoria = ?,
		                  al_dia = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, socio.Numero, socio.Nombre, socio.Documento, socio.Categoria,
		boolToInt(socio.AlDia), socio.ID)
	if err != nil {
		return fmt.Errorf("store: update socio: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a socio.
func (s *SociosStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM socios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete socio: %w", err)
	}
	return requireAffected(res)
}

// Count returns the registry size.
func (s *SociosStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM socios`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store: count socios: %w", err)
	}
	return count, nil
}

// ReplaceAll swaps the whole registry for the given entries in one
// transaction. Used by the padron reload: either the new registry lands
// complete or the old one stays.
func (s *SociosStore) ReplaceAll(ctx context.Context, socios []Socio) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM socios`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: clear socios: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO socios (id, numero, nombre, documento, categoria, al_dia)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("store: prepare insert: %w", err)
	}

	for i := range socios {
		socio := &socios[i]
		if socio.ID == "" {
			socio.ID = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx,
			socio.ID, socio.Numero, socio.Nombre, socio.Documento,
			socio.Categoria, boolToInt(socio.AlDia),
		); err != nil {
			stmt.Close()
			_ = tx.Rollback()
			return fmt.Errorf("store: insert socio %d: %w", socio.Numero, err)
		}
	}
	stmt.Close()

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSocio(row rowScanner) (*Socio, error) {
	var (
		socio Socio
		alDia int
	)
	err := row.Scan(
		&socio.ID, &socio.Numero, &socio.Nombre, &socio.Documento,
		&socio.Categoria, &alDia, &socio.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: scan socio: %w", err)
	}
	socio.AlDia = alDia != 0
	return &socio, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
