package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assembly states form a one-way progression.
const (
	AssemblyProgramada = "programada"
	AssemblyEnCurso    = "en_curso"
	AssemblyCerrada    = "cerrada"
)

// Assembly is a scheduled member assembly.
type Assembly struct {
	ID     string    `json:"id"`
	Titulo string    `json:"titulo"`
	Fecha  time.Time `json:"fecha"`
	Estado string    `json:"estado"`
	Quorum int       `json:"quorum"`
}

// AssembliesStore persists assemblies.
type AssembliesStore struct {
	db *sql.DB
}

// Create inserts an assembly in the programada state.
func (s *AssembliesStore) Create(ctx context.Context, assembly *Assembly) error {
	if assembly.ID == "" {
		assembly.ID = uuid.NewString()
	}
	if assembly.Estado == "" {
		assembly.Estado = AssemblyProgramada
	}
	if !validAssemblyState(assembly.Estado) {
		return fmt.Errorf("%w: %q", ErrInvalidState, assembly.Estado)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assemblies (id, titulo, fecha, estado, quorum)
		VALUES (?, ?, ?, ?, ?)
	`, assembly.ID, assembly.Titulo, assembly.Fecha.UTC(), assembly.Estado, assembly.Quorum)
	if err != nil {
		return fmt.Errorf("store: create assembly: %w", err)
	}

	return nil
}

// GetByID returns one assembly or ErrNotFound.
func (s *AssembliesStore) GetByID(ctx context.Context, id string) (*Assembly, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, titulo, fecha, estado, quorum FROM assemblies WHERE id = ?
	`, id)

	var assembly Assembly
	err := row.Scan(&assembly.ID, &assembly.Titulo, &assembly.Fecha, &assembly.Estado, &assembly.Quorum)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get assembly: %w", err)
	}

	return &assembly, nil
}

// List returns assemblies newest first.
func (s *AssembliesStore) List(ctx context.Context) ([]Assembly, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, titulo, fecha, estado, quorum FROM assemblies ORDER BY fecha DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list assemblies: %w", err)
	}
	defer rows.Close()

	var assemblies []Assembly
	for rows.Next() {
		var assembly Assembly
		if err := rows.Scan(
			&assembly.ID, &assembly.Titulo, &assembly.Fecha, &assembly.Estado, &assembly.Quorum,
		); err != nil {
			return nil, fmt.Errorf("store: scan assembly: %w", err)
		}
		assemblies = append(assemblies, assembly)
	}

	return assemblies, rows.Err()
}

// SetEstado moves an assembly to a new state.
func (s *AssembliesStore) SetEstado(ctx context.Context, id, estado string) error {
	if !validAssemblyState(estado) {
		return fmt.Errorf("%w: %q", ErrInvalidState, estado)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE assemblies SET estado = ? WHERE id = ?`, estado, id)
	if err != nil {
		return fmt.Errorf("store: update assembly: %w", err)
	}
	return requireAffected(res)
}

// SetQuorum records the attendance count of an assembly.
func (s *AssembliesStore) SetQuorum(ctx context.Context, id string, quorum int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assemblies SET quorum = ? WHERE id = ?`, quorum, id)
	if err != nil {
		return fmt.Errorf("store: update assembly: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an assembly.
func (s *AssembliesStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assemblies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete assembly: %w", err)
	}
	return requireAffected(res)
}

func validAssemblyState(estado string) bool {
	switch estado {
	case AssemblyProgramada, AssemblyEnCurso, AssemblyCerrada:
		return true
	default:
		return false
	}
}
