package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/padronhq/padron"
)

// StaffStore persists staff accounts. It satisfies padron.AccountManager, so
// the engine reads snapshots and writes epoch bumps through it directly.
type StaffStore struct {
	db *sql.DB
}

// FindBySubject returns the current account snapshot.
func (s *StaffStore) FindBySubject(ctx context.Context, subject string) (padron.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT subject, name, role, active, revocation_epoch, password_hash
		FROM staff WHERE subject = ?
	`, subject)

	var (
		account   padron.Account
		roleLabel string
		active    int
	)
	err := row.Scan(
		&account.Subject,
		&account.Name,
		&roleLabel,
		&active,
		&account.RevocationEpoch,
		&account.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return padron.Account{}, padron.ErrAccountNotFound
		}
		return padron.Account{}, fmt.Errorf("store: find staff: %w", err)
	}

	role, err := padron.ParseRole(roleLabel)
	if err != nil {
		return padron.Account{}, fmt.Errorf("store: staff %s: %w", subject, err)
	}
	account.Role = role
	account.Active = active != 0

	return account, nil
}

// Create inserts a staff account. The epoch starts at zero.
func (s *StaffStore) Create(ctx context.Context, account padron.Account) error {
	if account.Role == padron.RoleUnknown {
		return padron.ErrRoleInvalid
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff (subject, name, role, active, revocation_epoch, password_hash)
		VALUES (?, ?, ?, ?, ?, ?)
	`, account.Subject, account.Name, account.Role.String(), boolToInt(account.Active),
		account.RevocationEpoch, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("store: create staff: %w", err)
	}

	return nil
}

// UpdatePasswordHash stores a new password hash. The epoch bump that makes
// the change take effect is a separate write, driven by the engine.
func (s *StaffStore) UpdatePasswordHash(ctx context.Context, subject, newHash string) error {
	return s.exec(ctx, subject, `
		UPDATE staff SET password_hash = ?, updated_at = CURRENT_TIMESTAMP
		WHERE subject = ?
	`, newHash, subject)
}

// BumpRevocationEpoch advances the epoch by exactly one in a single UPDATE,
// so concurrent bumps never skip or repeat a value.
func (s *StaffStore) BumpRevocationEpoch(ctx context.Context, subject string) error {
	return s.exec(ctx, subject, `
		UPDATE staff SET revocation_epoch = revocation_epoch + 1,
		                 updated_at = CURRENT_TIMESTAMP
		WHERE subject = ?
	`, subject)
}

// SetActive toggles the account's active flag.
func (s *StaffStore) SetActive(ctx context.Context, subject string, active bool) error {
	return s.exec(ctx, subject, `
		UPDATE staff SET active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE subject = ?
	`, boolToInt(active), subject)
}

// List returns every staff account ordered by subject, without hashes.
func (s *StaffStore) List(ctx context.Context) ([]padron.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT subject, name, role, active, revocation_epoch
		FROM staff ORDER BY subject
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list staff: %w", err)
	}
	defer rows.Close()

	var accounts []padron.Account
	for rows.Next() {
		var (
			account   padron.Account
			roleLabel string
			active    int
		)
		if err := rows.Scan(
			&account.Subject, &account.Name, &roleLabel, &active, &account.RevocationEpoch,
		); err != nil {
			return nil, fmt.Errorf("store: scan staff: %w", err)
		}
		role, err := padron.ParseRole(roleLabel)
		if err != nil {
			return nil, fmt.Errorf("store: staff %s: %w", account.Subject, err)
		}
		account.Role = role
		account.Active = active != 0
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func (s *StaffStore) exec(ctx context.Context, subject, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("store: update staff: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update staff: %w", err)
	}
	if affected == 0 {
		return padron.ErrAccountNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
