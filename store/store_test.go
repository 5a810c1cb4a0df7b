package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/padronhq/padron"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "padron.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedStaff(t *testing.T, s *Store, subject string, role padron.Role) {
	t.Helper()

	err := s.Staff().Create(context.Background(), padron.Account{
		Subject:      subject,
		Name:         "Cuenta " + subject,
		Role:         role,
		Active:       true,
		PasswordHash: "$argon2id$stub",
	})
	if err != nil {
		t.Fatalf("Create staff failed: %v", err)
	}
}

func TestStaffRoundTrip(t *testing.T) {
	s := newTestStore(t)
	seedStaff(t, s, "ana", padron.RoleAdmin)

	account, err := s.Staff().FindBySubject(context.Background(), "ana")
	if err != nil {
		t.Fatalf("FindBySubject failed: %v", err)
	}
	if account.Role != padron.RoleAdmin || !account.Active || account.RevocationEpoch != 0 {
		t.Fatalf("unexpected account: %+v", account)
	}

	_, err = s.Staff().FindBySubject(context.Background(), "nadie")
	if !errors.Is(err, padron.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestStaffCreateRejectsUnknownRole(t *testing.T) {
	s := newTestStore(t)

	err := s.Staff().Create(context.Background(), padron.Account{Subject: "x"})
	if !errors.Is(err, padron.ErrRoleInvalid) {
		t.Fatalf("err = %v, want ErrRoleInvalid", err)
	}
}

func TestBumpRevocationEpochIncrementsByOne(t *testing.T) {
	s := newTestStore(t)
	seedStaff(t, s, "ana", padron.RoleOperator)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := s.Staff().BumpRevocationEpoch(ctx, "ana"); err != nil {
			t.Fatalf("bump %d failed: %v", i, err)
		}
		account, err := s.Staff().FindBySubject(ctx, "ana")
		if err != nil {
			t.Fatalf("FindBySubject failed: %v", err)
		}
		if account.RevocationEpoch != uint32(i) {
			t.Fatalf("epoch after bump %d = %d", i, account.RevocationEpoch)
		}
	}

	if err := s.Staff().BumpRevocationEpoch(ctx, "nadie"); !errors.Is(err, padron.ErrAccountNotFound) {
		t.Fatalf("err = %v, want ErrAccountNotFound", err)
	}
}

func TestStaffWrites(t *testing.T) {
	s := newTestStore(t)
	seedStaff(t, s, "ana", padron.RoleOperator)
	ctx := context.Background()

	if err := s.Staff().UpdatePasswordHash(ctx, "ana", "$argon2id$nuevo"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}
	if err := s.Staff().SetActive(ctx, "ana", false); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	account, err := s.Staff().FindBySubject(ctx, "ana")
	if err != nil {
		t.Fatalf("FindBySubject failed: %v", err)
	}
	if account.PasswordHash != "$argon2id$nuevo" || account.Active {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestConfigFallbackAndSet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Seeded by the initial migration.
	value, err := s.Config().GetConfig(ctx, "MODO_MANTENIMIENTO", "false")
	if err != nil || value != "false" {
		t.Fatalf("GetConfig = %q, %v", value, err)
	}

	value, err = s.Config().GetConfig(ctx, "NO_EXISTE", "defecto")
	if err != nil || value != "defecto" {
		t.Fatalf("missing key GetConfig = %q, %v", value, err)
	}

	if err := s.Config().Set(ctx, "MODO_MANTENIMIENTO", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err = s.Config().GetConfig(ctx, "MODO_MANTENIMIENTO", "false")
	if err != nil || value != "true" {
		t.Fatalf("after Set GetConfig = %q, %v", value, err)
	}

	all, err := s.Config().All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if all["MODO_MANTENIMIENTO"] != "true" {
		t.Fatalf("All = %v", all)
	}
}

func TestSociosCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	socio := &Socio{Numero: 17, Nombre: "María Pérez", Documento: "12345678", Categoria: "activo", AlDia: true}
	if err := s.Socios().Create(ctx, socio); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if socio.ID == "" {
		t.Fatal("Create must assign an ID")
	}

	got, err := s.Socios().GetByNumero(ctx, 17)
	if err != nil {
		t.Fatalf("GetByNumero failed: %v", err)
	}
	if got.Nombre != "María Pérez" || !got.AlDia {
		t.Fatalf("unexpected socio: %+v", got)
	}

	got.Categoria = "vitalicio"
	got.AlDia = false
	if err := s.Socios().Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err = s.Socios().GetByID(ctx, socio.ID)
	if err != nil || got.Categoria != "vitalicio" || got.AlDia {
		t.Fatalf("after Update: %+v, %v", got, err)
	}

	if err := s.Socios().Delete(ctx, socio.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Socios().GetByID(ctx, socio.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSociosReplaceAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Socios().Create(ctx, &Socio{Numero: 1, Nombre: "Vieja"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fresh := []Socio{
		{Numero: 10, Nombre: "Nueva Uno", AlDia: true},
		{Numero: 11, Nombre: "Nueva Dos"},
	}
	if err := s.Socios().ReplaceAll(ctx, fresh); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	socios, err := s.Socios().List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(socios) != 2 || socios[0].Numero != 10 || socios[1].Numero != 11 {
		t.Fatalf("unexpected registry: %+v", socios)
	}

	// A failing replace leaves the old registry intact: duplicate numero in
	// the new batch aborts the transaction.
	bad := []Socio{{Numero: 20, Nombre: "A"}, {Numero: 20, Nombre: "B"}}
	if err := s.Socios().ReplaceAll(ctx, bad); err == nil {
		t.Fatal("ReplaceAll with duplicate numero must fail")
	}
	count, err := s.Socios().Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("count after failed replace = %d, %v", count, err)
	}
}

func TestAssembliesLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assembly := &Assembly{Titulo: "Asamblea ordinaria", Fecha: time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC)}
	if err := s.Assemblies().Create(ctx, assembly); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if assembly.Estado != AssemblyProgramada {
		t.Fatalf("estado = %q, want programada", assembly.Estado)
	}

	if err := s.Assemblies().SetEstado(ctx, assembly.ID, AssemblyEnCurso); err != nil {
		t.Fatalf("SetEstado failed: %v", err)
	}
	if err := s.Assemblies().SetQuorum(ctx, assembly.ID, 48); err != nil {
		t.Fatalf("SetQuorum failed: %v", err)
	}
	if err := s.Assemblies().SetEstado(ctx, assembly.ID, "inventado"); err == nil {
		t.Fatal("invalid state must be rejected")
	}

	got, err := s.Assemblies().GetByID(ctx, assembly.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Estado != AssemblyEnCurso || got.Quorum != 48 {
		t.Fatalf("unexpected assembly: %+v", got)
	}
}

func TestResets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedStaff(t, s, "ana", padron.RoleAdmin)
	if err := s.Socios().Create(ctx, &Socio{Numero: 1, Nombre: "Socio"}); err != nil {
		t.Fatalf("Create socio failed: %v", err)
	}
	if err := s.Assemblies().Create(ctx, &Assembly{Titulo: "A", Fecha: time.Now()}); err != nil {
		t.Fatalf("Create assembly failed: %v", err)
	}

	if err := s.ResetPadron(ctx); err != nil {
		t.Fatalf("ResetPadron failed: %v", err)
	}
	count, _ := s.Socios().Count(ctx)
	if count != 0 {
		t.Fatalf("socios after padron reset = %d", count)
	}
	assemblies, _ := s.Assemblies().List(ctx)
	if len(assemblies) != 1 {
		t.Fatal("padron reset must not touch assemblies")
	}

	if err := s.ResetSystem(ctx); err != nil {
		t.Fatalf("ResetSystem failed: %v", err)
	}
	assemblies, _ = s.Assemblies().List(ctx)
	if len(assemblies) != 0 {
		t.Fatal("system reset must clear assemblies")
	}
	if _, err := s.Staff().FindBySubject(ctx, "ana"); err != nil {
		t.Fatalf("staff must survive a system reset: %v", err)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "padron.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	seedStaff(t, s, "ana", padron.RoleAdmin)
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Staff().FindBySubject(context.Background(), "ana"); err != nil {
		t.Fatalf("data must survive reopen: %v", err)
	}
}
