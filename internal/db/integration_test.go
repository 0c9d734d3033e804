// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/toeirei/clientbook/internal/model"
)

// Server integration tests run against POSTGRES_DSN / MYSQL_DSN when set.
// With CLIENTBOOK_TEST_CONTAINERS=1 they start throwaway containers instead.
// Otherwise they are skipped to keep local developer test runs fast.

type serverDB struct {
	once      sync.Once
	dsn       string
	container testcontainers.Container
	err       error
}

var (
	postgresServer serverDB
	mysqlServer    serverDB
)

func TestMain(m *testing.M) {
	code := m.Run()
	for _, s := range []*serverDB{&postgresServer, &mysqlServer} {
		if s.container != nil {
			_ = s.container.Terminate(context.Background())
		}
	}
	os.Exit(code)
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest) (c testcontainers.Container, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("docker not available: %v", r)
		}
	}()
	return testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
}

func postgresDSNForTest(t *testing.T) string {
	t.Helper()
	postgresServer.once.Do(func() {
		if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
			postgresServer.dsn = dsn
			return
		}
		if os.Getenv("CLIENTBOOK_TEST_CONTAINERS") != "1" {
			postgresServer.err = errors.New("POSTGRES_DSN not set")
			return
		}
		ctx := context.Background()
		c, err := startContainer(ctx, testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_DB": "clients_test"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(90 * time.Second),
		})
		if err != nil {
			postgresServer.err = err
			return
		}
		postgresServer.container = c
		host, err := c.Host(ctx)
		if err != nil {
			postgresServer.err = err
			return
		}
		port, err := c.MappedPort(ctx, "5432")
		if err != nil {
			postgresServer.err = err
			return
		}
		postgresServer.dsn = postgresDSN(ConnParams{Name: "clients_test", User: "postgres", Password: "postgres", Host: host, Port: port.Int()}) + "?sslmode=disable"
	})
	if postgresServer.err != nil {
		t.Skipf("postgres unavailable; skipping: %v", postgresServer.err)
	}
	return postgresServer.dsn
}

func mysqlDSNForTest(t *testing.T) string {
	t.Helper()
	mysqlServer.once.Do(func() {
		if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
			mysqlServer.dsn = dsn
			return
		}
		if os.Getenv("CLIENTBOOK_TEST_CONTAINERS") != "1" {
			mysqlServer.err = errors.New("MYSQL_DSN not set")
			return
		}
		ctx := context.Background()
		c, err := startContainer(ctx, testcontainers.ContainerRequest{
			Image:        "mysql:8.4",
			ExposedPorts: []string{"3306/tcp"},
			Env:          map[string]string{"MYSQL_ROOT_PASSWORD": "root", "MYSQL_DATABASE": "clients_test"},
			WaitingFor:   wait.ForListeningPort("3306/tcp").WithStartupTimeout(120 * time.Second),
		})
		if err != nil {
			mysqlServer.err = err
			return
		}
		mysqlServer.container = c
		host, err := c.Host(ctx)
		if err != nil {
			mysqlServer.err = err
			return
		}
		port, err := c.MappedPort(ctx, "3306")
		if err != nil {
			mysqlServer.err = err
			return
		}
		mysqlServer.dsn = mysqlDSN(ConnParams{Name: "clients_test", User: "root", Password: "root", Host: host, Port: port.Int()})
	})
	if mysqlServer.err != nil {
		t.Skipf("mysql unavailable; skipping: %v", mysqlServer.err)
	}
	return mysqlServer.dsn
}

// openServerStore retries for a short while to allow service startup in CI,
// then empties both tables.
func openServerStore(t *testing.T, engine Engine, dsn string) *BunStore {
	t.Helper()
	ctx := context.Background()
	var s *BunStore
	var err error
	for i := 0; i < 30; i++ {
		s, err = NewStoreFromDSN(ctx, engine, dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		t.Fatalf("failed to open %s store: %v", engine, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.ImportDataFromBackup(ctx, &model.BackupData{SchemaVersion: model.BackupSchemaVersion}); err != nil {
		t.Fatalf("wipe %s store: %v", engine, err)
	}
	return s
}

func TestIntegration_Postgres(t *testing.T) {
	s := openServerStore(t, EnginePostgres, postgresDSNForTest(t))
	exerciseServerStore(t, s)
}

func TestIntegration_MySQL(t *testing.T) {
	s := openServerStore(t, EngineMySQL, mysqlDSNForTest(t))
	exerciseServerStore(t, s)
}

// exerciseServerStore checks the behaviour that depends on the engine:
// aggregation syntax, constraint error mapping, cascade and sequences.
func exerciseServerStore(t *testing.T, s *BunStore) {
	t.Helper()
	ctx := context.Background()

	id, err := s.AddClient(ctx, "Ivan", "Petrov", "ivan@example.com", []string{"+1000", "+1001"})
	if err != nil {
		t.Fatalf("AddClient failed on %s: %v", s.engine, err)
	}
	got, err := s.GetClient(ctx, id)
	if err != nil {
		t.Fatalf("GetClient failed on %s: %v", s.engine, err)
	}
	if got.Phones != "+1000, +1001" || got.PhoneCount != 2 {
		t.Fatalf("unexpected aggregation on %s: %+v", s.engine, got)
	}

	if _, err := s.AddClient(ctx, "Other", "Ivan", "ivan@example.com", []string{"+1"}); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail on %s, got %v", s.engine, err)
	}
	if _, err := s.AddPhone(ctx, id+1000, "+1"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound on %s, got %v", s.engine, err)
	}
	if _, err := ExecRaw(ctx, s.bun, "INSERT INTO phones (client_id, phone_number) VALUES (?, ?)", id+1000, "+1"); !errors.Is(MapDBError(err), ErrReferentialViolation) {
		t.Fatalf("expected ErrReferentialViolation on %s, got %v", s.engine, err)
	}

	found, err := s.FindClients(ctx, model.SearchCriteria{FirstName: model.Some("VA"), Phone: model.Some("1001")})
	if err != nil || len(found) != 1 || found[0].PhoneCount != 2 {
		t.Fatalf("search on %s: %+v, %v", s.engine, found, err)
	}

	backup, err := s.ExportDataForBackup(ctx)
	if err != nil {
		t.Fatalf("ExportDataForBackup failed on %s: %v", s.engine, err)
	}
	if err := s.ImportDataFromBackup(ctx, backup); err != nil {
		t.Fatalf("ImportDataFromBackup failed on %s: %v", s.engine, err)
	}
	next := mustAddClient(t, s, "Anna", "Ivanova", "anna@example.com")
	if next <= id {
		t.Fatalf("sequence not advanced past imported ids on %s: %d <= %d", s.engine, next, id)
	}

	if err := s.DeleteClient(ctx, id); err != nil {
		t.Fatalf("DeleteClient failed on %s: %v", s.engine, err)
	}
	var left int
	if err := QueryRawInto(ctx, s.bun, &left, "SELECT COUNT(*) FROM phones WHERE client_id = ?", id); err != nil || left != 0 {
		t.Fatalf("cascade on %s left %d phones (%v)", s.engine, left, err)
	}
}
