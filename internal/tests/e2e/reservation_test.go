//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/bookline/apiserver/config"
	"github.com/bookline/apiserver/internal/db"
	"github.com/bookline/apiserver/internal/server"
)

const serverPort = 18080

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/health"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		shutdown(srv)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	shutdown(srv)
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestReservationLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	email := fmt.Sprintf("alice_%d@example.com", time.Now().UnixNano())

	token, err := registerUser(t, baseURL, email, "testpass123!")
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	created, err := createReservation(t, baseURL, token)
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected reservation ID to be set")
	}
	if created.Status != "pending" {
		t.Fatalf("unexpected status: %q", created.Status)
	}

	updated, err := updateReservation(t, baseURL, token, created.ID)
	if err != nil {
		t.Fatalf("update reservation: %v", err)
	}
	if updated.Status != "confirmed" {
		t.Fatalf("unexpected updated status: %q", updated.Status)
	}

	total, err := listReservations(t, baseURL, token, "status=confirmed")
	if err != nil {
		t.Fatalf("list reservations: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 confirmed reservation, got %d", total)
	}

	if err := deleteReservation(t, baseURL, token, created.ID); err != nil {
		t.Fatalf("delete reservation: %v", err)
	}

	if err := expectReservationNotFound(t, baseURL, token, created.ID); err != nil {
		t.Fatalf("expected deleted reservation to be missing: %v", err)
	}
}

type reservationResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

func registerUser(t *testing.T, baseURL, email, password string) (string, error) {
	t.Helper()

	payload := map[string]string{
		"name":     "E2E Tester",
		"email":    email,
		"password": password,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/auth/register", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("register status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("missing token in register response")
	}
	return parsed.Data.Token, nil
}

func createReservation(t *testing.T, baseURL, token string) (reservationResponse, error) {
	t.Helper()

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	payload := map[string]string{
		"name":      "Alice Johnson",
		"email":     "alice@example.com",
		"phone":     "555-0100",
		"item_type": "room",
		"item_name": "Conference Room B",
		"start_at":  start.Format(time.RFC3339),
		"end_at":    start.Add(2 * time.Hour).Format(time.RFC3339),
	}
	return doReservation(t, http.MethodPost, baseURL+"/reservations", token, payload, http.StatusCreated)
}

func updateReservation(t *testing.T, baseURL, token string, id int) (reservationResponse, error) {
	t.Helper()

	payload := map[string]string{"status": "confirmed"}
	return doReservation(t, http.MethodPut, fmt.Sprintf("%s/reservations/%d", baseURL, id), token, payload, http.StatusOK)
}

func doReservation(t *testing.T, method, url, token string, payload map[string]string, wantStatus int) (reservationResponse, error) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		return reservationResponse{}, err
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return reservationResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return reservationResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		return reservationResponse{}, fmt.Errorf("%s %s status %d: %s", method, url, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Data reservationResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return reservationResponse{}, err
	}
	return parsed.Data, nil
}

func listReservations(t *testing.T, baseURL, token, query string) (int, error) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/reservations?"+query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("list status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Data struct {
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return parsed.Data.Meta.Total, nil
}

func deleteReservation(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/reservations/%d", baseURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func expectReservationNotFound(t *testing.T, baseURL, token string, id int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/reservations/%d", baseURL, id), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 404 after delete, got %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	deadline := time.Now().Add(time.Minute)
	for time.Now().Before(deadline) {
		conn, err := db.Open(ctx, cfg)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(time.Second)
	}
	return errors.New("timed out waiting for postgres")
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")
	migrator, err := migrate.New(migrationsURL, db.PostgresURL(cfg))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func startServer() (*server.Server, error) {
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "e2e-test-secret")
	}
	cfg := config.LoadConfig()
	cfg.ServerPort = serverPort
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")

	srv, err := server.New(context.Background(), cfg, nil)
	if err != nil {
		return nil, err
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server stopped: %v\n", err)
		}
	}()
	return srv, nil
}

func waitForHealth(ctx context.Context, url string) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(time.Second)
	}
	return errors.New("timed out waiting for health endpoint")
}

func shutdown(srv *server.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
