// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/clusterscope/clusterscope/pkg/defaults"
	"github.com/clusterscope/clusterscope/pkg/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLStore implements Store on top of sqlx, for SQLite and PostgreSQL.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database and applies pending migrations.
// For SQLite, dsn is a file path or ":memory:".
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		// a single connection serialises writers and keeps ":memory:" databases
		// shared across callers
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA journal_mode = WAL"} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	} else {
		db.SetMaxOpenConns(defaults.StoreMaxOpenConns)
		db.SetMaxIdleConns(defaults.StoreMaxIdleConns)
		db.SetConnMaxLifetime(defaults.StoreConnMaxLifetime)
	}

	s := &SQLStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate %s store: %w", driver, err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_versions (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")

		var count int
		if err := s.db.GetContext(ctx, &count,
			s.db.Rebind(`SELECT COUNT(*) FROM schema_versions WHERE version = ?`), version); err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if count > 0 {
			continue
		}

		body, err := migrationsFS.ReadFile(name)
		if err != nil {
			return err
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(body)) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("apply migration %s: %w", version, err)
			}
		}
		if _, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO schema_versions (version, applied_at) VALUES (?, ?)`),
			version, formatTime(s.now())); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Debug("applied store migration", "version", version)
	}
	return nil
}

func splitStatements(body string) []string {
	var out []string
	for _, stmt := range strings.Split(body, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// Clusters

type clusterRow struct {
	ID             string        `db:"id"`
	Name           string        `db:"name"`
	Synced         bool          `db:"synced"`
	NumberOfNodes  sql.NullInt64 `db:"number_of_nodes"`
	EnvironmentIDs string        `db:"environment_ids"`
}

const clusterColumns = `id, name, synced, number_of_nodes, environment_ids`

func (r *clusterRow) toModel() (*model.Cluster, error) {
	c := &model.Cluster{ID: r.ID, Name: r.Name, Synced: r.Synced}
	if r.NumberOfNodes.Valid {
		n := int(r.NumberOfNodes.Int64)
		c.NumberOfNodes = &n
	}
	if err := decodeJSON(r.EnvironmentIDs, &c.EnvironmentIDs, "cluster", "environment_ids", r.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// FindClusterByName returns the cluster with the given name, or nil.
func (s *SQLStore) FindClusterByName(ctx context.Context, name string) (*model.Cluster, error) {
	return s.getCluster(ctx, `SELECT `+clusterColumns+` FROM clusters WHERE name = ?`, name)
}

// FindClusterByID returns the cluster with the given id, or nil.
func (s *SQLStore) FindClusterByID(ctx context.Context, id string) (*model.Cluster, error) {
	return s.getCluster(ctx, `SELECT `+clusterColumns+` FROM clusters WHERE id = ?`, id)
}

func (s *SQLStore) getCluster(ctx context.Context, query string, arg any) (*model.Cluster, error) {
	var row clusterRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(query), arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cluster: %w", err)
	}
	return row.toModel()
}

// ListClusters returns all clusters ordered by name.
func (s *SQLStore) ListClusters(ctx context.Context) ([]*model.Cluster, error) {
	var rows []clusterRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+clusterColumns+` FROM clusters ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	out := make([]*model.Cluster, 0, len(rows))
	for i := range rows {
		c, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// UpsertCluster inserts or updates the cluster by name.
func (s *SQLStore) UpsertCluster(ctx context.Context, c *model.Cluster) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	envIDs, err := encodeJSON(nonNilSlice(c.EnvironmentIDs), "cluster", "environment_ids", c.ID)
	if err != nil {
		return err
	}
	var nodes sql.NullInt64
	if c.NumberOfNodes != nil {
		nodes = sql.NullInt64{Int64: int64(*c.NumberOfNodes), Valid: true}
	}

	query := s.db.Rebind(`
		INSERT INTO clusters (id, name, synced, number_of_nodes, environment_ids, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			synced = excluded.synced,
			number_of_nodes = excluded.number_of_nodes,
			environment_ids = excluded.environment_ids,
			updated_at = excluded.updated_at
		RETURNING id`)

	var id string
	if err := s.db.GetContext(ctx, &id, query,
		c.ID, c.Name, c.Synced, nodes, envIDs, formatTime(s.now())); err != nil {
		return fmt.Errorf("failed to upsert cluster %s: %w", c.Name, err)
	}
	c.ID = id
	return nil
}

// Environments

type environmentRow struct {
	ID                    string         `db:"id"`
	Name                  string         `db:"name"`
	ClusterID             string         `db:"cluster_id"`
	CleanInstallationDate sql.NullString `db:"clean_installation_date"`
	DeploymentVersion     string         `db:"deployment_version"`
	MonitoringData        string         `db:"monitoring_data"`
}

const environmentColumns = `id, name, cluster_id, clean_installation_date, deployment_version, monitoring_data`

func (r *environmentRow) toModel() (*model.Environment, error) {
	e := &model.Environment{
		ID:                r.ID,
		Name:              r.Name,
		ClusterID:         r.ClusterID,
		DeploymentVersion: r.DeploymentVersion,
	}
	if r.CleanInstallationDate.Valid && r.CleanInstallationDate.String != "" {
		t, err := parseTime(r.CleanInstallationDate.String, "clean_installation_date", r.ID)
		if err != nil {
			return nil, err
		}
		e.CleanInstallationDate = &t
	}
	if err := decodeJSON(r.MonitoringData, &e.MonitoringData, "environment", "monitoring_data", r.ID); err != nil {
		return nil, err
	}
	return e, nil
}

// FindEnvironment returns the environment with the given name on the cluster, or nil.
func (s *SQLStore) FindEnvironment(ctx context.Context, name, clusterID string) (*model.Environment, error) {
	return s.getEnvironment(ctx,
		`SELECT `+environmentColumns+` FROM environments WHERE name = ? AND cluster_id = ?`, name, clusterID)
}

// FindEnvironmentByID returns the environment with the given id, or nil.
func (s *SQLStore) FindEnvironmentByID(ctx context.Context, id string) (*model.Environment, error) {
	return s.getEnvironment(ctx, `SELECT `+environmentColumns+` FROM environments WHERE id = ?`, id)
}

func (s *SQLStore) getEnvironment(ctx context.Context, query string, args ...any) (*model.Environment, error) {
	var row environmentRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query environment: %w", err)
	}
	e, err := row.toModel()
	if err != nil {
		return nil, err
	}
	if e.NamespaceIDs, err = s.environmentNamespaces(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *SQLStore) environmentNamespaces(ctx context.Context, environmentID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, s.db.Rebind(
		`SELECT namespace_uid FROM environment_namespaces WHERE environment_id = ? ORDER BY position`),
		environmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query namespaces of environment %s: %w", environmentID, err)
	}
	return ids, nil
}

// ListEnvironments returns environments ordered by cluster name, then name.
func (s *SQLStore) ListEnvironments(ctx context.Context, clusterID string) ([]*model.Environment, error) {
	query := `SELECT e.id, e.name, e.cluster_id, e.clean_installation_date, e.deployment_version, e.monitoring_data
		FROM environments e LEFT JOIN clusters c ON c.id = e.cluster_id`
	var args []any
	if clusterID != "" {
		query += ` WHERE e.cluster_id = ?`
		args = append(args, clusterID)
	}
	query += ` ORDER BY c.name, e.cluster_id, e.name`

	var rows []environmentRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	out := make([]*model.Environment, 0, len(rows))
	for i := range rows {
		e, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		if e.NamespaceIDs, err = s.environmentNamespaces(ctx, e.ID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// UpsertEnvironment inserts or updates the environment by (name, clusterID)
// and links every namespace in NamespaceIDs. Links are only ever added.
func (s *SQLStore) UpsertEnvironment(ctx context.Context, e *model.Environment) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	monitoring, err := encodeJSON(nonNilMap(e.MonitoringData), "environment", "monitoring_data", e.ID)
	if err != nil {
		return err
	}
	var installed sql.NullString
	if e.CleanInstallationDate != nil {
		installed = sql.NullString{String: formatTime(*e.CleanInstallationDate), Valid: true}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.GetContext(ctx, &id, tx.Rebind(`
		INSERT INTO environments (id, name, cluster_id, clean_installation_date, deployment_version, monitoring_data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, cluster_id) DO UPDATE SET
			clean_installation_date = excluded.clean_installation_date,
			deployment_version = excluded.deployment_version,
			monitoring_data = excluded.monitoring_data,
			updated_at = excluded.updated_at
		RETURNING id`),
		e.ID, e.Name, e.ClusterID, installed, e.DeploymentVersion, monitoring, formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("failed to upsert environment %s: %w", e.Name, err)
	}
	e.ID = id

	for _, uid := range e.NamespaceIDs {
		if err := addEnvironmentNamespace(ctx, tx, e.ID, uid); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit environment %s: %w", e.Name, err)
	}

	// pick up links added by other writers
	ids, err := s.environmentNamespaces(ctx, e.ID)
	if err != nil {
		return err
	}
	e.NamespaceIDs = ids
	return nil
}

// AddEnvironmentNamespace links a namespace to an environment once.
func (s *SQLStore) AddEnvironmentNamespace(ctx context.Context, environmentID, namespaceUID string) error {
	return addEnvironmentNamespace(ctx, s.db, environmentID, namespaceUID)
}

func addEnvironmentNamespace(ctx context.Context, ext sqlx.ExtContext, environmentID, namespaceUID string) error {
	_, err := ext.ExecContext(ctx, ext.Rebind(`
		INSERT INTO environment_namespaces (environment_id, namespace_uid, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM environment_namespaces WHERE environment_id = ?
		ON CONFLICT (environment_id, namespace_uid) DO NOTHING`),
		environmentID, namespaceUID, environmentID)
	if err != nil {
		return fmt.Errorf("failed to link namespace %s to environment %s: %w", namespaceUID, environmentID, err)
	}
	return nil
}

// Namespaces

type namespaceRow struct {
	UID           string `db:"uid"`
	Name          string `db:"name"`
	ClusterID     string `db:"cluster_id"`
	EnvironmentID string `db:"environment_id"`
	ExistsInK8s   bool   `db:"exists_in_k8s"`
}

const namespaceColumns = `uid, name, cluster_id, environment_id, exists_in_k8s`

func (r *namespaceRow) toModel() *model.Namespace {
	return &model.Namespace{
		UID:           r.UID,
		Name:          r.Name,
		ClusterID:     r.ClusterID,
		EnvironmentID: r.EnvironmentID,
		ExistsInK8s:   r.ExistsInK8s,
	}
}

// FindNamespace returns the namespace with the given name on the cluster, or nil.
func (s *SQLStore) FindNamespace(ctx context.Context, name, clusterID string) (*model.Namespace, error) {
	return s.getNamespace(ctx,
		`SELECT `+namespaceColumns+` FROM namespaces WHERE name = ? AND cluster_id = ?`, name, clusterID)
}

// FindNamespaceByUID returns the namespace with the given uid, or nil.
func (s *SQLStore) FindNamespaceByUID(ctx context.Context, uid string) (*model.Namespace, error) {
	return s.getNamespace(ctx, `SELECT `+namespaceColumns+` FROM namespaces WHERE uid = ?`, uid)
}

func (s *SQLStore) getNamespace(ctx context.Context, query string, args ...any) (*model.Namespace, error) {
	var row namespaceRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query namespace: %w", err)
	}
	return row.toModel(), nil
}

// ListNamespaces returns namespaces ordered by cluster and name.
func (s *SQLStore) ListNamespaces(ctx context.Context, clusterID string) ([]*model.Namespace, error) {
	query := `SELECT ` + namespaceColumns + ` FROM namespaces`
	var args []any
	if clusterID != "" {
		query += ` WHERE cluster_id = ?`
		args = append(args, clusterID)
	}
	query += ` ORDER BY cluster_id, name`

	var rows []namespaceRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	out := make([]*model.Namespace, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// UpsertNamespace inserts or updates the namespace by (name, clusterID).
func (s *SQLStore) UpsertNamespace(ctx context.Context, n *model.Namespace) error {
	if n.UID == "" {
		n.UID = uuid.New().String()
	}

	var uid string
	err := s.db.GetContext(ctx, &uid, s.db.Rebind(`
		INSERT INTO namespaces (uid, name, cluster_id, environment_id, exists_in_k8s, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, cluster_id) DO UPDATE SET
			environment_id = excluded.environment_id,
			exists_in_k8s = excluded.exists_in_k8s,
			updated_at = excluded.updated_at
		RETURNING uid`),
		n.UID, n.Name, n.ClusterID, n.EnvironmentID, n.ExistsInK8s, formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("failed to upsert namespace %s: %w", n.Name, err)
	}
	n.UID = uid
	return nil
}

func nonNilSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
