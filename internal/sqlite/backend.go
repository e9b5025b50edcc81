package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/knobs/pkg/constraint"
	"github.com/mesh-intelligence/knobs/pkg/descriptor"
	"github.com/mesh-intelligence/knobs/pkg/types"
)

// dbFile is the query database rebuilt in DataDir on every Attach.
const dbFile = "knobs.db"

// Constraint kinds as stored in the constraint_kind column.
const (
	constraintNone  = "none"
	constraintList  = "list"
	constraintRange = "range"
)

var _ types.Store = (*Backend)(nil)

// Backend implements types.Store using SQLite as the query engine and JSONL
// files as the source of truth. Values are held in SQLite and reach the
// JSONL files on Save, or on every write under the immediate sync strategy.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	dataDir  string
	db       *sql.DB
	registry *descriptor.Registry
	log      zerolog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithRegistry sets the registry used to describe stored value types.
// The process registry is used otherwise.
func WithRegistry(r *descriptor.Registry) Option {
	return func(b *Backend) { b.registry = r }
}

// WithLogger sets the logger. Logging is discarded otherwise.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.log = l.With().Str("component", "sqlite").Logger() }
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		registry: descriptor.Default(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry the backend describes values with.
func (b *Backend) Registry() *descriptor.Registry {
	return b.registry
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, rebuilds the SQLite schema and
// loads the JSONL files into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// The database is derived state; start from a fresh schema.
	dbPath := filepath.Join(dataDir, dbFile)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	for _, stmt := range append(slices.Clone(schemaDDL), indexDDL...) {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return err
	}
	if err := loadAllJSONL(db, dataDir, b.log); err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.dataDir = dataDir
	b.attached = true
	b.log.Debug().Str("data_dir", dataDir).Str("sync", config.SyncStrategy()).Msg("attached")
	return nil
}

// Detach releases all resources held by the backend. Values set since the
// last Save are discarded. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// Keys returns every defined key in definition order.
func (b *Backend) Keys() ([]types.Key, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(`SELECT section, name FROM definitions ORDER BY ordinal, section, name`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []types.Key
	for rows.Next() {
		var k types.Key
		if err := rows.Scan(&k.Section, &k.Key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Definition returns the declaration of a key. Keys whose type the registry
// cannot describe come back with a types.KindOther type and their raw text
// default.
func (b *Backend) Definition(section, key string) (types.Definition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Definition{}, types.ErrStoreDetached
	}
	row, err := b.fetch(section, key)
	if err != nil {
		return types.Definition{}, err
	}
	def, _, err := b.describe(row)
	return def, err
}

// Get returns the current value of a key parsed by its descriptor, or the
// raw text when the type cannot be described.
func (b *Backend) Get(section, key string) (any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	row, err := b.fetch(section, key)
	if err != nil {
		return nil, err
	}
	_, d, err := b.resolve(row.valueType)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return row.value, nil
	}
	return d.Parse(row.value)
}

// Set validates value against the key's type and constraint and stores the
// clamped result.
func (b *Backend) Set(section, key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	row, err := b.fetch(section, key)
	if err != nil {
		return err
	}
	def, d, err := b.describe(row)
	if err != nil {
		return err
	}
	if d == nil {
		return &types.UnsupportedTypeError{Type: row.valueType}
	}
	if !d.Accepts(value) {
		return &types.TypeMismatchError{Type: def.Type.Name, Value: value}
	}
	clamped, ok := def.Constraint.Clamp(value)
	if !ok {
		return d.Reject(types.Key{Section: section, Key: key}.String(), def.Constraint, value)
	}

	text := d.Format(clamped)
	if text == row.value {
		return nil
	}
	if _, err := b.db.Exec(
		`UPDATE definitions SET value = ?, updated_at = ? WHERE definition_id = ?`,
		text, now(), row.id,
	); err != nil {
		return fmt.Errorf("updating %s.%s: %w", section, key, err)
	}
	b.log.Debug().Str("section", section).Str("key", key).Str("value", text).Msg("value set")
	return b.afterWriteLocked()
}

// Define declares a new key with its current value. Enum types are stored
// alongside so the key survives a restart without registering the enum.
// Returns ErrInvalidKey for an empty section or key and ErrDuplicateKey for
// a key that already exists.
func (b *Backend) Define(def types.Definition, value any) error {
	if def.Section == "" || def.Key == "" {
		return types.ErrInvalidKey
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := b.defineLocked(def, value); err != nil {
		return err
	}
	return b.afterWriteLocked()
}

// DefineEnum stores an enum type. Defining the same members twice is a no-op;
// different members under a stored name return ErrDuplicateKey.
func (b *Backend) DefineEnum(t types.Type) error {
	if !t.IsEnum() {
		return fmt.Errorf("type %s is not an enum", t.Name)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := b.defineEnumLocked(t); err != nil {
		return err
	}
	return b.afterWriteLocked()
}

// Save writes every table to its JSONL file.
func (b *Backend) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	return b.persistLocked()
}

// Reload discards unsaved values and rebuilds the tables from the JSONL
// files.
func (b *Backend) Reload() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if err := loadAllJSONL(b.db, b.dataDir, b.log); err != nil {
		return fmt.Errorf("reload JSONL: %w", err)
	}
	return nil
}

// Path returns the definitions file, or "" when detached.
func (b *Backend) Path() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return ""
	}
	return filepath.Join(b.dataDir, definitionsJSONL)
}

// definitionRow is one row of the definitions table.
type definitionRow struct {
	id               string
	section          string
	name             string
	valueType        string
	value            string
	defaultValue     sql.NullString
	constraintKind   sql.NullString
	constraintValues sql.NullString
	description      sql.NullString
}

const selectDefinition = `SELECT definition_id, section, name, value_type, value, default_value,
       constraint_kind, constraint_values, description
FROM definitions WHERE section = ? AND name = ?`

// fetch reads one definition row. The caller must hold b.mu.
func (b *Backend) fetch(section, key string) (definitionRow, error) {
	var r definitionRow
	err := b.db.QueryRow(selectDefinition, section, key).Scan(
		&r.id, &r.section, &r.name, &r.valueType, &r.value, &r.defaultValue,
		&r.constraintKind, &r.constraintValues, &r.description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return r, types.ErrKeyNotFound
	}
	if err != nil {
		return r, fmt.Errorf("reading %s.%s: %w", section, key, err)
	}
	return r, nil
}

// describe decodes a row into a Definition. The descriptor is nil when the
// row's type cannot be described.
func (b *Backend) describe(row definitionRow) (types.Definition, *descriptor.Descriptor, error) {
	t, d, err := b.resolve(row.valueType)
	if err != nil {
		return types.Definition{}, nil, err
	}
	def := types.Definition{
		Section:     row.section,
		Key:         row.name,
		Type:        t,
		Description: row.description.String,
	}
	if d == nil {
		if row.defaultValue.Valid {
			def.Default = row.defaultValue.String
		}
		return def, nil, nil
	}

	if row.defaultValue.Valid {
		v, err := d.Parse(row.defaultValue.String)
		if err != nil {
			return def, d, fmt.Errorf("default of %s.%s: %w", row.section, row.name, err)
		}
		def.Default = v
	}
	c, err := decodeConstraint(d, row)
	if err != nil {
		return def, d, fmt.Errorf("constraint of %s.%s: %w", row.section, row.name, err)
	}
	def.Constraint = c
	return def, d, nil
}

// resolve maps a stored type name to its Type and descriptor. Enums stored
// in the enums table are registered on first use, replacing a registered
// enum of the same name whose members differ. Unknown names resolve to a
// types.KindOther type with a nil descriptor.
func (b *Backend) resolve(name string) (types.Type, *descriptor.Descriptor, error) {
	registered, found := b.registry.Lookup(name)
	if found && !registered.Type().IsEnum() {
		return registered.Type(), registered, nil
	}

	members, err := b.enumMembers(name)
	if err != nil {
		return types.Type{}, nil, err
	}
	if members == nil {
		if found {
			return registered.Type(), registered, nil
		}
		return types.Other(name), nil, nil
	}
	if found && slices.Equal(registered.Type().Members, members) {
		return registered.Type(), registered, nil
	}

	t := types.NewEnum(name, members...)
	d, err := descriptor.New(descriptor.Config{Type: t})
	if err != nil {
		return t, nil, err
	}
	b.registry.Register(d, true)
	return t, d, nil
}

// enumMembers returns the stored members of an enum in ordinal order, or nil
// when no enum of that name is stored.
func (b *Backend) enumMembers(name string) ([]string, error) {
	rows, err := b.db.Query(`SELECT m.name FROM enum_members m
JOIN enums e ON e.enum_id = m.enum_id
WHERE e.name = ? ORDER BY m.ordinal`, name)
	if err != nil {
		return nil, fmt.Errorf("reading enum %s: %w", name, err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scanning enum %s: %w", name, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func decodeConstraint(d *descriptor.Descriptor, row definitionRow) (*constraint.Constraint, error) {
	kind := row.constraintKind.String
	if kind == "" || kind == constraintNone {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(row.constraintValues.String), &values); err != nil {
		return nil, fmt.Errorf("decoding values: %w", err)
	}
	switch kind {
	case constraintList:
		return d.ParseList(values...)
	case constraintRange:
		if len(values) != 2 {
			return nil, fmt.Errorf("range needs 2 bounds, got %d", len(values))
		}
		return d.ParseRange(values[0], values[1])
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", kind)
	}
}

func encodeConstraint(d *descriptor.Descriptor, c *constraint.Constraint) (string, sql.NullString, error) {
	var values []any
	kind := constraintNone
	switch c.Kind() {
	case constraint.KindList:
		kind, values = constraintList, c.ListedValues()
	case constraint.KindRange:
		lo, hi, _ := c.Bound()
		kind, values = constraintRange, []any{lo, hi}
	default:
		return kind, sql.NullString{}, nil
	}

	raw := make([]string, len(values))
	for i, v := range values {
		if !d.Accepts(v) {
			return "", sql.NullString{}, &types.TypeMismatchError{Type: d.Type().Name, Value: v}
		}
		raw[i] = d.Format(v)
	}
	text, err := json.Marshal(raw)
	if err != nil {
		return "", sql.NullString{}, err
	}
	return kind, sql.NullString{String: string(text), Valid: true}, nil
}

// defineLocked inserts one definition. The caller must hold b.mu.
func (b *Backend) defineLocked(def types.Definition, value any) error {
	k := types.Key{Section: def.Section, Key: def.Key}
	var exists int
	if err := b.db.QueryRow(
		`SELECT COUNT(*) FROM definitions WHERE section = ? AND name = ?`, def.Section, def.Key,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking %s: %w", k, err)
	}
	if exists > 0 {
		return fmt.Errorf("%s: %w", k, types.ErrDuplicateKey)
	}

	if def.Type.IsEnum() {
		if err := b.defineEnumLocked(def.Type); err != nil {
			return err
		}
	}
	d, err := b.registry.GetOrCreate(def.Type)
	if err != nil {
		return err
	}
	if !d.Accepts(value) {
		return &types.TypeMismatchError{Type: def.Type.Name, Value: value}
	}
	clamped, ok := def.Constraint.Clamp(value)
	if !ok {
		return d.Reject(k.String(), def.Constraint, value)
	}

	var defaultValue sql.NullString
	if def.Default != nil {
		if !d.Accepts(def.Default) {
			return &types.TypeMismatchError{Type: def.Type.Name, Value: def.Default}
		}
		defaultValue = sql.NullString{String: d.Format(def.Default), Valid: true}
	}
	kind, values, err := encodeConstraint(d, def.Constraint)
	if err != nil {
		return err
	}

	var ordinal int
	if err := b.db.QueryRow(`SELECT COALESCE(MAX(ordinal) + 1, 0) FROM definitions`).Scan(&ordinal); err != nil {
		return fmt.Errorf("ordering %s: %w", k, err)
	}

	ts := now()
	_, err = b.db.Exec(
		`INSERT INTO definitions (definition_id, section, name, value_type, value, default_value,
constraint_kind, constraint_values, description, ordinal, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		generateUUID(), def.Section, def.Key, def.Type.Name, d.Format(clamped), defaultValue,
		kind, values, def.Description, ordinal, ts, ts,
	)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", k, err)
	}
	b.log.Debug().Str("key", k.String()).Str("type", def.Type.Name).Msg("key defined")
	return nil
}

// defineEnumLocked stores an enum type unless it is built in or already
// stored with the same members. The caller must hold b.mu.
func (b *Backend) defineEnumLocked(t types.Type) error {
	if _, ok := descriptor.Builtin(t); ok {
		return nil
	}
	if d, ok := b.registry.Lookup(t.Name); ok && !d.Type().IsEnum() {
		return fmt.Errorf("enum %s shadows a registered type: %w", t.Name, types.ErrDuplicateKey)
	}
	if len(t.Members) == 0 {
		return fmt.Errorf("enum %s has no members", t.Name)
	}

	stored, err := b.enumMembers(t.Name)
	if err != nil {
		return err
	}
	if stored != nil {
		if slices.Equal(stored, t.Members) {
			return nil
		}
		return fmt.Errorf("enum %s stored with different members: %w", t.Name, types.ErrDuplicateKey)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning enum transaction: %w", err)
	}
	defer tx.Rollback()

	enumID := generateUUID()
	if _, err := tx.Exec(
		`INSERT INTO enums (enum_id, name, created_at) VALUES (?, ?, ?)`, enumID, t.Name, now(),
	); err != nil {
		return fmt.Errorf("inserting enum %s: %w", t.Name, err)
	}
	for i, m := range t.Members {
		if _, err := tx.Exec(
			`INSERT INTO enum_members (member_id, enum_id, name, ordinal) VALUES (?, ?, ?, ?)`,
			generateUUID(), enumID, m, i,
		); err != nil {
			return fmt.Errorf("inserting member %s.%s: %w", t.Name, m, err)
		}
	}
	return tx.Commit()
}

// afterWriteLocked persists the tables when the sync strategy asks for it.
// The caller must hold b.mu.
func (b *Backend) afterWriteLocked() error {
	if b.config.SyncStrategy() != types.SyncImmediate {
		return nil
	}
	return b.persistLocked()
}

// generateUUID generates a new UUID v7 for row IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
