// Package provenance persists computers, codes, calculation nodes and the
// links between them in a SQLite database.
package provenance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vk/mpetstudy/internal/engine"
)

// Node types recorded in the nodes table.
const (
	TypeCalcJob    = "process.calculation.calcjob"
	TypeDict       = "data.core.dict"
	TypeSingleFile = "data.core.singlefile"
)

// Link types recorded in the links table.
const (
	LinkInputCalc = "input_calc"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS computers (
		label TEXT PRIMARY KEY,
		hostname TEXT,
		transport TEXT,
		scheduler TEXT,
		work_dir TEXT,
		description TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS codes (
		label TEXT,
		computer TEXT REFERENCES computers(label),
		exec_path TEXT,
		plugin TEXT,
		description TEXT,
		PRIMARY KEY (label, computer)
	);`,
	`CREATE TABLE IF NOT EXISTS nodes (
		uuid TEXT PRIMARY KEY,
		node_type TEXT,
		label TEXT,
		process_type TEXT,
		state TEXT,
		exit_status INTEGER,
		work_dir TEXT,
		dry_run INTEGER,
		attributes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_uuid TEXT REFERENCES nodes(uuid),
		output_uuid TEXT REFERENCES nodes(uuid),
		label TEXT,
		link_type TEXT
	);`,
}

// Store is a SQLite-backed provenance store.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialise provenance schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveComputer inserts a computer or updates the one with the same label.
func (s *Store) SaveComputer(ctx context.Context, c *engine.Computer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO computers (label, hostname, transport, scheduler, work_dir, description) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(label) DO UPDATE SET hostname = excluded.hostname, transport = excluded.transport,
		scheduler = excluded.scheduler, work_dir = excluded.work_dir, description = excluded.description`,
		c.Label, c.Hostname, c.Transport, c.Scheduler, c.WorkDir, c.Description)
	return err
}

// GetComputer fetches a computer by label.
func (s *Store) GetComputer(ctx context.Context, label string) (*engine.Computer, error) {
	c := &engine.Computer{Label: label}
	err := s.db.QueryRowContext(ctx,
		`SELECT hostname, transport, scheduler, work_dir, description FROM computers WHERE label = ?`, label).
		Scan(&c.Hostname, &c.Transport, &c.Scheduler, &c.WorkDir, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("computer %q: %w", label, engine.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// SaveCode inserts a code. A code with the same full label is an error.
func (s *Store) SaveCode(ctx context.Context, c *engine.Code) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO codes (label, computer, exec_path, plugin, description) VALUES (?, ?, ?, ?, ?)`,
		c.Label, c.ComputerLabel, c.ExecPath, c.PluginName, c.Description)
	if err != nil {
		return fmt.Errorf("failed to store code %s: %w", c.FullLabel(), err)
	}
	return nil
}

// GetCode fetches a code by its "label@computer" full label.
func (s *Store) GetCode(ctx context.Context, fullLabel string) (*engine.Code, error) {
	label, computer, err := engine.SplitFullLabel(fullLabel)
	if err != nil {
		return nil, err
	}
	c := &engine.Code{Label: label, ComputerLabel: computer}
	err = s.db.QueryRowContext(ctx,
		`SELECT exec_path, plugin, description FROM codes WHERE label = ? AND computer = ?`, label, computer).
		Scan(&c.ExecPath, &c.PluginName, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("code %q: %w", fullLabel, engine.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCodes returns every registered code.
func (s *Store) ListCodes(ctx context.Context) ([]*engine.Code, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, computer, exec_path, plugin, description FROM codes ORDER BY computer, label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*engine.Code
	for rows.Next() {
		c := &engine.Code{}
		if err := rows.Scan(&c.Label, &c.ComputerLabel, &c.ExecPath, &c.PluginName, &c.Description); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// NodeRecord is one row of the nodes table.
type NodeRecord struct {
	UUID        string
	NodeType    string
	Label       string
	ProcessType string
	State       engine.State
	ExitStatus  int
	WorkDir     string
	DryRun      bool
	Attributes  map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateNode stores a new node and returns it with a fresh UUID.
func (s *Store) CreateNode(ctx context.Context, n NodeRecord) (*NodeRecord, error) {
	attrs, err := json.Marshal(n.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node attributes: %w", err)
	}
	now := time.Now().UTC()
	n.UUID = uuid.New().String()
	n.CreatedAt, n.UpdatedAt = now, now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO nodes (uuid, node_type, label, process_type, state, exit_status, work_dir, dry_run, attributes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UUID, n.NodeType, n.Label, n.ProcessType, string(n.State), n.ExitStatus, n.WorkDir, n.DryRun, string(attrs), now, now)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNodeState records a state transition of a calculation node.
func (s *Store) UpdateNodeState(ctx context.Context, id string, state engine.State, exitStatus int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE nodes SET state = ?, exit_status = ?, updated_at = ? WHERE uuid = ?`,
		string(state), exitStatus, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("node %s: %w", id, engine.ErrNotExist)
	}
	return nil
}

// SetWorkDir records where a node's folder lives.
func (s *Store) SetWorkDir(ctx context.Context, id, workDir string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE nodes SET work_dir = ?, updated_at = ? WHERE uuid = ?`, workDir, time.Now().UTC(), id)
	return err
}

// GetNode fetches a node by UUID.
func (s *Store) GetNode(ctx context.Context, id string) (*NodeRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT uuid, node_type, label, process_type, state, exit_status, work_dir, dry_run, attributes, created_at, updated_at
		FROM nodes WHERE uuid = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, engine.ErrNotExist)
	}
	return n, err
}

// ListNodes returns nodes of the given type, newest first. An empty type
// lists every node.
func (s *Store) ListNodes(ctx context.Context, nodeType string) ([]*NodeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uuid, node_type, label, process_type, state, exit_status, work_dir, dry_run, attributes, created_at, updated_at
		FROM nodes WHERE ? = '' OR node_type = ? ORDER BY created_at DESC`, nodeType, nodeType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*NodeRecord
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// AddLink records that input feeds output under label.
func (s *Store) AddLink(ctx context.Context, inputUUID, outputUUID, label, linkType string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO links (input_uuid, output_uuid, label, link_type) VALUES (?, ?, ?, ?)`,
		inputUUID, outputUUID, label, linkType)
	return err
}

// Inputs returns the input nodes of a node keyed by link label.
func (s *Store) Inputs(ctx context.Context, id string) (map[string]*NodeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label, input_uuid FROM links WHERE output_uuid = ?`, id)
	if err != nil {
		return nil, err
	}
	links := make(map[string]string)
	for rows.Next() {
		var label, in string
		if err := rows.Scan(&label, &in); err != nil {
			rows.Close()
			return nil, err
		}
		links[label] = in
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	inputs := make(map[string]*NodeRecord, len(links))
	for label, in := range links {
		n, err := s.GetNode(ctx, in)
		if err != nil {
			return nil, err
		}
		inputs[label] = n
	}
	return inputs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNode(row scanner) (*NodeRecord, error) {
	var (
		n      NodeRecord
		state  string
		attrs  string
		dryRun bool
	)
	if err := row.Scan(&n.UUID, &n.NodeType, &n.Label, &n.ProcessType, &state, &n.ExitStatus,
		&n.WorkDir, &dryRun, &attrs, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.State = engine.State(state)
	n.DryRun = dryRun
	if attrs != "" && attrs != "null" {
		if err := json.Unmarshal([]byte(attrs), &n.Attributes); err != nil {
			return nil, fmt.Errorf("failed to decode attributes of node %s: %w", n.UUID, err)
		}
	}
	return &n, nil
}

// CalcNode converts a calculation record to the engine's node type.
func (n *NodeRecord) CalcNode() *engine.CalcNode {
	return &engine.CalcNode{
		UUID:        n.UUID,
		Label:       n.Label,
		ProcessType: n.ProcessType,
		State:       n.State,
		ExitStatus:  n.ExitStatus,
		WorkDir:     n.WorkDir,
		DryRun:      n.DryRun,
		CreatedAt:   n.CreatedAt,
	}
}
