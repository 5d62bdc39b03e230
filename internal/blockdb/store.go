package blockdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cosmogrid/sigmar/internal/datablock"
)

// BlockInfo summarises a stored block.
type BlockInfo struct {
	ID        string
	Label     string
	CreatedAt time.Time
}

// gridPayload is the JSON encoding of a 2-D grid value.
type gridPayload struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// SaveBlock persists every section and value of the block under a new
// generated block ID, which is returned. The write is transactional: a
// failed save leaves no partial block behind.
func (db *DB) SaveBlock(block *datablock.Block, label string) (string, error) {
	id := uuid.New().String()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO blocks (block_id, label, created_at) VALUES (?, ?, ?)`,
		id, label, time.Now().UnixNano(),
	); err != nil {
		return "", fmt.Errorf("insert block row: %w", err)
	}

	for _, name := range block.Sections() {
		section := block.Section(name)
		for _, key := range section.Keys() {
			kind, _ := section.Kind(key)
			payload, err := encodeValue(section, key, kind)
			if err != nil {
				return "", err
			}
			if _, err := tx.Exec(
				`INSERT INTO block_values (block_id, section, key, kind, payload) VALUES (?, ?, ?, ?, ?)`,
				id, name, key, kind.String(), payload,
			); err != nil {
				return "", fmt.Errorf("insert value %s/%s: %w", name, key, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save: %w", err)
	}
	return id, nil
}

// LoadBlock reconstructs a stored block by ID.
func (db *DB) LoadBlock(id string) (*datablock.Block, error) {
	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM blocks WHERE block_id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up block: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("no block with id %s", id)
	}

	rows, err := db.Query(
		`SELECT section, key, kind, payload FROM block_values WHERE block_id = ? ORDER BY section, key`, id)
	if err != nil {
		return nil, fmt.Errorf("query block values: %w", err)
	}
	defer rows.Close()

	block := datablock.NewBlock()
	for rows.Next() {
		var section, key, kind, payload string
		if err := rows.Scan(&section, &key, &kind, &payload); err != nil {
			return nil, fmt.Errorf("scan block value: %w", err)
		}
		if err := decodeValue(block.Section(section), key, kind, payload); err != nil {
			return nil, err
		}
	}
	return block, rows.Err()
}

// ListBlocks returns all stored blocks, most recent first.
func (db *DB) ListBlocks() ([]BlockInfo, error) {
	rows, err := db.Query(`SELECT block_id, label, created_at FROM blocks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()

	var infos []BlockInfo
	for rows.Next() {
		var info BlockInfo
		var nanos int64
		if err := rows.Scan(&info.ID, &info.Label, &nanos); err != nil {
			return nil, fmt.Errorf("scan block row: %w", err)
		}
		info.CreatedAt = time.Unix(0, nanos)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteBlock removes a stored block and its values.
func (db *DB) DeleteBlock(id string) error {
	res, err := db.Exec(`DELETE FROM blocks WHERE block_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("no block with id %s", id)
	}
	return err
}

func encodeValue(section *datablock.Section, key string, kind datablock.Kind) (string, error) {
	var (
		raw []byte
		err error
	)
	switch kind {
	case datablock.KindScalar:
		var v float64
		if v, err = section.Scalar(key); err == nil {
			raw, err = json.Marshal(v)
		}
	case datablock.KindVector:
		var v []float64
		if v, err = section.Vector(key); err == nil {
			raw, err = json.Marshal(v)
		}
	case datablock.KindGrid:
		var g *datablock.Grid2D
		if g, err = section.Grid(key); err == nil {
			raw, err = json.Marshal(gridPayload{Rows: g.Rows, Cols: g.Cols, Data: g.Data})
		}
	default:
		err = fmt.Errorf("unknown kind %v", kind)
	}
	if err != nil {
		return "", fmt.Errorf("encode %s/%s: %w", section.Name(), key, err)
	}
	return string(raw), nil
}

func decodeValue(section *datablock.Section, key, kind, payload string) error {
	switch kind {
	case "scalar":
		var v float64
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return fmt.Errorf("decode scalar %s/%s: %w", section.Name(), key, err)
		}
		section.PutScalar(key, v)
	case "vector":
		var v []float64
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return fmt.Errorf("decode vector %s/%s: %w", section.Name(), key, err)
		}
		section.PutVector(key, v)
	case "grid":
		var gp gridPayload
		if err := json.Unmarshal([]byte(payload), &gp); err != nil {
			return fmt.Errorf("decode grid %s/%s: %w", section.Name(), key, err)
		}
		if gp.Rows*gp.Cols != len(gp.Data) {
			return fmt.Errorf("decode grid %s/%s: %dx%d does not match %d values",
				section.Name(), key, gp.Rows, gp.Cols, len(gp.Data))
		}
		section.PutGrid(key, &datablock.Grid2D{Rows: gp.Rows, Cols: gp.Cols, Data: gp.Data})
	default:
		return fmt.Errorf("decode %s/%s: unknown kind %q", section.Name(), key, kind)
	}
	return nil
}
