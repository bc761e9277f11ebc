package ditherer

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bodgit/ditherer/matrix"
	"github.com/bodgit/ditherer/palette"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// DB is a sqlite database of palettes and previously processed frames. A new
// database is seeded with the built-in palettes.
type DB struct {
	db *sql.DB

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewDB opens or creates the database in file.
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS palette (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS color (palette_id INTEGER NOT NULL, position INTEGER NOT NULL, r REAL NOT NULL, g REAL NOT NULL, b REAL NOT NULL, PRIMARY KEY(palette_id, position), FOREIGN KEY(palette_id) REFERENCES palette(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS result (id INTEGER PRIMARY KEY NOT NULL, key TEXT NOT NULL UNIQUE, width INTEGER NOT NULL, height INTEGER NOT NULL, pix BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	d := &DB{
		db:      db,
		encoder: encoder,
		decoder: decoder,
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM palette").Scan(&count); err != nil {
		d.Close()
		return nil, err
	}
	if count == 0 {
		if err := d.importTable(palette.Builtin()); err != nil {
			d.Close()
			return nil, err
		}
	}

	return d, nil
}

// Close closes the database.
func (db *DB) Close() error {
	db.decoder.Close()
	if err := db.encoder.Close(); err != nil {
		db.db.Close()
		return err
	}
	return db.db.Close()
}

func (db *DB) importTable(t *palette.Table) error {
	for _, name := range t.Names() {
		p, err := t.Palette(name)
		if err != nil {
			return err
		}
		if err := db.SetPalette(name, p); err != nil {
			return err
		}
	}
	return nil
}

// SetPalette stores p under name, replacing any existing colors. A palette
// keeps its position in Names when replaced.
func (db *DB) SetPalette(name string, p palette.Palette) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("INSERT OR IGNORE INTO palette (name) VALUES (?)", name); err != nil {
		return err
	}

	var id int64
	if err := tx.QueryRow("SELECT id FROM palette WHERE name = ?", name).Scan(&id); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM color WHERE palette_id = ?", id); err != nil {
		return err
	}

	for i, c := range p {
		if _, err := tx.Exec("INSERT INTO color (palette_id, position, r, g, b) VALUES (?, ?, ?, ?, ?)", id, i, c[0], c[1], c[2]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Palette returns the named palette. It satisfies palette.Provider.
func (db *DB) Palette(name string) (palette.Palette, error) {
	rows, err := db.db.Query("SELECT c.r, c.g, c.b FROM palette AS p JOIN color AS c ON c.palette_id = p.id WHERE p.name = ? ORDER BY c.position", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var p palette.Palette
	for rows.Next() {
		var c palette.Color
		if err := rows.Scan(&c[0], &c[1], &c[2]); err != nil {
			return nil, err
		}
		p = append(p, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if p == nil {
		// Either unknown or stored without colors, which SetPalette prevents
		return nil, fmt.Errorf("%w: %q", palette.ErrUnknown, name)
	}

	return p, nil
}

// Names returns the stored palette names in the order they were added.
func (db *DB) Names() ([]string, error) {
	rows, err := db.db.Query("SELECT name FROM palette ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ImportJSON reads palettes from a JSON object mapping names to lists of
// [r, g, b] triples, preserving the order they appear in.
func (db *DB) ImportJSON(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := readJSON(f)
	if err != nil {
		return err
	}

	return db.importTable(t)
}

func readJSON(r io.Reader) (*palette.Table, error) {
	dec := json.NewDecoder(r)

	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if tok != json.Delim('{') {
		return nil, errors.New("ditherer: palettes must be a JSON object")
	}

	t := palette.NewTable()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, errors.New("ditherer: palette name is not a string")
		}

		var p palette.Palette
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		t.Set(name, p)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return t, nil
}

// ExportJSON writes every stored palette to w in the format read by
// ImportJSON.
func (db *DB) ExportJSON(w io.Writer) error {
	names, err := db.Names()
	if err != nil {
		return err
	}

	b := new(bytes.Buffer)
	b.WriteByte('{')
	for i, name := range names {
		p, err := db.Palette(name)
		if err != nil {
			return err
		}

		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		v, err := json.Marshal(p)
		if err != nil {
			return err
		}

		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteString("}\n")

	_, err = w.Write(b.Bytes())
	return err
}

// FindResult returns a previously stored frame, or nil if there isn't one.
func (db *DB) FindResult(key string) (*matrix.Image, error) {
	var width, height int
	var blob []byte
	switch err := db.db.QueryRow("SELECT width, height, pix FROM result WHERE key = ?", key).Scan(&width, &height, &blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		raw, err := db.decoder.DecodeAll(blob, nil)
		if err != nil {
			return nil, err
		}

		m := &matrix.Image{
			Width:  width,
			Height: height,
			Pix:    make([]float64, len(raw)/8),
		}
		if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, m.Pix); err != nil {
			return nil, err
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}

		return m, nil
	default:
		return nil, err
	}
}

// StoreResult saves a processed frame under key.
func (db *DB) StoreResult(key string, m *matrix.Image) error {
	if err := m.Validate(); err != nil {
		return err
	}

	b := new(bytes.Buffer)
	if err := binary.Write(b, binary.LittleEndian, m.Pix); err != nil {
		return err
	}

	if _, err := db.db.Exec("INSERT OR REPLACE INTO result (key, width, height, pix) VALUES (?, ?, ?, ?)", key, m.Width, m.Height, db.encoder.EncodeAll(b.Bytes(), nil)); err != nil {
		return err
	}
	return nil
}
