package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/RivenKid69/crm-sales-bot/internal/embedding"
)

// IndexStore persists fact embeddings in SQLite so the index survives
// restarts and is rebuilt only when facts change.
type IndexStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// OpenIndex opens or creates the index database at the given path.
func OpenIndex(dbPath string) (*IndexStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}

	s := &IndexStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}

	return s, nil
}

func (s *IndexStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *IndexStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fact_vectors (
		id         TEXT PRIMARY KEY,
		fact_id    TEXT NOT NULL UNIQUE,
		category   TEXT NOT NULL,
		provider   TEXT NOT NULL,
		dims       INTEGER NOT NULL,
		vector     BLOB NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_fact_vectors_category ON fact_vectors(category);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveVector upserts the embedding for one fact. An existing row for the
// same fact is replaced so rebuilds with a new provider are clean.
func (s *IndexStore) SaveVector(ctx context.Context, f Fact, provider string, vec embedding.Vector) error {
	if len(vec) == 0 {
		return fmt.Errorf("save vector: empty vector for fact %q", f.ID)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fact_vectors (id, fact_id, category, provider, dims, vector, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fact_id) DO UPDATE SET
		   category = excluded.category,
		   provider = excluded.provider,
		   dims = excluded.dims,
		   vector = excluded.vector,
		   created_at = excluded.created_at`,
		s.newID(), f.ID, f.Category, provider, len(vec), encodeVector(vec), now)
	if err != nil {
		return fmt.Errorf("save vector for %q: %w", f.ID, err)
	}
	return nil
}

// LoadVectors attaches stored embeddings to the facts of a base.
// Facts without a stored vector are left untouched.
func (s *IndexStore) LoadVectors(ctx context.Context, base *Base) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fact_id, vector FROM fact_vectors`)
	if err != nil {
		return 0, fmt.Errorf("load vectors: %w", err)
	}
	defer rows.Close()

	vecs := map[string]embedding.Vector{}
	for rows.Next() {
		var factID string
		var blob []byte
		if err := rows.Scan(&factID, &blob); err != nil {
			return 0, err
		}
		vecs[factID] = decodeVector(blob)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	loaded := 0
	for i := range base.Facts {
		if v, ok := vecs[base.Facts[i].ID]; ok {
			base.Facts[i].Embedding = v
			loaded++
		}
	}
	return loaded, nil
}

// IndexStats describes the stored index.
type IndexStats struct {
	Vectors    int            `json:"vectors"`
	Dims       int            `json:"dims"`
	Provider   string         `json:"provider"`
	ByCategory map[string]int `json:"by_category"`
}

// Stats summarizes what the index currently holds.
func (s *IndexStore) Stats(ctx context.Context) (*IndexStats, error) {
	st := &IndexStats{ByCategory: map[string]int{}}

	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fact_vectors`).Scan(&st.Vectors)
	if err != nil {
		return nil, fmt.Errorf("index stats: %w", err)
	}
	if st.Vectors == 0 {
		return st, nil
	}

	// All rows share one provider in practice; report the latest.
	err = s.db.QueryRowContext(ctx,
		`SELECT provider, dims FROM fact_vectors ORDER BY created_at DESC LIMIT 1`).
		Scan(&st.Provider, &st.Dims)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM fact_vectors GROUP BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		st.ByCategory[cat] = n
	}
	return st, rows.Err()
}

// Clear drops all stored vectors.
func (s *IndexStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fact_vectors`)
	return err
}

func (s *IndexStore) Close() error {
	return s.db.Close()
}

// BuildIndex embeds every fact and stores the vectors, also attaching
// them to the base in memory. Returns the number of facts indexed.
func BuildIndex(ctx context.Context, store *IndexStore, base *Base, emb embedding.Embedder) (int, error) {
	if emb == nil {
		return 0, fmt.Errorf("build index: no embedding provider configured")
	}
	n := 0
	for i := range base.Facts {
		f := &base.Facts[i]
		text := f.Topic + ". " + f.Text
		vec, err := emb.Embed(ctx, text)
		if err != nil {
			return n, fmt.Errorf("embed fact %q: %w", f.ID, err)
		}
		if err := store.SaveVector(ctx, *f, emb.Name(), vec); err != nil {
			return n, err
		}
		f.Embedding = vec
		n++
	}
	return n, nil
}

// Vectors are stored as little-endian float32 blobs.
func encodeVector(v embedding.Vector) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) embedding.Vector {
	v := make(embedding.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
