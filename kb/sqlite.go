package kb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	_ "modernc.org/sqlite"

	"github.com/signalsfoundry/coordinate-engine/internal/logging"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStore persists sites in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the database at path, creating parent
// directories as needed.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		lat_deg REAL NOT NULL,
		lon_deg REAL NOT NULL,
		alt_m REAL NOT NULL,
		offset_x REAL NOT NULL DEFAULT 0,
		offset_y REAL NOT NULL DEFAULT 0,
		rotation_deg REAL NOT NULL DEFAULT 0,
		metadata TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a site.
func (s *SQLiteStore) Save(ctx context.Context, site Site) error {
	if err := site.Validate(); err != nil {
		return err
	}
	md, err := encodeMetadata(site.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata of site %q: %w", site.ID, err)
	}
	updated := site.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO sites
		(id, name, lat_deg, lon_deg, alt_m, offset_x, offset_y, rotation_deg, metadata, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			lat_deg = excluded.lat_deg,
			lon_deg = excluded.lon_deg,
			alt_m = excluded.alt_m,
			offset_x = excluded.offset_x,
			offset_y = excluded.offset_y,
			rotation_deg = excluded.rotation_deg,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		site.ID, site.Name, site.LatDeg, site.LonDeg, site.AltM,
		site.OffsetX, site.OffsetY, site.RotationDeg, md,
		updated.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save site %q: %w", site.ID, err)
	}
	return nil
}

// Load returns every stored site ordered by ID.
func (s *SQLiteStore) Load(ctx context.Context) ([]Site, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, name, lat_deg, lon_deg, alt_m, offset_x, offset_y, rotation_deg, metadata, updated_at
		FROM sites ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		var (
			site    Site
			md      string
			updated string
		)
		if err := rows.Scan(&site.ID, &site.Name, &site.LatDeg, &site.LonDeg, &site.AltM,
			&site.OffsetX, &site.OffsetY, &site.RotationDeg, &md, &updated); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		if site.Metadata, err = decodeMetadata(md); err != nil {
			return nil, fmt.Errorf("decode metadata of site %q: %w", site.ID, err)
		}
		if site.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("parse updated_at of site %q: %w", site.ID, err)
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}
	return sites, nil
}

// Delete removes a site, returning ErrSiteNotFound when nothing matched.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete site %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete site %q: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("site %q: %w", id, ErrSiteNotFound)
	}
	return nil
}

// LoadInto copies every stored site into c and returns how many were loaded.
func (s *SQLiteStore) LoadInto(ctx context.Context, c *Catalog) (int, error) {
	sites, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	for i, site := range sites {
		if _, err := c.PutSite(site); err != nil {
			return i, err
		}
	}
	return len(sites), nil
}

// Attach mirrors catalog changes into the store until the returned function
// is called. Write failures are logged, not returned.
func (s *SQLiteStore) Attach(c *Catalog, log logging.Logger) (detach func()) {
	if log == nil {
		log = logging.Noop()
	}
	return c.Subscribe(func(ev Event) {
		ctx := context.Background()
		var err error
		switch ev.Type {
		case EventSiteAdded, EventSiteUpdated:
			err = s.Save(ctx, ev.Site)
		case EventSiteRemoved:
			err = s.Delete(ctx, ev.Site.ID)
			if errors.Is(err, ErrSiteNotFound) {
				err = nil
			}
		}
		if err != nil {
			log.Warn(ctx, "site persistence failed",
				logging.String("site_id", ev.Site.ID),
				logging.String("event", ev.Type.String()),
				logging.Err(err),
			)
		}
	})
}

func encodeMetadata(md map[string]any) (string, error) {
	if len(md) == 0 {
		return "", nil
	}
	st, err := structpb.NewStruct(md)
	if err != nil {
		return "", err
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var st structpb.Struct
	if err := protojson.Unmarshal([]byte(raw), &st); err != nil {
		return nil, err
	}
	return st.AsMap(), nil
}
