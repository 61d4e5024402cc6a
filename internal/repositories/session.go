package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

const currentSessionKey = "current_session"

// SessionRepository implements models.Repository[*models.Session].
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session and its child rows. An empty ID is generated.
func (r *SessionRepository) Create(s *models.Session) error {
	if s.ID() == "" {
		s.SetID(shared.GenerateID())
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(r.db, func(tx *sql.Tx) error {
		p := s.Project
		_, err := tx.Exec(`
			INSERT INTO sessions (id, project_id, name, tempo, musical_key, style, duration_sec, lyrics, voice_id, status, next_seq, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, s.ID(), p.ID, p.Name, p.Tempo, p.Key, p.Style, p.DurationSec, p.Lyrics, s.VoiceID, s.Status, s.NextSeq, s.CreatedAt(), s.UpdatedAt())
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return writeChildren(tx, s)
	})
}

// Get retrieves a session with all child rows.
func (r *SessionRepository) Get(id string) (*models.Session, error) {
	s, err := r.scanOne(r.db.QueryRow(`
		SELECT id, project_id, name, tempo, musical_key, style, duration_sec, lyrics, voice_id, status, next_seq, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByProjectID retrieves the session bound to a backend project id.
func (r *SessionRepository) GetByProjectID(projectID string) (*models.Session, error) {
	var id string
	err := r.db.QueryRow(`SELECT id FROM sessions WHERE project_id = ? ORDER BY updated_at DESC LIMIT 1`, projectID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrProjectNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return r.Get(id)
}

// Update rewrites the session row and replaces all child rows.
func (r *SessionRepository) Update(s *models.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	s.SetUpdatedAt(now)

	return withTx(r.db, func(tx *sql.Tx) error {
		p := s.Project
		res, err := tx.Exec(`
			UPDATE sessions
			SET project_id = ?, name = ?, tempo = ?, musical_key = ?, style = ?, duration_sec = ?, lyrics = ?, voice_id = ?, status = ?, next_seq = ?, updated_at = ?
			WHERE id = ?
		`, p.ID, p.Name, p.Tempo, p.Key, p.Style, p.DurationSec, p.Lyrics, s.VoiceID, s.Status, s.NextSeq, now, s.ID())
		if err != nil {
			return fmt.Errorf("failed to update session: %w", err)
		}
		if err := expectRows(res, fmt.Errorf("%w: %s", shared.ErrNoSession, s.ID())); err != nil {
			return err
		}
		if err := deleteChildren(tx, s.ID()); err != nil {
			return err
		}
		return writeChildren(tx, s)
	})
}

// Delete removes a session and its child rows. Deleting the current session clears the pointer.
func (r *SessionRepository) Delete(id string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if err := deleteChildren(tx, id); err != nil {
			return err
		}
		res, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		if err := expectRows(res, fmt.Errorf("%w: %s", shared.ErrNoSession, id)); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM settings WHERE key = ? AND value = ?`, currentSessionKey, id); err != nil {
			return fmt.Errorf("failed to clear current session: %w", err)
		}
		return nil
	})
}

// List retrieves every session, most recently updated first. Child rows are loaded.
func (r *SessionRepository) List() ([]*models.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, project_id, name, tempo, musical_key, style, duration_sec, lyrics, voice_id, status, next_seq, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	var sessions []*models.Session
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	rows.Close()

	for _, s := range sessions {
		if err := r.loadChildren(s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// SetCurrent marks the session later commands operate on.
func (r *SessionRepository) SetCurrent(id string) error {
	var exists int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to query session: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNoSession, id)
	}

	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, currentSessionKey, id)
	if err != nil {
		return fmt.Errorf("failed to set current session: %w", err)
	}
	return nil
}

// Current loads the current session. It fails with [shared.ErrNoSession] when none is set.
func (r *SessionRepository) Current() (*models.Session, error) {
	var id string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, currentSessionKey).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current session: %w", err)
	}
	return r.Get(id)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SessionRepository) scan(row scanner) (*models.Session, error) {
	var (
		id, projectID, name, key, style, lyrics, voiceID, status string
		tempo, duration                                          int
		nextSeq                                                  int64
		createdAt, updatedAt                                     time.Time
	)
	if err := row.Scan(&id, &projectID, &name, &tempo, &key, &style, &duration, &lyrics, &voiceID, &status, &nextSeq, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	s := models.RestoreSession(id, createdAt, updatedAt)
	s.Project = models.Project{
		ID:          projectID,
		Name:        name,
		Tempo:       tempo,
		Key:         key,
		Style:       style,
		DurationSec: duration,
		Lyrics:      lyrics,
	}
	s.VoiceID = voiceID
	s.Status = status
	s.NextSeq = nextSeq
	return s, nil
}

// scanOne scans a single row into a [models.Session]
func (r *SessionRepository) scanOne(row *sql.Row) (*models.Session, error) {
	s, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return s, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Session]
func (r *SessionRepository) scanRow(rows *sql.Rows) (*models.Session, error) {
	s, err := r.scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) loadChildren(s *models.Session) error {
	id := s.ID()

	if err := queryEach(r.db, `
		SELECT id, name, volume, pan, reverb, attack, release, humanize, muted, solo
		FROM tracks WHERE session_id = ? ORDER BY position
	`, id, func(rows *sql.Rows) error {
		var t models.Track
		c := &t.Controls
		if err := rows.Scan(&t.ID, &t.Name, &c.Volume, &c.Pan, &c.Reverb, &c.Attack, &c.Release, &c.Humanize, &t.Muted, &t.Solo); err != nil {
			return err
		}
		s.Tracks = append(s.Tracks, t)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}

	if err := queryEach(r.db, `
		SELECT start_sec, end_sec, text FROM lyric_segments WHERE session_id = ? ORDER BY position
	`, id, func(rows *sql.Rows) error {
		var seg models.LyricSegment
		if err := rows.Scan(&seg.Start, &seg.End, &seg.Text); err != nil {
			return err
		}
		s.Segments = append(s.Segments, seg)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load lyric segments: %w", err)
	}

	if err := queryEach(r.db, `SELECT name, url, seq FROM results WHERE session_id = ?`, id, func(rows *sql.Rows) error {
		var (
			name, url string
			seq       int64
		)
		if err := rows.Scan(&name, &url, &seq); err != nil {
			return err
		}
		s.Results[name] = url
		s.ResultSeqs[name] = seq
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	if err := queryEach(r.db, `SELECT name, url FROM stems WHERE session_id = ? ORDER BY rowid`, id, func(rows *sql.Rows) error {
		var st models.Stem
		if err := rows.Scan(&st.Name, &st.URL); err != nil {
			return err
		}
		s.Stems = append(s.Stems, st)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load stems: %w", err)
	}

	if err := queryEach(r.db, `SELECT url FROM thumbnails WHERE session_id = ? ORDER BY position`, id, func(rows *sql.Rows) error {
		var u string
		if err := rows.Scan(&u); err != nil {
			return err
		}
		s.Thumbnails = append(s.Thumbnails, u)
		return nil
	}); err != nil {
		return fmt.Errorf("failed to load thumbnails: %w", err)
	}

	var report string
	err := r.db.QueryRow(`SELECT report FROM quality_reports WHERE session_id = ?`, id).Scan(&report)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to load quality report: %w", err)
	default:
		var q models.QualityReport
		if err := json.Unmarshal([]byte(report), &q); err != nil {
			return fmt.Errorf("failed to decode quality report: %w", err)
		}
		s.Quality = &q
	}
	return nil
}

func queryEach(db *sql.DB, query, id string, fn func(*sql.Rows) error) error {
	rows, err := db.Query(query, id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

var childTables = []string{"tracks", "lyric_segments", "results", "stems", "thumbnails", "quality_reports"}

func deleteChildren(tx execer, sessionID string) error {
	for _, table := range childTables {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE session_id = ?", table), sessionID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func writeChildren(tx execer, s *models.Session) error {
	id := s.ID()

	for i, t := range s.Tracks {
		c := t.Controls
		if _, err := tx.Exec(`
			INSERT INTO tracks (id, session_id, position, name, volume, pan, reverb, attack, release, humanize, muted, solo)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, id, i, t.Name, c.Volume, c.Pan, c.Reverb, c.Attack, c.Release, c.Humanize, t.Muted, t.Solo); err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}
	}

	for i, seg := range s.Segments {
		if _, err := tx.Exec(`
			INSERT INTO lyric_segments (session_id, position, start_sec, end_sec, text) VALUES (?, ?, ?, ?, ?)
		`, id, i, seg.Start, seg.End, seg.Text); err != nil {
			return fmt.Errorf("failed to insert lyric segment: %w", err)
		}
	}

	for _, name := range s.Results.Keys() {
		if _, err := tx.Exec(`
			INSERT INTO results (session_id, name, url, seq) VALUES (?, ?, ?, ?)
		`, id, name, s.Results[name], s.ResultSeqs[name]); err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	for i, st := range s.Stems {
		name := st.Name
		if name == "" {
			name = fmt.Sprintf("stem_%d", i+1)
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO stems (session_id, name, url) VALUES (?, ?, ?)
		`, id, name, st.URL); err != nil {
			return fmt.Errorf("failed to insert stem: %w", err)
		}
	}

	for i, u := range s.Thumbnails {
		if _, err := tx.Exec(`
			INSERT INTO thumbnails (session_id, position, url) VALUES (?, ?, ?)
		`, id, i, u); err != nil {
			return fmt.Errorf("failed to insert thumbnail: %w", err)
		}
	}

	if s.Quality != nil {
		report, err := json.Marshal(s.Quality)
		if err != nil {
			return fmt.Errorf("failed to encode quality report: %w", err)
		}
		if _, err := tx.Exec(`
			INSERT INTO quality_reports (session_id, voice_profile_id, report) VALUES (?, ?, ?)
		`, id, s.VoiceID, string(report)); err != nil {
			return fmt.Errorf("failed to insert quality report: %w", err)
		}
	}
	return nil
}
