package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/socialconnect-core/pkg/sector"
)

// User is one case record (usager).
type User struct {
	ID                    string          `json:"id"`
	ServiceID             string          `json:"service_id"`
	Nom                   string          `json:"nom"`
	Prenom                string          `json:"prenom"`
	Secteur               string          `json:"secteur"`
	AdresseRue            string          `json:"adresse_rue"`
	NotesGenerales        string          `json:"notes_generales"`
	Remarques             string          `json:"remarques"`
	InformationImportante string          `json:"information_importante"`
	Annee                 int             `json:"annee"`
	CreatedAt             time.Time       `json:"created_at"`
	Problematiques        []Problematique `json:"problematiques"`
	Actions               []Action        `json:"actions"`
}

// Problematique is a problem category attached to a user.
type Problematique struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Type            string    `json:"type"`
	Description     string    `json:"description"`
	DateSignalement time.Time `json:"date_signalement"`
	Auto            bool      `json:"auto,omitempty"`
}

// Action is an intervention recorded for a user.
type Action struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
}

// Filter narrows ListUsers. Zero values match everything.
type Filter struct {
	ServiceID string
	Annee     int
}

func (f Filter) where(alias string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.ServiceID != "" {
		conds = append(conds, alias+"service_id = ?")
		args = append(args, f.ServiceID)
	}
	if f.Annee != 0 {
		conds = append(conds, alias+"annee = ?")
		args = append(args, f.Annee)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// SectorRecord returns the fields the sector classifier reads.
func (u *User) SectorRecord() sector.Record {
	return sector.Record{ExplicitSector: u.Secteur, AddressStreet: u.AdresseRue}
}

// ProblematiqueTypes returns the types of the stored problematiques.
func (u *User) ProblematiqueTypes() []string {
	out := make([]string, len(u.Problematiques))
	for i, p := range u.Problematiques {
		out[i] = p.Type
	}
	return out
}

// ActionTypes returns the types of the stored actions.
func (u *User) ActionTypes() []string {
	out := make([]string, len(u.Actions))
	for i, a := range u.Actions {
		out[i] = a.Type
	}
	return out
}

const insertUser = `INSERT INTO usagers
	(id, service_id, nom, prenom, secteur, adresse_rue, notes_generales, remarques,
	 information_importante, annee, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *Store) insertUser(ctx context.Context, ex execer, u *User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = s.stamp(u.CreatedAt)
	_, err := ex.ExecContext(ctx, insertUser,
		u.ID, u.ServiceID, u.Nom, u.Prenom, u.Secteur, u.AdresseRue, u.NotesGenerales,
		u.Remarques, u.InformationImportante, u.Annee, toMillis(u.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// CreateUser inserts u, assigning an id when empty. Nested problematiques and
// actions are not written; use CreateProblematique and CreateAction.
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	return s.insertUser(ctx, s.db, u)
}

// CreateUsers inserts all users in one transaction.
func (s *Store) CreateUsers(ctx context.Context, users []*User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, u := range users {
		if err := s.insertUser(ctx, tx, u); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit users: %w", err)
	}
	return nil
}

const userColumns = `u.id, u.service_id, u.nom, u.prenom, u.secteur, u.adresse_rue,
	u.notes_generales, u.remarques, u.information_importante, u.annee, u.created_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var (
		u       User
		created int64
	)
	if err := row.Scan(&u.ID, &u.ServiceID, &u.Nom, &u.Prenom, &u.Secteur, &u.AdresseRue,
		&u.NotesGenerales, &u.Remarques, &u.InformationImportante, &u.Annee, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(created)
	u.Problematiques = []Problematique{}
	u.Actions = []Action{}
	return &u, nil
}

// GetUser returns the user with its problematiques and actions.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM usagers u WHERE u.id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	byUser := map[string]*User{u.ID: u}
	if err := s.attachProblematiques(ctx, ` WHERE p.user_id = ?`, []any{id}, byUser); err != nil {
		return nil, err
	}
	if err := s.attachActions(ctx, ` WHERE a.user_id = ?`, []any{id}, byUser); err != nil {
		return nil, err
	}
	return u, nil
}

// ListUsers returns the users matching f, with their problematiques and
// actions, ordered by name then id.
func (s *Store) ListUsers(ctx context.Context, f Filter) ([]*User, error) {
	where, args := f.where("u.")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM usagers u`+where+` ORDER BY u.nom, u.prenom, u.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []*User{}
	byUser := make(map[string]*User)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
		byUser[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return users, nil
	}

	join := ` JOIN usagers u ON u.id = %s.user_id` + where
	if err := s.attachProblematiques(ctx, fmt.Sprintf(join, "p"), args, byUser); err != nil {
		return nil, err
	}
	if err := s.attachActions(ctx, fmt.Sprintf(join, "a"), args, byUser); err != nil {
		return nil, err
	}
	return users, nil
}

// SectorRecords returns only the classifier inputs of the users matching f.
func (s *Store) SectorRecords(ctx context.Context, f Filter) ([]sector.Record, error) {
	where, args := f.where("")
	rows, err := s.db.QueryContext(ctx, `SELECT secteur, adresse_rue FROM usagers`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("sector records: %w", err)
	}
	defer rows.Close()

	var recs []sector.Record
	for rows.Next() {
		var r sector.Record
		if err := rows.Scan(&r.ExplicitSector, &r.AddressStreet); err != nil {
			return nil, fmt.Errorf("scan sector record: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

func (s *Store) attachProblematiques(ctx context.Context, clause string, args []any, byUser map[string]*User) error {
	rows, err := s.db.QueryContext(ctx, `SELECT p.id, p.user_id, p.type, p.description, p.date_signalement
		FROM problematiques p`+clause+` ORDER BY p.date_signalement, p.id`, args...)
	if err != nil {
		return fmt.Errorf("load problematiques: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p  Problematique
			ts int64
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Type, &p.Description, &ts); err != nil {
			return fmt.Errorf("scan problematique: %w", err)
		}
		p.DateSignalement = fromMillis(ts)
		if u, ok := byUser[p.UserID]; ok {
			u.Problematiques = append(u.Problematiques, p)
		}
	}
	return rows.Err()
}

func (s *Store) attachActions(ctx context.Context, clause string, args []any, byUser map[string]*User) error {
	rows, err := s.db.QueryContext(ctx, `SELECT a.id, a.user_id, a.type, a.description, a.date
		FROM actions a`+clause+` ORDER BY a.date, a.id`, args...)
	if err != nil {
		return fmt.Errorf("load actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a  Action
			ts int64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Description, &ts); err != nil {
			return fmt.Errorf("scan action: %w", err)
		}
		a.Date = fromMillis(ts)
		if u, ok := byUser[a.UserID]; ok {
			u.Actions = append(u.Actions, a)
		}
	}
	return rows.Err()
}
