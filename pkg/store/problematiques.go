package store

import (
	"context"
	"fmt"
)

// ReconcileStats counts the changes made by ReconcileProblematiques.
type ReconcileStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

func (s *Store) insertProblematique(ctx context.Context, ex execer, p *Problematique) error {
	if p.ID == "" {
		p.ID = newID()
	}
	p.DateSignalement = s.stamp(p.DateSignalement)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO problematiques (id, user_id, type, description, date_signalement) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Type, p.Description, toMillis(p.DateSignalement))
	if err != nil {
		return fmt.Errorf("insert problematique %s: %w", p.Type, err)
	}
	return nil
}

func (s *Store) insertAction(ctx context.Context, ex execer, a *Action) error {
	if a.ID == "" {
		a.ID = newID()
	}
	a.Date = s.stamp(a.Date)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO actions (id, user_id, type, description, date) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Type, a.Description, toMillis(a.Date))
	if err != nil {
		return fmt.Errorf("insert action %s: %w", a.Type, err)
	}
	return nil
}

// CreateProblematique attaches p to p.UserID.
func (s *Store) CreateProblematique(ctx context.Context, p *Problematique) error {
	if err := userExists(ctx, s.db, p.UserID); err != nil {
		return err
	}
	return s.insertProblematique(ctx, s.db, p)
}

// CreateAction attaches a to a.UserID.
func (s *Store) CreateAction(ctx context.Context, a *Action) error {
	if err := userExists(ctx, s.db, a.UserID); err != nil {
		return err
	}
	return s.insertAction(ctx, s.db, a)
}

// AddDetections writes new problematiques and actions for one user in a
// single transaction.
func (s *Store) AddDetections(ctx context.Context, userID string, ps []Problematique, as []Action) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := userExists(ctx, tx, userID); err != nil {
		return err
	}
	for i := range ps {
		ps[i].UserID = userID
		if err := s.insertProblematique(ctx, tx, &ps[i]); err != nil {
			return err
		}
	}
	for i := range as {
		as[i].UserID = userID
		if err := s.insertAction(ctx, tx, &as[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit detections for %s: %w", userID, err)
	}
	return nil
}

// ReconcileProblematiques makes the stored problematiques of userID match
// desired. Stored rows whose id is not in desired are deleted. Desired
// entries with a valid UUID naming a stored row update it; every other entry
// (empty, malformed or unknown id) is created with a fresh id. When a stored
// id is repeated only its first entry applies. A zero date keeps the stored
// date on update and means now on create.
func (s *Store) ReconcileProblematiques(ctx context.Context, userID string, desired []Problematique) (ReconcileStats, error) {
	var stats ReconcileStats

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := userExists(ctx, tx, userID); err != nil {
		return stats, err
	}

	rows, err := tx.QueryContext(ctx, `SELECT id FROM problematiques WHERE user_id = ?`, userID)
	if err != nil {
		return stats, fmt.Errorf("load problematiques: %w", err)
	}
	stored := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return stats, fmt.Errorf("scan problematique id: %w", err)
		}
		stored[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("load problematiques: %w", err)
	}

	keep := make(map[string]bool)
	for _, p := range desired {
		if validID(p.ID) && stored[p.ID] {
			keep[p.ID] = true
		}
	}
	for id := range stored {
		if keep[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM problematiques WHERE id = ?`, id); err != nil {
			return stats, fmt.Errorf("delete problematique %s: %w", id, err)
		}
		stats.Deleted++
	}

	updated := make(map[string]bool)
	for _, p := range desired {
		if keep[p.ID] {
			if updated[p.ID] {
				continue
			}
			updated[p.ID] = true
			var err error
			if p.DateSignalement.IsZero() {
				_, err = tx.ExecContext(ctx,
					`UPDATE problematiques SET type = ?, description = ? WHERE id = ?`,
					p.Type, p.Description, p.ID)
			} else {
				_, err = tx.ExecContext(ctx,
					`UPDATE problematiques SET type = ?, description = ?, date_signalement = ? WHERE id = ?`,
					p.Type, p.Description, toMillis(p.DateSignalement), p.ID)
			}
			if err != nil {
				return stats, fmt.Errorf("update problematique %s: %w", p.ID, err)
			}
			stats.Updated++
			continue
		}
		p.ID = ""
		p.UserID = userID
		if err := s.insertProblematique(ctx, tx, &p); err != nil {
			return stats, err
		}
		stats.Created++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit reconcile for %s: %w", userID, err)
	}
	return stats, nil
}
