package announcement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/placementcell/placementcell/internal/database"
	log "github.com/sirupsen/logrus"
)

const createdAtFormat = time.RFC3339

type Repository interface {
	Store(ctx context.Context, announcement Announcement) error
	FindAll(ctx context.Context) ([]Announcement, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, announcement Announcement) error {
	query := `INSERT INTO announcement (id, title, body, posted_by, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := database.Querier(ctx, r.db).ExecContext(ctx, query,
		announcement.ID,
		announcement.Title,
		announcement.Body,
		announcement.PostedBy,
		announcement.CreatedAt.UTC().Format(createdAtFormat),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) FindAll(ctx context.Context) ([]Announcement, error) {
	query := `SELECT id, title, body, posted_by, created_at FROM announcement ORDER BY created_at DESC`

	rows, err := database.Querier(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query announcements: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		var a Announcement
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.PostedBy, &createdAt); err != nil {
			err := fmt.Errorf("could not scan announcement: %w", err)
			log.Error(err)
			return nil, err
		}
		if a.CreatedAt, err = time.Parse(createdAtFormat, createdAt); err != nil {
			err := fmt.Errorf("could not parse created at: %w", err)
			log.Error(err)
			return nil, err
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return announcements, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM announcement WHERE id = $1`

	result, err := database.Querier(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}
