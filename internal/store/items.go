package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// ErrStale is returned by guarded writes when the item is no longer in the
// expected status (or no longer exists) at write time.
var ErrStale = errors.New("item changed since it was read")

const itemColumns = `id, type, category, title, location, date, description, image_url,
	status, owner_id, created_at, updated_at`

// CreateItem stores a new report owned by ownerID in PENDING_APPROVAL.
func CreateItem(ctx context.Context, db *sql.DB, ownerID string, d model.ItemDraft) (*model.Item, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, type, category, title, location, date, description, image_url, status, owner_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, d.Type, d.Category, d.Title, d.Location, d.Date, d.Description,
		nullString(d.ImageURL), model.ItemStatusPendingApproval, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item with its claims by ID. The item and its claims are
// read from one snapshot.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning read: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	claims, err := listClaims(ctx, tx, `WHERE c.item_id = ?`, id)
	if err != nil {
		return nil, err
	}
	item.Claims = claims[id]
	if item.Claims == nil {
		item.Claims = []model.ClaimRequest{}
	}
	return item, tx.Commit()
}

// ListItems returns all items with their claims, newest first.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	return queryItems(ctx, db, ``)
}

// ListItemsByOwner returns the items reported by ownerID, newest first.
func ListItemsByOwner(ctx context.Context, db *sql.DB, ownerID string) ([]model.Item, error) {
	return queryItems(ctx, db, `WHERE i.owner_id = ?`, ownerID)
}

// ListItemsClaimedBy returns the items holding at least one claim by
// claimantID, newest first.
func ListItemsClaimedBy(ctx context.Context, db *sql.DB, claimantID string) ([]model.Item, error) {
	return queryItems(ctx, db,
		`WHERE EXISTS (SELECT 1 FROM claims mine WHERE mine.item_id = i.id AND mine.claimant_id = ?)`,
		claimantID,
	)
}

// queryItems reads items and their claims from one snapshot, so a listing
// never pairs a new claim with the item's previous status.
func queryItems(ctx context.Context, db *sql.DB, where string, args ...any) ([]model.Item, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("beginning read: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT i.id, i.type, i.category, i.title, i.location, i.date, i.description, i.image_url,
		        i.status, i.owner_id, i.created_at, i.updated_at
		 FROM items i `+where+`
		 ORDER BY i.created_at DESC, i.rowid DESC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing items: %w", err)
	}
	rows.Close()

	if len(items) == 0 {
		return items, tx.Commit()
	}

	claims, err := listClaims(ctx, tx,
		`JOIN items i ON i.id = c.item_id `+where, args...,
	)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Claims = claims[items[i].ID]
		if items[i].Claims == nil {
			items[i].Claims = []model.ClaimRequest{}
		}
	}
	return items, tx.Commit()
}

// SetItemStatus moves an item from one status to another. It returns ErrStale
// if the item is not in the from status anymore.
func SetItemStatus(ctx context.Context, db *sql.DB, id string, from, to model.ItemStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	return expectOneRow(result)
}

// DeleteItem removes an item and all of its claims. It returns ErrStale if the
// item no longer exists.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE item_id = ?`, id); err != nil {
		return fmt.Errorf("deleting claims: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing item deletion: %w", err)
	}
	return nil
}

// SetItemImage stores a processed photo and points the item's image URL at it.
func SetItemImage(ctx context.Context, db *sql.DB, id string, image []byte, mime, imageURL string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, image_url = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		image, mime, imageURL, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return expectOneRow(result)
}

// GetItemImage returns an item's photo and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*model.Item, error) {
	item := &model.Item{}
	var imageURL sql.NullString
	err := s.Scan(&item.ID, &item.Type, &item.Category, &item.Title, &item.Location, &item.Date,
		&item.Description, &imageURL, &item.Status, &item.OwnerID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ImageURL = imageURL.String
	return item, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return ErrStale
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
