package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/lostfound/internal/model"
)

// AddClaim appends a PENDING claim to an item and moves the item from one
// status to another in a single transaction. It returns ErrStale if the item
// is not in the from status anymore; no claim is stored in that case.
func AddClaim(ctx context.Context, db *sql.DB, itemID string, c model.ClaimRequest, from, to model.ItemStatus) (*model.ClaimRequest, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, itemID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO claims (id, item_id, claimant_id, claimant_email, message, contact, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, itemID, c.ClaimantID, c.ClaimantEmail, c.Message, c.Contact, model.ClaimStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("recording claim: %w", err)
	}

	claim := &model.ClaimRequest{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, item_id, claimant_id, claimant_email, message, contact, status, created_at
		 FROM claims WHERE id = ?`, id,
	).Scan(&claim.ID, &claim.ItemID, &claim.ClaimantID, &claim.ClaimantEmail,
		&claim.Message, &claim.Contact, &claim.Status, &claim.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading claim: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return claim, nil
}

// ResolveClaim moves a PENDING claim to the given status and the item from one
// status to another in a single transaction. Passing from == to leaves the
// item status as is but still requires it. It returns ErrStale if either the
// claim is no longer pending or the item is no longer in the from status.
func ResolveClaim(ctx context.Context, db *sql.DB, itemID, claimID string, status model.ClaimStatus, from, to model.ItemStatus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = ? WHERE id = ? AND item_id = ? AND status = ?`,
		status, claimID, itemID, model.ClaimStatusPending,
	)
	if err != nil {
		return fmt.Errorf("updating claim status: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ?`,
		to, itemID, from,
	)
	if err != nil {
		return fmt.Errorf("updating item status: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing claim resolution: %w", err)
	}
	return nil
}

// listClaims returns claims grouped by item ID, each group in submission order.
// The clause is appended after "FROM claims c".
func listClaims(ctx context.Context, q querier, clause string, args ...any) (map[string][]model.ClaimRequest, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT c.id, c.item_id, c.claimant_id, c.claimant_email, c.message, c.contact, c.status, c.created_at
		 FROM claims c `+clause+`
		 ORDER BY c.created_at, c.rowid`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	claims := make(map[string][]model.ClaimRequest)
	for rows.Next() {
		var c model.ClaimRequest
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.ClaimantEmail,
			&c.Message, &c.Contact, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims[c.ItemID] = append(claims[c.ItemID], c)
	}
	return claims, rows.Err()
}
