package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"media-gallery-platform/internal/models"
)

// PaymentRepository handles payment data operations
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, reference, actor_id, amount_cents, currency, provider_tx_id, status, line_items, failure_code, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var lineItems []byte
	err := row.Scan(
		&p.ID,
		&p.Reference,
		&p.ActorID,
		&p.AmountCents,
		&p.Currency,
		&p.ProviderTxID,
		&p.Status,
		&lineItems,
		&p.FailureCode,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(lineItems, &p.LineItems); err != nil {
		return nil, fmt.Errorf("failed to decode payment line items: %w", err)
	}
	return p, nil
}

// Create writes a pending payment row. The reference is unique: a client
// retry carrying the same idempotency reference gets ErrDuplicateEntry,
// and the caller reuses the existing row instead of opening a second
// charge.
func (r *PaymentRepository) Create(payment *models.Payment) (*models.Payment, error) {
	lineItems, err := json.Marshal(payment.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment line items: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO payments (reference, actor_id, amount_cents, currency, provider_tx_id, status, line_items, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING %s`, paymentColumns)

	created, err := scanPayment(r.db.QueryRow(
		query,
		payment.Reference,
		payment.ActorID,
		payment.AmountCents,
		payment.Currency,
		payment.ProviderTxID,
		models.PaymentPending,
		lineItems,
		time.Now(),
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, models.ErrDuplicateEntry
		}
		return nil, storeErr("failed to create payment", err)
	}

	return created, nil
}

// GetByReference retrieves a payment by our idempotency reference.
func (r *PaymentRepository) GetByReference(reference string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE reference = $1", paymentColumns)

	payment, err := scanPayment(r.db.QueryRow(query, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPaymentNotFound
		}
		return nil, storeErr("failed to get payment", err)
	}

	return payment, nil
}

// GetByProviderTxID retrieves a payment by the provider's transaction id.
func (r *PaymentRepository) GetByProviderTxID(providerTxID string) (*models.Payment, error) {
	query := fmt.Sprintf("SELECT %s FROM payments WHERE provider_tx_id = $1", paymentColumns)

	payment, err := scanPayment(r.db.QueryRow(query, providerTxID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrPaymentNotFound
		}
		return nil, storeErr("failed to get payment by provider tx", err)
	}

	return payment, nil
}

// SetProviderTxID records the provider transaction id once the provider
// accepts the checkout.
func (r *PaymentRepository) SetProviderTxID(reference, providerTxID string) error {
	_, err := r.db.Exec(`
		UPDATE payments SET provider_tx_id = $2, updated_at = $3
		WHERE reference = $1`, reference, providerTxID, time.Now())
	if err != nil {
		return storeErr("failed to set provider tx id", err)
	}
	return nil
}

// CompleteWithUnlocks atomically transitions a pending payment to
// completed and writes its unlock records in the same transaction. The
// status update is conditional on status='pending', so of two racing
// reconcilers (webhook vs. poll) exactly one observes applied=true and
// performs the grants; the loser sees applied=false and must treat the
// payment as already processed.
func (r *PaymentRepository) CompleteWithUnlocks(reference, providerTxID string, unlocks []models.UnlockRecord) (applied bool, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, storeErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var paymentID int
	err = tx.QueryRow(`
		UPDATE payments
		SET status = $2, provider_tx_id = $3, updated_at = $4
		WHERE reference = $1 AND status = $5
		RETURNING id`,
		reference, models.PaymentCompleted, providerTxID, time.Now(), models.PaymentPending,
	).Scan(&paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race or already terminal; nothing was written.
			return false, nil
		}
		return false, storeErr("failed to complete payment", err)
	}

	for _, unlock := range unlocks {
		unlock.PaymentID = &paymentID
		if err := grantTx(tx, unlock); err != nil {
			return false, storeErr("failed to grant unlock", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, storeErr("failed to commit payment completion", err)
	}

	return true, nil
}

// MarkFailed transitions a pending payment to failed with the provider's
// failure code. Conditional on pending for the same reason as completion.
func (r *PaymentRepository) MarkFailed(reference, providerTxID, failureCode string) (applied bool, err error) {
	result, err := r.db.Exec(`
		UPDATE payments
		SET status = $2, provider_tx_id = $3, failure_code = $4, updated_at = $5
		WHERE reference = $1 AND status = $6`,
		reference, models.PaymentFailed, providerTxID, failureCode, time.Now(), models.PaymentPending)
	if err != nil {
		return false, storeErr("failed to mark payment failed", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("failed to get rows affected", err)
	}

	return rowsAffected == 1, nil
}

// Refund transitions a completed payment to refunded. This is the only
// transition out of a terminal state and requires explicit admin
// authorization at the handler layer.
func (r *PaymentRepository) Refund(reference string) (applied bool, err error) {
	result, err := r.db.Exec(`
		UPDATE payments
		SET status = $2, updated_at = $3
		WHERE reference = $1 AND status = $4`,
		reference, models.PaymentRefunded, time.Now(), models.PaymentCompleted)
	if err != nil {
		return false, storeErr("failed to refund payment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("failed to get rows affected", err)
	}

	return rowsAffected == 1, nil
}

// ListByActor retrieves an actor's payments, most recent first.
func (r *PaymentRepository) ListByActor(actorID string, status models.PaymentStatus, limit int) ([]*models.Payment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM payments
		WHERE actor_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3`, paymentColumns)

	rows, err := r.db.Query(query, actorID, string(status), limit)
	if err != nil {
		return nil, storeErr("failed to list payments", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, storeErr("failed to scan payment", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, storeErr("error iterating payments", err)
	}

	return payments, nil
}
