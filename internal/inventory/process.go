package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrProcessNotFound = errors.New("Transaction process not found")
	ErrInvalidProcess  = errors.New("invalid transaction process")
)

type ProcessType string

const (
	ProcessPurchase   ProcessType = "PURCHASE"
	ProcessSale       ProcessType = "SALE"
	ProcessReturn     ProcessType = "RETURN"
	ProcessAdjustment ProcessType = "ADJUSTMENT"
)

func (t ProcessType) valid() bool {
	switch t {
	case ProcessPurchase, ProcessSale, ProcessReturn, ProcessAdjustment:
		return true
	}
	return false
}

type ProcessStatus string

const (
	ProcessPending   ProcessStatus = "PENDING"
	ProcessCompleted ProcessStatus = "COMPLETED"
	ProcessCancelled ProcessStatus = "CANCELLED"
)

func (s ProcessStatus) valid() bool {
	switch s {
	case ProcessPending, ProcessCompleted, ProcessCancelled:
		return true
	}
	return false
}

// TransactionProcess is the commercial side of a stock transaction: who
// processed it, at what price and for which supplier or customer.
type TransactionProcess struct {
	ID               string        `db:"id" json:"id"`
	TransactionID    string        `db:"transaction_id" json:"transactionId"`
	ProcessType      ProcessType   `db:"process_type" json:"processType"`
	Status           ProcessStatus `db:"status" json:"status"`
	Quantity         int           `db:"quantity" json:"quantity"`
	UnitPrice        float64       `db:"unit_price" json:"unitPrice"`
	TotalAmount      float64       `db:"total_amount" json:"totalAmount"`
	Supplier         string        `db:"supplier" json:"supplier,omitempty"`
	Customer         string        `db:"customer" json:"customer,omitempty"`
	Notes            string        `db:"notes" json:"notes,omitempty"`
	ProcessedBy      string        `db:"processed_by" json:"processedBy"`
	ProcessedByName  string        `db:"processed_by_name" json:"processedByName"`
	ProcessedByEmail string        `db:"processed_by_email" json:"processedByEmail"`
	ProcessedAt      time.Time     `db:"processed_at" json:"processedAt"`
	CompletedAt      *time.Time    `db:"completed_at" json:"completedAt,omitempty"`
}

// ProcessInput creates a TransactionProcess. TotalAmount defaults to
// Quantity × UnitPrice and Status to PENDING.
type ProcessInput struct {
	TransactionID string        `json:"transactionId"`
	ProcessType   ProcessType   `json:"processType"`
	Status        ProcessStatus `json:"status"`
	Quantity      int           `json:"quantity"`
	UnitPrice     float64       `json:"unitPrice"`
	TotalAmount   *float64      `json:"totalAmount"`
	Supplier      string        `json:"supplier"`
	Customer      string        `json:"customer"`
	Notes         string        `json:"notes"`
}

// ProcessUpdate changes the non-nil fields of a TransactionProcess.
type ProcessUpdate struct {
	ProcessType *ProcessType   `json:"processType"`
	Status      *ProcessStatus `json:"status"`
	Quantity    *int           `json:"quantity"`
	UnitPrice   *float64       `json:"unitPrice"`
	TotalAmount *float64       `json:"totalAmount"`
	Supplier    *string        `json:"supplier"`
	Customer    *string        `json:"customer"`
	Notes       *string        `json:"notes"`
}

func invalidProcess(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidProcess, fmt.Sprintf(format, args...))
}

func validateProcess(p *TransactionProcess) error {
	if !p.ProcessType.valid() {
		return invalidProcess("processType must be PURCHASE, SALE, RETURN or ADJUSTMENT")
	}
	if !p.Status.valid() {
		return invalidProcess("status must be PENDING, COMPLETED or CANCELLED")
	}
	if p.Quantity <= 0 {
		return invalidProcess("quantity must be positive")
	}
	if p.UnitPrice < 0 || p.TotalAmount < 0 {
		return invalidProcess("amounts cannot be negative")
	}
	return nil
}

const selectProcess = `
	SELECT tp.*, COALESCE(u.name, '') AS processed_by_name, COALESCE(u.email, '') AS processed_by_email
	FROM transaction_processes tp
	LEFT JOIN users u ON u.id = tp.processed_by`

// CreateProcess records a process for an existing transaction on behalf of
// userID.
func (s *Store) CreateProcess(ctx context.Context, userID string, in ProcessInput) (*TransactionProcess, error) {
	if strings.TrimSpace(in.TransactionID) == "" {
		return nil, invalidProcess("transactionId is required")
	}
	status := in.Status
	if status == "" {
		status = ProcessPending
	}
	total := float64(in.Quantity) * in.UnitPrice
	if in.TotalAmount != nil {
		total = *in.TotalAmount
	}
	now := s.now()
	p := &TransactionProcess{
		ID:            uuid.NewString(),
		TransactionID: in.TransactionID,
		ProcessType:   in.ProcessType,
		Status:        status,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		TotalAmount:   total,
		Supplier:      strings.TrimSpace(in.Supplier),
		Customer:      strings.TrimSpace(in.Customer),
		Notes:         strings.TrimSpace(in.Notes),
		ProcessedBy:   userID,
		ProcessedAt:   now,
	}
	if status == ProcessCompleted {
		p.CompletedAt = &now
	}
	if err := validateProcess(p); err != nil {
		return nil, err
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM transactions WHERE id = ?`, in.TransactionID)
		if err != nil {
			return fmt.Errorf("check transaction: %w", err)
		}
		if exists == 0 {
			return invalidProcess("transaction %s does not exist", in.TransactionID)
		}
		_, err = tx.NamedExecContext(ctx, `
			INSERT INTO transaction_processes
				(id, transaction_id, process_type, status, quantity, unit_price, total_amount,
				 supplier, customer, notes, processed_by, processed_at, completed_at)
			VALUES
				(:id, :transaction_id, :process_type, :status, :quantity, :unit_price, :total_amount,
				 :supplier, :customer, :notes, :processed_by, :processed_at, :completed_at)`, p)
		if err != nil {
			return fmt.Errorf("insert transaction process: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetProcess(ctx, p.ID)
}

func (s *Store) GetProcess(ctx context.Context, id string) (*TransactionProcess, error) {
	var p TransactionProcess
	err := s.db.GetContext(ctx, &p, selectProcess+` WHERE tp.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProcessNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction process: %w", err)
	}
	return &p, nil
}

// ListProcesses returns every process, newest first.
func (s *Store) ListProcesses(ctx context.Context) ([]TransactionProcess, error) {
	processes := []TransactionProcess{}
	if err := s.db.SelectContext(ctx, &processes, selectProcess+` ORDER BY tp.processed_at DESC, tp.rowid DESC`); err != nil {
		return nil, fmt.Errorf("list transaction processes: %w", err)
	}
	return processes, nil
}

// UpdateProcess applies upd. Moving into COMPLETED stamps CompletedAt.
func (s *Store) UpdateProcess(ctx context.Context, id string, upd ProcessUpdate) (*TransactionProcess, error) {
	p, err := s.GetProcess(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.ProcessType != nil {
		p.ProcessType = *upd.ProcessType
	}
	if upd.Status != nil {
		if *upd.Status == ProcessCompleted && p.Status != ProcessCompleted {
			now := s.now()
			p.CompletedAt = &now
		}
		p.Status = *upd.Status
	}
	if upd.Quantity != nil {
		p.Quantity = *upd.Quantity
	}
	if upd.UnitPrice != nil {
		p.UnitPrice = *upd.UnitPrice
	}
	if upd.TotalAmount != nil {
		p.TotalAmount = *upd.TotalAmount
	}
	if upd.Supplier != nil {
		p.Supplier = strings.TrimSpace(*upd.Supplier)
	}
	if upd.Customer != nil {
		p.Customer = strings.TrimSpace(*upd.Customer)
	}
	if upd.Notes != nil {
		p.Notes = strings.TrimSpace(*upd.Notes)
	}
	if err := validateProcess(p); err != nil {
		return nil, err
	}

	_, err = s.db.NamedExecContext(ctx, `
		UPDATE transaction_processes SET
			process_type = :process_type, status = :status, quantity = :quantity,
			unit_price = :unit_price, total_amount = :total_amount, supplier = :supplier,
			customer = :customer, notes = :notes, completed_at = :completed_at
		WHERE id = :id`, p)
	if err != nil {
		return nil, fmt.Errorf("update transaction process: %w", err)
	}
	return p, nil
}

func (s *Store) DeleteProcess(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transaction_processes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction process: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction process: %w", err)
	}
	if n == 0 {
		return ErrProcessNotFound
	}
	return nil
}
