package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WithdrawService runs the cash-out workflow: a user asks an agent to pay
// out part of their main balance, and the agent approves or rejects it.
type WithdrawService struct {
	store     QueryStore
	minAmount int64
	audit     *AuditService
	activity  ActivityRecorder
}

func NewWithdrawService(store QueryStore, minAmountMicros int64) *WithdrawService {
	return &WithdrawService{
		store:     store,
		minAmount: minAmountMicros,
		audit:     NewAuditService(store),
		activity:  nopRecorder{},
	}
}

// WithActivity mirrors committed entries into rec.
func (s *WithdrawService) WithActivity(rec ActivityRecorder) *WithdrawService {
	if rec != nil {
		s.activity = rec
	}
	return s
}

type WithdrawInput struct {
	UserEmail     string
	AgentEmail    string
	Method        string
	PaymentNumber string
	AmountMicros  int64
}

func (in *WithdrawInput) normalize() error {
	in.UserEmail = strings.ToLower(strings.TrimSpace(in.UserEmail))
	in.AgentEmail = strings.ToLower(strings.TrimSpace(in.AgentEmail))
	in.Method = strings.TrimSpace(in.Method)
	in.PaymentNumber = strings.TrimSpace(in.PaymentNumber)
	if in.AmountMicros <= 0 {
		return models.ErrNonPositiveAmount
	}
	if in.Method == "" {
		return fmt.Errorf("%w: method is required", ErrInvalidInput)
	}
	if in.PaymentNumber == "" {
		return fmt.Errorf("%w: payment_number is required", ErrInvalidInput)
	}
	return nil
}

// Request debits the user's main compartment immediately and parks the funds
// in a pending request addressed to the agent.
func (s *WithdrawService) Request(ctx context.Context, in WithdrawInput) (*models.WithdrawRequest, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if in.AmountMicros < s.minAmount {
		return nil, models.ErrBelowMinimumWithdraw
	}

	q := s.store.Queries()
	user, err := q.GetUserByEmail(ctx, in.UserEmail)
	if err != nil {
		return nil, notFound(err, models.ErrUserNotFound, "resolve user")
	}
	agent, err := q.GetUserByEmail(ctx, in.AgentEmail)
	if err != nil {
		return nil, notFound(err, models.ErrAccountNotFound, "resolve agent")
	}
	if agent.Role != domain.RoleAgent {
		return nil, fmt.Errorf("%w: %s is not an agent", models.ErrAccountNotFound, in.AgentEmail)
	}
	if agent.ID == user.ID {
		return nil, fmt.Errorf("%w: agent cannot withdraw to itself", ErrInvalidInput)
	}

	userID := repository.FromPgUUID(user.ID)
	requestID := uuid.New()
	var (
		row   repository.WithdrawRequest
		entry models.LedgerEntry
	)
	err = s.store.RunInTx(ctx, func(q repository.Querier) error {
		account, err := adjustCompartment(ctx, q, userID, domain.CompartmentMain, -in.AmountMicros)
		if err != nil {
			return err
		}
		entry, err = appendEntry(ctx, q, entryInput{
			accountID:   userID,
			entryType:   domain.EntryTypeWithdraw,
			compartment: domain.CompartmentMain,
			amount:      -in.AmountMicros,
			currency:    account.Currency,
			note:        fmt.Sprintf("withdraw via %s to %s", in.Method, in.PaymentNumber),
			referenceID: requestID,
		})
		if err != nil {
			return err
		}
		row, err = q.InsertWithdrawRequest(ctx, repository.InsertWithdrawRequestParams{
			ID:            repository.ToPgUUID(requestID),
			UserID:        user.ID,
			UserEmail:     user.Email,
			AgentID:       agent.ID,
			AgentEmail:    agent.Email,
			Method:        in.Method,
			PaymentNumber: in.PaymentNumber,
			AmountMicros:  in.AmountMicros,
			DebitEntryID:  repository.ToPgUUID(entry.ID),
		})
		if err != nil {
			return fmt.Errorf("insert withdraw request: %w", err)
		}
		rows, err := q.IncrementWithdrawCount(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("increment withdraw count: %w", err)
		}
		if err := requireExactlyOne(rows, "increment withdraw count"); err != nil {
			return err
		}
		return s.audit.Write(ctx, q, "withdraw", requestID, &userID, "requested", "", domain.WithdrawStatusPending, nil)
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementWithdrawTransition(domain.WithdrawStatusPending)
	s.activity.Record(ctx, entry)
	return toWithdrawRequest(row), nil
}

// Approve pays the held funds to the agent's main compartment.
func (s *WithdrawService) Approve(ctx context.Context, requestID uuid.UUID, actorID *uuid.UUID) (*models.WithdrawRequest, error) {
	var (
		row     repository.WithdrawRequest
		entries []models.LedgerEntry
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		entries = entries[:0]
		var err error
		row, err = s.lockPending(ctx, q, requestID, actorID)
		if err != nil {
			return err
		}
		agentID := repository.FromPgUUID(row.AgentID)
		userID := repository.FromPgUUID(row.UserID)

		agent, err := adjustCompartment(ctx, q, agentID, domain.CompartmentMain, row.AmountMicros)
		if err != nil {
			return err
		}
		credit, err := appendEntry(ctx, q, entryInput{
			accountID:   agentID,
			entryType:   domain.EntryTypeWithdraw,
			compartment: domain.CompartmentMain,
			amount:      row.AmountMicros,
			currency:    agent.Currency,
			note:        "withdraw payout from " + row.UserEmail,
			referenceID: requestID,
		})
		if err != nil {
			return err
		}
		confirm, err := appendEntry(ctx, q, entryInput{
			accountID:   userID,
			entryType:   domain.EntryTypeWithdraw,
			compartment: domain.CompartmentMain,
			amount:      0,
			currency:    agent.Currency,
			note:        "withdraw approved by " + row.AgentEmail,
			referenceID: requestID,
		})
		if err != nil {
			return err
		}
		entries = append(entries, credit, confirm)

		if err := s.setStatus(ctx, q, row, domain.WithdrawStatusApproved); err != nil {
			return err
		}
		row.Status = domain.WithdrawStatusApproved
		return s.audit.Write(ctx, q, "withdraw", requestID, actorID, "approved", domain.WithdrawStatusPending, domain.WithdrawStatusApproved, nil)
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementWithdrawTransition(domain.WithdrawStatusApproved)
	s.activity.Record(ctx, entries...)
	return toWithdrawRequest(row), nil
}

// Reject returns the held funds to the user. The original debit entry is
// voided so the withdrawal leaves no net trace in the ledger; when it cannot
// be found a refund entry balances it instead.
func (s *WithdrawService) Reject(ctx context.Context, requestID uuid.UUID, actorID *uuid.UUID) (*models.WithdrawRequest, error) {
	var (
		row         repository.WithdrawRequest
		entries     []models.LedgerEntry
		voidedEntry uuid.UUID
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		entries = entries[:0]
		voidedEntry = uuid.Nil
		var err error
		row, err = s.lockPending(ctx, q, requestID, actorID)
		if err != nil {
			return err
		}
		userID := repository.FromPgUUID(row.UserID)

		account, err := adjustCompartment(ctx, q, userID, domain.CompartmentMain, row.AmountMicros)
		if err != nil {
			return err
		}

		// The void must run while the request is still pending.
		voided := int64(0)
		if row.DebitEntryID.Valid {
			voided, err = q.DeleteWithdrawDebitEntry(ctx, repository.DeleteWithdrawDebitEntryParams{
				ID:        row.DebitEntryID,
				AccountID: row.UserID,
			})
			if err != nil {
				return fmt.Errorf("void withdraw debit: %w", err)
			}
		}

		action := "debit_voided"
		if voided == 1 {
			voidedEntry = repository.FromPgUUID(row.DebitEntryID)
		} else {
			zap.L().Warn("withdraw debit entry not found, writing refund entry",
				zap.String("withdraw_id", requestID.String()),
			)
			refund, err := appendEntry(ctx, q, entryInput{
				accountID:   userID,
				entryType:   domain.EntryTypeWithdraw,
				compartment: domain.CompartmentMain,
				amount:      row.AmountMicros,
				currency:    account.Currency,
				note:        "withdraw rejected, refund",
				referenceID: requestID,
			})
			if err != nil {
				return err
			}
			entries = append(entries, refund)
			action = "refunded"
		}
		metadata, err := json.Marshal(map[string]any{
			"amount_micros":  row.AmountMicros,
			"debit_entry_id": repository.FromPgUUIDPtr(row.DebitEntryID),
		})
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if err := s.audit.Write(ctx, q, "withdraw", requestID, actorID, action, "", "", metadata); err != nil {
			return err
		}

		if err := s.setStatus(ctx, q, row, domain.WithdrawStatusRejected); err != nil {
			return err
		}
		row.Status = domain.WithdrawStatusRejected
		return s.audit.Write(ctx, q, "withdraw", requestID, actorID, "rejected", domain.WithdrawStatusPending, domain.WithdrawStatusRejected, nil)
	})
	if err != nil {
		return nil, err
	}

	observability.IncrementWithdrawTransition(domain.WithdrawStatusRejected)
	if voidedEntry != uuid.Nil {
		s.activity.Forget(ctx, repository.FromPgUUID(row.UserID), voidedEntry)
	}
	s.activity.Record(ctx, entries...)
	return toWithdrawRequest(row), nil
}

// lockPending loads the request for update and checks it can still be
// decided by actor. Admins and the addressed agent may decide; a nil actor
// is a trusted internal caller.
func (s *WithdrawService) lockPending(ctx context.Context, q repository.Querier, requestID uuid.UUID, actorID *uuid.UUID) (repository.WithdrawRequest, error) {
	row, err := q.GetWithdrawRequestForUpdate(ctx, repository.ToPgUUID(requestID))
	if err != nil {
		return repository.WithdrawRequest{}, notFound(err, models.ErrWithdrawNotFound, "lock withdraw request")
	}
	if actorID != nil && *actorID != repository.FromPgUUID(row.AgentID) {
		actor, err := q.GetUser(ctx, repository.ToPgUUID(*actorID))
		if err != nil {
			return repository.WithdrawRequest{}, notFound(err, models.ErrUserNotFound, "get actor")
		}
		if actor.Role != domain.RoleAdmin {
			return repository.WithdrawRequest{}, fmt.Errorf("%w: request is addressed to another agent", models.ErrWithdrawNotFound)
		}
	}
	// Status is only revealed to callers allowed to decide the request.
	if normalizeState(row.Status) != domain.WithdrawStatusPending {
		return repository.WithdrawRequest{}, models.ErrAlreadyProcessed
	}
	return row, nil
}

func (s *WithdrawService) setStatus(ctx context.Context, q repository.Querier, row repository.WithdrawRequest, next string) error {
	if err := withdrawTransitions.check("withdraw", row.Status, next); err != nil {
		return err
	}
	rows, err := q.UpdateWithdrawStatus(ctx, repository.UpdateWithdrawStatusParams{ID: row.ID, Status: next})
	if err != nil {
		return fmt.Errorf("update withdraw status: %w", err)
	}
	return requireExactlyOne(rows, "update withdraw status")
}

func (s *WithdrawService) Get(ctx context.Context, requestID uuid.UUID) (*models.WithdrawRequest, error) {
	row, err := s.store.Queries().GetWithdrawRequest(ctx, repository.ToPgUUID(requestID))
	if err != nil {
		return nil, notFound(err, models.ErrWithdrawNotFound, "get withdraw request")
	}
	return toWithdrawRequest(row), nil
}

// ListForAgent returns the requests addressed to agentID. An empty status
// lists every state.
func (s *WithdrawService) ListForAgent(ctx context.Context, agentID uuid.UUID, status string, limit, offset int) ([]models.WithdrawRequest, error) {
	status = normalizeState(status)
	if status != "" {
		if _, ok := withdrawTransitions[status]; !ok {
			return nil, fmt.Errorf("%w: invalid withdraw status %q", ErrInvalidInput, status)
		}
	}
	l, o := clampPage(limit, offset, defaultStatementLimit, maxStatementLimit)
	rows, err := s.store.Queries().ListWithdrawRequestsByAgent(ctx, repository.ListWithdrawRequestsByAgentParams{
		AgentID: repository.ToPgUUID(agentID),
		Status:  status,
		Limit:   l,
		Offset:  o,
	})
	if err != nil {
		return nil, fmt.Errorf("list withdraw requests: %w", err)
	}
	out := make([]models.WithdrawRequest, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toWithdrawRequest(row))
	}
	return out, nil
}

// ListPendingForAgent is the agent's work queue.
func (s *WithdrawService) ListPendingForAgent(ctx context.Context, agentID uuid.UUID, limit, offset int) ([]models.WithdrawRequest, error) {
	return s.ListForAgent(ctx, agentID, domain.WithdrawStatusPending, limit, offset)
}
