package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// TransferService moves funds between compartments of one or two accounts.
type TransferService struct {
	store     QueryStore
	dailyRate decimal.Decimal
	activity  ActivityRecorder
	now       func() time.Time
}

func NewTransferService(store QueryStore, dailyRatePercent decimal.Decimal) *TransferService {
	return &TransferService{
		store:     store,
		dailyRate: dailyRatePercent,
		activity:  nopRecorder{},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithActivity mirrors committed entries into rec.
func (s *TransferService) WithActivity(rec ActivityRecorder) *TransferService {
	if rec != nil {
		s.activity = rec
	}
	return s
}

// WithClock replaces the wall clock used for interest and the bank lock-in.
func (s *TransferService) WithClock(now func() time.Time) *TransferService {
	s.now = now
	return s
}

type TransferRequest struct {
	FromUserID      uuid.UUID
	FromCompartment string
	ToUserID        uuid.UUID
	ToCompartment   string
	AmountMicros    int64
	Policy          domain.InterestPolicy
	EntryType       string
	Note            string
}

type TransferResult struct {
	ReferenceID    uuid.UUID       `json:"reference_id"`
	DebitEntryID   uuid.UUID       `json:"debit_entry_id"`
	CreditEntryID  uuid.UUID       `json:"credit_entry_id"`
	InterestMicros int64           `json:"interest_micros"`
	From           models.Balances `json:"from"`
	To             models.Balances `json:"to"`
}

func (r *TransferRequest) normalize() error {
	r.FromCompartment = strings.ToLower(strings.TrimSpace(r.FromCompartment))
	r.ToCompartment = strings.ToLower(strings.TrimSpace(r.ToCompartment))
	if r.EntryType == "" {
		r.EntryType = domain.EntryTypeTransfer
	}
	if r.AmountMicros <= 0 {
		return models.ErrNonPositiveAmount
	}
	if !domain.IsCompartment(r.FromCompartment) || !domain.IsCompartment(r.ToCompartment) {
		return models.ErrInvalidCompartment
	}
	if r.FromUserID == r.ToUserID && r.FromCompartment == r.ToCompartment {
		return fmt.Errorf("%w: source and destination are the same", models.ErrInvalidCompartment)
	}
	// Only the owner may start a lock-in on their bank.
	if r.FromUserID != r.ToUserID && r.ToCompartment == domain.CompartmentBank {
		return fmt.Errorf("%w: bank only accepts moves from the same account", models.ErrInvalidCompartment)
	}
	if !domain.IsTransferEntryType(r.EntryType) {
		return fmt.Errorf("%w: invalid entry type %q", ErrInvalidInput, r.EntryType)
	}
	if !r.Policy.Valid() {
		return models.ErrInvalidPolicy
	}
	return nil
}

// Transfer debits the source compartment and credits the destination in one
// atomic unit. Moves touching bank settle accrued interest first.
func (s *TransferService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	var (
		result  *TransferResult
		entries []models.LedgerEntry
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		result, entries, err = s.move(ctx, q, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, entries...)
	return result, nil
}

// Deposit moves cash collected by an agent into a user's main compartment.
func (s *TransferService) Deposit(ctx context.Context, agentID, userID uuid.UUID, amount int64) (*TransferResult, error) {
	req := TransferRequest{
		FromUserID:      agentID,
		FromCompartment: domain.CompartmentMain,
		ToUserID:        userID,
		ToCompartment:   domain.CompartmentMain,
		AmountMicros:    amount,
		EntryType:       domain.EntryTypeDeposit,
		Note:            "agent deposit",
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if agentID == userID {
		return nil, fmt.Errorf("%w: agent cannot deposit to itself", ErrInvalidInput)
	}

	var (
		result  *TransferResult
		entries []models.LedgerEntry
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		result, entries, err = s.move(ctx, q, req)
		if err != nil {
			return err
		}
		rows, err := q.IncrementDepositCount(ctx, repository.ToPgUUID(userID))
		if err != nil {
			return fmt.Errorf("increment deposit count: %w", err)
		}
		return requireExactlyOne(rows, "increment deposit count")
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, entries...)
	return result, nil
}

func (s *TransferService) move(ctx context.Context, q repository.Querier, req TransferRequest) (*TransferResult, []models.LedgerEntry, error) {
	accounts, err := lockAccounts(ctx, q, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, nil, err
	}
	src, dst := accounts[req.FromUserID], accounts[req.ToUserID]
	if src.Currency != dst.Currency {
		return nil, nil, fmt.Errorf("currency mismatch: sender is %s, receiver is %s", src.Currency, dst.Currency)
	}
	now := s.now()
	referenceID := uuid.New()
	sameAccount := req.FromUserID == req.ToUserID

	var (
		entries         []models.LedgerEntry
		interestTotal   int64
		creditAmount    = req.AmountMicros
		destInterest    int64
		srcBankInterest int64
	)

	if req.FromCompartment == domain.CompartmentBank {
		if src.BankValidTransferTime.Valid && now.Before(src.BankValidTransferTime.Time) && req.Policy != domain.PolicyNoInterestEarly {
			return nil, nil, models.ErrBankLocked
		}
		interest := s.accrued(src, req.AmountMicros, req.Policy, now)
		if sameAccount {
			// Interest follows the withdrawn principal into the destination.
			destInterest = interest
			creditAmount += interest
		} else {
			srcBankInterest = interest
		}
		interestTotal += interest
		if err := setBankTimes(ctx, q, req.FromUserID, now, pgtype.Timestamptz{}); err != nil {
			return nil, nil, err
		}
	}

	if req.ToCompartment == domain.CompartmentBank {
		interest := s.accrued(dst, dst.BankMicros, req.Policy, now)
		if interest > 0 {
			if _, err := adjustCompartment(ctx, q, req.ToUserID, domain.CompartmentBank, interest); err != nil {
				return nil, nil, err
			}
			entry, err := appendEntry(ctx, q, entryInput{
				accountID:   req.ToUserID,
				entryType:   domain.EntryTypeInterest,
				compartment: domain.CompartmentBank,
				amount:      interest,
				currency:    dst.Currency,
				note:        "interest settled on deposit into bank",
				referenceID: referenceID,
			})
			if err != nil {
				return nil, nil, err
			}
			entries = append(entries, entry)
			interestTotal += interest
		}
		if err := setBankTimes(ctx, q, req.ToUserID, now, repository.ToPgTime(now.Add(domain.BankLockIn))); err != nil {
			return nil, nil, err
		}
	}

	if srcBankInterest > 0 {
		if _, err := adjustCompartment(ctx, q, req.FromUserID, domain.CompartmentBank, srcBankInterest); err != nil {
			return nil, nil, err
		}
		entry, err := appendEntry(ctx, q, entryInput{
			accountID:   req.FromUserID,
			entryType:   domain.EntryTypeInterest,
			compartment: domain.CompartmentBank,
			amount:      srcBankInterest,
			currency:    src.Currency,
			note:        "interest settled before transfer",
			referenceID: referenceID,
		})
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}

	srcRow, err := adjustCompartment(ctx, q, req.FromUserID, req.FromCompartment, -req.AmountMicros)
	if err != nil {
		return nil, nil, err
	}
	dstRow, err := adjustCompartment(ctx, q, req.ToUserID, req.ToCompartment, creditAmount)
	if err != nil {
		return nil, nil, err
	}
	if sameAccount {
		srcRow = dstRow
	}

	debit, err := appendEntry(ctx, q, entryInput{
		accountID:   req.FromUserID,
		entryType:   req.EntryType,
		compartment: req.FromCompartment,
		amount:      -req.AmountMicros,
		currency:    src.Currency,
		note:        req.Note,
		referenceID: referenceID,
	})
	if err != nil {
		return nil, nil, err
	}
	credit, err := appendEntry(ctx, q, entryInput{
		accountID:   req.ToUserID,
		entryType:   req.EntryType,
		compartment: req.ToCompartment,
		amount:      req.AmountMicros,
		currency:    dst.Currency,
		note:        req.Note,
		referenceID: referenceID,
	})
	if err != nil {
		return nil, nil, err
	}
	entries = append(entries, debit, credit)

	if destInterest > 0 {
		entry, err := appendEntry(ctx, q, entryInput{
			accountID:   req.ToUserID,
			entryType:   domain.EntryTypeInterest,
			compartment: req.ToCompartment,
			amount:      destInterest,
			currency:    dst.Currency,
			note:        "interest on bank withdrawal",
			referenceID: referenceID,
		})
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}

	return &TransferResult{
		ReferenceID:    referenceID,
		DebitEntryID:   debit.ID,
		CreditEntryID:  credit.ID,
		InterestMicros: interestTotal,
		From:           toBalances(srcRow),
		To:             toBalances(dstRow),
	}, entries, nil
}

// accrued computes interest owed on principal since the account's last bank
// movement, honouring the early-exit policy.
func (s *TransferService) accrued(acc repository.Account, principal int64, policy domain.InterestPolicy, now time.Time) int64 {
	if !acc.BankRequestTime.Valid {
		return 0
	}
	elapsed := now.Sub(acc.BankRequestTime.Time)
	if policy.SkipsInterest(elapsed) {
		return 0
	}
	return domain.AccrueInterest(principal, s.dailyRate, elapsed)
}

func setBankTimes(ctx context.Context, q repository.Querier, userID uuid.UUID, requestTime time.Time, validTransfer pgtype.Timestamptz) error {
	rows, err := q.SetBankTimes(ctx, repository.SetBankTimesParams{
		UserID:                repository.ToPgUUID(userID),
		BankRequestTime:       repository.ToPgTime(requestTime),
		BankValidTransferTime: validTransfer,
	})
	if err != nil {
		return fmt.Errorf("set bank times: %w", err)
	}
	return requireExactlyOne(rows, "set bank times")
}
