package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountConfig carries the business parameters applied when wallets open.
type AccountConfig struct {
	Currency             string
	WelcomeBonusMicros   int64
	ReferralRewardMicros int64
}

type AccountService struct {
	store    QueryStore
	cfg      AccountConfig
	audit    *AuditService
	activity ActivityRecorder
}

func NewAccountService(store QueryStore, cfg AccountConfig) *AccountService {
	if cfg.Currency == "" {
		cfg.Currency = domain.DefaultCurrency
	}
	return &AccountService{
		store:    store,
		cfg:      cfg,
		audit:    NewAuditService(store),
		activity: nopRecorder{},
	}
}

// WithActivity mirrors committed entries into rec.
func (s *AccountService) WithActivity(rec ActivityRecorder) *AccountService {
	if rec != nil {
		s.activity = rec
	}
	return s
}

// Open creates the wallet for an existing user, crediting the welcome bonus
// and, when the user was referred, the referrer's reward.
func (s *AccountService) Open(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	var (
		opened  repository.Account
		entries []models.LedgerEntry
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		entries = entries[:0]
		user, err := q.GetUser(ctx, repository.ToPgUUID(userID))
		if err != nil {
			return notFound(err, models.ErrUserNotFound, "get user")
		}

		opened, err = q.CreateAccount(ctx, repository.CreateAccountParams{
			UserID:   user.ID,
			Currency: s.cfg.Currency,
		})
		if err != nil {
			if isUniqueViolation(err) {
				return models.ErrAccountExists
			}
			return fmt.Errorf("create account: %w", err)
		}

		if s.cfg.WelcomeBonusMicros > 0 {
			opened, err = adjustCompartment(ctx, q, userID, domain.CompartmentBonus, s.cfg.WelcomeBonusMicros)
			if err != nil {
				return err
			}
			entry, err := appendEntry(ctx, q, entryInput{
				accountID:   userID,
				entryType:   domain.EntryTypeWelcome,
				compartment: domain.CompartmentBonus,
				amount:      s.cfg.WelcomeBonusMicros,
				currency:    opened.Currency,
				note:        "welcome bonus",
				referenceID: userID,
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}

		if !user.ReferrerID.Valid || s.cfg.ReferralRewardMicros <= 0 {
			return nil
		}
		referrerID := repository.FromPgUUID(user.ReferrerID)
		referrer, err := adjustCompartment(ctx, q, referrerID, domain.CompartmentReferral, s.cfg.ReferralRewardMicros)
		if err != nil {
			if errors.Is(err, models.ErrAccountNotFound) {
				zap.L().Warn("referrer has no wallet, skipping reward", zap.String("referrer_id", referrerID.String()))
				return nil
			}
			return err
		}
		entry, err := appendEntry(ctx, q, entryInput{
			accountID:   referrerID,
			entryType:   domain.EntryTypeReferral,
			compartment: domain.CompartmentReferral,
			amount:      s.cfg.ReferralRewardMicros,
			currency:    referrer.Currency,
			note:        "referral reward for " + user.Email,
			referenceID: userID,
		})
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, entries...)
	return toAccount(opened), nil
}

func (s *AccountService) Get(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	row, err := s.store.Queries().GetAccount(ctx, repository.ToPgUUID(userID))
	if err != nil {
		return nil, notFound(err, models.ErrAccountNotFound, "get account")
	}
	return toAccount(row), nil
}

// AdjustCompartment applies a signed delta to one compartment. A debit that
// would take the compartment below zero fails with ErrInsufficientFunds.
// The caller is responsible for the matching ledger entry.
func (s *AccountService) AdjustCompartment(ctx context.Context, userID uuid.UUID, compartment string, delta int64) (*models.Account, error) {
	var row repository.Account
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		row, err = adjustCompartment(ctx, q, userID, compartment, delta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAccount(row), nil
}

// TopUp funds an account's main compartment from the house.
func (s *AccountService) TopUp(ctx context.Context, userID uuid.UUID, amount int64, note string, actorID *uuid.UUID) (*models.Account, error) {
	if amount <= 0 {
		return nil, models.ErrNonPositiveAmount
	}
	note = strings.TrimSpace(note)
	if note == "" {
		note = "house top-up"
	}

	var (
		row   repository.Account
		entry models.LedgerEntry
	)
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		var err error
		row, err = adjustCompartment(ctx, q, userID, domain.CompartmentMain, amount)
		if err != nil {
			return err
		}
		referenceID := uuid.New()
		entry, err = appendEntry(ctx, q, entryInput{
			accountID:   userID,
			entryType:   domain.EntryTypeDeposit,
			compartment: domain.CompartmentMain,
			amount:      amount,
			currency:    row.Currency,
			note:        note,
			referenceID: referenceID,
		})
		if err != nil {
			return err
		}
		rows, err := q.IncrementDepositCount(ctx, repository.ToPgUUID(userID))
		if err != nil {
			return fmt.Errorf("increment deposit count: %w", err)
		}
		if err := requireExactlyOne(rows, "increment deposit count"); err != nil {
			return err
		}
		row.DepositCount++

		metadata, err := json.Marshal(map[string]any{"amount_micros": amount, "reference_id": referenceID})
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		return s.audit.Write(ctx, q, "account", userID, actorID, "topup", "", "", metadata)
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, entry)
	return toAccount(row), nil
}
