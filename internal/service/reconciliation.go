package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/lottery-wallet/internal/observability"
	"github.com/ayo6706/lottery-wallet/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

const reconciliationPage = 500

// ReconciliationService verifies that every account's balances are fully
// explained by its ledger. Stakes are the one movement the ledger does not
// record, so they are subtracted from the ledger sum.
type ReconciliationService struct {
	store QueryStore
}

func NewReconciliationService(store QueryStore) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Mismatch describes one account whose ledger does not explain its balances.
type Mismatch struct {
	UserID        uuid.UUID `json:"user_id"`
	Currency      string    `json:"currency"`
	BalanceMicros int64     `json:"balance_micros"`
	LedgerMicros  int64     `json:"ledger_micros"`
	StakeMicros   int64     `json:"stake_micros"`
}

type ReconciliationReport struct {
	Checked    int        `json:"checked"`
	Mismatched []Mismatch `json:"mismatched"`
}

// Run checks every account. Divergence is reported, not repaired.
func (s *ReconciliationService) Run(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{}
	for offset := int32(0); ; offset += reconciliationPage {
		ids, err := s.store.Queries().ListAccountIDs(ctx, repository.ListAccountIDsParams{
			Limit:  reconciliationPage,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		for _, id := range ids {
			mismatch, err := s.check(ctx, id)
			if err != nil {
				return nil, err
			}
			report.Checked++
			if mismatch == nil {
				continue
			}
			report.Mismatched = append(report.Mismatched, *mismatch)
			observability.IncrementLedgerImbalance(mismatch.Currency)
			zap.L().Error("ledger does not explain account balance",
				zap.String("user_id", mismatch.UserID.String()),
				zap.Int64("balance_micros", mismatch.BalanceMicros),
				zap.Int64("ledger_micros", mismatch.LedgerMicros),
				zap.Int64("stake_micros", mismatch.StakeMicros),
			)
		}
		if len(ids) < reconciliationPage {
			break
		}
	}

	if len(report.Mismatched) == 0 {
		zap.L().Info("ledger balanced", zap.Int("accounts", report.Checked))
	}
	return report, nil
}

// check reads balances, ledger and stakes under the account's row lock so
// the three figures describe the same moment.
func (s *ReconciliationService) check(ctx context.Context, id pgtype.UUID) (*Mismatch, error) {
	var mismatch *Mismatch
	err := s.store.RunInTx(ctx, func(q repository.Querier) error {
		mismatch = nil
		account, err := q.GetAccountForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		ledger, err := q.SumLedgerForAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}
		stakes, err := q.SumStakesForAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("sum stakes: %w", err)
		}
		balance := toBalances(account).Total()
		if ledger-stakes != balance {
			mismatch = &Mismatch{
				UserID:        repository.FromPgUUID(id),
				Currency:      account.Currency,
				BalanceMicros: balance,
				LedgerMicros:  ledger,
				StakeMicros:   stakes,
			}
		}
		return nil
	})
	return mismatch, err
}
