package service

import (
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/repository"
)

func toUser(row repository.User) *models.User {
	return &models.User{
		ID:         repository.FromPgUUID(row.ID),
		Username:   row.Username,
		Email:      row.Email,
		Role:       row.Role,
		ReferrerID: repository.FromPgUUIDPtr(row.ReferrerID),
		CreatedAt:  row.CreatedAt.Time,
	}
}

func toBalances(row repository.Account) models.Balances {
	return models.Balances{
		Main:     row.MainMicros,
		Bonus:    row.BonusMicros,
		Referral: row.ReferralMicros,
		Bank:     row.BankMicros,
	}
}

func toAccount(row repository.Account) *models.Account {
	return &models.Account{
		UserID:                repository.FromPgUUID(row.UserID),
		Currency:              row.Currency,
		Balances:              toBalances(row),
		BankRequestTime:       repository.FromPgTimePtr(row.BankRequestTime),
		BankValidTransferTime: repository.FromPgTimePtr(row.BankValidTransferTime),
		Stats: models.Stats{
			TotalBets:       row.TotalBets,
			TotalWins:       row.TotalWins,
			TotalLosses:     row.TotalLosses,
			TotalWinMicros:  row.TotalWinMicros,
			TotalLossMicros: row.TotalLossMicros,
			BiggestWin:      row.BiggestWinMicros,
			BiggestLoss:     row.BiggestLossMicros,
			WithdrawCount:   row.WithdrawCount,
			DepositCount:    row.DepositCount,
		},
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func toLedgerEntry(row repository.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		ID:           repository.FromPgUUID(row.ID),
		AccountID:    repository.FromPgUUID(row.AccountID),
		Type:         row.Type,
		Compartment:  row.Compartment,
		AmountMicros: row.AmountMicros,
		Currency:     row.Currency,
		Note:         derefText(row.Note),
		ReferenceID:  repository.FromPgUUID(row.ReferenceID),
		CreatedAt:    row.CreatedAt.Time,
	}
}

func toBet(row repository.Bet) *models.Bet {
	return &models.Bet{
		ID:           repository.FromPgUUID(row.ID),
		AccountID:    repository.FromPgUUID(row.AccountID),
		BetType:      row.BetType,
		Number:       int(row.Number),
		AmountMicros: row.AmountMicros,
		Multiplier:   row.Multiplier,
		PrizeMicros:  row.PrizeMicros,
		Status:       row.Status,
		DrawID:       repository.FromPgUUIDPtr(row.DrawID),
		CreatedAt:    row.CreatedAt.Time,
		SettledAt:    repository.FromPgTimePtr(row.SettledAt),
	}
}

func toDraw(row repository.Draw) *models.Draw {
	return &models.Draw{
		ID:           repository.FromPgUUID(row.ID),
		SingleNumber: int(row.SingleNumber),
		DoubleNumber: int(row.DoubleNumber),
		TripleNumber: int(row.TripleNumber),
		Status:       row.Status,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func toDrawHistory(row repository.DrawHistory) models.DrawHistory {
	return models.DrawHistory{
		ID:           repository.FromPgUUID(row.ID),
		SingleNumber: int(row.SingleNumber),
		DoubleNumber: int(row.DoubleNumber),
		TripleNumber: int(row.TripleNumber),
		WinCount:     row.WinCount,
		LossCount:    row.LossCount,
		CreatedAt:    row.CreatedAt.Time,
		SettledAt:    row.SettledAt.Time,
	}
}

func toMultiplier(row repository.Multiplier) models.Multiplier {
	return models.Multiplier{
		BetType:    row.BetType,
		Multiplier: row.Multiplier,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

func toWithdrawRequest(row repository.WithdrawRequest) *models.WithdrawRequest {
	return &models.WithdrawRequest{
		ID:            repository.FromPgUUID(row.ID),
		UserID:        repository.FromPgUUID(row.UserID),
		UserEmail:     row.UserEmail,
		AgentID:       repository.FromPgUUID(row.AgentID),
		AgentEmail:    row.AgentEmail,
		Method:        row.Method,
		PaymentNumber: row.PaymentNumber,
		AmountMicros:  row.AmountMicros,
		Status:        row.Status,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
