package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ Querier = (*memQueries)(nil)

type memQueries struct {
	store *MemoryStore
	inTx  bool
}

// lock takes the store mutex for a single statement outside a transaction.
// Inside RunInTx the mutex is already held.
func (q *memQueries) lock() func() {
	if q.inTx {
		return func() {}
	}
	q.store.mu.Lock()
	return q.store.mu.Unlock
}

func (q *memQueries) st() *memState {
	return q.store.state
}

func key(id pgtype.UUID) uuid.UUID {
	return uuid.UUID(id.Bytes)
}

func window(n int, limit, offset int32) (int, int) {
	if limit <= 0 || int(offset) >= n {
		return 0, 0
	}
	start := int(max(offset, 0))
	end := start + int(limit)
	if end > n {
		end = n
	}
	return start, end
}

// users

func (q *memQueries) CreateUser(_ context.Context, arg CreateUserParams) (User, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.users[key(arg.ID)]; ok {
		return User{}, uniqueViolation("users_pkey")
	}
	for _, u := range st.users {
		if strings.EqualFold(u.Email, arg.Email) {
			return User{}, uniqueViolation("users_email_key")
		}
	}
	if arg.ReferrerID.Valid {
		if _, ok := st.users[key(arg.ReferrerID)]; !ok {
			return User{}, foreignKeyViolation("users_referrer_id_fkey")
		}
	}
	role := arg.Role
	if role == "" {
		role = "user"
	}
	u := User{
		ID:         arg.ID,
		Username:   arg.Username,
		Email:      arg.Email,
		Role:       role,
		ReferrerID: arg.ReferrerID,
		CreatedAt:  pgNow(),
	}
	st.users[key(arg.ID)] = u
	return u, nil
}

func (q *memQueries) GetUser(_ context.Context, id pgtype.UUID) (User, error) {
	defer q.lock()()
	u, ok := q.st().users[key(id)]
	if !ok {
		return User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (q *memQueries) GetUserByEmail(_ context.Context, email string) (User, error) {
	defer q.lock()()
	for _, u := range q.st().users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, pgx.ErrNoRows
}

// accounts

func (q *memQueries) CreateAccount(_ context.Context, arg CreateAccountParams) (Account, error) {
	defer q.lock()()
	st := q.st()
	id := key(arg.UserID)
	if _, ok := st.users[id]; !ok {
		return Account{}, foreignKeyViolation("accounts_user_id_fkey")
	}
	if _, ok := st.accounts[id]; ok {
		return Account{}, uniqueViolation("accounts_pkey")
	}
	now := pgNow()
	a := Account{UserID: arg.UserID, Currency: arg.Currency, CreatedAt: now, UpdatedAt: now}
	st.accounts[id] = a
	st.accountOrder = append(st.accountOrder, id)
	return a, nil
}

func (q *memQueries) GetAccount(_ context.Context, userID pgtype.UUID) (Account, error) {
	defer q.lock()()
	a, ok := q.st().accounts[key(userID)]
	if !ok {
		return Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (q *memQueries) GetAccountForUpdate(ctx context.Context, userID pgtype.UUID) (Account, error) {
	return q.GetAccount(ctx, userID)
}

// updateAccount applies fn to the stored row and reports rows affected.
func (q *memQueries) updateAccount(userID pgtype.UUID, fn func(a *Account)) int64 {
	st := q.st()
	a, ok := st.accounts[key(userID)]
	if !ok {
		return 0
	}
	fn(&a)
	a.UpdatedAt = pgNow()
	st.accounts[key(userID)] = a
	return 1
}

func (q *memQueries) AdjustCompartment(_ context.Context, arg AdjustCompartmentParams) (Account, error) {
	defer q.lock()()
	st := q.st()
	a, ok := st.accounts[key(arg.UserID)]
	if !ok {
		return Account{}, pgx.ErrNoRows
	}
	var field *int64
	switch arg.Compartment {
	case "main":
		field = &a.MainMicros
	case "bonus":
		field = &a.BonusMicros
	case "referral":
		field = &a.ReferralMicros
	case "bank":
		field = &a.BankMicros
	default:
		return Account{}, pgx.ErrNoRows
	}
	if *field+arg.Delta < 0 {
		return Account{}, pgx.ErrNoRows
	}
	*field += arg.Delta
	a.UpdatedAt = pgNow()
	st.accounts[key(arg.UserID)] = a
	return a, nil
}

func (q *memQueries) SetBankTimes(_ context.Context, arg SetBankTimesParams) (int64, error) {
	defer q.lock()()
	return q.updateAccount(arg.UserID, func(a *Account) {
		a.BankRequestTime = arg.BankRequestTime
		if arg.BankValidTransferTime.Valid {
			a.BankValidTransferTime = arg.BankValidTransferTime
		}
	}), nil
}

func (q *memQueries) IncrementBetCount(_ context.Context, userID pgtype.UUID) (int64, error) {
	defer q.lock()()
	return q.updateAccount(userID, func(a *Account) { a.TotalBets++ }), nil
}

func (q *memQueries) RecordWin(_ context.Context, arg RecordOutcomeParams) (int64, error) {
	defer q.lock()()
	return q.updateAccount(arg.UserID, func(a *Account) {
		a.TotalWins++
		a.TotalWinMicros += arg.AmountMicros
		a.BiggestWinMicros = max(a.BiggestWinMicros, arg.AmountMicros)
	}), nil
}

func (q *memQueries) RecordLoss(_ context.Context, arg RecordOutcomeParams) (int64, error) {
	defer q.lock()()
	return q.updateAccount(arg.UserID, func(a *Account) {
		a.TotalLosses++
		a.TotalLossMicros += arg.AmountMicros
		a.BiggestLossMicros = max(a.BiggestLossMicros, arg.AmountMicros)
	}), nil
}

func (q *memQueries) IncrementWithdrawCount(_ context.Context, userID pgtype.UUID) (int64, error) {
	defer q.lock()()
	return q.updateAccount(userID, func(a *Account) { a.WithdrawCount++ }), nil
}

func (q *memQueries) IncrementDepositCount(_ context.Context, userID pgtype.UUID) (int64, error) {
	defer q.lock()()
	return q.updateAccount(userID, func(a *Account) { a.DepositCount++ }), nil
}

func (q *memQueries) ListAccountIDs(_ context.Context, arg ListAccountIDsParams) ([]pgtype.UUID, error) {
	defer q.lock()()
	order := q.st().accountOrder
	start, end := window(len(order), arg.Limit, arg.Offset)
	var items []pgtype.UUID
	for _, id := range order[start:end] {
		items = append(items, ToPgUUID(id))
	}
	return items, nil
}

// ledger

func (q *memQueries) InsertLedgerEntry(_ context.Context, arg InsertLedgerEntryParams) (LedgerEntry, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.accounts[key(arg.AccountID)]; !ok {
		return LedgerEntry{}, foreignKeyViolation("ledger_entries_account_id_fkey")
	}
	if _, ok := st.ledger[key(arg.ID)]; ok {
		return LedgerEntry{}, uniqueViolation("ledger_entries_pkey")
	}
	e := LedgerEntry{
		Seq:          st.nextSeq(),
		ID:           arg.ID,
		AccountID:    arg.AccountID,
		Type:         arg.Type,
		Compartment:  arg.Compartment,
		AmountMicros: arg.AmountMicros,
		Currency:     arg.Currency,
		Note:         arg.Note,
		ReferenceID:  arg.ReferenceID,
		CreatedAt:    pgNow(),
	}
	st.ledger[key(arg.ID)] = e
	st.ledgerOrder = append(st.ledgerOrder, key(arg.ID))
	return e, nil
}

func (q *memQueries) GetLedgerEntry(_ context.Context, id pgtype.UUID) (LedgerEntry, error) {
	defer q.lock()()
	e, ok := q.st().ledger[key(id)]
	if !ok {
		return LedgerEntry{}, pgx.ErrNoRows
	}
	return e, nil
}

func (q *memQueries) ListLedgerEntriesForAccount(_ context.Context, arg ListLedgerEntriesForAccountParams) ([]LedgerEntry, error) {
	defer q.lock()()
	st := q.st()
	var matched []LedgerEntry
	for i := len(st.ledgerOrder) - 1; i >= 0; i-- {
		e := st.ledger[st.ledgerOrder[i]]
		if e.AccountID != arg.AccountID {
			continue
		}
		if arg.Since.Valid && e.CreatedAt.Time.Before(arg.Since.Time) {
			continue
		}
		if arg.Until.Valid && !e.CreatedAt.Time.Before(arg.Until.Time) {
			continue
		}
		matched = append(matched, e)
	}
	start, end := window(len(matched), arg.Limit, arg.Offset)
	if start == end {
		return nil, nil
	}
	return matched[start:end], nil
}

func (q *memQueries) SumLedgerForAccount(_ context.Context, accountID pgtype.UUID) (int64, error) {
	defer q.lock()()
	var total int64
	for _, e := range q.st().ledger {
		if e.AccountID == accountID {
			total += e.AmountMicros
		}
	}
	return total, nil
}

func (q *memQueries) DeleteWithdrawDebitEntry(_ context.Context, arg DeleteWithdrawDebitEntryParams) (int64, error) {
	defer q.lock()()
	st := q.st()
	id := key(arg.ID)
	e, ok := st.ledger[id]
	if !ok || e.AccountID != arg.AccountID || e.Type != "withdraw" || e.AmountMicros >= 0 {
		return 0, nil
	}
	referenced := false
	for _, w := range st.withdraws {
		if w.DebitEntryID == arg.ID && w.Status == "pending" {
			referenced = true
			break
		}
	}
	if !referenced {
		return 0, nil
	}
	delete(st.ledger, id)
	for i, lid := range st.ledgerOrder {
		if lid == id {
			st.ledgerOrder = append(st.ledgerOrder[:i:i], st.ledgerOrder[i+1:]...)
			break
		}
	}
	return 1, nil
}

// bets

func (q *memQueries) InsertBet(_ context.Context, arg InsertBetParams) (Bet, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.accounts[key(arg.AccountID)]; !ok {
		return Bet{}, foreignKeyViolation("bets_account_id_fkey")
	}
	if _, ok := st.bets[key(arg.ID)]; ok {
		return Bet{}, uniqueViolation("bets_pkey")
	}
	b := Bet{
		Seq:          st.nextSeq(),
		ID:           arg.ID,
		AccountID:    arg.AccountID,
		BetType:      arg.BetType,
		Number:       arg.Number,
		AmountMicros: arg.AmountMicros,
		Multiplier:   arg.Multiplier,
		PrizeMicros:  arg.PrizeMicros,
		Status:       "pending",
		CreatedAt:    pgNow(),
	}
	st.bets[key(arg.ID)] = b
	st.betOrder = append(st.betOrder, key(arg.ID))
	return b, nil
}

func (q *memQueries) GetBet(_ context.Context, id pgtype.UUID) (Bet, error) {
	defer q.lock()()
	b, ok := q.st().bets[key(id)]
	if !ok {
		return Bet{}, pgx.ErrNoRows
	}
	return b, nil
}

func (q *memQueries) ListPendingBets(_ context.Context, arg ListPendingBetsParams) ([]Bet, error) {
	defer q.lock()()
	st := q.st()
	var items []Bet
	if !arg.PlacedBefore.Valid || arg.Limit <= 0 {
		return items, nil
	}
	for _, id := range st.betOrder {
		b := st.bets[id]
		if b.Status != "pending" || b.CreatedAt.Time.After(arg.PlacedBefore.Time) {
			continue
		}
		items = append(items, b)
		if len(items) == int(arg.Limit) {
			break
		}
	}
	return items, nil
}

func (q *memQueries) SettleBet(_ context.Context, arg SettleBetParams) (int64, error) {
	defer q.lock()()
	st := q.st()
	b, ok := st.bets[key(arg.ID)]
	if !ok || b.Status != "pending" {
		return 0, nil
	}
	b.Status = arg.Status
	b.DrawID = arg.DrawID
	b.SettledAt = pgNow()
	st.bets[key(arg.ID)] = b
	return 1, nil
}

func (q *memQueries) ListBetsForAccount(_ context.Context, arg ListBetsForAccountParams) ([]Bet, error) {
	defer q.lock()()
	st := q.st()
	var matched []Bet
	for i := len(st.betOrder) - 1; i >= 0; i-- {
		b := st.bets[st.betOrder[i]]
		if b.AccountID == arg.AccountID {
			matched = append(matched, b)
		}
	}
	start, end := window(len(matched), arg.Limit, arg.Offset)
	if start == end {
		return nil, nil
	}
	return matched[start:end], nil
}

func (q *memQueries) SumStakesForAccount(_ context.Context, accountID pgtype.UUID) (int64, error) {
	defer q.lock()()
	var total int64
	for _, b := range q.st().bets {
		if b.AccountID == accountID {
			total += b.AmountMicros
		}
	}
	return total, nil
}

func (q *memQueries) CountBetsByDrawAndStatus(_ context.Context, arg CountBetsByDrawAndStatusParams) (int64, error) {
	defer q.lock()()
	var count int64
	for _, b := range q.st().bets {
		if b.DrawID.Valid && b.DrawID == arg.DrawID && b.Status == arg.Status {
			count++
		}
	}
	return count, nil
}

// draws

func (q *memQueries) InsertDraw(_ context.Context, arg InsertDrawParams) (Draw, error) {
	defer q.lock()()
	st := q.st()
	if len(st.draws) > 0 {
		return Draw{}, uniqueViolation("idx_draws_single_live")
	}
	now := pgNow()
	d := Draw{
		ID:           arg.ID,
		SingleNumber: arg.SingleNumber,
		DoubleNumber: arg.DoubleNumber,
		TripleNumber: arg.TripleNumber,
		Status:       arg.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	st.draws[key(arg.ID)] = d
	return d, nil
}

func (q *memQueries) GetDraw(_ context.Context, id pgtype.UUID) (Draw, error) {
	defer q.lock()()
	d, ok := q.st().draws[key(id)]
	if !ok {
		return Draw{}, pgx.ErrNoRows
	}
	return d, nil
}

func (q *memQueries) GetDrawForUpdate(ctx context.Context, id pgtype.UUID) (Draw, error) {
	return q.GetDraw(ctx, id)
}

func (q *memQueries) GetLiveDraw(_ context.Context) (Draw, error) {
	defer q.lock()()
	var (
		live  Draw
		found bool
	)
	for _, d := range q.st().draws {
		if !found || d.CreatedAt.Time.After(live.CreatedAt.Time) {
			live, found = d, true
		}
	}
	if !found {
		return Draw{}, pgx.ErrNoRows
	}
	return live, nil
}

func (q *memQueries) ListDrawsByStatus(_ context.Context, status string) ([]Draw, error) {
	defer q.lock()()
	var items []Draw
	for _, d := range q.st().draws {
		if d.Status == status {
			items = append(items, d)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Time.Before(items[j].CreatedAt.Time)
	})
	return items, nil
}

func (q *memQueries) UpdateDrawStatus(_ context.Context, arg UpdateDrawStatusParams) (int64, error) {
	defer q.lock()()
	st := q.st()
	d, ok := st.draws[key(arg.ID)]
	if !ok {
		return 0, nil
	}
	d.Status = arg.Status
	d.UpdatedAt = pgNow()
	st.draws[key(arg.ID)] = d
	return 1, nil
}

func (q *memQueries) DeleteDraw(_ context.Context, id pgtype.UUID) (int64, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.draws[key(id)]; !ok {
		return 0, nil
	}
	delete(st.draws, key(id))
	return 1, nil
}

func (q *memQueries) InsertDrawHistory(_ context.Context, arg InsertDrawHistoryParams) (DrawHistory, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.history[key(arg.ID)]; ok {
		return DrawHistory{}, uniqueViolation("draw_history_pkey")
	}
	h := DrawHistory{
		ID:           arg.ID,
		SingleNumber: arg.SingleNumber,
		DoubleNumber: arg.DoubleNumber,
		TripleNumber: arg.TripleNumber,
		WinCount:     arg.WinCount,
		LossCount:    arg.LossCount,
		CreatedAt:    arg.CreatedAt,
		SettledAt:    pgNow(),
	}
	st.history[key(arg.ID)] = h
	return h, nil
}

func (q *memQueries) GetDrawHistory(_ context.Context, id pgtype.UUID) (DrawHistory, error) {
	defer q.lock()()
	h, ok := q.st().history[key(id)]
	if !ok {
		return DrawHistory{}, pgx.ErrNoRows
	}
	return h, nil
}

func (q *memQueries) ListDrawHistory(_ context.Context, arg ListDrawHistoryParams) ([]DrawHistory, error) {
	defer q.lock()()
	items := make([]DrawHistory, 0, len(q.st().history))
	for _, h := range q.st().history {
		items = append(items, h)
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].SettledAt.Time.Equal(items[j].SettledAt.Time) {
			return items[i].SettledAt.Time.After(items[j].SettledAt.Time)
		}
		return key(items[i].ID).String() < key(items[j].ID).String()
	})
	start, end := window(len(items), arg.Limit, arg.Offset)
	if start == end {
		return nil, nil
	}
	return items[start:end], nil
}

// multipliers

func (q *memQueries) ListMultipliers(_ context.Context) ([]Multiplier, error) {
	defer q.lock()()
	var items []Multiplier
	for _, m := range q.st().multipliers {
		items = append(items, m)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BetType < items[j].BetType })
	return items, nil
}

func (q *memQueries) UpsertMultiplier(_ context.Context, arg UpsertMultiplierParams) (Multiplier, error) {
	defer q.lock()()
	m := Multiplier{BetType: arg.BetType, Multiplier: arg.Multiplier, UpdatedAt: pgNow()}
	q.st().multipliers[arg.BetType] = m
	return m, nil
}

// withdraw requests

func (q *memQueries) InsertWithdrawRequest(_ context.Context, arg InsertWithdrawRequestParams) (WithdrawRequest, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.accounts[key(arg.UserID)]; !ok {
		return WithdrawRequest{}, foreignKeyViolation("withdraw_requests_user_id_fkey")
	}
	if _, ok := st.accounts[key(arg.AgentID)]; !ok {
		return WithdrawRequest{}, foreignKeyViolation("withdraw_requests_agent_id_fkey")
	}
	if _, ok := st.withdraws[key(arg.ID)]; ok {
		return WithdrawRequest{}, uniqueViolation("withdraw_requests_pkey")
	}
	now := pgNow()
	w := WithdrawRequest{
		ID:            arg.ID,
		UserID:        arg.UserID,
		UserEmail:     arg.UserEmail,
		AgentID:       arg.AgentID,
		AgentEmail:    arg.AgentEmail,
		Method:        arg.Method,
		PaymentNumber: arg.PaymentNumber,
		AmountMicros:  arg.AmountMicros,
		DebitEntryID:  arg.DebitEntryID,
		Status:        "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	st.withdraws[key(arg.ID)] = w
	return w, nil
}

func (q *memQueries) GetWithdrawRequest(_ context.Context, id pgtype.UUID) (WithdrawRequest, error) {
	defer q.lock()()
	w, ok := q.st().withdraws[key(id)]
	if !ok {
		return WithdrawRequest{}, pgx.ErrNoRows
	}
	return w, nil
}

func (q *memQueries) GetWithdrawRequestForUpdate(ctx context.Context, id pgtype.UUID) (WithdrawRequest, error) {
	return q.GetWithdrawRequest(ctx, id)
}

func (q *memQueries) UpdateWithdrawStatus(_ context.Context, arg UpdateWithdrawStatusParams) (int64, error) {
	defer q.lock()()
	st := q.st()
	w, ok := st.withdraws[key(arg.ID)]
	if !ok || w.Status != "pending" {
		return 0, nil
	}
	w.Status = arg.Status
	w.UpdatedAt = pgNow()
	st.withdraws[key(arg.ID)] = w
	return 1, nil
}

func (q *memQueries) ListWithdrawRequestsByAgent(_ context.Context, arg ListWithdrawRequestsByAgentParams) ([]WithdrawRequest, error) {
	defer q.lock()()
	var matched []WithdrawRequest
	for _, w := range q.st().withdraws {
		if w.AgentID != arg.AgentID {
			continue
		}
		if arg.Status != "" && w.Status != arg.Status {
			continue
		}
		matched = append(matched, w)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Time.Equal(matched[j].CreatedAt.Time) {
			return matched[i].CreatedAt.Time.After(matched[j].CreatedAt.Time)
		}
		return key(matched[i].ID).String() < key(matched[j].ID).String()
	})
	start, end := window(len(matched), arg.Limit, arg.Offset)
	if start == end {
		return nil, nil
	}
	return matched[start:end], nil
}

// audit

func (q *memQueries) InsertAuditLog(_ context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	defer q.lock()()
	st := q.st()
	entry := AuditLog{
		ID:         int64(len(st.audit) + 1),
		EntityType: arg.EntityType,
		EntityID:   arg.EntityID,
		ActorID:    arg.ActorID,
		Action:     arg.Action,
		PrevState:  arg.PrevState,
		NextState:  arg.NextState,
		Metadata:   append([]byte(nil), arg.Metadata...),
		CreatedAt:  pgNow(),
	}
	st.audit = append(st.audit, entry)
	return entry, nil
}

func (q *memQueries) ListAuditLogForEntity(_ context.Context, entityID pgtype.UUID) ([]AuditLog, error) {
	defer q.lock()()
	var items []AuditLog
	for _, entry := range q.st().audit {
		if entry.EntityID == entityID {
			items = append(items, entry)
		}
	}
	return items, nil
}

// idempotency

func (q *memQueries) GetIdempotencyKey(_ context.Context, idempotencyKey string) (IdempotencyKey, error) {
	defer q.lock()()
	k, ok := q.st().idempotency[idempotencyKey]
	if !ok {
		return IdempotencyKey{}, pgx.ErrNoRows
	}
	return k, nil
}

func (q *memQueries) ReserveIdempotencyKey(_ context.Context, arg ReserveIdempotencyKeyParams) (IdempotencyKey, error) {
	defer q.lock()()
	st := q.st()
	if _, ok := st.idempotency[arg.IdempotencyKey]; ok {
		return IdempotencyKey{}, pgx.ErrNoRows
	}
	now := pgNow()
	k := IdempotencyKey{
		IdempotencyKey: arg.IdempotencyKey,
		RequestHash:    arg.RequestHash,
		Method:         arg.Method,
		Path:           arg.Path,
		ContentType:    "application/json",
		InProgress:     true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	st.idempotency[arg.IdempotencyKey] = k
	return k, nil
}

func (q *memQueries) FinalizeIdempotencyKey(_ context.Context, arg FinalizeIdempotencyKeyParams) (IdempotencyKey, error) {
	defer q.lock()()
	st := q.st()
	k, ok := st.idempotency[arg.IdempotencyKey]
	if !ok || k.RequestHash != arg.RequestHash {
		return IdempotencyKey{}, pgx.ErrNoRows
	}
	k.ResponseStatus = arg.ResponseStatus
	k.ResponseBody = append([]byte(nil), arg.ResponseBody...)
	k.ContentType = arg.ContentType
	k.InProgress = false
	k.UpdatedAt = pgNow()
	st.idempotency[arg.IdempotencyKey] = k
	return k, nil
}

func (q *memQueries) ReleaseIdempotencyKey(_ context.Context, arg ReleaseIdempotencyKeyParams) (int64, error) {
	defer q.lock()()
	st := q.st()
	k, ok := st.idempotency[arg.IdempotencyKey]
	if !ok || !k.InProgress || k.RequestHash != arg.RequestHash {
		return 0, nil
	}
	delete(st.idempotency, arg.IdempotencyKey)
	return 1, nil
}
