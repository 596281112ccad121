package domain

// Wallet compartments.
const (
	CompartmentMain     = "main"
	CompartmentBonus    = "bonus"
	CompartmentReferral = "referral"
	CompartmentBank     = "bank"
)

// Ledger entry types.
const (
	EntryTypeTransfer = "transfer"
	EntryTypeDeposit  = "deposit"
	EntryTypeWithdraw = "withdraw"
	EntryTypeWelcome  = "welcome"
	EntryTypeReferral = "referral"
	EntryTypeInterest = "interest"
	EntryTypeWin      = "win"
	EntryTypeLoss     = "loss"
)

// Bet types, derived from the digit count of the chosen number.
const (
	BetTypeSingle = "single"
	BetTypeDouble = "double"
	BetTypeTriple = "triple"
)

const (
	BetStatusPending = "pending"
	BetStatusWin     = "win"
	BetStatusLoss    = "loss"
)

// Draw statuses. A draw is ingested in hold or timing, marked active once it
// may be settled, and moves to draw when it is retired into history.
const (
	DrawStatusHold   = "hold"
	DrawStatusTiming = "timing"
	DrawStatusActive = "active"
	DrawStatusDraw   = "draw"
)

const (
	WithdrawStatusPending  = "pending"
	WithdrawStatusApproved = "approved"
	WithdrawStatusRejected = "rejected"
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

const DefaultCurrency = "BDT"

// IsCompartment reports whether name is a known wallet compartment.
func IsCompartment(name string) bool {
	switch name {
	case CompartmentMain, CompartmentBonus, CompartmentReferral, CompartmentBank:
		return true
	default:
		return false
	}
}

// IsTransferEntryType reports whether t may label the legs of a compartment move.
func IsTransferEntryType(t string) bool {
	switch t {
	case EntryTypeTransfer, EntryTypeDeposit, EntryTypeWithdraw:
		return true
	default:
		return false
	}
}
