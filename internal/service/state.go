package service

import (
	"fmt"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/domain"
)

type transitions map[string]map[string]struct{}

var withdrawTransitions = transitions{
	domain.WithdrawStatusPending: {
		domain.WithdrawStatusApproved: {},
		domain.WithdrawStatusRejected: {},
	},
	domain.WithdrawStatusApproved: {},
	domain.WithdrawStatusRejected: {},
}

var drawTransitions = transitions{
	domain.DrawStatusHold: {
		domain.DrawStatusTiming: {},
		domain.DrawStatusActive: {},
	},
	domain.DrawStatusTiming: {
		domain.DrawStatusActive: {},
	},
	domain.DrawStatusActive: {
		domain.DrawStatusDraw: {},
	},
	domain.DrawStatusDraw: {},
}

func normalizeState(state string) string {
	return strings.ToLower(strings.TrimSpace(state))
}

func (t transitions) canTransition(current, next string) bool {
	nextStates, ok := t[normalizeState(current)]
	if !ok {
		return false
	}
	_, ok = nextStates[normalizeState(next)]
	return ok
}

func (t transitions) check(entity, current, next string) error {
	if !t.canTransition(current, next) {
		return fmt.Errorf("invalid %s state transition: %s -> %s", entity, current, next)
	}
	return nil
}
