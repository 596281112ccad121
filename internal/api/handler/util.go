package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayo6706/lottery-wallet/internal/api/middleware"
	"github.com/ayo6706/lottery-wallet/internal/api/problem"
	"github.com/ayo6706/lottery-wallet/internal/domain"
	"github.com/ayo6706/lottery-wallet/internal/models"
	"github.com/ayo6706/lottery-wallet/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes an RFC 7807 error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	if problemType != "" && problemType != "about:blank" && !strings.HasPrefix(problemType, "http") {
		problemType = problem.Type(problemType)
	}
	problem.Write(w, r, status, problemType, http.StatusText(status), message)
}

type actor struct {
	ID   uuid.UUID
	Role string
}

func (a actor) isAdmin() bool { return a.Role == domain.RoleAdmin }

// canAccess reports whether the caller may read or act on userID's wallet.
func (a actor) canAccess(userID uuid.UUID) bool {
	return a.isAdmin() || a.ID == userID
}

func requestActor(r *http.Request) (actor, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return actor{}, errors.New("missing user in auth context")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return actor{}, errors.New("invalid user_id in auth context")
	}
	return actor{ID: id, Role: middleware.UserRoleFromContext(r.Context())}, nil
}

// mustActor resolves the caller or writes a 401 and returns false.
func mustActor(w http.ResponseWriter, r *http.Request) (actor, bool) {
	a, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return actor{}, false
	}
	return a, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-"+name, fmt.Sprintf("Invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

// amountMicros converts a decimal currency amount from a request body into
// micros. Sub-micro precision is rejected rather than truncated.
func amountMicros(w http.ResponseWriter, r *http.Request, amount decimal.Decimal) (int64, bool) {
	micros, err := domain.FromDecimal(amount)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", err.Error())
		return 0, false
	}
	if !domain.ToDecimal(micros).Equal(amount) {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", "amount has more than 6 decimal places")
		return 0, false
	}
	if micros <= 0 {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-amount", models.ErrNonPositiveAmount.Error())
		return 0, false
	}
	return micros, true
}

// pageParams reads limit/offset query parameters. Missing or malformed
// values become zero and the service applies its defaults.
func pageParams(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

// respondServiceError maps domain errors onto problem responses. Anything it
// does not recognise is logged and reported as a 500 of fallbackType.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallbackType, fallbackMsg string) {
	if status, pType, ok := mapDomainError(err); ok {
		RespondError(w, r, status, pType, err.Error())
		return
	}
	if status, pType, msg, ok := mapDBError(err); ok {
		RespondError(w, r, status, pType, msg)
		return
	}
	zap.L().Error(fallbackMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("trace_id", middleware.TraceIDFromContext(r.Context())),
	)
	RespondError(w, r, http.StatusInternalServerError, fallbackType, fallbackMsg)
}

var domainErrors = []struct {
	err    error
	status int
	pType  string
}{
	{models.ErrInsufficientFunds, http.StatusUnprocessableEntity, "wallet/insufficient-funds"},
	{models.ErrBankLocked, http.StatusUnprocessableEntity, "wallet/bank-locked"},
	{models.ErrBelowMinimumWithdraw, http.StatusUnprocessableEntity, "withdraw/below-minimum"},
	{models.ErrAccountNotFound, http.StatusNotFound, "account/not-found"},
	{models.ErrUserNotFound, http.StatusNotFound, "user/not-found"},
	{models.ErrDrawNotFound, http.StatusNotFound, "draw/not-found"},
	{models.ErrBetNotFound, http.StatusNotFound, "bet/not-found"},
	{models.ErrWithdrawNotFound, http.StatusNotFound, "withdraw/not-found"},
	{models.ErrInvalidCompartment, http.StatusBadRequest, "request/invalid-compartment"},
	{models.ErrInvalidBetType, http.StatusBadRequest, "request/invalid-bet-type"},
	{models.ErrNonPositiveAmount, http.StatusBadRequest, "request/invalid-amount"},
	{models.ErrInvalidPolicy, http.StatusBadRequest, "request/invalid-policy"},
	{models.ErrAlreadyProcessed, http.StatusConflict, "state/already-processed"},
	{models.ErrDrawNotReady, http.StatusConflict, "draw/not-ready"},
	{models.ErrLiveDrawExists, http.StatusConflict, "draw/live-draw-exists"},
	{models.ErrAccountExists, http.StatusConflict, "account/exists"},
	{models.ErrEmailTaken, http.StatusConflict, "user/email-taken"},
	{service.ErrInvalidSignature, http.StatusUnauthorized, "webhook/invalid-signature"},
	{service.ErrDrawPayloadMismatch, http.StatusConflict, "webhook/draw-mismatch"},
	{service.ErrInvalidInput, http.StatusBadRequest, "request/invalid-input"},
}

func mapDomainError(err error) (int, string, bool) {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.status, d.pType, true
		}
	}
	return 0, "", false
}

func mapDBError(err error) (status int, problemType, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "db/unique-violation", "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusBadRequest, "db/foreign-key-violation", "invalid reference", true
	case "23514": // check_violation
		return http.StatusBadRequest, "db/check-violation", "request violates data constraints", true
	case "23502": // not_null_violation
		return http.StatusBadRequest, "db/not-null-violation", "missing required field", true
	default:
		return 0, "", "", false
	}
}
