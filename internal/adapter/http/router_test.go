package http

import (
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chama-ledger/internal/adapter/middleware"
	"chama-ledger/internal/auth"
	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/testutil/dbtest"
	"chama-ledger/internal/usecase/approval"
	"chama-ledger/internal/usecase/contribution"
	"chama-ledger/internal/usecase/loan"
	memberuc "chama-ledger/internal/usecase/member"
	"chama-ledger/internal/usecase/performance"
	"chama-ledger/internal/usecase/rotation"
	"chama-ledger/internal/usecase/settings"
)

var (
	secret = []byte("router-test-secret-0123456789")
	today  = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
)

func clock() time.Time { return today }

type server struct {
	e      *echo.Echo
	f      *dbtest.Fixture
	admin  string
	member auth.Actor
	token  string
}

func newServer(t *testing.T, mw ...echo.MiddlewareFunc) *server {
	t.Helper()
	f := dbtest.NewFixture(t)
	f.Settings(t, func(s *group.Settings) { s.Contribution.StartDate = timing.NewDate(2024, time.January, 1) })
	m := f.AddMember(t, "wanjiru", member.RoleMember, timing.NewDate(2024, time.January, 2))

	rot := rotation.NewUsecase(f.UoW, nil).WithClock(clock)
	h := Handlers{
		Health:        NewHandler(),
		Loans:         NewLoanHandler(loan.NewUsecase(f.UoW, nil).WithClock(clock), nil),
		Repayments:    NewRepaymentHandler(approval.NewUsecase(f.UoW, nil).WithClock(clock), nil),
		Settings:      NewSettingsHandler(settings.NewUsecase(f.Repos.Settings, nil).WithClock(clock), nil),
		Rotation:      NewRotationHandler(rot, nil),
		Contributions: NewContributionHandler(contribution.NewUsecase(f.UoW, nil).WithClock(clock).WithNotifier(rot), nil),
		Members: NewMemberHandler(
			memberuc.NewUsecase(f.Repos.Members, f.Repos.Contributions, nil).WithClock(clock),
			performance.NewUsecase(f.UoW, nil), nil),
	}
	e := echo.New()
	e.Validator = NewValidator()
	Register(e, h, append([]echo.MiddlewareFunc{middleware.Auth(secret, nil)}, mw...)...)

	return &server{e: e, f: f, admin: tokenFor(t, f.Admin), member: m, token: tokenFor(t, m)}
}

func tokenFor(t *testing.T, a auth.Actor) string {
	t.Helper()
	tok, err := auth.IssueToken(secret, a, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func (s *server) do(t *testing.T, token, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, s.token, stdhttp.MethodPost, "/api/v1/contributions", map[string]any{
		"member_id": s.member.MemberID, "week_number": 1, "amount": "1000", "paid_date": "2024-01-01",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans", map[string]any{"amount": 5000, "reason": "school fees"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	loanID := decode[map[string]any](t, rec)["loan_id"].(string)

	// only admins may offer
	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans/"+loanID+"/offer", map[string]any{
		"amount": "5000", "due_date": "2024-02-15", "installment_number": 5,
	})
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/loans/"+loanID+"/offer", map[string]any{
		"amount": "5000", "fees": "100", "due_date": "2024-02-15", "installment_number": 5,
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans/"+loanID+"/respond", map[string]any{"accept": true})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	view := decode[map[string]any](t, rec)
	assert.Equal(t, "active", view["status"])
	assert.Len(t, view["installments"], 5)

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans/"+loanID+"/repayments", map[string]any{"amount": "999999"})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans/"+loanID+"/repayments", map[string]any{
		"amount": "1120", "paid_date": "2024-02-10",
	})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	repaymentID := decode[map[string]any](t, rec)["repayment_id"].(string)

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/repayments/"+repaymentID+"/approve", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	approved := decode[struct {
		Repayment map[string]any `json:"repayment"`
		Loan      map[string]any `json:"loan"`
	}](t, rec)
	assert.Equal(t, "approved", approved.Repayment["status"])
	assert.Equal(t, "active", approved.Loan["status"])
	assert.Equal(t, "1120", approved.Loan["approved_sum"])
	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/repayments/"+repaymentID+"/approve", nil)
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/repayments/"+repaymentID+"/rating", map[string]any{})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "early", decode[map[string]any](t, rec)["timing_rating"])

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/loans/"+loanID, nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, "4480", decode[map[string]any](t, rec)["outstanding"])

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/loans/"+loanID+"/repayments", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/members/"+s.member.MemberID+"/performance", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, "", stdhttp.MethodGet, "/api/v1/loans", nil)
	assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/loans/not-an-id", nil)
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/loans/"+strings.Repeat("f", 32), nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans", map[string]any{"amount": "-1"})
	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.True(t, containsFieldMsg(resp.Details, "amount", "greater than zero"), "%+v", resp.Details)

	rec = s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans", "not an object")
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	// domain validation surfaces its field too
	rec = s.do(t, s.admin, stdhttp.MethodPatch, "/api/v1/settings", map[string]any{"interest_rate": "150"})
	require.Equal(t, stdhttp.StatusBadRequest, rec.Code)
	assert.True(t, containsFieldMsg(decode[ErrorResponse](t, rec).Details, "interest_rate", "between 0 and 100"))

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/rotation", nil)
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
}

func TestSettingsAndSchedule(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, s.admin, stdhttp.MethodPatch, "/api/v1/settings", map[string]any{
		"contribution_settings": map[string]any{"amount": "500", "penalty_amount": "50", "grace_period_days": 2},
	})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/contributions/schedule", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	sched := decode[map[string]any](t, rec)
	assert.Equal(t, "500", sched["amount"])
	assert.EqualValues(t, 3, sched["current_week"])
	assert.Equal(t, "2024-01-15T00:00:00Z", sched["next_due_date"])

	rec = s.do(t, s.token, stdhttp.MethodPatch, "/api/v1/settings", map[string]any{"interest_rate": "5"})
	assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
}

func TestRotationOverHTTP(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/rotation/cycles", map[string]any{})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())
	cycle := decode[map[string]any](t, rec)
	cycleID := cycle["cycle_id"].(string)
	assert.Equal(t, s.f.Admin.MemberID, cycle["current_recipient"])

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/rotation/cycles", map[string]any{})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code, "a second active cycle is refused")

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/rotation/cycles/"+cycleID+"/obligations", map[string]any{"position": 1})
	require.Equal(t, stdhttp.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, s.member.MemberID, decode[map[string]any](t, rec)["current_recipient"])

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/rotation/cycles/"+cycleID+"/obligations", map[string]any{"position": 1})
	assert.Equal(t, stdhttp.StatusConflict, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/rotation", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
}

func TestMembersOverHTTP(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/members", map[string]any{"name": "akinyi", "joined_at": "2024-01-02"})
	require.Equal(t, stdhttp.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, s.admin, stdhttp.MethodPost, "/api/v1/members", map[string]any{"name": ""})
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/members", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	rec = s.do(t, s.token, stdhttp.MethodGet, "/api/v1/performance/leaderboard", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)
}

func TestIdempotentLoanRequest(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := newServer(t, middleware.IdempotencyMiddleware(rdb, time.Minute, nil))
	hdr := []string{
		"Ax-Request-Id", strings.Repeat("e", 32),
		"Ax-Request-At", time.Now().UTC().Format(time.RFC3339),
	}
	body := map[string]any{"amount": "2000"}

	first := s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans", body, hdr...)
	require.Equal(t, stdhttp.StatusCreated, first.Code, first.Body.String())
	again := s.do(t, s.token, stdhttp.MethodPost, "/api/v1/loans", body, hdr...)
	require.Equal(t, stdhttp.StatusCreated, again.Code)
	assert.Equal(t, first.Body.String(), again.Body.String())

	rec := s.do(t, s.token, stdhttp.MethodGet, "/api/v1/loans", nil)
	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1, "replay must not open a second loan")
}
