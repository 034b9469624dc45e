package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/example/pandol/internal/config"
	"github.com/example/pandol/internal/handlers"
	"github.com/example/pandol/internal/logger"
	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/routes"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/services/mocks"
	"github.com/example/pandol/internal/session"
	"github.com/example/pandol/internal/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const secret = "handler-secret"

type harness struct {
	app          *fiber.App
	members      *mocks.MockMemberRepository
	transactions *mocks.MockTransactionRepository
	credits      *mocks.MockCreditRepository
	users        *mocks.MockUserRepository
	tokens       *mocks.MockTokenRepository
	letterheads  *mocks.MockLetterheadRepository
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		members:      mocks.NewMockMemberRepository(ctrl),
		transactions: mocks.NewMockTransactionRepository(ctrl),
		credits:      mocks.NewMockCreditRepository(ctrl),
		users:        mocks.NewMockUserRepository(ctrl),
		tokens:       mocks.NewMockTokenRepository(ctrl),
		letterheads:  mocks.NewMockLetterheadRepository(ctrl),
	}

	log := logger.Discard()
	resolver := session.ContextResolver{}
	svc := routes.Services{
		Auth:       services.NewAuthService(h.users, h.members, h.tokens, services.AuthConfig{Secret: secret, TokenTTL: time.Hour, ResetTTL: time.Hour}, log),
		Members:    services.NewMemberService(h.members, h.transactions, h.credits, resolver, log),
		Credits:    services.NewCreditService(h.members, h.credits, nil, log),
		Sales:      services.NewSaleService(h.members, h.transactions, resolver, log),
		Reports:    services.NewReportService(mocks.NewMockReportSource(ctrl), h.letterheads, services.ReportSourceSample, nil, log),
		MemberRepo: h.members,
	}

	h.app = fiber.New(fiber.Config{
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: handlers.ErrorHandler(log),
	})
	routes.Register(h.app, nil, &config.Config{JWTSecret: secret, Environment: "development"}, svc)
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, userID uint, role string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := utils.GenerateToken(secret, userID, role, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else {
		out = map[string]any{"raw": string(raw)}
	}
	return resp, out
}

func member(id uint, balance, limit string) *models.Member {
	m := &models.Member{
		Name:          "Maria Santos",
		Email:         "maria@example.com",
		CreditBalance: decimal.RequireFromString(balance),
		CreditLimit:   decimal.RequireFromString(limit),
		Status:        models.MemberStatusActive,
	}
	m.ID = id
	m.CreatedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return m
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{errors.Wrap(repository.ErrNotFound, "load member"), fiber.StatusNotFound},
		{errors.Wrap(repository.ErrCreditLimitExceeded, "post credit entry"), fiber.StatusUnprocessableEntity},
		{services.ErrInvalidCredentials, fiber.StatusUnauthorized},
		{errors.Wrap(services.ErrEmptySale, "checkout"), fiber.StatusBadRequest},
		{fiber.NewError(fiber.StatusTeapot, "teapot"), fiber.StatusTeapot},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, handlers.StatusFor(tt.err))
		})
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	h := newHarness(t)

	resp, body := h.do(t, http.MethodGet, "/api/members/me", "", 0, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])

	resp, _ = h.do(t, http.MethodGet, "/api/members", "", 5, models.RoleMember)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/pos/transactions", `{}`, 5, models.RoleMember)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMemberDataUnavailable(t *testing.T) {
	h := newHarness(t)
	h.members.EXPECT().GetByUserID(gomock.Any(), uint(5)).Return(nil, nil)

	resp, body := h.do(t, http.MethodGet, "/api/members/me", "", 5, models.RoleMember)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestMemberData(t *testing.T) {
	h := newHarness(t)
	h.members.EXPECT().GetByUserID(gomock.Any(), uint(5)).Return([]models.Member{*member(7, "450", "1000")}, nil)
	h.transactions.EXPECT().GetByMemberID(gomock.Any(), uint(7)).Return(nil, nil)
	h.credits.EXPECT().ListByType(gomock.Any(), uint(7), models.CreditEarned).Return(nil, nil)

	resp, body := h.do(t, http.MethodGet, "/api/members/me", "", 5, models.RoleMember)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "M0007", data["member_id"])
	assert.Equal(t, "Jan 15, 2024", data["join_date"])
	assert.EqualValues(t, 45, data["credit_utilization"])
	assert.EqualValues(t, 550, data["available_credit"])
}

func TestUpdateProfile(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPut, "/api/members/7/profile", `{"profile_picture":"https://example.com/a.png"}`, 5, models.RoleMember)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/members/abc/profile", `{"email":"a@b.co"}`, 5, models.RoleMember)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	m := member(7, "0", "1000")
	h.members.EXPECT().GetByUserID(gomock.Any(), uint(5)).Return([]models.Member{*m}, nil).Times(2)
	h.members.EXPECT().Update(gomock.Any(), uint(7), map[string]any{"email": "new@example.com"}).Return(m, nil)
	h.members.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)
	h.transactions.EXPECT().GetByMemberID(gomock.Any(), uint(7)).Return(nil, nil)

	resp, body := h.do(t, http.MethodPut, "/api/members/7/profile", `{"email":"new@example.com"}`, 5, models.RoleMember)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestUpdateProfileOfAnotherMember(t *testing.T) {
	h := newHarness(t)
	h.members.EXPECT().GetByUserID(gomock.Any(), uint(5)).Return([]models.Member{*member(7, "0", "1000")}, nil)

	resp, body := h.do(t, http.MethodDelete, "/api/members/8/profile-picture", "", 5, models.RoleMember)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.users.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, repository.ErrNotFound)

	resp, body := h.do(t, http.MethodPost, "/api/auth/login", `{"email":" Nobody@Example.com ","password":"secret123"}`, 0, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["message"])
}

func TestForgotPassword(t *testing.T) {
	h := newHarness(t)
	user := &models.User{Email: "maria@example.com"}
	user.ID = 5
	h.users.EXPECT().GetByEmail(gomock.Any(), "maria@example.com").Return(user, nil)
	h.tokens.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	resp, body := h.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"maria@example.com"}`, 0, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["reset_token"])

	resp, _ = h.do(t, http.MethodPost, "/api/auth/reset-password", `{"token":"abc","new_password":"123"}`, 0, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPostCredit(t *testing.T) {
	h := newHarness(t)

	h.credits.EXPECT().Post(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entry *models.Credit) (*models.Member, error) {
			assert.Equal(t, uint(7), entry.MemberID)
			assert.Equal(t, models.CreditEarned, entry.Type)
			entry.ID = 31
			return member(7, "150", "1000"), nil
		})

	resp, body := h.do(t, http.MethodPost, "/api/members/7/credits", `{"amount":"100","type":"Earned","notes":"Cash payment"}`, 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "150", data["credit_balance"])

	h.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(nil, repository.ErrCreditLimitExceeded)
	resp, body = h.do(t, http.MethodPost, "/api/members/7/credits", `{"amount":"5000","type":"Spent"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["message"], "credit limit")

	resp, _ = h.do(t, http.MethodPost, "/api/members/7/credits", `{"amount":"-5","type":"Earned"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReconcile(t *testing.T) {
	h := newHarness(t)
	h.credits.EXPECT().LedgerTotals(gomock.Any()).Return(nil, nil)

	resp, body := h.do(t, http.MethodPost, "/api/admin/reconcile", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["data"])
}

func TestCheckout(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPost, "/api/pos/transactions", `{"payment_method":"bitcoin","items":[{"product_id":1,"quantity":1}]}`, 2, models.RoleCashier)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/pos/transactions", `{"payment_method":"credit","items":[{"product_id":1,"quantity":1}]}`, 2, models.RoleCashier)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	h.transactions.EXPECT().CreateSale(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, sale *models.Transaction, _ *models.Credit) error {
			assert.Equal(t, uint(2), sale.UserID)
			sale.ID = 90
			sale.TotalAmount = decimal.NewFromInt(120)
			return nil
		})

	resp, body := h.do(t, http.MethodPost, "/api/pos/transactions", `{"payment_method":"Cash","items":[{"product_id":1,"quantity":2}]}`, 2, models.RoleCashier)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 90, data["id"])
	assert.Equal(t, "cash", data["payment_method"])

	h.transactions.EXPECT().List(gomock.Any(), utils.NewPagination(1, 20), gomock.Any()).Return([]models.Transaction{}, int64(0), nil)
	resp, _ = h.do(t, http.MethodGet, "/api/pos/transactions?member_id=7", "", 2, models.RoleCashier)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestReports(t *testing.T) {
	h := newHarness(t)
	h.letterheads.EXPECT().Get(gomock.Any()).Return(nil, repository.ErrNotFound).AnyTimes()

	resp, body := h.do(t, http.MethodGet, "/api/reports/sales?range=month", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Sales Report", data["title"])

	resp, body = h.do(t, http.MethodGet, "/api/reports/credit/print?range=week", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body["raw"], "Credit Report")
	assert.Contains(t, body["raw"], "Pandol Cooperative")
	assert.Contains(t, body["raw"], "window.print()")

	resp, body = h.do(t, http.MethodGet, "/api/reports/inventory/print?format=csv", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, body["raw"], "Organic Apples")

	resp, _ = h.do(t, http.MethodGet, "/api/reports/payroll", "", 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/reports/sales?range=fortnight", "", 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = h.do(t, http.MethodGet, "/api/reports", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].(map[string]any)["types"], 4)
}

func TestLetterhead(t *testing.T) {
	h := newHarness(t)

	resp, _ := h.do(t, http.MethodPut, "/api/admin/letterhead", `{"company_name":"Pandol MPC","email":"not an email"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	h.letterheads.EXPECT().Save(gomock.Any(), &models.Letterhead{CompanyName: "Pandol MPC", Phone: "0917"}).Return(nil)
	h.letterheads.EXPECT().Get(gomock.Any()).Return(&models.Letterhead{CompanyName: "Pandol MPC", Phone: "0917"}, nil)

	resp, body := h.do(t, http.MethodPut, "/api/admin/letterhead", `{"company_name":" Pandol MPC ","phone":"0917"}`, 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Pandol MPC", data["company_name"])
	assert.Equal(t, "info@pandolcoop.com", data["email"])
}

func TestAdminMembers(t *testing.T) {
	h := newHarness(t)

	h.members.EXPECT().List(gomock.Any(), utils.NewPagination(2, 10), "maria").
		Return([]models.Member{*member(7, "0", "1000")}, int64(11), nil)
	resp, body := h.do(t, http.MethodGet, "/api/members?page=2&limit=10&search=maria", "", 1, models.RoleAdmin)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 11, body["pagination"].(map[string]any)["total_items"])

	h.members.EXPECT().Create(gomock.Any(), gomock.Any()).Return(repository.ErrDuplicate)
	resp, _ = h.do(t, http.MethodPost, "/api/members", `{"name":"Maria","email":"maria@example.com","credit_limit":"1000"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPut, "/api/members/7", `{"credit_limit":"-1"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	h.members.EXPECT().Update(gomock.Any(), uint(7), gomock.Any()).Return(member(7, "0", "2000"), nil)
	h.members.EXPECT().RecordActivity(gomock.Any(), gomock.Any()).Return(nil)
	resp, _ = h.do(t, http.MethodPut, "/api/members/7", `{"credit_limit":"2000"}`, 1, models.RoleAdmin)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

type lastReconcile struct {
	at      time.Time
	drifted int
}

func (l lastReconcile) LastReconcile() (time.Time, int) { return l.at, l.drifted }

func TestHealth(t *testing.T) {
	finished := time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC)

	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	app.Get("/health", handlers.NewHealthHandler(nil, lastReconcile{at: finished, drifted: 2}).Health)
	app.Get("/idle", handlers.NewHealthHandler(nil, lastReconcile{}).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "unreachable", body["database"])
	last, ok := body["last_reconcile"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 2, last["drifted"])
	assert.Equal(t, "2024-03-01T02:00:00Z", last["finished_at"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/idle", nil), -1)
	require.NoError(t, err)
	body = nil
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotContains(t, body, "last_reconcile")
}
