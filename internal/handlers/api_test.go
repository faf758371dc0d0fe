// internal/handlers/api_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flypig-ai/flypig-backend/internal/config"
	"github.com/flypig-ai/flypig-backend/internal/gemini"
	"github.com/flypig-ai/flypig-backend/internal/middleware"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/services"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

// trackingUserStore counts store traffic so guard tests can prove a rejected
// request never reached the data layer.
type trackingUserStore struct {
	users     map[string]*models.User
	listCalls int
}

func newTrackingUserStore(users ...*models.User) *trackingUserStore {
	s := &trackingUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID.String()] = u
	}
	return s
}

func (s *trackingUserStore) GetByID(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

func (s *trackingUserStore) GetByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *trackingUserStore) Create(user *models.User) error { return nil }
func (s *trackingUserStore) Save(user *models.User) error   { return nil }

func (s *trackingUserStore) MarkPaid(id string, paidAt time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return services.ErrUserNotFound
	}
	u.IsPaid = true
	u.PaidAt = &paidAt
	u.AnalysisCount = 0
	return nil
}

func (s *trackingUserStore) IncrementAnalysisCount(id string) error { return nil }

func (s *trackingUserStore) List(params utils.PaginationParams) ([]models.User, int64, error) {
	s.listCalls++
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	return all, int64(len(all)), nil
}

type trackingOrderStore struct{ created int }

func (s *trackingOrderStore) Create(order *models.PaymentOrder) error { s.created++; return nil }
func (s *trackingOrderStore) GetByTradeNo(tradeNo string) (*models.PaymentOrder, error) {
	return nil, services.ErrUserNotFound
}
func (s *trackingOrderStore) Save(order *models.PaymentOrder) error { return nil }

type cannedModel struct {
	result interface{}
}

func (m *cannedModel) GenerateText(ctx context.Context, prompt string, image *gemini.Image) (string, error) {
	return "", nil
}

func (m *cannedModel) GenerateJSON(ctx context.Context, prompt string, schema *gemini.Schema, out interface{}) error {
	data, err := json.Marshal(m.result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

type apiTestEnv struct {
	router *gin.Engine
	users  *trackingUserStore
	orders *trackingOrderStore
}

func newAPITestEnv(t *testing.T, seed ...*models.User) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	cfg := &config.Config{
		Admin: config.AdminConfig{AnalysisLimit: 3},
		ECPay: config.ECPayConfig{
			MerchantID:  "2000132",
			HashKey:     "5294y06JbISpM5x9",
			HashIV:      "v77hoKGq4kWxNNIS",
			CallbackURL: "https://example.com/ecpay/callback",
			ActionURL:   "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5",
		},
	}

	users := newTrackingUserStore(seed...)
	orders := &trackingOrderStore{}

	analysisService := services.NewAnalysisService(&cannedModel{result: sampleAnalysisResult()}, users, cfg)
	adminService := services.NewAdminService(users, cfg)
	paymentService, err := services.NewPaymentService(users, orders, cfg)
	require.NoError(t, err)

	h := NewAPIHandler(analysisService, nil, paymentService, adminService, nil)

	r := gin.New()
	r.POST("/api", middleware.BearerAuth(), h.Dispatch)

	return &apiTestEnv{router: r, users: users, orders: orders}
}

func sampleAnalysisResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProductCoreValue: models.ProductCoreValue{
			MainFeatures:     []string{"輕量化設計"},
			CoreAdvantages:   []string{"通勤舒適"},
			PainPointsSolved: []string{"肩膀痠痛"},
		},
		MarketPositioning: models.MarketPositioning{CulturalInsights: "台灣市場"},
		CompetitorAnalysis: []models.Competitor{{BrandName: "競品A"}},
		BuyerPersonas:      []models.BuyerPersona{{PersonaName: "都會通勤族"}},
	}
}

func (e *apiTestEnv) post(t *testing.T, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := utils.GenerateJWT(user.ID, user.Email, user.IsAdmin, 1)
	require.NoError(t, err)
	return token
}

func TestDispatchUnknownAction(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "doSomethingElse", "payload": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchMissingAction(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"payload": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchMissingPayload(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "analyzeMarket"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDispatchInvalidToken(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "not-a-jwt", gin.H{"action": "analyzeMarket", "payload": gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAnalyzeMarketAnonymous(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "analyzeMarket", "payload": gin.H{
		"name":        "輕量通勤後背包",
		"description": "防潑水、超輕量",
		"market":      "台灣",
	}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                  `json:"success"`
		Data    models.AnalysisResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.BuyerPersonas)
}

func TestAnalyzeMarketRejectsIncompletePayload(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "analyzeMarket", "payload": gin.H{
		"name": "輕量通勤後背包",
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeMarketQuotaExceeded(t *testing.T) {
	user := &models.User{Email: "u@example.com", AnalysisCount: 3}
	env := newAPITestEnv(t, user)

	w := env.post(t, tokenFor(t, user), gin.H{"action": "analyzeMarket", "payload": gin.H{
		"name":        "輕量通勤後背包",
		"description": "防潑水、超輕量",
		"market":      "台灣",
	}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateEcpayOrderRequiresAuth(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "createEcpayOrder", "payload": gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.orders.created)
}

func TestCreateEcpayOrder(t *testing.T) {
	user := &models.User{Email: "buyer@example.com"}
	env := newAPITestEnv(t, user)

	w := env.post(t, tokenFor(t, user), gin.H{"action": "createEcpayOrder", "payload": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data["CheckMacValue"])
	assert.Equal(t, "300", resp.Data["TotalAmount"])
	assert.Equal(t, user.ID.String(), resp.Data["CustomField1"])
	assert.Equal(t, 1, env.orders.created)
}

func TestGetUsersRequiresAuth(t *testing.T) {
	env := newAPITestEnv(t)

	w := env.post(t, "", gin.H{"action": "getUsers", "payload": gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, env.users.listCalls)
}

func TestGetUsersRequiresAdminClaim(t *testing.T) {
	user := &models.User{Email: "u@example.com"}
	env := newAPITestEnv(t, user)

	w := env.post(t, tokenFor(t, user), gin.H{"action": "getUsers", "payload": gin.H{}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	// The guard fires before any data access.
	assert.Equal(t, 0, env.users.listCalls)
}

func TestGetUsersAsAdmin(t *testing.T) {
	admin := &models.User{Email: "admin@example.com", IsAdmin: true}
	env := newAPITestEnv(t, admin)

	w := env.post(t, tokenFor(t, admin), gin.H{"action": "getUsers", "payload": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.users.listCalls)
}

func TestDownloadUsersCsvAsAdmin(t *testing.T) {
	admin := &models.User{Email: "admin@example.com", IsAdmin: true}
	env := newAPITestEnv(t, admin)

	w := env.post(t, tokenFor(t, admin), gin.H{"action": "downloadUsersCsv", "payload": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			CsvData string `json:"csvData"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data.CsvData, "UID,Email,Created At,Analysis Count,Is Paid")
	assert.Contains(t, resp.Data.CsvData, "admin@example.com")
}

func TestGenerationActionsUnavailableWithoutClient(t *testing.T) {
	env := newAPITestEnv(t)

	for _, action := range []string{"startGammaGeneration", "checkGammaGenerationStatus", "cancelGammaGeneration"} {
		w := env.post(t, "", gin.H{"action": action, "payload": gin.H{"id": "gen-1"}})
		assert.Equal(t, http.StatusBadRequest, w.Code, fmt.Sprintf("action %s", action))
	}
}
