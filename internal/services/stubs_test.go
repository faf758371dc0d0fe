// internal/services/stubs_test.go
package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flypig-ai/flypig-backend/internal/gamma"
	"github.com/flypig-ai/flypig-backend/internal/gemini"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

// memUserStore is an in-memory UserStore for service tests.
type memUserStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	markPaidCalls []string
	increments    []string
	saveCalls     int
}

func newMemUserStore(users ...*models.User) *memUserStore {
	s := &memUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID.String()] = u
	}
	return s
}

func (s *memUserStore) GetByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *memUserStore) GetByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memUserStore) Create(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID.String()] = user
	return nil
}

func (s *memUserStore) Save(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	s.users[user.ID.String()] = user
	return nil
}

func (s *memUserStore) MarkPaid(id string, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markPaidCalls = append(s.markPaidCalls, id)
	u, ok := s.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.IsPaid = true
	u.PaidAt = &paidAt
	u.AnalysisCount = 0
	return nil
}

func (s *memUserStore) IncrementAnalysisCount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increments = append(s.increments, id)
	if u, ok := s.users[id]; ok {
		u.AnalysisCount++
	}
	return nil
}

func (s *memUserStore) List(params utils.PaginationParams) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, *u)
	}
	total := int64(len(all))

	start := (params.Page - 1) * params.Limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// memOrderStore is an in-memory OrderStore.
type memOrderStore struct {
	mu     sync.Mutex
	orders map[string]*models.PaymentOrder
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{orders: make(map[string]*models.PaymentOrder)}
}

func (s *memOrderStore) Create(order *models.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.MerchantTradeNo] = order
	return nil
}

func (s *memOrderStore) GetByTradeNo(tradeNo string) (*models.PaymentOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[tradeNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *memOrderStore) Save(order *models.PaymentOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.MerchantTradeNo] = order
	return nil
}

// stubModel scripts the two Gemini entry points.
type stubModel struct {
	textResult string
	textErr    error
	jsonResult interface{}
	jsonErr    error

	textCalls   int
	jsonCalls   int
	lastPrompt  string
	lastImage   *gemini.Image
}

func (m *stubModel) GenerateText(ctx context.Context, prompt string, image *gemini.Image) (string, error) {
	m.textCalls++
	m.lastImage = image
	if m.textErr != nil {
		return "", m.textErr
	}
	return m.textResult, nil
}

func (m *stubModel) GenerateJSON(ctx context.Context, prompt string, schema *gemini.Schema, out interface{}) error {
	m.jsonCalls++
	m.lastPrompt = prompt
	if m.jsonErr != nil {
		return m.jsonErr
	}
	data, err := json.Marshal(m.jsonResult)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// stubGamma scripts the generation client.
type stubGamma struct {
	createID    string
	createErr   error
	status      *gamma.Generation
	statusErr   error
	lastRequest gamma.GenerationRequest
}

func (g *stubGamma) CreateGeneration(ctx context.Context, req gamma.GenerationRequest) (string, error) {
	g.lastRequest = req
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.createID, nil
}

func (g *stubGamma) GetGeneration(ctx context.Context, id string) (*gamma.Generation, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	return g.status, nil
}

func sampleAnalysis() *models.AnalysisResult {
	return &models.AnalysisResult{
		ProductCoreValue: models.ProductCoreValue{
			MainFeatures:     []string{"輕量化設計", "防潑水布料"},
			CoreAdvantages:   []string{"通勤舒適"},
			PainPointsSolved: []string{"肩膀痠痛"},
		},
		MarketPositioning: models.MarketPositioning{
			CulturalInsights: "台灣市場",
			ConsumerHabits:   "行動購物為主",
			LanguageNuances:  "繁體中文",
			SearchTrends:     []string{"後背包 推薦"},
		},
		CompetitorAnalysis: []models.Competitor{{
			BrandName:         "競品A",
			MarketingStrategy: "社群導購",
			Strengths:         []string{"知名度高"},
			Weaknesses:        []string{"價格偏高"},
		}},
		BuyerPersonas: []models.BuyerPersona{{
			PersonaName:  "都會通勤族",
			Demographics: "25-40歲",
			Interests:    []string{"單車"},
			PainPoints:   []string{"背包太重"},
			Keywords:     []string{"輕量後背包"},
		}},
	}
}
