// internal/handlers/api.go
package handlers

import (
	"encoding/json"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/flypig-ai/flypig-backend/internal/gamma"
	"github.com/flypig-ai/flypig-backend/internal/gemini"
	"github.com/flypig-ai/flypig-backend/internal/i18n"
	"github.com/flypig-ai/flypig-backend/internal/models"
	"github.com/flypig-ai/flypig-backend/internal/services"
	"github.com/flypig-ai/flypig-backend/internal/utils"
)

// APIHandler dispatches the single-endpoint action protocol. Exactly one
// operation executes per request; unknown actions are rejected before any
// downstream call.
type APIHandler struct {
	analysisService   *services.AnalysisService
	generationService *services.GenerationService
	paymentService    *services.PaymentService
	adminService      *services.AdminService
	storageService    *services.StorageService
}

func NewAPIHandler(
	analysisService *services.AnalysisService,
	generationService *services.GenerationService,
	paymentService *services.PaymentService,
	adminService *services.AdminService,
	storageService *services.StorageService,
) *APIHandler {
	return &APIHandler{
		analysisService:   analysisService,
		generationService: generationService,
		paymentService:    paymentService,
		adminService:      adminService,
		storageService:    storageService,
	}
}

type actionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type generationStartPayload struct {
	ProductInfo *models.ProductInfo    `json:"productInfo"`
	Analysis    *models.AnalysisResult `json:"analysis"`
	Topic       *models.ContentTopic   `json:"topic"`
}

type generationIDPayload struct {
	ID string `json:"id"`
}

type setAdminPayload struct {
	Email string `json:"email"`
}

// POST /api
func (h *APIHandler) Dispatch(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" || len(req.Payload) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyActionMissing), nil)
		return
	}

	switch req.Action {
	case "analyzeMarket":
		h.analyzeMarket(c, req.Payload)
	case "generateContentStrategy":
		h.generateContentStrategy(c, req.Payload)
	case "startGammaGeneration":
		h.startGammaGeneration(c, req.Payload)
	case "checkGammaGenerationStatus":
		h.checkGammaGenerationStatus(c, req.Payload)
	case "cancelGammaGeneration":
		h.cancelGammaGeneration(c, req.Payload)
	case "createEcpayOrder":
		h.createEcpayOrder(c)
	case "getUsers":
		h.getUsers(c, req.Payload)
	case "downloadUsersCsv":
		h.downloadUsersCsv(c)
	case "setAdminByOwner":
		h.setAdminByOwner(c, req.Payload)
	default:
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyActionUnknown), nil)
	}
}

func (h *APIHandler) analyzeMarket(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	var info models.ProductInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&info)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	userID, _ := utils.GetUserIDFromContext(c)
	result, err := h.analysisService.AnalyzeMarket(c.Request.Context(), userID, &info)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if info.Image != nil && h.storageService.Enabled() {
		image := *info.Image
		go func() {
			if _, err := h.storageService.ArchiveProductImage(image.Base64, image.MimeType); err != nil {
				logrus.WithError(err).Warn("Failed to archive product image")
			}
		}()
	}

	utils.SuccessResponse(c, result)
}

func (h *APIHandler) generateContentStrategy(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	var analysis models.AnalysisResult
	if err := json.Unmarshal(payload, &analysis); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), err.Error())
		return
	}

	strategy, err := h.analysisService.GenerateContentStrategy(c.Request.Context(), &analysis)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, strategy)
}

func (h *APIHandler) startGammaGeneration(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	if h.generationService == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyGenerationUnavailable), nil)
		return
	}

	var req generationStartPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ProductInfo == nil || req.Analysis == nil || req.Topic == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), nil)
		return
	}

	id, err := h.generationService.Start(c.Request.Context(), req.ProductInfo, req.Analysis, req.Topic)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"id": id})
}

func (h *APIHandler) checkGammaGenerationStatus(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	if h.generationService == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyGenerationUnavailable), nil)
		return
	}

	var req generationIDPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ID == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), nil)
		return
	}

	gen, err := h.generationService.CheckStatus(c.Request.Context(), req.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gen)
}

func (h *APIHandler) cancelGammaGeneration(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	if h.generationService == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyGenerationUnavailable), nil)
		return
	}

	var req generationIDPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.ID == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "payload"), nil)
		return
	}

	h.generationService.Cancel(req.ID)
	utils.SuccessResponse(c, gin.H{"cancelled": req.ID})
}

func (h *APIHandler) createEcpayOrder(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if h.paymentService == nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPaymentUnavailable), nil)
		return
	}

	order, err := h.paymentService.CreateOrder(userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

func (h *APIHandler) getUsers(c *gin.Context, payload json.RawMessage) {
	if !h.requireAdmin(c) {
		return
	}

	var params utils.PaginationParams
	// Pagination is optional in the payload; defaults apply otherwise.
	_ = json.Unmarshal(payload, &params)

	result, err := h.adminService.GetUsers(params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

func (h *APIHandler) downloadUsersCsv(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	csvData, err := h.adminService.DownloadUsersCsv()
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.storageService.Enabled() {
		go func() {
			if _, err := h.storageService.ArchiveUsersCsv(csvData); err != nil {
				logrus.WithError(err).Warn("Failed to archive users export")
			}
		}()
	}

	utils.SuccessResponse(c, gin.H{"csvData": csvData})
}

func (h *APIHandler) setAdminByOwner(c *gin.Context, payload json.RawMessage) {
	lang := utils.GetLangFromContext(c)

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req setAdminPayload
	if err := json.Unmarshal(payload, &req); err != nil || req.Email == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "email"), nil)
		return
	}

	if err := h.adminService.SetAdminByOwner(userID, req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyAdminGranted, req.Email)})
}

// requireAdmin enforces the admin claim for the two admin-only operations.
// Missing credential and missing claim are reported distinctly.
func (h *APIHandler) requireAdmin(c *gin.Context) bool {
	if _, ok := utils.GetUserIDFromContext(c); !ok {
		utils.UnauthorizedResponse(c, "")
		return false
	}
	if !utils.IsAdminFromContext(c) {
		utils.ForbiddenResponse(c, "")
		return false
	}
	return true
}

func (h *APIHandler) respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAnalysisQuotaExceeded))
	case errors.Is(err, services.ErrPermissionDenied):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, gamma.ErrTimeout):
		utils.ErrorResponse(c, 500, "GENERATION_TIMEOUT", i18n.T(lang, i18n.KeyGenerationTimeout), nil)
	case errors.Is(err, gamma.ErrGenerationFailed):
		utils.ErrorResponse(c, 500, "GENERATION_FAILED", i18n.T(lang, i18n.KeyGenerationFailed), nil)
	case errors.Is(err, gemini.ErrMalformedOutput):
		utils.ErrorResponse(c, 500, "MALFORMED_MODEL_OUTPUT", i18n.T(lang, i18n.KeyAnalysisMalformed), nil)
	case errors.Is(err, gemini.ErrEmptyResponse):
		utils.ErrorResponse(c, 500, "UPSTREAM_ERROR", i18n.T(lang, i18n.KeyAnalysisUpstream), nil)
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, "user")
	default:
		logrus.WithError(err).Error("Action failed")
		utils.InternalErrorResponse(c, err.Error())
	}
}
