package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"wellwatch/internal/config"
	"wellwatch/internal/models"
	"wellwatch/internal/repository"
	"wellwatch/internal/service"
	"wellwatch/internal/utils"
	"wellwatch/internal/worker"
)

type ImportHandler struct {
	importService *service.ImportService
	excelService  *service.ExcelService
	sessionRepo   *repository.SessionRepository
	userRepo      *repository.UserRepository
	asynqClient   *asynq.Client
	cfg           *config.Config
}

func NewImportHandler(
	importService *service.ImportService,
	excelService *service.ExcelService,
	sessionRepo *repository.SessionRepository,
	userRepo *repository.UserRepository,
	asynqClient *asynq.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		excelService:  excelService,
		sessionRepo:   sessionRepo,
		userRepo:      userRepo,
		asynqClient:   asynqClient,
		cfg:           cfg,
	}
}

type PreviewRequest struct {
	Records []map[string]interface{} `json:"records"`
}

type CommitRequest struct {
	Records     []map[string]interface{} `json:"records"`
	SessionCode string                   `json:"session_code"`
}

func parseKind(c *fiber.Ctx) (models.RecordKind, error) {
	switch c.Params("kind") {
	case "properties":
		return models.KindProperty, nil
	case "wells":
		return models.KindWell, nil
	default:
		return "", fmt.Errorf("unknown record kind %q", c.Params("kind"))
	}
}

// currentUser fetches the caller fresh from the database. The plan tier is
// never read from the token: it may have changed since the token was issued.
func (h *ImportHandler) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID := c.Locals("user_id").(int)
	return h.userRepo.FindByID(userID)
}

func accountID(user *models.User) string {
	return strconv.Itoa(user.ID)
}

// Preview validates a submission without writing anything. Safe to call
// repeatedly.
func (h *ImportHandler) Preview(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record kind", err)
	}

	var req PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if len(req.Records) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No records provided", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", err)
	}

	result, err := h.importService.Preview(c.Context(), accountID(user), user.Plan, kind, req.Records)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to preview import", err)
	}

	return utils.SuccessResponse(c, "Preview generated", result)
}

// Commit re-validates and writes the submission. Runs on a background
// context: batches already dispatched complete even if the caller goes away.
func (h *ImportHandler) Commit(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record kind", err)
	}

	var req CommitRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if len(req.Records) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "No records provided", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", err)
	}

	result, err := h.importService.Commit(context.Background(), accountID(user), user.Plan, kind, req.Records)
	if err != nil {
		if errors.Is(err, service.ErrQuotaExceeded) {
			h.closeSession(req.SessionCode, user.ID, "failed", 0, 0, err.Error())
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Plan limit exceeded", err)
		}
		h.closeSession(req.SessionCode, user.ID, "failed", 0, 0, err.Error())
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to commit import", err)
	}

	status := "committed"
	if !result.Success {
		status = "failed"
	}
	h.closeSession(req.SessionCode, user.ID, status, result.Results.Successful, result.Results.Failed,
		strings.Join(result.Results.Errors, "; "))

	if kind == models.KindWell && result.Results.Successful > 0 {
		h.enqueueWellRefresh(req.Records)
	}

	return utils.SuccessResponse(c, "Import committed", result)
}

// Upload accepts a spreadsheet, parses it into freeform rows, and runs the
// same preview pipeline. The response carries the preview plus a session code
// the client can pass back at commit time.
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record kind", err)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	ext := filepath.Ext(file.Filename)
	if ext != ".xlsx" && ext != ".xls" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only Excel files (.xlsx, .xls) are allowed", nil)
	}
	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	user, err := h.currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", err)
	}

	sessionCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])

	if err := os.MkdirAll(h.cfg.UploadPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare upload directory", err)
	}
	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, ext))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	records, err := h.excelService.ParseImportFile(filePath)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse Excel file", err)
	}
	if len(records) == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File contains no data rows", nil)
	}

	preview, err := h.importService.Preview(c.Context(), accountID(user), user.Plan, kind, records)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to preview import", err)
	}

	session := &models.ImportSession{
		SessionCode:   sessionCode,
		UserID:        user.ID,
		Kind:          string(kind),
		Filename:      file.Filename,
		TotalRows:     preview.Summary.Total,
		ValidRows:     preview.Summary.Valid,
		DuplicateRows: preview.Summary.Duplicates,
		Status:        "previewed",
	}
	if err := h.sessionRepo.Create(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import session", err)
	}

	response := fiber.Map{
		"session": session,
		"preview": preview,
	}

	// Ship a downloadable report when any rows need fixing.
	if preview.Summary.Invalid > 0 || preview.Summary.Duplicates > 0 {
		reportName := fmt.Sprintf("report_%s.xlsx", sessionCode)
		reportPath := filepath.Join(h.cfg.ExportPath, reportName)
		if err := os.MkdirAll(h.cfg.ExportPath, 0o755); err == nil {
			if err := h.excelService.ExportErrorReport(preview.Results, reportPath); err == nil {
				response["error_report"] = reportName
			}
		}
	}

	return utils.SuccessResponse(c, "File uploaded successfully", response)
}

// Template generates a sample spreadsheet for the given kind.
func (h *ImportHandler) Template(c *fiber.Ctx) error {
	kind, err := parseKind(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid record kind", err)
	}

	if err := os.MkdirAll(h.cfg.ExportPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare export directory", err)
	}
	fileName := fmt.Sprintf("%s_import_template.xlsx", kind)
	outputPath := filepath.Join(h.cfg.ExportPath, fileName)
	if err := h.excelService.GenerateImportTemplate(kind, outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(outputPath, fileName)
}

// ErrorReport serves a previously generated validation report.
func (h *ImportHandler) ErrorReport(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if filename == "" || strings.Contains(filename, "/") || strings.Contains(filename, "..") {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid report name", nil)
	}

	path := filepath.Join(h.cfg.ExportPath, filename)
	if _, err := os.Stat(path); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Report not found", err)
	}
	return c.Download(path, filename)
}

func (h *ImportHandler) Sessions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	sessions, total, err := h.sessionRepo.List(userID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve sessions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	return utils.PaginatedResponseBuilder(c, "Sessions retrieved successfully", fiber.Map{
		"sessions": sessions,
	}, pagination)
}

func (h *ImportHandler) SessionDetail(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid session ID", err)
	}

	session, err := h.sessionRepo.FindByID(id)
	if err != nil || session.UserID != userID {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Session not found", err)
	}

	return utils.SuccessResponse(c, "Session retrieved successfully", session)
}

// Plan reports the caller's quota position for both record kinds.
func (h *ImportHandler) Plan(c *fiber.Ctx) error {
	user, err := h.currentUser(c)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusUnauthorized, "User not found", err)
	}

	status, err := h.importService.PlanStatus(c.Context(), accountID(user), user.Plan)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Failed to check plan status", err)
	}

	return utils.SuccessResponse(c, "Plan status retrieved", fiber.Map{
		"plan":       user.Plan,
		"properties": status[models.KindProperty],
		"wells":      status[models.KindWell],
	})
}

func (h *ImportHandler) closeSession(code string, userID int, status string, imported, failed int, errorMessage string) {
	if code == "" || h.sessionRepo == nil {
		return
	}
	session, err := h.sessionRepo.FindByCode(code)
	if err != nil || session.UserID != userID {
		return
	}
	_ = h.sessionRepo.UpdateResult(session.ID, status, imported, failed, errorMessage)
}

func (h *ImportHandler) enqueueWellRefresh(records []map[string]interface{}) {
	if h.asynqClient == nil {
		return
	}

	var apiNumbers []string
	for _, record := range records {
		if c := service.NormalizeWell(record, h.cfg.StatePrefix); c.APIValid {
			apiNumbers = append(apiNumbers, c.APINumber)
		}
	}
	if len(apiNumbers) == 0 {
		return
	}

	payload, err := json.Marshal(worker.RefreshPayload{APINumbers: apiNumbers})
	if err != nil {
		return
	}
	task := asynq.NewTask(worker.TypeWellRefresh, payload)
	_, _ = h.asynqClient.Enqueue(task)
}
