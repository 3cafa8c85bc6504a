package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/remixhub/registry/internal/api/rest/dto"
	"github.com/remixhub/registry/internal/designs"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/publishing"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/types"
)

const (
	SERVICE_NAME = "remixhub-registry"

	DEFAULT_MAX_UPLOAD_SIZE = 50 << 20
	HEALTH_CHECK_TIMEOUT    = 2 * time.Second
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler,DatabasePinger=MockDatabasePinger
type Handler interface {
	// PinDesign pins an uploaded design file and its metadata document
	// POST /api/v1/pins (multipart: title, figmaUrl, previewUrl, file)
	PinDesign(c *gin.Context)

	// PublishDesign registers a pinned metadata document as an original IP asset
	// POST /api/v1/designs
	PublishDesign(c *gin.Context)

	// ListDesigns lists originals registered on the RemixHub contract
	// GET /api/v1/designs?owner=<address>&limit=<limit>&offset=<offset>
	ListDesigns(c *gin.Context)

	// RemixDesign registers a remix as a derivative of its parent
	// POST /api/v1/remixes
	RemixDesign(c *gin.Context)

	// AnchorRegistration merges fields into the registration cache
	// POST /api/v1/registrations/anchor
	AnchorRegistration(c *gin.Context)

	// BatchLookup maps cid hashes to cached registrations
	// POST /api/v1/registrations/lookup/batch
	BatchLookup(c *gin.Context)

	// GetRegistration returns the cached registration of a cid
	// GET /api/v1/registrations/:cid
	GetRegistration(c *gin.Context)

	// GetCIDHash returns the content hash of a cid
	// GET /api/v1/hash/:cid
	GetCIDHash(c *gin.Context)

	// GetIPAsset checks whether an ip id is registered on the ledger
	// GET /api/v1/ip-assets/:ipId
	GetIPAsset(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// DatabasePinger checks database reachability for the health endpoint
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// Config holds handler limits
type Config struct {
	MaxUploadSize int64
}

// Services are the collaborators behind the handlers
type Services struct {
	Publishing    publishing.Service
	Designs       designs.Service
	Registrations registration.Service
	Verifier      registration.ChainVerifier
	Database      DatabasePinger
}

// handler implements the Handler interface
type handler struct {
	cfg      Config
	services Services
}

// NewHandler creates a new REST API handler
func NewHandler(cfg Config, services Services) Handler {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DEFAULT_MAX_UPLOAD_SIZE
	}
	return &handler{
		cfg:      cfg,
		services: services,
	}
}

// PinDesign pins the optional design file and the metadata document built from the form fields
func (h *handler) PinDesign(c *gin.Context) {
	req := publishing.PinRequest{
		Title:      strings.TrimSpace(c.PostForm("title")),
		FigmaURL:   types.TrimmedPtr(formValue(c, "figmaUrl")),
		PreviewURL: types.TrimmedPtr(formValue(c, "previewUrl")),
	}
	if req.Title == "" {
		respondValidationError(c, "title is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// metadata only
	case err != nil:
		respondBadRequest(c, "Invalid multipart form", err.Error())
		return
	default:
		if fileHeader.Size > h.cfg.MaxUploadSize {
			respondValidationError(c, fmt.Sprintf("file exceeds %d bytes", h.cfg.MaxUploadSize))
			return
		}
		content, err := readFormFile(fileHeader)
		if err != nil {
			respondBadRequest(c, "Failed to read uploaded file", err.Error())
			return
		}
		req.FileName = fileHeader.Filename
		req.File = content
	}

	result, err := h.services.Publishing.Pin(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Failed to pin design")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// PublishDesign registers the document on the ledger and anchors the result
func (h *handler) PublishDesign(c *gin.Context) {
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.services.Publishing.Publish(c.Request.Context(), publishing.PublishRequest{
		CID:   req.CID,
		Title: req.Title,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to publish design")
		return
	}

	if len(result.Warnings) > 0 {
		logger.WarnCtx(c.Request.Context(), "Design published with persistence warnings",
			zap.String("cid", result.CID),
			zap.String("ip_id", result.IPID),
			zap.Strings("warnings", result.Warnings),
		)
	}

	c.JSON(http.StatusCreated, result)
}

// ListDesigns returns a page of registered originals, newest first
func (h *handler) ListDesigns(c *gin.Context) {
	queryParams, err := ParseListDesignsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.services.Designs.List(c.Request.Context(), designs.ListRequest{
		Owner:  queryParams.Owner,
		Limit:  queryParams.Limit,
		Offset: queryParams.Offset,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to list designs")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemixDesign resolves the parent and registers the remix as its derivative
func (h *handler) RemixDesign(c *gin.Context) {
	var req dto.RemixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.services.Publishing.Remix(c.Request.Context(), publishing.RemixRequest{
		OriginalCID: req.OriginalCID,
		RemixCID:    req.RemixCID,
		Title:       req.Title,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to register remix")
		return
	}

	c.JSON(http.StatusCreated, result)
}

// AnchorRegistration merges the supplied fields into the registration cache
func (h *handler) AnchorRegistration(c *gin.Context) {
	var req dto.AnchorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	record, err := h.services.Registrations.Anchor(c.Request.Context(), registration.AnchorRequest{
		CID:          req.CID,
		IPID:         req.IPID,
		CIDHash:      req.CIDHash,
		TxHash:       req.TxHash,
		AnchorTxHash: req.AnchorTxHash,
		Title:        req.Title,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to anchor registration")
		return
	}

	c.JSON(http.StatusOK, dto.AnchorResponse{Success: true, Record: record})
}

// BatchLookup resolves up to the configured number of cid hashes in one query
func (h *handler) BatchLookup(c *gin.Context) {
	var req dto.BatchLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	entries, err := h.services.Registrations.BatchLookup(c.Request.Context(), req.CIDHashes)
	if err != nil {
		respondServiceError(c, err, "Failed to look up registrations")
		return
	}

	c.JSON(http.StatusOK, dto.BatchLookupResponse{Success: true, Map: entries})
}

// GetRegistration returns the cached registration of a cid
func (h *handler) GetRegistration(c *gin.Context) {
	cid := strings.TrimSpace(c.Param("cid"))
	if cid == "" {
		respondBadRequest(c, "CID is required")
		return
	}

	record, err := h.services.Registrations.GetByCID(c.Request.Context(), cid)
	if err != nil {
		respondServiceError(c, err, "Failed to get registration")
		return
	}
	if record == nil {
		respondNotFound(c, "Registration not found")
		return
	}

	c.JSON(http.StatusOK, dto.RegistrationResponse{Success: true, Record: record})
}

// GetCIDHash returns the content hash of a cid
func (h *handler) GetCIDHash(c *gin.Context) {
	cid := strings.TrimSpace(c.Param("cid"))
	if cid == "" {
		respondBadRequest(c, "CID is required")
		return
	}

	c.JSON(http.StatusOK, dto.HashResponse{CID: cid, CIDHash: domain.CIDHash(cid)})
}

// GetIPAsset asks the ledger's IP asset registry whether ipId is registered
func (h *handler) GetIPAsset(c *gin.Context) {
	ipID := strings.TrimSpace(c.Param("ipId"))
	if !domain.IsValidIPID(ipID) {
		respondValidationError(c, fmt.Sprintf("ipId %q is not a valid address", ipID))
		return
	}

	registered, err := h.services.Verifier.IsRegistered(c.Request.Context(), ipID)
	if err != nil {
		respondServiceError(c, registration.NewUpstreamError(registration.ServiceLedger, err), "Failed to check ip asset")
		return
	}

	c.JSON(http.StatusOK, dto.IPAssetResponse{IPID: ipID, Registered: registered})
}

// HealthCheck returns the health status of the API and its database
func (h *handler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HEALTH_CHECK_TIMEOUT)
	defer cancel()

	if err := h.services.Database.Ping(ctx); err != nil {
		logger.WarnCtx(ctx, "Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "degraded",
			Service:  SERVICE_NAME,
			Database: "unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:   "ok",
		Service:  SERVICE_NAME,
		Database: "ok",
	})
}

// formValue returns a pointer to the form field, or nil when the field is absent
func formValue(c *gin.Context, key string) *string {
	value, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &value
}

func readFormFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return io.ReadAll(f)
}
