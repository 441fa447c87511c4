package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fisionote/fisionote-backend/internal/middleware"
	"github.com/fisionote/fisionote-backend/internal/platform/apierr"
	"github.com/fisionote/fisionote-backend/internal/platform/logger"
	"github.com/fisionote/fisionote-backend/internal/platform/modelgen"
	"github.com/fisionote/fisionote-backend/internal/services"
	"github.com/fisionote/fisionote-backend/internal/types"
)

type NoteHandler struct {
	log      *logger.Logger
	noteSvc  services.NoteService
	auditSvc services.AuditService
}

func NewNoteHandler(log *logger.Logger, noteSvc services.NoteService, auditSvc services.AuditService) *NoteHandler {
	return &NoteHandler{
		log:      log.With("handler", "NoteHandler"),
		noteSvc:  noteSvc,
		auditSvc: auditSvc,
	}
}

// POST /api/notes/generate
// Run the synthesis pipeline for one visit and persist the draft.
func (h *NoteHandler) Generate(c *gin.Context) {
	var req services.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.noteSvc.Generate(c.Request.Context(), middleware.PractitionerID(c), req)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/notes/:id
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	note, err := h.noteSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// POST /api/notes/:id/validate
// Revalidate the stored note; safe to call on every keystroke save.
func (h *NoteHandler) Validate(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	res, err := h.noteSvc.Validate(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/notes/:id/save
// Patch draft fields and return the fresh validation outcome.
func (h *NoteHandler) Save(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	var patch services.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	res, err := h.noteSvc.SaveDraft(c.Request.Context(), id, patch)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/notes/:id/submit
// Move draft -> pending_signature.
func (h *NoteHandler) Submit(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	note, err := h.noteSvc.Submit(c.Request.Context(), id)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// POST /api/notes/:id/sign
// Run the compliance gate under the per-note lock. A blocked attempt
// returns 422 with every failed rule.
func (h *NoteHandler) Sign(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	res, err := h.noteSvc.Sign(c.Request.Context(), id, middleware.PractitionerID(c))
	if err != nil {
		h.respondErr(c, err)
		return
	}
	if res.Note.Status != types.NoteStatusSigned {
		c.JSON(http.StatusUnprocessableEntity, res)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/notes/:id/audit
// Full validation history, newest first.
func (h *NoteHandler) Audit(c *gin.Context) {
	id, ok := h.noteID(c)
	if !ok {
		return
	}
	history, err := h.auditSvc.History(c.Request.Context(), id, 100)
	if err != nil {
		h.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": history})
}

func (h *NoteHandler) noteID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *NoteHandler) respondErr(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Code})
		return
	}
	switch modelgen.Classify(err) {
	case modelgen.KindTimeout:
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "MODEL_TIMEOUT"})
		return
	case modelgen.KindNetwork, modelgen.KindModel:
		c.JSON(http.StatusBadGateway, gin.H{"error": "MODEL_UNAVAILABLE"})
		return
	}
	h.log.Error("unhandled request error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
