package inspection

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct{ service Service }

func NewHandler(s Service) *Handler { return &Handler{s} }

const dateLayout = "2006-01-02"

type inspectionReq struct {
	LocationID     *uint   `json:"locationId"`
	InspectionDate string  `json:"inspectionDate"`
	Status         string  `json:"status"`
	Auditor1ID     *string `json:"auditor1Id"`
	Auditor2ID     *string `json:"auditor2Id"`
}

func (h *Handler) Create(c *gin.Context) {
	var req inspectionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var date time.Time
	if req.InspectionDate != "" {
		parsed, err := time.Parse(dateLayout, req.InspectionDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inspectionDate, use YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	created, err := h.service.Create(CreateInput{
		LocationID:     req.LocationID,
		InspectionDate: date,
		Status:         req.Status,
		Auditor1ID:     req.Auditor1ID,
		Auditor2ID:     req.Auditor2ID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": created.ID, "data": created})
}

func (h *Handler) List(c *gin.Context) {
	inspections, err := h.service.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inspections"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": inspections})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	i, err := h.service.Get(uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch inspection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": i})
}

type inspectionUpdateReq struct {
	LocationID     *uint   `json:"locationId"`
	InspectionDate *string `json:"inspectionDate"`
	Status         *string `json:"status"`
	Auditor1ID     *string `json:"auditor1Id"`
	Auditor2ID     *string `json:"auditor2Id"`
	ClearAuditor1  bool    `json:"clearAuditor1"`
	ClearAuditor2  bool    `json:"clearAuditor2"`
}

func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req inspectionUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := UpdateInput{
		LocationID:    req.LocationID,
		Status:        req.Status,
		Auditor1ID:    req.Auditor1ID,
		Auditor2ID:    req.Auditor2ID,
		ClearAuditor1: req.ClearAuditor1,
		ClearAuditor2: req.ClearAuditor2,
	}
	if req.InspectionDate != nil {
		parsed, err := time.Parse(dateLayout, *req.InspectionDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inspectionDate, use YYYY-MM-DD"})
			return
		}
		input.InspectionDate = &parsed
	}

	updated, err := h.service.Update(uint(id), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true, "data": updated})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.service.Delete(uint(id)); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete inspection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrLocationRequired), errors.Is(err, ErrDateRequired), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrLocationNotFound), errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAuditorNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save inspection"})
	}
}
