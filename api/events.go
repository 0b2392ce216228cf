package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/ticketing-engine/internal/domain"
	"github.com/mkravets/ticketing-engine/internal/service/events"
)

type EventHandler struct {
	service events.EventUseCase
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.remove)
}

type createEventRequest struct {
	Name         string    `json:"name" binding:"required"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date" binding:"required"`
	VenueID      int64     `json:"venue_id"`
	PerformerID  int64     `json:"performer_id"`
	TicketPrice  float64   `json:"ticket_price" binding:"required,gt=0"`
	TotalTickets int       `json:"total_tickets" binding:"required,gt=0"`
	Status       string    `json:"status"`
	Category     string    `json:"category"`
}

type updateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	VenueID     *int64     `json:"venue_id"`
	PerformerID *int64     `json:"performer_id"`
	TicketPrice *float64   `json:"ticket_price"`
	Status      *string    `json:"status"`
	Category    *string    `json:"category"`
}

type eventResponse struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	Date             string  `json:"date"`
	VenueID          int64   `json:"venue_id,omitempty"`
	PerformerID      int64   `json:"performer_id,omitempty"`
	TicketPrice      float64 `json:"ticket_price"`
	TotalTickets     int     `json:"total_tickets"`
	AvailableTickets int     `json:"available_tickets"`
	Status           string  `json:"status"`
	Category         string  `json:"category,omitempty"`
}

func (h *EventHandler) create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateEvent(c.Request.Context(), events.CreateEventInput{
		Name:         req.Name,
		Description:  req.Description,
		Date:         req.Date,
		VenueID:      req.VenueID,
		PerformerID:  req.PerformerID,
		TicketPrice:  req.TicketPrice,
		TotalTickets: req.TotalTickets,
		Status:       domain.EventStatus(req.Status),
		Category:     domain.EventCategory(req.Category),
	})
	if err != nil {
		writeEventError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEventResponse(created))
}

func (h *EventHandler) list(c *gin.Context) {
	all, err := h.service.ListEvents(c.Request.Context())
	if err != nil {
		writeEventError(c, err)
		return
	}

	out := make([]eventResponse, 0, len(all))
	for i := range all {
		out = append(out, toEventResponse(&all[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *EventHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	found, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeEventError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(found))
}

func (h *EventHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := events.UpdateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		VenueID:     req.VenueID,
		PerformerID: req.PerformerID,
		TicketPrice: req.TicketPrice,
	}
	if req.Status != nil {
		status := domain.EventStatus(*req.Status)
		input.Status = &status
	}
	if req.Category != nil {
		category := domain.EventCategory(*req.Category)
		input.Category = &category
	}

	updated, err := h.service.UpdateEvent(c.Request.Context(), id, input)
	if err != nil {
		writeEventError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEventResponse(updated))
}

func (h *EventHandler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), id); err != nil {
		writeEventError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTicketCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toEventResponse(e *domain.Event) eventResponse {
	return eventResponse{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Date:             e.Date.Format(time.RFC3339),
		VenueID:          e.VenueID,
		PerformerID:      e.PerformerID,
		TicketPrice:      e.TicketPrice,
		TotalTickets:     e.TotalTickets,
		AvailableTickets: e.AvailableTickets,
		Status:           string(e.Status),
		Category:         string(e.Category),
	}
}
