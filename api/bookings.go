package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkravets/ticketing-engine/internal/domain"
	"github.com/mkravets/ticketing-engine/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.reserve)
	router.GET("/:id", h.get)
	router.PUT("/:id/confirm", h.confirm)
	router.PUT("/:id/cancel", h.cancel)
	router.GET("/reference/:reference", h.getByReference)
	router.GET("/", h.list)
}

type reserveRequest struct {
	EventID int64 `json:"event_id" binding:"required"`
	UserID  int64 `json:"user_id" binding:"required"`
	Tickets int   `json:"tickets" binding:"required,gt=0"`
}

type confirmRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type bookingResponse struct {
	ID                 string  `json:"id"`
	EventID            int64   `json:"event_id"`
	UserID             int64   `json:"user_id"`
	Tickets            int     `json:"tickets"`
	Status             string  `json:"status"`
	TotalPrice         float64 `json:"total_price"`
	Reference          string  `json:"reference"`
	PaymentID          string  `json:"payment_id,omitempty"`
	CancellationReason string  `json:"cancellation_reason,omitempty"`
	CancellationDate   string  `json:"cancellation_date,omitempty"`
	ConfirmationDate   string  `json:"confirmation_date,omitempty"`
	ExpiresAt          string  `json:"expires_at,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

func (h *BookingHandler) reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		EventID: req.EventID,
		UserID:  req.UserID,
		Tickets: req.Tickets,
	})
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	confirmed, err := h.service.Confirm(c.Request.Context(), c.Param("id"), req.PaymentID)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) get(c *gin.Context) {
	found, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) getByReference(c *gin.Context) {
	found, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		writeBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) list(c *gin.Context) {
	var (
		bookings []domain.Booking
		err      error
	)
	switch {
	case c.Query("user_id") != "":
		var id int64
		id, err = strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		bookings, err = h.service.ListByUser(c.Request.Context(), id)
	case c.Query("event_id") != "":
		var id int64
		id, err = strconv.ParseInt(c.Query("event_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event_id"})
			return
		}
		bookings, err = h.service.ListByEvent(c.Request.Context(), id)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id or event_id query parameter is required"})
		return
	}
	if err != nil {
		writeBookingError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func writeBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound), errors.Is(err, domain.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoTicketsAvailable),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrBookingExpired),
		errors.Is(err, domain.ErrConcurrentModification):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTicketCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	resp := bookingResponse{
		ID:                 b.ID,
		EventID:            b.EventID,
		UserID:             b.UserID,
		Tickets:            b.NumberOfTickets,
		Status:             string(b.Status),
		TotalPrice:         b.TotalPrice,
		Reference:          b.BookingReference,
		PaymentID:          b.PaymentID,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
	}
	if b.ExpiresAt != nil {
		resp.ExpiresAt = b.ExpiresAt.Format(time.RFC3339)
	}
	if b.CancellationDate != nil {
		resp.CancellationDate = b.CancellationDate.Format(time.RFC3339)
	}
	if b.ConfirmationDate != nil {
		resp.ConfirmationDate = b.ConfirmationDate.Format(time.RFC3339)
	}
	return resp
}
