package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

type PaymentCreateRequest struct {
	OrderID int64 `json:"order_id"`
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/payments")
	g.Use(middleware.AuthJWT(cfg))
	g.POST("", h.create)

	// Webhookは署名で検証するのでJWTは掛けない
	e.POST("/webhooks/payment", h.webhook)
}

func (h *PaymentHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req PaymentCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.OrderID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid order_id"})
	}

	out, err := h.uc.CreatePayment(c.Request().Context(), req.OrderID, userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// ディスパッチに必要な最小限だけ先読みする。検証前なので信用はしない。
type webhookProbe struct {
	Created int64 `json:"created"`
	Data    struct {
		Object struct {
			Metadata struct {
				PaymentID string `json:"payment_id"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

func (h *PaymentHandler) webhook(c echo.Context) error {
	// 署名検証は生のボディそのままに対して行う
	rawBody, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	signature := c.Request().Header.Get("X-Webhook-Signature")
	if signature == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing signature"})
	}

	var probe webhookProbe
	if err := json.Unmarshal(rawBody, &probe); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	paymentID, err := strconv.ParseInt(probe.Data.Object.Metadata.PaymentID, 10, 64)
	if err != nil || paymentID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing payment_id metadata"})
	}

	paymentAt := time.Now()
	if probe.Created > 0 {
		paymentAt = time.Unix(probe.Created, 0)
	}

	out, err := h.uc.ProcessPayment(c.Request().Context(), paymentID, rawBody, signature, paymentAt)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
