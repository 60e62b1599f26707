package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 業務エラー（4xx相当）。ストレージ起因のエラーはここでは包まず、
// そのまま上に返して境界で500にする。
var (
	ErrEmptyCart               = NewHTTPError(http.StatusBadRequest, "cart empty")
	ErrInsufficientStock       = NewHTTPError(http.StatusConflict, "insufficient stock")
	ErrProductNotFound         = NewHTTPError(http.StatusBadRequest, "product not found")
	ErrOrderNotFound           = NewHTTPError(http.StatusNotFound, "order not found")
	ErrOrderNotOwned           = NewHTTPError(http.StatusForbidden, "forbidden")
	ErrOrderAlreadySettled     = NewHTTPError(http.StatusConflict, "order already settled")
	ErrPaymentNotFound         = NewHTTPError(http.StatusNotFound, "payment not found")
	ErrPaymentAlreadySettled   = NewHTTPError(http.StatusConflict, "payment already settled")
	ErrWebhookSignatureInvalid = NewHTTPError(http.StatusBadRequest, "invalid webhook signature")
	ErrUnhandledEventType      = NewHTTPError(http.StatusBadRequest, "unhandled event type")
	ErrGatewayUnavailable      = NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
)
