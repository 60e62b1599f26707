package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"app/internal/usecase"
)

// HTTPGateway は外部決済プロバイダのHTTPクライアント実装。
// Webhookの真正性は共有シークレットによる生ボディのHMAC-SHA256で検証する。
type HTTPGateway struct {
	baseURL string
	apiKey  string
	secret  []byte
	client  *http.Client
}

func NewHTTPGateway(baseURL string, apiKey string, webhookSecret string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		secret:  []byte(webhookSecret),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

type createIntentResponse struct {
	ID string `json:"id"`
}

func (g *HTTPGateway) CreatePaymentIntent(ctx context.Context, in usecase.PaymentIntentInput) (string, error) {
	body, err := json.Marshal(createIntentRequest{
		Amount:   in.Amount,
		Currency: in.Currency,
		Metadata: map[string]string{
			// Webhookから決済レコードへ戻る唯一の手がかり
			"payment_id": strconv.FormatInt(in.PaymentID, 10),
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Idempotency-Key", in.IdempotencyKey)

	res, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("payment gateway returned %d: %s", res.StatusCode, data)
	}

	var out createIntentResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("payment gateway returned no intent id")
	}
	return out.ID, nil
}

type webhookPayload struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyWebhook は署名を検証してからイベントをデコードする。
// 署名は生ボディそのままに対するHMAC-SHA256（hex）。
func (g *HTTPGateway) VerifyWebhook(rawBody []byte, signature string) (usecase.WebhookEvent, error) {
	given, err := hex.DecodeString(signature)
	if err != nil {
		return usecase.WebhookEvent{}, usecase.ErrSignatureMismatch
	}

	mac := hmac.New(sha256.New, g.secret)
	mac.Write(rawBody)
	if !hmac.Equal(mac.Sum(nil), given) {
		return usecase.WebhookEvent{}, usecase.ErrSignatureMismatch
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return usecase.WebhookEvent{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	return usecase.WebhookEvent{
		ID:       payload.ID,
		Type:     payload.Type,
		IntentID: payload.Data.Object.ID,
		Created:  time.Unix(payload.Created, 0),
		Metadata: payload.Data.Object.Metadata,
	}, nil
}

// Sign はボディに対する署名を計算する（テストや送信側の実装用）。
func Sign(secret []byte, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
