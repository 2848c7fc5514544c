// Package api — минимальный HTTP-клиент админской утилиты к работающему серверу.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// CookieName cookie сессии, которую выставляет сервер при входе.
const CookieName = "auth_token"

// Do отправляет запрос. payload == nil — без тела. Непустой token передаётся как auth cookie.
func Do(ctx context.Context, method, url string, payload any, token string) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, data, nil
}

// PostJSON отправляет JSON POST.
func PostJSON(ctx context.Context, url string, payload any, token string) (*http.Response, []byte, error) {
	return Do(ctx, http.MethodPost, url, payload, token)
}

// GetJSON выполняет GET.
func GetJSON(ctx context.Context, url string, token string) (*http.Response, []byte, error) {
	return Do(ctx, http.MethodGet, url, nil, token)
}

// AuthToken извлекает auth cookie из ответа.
func AuthToken(resp *http.Response) (string, bool) {
	for _, c := range resp.Cookies() {
		if c.Name == CookieName && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
