// Package platform предоставляет клиент API стриминговой платформы.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrProfileNotFound возвращается, если платформа не знает такого пользователя.
var ErrProfileNotFound = errors.New("platform profile not found")

// Client инкапсулирует HTTP-взаимодействие с API платформы.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type userResponse struct {
	User struct {
		ProfilePic string `json:"profile_pic"`
	} `json:"user"`
}

// NewClient создаёт HTTP-клиент платформы с повторами на сетевые ошибки и 429/5xx.
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 5 * time.Second
	rc.Logger = nil

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: rc.StandardClient(),
	}
}

// GetProfilePic запрашивает ссылку на аватар пользователя по его логину.
func (c *Client) GetProfilePic(ctx context.Context, login string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", fmt.Errorf("platform client not configured")
	}

	base := c.baseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	url := fmt.Sprintf("%s/api/users/%s", base, login)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", ErrProfileNotFound, login)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result userResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return result.User.ProfilePic, nil
}
