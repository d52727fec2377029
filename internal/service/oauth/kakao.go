package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/and07/mindsync/internal/apperrors"
)

const defaultKakaoAPIAddr = "https://kapi.kakao.com"

// Account is what the provider knows about an external login
type Account struct {
	Email string
}

// KakaoClient resolves a Kakao user id to the account email
// using the admin-key user API
type KakaoClient struct {
	APIAddr  string
	AdminKey string

	client *http.Client
}

func NewKakaoClient(apiAddr string, adminKey string) *KakaoClient {
	if apiAddr == "" {
		apiAddr = defaultKakaoAPIAddr
	}

	return &KakaoClient{
		APIAddr:  apiAddr,
		AdminKey: adminKey,
		client:   &http.Client{},
	}
}

type kakaoUserResponse struct {
	ID      int64 `json:"id"`
	Account struct {
		Email string `json:"email"`
	} `json:"kakao_account"`
}

// Account verifies the external account and returns its email
// Unverifiable accounts fail with apperrors.ErrExternalAccountNotFound
func (c *KakaoClient) Account(ctx context.Context, kakaoUserID string) (Account, error) {
	var account Account

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	form := url.Values{
		"target_id_type": {"user_id"},
		"target_id":      {kakaoUserID},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIAddr+"/v2/user/me", strings.NewReader(form.Encode()))
	if err != nil {
		return account, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "KakaoAK "+c.AdminKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return account, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return account, fmt.Errorf("kakao response code %d: %w", resp.StatusCode, apperrors.ErrExternalAccountNotFound)
	}

	var user kakaoUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return account, fmt.Errorf("failed to decode response: %w", err)
	}

	if user.Account.Email == "" {
		return account, fmt.Errorf("kakao account has no email: %w", apperrors.ErrExternalAccountNotFound)
	}

	return Account{Email: user.Account.Email}, nil
}
