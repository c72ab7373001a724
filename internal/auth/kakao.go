package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hamdk/auth-service/internal/config"
	"github.com/hamdk/auth-service/internal/model"
)

// ProviderProfile is the verified external identity a delegated login
// resolves to. SubjectID is the provider's stable user id.
type ProviderProfile struct {
	Provider  string
	SubjectID string
	Email     string
	Nickname  string
}

// KakaoExchanger drives the Kakao OAuth code exchange: authorization URL
// construction, code-for-token exchange and profile fetch. Each network
// call is a single attempt with no retry; failures surface to the caller.
type KakaoExchanger struct {
	cfg    config.KakaoConfig
	client *http.Client
}

// NewKakaoExchanger builds an exchanger. The shared HTTP client carries a
// hard 10s timeout so a stalled provider cannot pin request workers.
func NewKakaoExchanger(cfg config.KakaoConfig) *KakaoExchanger {
	return &KakaoExchanger{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthorizationURL returns the URL the browser is redirected to for Kakao
// consent. No state parameter is sent, so the callback has no CSRF binding
// to the request that initiated it; this mirrors the deployed behavior.
func (k *KakaoExchanger) AuthorizationURL() string {
	params := url.Values{
		"client_id":     {k.cfg.ClientID},
		"redirect_uri":  {k.cfg.RedirectURI},
		"response_type": {"code"},
	}
	return k.cfg.AuthorizationURI + "?" + params.Encode()
}

// kakaoTokenResponse is the token endpoint's payload.
type kakaoTokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// kakaoUserResponse is the subset of the user-info payload we consume.
type kakaoUserResponse struct {
	ID           uint64 `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname string `json:"nickname"`
		} `json:"profile"`
	} `json:"kakao_account"`
	Properties struct {
		Nickname string `json:"nickname"`
	} `json:"properties"`
}

// ExchangeCode trades an authorization code for a Kakao access token.
func (k *KakaoExchanger) ExchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{
		"grant_type":   {"authorization_code"},
		"client_id":    {k.cfg.ClientID},
		"redirect_uri": {k.cfg.RedirectURI},
		"code":         {code},
	}
	if k.cfg.ClientSecret != "" {
		data.Set("client_secret", k.cfg.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.cfg.TokenURI, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	body, err := k.do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}

	var tr kakaoTokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return tr.AccessToken, nil
}

// FetchProfile loads the Kakao profile behind a provider access token.
func (k *KakaoExchanger) FetchProfile(ctx context.Context, accessToken string) (*ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.cfg.UserInfoURI, nil)
	if err != nil {
		return nil, fmt.Errorf("create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	body, err := k.do(req)
	if err != nil {
		return nil, fmt.Errorf("user info fetch: %w", err)
	}

	var ur kakaoUserResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return nil, fmt.Errorf("parse user info response: %w", err)
	}
	if ur.ID == 0 {
		return nil, fmt.Errorf("missing id in user info response")
	}

	nickname := ur.KakaoAccount.Profile.Nickname
	if nickname == "" {
		nickname = ur.Properties.Nickname
	}
	return &ProviderProfile{
		Provider:  model.ProviderKakao,
		SubjectID: strconv.FormatUint(ur.ID, 10),
		Email:     ur.KakaoAccount.Email,
		Nickname:  nickname,
	}, nil
}

func (k *KakaoExchanger) do(req *http.Request) ([]byte, error) {
	resp, err := k.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// compile-time interface check
var _ ProviderExchanger = (*KakaoExchanger)(nil)
