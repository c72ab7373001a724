package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamdk/auth-service/internal/auth"
	"github.com/hamdk/auth-service/internal/config"
	"github.com/hamdk/auth-service/internal/model"
)

func kakaoConfig(tokenURL, userInfoURL string) config.KakaoConfig {
	return config.KakaoConfig{
		ClientID:         "test-client-id",
		ClientSecret:     "test-client-secret",
		RedirectURI:      "http://localhost:8070/oauth/kakao/callback",
		AuthorizationURI: "https://kauth.kakao.com/oauth/authorize",
		TokenURI:         tokenURL,
		UserInfoURI:      userInfoURL,
	}
}

func TestKakaoExchanger_AuthorizationURL(t *testing.T) {
	k := auth.NewKakaoExchanger(kakaoConfig("", ""))

	u := k.AuthorizationURL()
	assert.True(t, strings.HasPrefix(u, "https://kauth.kakao.com/oauth/authorize?"))
	assert.Contains(t, u, "client_id=test-client-id")
	assert.Contains(t, u, "response_type=code")
	assert.Contains(t, u, "redirect_uri=")
	// The deployed flow sends no CSRF state parameter.
	assert.NotContains(t, u, "state=")
}

func TestKakaoExchanger_ExchangeCode(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "test-client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "test-client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "provider-token",
			"token_type":   "bearer",
			"expires_in":   21599,
		})
	}))
	defer tokenServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig(tokenServer.URL, ""))

	token, err := k.ExchangeCode(context.Background(), "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "provider-token", token)
}

func TestKakaoExchanger_ExchangeCodeRejected(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "invalid_grant"})
	}))
	defer tokenServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig(tokenServer.URL, ""))

	_, err := k.ExchangeCode(context.Background(), "already-used-code")
	assert.Error(t, err)
}

func TestKakaoExchanger_ExchangeCodeEmptyToken(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"token_type": "bearer"})
	}))
	defer tokenServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig(tokenServer.URL, ""))

	_, err := k.ExchangeCode(context.Background(), "auth-code")
	assert.Error(t, err)
}

func TestKakaoExchanger_FetchProfile(t *testing.T) {
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer provider-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": 9001,
			"kakao_account": map[string]any{
				"email": "Kakao-User@Example.com",
				"profile": map[string]any{
					"nickname": "Kakao User",
				},
			},
		})
	}))
	defer userInfoServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig("", userInfoServer.URL))

	profile, err := k.FetchProfile(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderKakao, profile.Provider)
	assert.Equal(t, "9001", profile.SubjectID)
	assert.Equal(t, "Kakao-User@Example.com", profile.Email)
	assert.Equal(t, "Kakao User", profile.Nickname)
}

func TestKakaoExchanger_FetchProfileNicknameFallback(t *testing.T) {
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": 9001,
			"kakao_account": map[string]any{
				"email": "kakao-user@example.com",
			},
			"properties": map[string]any{
				"nickname": "Props Nick",
			},
		})
	}))
	defer userInfoServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig("", userInfoServer.URL))

	profile, err := k.FetchProfile(context.Background(), "provider-token")
	require.NoError(t, err)
	assert.Equal(t, "Props Nick", profile.Nickname)
}

func TestKakaoExchanger_FetchProfileMissingID(t *testing.T) {
	userInfoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"kakao_account": map[string]any{}})
	}))
	defer userInfoServer.Close()

	k := auth.NewKakaoExchanger(kakaoConfig("", userInfoServer.URL))

	_, err := k.FetchProfile(context.Background(), "provider-token")
	assert.Error(t, err)
}
