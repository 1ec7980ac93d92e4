package http

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"postpilot/domain/model"
	"postpilot/domain/repository"
	"postpilot/infrastructure/clients/meta"
	"postpilot/infrastructure/clients/tiktok"
	"postpilot/infrastructure/logger"
	"postpilot/infrastructure/security"

	"github.com/gin-gonic/gin"
)

type IOAuthHandler interface {
	MetaAuthURL(ctx *gin.Context)
	MetaCallback(ctx *gin.Context)
	TikTokAuthURL(ctx *gin.Context)
	TikTokCallback(ctx *gin.Context)
	ConnectWhatsApp(ctx *gin.Context)
}

// oauthHandler runs the platform connect flows and stores the resulting
// credentials encrypted.
type oauthHandler struct {
	metaClient   *meta.Client
	tiktokClient *tiktok.Client
	creds        repository.IPlatformCredential
	cipher       *security.Cipher

	stateMu sync.Mutex
	states  map[string]oauthState
}

type oauthState struct {
	userID int64
	expiry time.Time
}

func NewOAuthHandler(metaClient *meta.Client, tiktokClient *tiktok.Client, creds repository.IPlatformCredential, cipher *security.Cipher) IOAuthHandler {
	return &oauthHandler{
		metaClient:   metaClient,
		tiktokClient: tiktokClient,
		creds:        creds,
		cipher:       cipher,
		states:       map[string]oauthState{},
	}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// issueState binds a CSRF state to the requesting user for 10 minutes.
// Expired states from abandoned connect attempts are pruned here so the map
// stays bounded.
func (h *oauthHandler) issueState(userID int64) string {
	state := randomState()
	now := time.Now()
	h.stateMu.Lock()
	for s, entry := range h.states {
		if now.After(entry.expiry) {
			delete(h.states, s)
		}
	}
	h.states[state] = oauthState{userID: userID, expiry: now.Add(10 * time.Minute)}
	h.stateMu.Unlock()
	return state
}

func (h *oauthHandler) consumeState(state string) (int64, bool) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	s, ok := h.states[state]
	if !ok {
		return 0, false
	}
	delete(h.states, state)
	if time.Now().After(s.expiry) {
		return 0, false
	}
	return s.userID, true
}

func (h *oauthHandler) MetaAuthURL(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	if h.metaClient == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "meta oauth not configured"})
		return
	}
	state := h.issueState(userID)
	ctx.JSON(http.StatusOK, gin.H{"auth_url": h.metaClient.OAuthConfig().AuthCodeURL(state), "state": state})
}

// MetaCallback exchanges the code, upgrades to a long-lived token, discovers
// the managed pages, and stores a Facebook credential for the first page plus
// an Instagram credential when a business account is linked to it.
func (h *oauthHandler) MetaCallback(ctx *gin.Context) {
	lg := logger.GetLogger()
	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	userID, ok := h.consumeState(ctx.Query("state"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}

	token, err := h.metaClient.OAuthConfig().Exchange(ctx.Request.Context(), code)
	if err != nil {
		lg.WithField("error", err).Error("Meta code exchange failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}
	longLived, err := h.metaClient.Refresher().Refresh(ctx.Request.Context(), token.AccessToken, "")
	if err != nil {
		lg.WithField("error", err).Error("Meta long-lived exchange failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "long_lived_exchange_failed"})
		return
	}
	pages, err := h.metaClient.Pages(ctx.Request.Context(), longLived.AccessToken)
	if err != nil {
		lg.WithField("error", err).Error("Meta pages fetch failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "pages_fetch_failed"})
		return
	}
	if len(pages) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "no_pages_available"})
		return
	}
	// Auto-select the first page; a selection UI can come later.
	page := pages[0]

	expiresAt := longLived.ExpiresAt
	if err := h.upsert(ctx, userID, model.PlatformFacebook, page.Name, page.ID, page.AccessToken, "", &expiresAt); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store_credential_failed"})
		return
	}
	connected := gin.H{"connected": true, "page_id": page.ID, "page_name": page.Name}
	if page.Instagram != nil {
		// Instagram publishing uses the page token against the linked business account.
		if err := h.upsert(ctx, userID, model.PlatformInstagram, page.Instagram.Username, page.Instagram.ID, page.AccessToken, "", &expiresAt); err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store_credential_failed"})
			return
		}
		connected["instagram_account"] = page.Instagram.Username
	}
	ctx.JSON(http.StatusOK, connected)
}

func (h *oauthHandler) TikTokAuthURL(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	if h.tiktokClient == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "tiktok oauth not configured"})
		return
	}
	state := h.issueState(userID)
	ctx.JSON(http.StatusOK, gin.H{"auth_url": h.tiktokClient.AuthorizationURL(state), "state": state})
}

func (h *oauthHandler) TikTokCallback(ctx *gin.Context) {
	code := ctx.Query("code")
	if code == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	userID, ok := h.consumeState(ctx.Query("state"))
	if !ok {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid_state"})
		return
	}

	token, err := h.tiktokClient.ExchangeCode(ctx.Request.Context(), code)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("TikTok code exchange failed")
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "token_exchange_failed"})
		return
	}
	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second).UTC()
	if err := h.upsert(ctx, userID, model.PlatformTikTok, token.OpenID, token.OpenID, token.AccessToken, token.RefreshToken, &expiresAt); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store_credential_failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"connected": true, "open_id": token.OpenID})
}

type whatsappConnectRequest struct {
	AccessToken   string `json:"access_token" binding:"required"`
	PhoneNumberID string `json:"phone_number_id" binding:"required"`
	DisplayName   string `json:"display_name"`
}

// ConnectWhatsApp stores a permanent Cloud API token. WhatsApp has no user
// OAuth dance; the token comes from the Meta business dashboard.
func (h *oauthHandler) ConnectWhatsApp(ctx *gin.Context) {
	userID, ok := authUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: missing user_id"})
		return
	}
	var req whatsappConnectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	name := req.DisplayName
	if name == "" {
		name = "WhatsApp Business"
	}
	if err := h.upsert(ctx, userID, model.PlatformWhatsApp, name, req.PhoneNumberID, req.AccessToken, "", nil); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "store_credential_failed"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"connected": true, "phone_number_id": req.PhoneNumberID})
}

func (h *oauthHandler) upsert(ctx *gin.Context, userID int64, platform model.Platform, accountName, accountID, accessToken, refreshToken string, expiresAt *time.Time) error {
	encAccess, err := h.cipher.Encrypt(accessToken)
	if err != nil {
		return err
	}
	var encRefresh *string
	if refreshToken != "" {
		enc, err := h.cipher.Encrypt(refreshToken)
		if err != nil {
			return err
		}
		encRefresh = &enc
	}
	cred := &model.PlatformCredential{
		UserID:       userID,
		Platform:     platform,
		AccountName:  accountName,
		AccountID:    accountID,
		AccessToken:  encAccess,
		RefreshToken: encRefresh,
		ExpiresAt:    expiresAt,
		IsActive:     true,
	}
	if err := h.creds.Upsert(ctx.Request.Context(), cred); err != nil {
		logger.GetLogger().
			WithField("user_id", userID).
			WithField("platform", platform).
			WithField("error", err).
			Error("Failed to store credential")
		return err
	}
	return nil
}
