package controllers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/confcenter/confcenter/app/services"
	"github.com/confcenter/confcenter/internal/pkg/env"
)

// OAuthController mediates delegated login via external identity providers
type OAuthController struct {
	oauth *services.OAuthService
	auth  *services.AuthService
}

func NewOAuthController(oauth *services.OAuthService, auth *services.AuthService) *OAuthController {
	return &OAuthController{oauth: oauth, auth: auth}
}

// HandleProviderLogin returns the provider authorization URL. The
// anti-forgery state is created and stored by the session store; the
// callback validates it.
func (ctl *OAuthController) HandleProviderLogin(c *fiber.Ctx) error {
	authURL, err := gothfiber.GetAuthURL(c)
	if err != nil {
		return respondError(c, services.OAuthExchangeError(err))
	}

	return c.JSON(fiber.Map{"auth_url": authURL})
}

// HandleProviderCallback completes the provider flow: state validation,
// code-for-token exchange and profile fetch, then local account linking.
// The browser is redirected back to the frontend with either a session
// token or an error marker.
func (ctl *OAuthController) HandleProviderCallback(c *fiber.Ctx) error {
	gothUser, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Redirect(callbackRedirect(url.Values{"error": {"oauth_failed"}}), fiber.StatusSeeOther)
	}

	user, err := ctl.oauth.LinkOrCreateUser(profileFromGothUser(gothUser))
	if err != nil {
		return c.Redirect(callbackRedirect(url.Values{"error": {"oauth_failed"}}), fiber.StatusSeeOther)
	}

	tok, err := ctl.auth.IssueToken(user.ID)
	if err != nil {
		return c.Redirect(callbackRedirect(url.Values{"error": {"oauth_failed"}}), fiber.StatusSeeOther)
	}

	return c.Redirect(callbackRedirect(url.Values{
		"token": {tok},
		"email": {user.Email},
	}), fiber.StatusSeeOther)
}

// profileFromGothUser lifts the provider-agnostic goth user into the
// service profile. Google reports email ownership in the raw payload.
func profileFromGothUser(u goth.User) services.ExternalProfile {
	verified := false
	if v, ok := u.RawData["email_verified"]; ok {
		if b, ok := v.(bool); ok {
			verified = b
		}
	}

	return services.ExternalProfile{
		Provider:       u.Provider,
		ProviderUserID: u.UserID,
		Email:          u.Email,
		Name:           u.Name,
		EmailVerified:  verified,
	}
}

func callbackRedirect(params url.Values) string {
	return env.GetEnv("FRONTEND_URL", "/") + "?" + params.Encode()
}
