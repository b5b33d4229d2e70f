package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	auth "github.com/CodeAndHammer/gamescope/internal/auth"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

const signUpPendingMessage = "Registration successful! Check your email to confirm your account."

var errorMessages = map[string]string{
	constants.ErrorCodeMissingFields:    "Please fill in all fields",
	constants.ErrorCodeInvalidEmail:     "Please enter a valid email address",
	constants.ErrorCodePasswordTooShort: "Password must be at least 6 characters long",
	constants.ErrorCodePasswordMismatch: "Passwords do not match",
	constants.ErrorCodeSignInFailed:     "Sign in failed",
	constants.ErrorCodeSignUpFailed:     "Sign up failed",
	constants.ErrorCodeOAuthFailed:      "Sign in with the provider failed, please try again",
	constants.ErrorCodeSignOutFailed:    "Sign out failed, please try again",
	constants.ErrorCodeSessionExpired:   "Your session has expired, please sign in again",
}

// errorMessage turns a validation code or provider error into display text.
func errorMessage(err error, fallback string) string {
	if msg, ok := errorMessages[err.Error()]; ok {
		return msg
	}
	var apiErr *auth.APIError
	if errors.As(err, &apiErr) {
		return auth.Message(err)
	}
	return errorMessages[fallback]
}

func renderLogin(c *gin.Context, status int, data gin.H) {
	data["title"] = "Sign in - " + appTitle
	data["csrf_token"] = csrfToken(c)
	c.HTML(status, "login.html", data)
}

// LoginPageHandler shows the sign-in and sign-up forms. A browser that is
// already signed in goes straight to the catalog.
func LoginPageHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(app, c)
	if _, err := app.Auth.CheckSession(ctx, id); err == nil {
		redirect(c, constants.RouteHome)
		return
	}
	data := gin.H{}
	if code := c.Query("error"); code != "" {
		data["error"] = errorMessages[code]
	}
	renderLogin(c, http.StatusOK, data)
}

func SignInHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	form := auth.SignInForm{Email: c.PostForm("email"), Password: c.PostForm("password")}
	if _, err := app.Auth.SignIn(ctx, sessionID(app, c), form); err != nil {
		renderLogin(c, http.StatusOK, gin.H{
			"error": errorMessage(err, constants.ErrorCodeSignInFailed),
			"email": form.Email,
		})
		return
	}
	redirect(c, constants.RouteHome)
}

func SignUpHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	form := auth.SignUpForm{
		Name:     c.PostForm("name"),
		Email:    c.PostForm("email"),
		Password: c.PostForm("password"),
		Confirm:  c.PostForm("confirm_password"),
	}
	signedIn, err := app.Auth.SignUp(ctx, sessionID(app, c), form)
	if err != nil {
		renderLogin(c, http.StatusOK, gin.H{"error": errorMessage(err, constants.ErrorCodeSignUpFailed)})
		return
	}
	if signedIn {
		redirect(c, constants.RouteHome)
		return
	}
	renderLogin(c, http.StatusOK, gin.H{"message": signUpPendingMessage, "email": form.Email})
}

// OAuthStartHandler sends the browser to the provider's consent page.
func OAuthStartHandler(app *App, c *gin.Context) {
	provider := c.Param("provider")
	if provider != constants.OAuthProviderGoogle {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unsupported provider"})
		return
	}
	redirectTo := app.Config.Auth.PublicURL + constants.RouteOAuthCallback
	target, err := app.Auth.BeginOAuth(sessionID(app, c), provider, redirectTo)
	if err != nil {
		util.LogErrorCtx(c.Request.Context(), "Failed to start OAuth flow: %v", err)
		redirect(c, constants.RouteLogin+"?error="+constants.ErrorCodeOAuthFailed)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func OAuthCallbackHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(app, c)
	code := c.Query("code")
	if code == "" {
		util.LogWarnCtx(ctx, "OAuth callback without code: %s", c.Query("error_description"))
		redirect(c, constants.RouteLogin+"?error="+constants.ErrorCodeOAuthFailed)
		return
	}
	if _, err := app.Auth.CompleteOAuth(ctx, id, code); err != nil {
		redirect(c, constants.RouteLogin+"?error="+constants.ErrorCodeOAuthFailed)
		return
	}
	redirect(c, constants.RouteHome)
}

// LogoutConfirmHandler asks before anything is sent to the provider.
func LogoutConfirmHandler(app *App, c *gin.Context) {
	c.HTML(http.StatusOK, "logout.html", gin.H{
		"title":      "Sign out - " + appTitle,
		"csrf_token": csrfToken(c),
	})
}

func LogoutHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	confirmed := c.PostForm("confirm") == "yes"
	err := app.Auth.SignOut(ctx, sessionID(app, c), confirmed)
	switch {
	case errors.Is(err, auth.ErrNotConfirmed):
		redirect(c, constants.RouteHome)
	case err != nil:
		c.HTML(http.StatusOK, "logout.html", gin.H{
			"title":      "Sign out - " + appTitle,
			"csrf_token": csrfToken(c),
			"error":      errorMessages[constants.ErrorCodeSignOutFailed],
		})
	default:
		redirect(c, constants.RouteLogin)
	}
}
