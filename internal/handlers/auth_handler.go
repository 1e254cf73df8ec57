package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"fittrack/internal/events"
	"fittrack/internal/middleware"
	"fittrack/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/valyala/fasthttp"
)

// keepAliveInterval is how often an idle event stream sends a comment line.
const keepAliveInterval = 15 * time.Second

// AuthHandlerConfig holds transport options for the auth routes.
type AuthHandlerConfig struct {
	// CookieSecure marks the session cookie Secure. Enable behind HTTPS.
	CookieSecure bool
	// LoginRateLimit is the number of sign-in/sign-up attempts allowed per
	// client IP per minute. Zero disables the limit.
	LoginRateLimit int
}

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	cfg         AuthHandlerConfig

	streamsDone chan struct{}
	closeOnce   sync.Once
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    services.NewValidator(),
		cfg:         cfg,
		streamsDone: make(chan struct{}),
	}
}

// CloseStreams ends every open event stream and refuses new ones. Call it
// before shutting the server down, since open streams keep their connections busy.
func (h *AuthHandler) CloseStreams() {
	h.closeOnce.Do(func() { close(h.streamsDone) })
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")

	credentials := []fiber.Handler{}
	if h.cfg.LoginRateLimit > 0 {
		credentials = append(credentials, limiter.New(limiter.Config{
			Max:        h.cfg.LoginRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Too many attempts, try again later",
				})
			},
		}))
	}
	authRoutes.Post("/signup", append(credentials, h.HandleSignUp)...)
	authRoutes.Post("/login", append(credentials, h.HandleLogin)...)

	required := middleware.AuthRequired(h.authService)
	authRoutes.Post("/logout", required, h.HandleLogout)
	authRoutes.Get("/session", required, h.HandleSession)
	authRoutes.Get("/events", required, h.HandleEvents)
}

// CredentialsRequest is the body of sign-up and sign-in.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) parseCredentials(c *fiber.Ctx) (*CredentialsRequest, error) {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		errorMessages := make(map[string]string)
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
		}
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email and password required",
			"errors":  errorMessages,
		})
	}
	return &req, nil
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, session *services.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// HandleSignUp registers a user and signs them in.
func (h *AuthHandler) HandleSignUp(c *fiber.Ctx) error {
	req, err := h.parseCredentials(c)
	if req == nil {
		return err
	}

	session, err := h.authService.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, "register user", err)
	}

	h.setSessionCookie(c, session)
	return c.Status(fiber.StatusCreated).JSON(session)
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	req, err := h.parseCredentials(c)
	if req == nil {
		return err
	}

	session, err := h.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		log.Printf("Error during login for user %s: %v", req.Email, err)
		return respondError(c, "sign in", err)
	}

	h.setSessionCookie(c, session)
	return c.JSON(session)
}

// HandleLogout revokes the current token and clears the cookie.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token, _ := c.Locals(middleware.LocalToken).(string)
	if err := h.authService.SignOut(c.UserContext(), token); err != nil {
		return respondError(c, "sign out", err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message":  "Signed out",
		"redirect": middleware.LoginPath,
	})
}

// HandleSession returns the signed-in user.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	session, err := h.authService.CurrentSession(c.UserContext(), middleware.TokenFromRequest(c))
	if err != nil {
		return respondError(c, "retrieve session", err)
	}
	return c.JSON(session)
}

// HandleEvents streams the caller's session events as server-sent events.
// The stream ends after a signed_out event for the caller, or when
// CloseStreams is called.
func (h *AuthHandler) HandleEvents(c *fiber.Ctx) error {
	select {
	case <-h.streamsDone:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Server is shutting down",
		})
	default:
	}

	userID := middleware.UserID(c)
	sessions := h.authService.Sessions()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// Subscribed here so nothing is left behind if the writer never runs.
		feed := make(chan services.SessionEvent, 16)
		sub := sessions.Subscribe(func(ev services.SessionEvent) {
			if ev.UserID != userID {
				return
			}
			select {
			case feed <- ev:
			default:
				log.Printf("Warning: dropping %s event for slow stream of user %s", ev.Type, userID)
			}
		})
		defer sub.Unsubscribe()

		fmt.Fprint(w, ": connected\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-h.streamsDone:
				fmt.Fprint(w, "event: shutdown\ndata: {}\n\n")
				_ = w.Flush()
				return
			case ev := <-feed:
				data, err := json.Marshal(ev)
				if err != nil {
					log.Printf("Error encoding session event: %v", err)
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
				if err := w.Flush(); err != nil {
					return
				}
				if ev.Type == events.SignedOut {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}
