package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/app/services"
	"github.com/confcenter/confcenter/internal/pkg/usercontext"
)

// AuthController serves registration, login and user lookup endpoints
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the public user view; it never carries the password hash.
type userResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	AuthProviders models.AuthProviders `json:"auth_providers"`
	IsAdmin       bool                 `json:"is_admin"`
	CreatedAt     string               `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		AuthProviders: u.AuthProviders,
		IsAdmin:       u.IsAdmin,
		CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// HandleRegister registers a new user with email and password
func (ctl *AuthController) HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "unprocessable_entity",
			"message": "Invalid request body",
		})
	}

	userID, err := ctl.auth.Register(req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user_id": userID,
	})
}

// HandleLogin authenticates email/password credentials and returns a
// bearer token
func (ctl *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "invalid email or password",
		})
	}

	tok, user, err := ctl.auth.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Login successful",
		"access_token": tok,
		"token_type":   "bearer",
		"user":         toUserResponse(user),
	})
}

// HandleMe returns the user behind the presented bearer token
func (ctl *AuthController) HandleMe(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}

	user, err := ctl.auth.GetUserByEmail(userCtx.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toUserResponse(user))
}

// HandleGetUserByEmail returns the public view of a user by email
func (ctl *AuthController) HandleGetUserByEmail(c *fiber.Ctx) error {
	email := c.Params("email")

	user, err := ctl.auth.GetUserByEmail(email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toUserResponse(user))
}
