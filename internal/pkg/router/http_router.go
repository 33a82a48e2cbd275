package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/confcenter/confcenter/app/controllers"
	"github.com/confcenter/confcenter/app/repository"
	"github.com/confcenter/confcenter/app/services"
	"github.com/confcenter/confcenter/internal/pkg/cache"
	"github.com/confcenter/confcenter/internal/pkg/constants"
	"github.com/confcenter/confcenter/internal/pkg/database"
	"github.com/confcenter/confcenter/internal/pkg/env"
	"github.com/confcenter/confcenter/internal/pkg/middleware"
	"github.com/confcenter/confcenter/internal/pkg/oauth"
)

type HttpRouter struct {
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init oauth providers and state store
	oauth.Setup()

	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalFactory().GetRepositories()

	secret := []byte(env.GetEnv("APP_SECRET", ""))
	if len(secret) == 0 {
		panic("APP_SECRET must be set")
	}

	authService := services.NewAuthService(repos.User, secret)
	oauthService := services.NewOAuthService(repos.User, repos.OAuthAccount)
	configService := services.NewConfigService(repos.Config, cache.GetClient())

	RegisterRoutes(
		app,
		controllers.NewAuthController(authService),
		controllers.NewOAuthController(oauthService, authService),
		controllers.NewConfigController(configService),
		middleware.BearerAuth(authService),
	)
}

// RegisterRoutes mounts the API surface. Literal sub-paths under
// /configs must be registered before the parameterized /configs/:id
// route, or fiber treats "search" and "meta" as id values.
func RegisterRoutes(app *fiber.App, authCtl *controllers.AuthController, oauthCtl *controllers.OAuthController, configCtl *controllers.ConfigController, requireAuth fiber.Handler) {
	auth := app.Group(constants.AuthRoute, limiter.New(limiter.Config{Max: 30}))
	auth.Post("/register", authCtl.HandleRegister)
	auth.Post("/login", authCtl.HandleLogin)
	auth.Get("/me", requireAuth, authCtl.HandleMe)
	auth.Get("/user/:email", authCtl.HandleGetUserByEmail)
	auth.Get("/:provider/login", oauthCtl.HandleProviderLogin)
	auth.Get("/:provider/callback", oauthCtl.HandleProviderCallback)

	configs := app.Group(constants.ConfigsRoute, limiter.New(limiter.Config{Max: 120}), requireAuth)
	configs.Get("/search", configCtl.HandleSearch)
	configs.Get("/meta/environments", configCtl.HandleListEnvironments)
	configs.Get("/meta/services", configCtl.HandleListServices)
	configs.Post("/", configCtl.HandleCreate)
	configs.Get("/", configCtl.HandleList)
	configs.Get("/:id", configCtl.HandleGet)
	configs.Put("/:id", configCtl.HandleUpdate)
	configs.Delete("/:id", configCtl.HandleDelete)
}
