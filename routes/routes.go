package routes

import (
	"context"
	"errors"
	"time"

	"healthcare-booking/config"
	"healthcare-booking/constants"
	adminController "healthcare-booking/controllers/admin"
	apptController "healthcare-booking/controllers/appointment"
	authController "healthcare-booking/controllers/auth"
	blogController "healthcare-booking/controllers/blog"
	doctorController "healthcare-booking/controllers/doctor"
	reviewController "healthcare-booking/controllers/review"
	userController "healthcare-booking/controllers/user"
	"healthcare-booking/logger"
	"healthcare-booking/middleware"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/admin"
	"healthcare-booking/services/appointment"
	"healthcare-booking/services/auth"
	"healthcare-booking/services/blog"
	"healthcare-booking/services/doctor"
	"healthcare-booking/services/events"
	"healthcare-booking/services/notification"
	"healthcare-booking/services/ratelimit"
	"healthcare-booking/services/review"
	"healthcare-booking/services/security"
	"healthcare-booking/services/storage"
	"healthcare-booking/services/token"
	"healthcare-booking/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Integrations are the outside services chosen by main from the configuration.
type Integrations struct {
	Publisher events.Publisher
	Notifier  notification.Notifier
	Uploader  storage.Uploader
	Seo       blog.SeoHelper
	Limits    RateLimits
}

// RateLimits holds the per-IP quota of each throttled route.
type RateLimits struct {
	Login          *ratelimit.Limiter
	ForgotPassword *ratelimit.Limiter
	ResetPassword  *ratelimit.Limiter
}

// NewRateLimits builds every quota over one counter store.
func NewRateLimits(store ratelimit.CounterStore, cfg *config.Config) RateLimits {
	return RateLimits{
		Login:          ratelimit.NewLimiter(store, "login", cfg.RateLimitMaxAttempts, cfg.RateLimitWindow),
		ForgotPassword: ratelimit.NewLimiter(store, "forgot-password", cfg.ForgotPasswordMaxAttempts, cfg.ForgotPasswordWindow),
		ResetPassword:  ratelimit.NewLimiter(store, "reset-password", cfg.RateLimitMaxAttempts, cfg.RateLimitWindow),
	}
}

// Prune drops expired hits of every quota.
func (r RateLimits) Prune(ctx context.Context) error {
	var errs []error
	for _, l := range []*ratelimit.Limiter{r.Login, r.ForgotPassword, r.ResetPassword} {
		if err := l.Prune(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetupRoutes wires stores, services and controllers and registers every route. The returned
// AsyncLogger is already processing and must be closed on shutdown.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, in Integrations) *logger.AsyncLogger {
	asyncLogger := logger.NewAsyncLogger(db)
	go asyncLogger.ProcessLog()

	accountStore := accounts.NewGormStore(db)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	guard := security.NewGuard(security.NewGormStore(db), cfg.LockoutMaxAttempts, cfg.LockoutDuration)

	authSvc := auth.NewService(accountStore, guard, tokens, auth.BcryptHasher{}, in.Notifier)
	apptSvc := appointment.NewService(appointment.NewGormStore(db), in.Publisher, cfg.Timezone, cfg.MeetingBaseURL)
	reviewSvc := review.NewService(review.NewGormStore(db), accountStore)
	doctorSvc := doctor.NewService(accountStore, doctor.NewScheduleStore(db), cfg.Timezone)
	userSvc := user.NewService(accountStore, authSvc, user.NewActivityStore(db), in.Uploader)
	adminSvc := admin.NewService(accountStore)
	blogSvc := blog.NewService(blog.NewGormStore(db), in.Seo, in.Uploader)

	authHandler := authController.NewAuthController(authSvc, cfg.IsProduction())
	apptHandler := apptController.NewAppointmentController(apptSvc)
	doctorHandler := doctorController.NewDoctorController(doctorSvc, reviewSvc)
	reviewHandler := reviewController.NewReviewController(reviewSvc)
	userHandler := userController.NewUserController(userSvc)
	adminHandler := adminController.NewAdminController(adminSvc)
	blogHandler := blogController.NewBlogController(blogSvc)

	session := middleware.NewSession(tokens, accountStore)
	authenticated := session.Authenticate()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC()})
	})

	api := app.Group("/api", middleware.RequestLogger(asyncLogger))

	/*=============================================================================
	| Auth Routes
	===============================================================================*/
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", middleware.RateLimitFailures(in.Limits.Login), authHandler.Login)
	authGroup.Post("/forgot-password", middleware.RateLimit(in.Limits.ForgotPassword), authHandler.ForgotPassword)
	authGroup.Post("/reset-password", middleware.RateLimit(in.Limits.ResetPassword), authHandler.ResetPassword)
	authGroup.Post("/verify-email", authHandler.VerifyEmail)
	authGroup.Get("/me", authenticated, authHandler.Me)
	authGroup.Put("/change-password", authenticated, authHandler.ChangePassword)
	authGroup.Post("/logout", authenticated, authHandler.Logout)

	/*=============================================================================
	| User Routes
	===============================================================================*/
	users := api.Group("/users", authenticated)
	users.Put("/me", userHandler.UpdateProfile)
	users.Put("/me/profile-picture", userHandler.UploadProfilePicture)
	users.Get("/me/stats", userHandler.Stats)
	users.Delete("/me", userHandler.Delete)

	/*=============================================================================
	| Doctor Routes
	===============================================================================*/
	doctors := api.Group("/doctors")
	doctorOnly := []fiber.Handler{authenticated, middleware.Authorize(constants.RoleDoctor)}
	doctors.Put("/me", append(doctorOnly, doctorHandler.UpdateProfile)...)
	doctors.Put("/me/availability", append(doctorOnly, doctorHandler.UpdateAvailability)...)
	doctors.Get("/me/stats", append(doctorOnly, doctorHandler.Stats)...)
	doctors.Get("/", doctorHandler.Search)
	doctors.Get("/:id", doctorHandler.Get)
	doctors.Get("/:id/availability", doctorHandler.Availability)
	doctors.Get("/:id/reviews", doctorHandler.Reviews)

	/*=============================================================================
	| Appointment Routes
	===============================================================================*/
	appointments := api.Group("/appointments", authenticated)
	appointments.Post("/", middleware.Authorize(constants.RolePatient), apptHandler.Book)
	appointments.Get("/check-slot", apptHandler.CheckSlot)
	appointments.Get("/patient", middleware.Authorize(constants.RolePatient), apptHandler.ListForPatient)
	appointments.Get("/doctor", middleware.Authorize(constants.RoleDoctor), apptHandler.ListForDoctor)
	appointments.Get("/calendar/:doctorId", middleware.Authorize(constants.StaffRoles...), apptHandler.Calendar)
	appointments.Get("/:id", apptHandler.Get)
	appointments.Put("/:id/status", middleware.Authorize(constants.RoleDoctor), apptHandler.UpdateStatus)
	appointments.Put("/:id/cancel", middleware.Authorize(constants.RolePatient), apptHandler.Cancel)
	appointments.Put("/:id/reschedule", middleware.Authorize(constants.AllRoles...), apptHandler.Reschedule)

	/*=============================================================================
	| Review Routes
	===============================================================================*/
	api.Post("/reviews", authenticated, middleware.Authorize(constants.RolePatient), reviewHandler.Create)

	/*=============================================================================
	| Blog Routes
	===============================================================================*/
	blogs := api.Group("/blog")
	blogs.Get("/", blogHandler.List)
	blogs.Get("/search", blogHandler.Search)
	blogs.Get("/popular", blogHandler.Popular)
	blogs.Get("/:slug", session.Optional(), blogHandler.GetBySlug)
	blogs.Post("/:slug/like", blogHandler.Like)
	blogs.Post("/:slug/share", blogHandler.Share)

	authors := []fiber.Handler{authenticated, middleware.Authorize(constants.StaffRoles...)}
	blogs.Post("/", append(authors, blogHandler.Create)...)
	blogs.Put("/:id", append(authors, blogHandler.Update)...)
	blogs.Put("/:id/publish", append(authors, blogHandler.Publish)...)
	blogs.Put("/:id/archive", append(authors, blogHandler.Archive)...)
	blogs.Delete("/:id", append(authors, blogHandler.Delete)...)
	blogs.Post("/:id/featured-image", append(authors, blogHandler.UploadFeaturedImage)...)

	/*=============================================================================
	| Admin Routes
	===============================================================================*/
	adminGroup := api.Group("/admin", authenticated, middleware.Authorize(constants.RoleAdmin))
	adminGroup.Get("/users", adminHandler.ListUsers)
	adminGroup.Get("/users/:id", adminHandler.GetUser)
	adminGroup.Put("/users/:id/suspend", adminHandler.Suspend)
	adminGroup.Put("/users/:id/reactivate", adminHandler.Reactivate)
	adminGroup.Get("/stats", adminHandler.Stats)

	return asyncLogger
}
