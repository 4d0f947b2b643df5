package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"skillswap-backend/internal/handlers"
	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	peopleHandler *handlers.PeopleHandler,
	chatHandler *handlers.ChatHandler,
	lessonHandler *handlers.LessonHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Get("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── People Routes ────
		r.Route("/people", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", peopleHandler.List)
			r.Get("/{email}", peopleHandler.Get)
			r.Post("/{email}/rate", peopleHandler.Rate)
		})

		// ──── Lesson Routes ────
		r.Route("/lessons", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/remaining", lessonHandler.Remaining)
			r.Get("/with/{email}", lessonHandler.Status)
			r.Get("/with/{email}/can-start", lessonHandler.CanStart)
			r.Post("/with/{email}/start", lessonHandler.Start)
		})

		// ──── Chat Routes ────
		r.Route("/chat", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/threads", chatHandler.Threads)
			r.Get("/unread", chatHandler.Unread)
			r.Get("/with/{email}", chatHandler.Messages)
			r.Post("/with/{email}", chatHandler.Send)
			r.Put("/with/{email}/read", chatHandler.MarkRead)
		})

		// ──── User & Settings Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Put("/password", userHandler.ChangePassword)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/plans", userHandler.Plans)
			r.Put("/plan", userHandler.ChangePlan)
		})

		// ──── Admin Routes ────
		r.Route("/admin", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Delete("/users", userHandler.AdminDeleteUser)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
