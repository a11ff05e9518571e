package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"streetsense-be/controllers"
	"streetsense-be/middlewares"
)

// UserRoutes sets up registration, login and current-user routes.
func UserRoutes(r *gin.Engine, ac *controllers.AuthController, jwtSecret string, otpSendLimit int) {
	users := r.Group("/api/users")
	{
		users.POST("/register/send-otp",
			middlewares.RateLimiter("otp", otpSendLimit, 10*time.Minute, middlewares.IPKey),
			ac.SendOTP)
		users.POST("/register/verify", ac.VerifyRegistration)
		users.POST("/login", ac.Login)
		users.GET("/me", middlewares.AuthMiddleware(jwtSecret), ac.GetMe)
	}
}
