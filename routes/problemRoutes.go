package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"streetsense-be/controllers"
	"streetsense-be/middlewares"
)

// ProblemRoutes sets up the problem lifecycle routes. Reads are public;
// mutations require a session.
func ProblemRoutes(r *gin.Engine, pc *controllers.ProblemController, jwtSecret string, dailyLimit int) {
	auth := middlewares.AuthMiddleware(jwtSecret)

	problems := r.Group("/api/problems")
	{
		problems.GET("", pc.ListProblems)
		problems.GET("/mine", auth, pc.GetMyProblems)
		problems.GET("/:id", pc.GetProblem)
		problems.POST("", auth,
			middlewares.RateLimiter("problems", dailyLimit, 24*time.Hour, middlewares.UserKey),
			pc.CreateProblem)
		problems.PATCH("/:id/status", auth, pc.UpdateStatus)
		problems.POST("/:id/upvote", auth, pc.UpvoteProblem)
		problems.POST("/:id/updates", auth, pc.AddUpdate)
	}
}
