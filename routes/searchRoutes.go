package routes

import (
	"github.com/gin-gonic/gin"

	"streetsense-be/controllers"
)

// SearchRoutes sets up the pincode search route.
func SearchRoutes(r *gin.Engine, sc *controllers.SearchController) {
	search := r.Group("/api/search")
	{
		search.GET("/pincode/:pincode", sc.SearchByPincode)
	}
}
