package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every route and middleware installed.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), AccessLog(), Recovery(), CORS(d.CORSOrigins))

	stats := &statsHandler{stats: d.Stats}
	games := &gameHandler{games: d.Games}
	players := &playerHandler{players: d.Players}
	auth := &authHandler{auth: d.Auth}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Poker tracker API"})
	})
	router.GET("/health", healthHandler(d.Health))

	api := router.Group("/api")
	{
		api.POST("/auth/login", auth.Login)

		api.GET("/stats", stats.PlayerStats)

		api.GET("/games", games.List)
		api.GET("/games/:id", games.Get)

		api.GET("/players", players.List)
		api.GET("/players/:id", players.Get)

		host := api.Group("")
		host.Use(RequireHost(d.Auth))
		{
			host.POST("/games", games.Create)
			host.PUT("/games/:id", games.Update)
			host.DELETE("/games/:id", games.Delete)

			host.POST("/players", players.Create)
			host.PUT("/players/:id", players.Update)
			host.DELETE("/players/:id", players.Delete)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, messageResponse{Message: "Not found"})
	})

	return router
}
