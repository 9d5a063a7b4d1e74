package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Cache     *CacheHandler
	Pillar    *PillarHandler
	Returner  *ReturnerHandler
	Admin     *AdminHandler
	State     *StateHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/auth/login", deps.Auth.Login)

	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/auth/password", deps.Auth.ChangePassword)

	authGroup.POST("/cache/store", deps.Cache.Store)
	authGroup.POST("/cache/fetch", deps.Cache.Fetch)
	authGroup.POST("/cache/flush", deps.Cache.Flush)
	authGroup.GET("/cache/list", deps.Cache.List)
	authGroup.GET("/cache/banks", deps.Cache.ListBanks)
	authGroup.GET("/cache/contains", deps.Cache.Contains)
	authGroup.GET("/cache/updated", deps.Cache.Updated)

	authGroup.POST("/pillar", deps.Pillar.Render)

	authGroup.POST("/returns", deps.Returner.SaveReturn)
	authGroup.POST("/events", deps.Returner.SaveEvents)
	authGroup.POST("/jobs/:jid/load", deps.Returner.SaveLoad)
	authGroup.GET("/jobs/:jid/load", deps.Returner.GetLoad)
	authGroup.GET("/jobs/:jid", deps.Returner.GetJob)
	authGroup.GET("/jobs", deps.Returner.ListJobs)
	authGroup.GET("/minions", deps.Returner.ListMinions)
	authGroup.GET("/events", deps.Returner.ListEvents)
	authGroup.POST("/jobs/prune", deps.Returner.Prune)

	// The execution and state modules only exist for mysql deployments;
	// main leaves them nil on postgres.
	if deps.Admin != nil {
		authGroup.GET("/db/databases", deps.Admin.ListDatabases)
		authGroup.POST("/db/databases", deps.Admin.CreateDatabase)
		authGroup.GET("/db/databases/:name", deps.Admin.GetDatabase)
		authGroup.GET("/db/databases/:name/exists", deps.Admin.DatabaseExists)
		authGroup.PUT("/db/databases/:name", deps.Admin.AlterDatabase)
		authGroup.DELETE("/db/databases/:name", deps.Admin.RemoveDatabase)

		authGroup.GET("/db/users", deps.Admin.ListUsers)
		authGroup.GET("/db/users/exists", deps.Admin.UserExists)
		authGroup.POST("/db/users", deps.Admin.CreateUser)
		authGroup.PUT("/db/users/password", deps.Admin.ChangeUserPassword)
		authGroup.DELETE("/db/users", deps.Admin.RemoveUser)

		authGroup.GET("/db/grants", deps.Admin.ListGrants)
		authGroup.GET("/db/grants/exists", deps.Admin.GrantExists)
		authGroup.POST("/db/grants", deps.Admin.AddGrant)
		authGroup.POST("/db/grants/revoke", deps.Admin.RevokeGrant)

		authGroup.POST("/db/query", deps.Admin.RunQuery)
	}
	if deps.State != nil {
		authGroup.POST("/state/database", deps.State.ApplyDatabase)
		authGroup.POST("/state/user", deps.State.ApplyUser)
		authGroup.POST("/state/grant", deps.State.ApplyGrant)
	}
}
