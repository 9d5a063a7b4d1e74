package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/dbadmin"
	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
)

// AdminHandler exposes the execution module: database, user and grant
// management plus raw queries against the managed server.
type AdminHandler struct {
	admin *dbadmin.Admin
}

func NewAdminHandler(admin *dbadmin.Admin) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) ListDatabases(c *gin.Context) {
	names, err := h.admin.ListDatabases(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"databases": names})
}

func (h *AdminHandler) DatabaseExists(c *gin.Context) {
	exists, err := h.admin.DatabaseExists(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

func (h *AdminHandler) GetDatabase(c *gin.Context) {
	info, err := h.admin.GetDatabase(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, info)
}

type databaseRequest struct {
	Name         string `json:"name"`
	CharacterSet string `json:"character_set"`
	Collate      string `json:"collate"`
}

func (h *AdminHandler) CreateDatabase(c *gin.Context) {
	var req databaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, errcode.ErrInvalid, "name required")
		return
	}
	if err := h.admin.CreateDatabase(c.Request.Context(), req.Name, req.CharacterSet, req.Collate); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) AlterDatabase(c *gin.Context) {
	var req databaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	name := c.Param("name")
	if err := h.admin.AlterDatabase(c.Request.Context(), name, req.CharacterSet, req.Collate); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) RemoveDatabase(c *gin.Context) {
	if err := h.admin.RemoveDatabase(c.Request.Context(), c.Param("name")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"users": users})
}

type userRequest struct {
	User     string `json:"user"`
	Host     string `json:"host"`
	Password string `json:"password"`
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.User == "" {
		response.Error(c, errcode.ErrInvalid, "user required")
		return
	}
	if err := h.admin.CreateUser(c.Request.Context(), req.User, req.Host, req.Password); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) UserExists(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		response.Error(c, errcode.ErrInvalid, "user required")
		return
	}
	exists, err := h.admin.UserExists(c.Request.Context(), user, c.Query("host"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

func (h *AdminHandler) ChangeUserPassword(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.User == "" || req.Password == "" {
		response.Error(c, errcode.ErrInvalid, "user and password required")
		return
	}
	if err := h.admin.ChangeUserPassword(c.Request.Context(), req.User, req.Host, req.Password); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) RemoveUser(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		response.Error(c, errcode.ErrInvalid, "user required")
		return
	}
	if err := h.admin.RemoveUser(c.Request.Context(), user, c.Query("host")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) ListGrants(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		response.Error(c, errcode.ErrInvalid, "user required")
		return
	}
	grants, err := h.admin.ListGrants(c.Request.Context(), user, c.Query("host"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"grants": grants})
}

func (h *AdminHandler) GrantExists(c *gin.Context) {
	grant := c.Query("grant")
	database := c.Query("database")
	user := c.Query("user")
	if grant == "" || database == "" || user == "" {
		response.Error(c, errcode.ErrInvalid, "grant, database and user required")
		return
	}
	exists, err := h.admin.GrantExists(c.Request.Context(), grant, database, user, c.Query("host"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"exists": exists})
}

type grantRequest struct {
	Grant    string `json:"grant"`
	Database string `json:"database"`
	User     string `json:"user"`
	Host     string `json:"host"`
}

func (h *AdminHandler) AddGrant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Grant == "" || req.Database == "" || req.User == "" {
		response.Error(c, errcode.ErrInvalid, "grant, database and user required")
		return
	}
	if err := h.admin.GrantAdd(c.Request.Context(), req.Grant, req.Database, req.User, req.Host); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *AdminHandler) RevokeGrant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Grant == "" || req.Database == "" || req.User == "" {
		response.Error(c, errcode.ErrInvalid, "grant, database and user required")
		return
	}
	if err := h.admin.GrantRevoke(c.Request.Context(), req.Grant, req.Database, req.User, req.Host); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type queryRequest struct {
	Query string `json:"query"`
}

func (h *AdminHandler) RunQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Query == "" {
		response.Error(c, errcode.ErrInvalid, "query required")
		return
	}
	result, err := h.admin.Query(c.Request.Context(), req.Query)
	if err != nil {
		response.Error(c, errcode.ErrQueryFailed, err.Error())
		return
	}
	response.Success(c, result)
}
