package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
	"github.com/minionops/minionbase/internal/state"
)

type StateHandler struct {
	databases *state.Database
	users     *state.User
	grants    *state.Grants
}

func NewStateHandler(databases *state.Database, users *state.User, grants *state.Grants) *StateHandler {
	return &StateHandler{databases: databases, users: users, grants: grants}
}

const (
	ensurePresent = "present"
	ensureAbsent  = "absent"
)

type databaseStateRequest struct {
	Name         string `json:"name"`
	CharacterSet string `json:"character_set"`
	Collate      string `json:"collate"`
	Ensure       string `json:"ensure"`
	Test         bool   `json:"test"`
}

func (h *StateHandler) ApplyDatabase(c *gin.Context) {
	var req databaseStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Name == "" {
		response.Error(c, errcode.ErrInvalid, "name required")
		return
	}
	var result state.Result
	switch req.Ensure {
	case "", ensurePresent:
		result = h.databases.Present(c.Request.Context(), req.Name, req.CharacterSet, req.Collate, req.Test)
	case ensureAbsent:
		result = h.databases.Absent(c.Request.Context(), req.Name, req.Test)
	default:
		response.Error(c, errcode.ErrInvalid, "ensure must be present or absent")
		return
	}
	response.Success(c, result)
}

type userStateRequest struct {
	User     string `json:"user"`
	Host     string `json:"host"`
	Password string `json:"password"`
	Ensure   string `json:"ensure"`
	Test     bool   `json:"test"`
}

func (h *StateHandler) ApplyUser(c *gin.Context) {
	var req userStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.User == "" {
		response.Error(c, errcode.ErrInvalid, "user required")
		return
	}
	var result state.Result
	switch req.Ensure {
	case "", ensurePresent:
		result = h.users.Present(c.Request.Context(), req.User, req.Host, req.Password, req.Test)
	case ensureAbsent:
		result = h.users.Absent(c.Request.Context(), req.User, req.Host, req.Test)
	default:
		response.Error(c, errcode.ErrInvalid, "ensure must be present or absent")
		return
	}
	response.Success(c, result)
}

type grantStateRequest struct {
	Grant    string `json:"grant"`
	Database string `json:"database"`
	User     string `json:"user"`
	Host     string `json:"host"`
	Ensure   string `json:"ensure"`
	Test     bool   `json:"test"`
}

func (h *StateHandler) ApplyGrant(c *gin.Context) {
	var req grantStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Grant == "" || req.Database == "" || req.User == "" {
		response.Error(c, errcode.ErrInvalid, "grant, database and user required")
		return
	}
	var result state.Result
	switch req.Ensure {
	case "", ensurePresent:
		result = h.grants.Present(c.Request.Context(), req.Grant, req.Database, req.User, req.Host, req.Test)
	case ensureAbsent:
		result = h.grants.Absent(c.Request.Context(), req.Grant, req.Database, req.User, req.Host, req.Test)
	default:
		response.Error(c, errcode.ErrInvalid, "ensure must be present or absent")
		return
	}
	response.Success(c, result)
}
