package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/pillar"
	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
)

type PillarHandler struct {
	pillar *pillar.Service
}

func NewPillarHandler(svc *pillar.Service) *PillarHandler {
	return &PillarHandler{pillar: svc}
}

type pillarRequest struct {
	MinionID string `json:"minion_id"`
}

func (h *PillarHandler) Render(c *gin.Context) {
	var req pillarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.MinionID == "" {
		response.Error(c, errcode.ErrInvalid, "minion_id required")
		return
	}
	data, err := h.pillar.Resolve(c.Request.Context(), req.MinionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"pillar": data})
}
