package handler

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
	"github.com/minionops/minionbase/internal/returner"
)

type ReturnerHandler struct {
	returner *returner.Service
}

func NewReturnerHandler(svc *returner.Service) *ReturnerHandler {
	return &ReturnerHandler{returner: svc}
}

type returnRequest struct {
	JID      string      `json:"jid"`
	MinionID string      `json:"minion_id"`
	Fun      string      `json:"fun"`
	Success  bool        `json:"success"`
	Return   interface{} `json:"return"`
	FullRet  interface{} `json:"full_ret"`
}

func (h *ReturnerHandler) SaveReturn(c *gin.Context) {
	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.JID == "" || req.MinionID == "" || req.Fun == "" {
		response.Error(c, errcode.ErrInvalid, "jid, minion_id and fun required")
		return
	}
	err := h.returner.SaveReturn(c.Request.Context(), returner.ReturnInput{
		JID:      req.JID,
		MinionID: req.MinionID,
		Fun:      req.Fun,
		Success:  req.Success,
		Return:   req.Return,
		FullRet:  req.FullRet,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type eventRequest struct {
	Events []struct {
		Tag      string      `json:"tag"`
		Data     interface{} `json:"data"`
		MasterID string      `json:"master_id"`
	} `json:"events"`
}

func (h *ReturnerHandler) SaveEvents(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if len(req.Events) == 0 {
		response.Error(c, errcode.ErrInvalid, "events required")
		return
	}
	events := make([]returner.EventInput, 0, len(req.Events))
	for _, ev := range req.Events {
		if ev.Tag == "" {
			response.Error(c, errcode.ErrInvalid, "event tag required")
			return
		}
		events = append(events, returner.EventInput{Tag: ev.Tag, Data: ev.Data, MasterID: ev.MasterID})
	}
	if err := h.returner.SaveEvents(c.Request.Context(), events); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

type loadRequest struct {
	Load interface{} `json:"load"`
}

func (h *ReturnerHandler) SaveLoad(c *gin.Context) {
	jid := c.Param("jid")
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.returner.SaveLoad(c.Request.Context(), jid, req.Load); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ReturnerHandler) GetLoad(c *gin.Context) {
	load, err := h.returner.GetLoad(c.Request.Context(), c.Param("jid"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"load": load})
}

func (h *ReturnerHandler) GetJob(c *gin.Context) {
	returns, err := h.returner.GetJID(c.Request.Context(), c.Param("jid"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"returns": returns})
}

// ListJobs returns every known jid, or the latest per-minion returns for
// a function when ?fun= is given.
func (h *ReturnerHandler) ListJobs(c *gin.Context) {
	if fun := c.Query("fun"); fun != "" {
		returns, err := h.returner.GetFun(c.Request.Context(), fun)
		if err != nil {
			handleError(c, err)
			return
		}
		response.Success(c, gin.H{"returns": returns})
		return
	}
	jobs, err := h.returner.GetJIDs(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"jobs": jobs})
}

type pruneRequest struct {
	KeepHours      int `json:"keep_hours"`
	EventKeepHours int `json:"event_keep_hours"`
}

// Prune sweeps aged job data on demand, outside the scheduled run. An
// empty body uses the same defaults as the cron job.
func (h *ReturnerHandler) Prune(c *gin.Context) {
	var req pruneRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	keep := req.KeepHours
	if keep <= 0 {
		keep = 24
	}
	eventKeep := req.EventKeepHours
	if eventKeep <= 0 {
		eventKeep = keep
	}
	stats, err := h.returner.Prune(c.Request.Context(),
		time.Duration(keep)*time.Hour,
		time.Duration(eventKeep)*time.Hour)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}

// ListEvents answers ?tag= queries against the stored bus events,
// newest first, optionally bounded by ?limit=.
func (h *ReturnerHandler) ListEvents(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		response.Error(c, errcode.ErrInvalid, "tag required")
		return
	}
	limit, _ := strconv.ParseUint(c.Query("limit"), 10, 32)
	events, err := h.returner.GetEvents(c.Request.Context(), tag, uint(limit))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"events": events})
}

func (h *ReturnerHandler) ListMinions(c *gin.Context) {
	minions, err := h.returner.GetMinions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"minions": minions})
}
