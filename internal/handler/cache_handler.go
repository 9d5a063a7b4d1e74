package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/minionops/minionbase/internal/cache"
	"github.com/minionops/minionbase/internal/pkg/errcode"
	"github.com/minionops/minionbase/internal/pkg/response"
)

type CacheHandler struct {
	cache cache.Store
}

func NewCacheHandler(store cache.Store) *CacheHandler {
	return &CacheHandler{cache: store}
}

type cacheStoreRequest struct {
	Bank string      `json:"bank"`
	Key  string      `json:"key"`
	Data interface{} `json:"data"`
}

type cacheKeyRequest struct {
	Bank string  `json:"bank"`
	Key  *string `json:"key"`
}

func (h *CacheHandler) Store(c *gin.Context) {
	var req cacheStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Bank == "" || req.Key == "" {
		response.Error(c, errcode.ErrInvalid, "bank and key required")
		return
	}
	if err := h.cache.Store(c.Request.Context(), req.Bank, req.Key, req.Data); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CacheHandler) Fetch(c *gin.Context) {
	var req cacheKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Bank == "" || req.Key == nil || *req.Key == "" {
		response.Error(c, errcode.ErrInvalid, "bank and key required")
		return
	}
	data, err := h.cache.Fetch(c.Request.Context(), req.Bank, *req.Key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"data": data})
}

func (h *CacheHandler) Flush(c *gin.Context) {
	var req cacheKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Bank == "" {
		response.Error(c, errcode.ErrInvalid, "bank required")
		return
	}
	if err := h.cache.Flush(c.Request.Context(), req.Bank, req.Key); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CacheHandler) List(c *gin.Context) {
	bank := c.Query("bank")
	if bank == "" {
		response.Error(c, errcode.ErrInvalid, "bank required")
		return
	}
	keys, err := h.cache.List(c.Request.Context(), bank)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"keys": keys})
}

func (h *CacheHandler) ListBanks(c *gin.Context) {
	banks, err := h.cache.ListBanks(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"banks": banks})
}

func (h *CacheHandler) Contains(c *gin.Context) {
	bank := c.Query("bank")
	if bank == "" {
		response.Error(c, errcode.ErrInvalid, "bank required")
		return
	}
	var key *string
	if value := c.Query("key"); value != "" {
		key = &value
	}
	contains, err := h.cache.Contains(c.Request.Context(), bank, key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"contains": contains})
}

func (h *CacheHandler) Updated(c *gin.Context) {
	bank := c.Query("bank")
	key := c.Query("key")
	if bank == "" || key == "" {
		response.Error(c, errcode.ErrInvalid, "bank and key required")
		return
	}
	ts, err := h.cache.Updated(c.Request.Context(), bank, key)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": ts})
}
