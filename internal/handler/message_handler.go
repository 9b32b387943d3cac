package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListMessages returns contact messages, including ones not yet synced.
func (a *API) ListMessages(c *gin.Context) {
	items, err := a.services.Messages.List(c.Request.Context())
	if err != nil {
		respondContentError(c, err, "留言", "获取")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// MarkMessageRead flags a message as read.
func (a *API) MarkMessageRead(c *gin.Context) {
	item, err := a.services.Messages.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondContentError(c, err, "留言", "更新")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "已标记为已读", "item": item})
}

// DeleteMessage removes a message.
func (a *API) DeleteMessage(c *gin.Context) {
	if err := a.services.Messages.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondContentError(c, err, "留言", "删除")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "留言已删除"})
}

// SyncStatus reports records waiting to reach the remote store.
func (a *API) SyncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": a.pendingCounts()})
}

// RunSync retries pending writes immediately.
func (a *API) RunSync(c *gin.Context) {
	synced := a.services.Reconciler.SyncAll(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"synced": synced, "pending": a.pendingCounts()})
}

func (a *API) pendingCounts() map[string]int {
	return map[string]int{
		a.services.AboutSync.Entity():   len(a.services.AboutSync.Pending()),
		a.services.MessageSync.Entity(): len(a.services.MessageSync.Pending()),
	}
}
