package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/Lobby/internal/app"
	"github.com/dkeye/Lobby/internal/app/orch"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

type lobbyHandlers struct {
	orch *orch.Orchestrator
}

// list never exposes invite codes; joining needs the code out of band.
func (h *lobbyHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"lobbies": h.orch.Lobbies.List()})
}

func (h *lobbyHandlers) preview(c *gin.Context) {
	code := c.Param("code")
	if !app.ValidInviteCode(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": core.CodeNotFound})
		return
	}
	lobby, ok := h.orch.Lobbies.ResolveInviteCode(domain.InviteCode(code))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": core.CodeNotFound})
		return
	}
	info := lobby.Info()
	c.JSON(http.StatusOK, gin.H{
		"name":        info.Name,
		"memberCount": info.MemberCount,
		"voiceCount":  info.VoiceCount,
	})
}
