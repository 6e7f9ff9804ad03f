package http

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/adapters/rtc"
	"github.com/dkeye/Lobby/internal/core"
	"github.com/dkeye/Lobby/internal/domain"
)

type profilePayload struct {
	DisplayName string `json:"displayName"`
}

func getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, profilePayload{DisplayName: rememberedName(c)})
}

// putProfile remembers a display name in the cookie session. New
// connections from this browser start out Named with it.
func putProfile(c *gin.Context) {
	var p profilePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.CodeBadPayload})
		return
	}
	name := domain.NormalizeName(p.DisplayName, domain.MaxUsernameLen)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.CodeInvalidName})
		return
	}
	s := sessions.Default(c)
	s.Set(sessionDisplayName, name)
	if err := s.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": core.CodeInternal})
		return
	}
	c.JSON(http.StatusOK, profilePayload{DisplayName: name})
}

// iceHandler hands browsers the ICE servers to build their RTCPeerConnection with.
func iceHandler(urls []string) gin.HandlerFunc {
	servers := rtc.ICEConfiguration(urls).ICEServers
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"iceServers": servers})
	}
}
