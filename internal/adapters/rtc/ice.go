// Package rtc describes the ICE servers browsers should use. The server
// itself never opens a peer connection.
package rtc

import (
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

var DefaultICEURLs = []string{"stun:stun.l.google.com:19302"}

// ICEConfiguration builds the RTCPeerConnection config handed to clients.
// URLs that do not parse as stun:/stuns:/turn:/turns: are skipped.
func ICEConfiguration(urls []string) webrtc.Configuration {
	if urls == nil {
		urls = DefaultICEURLs
	}
	valid := make([]string, 0, len(urls))
	for _, raw := range urls {
		if _, err := stun.ParseURI(raw); err != nil {
			log.Warn().Err(err).Str("module", "adapters.rtc").Str("url", raw).Msg("skipping ICE server")
			continue
		}
		valid = append(valid, raw)
	}
	cfg := webrtc.Configuration{}
	if len(valid) > 0 {
		cfg.ICEServers = []webrtc.ICEServer{{URLs: valid}}
	}
	return cfg
}
