package app

import (
	"github.com/pion/randutil"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Lobby/internal/domain"
)

const (
	InviteCodeLength = 6
	// InviteAlphabet has no 0/O or 1/I so codes survive being read aloud.
	InviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// InviteCodeGenerator produces candidate codes. Uniqueness is the registry's job.
type InviteCodeGenerator interface {
	Generate() domain.InviteCode
}

type RandomInviteCodes struct {
	fallback randutil.MathRandomGenerator
}

func NewRandomInviteCodes() *RandomInviteCodes {
	return &RandomInviteCodes{fallback: randutil.NewMathRandomGenerator()}
}

func (g *RandomInviteCodes) Generate() domain.InviteCode {
	code, err := randutil.GenerateCryptoRandomString(InviteCodeLength, InviteAlphabet)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.invite").Msg("crypto rand failed, using math rand")
		code = g.fallback.GenerateString(InviteCodeLength, InviteAlphabet)
	}
	return domain.InviteCode(code)
}

// ValidInviteCode reports whether code could have come from RandomInviteCodes.
func ValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		found := false
		for j := 0; j < len(InviteAlphabet); j++ {
			if code[i] == InviteAlphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
