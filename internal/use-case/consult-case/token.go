package consult_service

import (
	"hash/fnv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MintRTCToken signs a credential for the external RTC provider, scoped to
// one appointment's channel: publish+subscribe for a single numeric identity,
// expiring ttl after now.
func MintRTCToken(appID, appCertificate, channel string, uid uint32, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"app_id":  appID,
		"channel": channel,
		"uid":     uid,
		"role":    "publisher",
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(appCertificate))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// RTCUid derives a stable numeric identity from the participant ref, since
// the provider wants integer uids.
func RTCUid(actorID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	uid := h.Sum32()
	if uid == 0 {
		uid = 1 // 0 means "let the provider assign" on most RTC backends
	}
	return uid
}
