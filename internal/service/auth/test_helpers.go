package auth

import "time"

// NewTestJWTService creates a JWT service with an injectable time function.
// It is exported for use in tests that need deterministic token expiry.
func NewTestJWTService(
	secret string,
	tokenLifetime time.Duration,
	refreshTokenLifetime time.Duration,
	timeFunc func() time.Time,
) JWTService {
	if timeFunc == nil {
		timeFunc = time.Now
	}
	return &hmacJWTService{
		signingKey:           []byte(secret),
		tokenLifetime:        tokenLifetime,
		refreshTokenLifetime: refreshTokenLifetime,
		timeFunc:             timeFunc,
		clockSkew:            2 * time.Minute,
	}
}
