package config

import "fmt"

// CacheKeyStruct centralizes Redis key construction so every key shape
// lives in one place.
type CacheKeyStruct struct{}

// ParticipantLoginKey holds the JTI of a participant's active login. The
// single-active-login middleware checks tokens against it; deleting the
// key releases the login.
func (r *CacheKeyStruct) ParticipantLoginKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

var CacheKey = &CacheKeyStruct{}
