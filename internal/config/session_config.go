package config

import "time"

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionCookieMaxAge() time.Duration
	GetSecureCookies() bool
	GetSessionIdleTimeout() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionCookieName() string {
	return GetEnv("SESSION_COOKIE_NAME", "qa_sid")
}

func (Session) GetSessionCookieMaxAge() time.Duration {
	return 30 * 24 * time.Hour // Browser storage outlives the tab, keep it for a month
}

// GetSecureCookies forces the Secure flag even when TLS terminates in front of the app
func (Session) GetSecureCookies() bool {
	return GetEnv("SECURE_COOKIES", "false") == "true"
}

// GetSessionIdleTimeout is how long an untouched browser session keeps its state
func (s Session) GetSessionIdleTimeout() time.Duration {
	hours := GetEnvAsInt("SESSION_IDLE_HOURS", 0)
	if hours <= 0 {
		return s.GetSessionCookieMaxAge()
	}
	return time.Duration(hours) * time.Hour
}
