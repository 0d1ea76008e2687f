package controllers

import (
	"testing"
	"time"

	"github.com/qmedica/catalog-backend/pkg/config"
)

func cookieConfig(env string, secure bool) *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: env},
		Session: config.SessionConfig{
			CookieName: "catalog_session",
			TTL:        24 * time.Hour,
			Secure:     secure,
		},
	}
}

func TestSessionCookieSecureFlag(t *testing.T) {
	cases := []struct {
		name   string
		env    string
		secure bool
		want   bool
	}{
		{"dev default", config.AppEnvDev, false, false},
		{"dev with secure override", config.AppEnvDev, true, true},
		{"production", config.AppEnvProd, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cookie := sessionCookie(cookieConfig(tc.env, tc.secure), "tok", time.Hour)
			if cookie.Secure != tc.want {
				t.Fatalf("Secure = %v, want %v", cookie.Secure, tc.want)
			}
		})
	}
}

func TestSessionCookieClearsOnNegativeTTL(t *testing.T) {
	cookie := sessionCookie(cookieConfig(config.AppEnvDev, false), "", -time.Hour)
	if cookie.MaxAge != -1 {
		t.Fatalf("MaxAge = %d, want -1", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Fatalf("Value = %q, want empty", cookie.Value)
	}
}
