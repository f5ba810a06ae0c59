package api

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tirasundara/bpo-reconciliation/internal/domain"
)

const sessionKey = "session"

// Session is the authenticated caller and the companies it may act for
type Session struct {
	UserID    string
	Companies []string
}

// Allows reports whether the session may act for companyID
func (s Session) Allows(companyID string) bool {
	return slices.Contains(s.Companies, companyID)
}

// ParseTokens reads "token=user:companyA|companyB;token2=user2:companyC"
func ParseTokens(s string) (map[string]Session, error) {
	sessions := make(map[string]Session)

	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		token, rest, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(token) == "" {
			return nil, fmt.Errorf("auth token entry %q: expected token=user:companies", entry)
		}
		user, companies, ok := strings.Cut(rest, ":")
		if !ok || strings.TrimSpace(user) == "" {
			return nil, fmt.Errorf("auth token entry %q: expected token=user:companies", entry)
		}

		session := Session{UserID: strings.TrimSpace(user)}
		for _, c := range strings.Split(companies, "|") {
			if c = strings.TrimSpace(c); c != "" {
				session.Companies = append(session.Companies, c)
			}
		}
		sessions[strings.TrimSpace(token)] = session
	}

	return sessions, nil
}

// Auth resolves the bearer token into a Session
func Auth(sessions map[string]Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortWithError(c, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized))
			return
		}

		session, ok := sessions[strings.TrimSpace(token)]
		if !ok {
			abortWithError(c, fmt.Errorf("%w: unknown token", domain.ErrUnauthorized))
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(Session); ok {
			return s
		}
	}
	return Session{}
}

// authorizeCompany checks companyID against the session
func authorizeCompany(c *gin.Context, companyID string) (Session, error) {
	session := sessionFrom(c)
	if strings.TrimSpace(companyID) == "" {
		return session, fmt.Errorf("%w: company_id is required", domain.ErrInvalidInput)
	}
	if !session.Allows(companyID) {
		return session, fmt.Errorf("%w: no access to company %s", domain.ErrForbidden, companyID)
	}
	return session, nil
}
