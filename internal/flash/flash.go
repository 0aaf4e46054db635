package flash

import (
	"encoding/gob"
	"net/http"

	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "agrifarma_flash"
	maxAge     = 300
)

// Categories understood by the frontend.
const (
	Success = "success"
	Info    = "info"
	Warning = "warning"
	Danger  = "danger"
	Error   = "error"
)

type Message struct {
	Category string `json:"category"`
	Text     string `json:"message"`
}

func init() {
	gob.Register(Message{})
}

// Middleware attaches the signed flash cookie store to every request. It must
// run before any handler that calls Add or Pop.
func Middleware(secret string, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(cookieOptions(maxAge, secure))
	return sessions.Sessions(CookieName, store)
}

func cookieOptions(age int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   age,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func session(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}

// Add queues a message for the next request. Messages added during the same
// request accumulate.
func Add(c *gin.Context, category, text string) {
	s := session(c)
	if s == nil {
		logger.Warn("Flash store missing, message dropped", map[string]interface{}{
			"category": category,
		})
		return
	}
	s.AddFlash(Message{Category: category, Text: text})
	if err := s.Save(); err != nil {
		logger.Error("Failed to save flash message", err)
	}
}

// Pop returns the queued messages and expires the cookie.
func Pop(c *gin.Context) []Message {
	messages := []Message{}
	s := session(c)
	if s == nil {
		return messages
	}

	pending := s.Flashes()
	for _, v := range pending {
		if m, ok := v.(Message); ok {
			messages = append(messages, m)
		}
	}
	if len(pending) > 0 {
		s.Options(cookieOptions(-1, false))
		if err := s.Save(); err != nil {
			logger.Error("Failed to clear flash messages", err)
		}
	}
	return messages
}
