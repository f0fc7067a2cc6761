package logs

import (
	"formbase-api/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recorder is anything that can persist an audit entry.
type Recorder interface {
	Log(log SystemLog, metadata interface{}) error
}

// Record writes an audit entry for the current request. A failed write is
// logged and otherwise ignored; the request has already succeeded.
func Record(c *gin.Context, r Recorder, entry SystemLog, metadata interface{}) {
	if r == nil {
		return
	}
	if err := r.Log(entry, metadata); err != nil {
		logger.FromGin(c).Warn("Failed to insert log",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// Entry builds a SystemLog for userID touching ids.
func Entry(level, service, action, message, userID string, ids ...string) SystemLog {
	e := SystemLog{
		Level:     level,
		Service:   service,
		Action:    action,
		Message:   message,
		EntityIDs: IDList(ids),
	}
	if userID != "" {
		e.UserID = &userID
	}
	return e
}
