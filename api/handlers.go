package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"

	"github.com/agiliza2b-source/tasks2/backup"
	"github.com/agiliza2b-source/tasks2/board"
	"github.com/agiliza2b-source/tasks2/domain"
)

const restoreMaxSize = 32 << 20

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, logger *log.Logger) {
	pool := newManagerPool(store)
	engine := backup.NewEngine(store, store)
	sess := &session{auth: auth, presence: newPresenceTracker(store)}

	e.GET("/api/board", getBoard(pool, sess, logger))

	e.POST("/api/tasks", postTask(pool, sess))
	e.PATCH("/api/tasks/:id", patchTask(pool, sess))
	e.DELETE("/api/tasks/:id", deleteTask(pool, sess))
	e.POST("/api/tasks/:id/move", moveTask(pool, sess))
	e.POST("/api/tasks/:id/duplicate", duplicateTask(pool, sess))
	e.POST("/api/tasks/:id/template", saveTemplate(pool, sess))
	e.POST("/api/tasks/:id/apply-template", applyTemplate(pool, sess))

	e.GET("/api/columns", getColumns(pool, sess))
	e.POST("/api/columns", postColumn(pool, sess))
	e.PATCH("/api/columns/:id", patchColumn(pool, sess))
	e.DELETE("/api/columns/:id", deleteColumn(pool, sess))
	e.POST("/api/columns/reorder", reorderColumns(pool, sess))

	e.GET("/api/tasks/:id/updates", getTaskUpdates(store, sess))
	e.POST("/api/tasks/:id/updates", postTaskUpdate(store, sess))
	e.PATCH("/api/updates/:id", patchTaskUpdate(store, sess))
	e.DELETE("/api/updates/:id", deleteTaskUpdate(store, sess))

	e.GET("/api/tasks/:id/attachments", getAttachments(store, sess))
	e.POST("/api/tasks/:id/attachments", postAttachment(store, sess))
	e.DELETE("/api/attachments/:id", deleteAttachment(store, sess))

	e.GET("/api/backup", getBackup(store, engine, sess))
	e.POST("/api/restore", postRestore(store, engine, pool, sess, logger))

	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// session resolves the caller on each route and keeps the presence
// tracker fed. One instance is shared by every handler Register wires.
type session struct {
	auth     Authenticator
	presence *presenceTracker
}

// userID resolves the caller or writes the 401 response. The returned
// error, when non-nil, is the already-written response error.
func (s *session) userID(c echo.Context) (string, error) {
	userID, err := s.auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
	if err != nil {
		return "", c.String(http.StatusUnauthorized, err.Error())
	}
	s.presence.Touch(userID)
	return userID, nil
}

func writeBoardErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, board.ErrNotFound):
		return c.String(http.StatusNotFound, "not found")
	case errors.Is(err, board.ErrConfirmationRequired):
		return c.String(http.StatusConflict, "confirmation required")
	default:
		c.Logger().Error(err)
		return c.String(http.StatusInternalServerError, err.Error())
	}
}

type boardResponse struct {
	Columns   []domain.Column `json:"columns"`
	Tasks     []domain.Task   `json:"tasks"`
	Templates []domain.Task   `json:"templates"`
}

func getBoard(pool *managerPool, sess *session, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newBoardRequestMetrics(c.Request().Context(), logger, "/api/board")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := sess.auth.UserIDFromAuthHeader(c.Request().Header.Get("Authorization"))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}
		sess.presence.Touch(userID)

		loadStart := time.Now()
		mgr, loadErr := pool.get(ctx, userID)
		metrics.ObserveLoad(time.Since(loadStart))
		if loadErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(loadErr)
			err = c.String(http.StatusInternalServerError, loadErr.Error())
			return err
		}

		filter := domain.TaskFilter{
			Search:     c.QueryParam("search"),
			Bucket:     domain.DateBucket(c.QueryParam("bucket")),
			Priority:   domain.TaskPriority(c.QueryParam("priority")),
			AssignedTo: c.QueryParam("assigned_to"),
		}

		resp := boardResponse{
			Columns:   mgr.Columns(),
			Tasks:     mgr.Filter(filter),
			Templates: mgr.Templates(),
		}
		metrics.SetTasksReturned(len(resp.Tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, resp)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getBackup(store Storage, engine *backup.Engine, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		cols, err := store.ListColumns(ctx, userID)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		tasks, err := store.ListTasks(ctx, userID)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}

		owner := domain.Owner{ID: userID}
		if profile, err := store.GetProfile(ctx, userID); err == nil && profile != nil {
			owner.Email = profile.Email
		}

		encoded, err := engine.Export(cols, tasks, owner)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}

		now := time.Now()
		store.LogEvent(ctx, domain.SystemLogRecord{
			UserID:    userID,
			Action:    domain.ActionBackup,
			Details:   map[string]string{"filename": backup.Filename(now)},
			Timestamp: now.UTC(),
		})

		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="`+backup.Filename(now)+`"`)
		return c.Blob(http.StatusOK, "application/octet-stream", []byte(encoded))
	}
}

func postRestore(store Storage, engine *backup.Engine, pool *managerPool, sess *session, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		body, err := io.ReadAll(io.LimitReader(c.Request().Body, restoreMaxSize))
		if err != nil {
			return c.String(http.StatusBadRequest, "unreadable body")
		}

		confirmed := c.QueryParam("confirm") == "true"
		report, err := engine.Restore(ctx, string(body), userID, func(meta backup.Metadata) bool {
			return confirmed
		})
		if err != nil {
			switch {
			case errors.Is(err, backup.ErrMalformedBackup):
				return c.String(http.StatusBadRequest, "malformed backup file")
			case errors.Is(err, backup.ErrRestoreDeclined):
				return c.String(http.StatusConflict, "backup belongs to another account; retry with confirm=true")
			default:
				c.Logger().Error(err)
				return c.String(http.StatusInternalServerError, err.Error())
			}
		}

		// The restored rows invalidate whatever the manager holds.
		pool.invalidate(userID)

		logger.WithFields(log.Fields{
			"user_id":     userID,
			"columns":     report.Columns,
			"tasks":       report.Tasks,
			"cross_owner": report.CrossOwner,
		}).Info("restore.completed")

		return c.JSON(http.StatusOK, report)
	}
}
