package api

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/agiliza2b-source/tasks2/domain"
)

const requestBodyMaxSize = 1 << 20

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// invalidTaskField checks the enumerated task fields and names the
// first bad one, or returns "" when all are valid. Empty values pass;
// defaults are applied downstream.
func invalidTaskField(t domain.Task) string {
	switch {
	case t.Color != "" && !domain.ValidColor(t.Color):
		return "unknown color"
	case t.Status != "" && !domain.ValidStatus(t.Status):
		return "unknown status"
	case t.Priority != "" && !domain.ValidPriority(t.Priority):
		return "unknown priority"
	case t.ResourceType != "" && !domain.ValidResourceType(t.ResourceType):
		return "unknown resource type"
	}
	return ""
}

func postTask(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var t domain.Task
		if err := decodeBody(c, &t); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if t.Title == "" {
			return c.String(http.StatusBadRequest, "title is required")
		}
		if msg := invalidTaskField(t); msg != "" {
			return c.String(http.StatusBadRequest, msg)
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		created, err := mgr.CreateTask(ctx, t)
		if err != nil {
			return writeBoardErr(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func patchTask(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var t domain.Task
		if err := decodeBody(c, &t); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		t.ID = c.Param("id")
		if msg := invalidTaskField(t); msg != "" {
			return c.String(http.StatusBadRequest, msg)
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		if err := mgr.UpdateTask(ctx, t); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTask(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		confirmed := c.QueryParam("confirm") == "true"
		if err := mgr.DeleteTask(ctx, c.Param("id"), confirmed); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type moveTaskRequest struct {
	ColumnID string `json:"column_id"`
}

func moveTask(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req moveTaskRequest
		if err := decodeBody(c, &req); err != nil || req.ColumnID == "" {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		if err := mgr.MoveTask(ctx, c.Param("id"), req.ColumnID); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func duplicateTask(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		dup, err := mgr.DuplicateTask(ctx, c.Param("id"))
		if err != nil {
			return writeBoardErr(c, err)
		}
		return c.JSON(http.StatusCreated, dup)
	}
}

func saveTemplate(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		tpl, err := mgr.SaveTemplate(ctx, c.Param("id"))
		if err != nil {
			return writeBoardErr(c, err)
		}
		return c.JSON(http.StatusCreated, tpl)
	}
}

type applyTemplateRequest struct {
	TemplateID string `json:"template_id"`
}

func applyTemplate(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req applyTemplateRequest
		if err := decodeBody(c, &req); err != nil || req.TemplateID == "" {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		if err := mgr.ApplyTemplate(ctx, c.Param("id"), req.TemplateID); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
