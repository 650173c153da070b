package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agiliza2b-source/tasks2/domain"
)

func getColumns(pool *managerPool, sess *session) echo.HandlerFunc {
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
		return c.JSON(http.StatusOK, mgr.Columns())
	}
}

type postColumnRequest struct {
	Title string `json:"title"`
}

func postColumn(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req postColumnRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		created, err := mgr.AddColumn(ctx, req.Title)
		if err != nil {
			return writeBoardErr(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func patchColumn(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var col domain.Column
		if err := decodeBody(c, &col); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		col.ID = c.Param("id")
		if col.Color != "" && !domain.ValidColor(col.Color) {
			return c.String(http.StatusBadRequest, "unknown color")
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		if err := mgr.UpdateColumn(ctx, col); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteColumn(pool *managerPool, sess *session) echo.HandlerFunc {
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
		if err := mgr.DeleteColumn(ctx, c.Param("id"), confirmed); err != nil {
			return writeBoardErr(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

type reorderRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func reorderColumns(pool *managerPool, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req reorderRequest
		if err := decodeBody(c, &req); err != nil || req.SourceID == "" || req.TargetID == "" {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		mgr, err := pool.get(ctx, userID)
		if err != nil {
			return writeBoardErr(c, err)
		}
		if err := mgr.ReorderColumns(ctx, req.SourceID, req.TargetID); err != nil {
			return writeBoardErr(c, err)
		}
		return c.JSON(http.StatusOK, mgr.Columns())
	}
}
