package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agiliza2b-source/tasks2/domain"
)

type taskUpdateRequest struct {
	Content string            `json:"content"`
	Type    domain.UpdateType `json:"type"`
}

// normalizeContent re-serializes checklist content into the structured
// form. Legacy newline text arriving from an old client is parsed and
// written back as a JSON item array.
func normalizeContent(req taskUpdateRequest) (string, error) {
	if req.Type != domain.UpdateChecklist {
		return req.Content, nil
	}
	return domain.EncodeChecklist(domain.ParseChecklist(req.Content))
}

func getTaskUpdates(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		updates, err := store.ListTaskUpdates(ctx, userID, c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, updates)
	}
}

func postTaskUpdate(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req taskUpdateRequest
		if err := decodeBody(c, &req); err != nil || req.Content == "" {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Type == "" {
			req.Type = domain.UpdateText
		}
		content, err := normalizeContent(req)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid checklist content")
		}

		update := domain.TaskUpdate{
			TaskID:  c.Param("id"),
			UserID:  userID,
			Content: content,
			Type:    req.Type,
		}
		if err := store.InsertTaskUpdates(ctx, []domain.TaskUpdate{update}); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusCreated)
	}
}

func patchTaskUpdate(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		var req taskUpdateRequest
		if err := decodeBody(c, &req); err != nil || req.Content == "" {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if req.Type == "" {
			req.Type = domain.UpdateText
		}
		content, err := normalizeContent(req)
		if err != nil {
			return c.String(http.StatusBadRequest, "invalid checklist content")
		}

		update := domain.TaskUpdate{
			ID:      c.Param("id"),
			UserID:  userID,
			Content: content,
			Type:    req.Type,
		}
		if err := store.UpdateTaskUpdate(ctx, update); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func deleteTaskUpdate(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		if err := store.DeleteTaskUpdate(ctx, userID, c.Param("id")); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}
