package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/agiliza2b-source/tasks2/domain"
)

func getAttachments(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		atts, err := store.ListAttachments(ctx, userID, c.Param("id"))
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, atts)
	}
}

func postAttachment(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return c.String(http.StatusBadRequest, "file field is required")
		}
		if fh.Size > domain.MaxAttachmentSize {
			return c.String(http.StatusRequestEntityTooLarge,
				"file exceeds "+strconv.FormatInt(domain.MaxAttachmentSize, 10)+" bytes")
		}

		f, err := fh.Open()
		if err != nil {
			return c.String(http.StatusBadRequest, "unreadable file")
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, domain.MaxAttachmentSize+1))
		if err != nil {
			return c.String(http.StatusBadRequest, "unreadable file")
		}
		if int64(len(data)) > domain.MaxAttachmentSize {
			return c.String(http.StatusRequestEntityTooLarge, "file too large")
		}

		att, err := store.UploadAttachment(ctx, userID, c.Param("id"),
			fh.Filename, fh.Header.Get("Content-Type"), data)
		if err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusCreated, att)
	}
}

func deleteAttachment(store Storage, sess *session) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		userID, err := sess.userID(c)
		if err != nil {
			return err
		}

		if err := store.DeleteAttachment(ctx, userID, c.Param("id")); err != nil {
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, err.Error())
		}
		return c.NoContent(http.StatusNoContent)
	}
}
