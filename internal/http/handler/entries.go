package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/go-playground/validator"

	"photojournal/internal/service"
)

var validate = validator.New()

// entryIDRule matches the 32 character hex identifiers of journal entries.
const entryIDRule = "required,len=32,hexadecimal"

func validEntryID(id string) bool {
	return validate.Var(id, entryIDRule) == nil
}

// ListEntries returns every journal entry, newest first.
//
// @Summary List journal entries
// @Tags entries
// @Produce json
// @Success 200 {object} service.EntryListResult
// @Failure 500 {object} errorPayload
// @Router /entries [get]
func ListEntries(svc service.EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetEntry returns one entry.
//
// @Summary Get a journal entry
// @Tags entries
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} model.Entry
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /entries/{id} [get]
func GetEntry(svc service.EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validEntryID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		e, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "entry not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(e)
	}
}

// GetEntryImage serves the photo of an entry. With a positive linkTTL it
// redirects to a presigned object URL when the photo store can issue one,
// and streams the bytes through the API otherwise.
//
// @Summary Download the photo of a journal entry
// @Tags entries
// @Produce octet-stream
// @Param id path string true "Entry ID"
// @Success 200 {file} binary
// @Success 307
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /entries/{id}/image [get]
func GetEntryImage(svc service.EntryService, linkTTL time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validEntryID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if linkTTL > 0 {
			u, err := svc.ImageURL(c.UserContext(), id, linkTTL)
			switch {
			case err == nil:
				c.Set(fiber.HeaderCacheControl, "no-store")
				return c.Redirect(u, fiber.StatusTemporaryRedirect)
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "photo not found")
			}
			// any other failure falls back to streaming
		}
		rc, info, err := svc.OpenImage(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "photo not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, strconv.Quote(info.ETag))
		}
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, size)
	}
}

// DeleteEntry removes one entry. Deleting an unknown id succeeds.
//
// @Summary Delete a journal entry
// @Tags entries
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Router /entries/{id} [delete]
func DeleteEntry(svc service.EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validEntryID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearEntries removes every entry.
//
// @Summary Delete all journal entries
// @Tags entries
// @Success 204
// @Router /entries [delete]
func ClearEntries(svc service.EntryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Clear(c.UserContext()); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
