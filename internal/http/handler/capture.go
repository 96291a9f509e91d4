package handler

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"photojournal/internal/capture"
	"photojournal/internal/location"
	"photojournal/internal/model"
	"photojournal/internal/service"
	"photojournal/internal/storage"
)

// PhotoStore is where uploaded photos land before an entry references them.
type PhotoStore struct {
	Objects storage.Storage
	Prefix  string
	// LinkTTL enables presigned redirects on the image route when positive.
	LinkTTL time.Duration
}

var openUpload = func(fh *multipart.FileHeader) (multipart.File, error) { return fh.Open() }

type captureForm struct {
	Latitude           *float64 `validate:"omitempty,min=-90,max=90"`
	Longitude          *float64 `validate:"omitempty,min=-180,max=180"`
	CameraPermission   string   `validate:"omitempty,oneof=granted denied"`
	LocationPermission string   `validate:"omitempty,oneof=granted denied"`
}

var errInvalidCoordinate = errors.New("invalid coordinate")

func parseCoordinate(v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errInvalidCoordinate
	}
	return &f, nil
}

func parseCaptureForm(c *fiber.Ctx) (*captureForm, error) {
	lat, err := parseCoordinate(c.FormValue("latitude"))
	if err != nil {
		return nil, err
	}
	lon, err := parseCoordinate(c.FormValue("longitude"))
	if err != nil {
		return nil, err
	}
	if (lat == nil) != (lon == nil) {
		return nil, errInvalidCoordinate
	}
	f := &captureForm{
		Latitude:           lat,
		Longitude:          lon,
		CameraPermission:   strings.ToLower(c.FormValue("camera_permission")),
		LocationPermission: strings.ToLower(c.FormValue("location_permission")),
	}
	if err := validate.Struct(f); err != nil {
		return nil, err
	}
	return f, nil
}

// CaptureEntry runs the capture pipeline on an uploaded photo.
// A request without a photo is a cancelled capture.
//
// @Summary Capture a journal entry
// @Tags capture
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file false "Photo"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param camera_permission formData string false "granted or denied"
// @Param location_permission formData string false "granted or denied"
// @Success 201 {object} model.Entry
// @Failure 400 {object} errorPayload
// @Failure 403 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /entries [post]
func CaptureEntry(svc service.CaptureService, photos PhotoStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := parseCaptureForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "invalid capture form")
		}

		var photo *capture.Photo
		if fh, err := c.FormFile("photo"); err == nil {
			f, err := openUpload(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "cannot open uploaded photo")
			}
			defer f.Close()
			photo = &capture.Photo{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Body:        f,
			}
		}

		var pos *model.Coordinates
		if form.Latitude != nil {
			pos = &model.Coordinates{Latitude: *form.Latitude, Longitude: *form.Longitude}
		}

		req := service.CaptureRequest{
			Camera:   capture.NewUploadDevice(photos.Objects, photos.Prefix, form.CameraPermission != "denied", photo),
			Position: location.StaticProvider{Granted: form.LocationPermission != "denied", Position: pos},
		}
		entry, err := svc.Capture(c.UserContext(), req)
		if err != nil {
			return writeCaptureError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// RetryCapture retries the save of the last capture that could not be persisted.
//
// @Summary Retry a failed save
// @Tags capture
// @Produce json
// @Success 201 {object} model.Entry
// @Failure 409 {object} errorPayload
// @Failure 503 {object} errorPayload
// @Router /entries/retry [post]
func RetryCapture(svc service.CaptureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entry, err := svc.RetrySave(c.UserContext())
		if err != nil {
			return writeCaptureError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// CaptureState reports the stage of the pipeline and whether a save awaits retry.
//
// @Summary Capture pipeline state
// @Tags capture
// @Produce json
// @Success 200 {object} service.CaptureState
// @Router /capture/state [get]
func CaptureState(svc service.CaptureService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.State())
	}
}
