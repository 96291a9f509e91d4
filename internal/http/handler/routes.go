package handler

import (
	"github.com/gofiber/fiber/v2"

	"photojournal/internal/service"
)

// Services are the dependencies of the HTTP routes.
type Services struct {
	Health      Pinger
	Entries     service.EntryService
	Capture     service.CaptureService
	Preferences service.PreferencesService
	Photos      PhotoStore
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, s Services) {
	app.Get("/health", HealthCheck(s.Health))
	app.Get("/healthz", Liveness())

	app.Get("/entries", ListEntries(s.Entries))
	app.Post("/entries", CaptureEntry(s.Capture, s.Photos))
	app.Delete("/entries", ClearEntries(s.Entries))
	app.Post("/entries/retry", RetryCapture(s.Capture))
	app.Get("/entries/:id", GetEntry(s.Entries))
	app.Get("/entries/:id/image", GetEntryImage(s.Entries, s.Photos.LinkTTL))
	app.Delete("/entries/:id", DeleteEntry(s.Entries))

	app.Get("/capture/state", CaptureState(s.Capture))

	app.Get("/preferences", GetPreferences(s.Preferences))
	app.Put("/preferences", PutPreferences(s.Preferences))
	app.Post("/preferences/toggle", TogglePreferences(s.Preferences))
}
