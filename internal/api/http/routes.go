package httpapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-widget/internal/render"
	"github.com/i474232898/weather-widget/internal/widget"
)

var validate = validator.New()

// Options tune how views are rendered and how long operations may take.
type Options struct {
	// TimeZone for forecast and sun times; UTC when nil.
	TimeZone *time.Location
	// OperationTimeout bounds each fetch operation; 0 means no extra bound.
	OperationTimeout time.Duration
	// Now is the clock used for the greeting; time.Now when nil.
	Now func() time.Time
}

type handler struct {
	widget *widget.Widget
	opts   Options
}

// RegisterRoutes wires the widget controls into the Fiber app.
func RegisterRoutes(app *fiber.App, w *widget.Widget, opts Options) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := &handler{widget: w, opts: opts}

	v1 := app.Group("/api/v1/widget")

	v1.Get("/", func(c *fiber.Ctx) error {
		return h.respond(c, w.View())
	})

	v1.Get("/text", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(render.Text(w.View(), h.opts.Now(), h.opts.TimeZone))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"history": w.View().History,
		})
	})

	v1.Put("/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		return h.respond(c, w.SetInput(req.Text))
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}

		ctx, cancel := h.operationContext(c)
		defer cancel()

		// Without a city this is the form's submit button.
		if strings.TrimSpace(req.City) == "" {
			return h.respond(c, w.Submit(ctx))
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return h.respond(c, w.Search(ctx, req.City))
	})

	v1.Post("/location", func(c *fiber.Ctx) error {
		ctx, cancel := h.operationContext(c)
		defer cancel()
		return h.respond(c, w.UseLocation(ctx))
	})

	v1.Post("/recent/:index", func(c *fiber.Ctx) error {
		idx, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}

		ctx, cancel := h.operationContext(c)
		defer cancel()

		view, err := w.SelectRecent(ctx, idx)
		if err != nil {
			if errors.Is(err, widget.ErrNoSuchEntry) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return err
		}
		return h.respond(c, view)
	})

	v1.Post("/units/toggle", func(c *fiber.Ctx) error {
		return h.respond(c, w.ToggleUnits())
	})

	v1.Post("/details/toggle", func(c *fiber.Ctx) error {
		return h.respond(c, w.ToggleDetails())
	})
}

// widgetResponse carries the raw view plus its formatted rendering.
type widgetResponse struct {
	View    widget.View    `json:"view"`
	Display render.Display `json:"display"`
}

func (h *handler) respond(c *fiber.Ctx, v widget.View) error {
	return c.JSON(widgetResponse{
		View:    v,
		Display: render.Build(v, h.opts.Now(), h.opts.TimeZone),
	})
}

func (h *handler) operationContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	ctx := c.UserContext()
	if h.opts.OperationTimeout > 0 {
		return context.WithTimeout(ctx, h.opts.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

// inputRequest is the body of PUT /input.
type inputRequest struct {
	Text string `json:"text"`
}

// searchRequest is the body of POST /search.
type searchRequest struct {
	City string `json:"city" validate:"required,max=100"`
}
