package server

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"hashhaven/aggregator"
	"hashhaven/cms"
	"hashhaven/contact"
	"hashhaven/logger"
	"hashhaven/providers"
)

// Payments is the orchestrator surface the payment routes need.
type Payments interface {
	Pay(ctx context.Context, req providers.PaymentRequest) (*providers.Result, error)
	Status(ctx context.Context, method providers.Method, transactionID string) (*providers.StatusResult, error)
}

type Callbacks interface {
	Handle(body []byte) aggregator.CallbackOutcome
}

type Contacts interface {
	Submit(ctx context.Context, s contact.Submission) (contact.Receipt, error)
}

type Blog interface {
	List(ctx context.Context, page, perPage int) cms.Listing
	Search(ctx context.Context, query string) cms.Listing
	Category(ctx context.Context, categoryID int) cms.Listing
	Article(ctx context.Context, slug string) cms.Article
	Status(ctx context.Context) cms.Status
}

type Deps struct {
	Payments  Payments
	Callbacks Callbacks
	Contacts  Contacts
	Blog      Blog
}

const (
	// maxBodySize caps form and payment bodies.
	maxBodySize = 256 * 1024
	// maxCallbackBodySize is the server-wide limit. Only the M-Pesa callback
	// may use all of it, since it has to be acknowledged whatever it holds.
	maxCallbackBodySize = 4 * 1024 * 1024
)

type Router struct {
	App *fiber.App

	payments  Payments
	callbacks Callbacks
	contacts  Contacts
	blog      Blog
}

func NewRouter(d Deps) *Router {
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           60 * time.Second,
		BodyLimit:             maxCallbackBodySize,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())

	return &Router{
		App:       app,
		payments:  d.Payments,
		callbacks: d.Callbacks,
		contacts:  d.Contacts,
		blog:      d.Blog,
	}
}

func (r *Router) RegisterRoutes() {
	r.App.Get("/health", r.HealthCheck)

	r.App.Post("/contact", limitBody(maxBodySize), r.Contact)

	r.App.Post("/payment", limitBody(maxBodySize), r.CreatePayment)
	r.App.Get("/payment", r.PaymentStatus)
	r.App.Post("/payment/callback", r.PaymentCallback)

	r.App.Get("/blog", r.BlogList)
	r.App.Get("/blog/search", r.BlogSearch)
	r.App.Get("/blog/category/:id", r.BlogCategory)
	r.App.Get("/blog/:slug", r.BlogArticle)
	r.App.Get("/cms/status", r.CMSStatus)
}

func (r *Router) Listen(addr string) error {
	return r.App.Listen(addr)
}

func (r *Router) Shutdown(ctx context.Context) error {
	return r.App.ShutdownWithContext(ctx)
}

func (r *Router) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func limitBody(n int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) > n {
			return fiber.ErrRequestEntityTooLarge
		}
		return c.Next()
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
