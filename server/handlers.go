package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"hashhaven/cms"
	"hashhaven/contact"
	"hashhaven/logger"
	"hashhaven/providers"
)

// callbackAck is the only answer M-Pesa ever gets; anything else makes it
// redeliver.
var callbackAck = fiber.Map{"ResultCode": 0, "ResultDesc": "Success"}

func (r *Router) Contact(c *fiber.Ctx) error {
	var sub contact.Submission
	if err := json.Unmarshal(c.Body(), &sub); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	receipt, err := r.contacts.Submit(c.UserContext(), sub)
	if errors.Is(err, contact.ErrMissingFields) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields",
		})
	}
	if err != nil {
		logger.Error("Contact form error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send message. Please try again.",
		})
	}

	return c.JSON(fiber.Map{
		"success":               true,
		"message":               "Message sent successfully! We'll get back to you within 24 hours.",
		"confirmationEmailSent": receipt.CustomerAcknowledged,
	})
}

func (r *Router) CreatePayment(c *fiber.Ctx) error {
	var req providers.PaymentRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	res, err := r.payments.Pay(c.UserContext(), req)
	if err != nil {
		return paymentError(c, err, "Payment processing failed")
	}
	return c.JSON(res)
}

func (r *Router) PaymentStatus(c *fiber.Ctx) error {
	method := providers.Method(c.Query("method"))
	res, err := r.payments.Status(c.UserContext(), method, c.Query("transaction_id"))
	if err != nil {
		var pe *providers.PaymentError
		if errors.As(err, &pe) {
			return c.Status(pe.StatusCode()).JSON(fiber.Map{"error": pe.Message})
		}
		logger.Error("Payment status error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to get payment status"})
	}
	return c.JSON(res)
}

func (r *Router) PaymentCallback(c *fiber.Ctx) error {
	out := r.callbacks.Handle(c.Body())
	if out.Err != nil {
		logger.Debug("Acknowledged unreadable callback from %s", c.IP())
	}
	return c.JSON(callbackAck)
}

// paymentError maps a PaymentError onto the response shape of POST /payment.
// Client errors carry their message; anything else gets the generic one.
func paymentError(c *fiber.Ctx, err error, generic string) error {
	var pe *providers.PaymentError
	if errors.As(err, &pe) && pe.StatusCode() < fiber.StatusInternalServerError {
		return c.Status(pe.StatusCode()).JSON(fiber.Map{
			"success": false,
			"message": pe.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   generic,
	})
}

func (r *Router) BlogList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", cms.DefaultPerPage)
	return c.JSON(r.blog.List(c.UserContext(), page, perPage))
}

func (r *Router) BlogSearch(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search query required"})
	}
	return c.JSON(r.blog.Search(c.UserContext(), q))
}

func (r *Router) BlogCategory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid category id"})
	}
	return c.JSON(r.blog.Category(c.UserContext(), id))
}

func (r *Router) BlogArticle(c *fiber.Ctx) error {
	return c.JSON(r.blog.Article(c.UserContext(), c.Params("slug")))
}

func (r *Router) CMSStatus(c *fiber.Ctx) error {
	return c.JSON(r.blog.Status(c.UserContext()))
}
