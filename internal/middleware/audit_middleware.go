package middleware

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// AuditSink receives the serialized record of a completed request. The
// RabbitMQ client satisfies this; a nil sink means log-only auditing.
type AuditSink interface {
	PublishAuditEvent(body []byte) error
}

// AuditRecord captures the outcome of one handled request.
type AuditRecord struct {
	Message    string `json:"message"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	User       string `json:"user"`
	StatusCode int    `json:"statusCode"`
	IP         string `json:"ip"`
	Body       string `json:"body,omitempty"`
	Duration   string `json:"duration"`
	Time       string `json:"time"`
}

// Audit emits one record per completed request: method, URL, resolved
// user (or "Unauthenticated"), status, client IP, duration and, for
// non-GET requests, the request body. Records always go to the log;
// when a sink is configured they are mirrored there too.
func Audit(sink AuditSink) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Body must be captured before handlers consume it.
		var body string
		if c.Method() != fiber.MethodGet {
			body = string(c.Body())
		}

		emit := func(statusCode int) {
			user := "Unauthenticated"
			if email, ok := c.Locals("user_email").(string); ok && email != "" {
				user = email
			}

			record := AuditRecord{
				Message:    "Handled Request",
				Method:     c.Method(),
				URL:        c.OriginalURL(),
				User:       user,
				StatusCode: statusCode,
				IP:         c.IP(),
				Body:       body,
				Duration:   time.Since(start).String(),
				Time:       time.Now().UTC().Format(time.RFC3339),
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				log.Printf("Failed to marshal audit record: %v", marshalErr)
				return
			}

			log.Printf("audit: %s", payload)

			if sink != nil {
				if pubErr := sink.PublishAuditEvent(payload); pubErr != nil {
					log.Printf("Warning: failed to publish audit event: %v", pubErr)
				}
			}
		}

		// A panicking handler must still leave a record. The recovery
		// middleware owns the 500 response, so record the outcome here
		// and hand the panic back to it.
		defer func() {
			if r := recover(); r != nil {
				emit(fiber.StatusInternalServerError)
				panic(r)
			}
		}()

		err := c.Next()
		emit(c.Response().StatusCode())
		return err
	}
}
