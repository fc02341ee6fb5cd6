package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tienditamx/orderbot/internal/repository"
	"github.com/tienditamx/orderbot/internal/service"
	"github.com/tienditamx/orderbot/internal/whatsapp"
	"github.com/tienditamx/orderbot/pkg/errors"
)

const (
	unknownCustomerReply = "Hola 👋\nGracias por escribirnos.\n\nAún no te tenemos registrado. En un momento alguien del equipo te contactará."
	lookupFailureReply   = "Estamos teniendo problemas técnicos. Inténtalo de nuevo en unos minutos."
)

// HandleWhatsAppWebhook processes an inbound Twilio WhatsApp message. It
// always acks with an empty 200 so Twilio does not retry and duplicate the
// message; the reply itself goes out through the Twilio REST API.
func HandleWhatsAppWebhook(
	repos *repository.Repositories,
	conversation *service.ConversationService,
	sender whatsapp.Sender,
	logger *zap.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Twilio form fields: WaId is the bare number (5213314179343),
		// From carries the whatsapp: prefix
		fromPhone := c.PostForm("WaId")
		fromRaw := c.PostForm("From")
		profileName := c.PostForm("ProfileName")
		body := strings.TrimSpace(c.PostForm("Body"))

		logger.Info("Incoming WhatsApp message",
			zap.String("from", fromPhone),
			zap.String("message_sid", c.PostForm("MessageSid")),
		)

		if fromPhone == "" || fromRaw == "" {
			c.String(http.StatusOK, "")
			return
		}

		customer, err := repos.Customer.GetByPhone(c.Request.Context(), fromPhone)
		if err != nil {
			// Only a confirmed miss gets the onboarding message; an
			// infrastructure failure must not tell a registered customer
			// they are unknown
			if _, ok := err.(*errors.ErrNotFound); ok {
				sendReply(c, sender, fromRaw, unknownCustomerReply, logger)
			} else {
				logger.Error("Customer lookup failed", zap.Error(err))
				sendReply(c, sender, fromRaw, lookupFailureReply, logger)
			}
			c.String(http.StatusOK, "")
			return
		}

		reply, err := conversation.HandleInbound(c.Request.Context(), customer, body)
		if err != nil {
			logger.Error("Failed to handle inbound message", zap.Error(err))
			reply = "No pude procesar tu solicitud."
		}

		greeting := profileName
		if customer.Greeting != nil && *customer.Greeting != "" {
			greeting = *customer.Greeting
		}
		reply = "Hola " + greeting + " 👋\n\n" + reply

		sendReply(c, sender, fromRaw, reply, logger)
		c.String(http.StatusOK, "")
	}
}

func sendReply(c *gin.Context, sender whatsapp.Sender, to, body string, logger *zap.Logger) {
	if err := sender.SendMessage(c.Request.Context(), to, body); err != nil {
		logger.Error("Failed to send WhatsApp reply", zap.Error(err), zap.String("to", to))
	}
}
