package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"organizer/internal/infrastructure/line"
	"organizer/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LineHandler handles incoming LINE webhook events. Following the bot
// registers the user as the reminder recipient; unfollowing revokes it.
type LineHandler struct {
	lineClient *line.Client
	log        logger.Logger
}

// NewLineHandler creates a new LineHandler.
func NewLineHandler(lineClient *line.Client, log logger.Logger) *LineHandler {
	return &LineHandler{
		lineClient: lineClient,
		log:        log,
	}
}

// HandleWebhook is the main entry point for webhook requests.
func (h *LineHandler) HandleWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	events, err := h.lineClient.ParseRequest(c.Request())
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			h.log.Warn("Invalid LINE signature received")
			return c.String(http.StatusBadRequest, "Invalid signature")
		}
		h.log.Error("Failed to parse LINE webhook request", err)
		return c.String(http.StatusInternalServerError, "Error parsing request")
	}

	for _, event := range events {
		switch event.Type {
		case linebot.EventTypeFollow:
			h.handleFollowEvent(ctx, event)
		case linebot.EventTypeUnfollow:
			h.handleUnfollowEvent(ctx, event)
		default:
			h.log.Debug(fmt.Sprintf("Unhandled event type: %s", event.Type))
		}
	}

	return c.String(http.StatusOK, "OK")
}

func (h *LineHandler) handleFollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s followed the bot.", userID))

	if err := h.lineClient.SetRecipient(ctx, userID); err != nil {
		h.log.Error(fmt.Sprintf("Failed to register %s as reminder recipient", userID), err)
		return
	}

	welcome := linebot.NewTextMessage("Reminders from your organizer will be delivered here.")
	if err := h.lineClient.SendMessages(event.ReplyToken, welcome); err != nil {
		h.log.Error(fmt.Sprintf("Failed to send follow reply to user %s", userID), err)
	}
}

func (h *LineHandler) handleUnfollowEvent(ctx context.Context, event *linebot.Event) {
	userID := event.Source.UserID
	h.log.Info(fmt.Sprintf("User %s unfollowed or blocked the bot.", userID))

	current, err := h.lineClient.Recipient(ctx)
	if err != nil {
		h.log.Error("Failed to read reminder recipient", err)
		return
	}
	if current != userID {
		return
	}
	if err := h.lineClient.ClearRecipient(ctx); err != nil {
		h.log.Error(fmt.Sprintf("Failed to clear reminder recipient %s", userID), err)
	}
}
