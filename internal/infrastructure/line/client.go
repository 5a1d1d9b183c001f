package line

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"organizer/internal/domain/constant"
	"organizer/internal/domain/entity"
	"organizer/internal/domain/repository"
	appErrors "organizer/internal/pkg/errors"
	"organizer/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// recipientKey holds the LINE user that receives pushed reminders.
const recipientKey = "line_recipient"

// Client wraps the linebot.Client and delivers reminders as push messages.
type Client struct {
	*linebot.Client
	store            repository.KeyValueStore
	defaultRecipient string
	log              logger.Logger
}

// NewClient creates a LINE Bot client. defaultRecipient is used until a user
// follows the bot. opts are passed to linebot.New.
func NewClient(channelSecret, channelToken, defaultRecipient string, store repository.KeyValueStore, log logger.Logger, opts ...linebot.ClientOption) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("%w: channel secret and access token are required", appErrors.ErrLineAPI)
	}

	bot, err := linebot.New(channelSecret, channelToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErrors.ErrLineAPI, err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client:           bot,
		store:            store,
		defaultRecipient: defaultRecipient,
		log:              log,
	}, nil
}

// Recipient returns the user that currently receives reminders.
func (c *Client) Recipient(ctx context.Context) (string, error) {
	v, found, err := c.store.Get(ctx, recipientKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	if found {
		return v, nil
	}
	return c.defaultRecipient, nil
}

// SetRecipient stores the user that receives reminders.
func (c *Client) SetRecipient(ctx context.Context, userID string) error {
	if err := c.store.Set(ctx, recipientKey, userID); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	return nil
}

// ClearRecipient revokes delivery; an empty stored value overrides the default.
func (c *Client) ClearRecipient(ctx context.Context) error {
	if err := c.store.Set(ctx, recipientKey, ""); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrStorage, err)
	}
	return nil
}

// Permission reports granted while a recipient is known.
func (c *Client) Permission(ctx context.Context) constant.Permission {
	to, err := c.Recipient(ctx)
	if err != nil {
		c.log.Error("Failed to read LINE recipient", err)
		return constant.PermissionDenied
	}
	if to == "" {
		return constant.PermissionDenied
	}
	return constant.PermissionGranted
}

// Notify pushes the reminder to the current recipient.
func (c *Client) Notify(ctx context.Context, content entity.NotificationContent) error {
	to, err := c.Recipient(ctx)
	if err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("%w: no recipient registered", appErrors.ErrPermissionDenied)
	}

	text := content.Title
	if content.Body != "" {
		text = strings.TrimSpace(text + "\n" + content.Body)
	}
	if err := c.PushMessages(to, linebot.NewTextMessage(text)); err != nil {
		return fmt.Errorf("%w: %v", appErrors.ErrLineAPI, err)
	}
	return nil
}

// SendMessages sends one or more messages using the ReplyMessage API.
func (c *Client) SendMessages(replyToken string, messages ...linebot.SendingMessage) error {
	_, err := c.ReplyMessage(replyToken, messages...).Do()
	if err != nil {
		return err
	}
	c.log.Debug("Successfully sent reply message.")
	return nil
}

// PushMessages sends one or more messages using the PushMessage API.
func (c *Client) PushMessages(to string, messages ...linebot.SendingMessage) error {
	_, err := c.PushMessage(to, messages...).Do()
	if err != nil {
		return err
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// ParseRequest parses incoming webhook requests.
func (c *Client) ParseRequest(r *http.Request) ([]*linebot.Event, error) {
	return c.Client.ParseRequest(r)
}
