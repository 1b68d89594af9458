// Package telegram adapts the Telegram long-polling transport to the intake
// pipeline. It owns nothing durable: the polling offset lives in the ledger
// so a restart resumes exactly where the last admitted delivery left off.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/fedev23/RAG-assistant/internal/domain"
)

// Handler processes one mapped update and returns the reply to send. An
// empty reply means nothing is sent.
type Handler interface {
	HandleUpdate(ctx context.Context, upd domain.Update) (string, error)
}

// Offsets is the slice of the ledger the poller needs: where to resume, and
// a way to mark non-text updates as seen so they are never redelivered.
type Offsets interface {
	NextOffset(ctx context.Context) (int64, error)
	Admit(ctx context.Context, deliveryID int64) (bool, error)
}

// api is the part of tgbotapi.BotAPI the poller uses.
type api interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Poller long-polls Telegram and feeds text messages into the handler.
type Poller struct {
	bot     api
	handler Handler
	offsets Offsets
	timeout int
	log     zerolog.Logger
}

// NewPoller authenticates against the Bot API and builds a poller.
func NewPoller(token string, handler Handler, offsets Offsets, log zerolog.Logger) (*Poller, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram.NewPoller: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("authorized on telegram")
	return newPoller(bot, handler, offsets, log), nil
}

func newPoller(bot api, handler Handler, offsets Offsets, log zerolog.Logger) *Poller {
	return &Poller{
		bot:     bot,
		handler: handler,
		offsets: offsets,
		timeout: 30,
		log:     log,
	}
}

// Run polls until the context is canceled. It resumes from the persisted
// offset, so updates already admitted are not requested again.
func (p *Poller) Run(ctx context.Context) error {
	offset, err := p.offsets.NextOffset(ctx)
	if err != nil {
		return fmt.Errorf("telegram: read resume offset: %w", err)
	}

	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = p.timeout
	updates := p.bot.GetUpdatesChan(cfg)

	p.log.Info().Int64("offset", offset).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.handle(ctx, update)
		}
	}
}

func (p *Poller) handle(ctx context.Context, update tgbotapi.Update) {
	// Stickers, edits, joins and other non-text updates are marked seen so
	// the cursor moves past them, but never reach the pipeline.
	if update.Message == nil || update.Message.Text == "" {
		if _, err := p.offsets.Admit(ctx, int64(update.UpdateID)); err != nil {
			p.log.Error().Err(err).Int("update_id", update.UpdateID).
				Msg("failed to mark non-text update as seen")
		}
		return
	}

	upd := domain.Update{
		DeliveryID: int64(update.UpdateID),
		ChatID:     update.Message.Chat.ID,
		Text:       update.Message.Text,
		ReceivedAt: time.Unix(int64(update.Message.Date), 0),
	}
	if update.Message.From != nil {
		upd.Sender = update.Message.From.UserName
	}

	reply, err := p.handler.HandleUpdate(ctx, upd)
	if err != nil {
		p.log.Error().Err(err).
			Int64("delivery_id", upd.DeliveryID).
			Int64("chat_id", upd.ChatID).
			Msg("update processing failed")
	}
	if reply == "" {
		return
	}

	if _, err := p.bot.Send(tgbotapi.NewMessage(upd.ChatID, reply)); err != nil {
		p.log.Error().Err(err).
			Int64("chat_id", upd.ChatID).
			Msg("failed to send reply")
	}
}
