// Package notify posts booking changes to an operations chat.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"equipbook/internal/config"
	"equipbook/internal/domain"
	"equipbook/internal/events"
	"equipbook/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const lookupTimeout = 10 * time.Second

// Directory resolves ids to display names. Optional.
type Directory interface {
	ActivePeople(ctx context.Context) ([]models.Person, error)
	ActiveEquipment(ctx context.Context) ([]models.Equipment, error)
}

type notice struct {
	eventType string
	booking   events.BookingEventPayload
}

// TelegramNotifier queues booking events and sends one chat message each
// from its own goroutine, so publishers never wait on Telegram.
type TelegramNotifier struct {
	sender    domain.TelegramSender
	chatID    int64
	directory Directory
	queue     chan notice
	logger    *zerolog.Logger
}

// NewBot connects to the Bot API.
func NewBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}

func NewTelegramNotifier(sender domain.TelegramSender, chatID int64, directory Directory, logger *zerolog.Logger) *TelegramNotifier {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "notifier").Logger()

	return &TelegramNotifier{
		sender:    sender,
		chatID:    chatID,
		directory: directory,
		queue:     make(chan notice, models.NotifyQueueSize),
		logger:    &l,
	}
}

// Subscribe attaches the notifier to every booking event on the bus.
func (n *TelegramNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(n.Handle, events.BookingTypes...)
}

// Handle is the event bus handler. A full queue drops the notice.
func (n *TelegramNotifier) Handle(ev *events.Event) error {
	var payload events.BookingEventPayload
	if err := ev.Decode(&payload); err != nil {
		return err
	}

	select {
	case n.queue <- notice{eventType: ev.Type, booking: payload}:
	default:
		n.logger.Warn().Str("event", ev.Type).Str("booking_id", payload.BookingID).Msg("notify queue full, dropping")
	}
	return nil
}

// Start sends queued notices until ctx is done.
func (n *TelegramNotifier) Start(ctx context.Context) {
	n.logger.Info().Int64("chat_id", n.chatID).Msg("notifier started")
	defer n.logger.Info().Msg("notifier stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-n.queue:
			n.send(ctx, item)
		}
	}
}

func (n *TelegramNotifier) send(ctx context.Context, item notice) {
	equipment, person := n.names(ctx, item.booking)
	msg := tgbotapi.NewMessage(n.chatID, FormatMessage(item.eventType, item.booking, equipment, person))
	msg.DisableWebPagePreview = true

	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).
			Str("event", item.eventType).
			Str("booking_id", item.booking.BookingID).
			Msg("failed to send notification")
	}
}

// names falls back to the raw ids when the directory is missing or fails.
func (n *TelegramNotifier) names(ctx context.Context, b events.BookingEventPayload) (string, string) {
	equipment, person := b.EquipmentID, b.PersonID
	if n.directory == nil || (equipment == "" && person == "") {
		return equipment, person
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	if items, err := n.directory.ActiveEquipment(ctx); err != nil {
		n.logger.Debug().Err(err).Msg("equipment lookup failed")
	} else {
		for _, e := range items {
			if e.ID == b.EquipmentID {
				equipment = e.Name
				if e.AssetNumber != "" {
					equipment = fmt.Sprintf("%s (%s)", e.Name, e.AssetNumber)
				}
				break
			}
		}
	}

	if people, err := n.directory.ActivePeople(ctx); err != nil {
		n.logger.Debug().Err(err).Msg("people lookup failed")
	} else {
		for _, p := range people {
			if p.ID == b.PersonID {
				person = p.FullName
				break
			}
		}
	}
	return equipment, person
}

// FormatMessage renders the chat text for a booking event.
func FormatMessage(eventType string, b events.BookingEventPayload, equipment, person string) string {
	var sb strings.Builder
	switch eventType {
	case events.EventBookingCreated:
		sb.WriteString("New booking")
	case events.EventBookingUpdated:
		sb.WriteString("Booking changed")
	case events.EventBookingDeleted:
		sb.WriteString("Booking deleted")
	default:
		sb.WriteString(eventType)
	}

	if equipment != "" {
		fmt.Fprintf(&sb, "\nEquipment: %s", equipment)
	}
	if person != "" {
		fmt.Fprintf(&sb, "\nPerson: %s", person)
	}
	if b.StartDate != "" {
		if b.StartDate == b.EndDate || b.EndDate == "" {
			fmt.Fprintf(&sb, "\nDate: %s", b.StartDate)
		} else {
			fmt.Fprintf(&sb, "\nDates: %s to %s", b.StartDate, b.EndDate)
		}
	}
	if b.Note != "" {
		fmt.Fprintf(&sb, "\nNote: %s", b.Note)
	}
	fmt.Fprintf(&sb, "\nID: %s", b.BookingID)
	return sb.String()
}
