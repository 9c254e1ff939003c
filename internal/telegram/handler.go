package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/canilaba/internal/common"
	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

var validate = validator.New()

// Messenger is the subset of the Telegram Bot API the handler uses.
// *bot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	EditMessageReplyMarkup(ctx context.Context, params *bot.EditMessageReplyMarkupParams) (*models.Message, error)
}

// Forecaster answers the laundry questions for a location.
type Forecaster interface {
	Now(ctx context.Context, coords weather.Coordinates, ref time.Time) (weather.NowResult, error)
	Today(ctx context.Context, coords weather.Coordinates, today time.Time) (weather.TodayResult, error)
}

// Config configures the chat handler.
type Config struct {
	// Username is the bot's @name; group messages must mention it.
	Username           string
	DefaultCoordinates weather.Coordinates
	Location           *time.Location
}

// Handler routes Telegram updates to the laundry commands.
type Handler struct {
	msgr       Messenger
	store      users.Store
	forecaster Forecaster
	geocoder   weather.Geocoder
	cfg        Config
	sessions   *sessions
	now        func() time.Time
	log        logrus.FieldLogger
}

// NewHandler creates a Handler. The messenger may be set later with
// SetMessenger once the bot client exists.
func NewHandler(cfg Config, store users.Store, forecaster Forecaster, geocoder weather.Geocoder, log logrus.FieldLogger) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		store:      store,
		forecaster: forecaster,
		geocoder:   geocoder,
		cfg:        cfg,
		sessions:   newSessions(),
		now:        time.Now,
		log:        log.WithField("component", "telegram"),
	}
}

// SetMessenger sets the client used to reply.
func (h *Handler) SetMessenger(m Messenger) {
	h.msgr = m
}

// HandleUpdate processes a single update. It matches bot.HandlerFunc.
func (h *Handler) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if err := h.handle(ctx, update); err != nil {
		h.log.WithError(err).WithField("update_id", update.ID).Error("failed to handle update")
	}
}

func (h *Handler) handle(ctx context.Context, update *models.Update) error {
	if update.CallbackQuery != nil {
		return h.handleCallback(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 {
		return nil
	}

	if msg.Location != nil {
		return h.handleLocation(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	if isGroup(msg.Chat) {
		if !common.HasAny(text, h.cfg.Username) {
			return nil
		}
		text = common.StripAll(text, h.cfg.Username)
	}

	h.log.WithFields(logrus.Fields{
		"chat_id":   msg.Chat.ID,
		"chat_type": msg.Chat.Type,
	}).Debugf("message: %q", text)

	if strings.HasPrefix(text, "/") {
		return h.handleCommand(ctx, msg, text)
	}
	return h.handleText(ctx, msg, text)
}

func isGroup(chat models.Chat) bool {
	return chat.Type == "group" || chat.Type == "supergroup"
}

// splitCommand returns the command name without the @bot suffix and its
// argument text.
func splitCommand(text string) (string, string) {
	name, args, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name), strings.TrimSpace(args)
}

func userID(msg *models.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}

func (h *Handler) handleCommand(ctx context.Context, msg *models.Message, text string) error {
	chatID := msg.Chat.ID
	name, args := splitCommand(text)

	switch name {
	case "/start":
		return h.handleStart(ctx, msg)
	case "/help":
		return h.send(ctx, chatID, helpText)
	case "/now":
		return h.handleNow(ctx, msg)
	case "/today":
		return h.handleToday(ctx, msg)
	case "/setlocation":
		return h.handleSetLocation(ctx, msg, args)
	case "/setlaundrydays":
		return h.handleSetLaundryDays(ctx, msg)
	case "/mydays", "/settings":
		return h.handleMyDays(ctx, msg)
	case "/stop":
		return h.handleStop(ctx, msg)
	case "/cancel":
		h.sessions.reset(chatID)
		return h.sendWithMarkup(ctx, chatID, "Okay, cancelled.", &models.ReplyKeyboardRemove{RemoveKeyboard: true})
	default:
		return h.send(ctx, chatID, "Unknown command. Use /help to see available commands.")
	}
}

func (h *Handler) handleStart(ctx context.Context, msg *models.Message) error {
	if _, err := h.store.CreateUser(ctx, userID(msg), msg.Chat.ID); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return h.send(ctx, msg.Chat.ID, startText)
}

func (h *Handler) handleNow(ctx context.Context, msg *models.Message) error {
	coords := h.coordinatesFor(ctx, userID(msg))

	res, err := h.forecaster.Now(ctx, coords, h.now().In(h.cfg.Location))
	if err != nil {
		h.log.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("now failed")
		return h.send(ctx, msg.Chat.ID, forecastErrorText(err))
	}
	return h.send(ctx, msg.Chat.ID, weather.FormatNow(res))
}

func (h *Handler) handleToday(ctx context.Context, msg *models.Message) error {
	coords := h.coordinatesFor(ctx, userID(msg))

	res, err := h.forecaster.Today(ctx, coords, h.now().In(h.cfg.Location))
	if err != nil {
		h.log.WithError(err).WithField("chat_id", msg.Chat.ID).Warn("today failed")
		return h.send(ctx, msg.Chat.ID, forecastErrorText(err))
	}
	return h.send(ctx, msg.Chat.ID, weather.FormatToday(res))
}

// coordinatesFor returns the user's stored location or the default one.
func (h *Handler) coordinatesFor(ctx context.Context, id int64) weather.Coordinates {
	coords, err := h.store.GetCoordinates(ctx, id)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		h.log.WithError(err).WithField("user_id", id).Warn("could not load coordinates")
	}
	if coords == nil {
		return h.cfg.DefaultCoordinates
	}
	return *coords
}

func forecastErrorText(err error) string {
	switch {
	case errors.Is(err, weather.ErrTimeNotFound), errors.Is(err, weather.ErrSeriesMisaligned):
		return "The forecast is not ready yet. Try again in a few minutes."
	case errors.Is(err, weather.ErrSourceUnavailable):
		return "I couldn't reach the weather service. Try again later."
	default:
		return "Something went wrong while checking the weather."
	}
}

func (h *Handler) handleSetLocation(ctx context.Context, msg *models.Message, args string) error {
	if args != "" {
		return h.setLocationByName(ctx, msg, args)
	}

	h.sessions.set(msg.Chat.ID, session{state: stateAwaitingLocation, owner: userID(msg)})
	return h.sendWithMarkup(ctx, msg.Chat.ID,
		"Share your location with the button below, or type the name of your city. Send /cancel to stop.",
		locationKeyboard())
}

// handleLocation stores a shared location. In groups only the user who ran
// /setlocation is listened to.
func (h *Handler) handleLocation(ctx context.Context, msg *models.Message) error {
	if isGroup(msg.Chat) && !h.sessions.get(msg.Chat.ID).awaiting(stateAwaitingLocation, userID(msg)) {
		return nil
	}
	coords := weather.Coordinates{Longitude: msg.Location.Longitude, Latitude: msg.Location.Latitude}
	return h.saveLocation(ctx, msg, coords, "")
}

func (h *Handler) setLocationByName(ctx context.Context, msg *models.Message, name string) error {
	if h.geocoder == nil {
		return h.send(ctx, msg.Chat.ID, "Looking up places is not available. Please share your location instead.")
	}

	place, err := h.geocoder.Geocode(ctx, name)
	if errors.Is(err, weather.ErrPlaceNotFound) {
		return h.send(ctx, msg.Chat.ID, fmt.Sprintf("I couldn't find %q. Try another name or share your location.", name))
	}
	if err != nil {
		h.log.WithError(err).Warn("geocoding failed")
		return h.send(ctx, msg.Chat.ID, forecastErrorText(err))
	}

	label := place.Name
	if place.Country != "" {
		label += ", " + place.Country
	}
	return h.saveLocation(ctx, msg, place.Coordinates(), label)
}

func (h *Handler) saveLocation(ctx context.Context, msg *models.Message, coords weather.Coordinates, label string) error {
	if err := validate.Struct(coords); err != nil {
		return h.send(ctx, msg.Chat.ID, "That location doesn't look right. Please try again.")
	}
	if err := h.store.SetCoordinates(ctx, userID(msg), coords); err != nil {
		return fmt.Errorf("set coordinates: %w", err)
	}
	h.sessions.reset(msg.Chat.ID)

	if label == "" {
		label = coords.String()
	}
	return h.sendWithMarkup(ctx, msg.Chat.ID,
		fmt.Sprintf("Location set to %s. Try /now or /today.", label),
		&models.ReplyKeyboardRemove{RemoveKeyboard: true})
}

func (h *Handler) handleSetLaundryDays(ctx context.Context, msg *models.Message) error {
	days, err := h.store.GetLaundryDays(ctx, userID(msg))
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return fmt.Errorf("get laundry days: %w", err)
	}

	h.sessions.set(msg.Chat.ID, session{state: stateChoosingDays, owner: userID(msg), draft: days})
	return h.sendWithMarkup(ctx, msg.Chat.ID,
		"Pick your laundry days. I'll tell you in the morning whether the clothes will dry.",
		daysKeyboard(days))
}

func (h *Handler) handleMyDays(ctx context.Context, msg *models.Message) error {
	u, err := h.store.GetUser(ctx, userID(msg))
	if errors.Is(err, users.ErrUserNotFound) {
		return h.send(ctx, msg.Chat.ID, "You have no settings yet. Use /setlaundrydays and /setlocation.")
	}
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	location := "default (" + h.cfg.DefaultCoordinates.String() + ")"
	if u.Coordinates != nil {
		location = u.Coordinates.String()
	}
	return h.send(ctx, msg.Chat.ID, fmt.Sprintf("Laundry days: %s\nLocation: %s", u.LaundryDays.Display(), location))
}

func (h *Handler) handleStop(ctx context.Context, msg *models.Message) error {
	if err := h.store.DeleteUser(ctx, userID(msg)); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	h.sessions.reset(msg.Chat.ID)
	return h.send(ctx, msg.Chat.ID, "Your settings were deleted. You will not get laundry day reminders anymore.")
}

func (h *Handler) handleText(ctx context.Context, msg *models.Message, text string) error {
	if h.sessions.get(msg.Chat.ID).awaiting(stateAwaitingLocation, userID(msg)) && text != "" {
		return h.setLocationByName(ctx, msg, text)
	}
	return h.send(ctx, msg.Chat.ID, "I work best with commands. Try /now, /today or /help.")
}

func (h *Handler) handleCallback(ctx context.Context, cq *models.CallbackQuery) error {
	defer func() {
		if h.msgr == nil {
			return
		}
		if _, err := h.msgr.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
			h.log.WithError(err).Debug("answer callback failed")
		}
	}()

	msg := cq.Message.Message
	if msg == nil {
		return nil
	}
	chatID := msg.Chat.ID
	sess := h.sessions.get(chatID)

	switch cq.Data {
	case callbackSave:
		if !sess.awaiting(stateChoosingDays, cq.From.ID) {
			return nil
		}
		if err := h.store.SetLaundryDays(ctx, cq.From.ID, sess.draft); err != nil {
			return fmt.Errorf("set laundry days: %w", err)
		}
		h.sessions.reset(chatID)
		return h.send(ctx, chatID, "Laundry days set: "+sess.draft.Display())
	case callbackCancel:
		if !sess.awaiting(stateChoosingDays, cq.From.ID) {
			return nil
		}
		h.sessions.reset(chatID)
		return h.send(ctx, chatID, "Okay, your laundry days were not changed.")
	}

	day, err := parseDayCallback(cq.Data)
	if err != nil {
		return err
	}
	draft, ok := h.sessions.toggle(chatID, cq.From.ID, day)
	if !ok {
		return nil
	}
	_, err = h.msgr.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   msg.ID,
		ReplyMarkup: daysKeyboard(draft),
	})
	return err
}

// Notify sends text to chatID. It lets the scheduler deliver reminders.
func (h *Handler) Notify(ctx context.Context, chatID int64, text string) error {
	return h.send(ctx, chatID, text)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) error {
	return h.sendWithMarkup(ctx, chatID, text, nil)
}

func (h *Handler) sendWithMarkup(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	if h.msgr == nil {
		return fmt.Errorf("telegram bot not available")
	}

	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := h.msgr.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

const startText = `Hi! I tell you whether it's a good time to laba (do the laundry).

/now - can I laba right now?
/today - can I laba today?
/setlocation - set where you hang your clothes
/setlaundrydays - pick days for a morning reminder
/help - show all commands`

const helpText = `Commands:

/now - check the next few hours (06:00 to 15:00 only)
/today - check this morning and noon
/setlocation [place] - share your location or type a place name
/setlaundrydays - choose the days you get a morning reminder
/mydays - show your laundry days and location
/stop - delete your settings
/cancel - cancel the current step`
