// Package bot drives the try-on wizard over Telegram: a chat is a session,
// photos feed the model/garment steps, and text at the garment step becomes a
// generation prompt.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ai-tryon-studio/internal/history"
	"ai-tryon-studio/internal/telegram"
	"ai-tryon-studio/internal/wizard"
)

type Options struct {
	Telegram *telegram.Client
	Logger   *slog.Logger
}

type Handler struct {
	tg      *telegram.Client
	wizards *wizard.Store
	logger  *slog.Logger
}

func New(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		tg:     opts.Telegram,
		logger: logger,
	}
}

// SetWizards wires the machine store after construction; the store's factory
// needs the handler for its change notifications.
func (h *Handler) SetWizards(s *wizard.Store) {
	h.wizards = s
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (h *Handler) machine(chatID int64) *wizard.Machine {
	return h.wizards.Get(chatKey(chatID))
}

func (h *Handler) HandleUpdate(ctx context.Context, update telegram.Update) error {
	if update.Message == nil {
		return nil
	}

	msg := update.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		return h.handleCommand(ctx, chatID, msg)
	}

	if len(msg.Photo) > 0 {
		return h.handlePhoto(ctx, chatID, msg)
	}

	if strings.TrimSpace(msg.Text) != "" {
		return h.handleText(ctx, chatID, msg.Text)
	}

	return nil
}

func (h *Handler) handleCommand(ctx context.Context, chatID int64, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "reset":
		h.wizards.Reset(chatKey(chatID))
		return h.tg.SendText(chatID,
			"👗 AI Try-On Studio\n\n"+
				"Send a photo of a person to begin.\n\n"+
				"Commands:\n"+
				"/tryon - generate the try-on\n"+
				"/back - go one step back\n"+
				"/history - list finished try-ons\n"+
				"/restore <n> - bring a finished try-on back\n"+
				"/reset - start over\n"+
				"/help - help",
		)

	case "help":
		return h.tg.SendText(chatID,
			"1. Send a photo of a person.\n"+
				"2. Send a photo of a garment, or describe one in text and I will design it.\n"+
				"3. Send /tryon to see the person wearing it.\n\n"+
				"/history shows earlier results, /restore <n> brings one back.",
		)

	case "tryon":
		m := h.machine(chatID)
		m.BeginTryOn(ctx)
		if m.Snapshot().GeneratingResult {
			h.tg.SendTyping(chatID)
			return h.tg.SendText(chatID, "✨ Generating your try-on, hold on...")
		}
		return nil

	case "back":
		m := h.machine(chatID)
		switch m.Snapshot().Step {
		case wizard.StepGenerateResult:
			m.GoToStep(wizard.StepSelectCloth)
			return h.tg.SendText(chatID, "Back to garment selection. Send another garment or /tryon again.")
		case wizard.StepSelectCloth:
			m.GoToStep(wizard.StepSelectPerson)
			return h.tg.SendText(chatID, "Back to model selection. Send a new person photo.")
		}
		return nil

	case "history":
		return h.sendHistory(chatID)

	case "restore":
		return h.restore(chatID, msg.CommandArguments())

	default:
		return h.tg.SendText(chatID, "Unknown command, see /help.")
	}
}

func (h *Handler) handlePhoto(ctx context.Context, chatID int64, msg *tgbotapi.Message) error {
	// The last photo size is the largest one.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	data, mimeType, err := h.tg.DownloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error("photo download failed", "err", err)
		return h.tg.SendText(chatID, "❌ Could not download that photo, please resend it.")
	}

	m := h.machine(chatID)
	if m.Snapshot().Step == wizard.StepSelectPerson {
		if err := m.UploadPerson(ctx, data, mimeType); err != nil {
			return h.tg.SendText(chatID, "❌ That file does not look like an image.")
		}
		return h.tg.SendText(chatID, "📸 Model saved. Now send a garment photo, or describe one in text.")
	}

	if err := m.UploadCloth(ctx, data, mimeType); err != nil {
		return h.tg.SendText(chatID, "❌ That file does not look like an image.")
	}
	return h.tg.SendText(chatID, "👕 Garment saved. Send /tryon to see the result.")
}

func (h *Handler) handleText(ctx context.Context, chatID int64, text string) error {
	m := h.machine(chatID)

	if m.Snapshot().Step == wizard.StepSelectPerson {
		return h.tg.SendText(chatID, "Send a photo of a person first.")
	}

	m.SetClothPrompt(text)
	m.GenerateCloth(ctx)
	if m.Snapshot().GeneratingCloth {
		h.tg.SendTyping(chatID)
		return h.tg.SendText(chatID, "🎨 Designing your garment...")
	}
	return nil
}

func (h *Handler) sendHistory(chatID int64) error {
	m := h.machine(chatID)

	var lines []string
	n := 0
	for item := range m.History().All() {
		n++
		lines = append(lines, fmt.Sprintf("%d. %s", n, item.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	if n == 0 {
		return h.tg.SendText(chatID, "No finished try-ons yet.")
	}

	return h.tg.SendText(chatID, "Finished try-ons (newest first):\n"+strings.Join(lines, "\n")+"\n\nUse /restore <n> to bring one back.")
}

func (h *Handler) restore(chatID int64, args string) error {
	idx, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || idx < 1 {
		return h.tg.SendText(chatID, "Usage: /restore <n>, see /history for the numbers.")
	}

	m := h.machine(chatID)
	var target history.Item
	n := 0
	for item := range m.History().All() {
		n++
		if n == idx {
			target = item
			break
		}
	}
	if target.ID == "" {
		return h.tg.SendText(chatID, "No such entry, see /history.")
	}

	m.Restore(target.ID)
	return h.tg.SendPhotoDataURL(chatID, target.ResultImage, "Restored from history.")
}
