package bot

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"platingreport/internal/markdown"
)

const helpText = "/report [sheet ...] 產生報表\n/ask <問題> 詢問模型"

func (b *Bot) handleDefault(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	chatID, ok := b.allowedChat(update)
	if !ok {
		return
	}

	if err := b.sendAll(ctx, chatID, []string{markdown.EscapeV2(helpText)}); err != nil {
		b.log.ErrorContext(ctx, "Failed to send help",
			"error", err,
			"chatID", chatID)
	}
}

func (b *Bot) handleReport(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	chatID, ok := b.allowedChat(update)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	sheets := commandArgs(update.Message.Text)

	results, err := b.svc.Process(ctx, sheets...)
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to process workbook",
			"error", err,
			"chatID", chatID,
			"sheets", sheets)

		if sendErr := b.sendReply(ctx, chatID, "⚠️ 讀取失敗", err.Error()); sendErr != nil {
			b.log.ErrorContext(ctx, "Failed to send error",
				"error", sendErr,
				"chatID", chatID)
		}
		if len(results) == 0 {
			return
		}
	}

	replies := make(map[string]string, len(results))
	if b.svc.CanAnalyze() {
		for _, r := range results {
			replies[r.Sheet] = b.svc.Analyze(ctx, r)
		}
	}

	for _, r := range results {
		if err = b.sendAll(ctx, chatID, Digest(r, replies[r.Sheet])); err != nil {
			b.log.ErrorContext(ctx, "Failed to send digest",
				"error", err,
				"chatID", chatID,
				"sheet", r.Sheet)
		}
	}
}

func (b *Bot) handleAsk(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	chatID, ok := b.allowedChat(update)
	if !ok {
		return
	}

	question := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(update.Message.Text), "/ask"))
	if question == "" {
		if err := b.sendAll(ctx, chatID, []string{markdown.EscapeV2(helpText)}); err != nil {
			b.log.ErrorContext(ctx, "Failed to send help",
				"error", err,
				"chatID", chatID)
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	reply := b.svc.Ask(ctx, question)
	if err := b.sendReply(ctx, chatID, "🧠 回覆", reply); err != nil {
		b.log.ErrorContext(ctx, "Failed to send reply",
			"error", err,
			"chatID", chatID)
	}
}

// allowedChat accepts text messages from the configured chat only.
func (b *Bot) allowedChat(update *models.Update) (int64, bool) {
	if update == nil || update.Message == nil {
		return 0, false
	}

	chatID := update.Message.Chat.ID
	if chatID != b.chatID {
		b.log.Debug("Chat is not allowed",
			"chatID", chatID)

		return 0, false
	}
	return chatID, true
}

// commandArgs returns the words after the command, dropping an @botname
// suffix on the command itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}
