package bot

import (
	"context"
	"fmt"
	"strings"

	tg "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"

	"github.com/vidstats/vidstats/internal/analyzer"
	"github.com/vidstats/vidstats/internal/models"
	"github.com/vidstats/vidstats/internal/observability"
	"github.com/vidstats/vidstats/internal/service"
)

const startMessage = `Привет! Я отвечаю на вопросы о статистике видео.

Примеры:
- Сколько всего просмотров у всех видео?
- Какое среднее количество лайков на видео?
- Какой создатель загрузил больше всего видео?

Команды: /help, /stats`

const helpMessage = `Задайте вопрос о просмотрах, лайках, комментариях или жалобах.

Примеры:
- Сколько всего просмотров у всех видео?
- Сколько видео было создано в августе 2025?
- Какой общий прирост просмотров по всем снапшотам?
- Суммарный прирост просмотров создателя X за 28 ноября 2025 с 10:00 до 15:00

Команды:
/start - краткое описание
/help - эта справка
/stats - сводка по базе`

const unknownCommandMessage = "Неизвестная команда. Доступны /start, /help и /stats."

const noModelMessage = "Генерация ответов сейчас недоступна."

// QuestionAnswerer runs one question through the generation pipeline.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, question string) models.GenerationResult
}

// Bot is the Telegram transport. Commands are answered locally; every
// other text message goes through the analyzer, and only the final
// answer string is ever sent back to the chat.
type Bot struct {
	api      *tg.Bot
	analyzer QuestionAnswerer
	store    *service.Store
}

func New(token string, analyzer QuestionAnswerer, store *service.Store) (*Bot, error) {
	b := &Bot{analyzer: analyzer, store: store}

	api, err := tg.New(token, tg.WithDefaultHandler(b.handleQuestion))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	b.api = api

	api.RegisterHandler(tg.HandlerTypeMessageText, "/start", tg.MatchTypeExact, b.handleStart)
	api.RegisterHandler(tg.HandlerTypeMessageText, "/help", tg.MatchTypeExact, b.handleHelp)
	api.RegisterHandler(tg.HandlerTypeMessageText, "/stats", tg.MatchTypeExact, b.handleStats)

	return b, nil
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) {
	log.Info().Msg("telegram bot polling")
	b.api.Start(ctx)
}

func (b *Bot) handleStart(ctx context.Context, _ *tg.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	observability.ObserveTelegramUpdate("command")
	b.reply(ctx, update.Message.Chat.ID, startMessage)
}

func (b *Bot) handleHelp(ctx context.Context, _ *tg.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	observability.ObserveTelegramUpdate("command")
	b.reply(ctx, update.Message.Chat.ID, helpMessage)
}

func (b *Bot) handleStats(ctx context.Context, _ *tg.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	observability.ObserveTelegramUpdate("command")

	st, err := b.store.Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stats command failed")
		b.reply(ctx, update.Message.Chat.ID, "Статистика сейчас недоступна.")
		return
	}

	text := fmt.Sprintf(
		"Видео: %s\nСнапшотов: %s\nСоздателей: %s\nВсего просмотров: %s\nМаксимум просмотров: %s",
		analyzer.FormatAnswer(st.VideosCount),
		analyzer.FormatAnswer(st.SnapshotsCount),
		analyzer.FormatAnswer(st.UniqueCreators),
		analyzer.FormatAnswer(st.TotalViews),
		analyzer.FormatAnswer(st.MaxViews),
	)
	b.reply(ctx, update.Message.Chat.ID, text)
}

func (b *Bot) handleQuestion(ctx context.Context, api *tg.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		observability.ObserveTelegramUpdate("ignored")
		return
	}
	// Unknown slash commands never reach the pipeline.
	if strings.HasPrefix(text, "/") {
		observability.ObserveTelegramUpdate("command")
		b.reply(ctx, chatID, unknownCommandMessage)
		return
	}
	observability.ObserveTelegramUpdate("question")
	if b.analyzer == nil {
		b.reply(ctx, chatID, noModelMessage)
		return
	}

	if _, err := api.SendChatAction(ctx, &tg.SendChatActionParams{
		ChatID: chatID,
		Action: tgmodels.ChatActionTyping,
	}); err != nil {
		log.Debug().Err(err).Msg("chat action failed")
	}

	result := b.analyzer.AnswerQuestion(ctx, text)
	b.reply(ctx, chatID, result.FinalAnswer)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, &tg.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send message failed")
	}
}
