package bot

import (
	"context"
	"encoding/json"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/service"
)

// Bot enruta updates de Telegram hacia los servicios del dominio.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
	users  *service.UserService
	teams  *service.TeamService
	dailys *service.DailyService
}

func New(api *tgbotapi.BotAPI, logger *zap.Logger, users *service.UserService, teams *service.TeamService, dailys *service.DailyService) *Bot {
	return &Bot{
		api:    api,
		logger: logger,
		users:  users,
		teams:  teams,
		dailys: dailys,
	}
}

// Run consume updates por long polling hasta que el contexto se cancele.
// Pide cada lote en crudo para poder leer las claves video_chat_* que la
// librería no decodifica (ver events.go). Procesa un update a la vez; el bot
// no necesita más paralelismo.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	cfg.AllowedUpdates = []string{"message"}

	b.logger.Info("bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopped")
			return ctx.Err()
		default:
		}

		updates, raw, err := b.getUpdates(cfg)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("bot stopped")
				return ctx.Err()
			}
			b.logger.Error("get updates", zap.Error(err))
			time.Sleep(3 * time.Second)
			continue
		}

		for i, update := range updates {
			if update.UpdateID >= cfg.Offset {
				cfg.Offset = update.UpdateID + 1
			}
			var rawUpdate json.RawMessage
			if i < len(raw) {
				rawUpdate = raw[i]
			}
			b.dispatch(ctx, update, rawUpdate)
		}
	}
}

// getUpdates trae un lote de updates decodificado y, en paralelo, el JSON
// crudo de cada uno.
func (b *Bot) getUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, []json.RawMessage, error) {
	resp, err := b.api.Request(cfg)
	if err != nil {
		return nil, nil, err
	}
	var updates []tgbotapi.Update
	if err := json.Unmarshal(resp.Result, &updates); err != nil {
		return nil, nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(resp.Result, &raw); err != nil {
		return nil, nil, err
	}
	return updates, raw, nil
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update, raw json.RawMessage) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	// Eventos de videollamada: mensajes de servicio, no comandos.
	if event := detectCallEvent(msg, raw); event.kind != callNone {
		switch event.kind {
		case callStarted:
			b.handleCallStarted(ctx, msg)
		case callEnded:
			b.handleCallEnded(ctx, msg)
		case callParticipants:
			b.handleCallParticipants(ctx, msg, event.participants)
		}
		return
	}

	if !msg.IsCommand() {
		return
	}

	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "token":
		b.handleToken(ctx, msg)
	case "projects":
		b.handleProjects(ctx, msg)
	case "teams":
		b.handleTeams(ctx, msg)
	case "team":
		b.handleTeam(ctx, msg)
	case "team_delete":
		b.handleTeamDelete(ctx, msg)
	case "daily":
		b.handleDaily(ctx, msg)
	}
}

// windowMinutes expone el plazo de registro configurado, para los textos.
func (b *Bot) windowMinutes() int {
	return int(b.dailys.Window().Minutes())
}

func isGroup(msg *tgbotapi.Message) bool {
	return msg.Chat != nil && (msg.Chat.IsGroup() || msg.Chat.IsSuperGroup())
}

func isPrivate(msg *tgbotapi.Message) bool {
	return msg.Chat != nil && msg.Chat.IsPrivate()
}

// isGroupAdmin consulta a Telegram si el usuario administra el grupo.
func (b *Bot) isGroupAdmin(chatID, userID int64) (bool, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, err
	}
	return member.IsCreator() || member.IsAdministrator(), nil
}

// reply envía un mensaje de texto plano al chat del mensaje.
func (b *Bot) reply(msg *tgbotapi.Message, text string) *tgbotapi.Message {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.DisableWebPagePreview = true
	sent, err := b.api.Send(out)
	if err != nil {
		b.logger.Error("send message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
		return nil
	}
	return &sent
}

// edit reemplaza el texto de un mensaje ya enviado (los "cargando...").
func (b *Bot) edit(sent *tgbotapi.Message, text string) {
	if sent == nil {
		return
	}
	out := tgbotapi.NewEditMessageText(sent.Chat.ID, sent.MessageID, text)
	if _, err := b.api.Send(out); err != nil {
		b.logger.Error("edit message", zap.Int64("chat_id", sent.Chat.ID), zap.Error(err))
	}
}

// deleteMessage borra un mensaje; se usa para no dejar tokens a la vista.
func (b *Bot) deleteMessage(msg *tgbotapi.Message) {
	del := tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)
	if _, err := b.api.Request(del); err != nil {
		b.logger.Warn("delete message", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
}
