package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/service"
)

func (b *Bot) handleDaily(ctx context.Context, msg *tgbotapi.Message) {
	if !isGroup(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en grupos.")
		return
	}

	usernames := parseMentions(msg.CommandArguments())
	if len(usernames) == 0 {
		b.reply(msg, "❌ Debes mencionar a los participantes de la daily.\n\nUso: /daily @usuario1 @usuario2 @usuario3")
		return
	}

	loading := b.reply(msg, "🔄 Validando información...")

	result, err := b.dailys.Register(ctx, service.RegisterInput{
		GroupID:     msg.Chat.ID,
		RequestedBy: msg.From.ID,
		Usernames:   usernames,
	})
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		b.edit(loading, "❌ Este grupo no está vinculado a ningún proyecto de Redmine.\n\nUsa /team ID_PROYECTO NOMBRE para configurar el equipo primero.")
		return
	case errors.Is(err, service.ErrTokenRequired):
		b.edit(loading, "❌ Necesitas configurar tu token de Redmine primero.\n\nUsa /token TU_TOKEN_REDMINE en un chat privado.")
		return
	case errors.Is(err, service.ErrCallStillOpen):
		b.edit(loading, "❌ La daily actual todavía no terminó.\n\nEspera a que termine la videollamada para registrarla.")
		return
	case errors.Is(err, service.ErrNoPendingDaily):
		b.edit(loading, "❌ No hay ninguna daily pendiente de registrar.\n\nTodas las dailies del grupo ya fueron registradas o no se inició ninguna.")
		return
	case errors.Is(err, service.ErrWindowExpired):
		b.edit(loading, fmt.Sprintf("❌ Pasaron más de %d minutos desde que terminó la última daily.\n\nYa no se puede registrar en Redmine.", b.windowMinutes()))
		return
	case err != nil:
		b.logger.Error("register daily", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
		b.edit(loading, "❌ Ocurrió un error al registrar la daily. Inténtalo más tarde.")
		return
	}

	b.edit(loading, formatRegisterResult(result, displayName(msg.From)))
}

func (b *Bot) handleCallStarted(ctx context.Context, msg *tgbotapi.Message) {
	if !isGroup(msg) {
		return
	}

	_, err := b.dailys.StartCall(ctx, msg.Chat.ID)
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		// Grupo sin equipo: la llamada no nos interesa.
		return
	case errors.Is(err, service.ErrCallActive):
		return
	case err != nil:
		b.logger.Error("start call", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
		return
	}

	b.reply(msg, "🎥 Videollamada iniciada\n\n⏱️ Midiendo la duración automáticamente...\n\nAl terminar se mostrará un resumen.")
}

func (b *Bot) handleCallEnded(ctx context.Context, msg *tgbotapi.Message) {
	if !isGroup(msg) {
		return
	}

	daily, err := b.dailys.EndCall(ctx, msg.Chat.ID)
	switch {
	case errors.Is(err, service.ErrNoActiveCall):
		return
	case err != nil:
		b.logger.Error("end call", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
		return
	}

	b.reply(msg, fmt.Sprintf(
		"🎥 Videollamada finalizada\n\n⏱️ Duración: %s\n\n💡 Si fue una daily, usa dentro de los próximos %d minutos:\n/daily @participante1 @participante2\n\nEsto crea la tarea en Redmine y loguea el tiempo de cada participante con token configurado.",
		formatDuration(daily.Duration()),
		b.windowMinutes(),
	))
}

func (b *Bot) handleCallParticipants(ctx context.Context, msg *tgbotapi.Message, participantIDs []int64) {
	if !isGroup(msg) || len(participantIDs) == 0 {
		return
	}
	if err := b.dailys.AddParticipants(ctx, msg.Chat.ID, participantIDs); err != nil {
		b.logger.Error("add participants", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
	}
}

// formatRegisterResult arma el resumen de /daily con el detalle por bucket.
func formatRegisterResult(result service.RegisterResult, requestedBy string) string {
	var sb strings.Builder
	sb.WriteString("✅ Daily registrada en Redmine\n\n")
	fmt.Fprintf(&sb, "🔗 %s\n", result.IssueURL)
	fmt.Fprintf(&sb, "⏱️ Duración: %s\n\n", formatDuration(result.Duration))

	if len(result.Logged) > 0 {
		sb.WriteString("✅ Tiempo registrado para:\n")
		for _, u := range result.Logged {
			fmt.Fprintf(&sb, "   • @%s\n", u)
		}
		sb.WriteString("\n")
	}
	if len(result.WithoutToken) > 0 {
		sb.WriteString("⚠️ Sin token configurado (deben registrar a mano):\n")
		for _, u := range result.WithoutToken {
			fmt.Fprintf(&sb, "   • @%s\n", u)
		}
		sb.WriteString("\n")
	}
	if len(result.Failed) > 0 {
		sb.WriteString("❌ Error registrando tiempo para:\n")
		for _, u := range result.Failed {
			fmt.Fprintf(&sb, "   • @%s\n", u)
		}
		sb.WriteString("\n")
	}
	if len(result.Unknown) > 0 {
		sb.WriteString("❓ Usuarios no registrados en el bot:\n")
		for _, u := range result.Unknown {
			fmt.Fprintf(&sb, "   • @%s\n", u)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "👤 Registrado por: %s", requestedBy)
	return sb.String()
}
