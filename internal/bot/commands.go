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

const welcomeTemplate = `🤖 Mine Bot - Integración Telegram & Redmine

Este bot vincula tus grupos de Telegram con proyectos de Redmine para
registrar dailies y loguear tiempo automáticamente.

🔐 Chat privado:
• /token TU_TOKEN - Configurar token de Redmine API
• /projects - Listar tus proyectos de Redmine
• /teams - Mostrar equipos que has creado

👥 Solo en grupos:
• /team ID_PROYECTO NOMBRE - Vincular grupo a proyecto (solo admins)
• /team_delete - Desvincular grupo del proyecto (solo creador)
• /daily @user1 @user2 - Registrar daily en Redmine con participantes

🎥 El bot detecta las videollamadas del grupo y mide su duración; al
terminar, usa /daily dentro de los %d minutos para volcarla en Redmine.`

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.logger.Info("start command", zap.Int64("telegram_id", msg.From.ID))
	b.reply(msg, fmt.Sprintf(welcomeTemplate, b.windowMinutes()))
}

func (b *Bot) handleToken(ctx context.Context, msg *tgbotapi.Message) {
	if !isPrivate(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en chat privado, por seguridad.")
		return
	}

	token := strings.TrimSpace(msg.CommandArguments())
	if token == "" {
		b.reply(msg, "❌ Debes enviar tu token de Redmine.\n\nUso: /token TU_TOKEN_REDMINE\n\nℹ️ Lo encuentras en tu perfil de Redmine, sección \"Clave API\".")
		return
	}

	created, err := b.users.SetToken(ctx, msg.From.ID, msg.From.UserName, token)
	// El mensaje con el token no debe quedar en el historial.
	b.deleteMessage(msg)

	switch {
	case errors.Is(err, service.ErrInvalidToken):
		b.reply(msg, "❌ Token inválido. Envía un token de Redmine válido.")
	case err != nil:
		b.logger.Error("set token", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "❌ Ocurrió un error al guardar tu token. Inténtalo más tarde.")
	case created:
		b.reply(msg, "✅ Tu token de Redmine quedó guardado.\n\n🔐 Se almacena cifrado.\n🎉 Ya puedes usar el resto de los comandos.")
	default:
		b.reply(msg, "✅ Tu token de Redmine fue actualizado.\n\n🔐 Se almacena cifrado.")
	}
}

func (b *Bot) handleProjects(ctx context.Context, msg *tgbotapi.Message) {
	if !isPrivate(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en chat privado.")
		return
	}

	loading := b.reply(msg, "🔄 Cargando tus proyectos...")

	projects, err := b.teams.Projects(ctx, msg.From.ID)
	switch {
	case errors.Is(err, service.ErrTokenRequired):
		b.edit(loading, "❌ Necesitas configurar tu token de Redmine primero.\n\nUsa /token TU_TOKEN_REDMINE para configurarlo.")
		return
	case err != nil:
		b.logger.Error("list projects", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.edit(loading, "❌ No se pudieron obtener tus proyectos. Inténtalo más tarde.")
		return
	}

	if len(projects) == 0 {
		b.edit(loading, "📋 No se encontraron proyectos o no tienes acceso a ninguno.")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Tus proyectos de Redmine:\n\n")
	for _, p := range projects {
		icon := "✅"
		if p.Status != 1 {
			icon = "⏸️"
		}
		fmt.Fprintf(&sb, "%s %s 🆔 ID: %d\n\n", icon, p.Name, p.ID)
	}
	fmt.Fprintf(&sb, "📊 Total: %d proyectos", len(projects))

	b.edit(loading, sb.String())
}

func (b *Bot) handleTeams(ctx context.Context, msg *tgbotapi.Message) {
	if !isPrivate(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en chat privado.")
		return
	}

	loading := b.reply(msg, "🔄 Cargando tus equipos...")

	teams, err := b.teams.ByCreator(ctx, msg.From.ID)
	if err != nil {
		b.logger.Error("list teams", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.edit(loading, "❌ No se pudieron obtener tus equipos. Inténtalo más tarde.")
		return
	}

	if len(teams) == 0 {
		b.edit(loading, "📋 Todavía no creaste ningún equipo.\n\nUsa /team ID_PROYECTO NOMBRE en un grupo para crear uno.")
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 Tus equipos:\n\n")
	for _, t := range teams {
		fmt.Fprintf(&sb, "🏗️ %s\n", t.Name)
		fmt.Fprintf(&sb, "   🆔 Proyecto: %d\n", t.RedmineProjectID)
		fmt.Fprintf(&sb, "   🔗 Código: %s\n", t.RedmineProjectCode)
		fmt.Fprintf(&sb, "   📅 Creado: %s\n\n", t.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&sb, "📊 Total: %d equipos", len(teams))

	b.edit(loading, sb.String())
}
