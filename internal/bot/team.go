package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/christpg03/mine-bot/internal/service"
)

func (b *Bot) handleTeam(ctx context.Context, msg *tgbotapi.Message) {
	if !isGroup(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en grupos.")
		return
	}

	admin, err := b.isGroupAdmin(msg.Chat.ID, msg.From.ID)
	if err != nil {
		b.logger.Error("check admin status", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "❌ No se pudo verificar si eres administrador. Inténtalo de nuevo.")
		return
	}
	if !admin {
		b.reply(msg, "❌ Solo los administradores del grupo pueden vincular un proyecto.")
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.reply(msg, "❌ Faltan argumentos.\n\nUso: /team ID_PROYECTO NOMBRE_EQUIPO\n\nEjemplo: /team 123 Mi Equipo")
		return
	}
	projectID, err := strconv.Atoi(args[0])
	if err != nil {
		b.reply(msg, "❌ El ID del proyecto debe ser un número.\n\nUso: /team ID_PROYECTO NOMBRE_EQUIPO")
		return
	}
	teamName := strings.Join(args[1:], " ")

	loading := b.reply(msg, "🔄 Validando proyecto...")

	team, err := b.teams.Link(ctx, service.LinkInput{
		GroupID:   msg.Chat.ID,
		ProjectID: projectID,
		TeamName:  teamName,
		CreatedBy: msg.From.ID,
	})
	switch {
	case errors.Is(err, service.ErrTokenRequired):
		b.edit(loading, "❌ Necesitas configurar tu token de Redmine primero.\n\nUsa /token TU_TOKEN_REDMINE en un chat privado.")
	case errors.Is(err, service.ErrTeamExists):
		existing, lookupErr := b.teams.ByGroup(ctx, msg.Chat.ID)
		if lookupErr != nil {
			b.edit(loading, "⚠️ Este grupo ya está vinculado a un proyecto.")
			return
		}
		b.edit(loading, fmt.Sprintf(
			"⚠️ Este grupo ya está vinculado a un proyecto:\n🏗️ %s\n🆔 Proyecto: %d\n🔗 Código: %s",
			existing.Name, existing.RedmineProjectID, existing.RedmineProjectCode,
		))
	case errors.Is(err, service.ErrProjectNotFound):
		b.edit(loading, fmt.Sprintf("❌ No existe el proyecto %d o no tienes acceso a él.", projectID))
	case errors.Is(err, service.ErrInvalidTeamName):
		b.edit(loading, "❌ El nombre del equipo no puede estar vacío.")
	case err != nil:
		b.logger.Error("link team", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
		b.edit(loading, "❌ Ocurrió un error al crear el equipo. Inténtalo más tarde.")
	default:
		b.edit(loading, fmt.Sprintf(
			"✅ Equipo creado.\n\n🏗️ Equipo: %s\n🆔 Proyecto: %d\n🔗 Código: %s\n👤 Creado por: %s\n\nEste grupo quedó vinculado al proyecto de Redmine.",
			team.Name, team.RedmineProjectID, team.RedmineProjectCode, displayName(msg.From),
		))
	}
}

func (b *Bot) handleTeamDelete(ctx context.Context, msg *tgbotapi.Message) {
	if !isGroup(msg) {
		b.reply(msg, "🔒 Este comando solo puede usarse en grupos.")
		return
	}

	admin, err := b.isGroupAdmin(msg.Chat.ID, msg.From.ID)
	if err != nil {
		b.logger.Error("check admin status", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.reply(msg, "❌ No se pudo verificar si eres administrador. Inténtalo de nuevo.")
		return
	}
	if !admin {
		b.reply(msg, "❌ Solo los administradores del grupo pueden desvincular el proyecto.")
		return
	}

	loading := b.reply(msg, "🔄 Procesando...")

	team, err := b.teams.Unlink(ctx, msg.Chat.ID, msg.From.ID)
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		b.edit(loading, "❌ Este grupo no está vinculado a ningún proyecto.\n\nUsa /team ID_PROYECTO NOMBRE para vincular uno.")
	case errors.Is(err, service.ErrNotCreator):
		b.edit(loading, "❌ Solo quien creó el equipo puede eliminarlo.")
	case err != nil:
		b.logger.Error("unlink team", zap.Int64("group_id", msg.Chat.ID), zap.Error(err))
		b.edit(loading, "❌ Ocurrió un error al eliminar el equipo. Inténtalo más tarde.")
	default:
		b.edit(loading, fmt.Sprintf(
			"✅ Vínculo eliminado.\n\n🏗️ Equipo: %s\n🆔 Proyecto: %d\n🔗 Código: %s\n\nEste grupo ya no está vinculado al proyecto de Redmine.",
			team.Name, team.RedmineProjectID, team.RedmineProjectCode,
		))
	}
}

func displayName(user *tgbotapi.User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	if user.UserName != "" {
		return user.UserName
	}
	return "Usuario"
}
