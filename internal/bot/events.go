package bot

import (
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type callEventKind int

const (
	callNone callEventKind = iota
	callStarted
	callEnded
	callParticipants
)

// callEvent es un mensaje de servicio de videollamada ya clasificado.
type callEvent struct {
	kind         callEventKind
	participants []int64
}

// rawCallUpdate decodifica las claves video_chat_* que Telegram envía desde
// el Bot API 6.0. La librería habla Bot API 5.5 y solo conoce los campos
// voice_chat_* anteriores, así que estas claves hay que leerlas del JSON
// crudo del update.
type rawCallUpdate struct {
	Message *struct {
		VideoChatStarted             *struct{} `json:"video_chat_started"`
		VideoChatEnded               *struct{} `json:"video_chat_ended"`
		VideoChatParticipantsInvited *struct {
			Users []tgbotapi.User `json:"users"`
		} `json:"video_chat_participants_invited"`
	} `json:"message"`
}

// detectCallEvent clasifica los mensajes de servicio de videollamada: primero
// las claves video_chat_* actuales sobre el JSON crudo, después los campos
// voice_chat_* previos al rename por si el servidor aún los emite.
func detectCallEvent(msg *tgbotapi.Message, raw json.RawMessage) callEvent {
	if len(raw) > 0 {
		var update rawCallUpdate
		if err := json.Unmarshal(raw, &update); err == nil && update.Message != nil {
			m := update.Message
			switch {
			case m.VideoChatStarted != nil:
				return callEvent{kind: callStarted}
			case m.VideoChatEnded != nil:
				return callEvent{kind: callEnded}
			case m.VideoChatParticipantsInvited != nil:
				return callEvent{kind: callParticipants, participants: userIDs(m.VideoChatParticipantsInvited.Users)}
			}
		}
	}

	switch {
	case msg.VoiceChatStarted != nil:
		return callEvent{kind: callStarted}
	case msg.VoiceChatEnded != nil:
		return callEvent{kind: callEnded}
	case msg.VoiceChatParticipantsInvited != nil:
		return callEvent{kind: callParticipants, participants: userIDs(msg.VoiceChatParticipantsInvited.Users)}
	}
	return callEvent{}
}

func userIDs(users []tgbotapi.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
