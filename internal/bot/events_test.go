package bot

import (
	"encoding/json"
	"reflect"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestDetectCallEvent(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    callEventKind
		wantIDs []int64
	}{
		{
			"video chat started",
			`{"update_id":1,"message":{"message_id":10,"date":1756100000,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"video_chat_started":{}}}`,
			callStarted,
			nil,
		},
		{
			"video chat ended",
			`{"update_id":2,"message":{"message_id":11,"date":1756100900,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"video_chat_ended":{"duration":900}}}`,
			callEnded,
			nil,
		},
		{
			"video chat participants invited",
			`{"update_id":3,"message":{"message_id":12,"date":1756100100,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"video_chat_participants_invited":{"users":[{"id":100,"is_bot":false,"first_name":"Ana"},{"id":200,"is_bot":false,"first_name":"Juan"}]}}}`,
			callParticipants,
			[]int64{100, 200},
		},
		{
			"legacy voice chat started",
			`{"update_id":4,"message":{"message_id":13,"date":1756100000,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"voice_chat_started":{}}}`,
			callStarted,
			nil,
		},
		{
			"legacy voice chat ended",
			`{"update_id":5,"message":{"message_id":14,"date":1756100900,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"voice_chat_ended":{"duration":900}}}`,
			callEnded,
			nil,
		},
		{
			"legacy voice chat participants",
			`{"update_id":6,"message":{"message_id":15,"date":1756100100,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"voice_chat_participants_invited":{"users":[{"id":300,"is_bot":false,"first_name":"Eva"}]}}}`,
			callParticipants,
			[]int64{300},
		},
		{
			"plain text message",
			`{"update_id":7,"message":{"message_id":16,"date":1756100000,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"text":"hola"}}`,
			callNone,
			nil,
		},
		{
			"command message",
			`{"update_id":8,"message":{"message_id":17,"date":1756100000,"chat":{"id":-500,"type":"supergroup"},"from":{"id":100,"is_bot":false,"first_name":"Ana"},"text":"/daily @ana","entities":[{"type":"bot_command","offset":0,"length":6}]}}`,
			callNone,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var update tgbotapi.Update
			if err := json.Unmarshal([]byte(tt.payload), &update); err != nil {
				t.Fatalf("decode update: %v", err)
			}
			if update.Message == nil {
				t.Fatalf("update without message")
			}

			event := detectCallEvent(update.Message, json.RawMessage(tt.payload))
			if event.kind != tt.want {
				t.Fatalf("kind = %v, want %v", event.kind, tt.want)
			}
			if !reflect.DeepEqual(event.participants, tt.wantIDs) {
				t.Fatalf("participants = %v, want %v", event.participants, tt.wantIDs)
			}
		})
	}

	t.Run("without raw payload falls back to decoded fields", func(t *testing.T) {
		msg := &tgbotapi.Message{VoiceChatStarted: &tgbotapi.VoiceChatStarted{}}
		if event := detectCallEvent(msg, nil); event.kind != callStarted {
			t.Fatalf("kind = %v, want %v", event.kind, callStarted)
		}
	})
}
