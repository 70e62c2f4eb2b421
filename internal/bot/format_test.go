package bot

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/christpg03/mine-bot/internal/service"
)

func TestParseMentions(t *testing.T) {
	tests := []struct {
		name string
		args string
		want []string
	}{
		{"simple mentions", "@ana @juan @carlos", []string{"ana", "juan", "carlos"}},
		{"ignores plain words", "hola @ana mundo", []string{"ana"}},
		{"empty args", "", nil},
		{"bare at sign", "@ @ana", []string{"ana"}},
		{"extra whitespace", "  @ana   @juan  ", []string{"ana", "juan"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseMentions(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseMentions(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "0 min"},
		{12 * time.Minute, "12 min"},
		{59 * time.Minute, "59 min"},
		{time.Hour, "1h"},
		{65 * time.Minute, "1h 5min"},
		{2*time.Hour + 30*time.Minute, "2h 30min"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestWelcomeTemplateWindow(t *testing.T) {
	text := fmt.Sprintf(welcomeTemplate, 45)
	if !strings.Contains(text, "45 minutos") {
		t.Fatalf("welcome does not mention the configured window:\n%s", text)
	}
	if strings.Contains(text, "%!") || strings.Contains(text, "%d") {
		t.Fatalf("welcome left an unformatted placeholder:\n%s", text)
	}
}

func TestFormatRegisterResult(t *testing.T) {
	result := service.RegisterResult{
		IssueID:      314,
		IssueURL:     "https://redmine.example/issues/314",
		Duration:     30 * time.Minute,
		Logged:       []string{"ana"},
		WithoutToken: []string{"sintoken"},
		Failed:       []string{"juan"},
		Unknown:      []string{"fantasma"},
	}

	text := formatRegisterResult(result, "Carla")

	for _, fragment := range []string{
		"https://redmine.example/issues/314",
		"30 min",
		"@ana",
		"@sintoken",
		"@juan",
		"@fantasma",
		"Registrado por: Carla",
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("summary missing %q:\n%s", fragment, text)
		}
	}

	t.Run("omits empty buckets", func(t *testing.T) {
		minimal := service.RegisterResult{
			IssueID:  1,
			IssueURL: "https://redmine.example/issues/1",
			Logged:   []string{"ana"},
		}
		text := formatRegisterResult(minimal, "Carla")
		if strings.Contains(text, "Sin token") || strings.Contains(text, "Error registrando") || strings.Contains(text, "no registrados") {
			t.Fatalf("unexpected empty sections:\n%s", text)
		}
	})
}
