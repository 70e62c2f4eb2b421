package bot

import (
	"fmt"
	"strings"
	"time"
)

// parseMentions extrae los usernames mencionados (@usuario) de los
// argumentos de un comando. Ignora tokens sin @.
func parseMentions(args string) []string {
	var usernames []string
	for _, field := range strings.Fields(args) {
		if !strings.HasPrefix(field, "@") {
			continue
		}
		username := strings.TrimPrefix(field, "@")
		if username != "" {
			usernames = append(usernames, username)
		}
	}
	return usernames
}

// formatDuration muestra una duración como "1h 5min" o "12 min".
func formatDuration(d time.Duration) string {
	totalMinutes := int(d.Minutes())
	if totalMinutes < 60 {
		return fmt.Sprintf("%d min", totalMinutes)
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if minutes == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dmin", hours, minutes)
}
