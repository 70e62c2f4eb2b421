package domain

import "time"

// User es un usuario de Telegram registrado en el bot. El token de Redmine
// se guarda cifrado; la capa de servicio es la única que lo descifra.
type User struct {
	ID             string
	TelegramID     int64
	Username       string
	EncryptedToken string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasToken indica si el usuario tiene un token de Redmine configurado.
func (u User) HasToken() bool {
	return u.EncryptedToken != ""
}
