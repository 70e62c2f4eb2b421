package domain

import "time"

// Daily es el registro de una videollamada de un equipo. Se crea al iniciar
// la llamada, se cierra (EndTime) al terminar, y queda Registered cuando el
// comando /daily la vuelca en Redmine.
type Daily struct {
	ID              string
	TeamID          string
	TelegramGroupID int64
	StartTime       time.Time
	EndTime         *time.Time
	ParticipantIDs  []int64
	Registered      bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Finished indica si la llamada ya terminó.
func (d Daily) Finished() bool {
	return d.EndTime != nil
}

// Duration devuelve la duración de la llamada, o cero si sigue abierta.
func (d Daily) Duration() time.Duration {
	if d.EndTime == nil {
		return 0
	}
	return d.EndTime.Sub(d.StartTime)
}
