package events

import "time"

// Event representa un evento con ventana de asistencia [StartTime, EndTime].
// El status NO se persiste nunca: se deriva de la ventana + "now" (ver status.go).
type Event struct {
	ID string

	Title       string
	Description string

	StartTime time.Time
	EndTime   time.Time

	// ChannelTag asocia el evento a un canal de una plataforma externa
	// (ej: canal de chat donde el bot anuncia el evento). Opcional.
	ChannelTag string

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
