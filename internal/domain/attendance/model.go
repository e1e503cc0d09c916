package attendance

import "time"

// Attendance es el hecho inmutable "esta persona estuvo en este evento".
// Identidad compuesta (PersonID, EventID): a lo sumo un registro por par.
// Append-only: nunca se actualiza ni se borra.
type Attendance struct {
	PersonID string
	EventID  string

	AttendedAt time.Time
}
