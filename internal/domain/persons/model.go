package persons

import (
	"strings"
	"time"
)

// Person unifica las dos identidades del sistema en una sola entidad:
// la cuenta web autenticada (Email + PasswordHash) y la cuenta de plataforma
// externa (ExternalID). Ambos paths de resolución terminan en el mismo record.
type Person struct {
	ID string

	// Email es la credencial de login. Para personas auto-registradas por el
	// path externo se genera un placeholder (ver placeholderEmail) que no
	// sirve para autenticarse.
	Email string
	Name  string

	// PasswordHash vacío => credencial placeholder: el path autenticado
	// la rechaza siempre, hasta que la persona haga Link con una real.
	PasswordHash string

	// ExternalID es el identificador en la plataforma externa (ej: user id
	// de chat). Único global cuando está presente; es LA clave de resolución
	// para contactos repetidos desde esa plataforma.
	ExternalID *string

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasLoginCredential indica si la persona tiene una credencial real
// (no placeholder) usable por el path autenticado.
func (p Person) HasLoginCredential() bool {
	return strings.TrimSpace(p.PasswordHash) != ""
}
