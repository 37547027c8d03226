package services

import "errors"

// Общие ошибки генерации, используемые сервисами.
var (
	// Этап ссылается на несуществующий турнир — фатально для генерации.
	ErrTournamentNotFound = errors.New("tournament not found for stage")

	// Сетка уже сгенерирована (повторный вызов или параллельная гонка) —
	// не ошибка, генерация идемпотентна.
	ErrMatchupsAlreadyGenerated = errors.New("matchups already generated for this stage")
)
