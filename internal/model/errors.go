package model

import "errors"

var (
	// Заголовок, из которого нельзя получить slug, или невалидный комментарий
	ErrInvalidInput = errors.New("invalid input")
	// Внешний источник новостей упал или вернул мусор
	ErrSourceUnavailable = errors.New("source unavailable")
	// Любая ошибка похода в базу
	ErrStoreUnavailable = errors.New("store unavailable")
	// Статья с таким slug уже есть. Это не ошибка, а ожидаемый исход
	ErrDuplicate = errors.New("duplicate slug")
	ErrNotFound  = errors.New("not found")
)
