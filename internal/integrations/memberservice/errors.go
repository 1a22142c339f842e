package memberservice

import "errors"

var (
	// ErrMemberNotFound возвращается, когда участник не найден в справочнике
	ErrMemberNotFound = errors.New("memberservice client: member not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("memberservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("memberservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation:
	// справочник недоступен, бронирование продолжается без проверки участника
	ErrServiceDegraded = errors.New("memberservice unavailable: graceful degradation applied")
)
