package memberservice

// Member модель участника из справочника платформы
type Member struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsAdmin     bool   `json:"is_admin"`
	IsRoomAdmin bool   `json:"is_room_admin"`
}

// ErrorResponse модель ошибки от справочника
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
