package create_booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
)

// validateRequest валидирует входные данные запроса.
// Слоты и дата проверяются движком бронирования внутри транзакции.
func validateRequest(req *Request) error {
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}

	if req.RoomID <= 0 {
		return fmt.Errorf("%w: roomID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason is longer than %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	return validateParticipants(req.Participants)
}

// validateParticipants проверяет список участников: без повторов, с ником
func validateParticipants(participants []domain.Participant) error {
	if len(participants) > domain.MaxParticipants {
		return fmt.Errorf("%w: too many participants (max %d)", ErrInvalidInput, domain.MaxParticipants)
	}

	seen := make(map[int64]struct{}, len(participants))
	for _, p := range participants {
		if p.UserID <= 0 {
			return fmt.Errorf("%w: participant userID must be positive", ErrInvalidInput)
		}
		if strings.TrimSpace(p.Nickname) == "" {
			return fmt.Errorf("%w: participant %d has no nickname", ErrInvalidInput, p.UserID)
		}
		if utf8.RuneCountInString(p.Nickname) > domain.MaxParticipantNickLength {
			return fmt.Errorf("%w: participant %d nickname is too long", ErrInvalidInput, p.UserID)
		}
		if _, ok := seen[p.UserID]; ok {
			return fmt.Errorf("%w: participant %d is listed twice", ErrInvalidInput, p.UserID)
		}
		seen[p.UserID] = struct{}{}
	}

	return nil
}
