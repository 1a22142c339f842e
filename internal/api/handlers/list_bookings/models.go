package list_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/SMC-RoomBooking/internal/domain"
	"github.com/m04kA/SMC-RoomBooking/internal/service/bookings/models"
)

// ParseQuery собирает запрос сервиса из query-параметров
// roomId, memberId, startDate, endDate, status, sortBy, sortOrder, page, pageSize
func ParseQuery(q url.Values, callerID int64) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{CallerID: callerID}

	var err error
	if req.RoomID, err = optionalInt64(q, "roomId"); err != nil {
		return nil, err
	}
	if req.MemberID, err = optionalInt64(q, "memberId"); err != nil {
		return nil, err
	}
	if req.StartDate, err = optionalDate(q, "startDate"); err != nil {
		return nil, err
	}
	if req.EndDate, err = optionalDate(q, "endDate"); err != nil {
		return nil, err
	}

	req.Status = optionalString(q, "status")
	req.SortBy = optionalString(q, "sortBy")
	req.SortOrder = optionalString(q, "sortOrder")

	if req.Page, err = optionalInt(q, "page"); err != nil {
		return nil, err
	}
	if req.PageSize, err = optionalInt(q, "pageSize"); err != nil {
		return nil, err
	}

	return req, nil
}

func optionalString(q url.Values, key string) *string {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt64(q url.Values, key string) (*int64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", key, v)
	}
	return &n, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func optionalDate(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateFormat, v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, v)
	}
	return &d, nil
}
