package health

import "context"

// Pinger зависимость, доступность которой проверяется
type Pinger interface {
	Ping(ctx context.Context) error
}

type Logger interface {
	Warn(format string, v ...interface{})
}
