package ports

import (
	"context"

	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

// TelegramSource yields the next complete telegram from the meter.
type TelegramSource interface {
	Next(ctx context.Context) (domain.Telegram, error)
}
