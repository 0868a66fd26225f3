package whatsapp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	// драйверы хранилища сессии
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "pgx"
)

// OpenSession opens the linked-device credential store and returns its first
// device. A fresh store yields an unpaired device that must be linked by QR.
func OpenSession(ctx context.Context, dialect, dsn string, zl zerolog.Logger) (*sqlstore.Container, *store.Device, error) {
	switch dialect {
	case DialectSQLite, DialectPostgres:
	default:
		return nil, nil, fmt.Errorf("whatsapp - OpenSession: unsupported dialect %q", dialect)
	}

	container, err := sqlstore.New(ctx, dialect, dsn, waLog.Zerolog(zl.With().Str("module", "session").Logger()))
	if err != nil {
		return nil, nil, fmt.Errorf("whatsapp - OpenSession - sqlstore.New: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		_ = container.Close()

		return nil, nil, fmt.Errorf("whatsapp - OpenSession - container.GetFirstDevice: %w", err)
	}

	return container, device, nil
}
