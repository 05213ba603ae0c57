package testutil

import "errors"

// ErrStoreDown имитирует недоступное хранилище телеметрии.
var ErrStoreDown = errors.New("telemetry store is down")
