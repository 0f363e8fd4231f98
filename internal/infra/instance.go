package infra

import "errors"

// SingleInstanceName is the named mutex held by the tray front end.
const SingleInstanceName = `Local\DiscordTrayManager_SingleInstance`

// ErrAlreadyRunning is returned when another tray instance holds the mutex.
var ErrAlreadyRunning = errors.New("another instance is already running")
