// persistence/interface.go
package persistence

import (
	"errors"

	"github.com/wfunc/teenpatti/models"
)

// Database is the write-only store behind a live session. Nothing in a room
// ever reads it back.
type Database interface {
	SaveRoom(rec models.RoomRecord) error
	SaveRoundResult(rec models.RoundRecord) error
	Close() error
}

// 错误定义
var (
	ErrUnknownDriver = errors.New("unknown database driver")
	ErrWriterClosed  = errors.New("persistence writer closed")
	ErrQueueFull     = errors.New("persistence queue full")
)

// Nop discards every write. Used when database.driver is "none".
type Nop struct{}

func (Nop) SaveRoom(models.RoomRecord) error        { return nil }
func (Nop) SaveRoundResult(models.RoundRecord) error { return nil }
func (Nop) Close() error                             { return nil }
