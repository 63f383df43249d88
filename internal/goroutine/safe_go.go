package goroutine

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/cargolink-backend/internal/logger"
)

// RecoveryHandler запускает фоновые горутины с обработкой panic
// и позволяет дождаться их завершения при остановке сервера.
type RecoveryHandler struct {
	log func() logrus.FieldLogger
	wg  sync.WaitGroup
}

// NewRecoveryHandler создает новый обработчик
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: func() logrus.FieldLogger { return log }}
}

// SafeGo запускает горутину с обработкой panic
func (rh *RecoveryHandler) SafeGo(fn func()) {
	rh.wg.Add(1)
	go func() {
		defer rh.wg.Done()
		defer rh.handlePanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	rh.SafeGo(func() { fn(ctx) })
}

// Wait ждёт завершения запущенных горутин либо отмены ctx.
func (rh *RecoveryHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		rh.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rh *RecoveryHandler) handlePanic() {
	if r := recover(); r != nil {
		rh.log().WithFields(logrus.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
		}).Error("goroutine: panic в фоновой задаче")
	}
}

// DefaultRecoveryHandler - глобальный обработчик, пишет в logger.Log
var DefaultRecoveryHandler = &RecoveryHandler{log: func() logrus.FieldLogger { return logger.Log }}

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(fn func()) {
	DefaultRecoveryHandler.SafeGo(fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, fn)
}
