package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/gradlinkph/gradlink-backend/internal/logger"
)

// SafeGo запускает горутину с перехватом panic. Паника фоновой задачи
// не должна ронять процесс: она логируется вместе со стеком.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и перехватом panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		fn(ctx)
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("goroutine: перехвачена panic: %v\n%s", r, debug.Stack())
		}
	}
}
