package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/mpetstudy/internal/ctxlog"
)

// ResolveCode loads the code registered as want.FullLabel(). When it does not
// exist it is stored once with want's settings. Callers confirm the computer
// first; StoreCode still rejects a code whose computer is missing. Any other
// lookup error is returned wrapped.
func ResolveCode(ctx context.Context, eng Engine, want *Code) (*Code, error) {
	logger := ctxlog.FromContext(ctx).With("code", want.FullLabel())

	code, err := eng.LoadCode(ctx, want.FullLabel())
	if err == nil {
		logger.Debug("Code already registered.")
		return code, nil
	}
	if !errors.Is(err, ErrNotExist) {
		return nil, fmt.Errorf("failed to load code %s: %w", want.FullLabel(), err)
	}

	logger.Info("Code not found, registering it.", "exec", want.ExecPath, "plugin", want.PluginName)
	code, err = eng.StoreCode(ctx, want)
	if err != nil {
		return nil, fmt.Errorf("failed to register code %s: %w", want.FullLabel(), err)
	}
	return code, nil
}
