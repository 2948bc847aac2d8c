package weave

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Trace returns around advice that logs each call as "[log] <signature>"
// before it runs and its outcome afterwards.
func Trace(logger zerolog.Logger) Advice {
	return func(ctx context.Context, jp *JoinPoint) (any, error) {
		sig := jp.Signature()
		logger.Info().Str("id", jp.ID().String()).Msgf("[log] %s", sig)

		start := time.Now()
		result, err := jp.Proceed(ctx)

		event := logger.Debug()
		if err != nil {
			event = logger.Warn().Err(err)
		}
		event.Str("id", jp.ID().String()).
			Dur("elapsed", time.Since(start)).
			Msgf("[log] %s returned", sig)
		return result, err
	}
}
