package demo

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/toyz/weave/pkg/pointcut"
	"github.com/toyz/weave/pkg/weave"
)

// Advice names registered by New
const (
	LogAdvice = "log"
	TxAdvice  = "tx"
)

// Manifest binds the log aspect to every method of the order package and the
// transaction aspect to its services only. The transaction aspect has the lower
// order and therefore wraps the log aspect.
func Manifest() weave.Manifest {
	return weave.Manifest{
		Pointcuts: map[string]string{
			"allOrder":           "execution(* *..demo.order..*(..))",
			"allService":         "execution(* *..*Service.*(..))",
			"allOrderAndService": "allOrder() && allService()",
		},
		Aspects: []weave.Aspect{
			{Name: "log", Advice: LogAdvice, Pointcut: "allOrder()", Order: 2},
			{Name: "tx", Advice: TxAdvice, Pointcut: "allOrderAndService()", Order: 1},
		},
	}
}

// shortName renders a signature as Type.Method
func shortName(sig pointcut.MethodSignature) string {
	typ := sig.DeclaringType
	if i := strings.LastIndex(typ, "."); i >= 0 {
		typ = typ[i+1:]
	}
	return typ + "." + sig.Name
}

// Log logs every call before proceeding
func Log(logger zerolog.Logger) weave.Advice {
	return func(ctx context.Context, jp *weave.JoinPoint) (any, error) {
		logger.Info().Str("id", jp.ID().String()).Msgf("[log] %s", shortName(jp.Signature()))
		return jp.Proceed(ctx)
	}
}

// Tx runs a call inside a simulated transaction that is committed on success,
// rolled back on error and released in either case.
func Tx(logger zerolog.Logger) weave.Advice {
	return func(ctx context.Context, jp *weave.JoinPoint) (any, error) {
		name := shortName(jp.Signature())
		defer func() {
			logger.Info().Msgf("[resource release] %s", name)
		}()

		logger.Info().Msgf("[transaction start] %s", name)
		result, err := jp.Proceed(ctx)
		if err != nil {
			logger.Warn().Err(err).Msgf("[transaction rollback] %s", name)
			return nil, err
		}
		logger.Info().Msgf("[transaction commit] %s", name)
		return result, nil
	}
}
