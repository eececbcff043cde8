package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"merchantfeed/internal/modkit"
	"merchantfeed/internal/modkit/module"
	"merchantfeed/internal/platform/config"
	"merchantfeed/internal/platform/logger"
	"merchantfeed/internal/platform/store"

	fdom "merchantfeed/internal/services/feedimport/domain"
	feedimport "merchantfeed/internal/services/feedimport/module"
)

func main() {
	var (
		fMerchant = flag.String("merchant", "", "import this merchant once and exit instead of polling the queue")
		fVariant  = flag.String("variant", "primary", "variant for -merchant: primary or unmatched")
		fConc     = flag.Int("concurrency", 0, "worker concurrency (overrides CORE_FEEDIMPORT_WORKER_CONCURRENCY)")
		fBatch    = flag.Int("batch", 0, "jobs leased per poll (overrides CORE_FEEDIMPORT_QUEUE_TAKE_BATCH)")
	)
	flag.Parse()

	root := config.New()
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromConfig(root, "worker"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.FromStore(st, root)
	deps.Log = *l

	mod := feedimport.New(deps, feedimport.Options{
		WorkerConcurrency: *fConc,
		QueueTakeBatch:    *fBatch,
	})
	module.Register(mod.Name(), mod.Ports())
	ports := module.MustPortsOf[feedimport.Ports](mod)

	if *fMerchant != "" {
		v, ok := fdom.ParseVariant(*fVariant)
		if !ok {
			l.Fatal().Str("variant", *fVariant).Msg("unknown variant")
		}
		if err := ports.Worker.RunOnce(ctx, *fMerchant, v); err != nil {
			l.Fatal().Err(err).Str("merchant_id", *fMerchant).Str("kind", fdom.ErrorKind(err)).Msg("import failed")
		}
		l.Info().Str("merchant_id", *fMerchant).Str("variant", string(v)).Msg("import finished")
		return
	}

	l.Info().Int("concurrency", mod.Options().WorkerConcurrency).Msg("feed import worker started")
	if err := ports.Worker.Run(ctx); err != nil && ctx.Err() == nil {
		l.Fatal().Err(err).Msg("feed import worker failed")
	}
}
