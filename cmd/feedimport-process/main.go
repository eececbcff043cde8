// Command feedimport-process is the last stage of an import pipeline
// it reads the decompressed CSV feed from stdin and exports its offers
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"merchantfeed/internal/modkit"
	"merchantfeed/internal/platform/config"
	perr "merchantfeed/internal/platform/errors"
	"merchantfeed/internal/platform/logger"
	"merchantfeed/internal/platform/store"

	fdom "merchantfeed/internal/services/feedimport/domain"
	dom "merchantfeed/internal/services/rowprocess/domain"
	rowprocess "merchantfeed/internal/services/rowprocess/module"
	"merchantfeed/internal/services/rowprocess/service"
)

func main() {
	var (
		fMerchant = flag.String("merchant", "", "merchant id")
		fStatsID  = flag.String("stats-id", "", "import statistics id, empty when the import has none")
		fVariant  = flag.String("variant", "primary", "primary or unmatched")
	)
	flag.Parse()

	l := logger.Get()

	if *fMerchant == "" {
		l.Fatal().Msg("-merchant is required")
	}
	v, ok := fdom.ParseVariant(*fVariant)
	if !ok {
		l.Fatal().Str("variant", *fVariant).Msg("unknown variant")
	}
	var statsID int64
	if *fStatsID != "" {
		id, err := strconv.ParseInt(*fStatsID, 10, 64)
		if err != nil || id < 0 {
			l.Fatal().Str("stats_id", *fStatsID).Msg("stats id must be a non negative integer")
		}
		statsID = id
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromConfig(root, "process"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}

	mod := rowprocess.New(modkit.FromStore(st, root), rowprocess.Options{})
	runner := mod.Ports().(rowprocess.Ports).Runner

	sum, err := runner.Run(ctx, service.RunInput{
		MerchantID: *fMerchant,
		StatsID:    statsID,
		Variant:    v,
	}, bufio.NewReaderSize(os.Stdin, 1<<16))

	if cerr := st.Close(context.Background()); cerr != nil {
		l.Error().Err(cerr).Msg("failed to close store")
	}

	if err != nil {
		l.Fatal().Err(err).Str("merchant_id", *fMerchant).Msg("row processing could not start")
	}
	ev := l.Info()
	if sum.Aborted || sum.Err != nil {
		ev = l.Error().Err(sum.Err)
	}
	ev.Str("merchant_id", *fMerchant).
		Int64("stats_id", statsID).
		Int64("processed", sum.Processed).
		Int64("failed", sum.Failed).
		Bool("aborted", sum.Aborted).
		Msg("row processing finished")

	if code := exitStatus(sum); code != 0 {
		os.Exit(code)
	}
}

// exitStatus maps a run summary to the process exit status the planner reads back
func exitStatus(sum dom.Summary) int {
	switch {
	case perr.IsCode(sum.Err, perr.ErrorCodeInvalidFeed):
		return fdom.ExitInvalidFeed
	case sum.Aborted || sum.Err != nil:
		return 1
	}
	return 0
}
