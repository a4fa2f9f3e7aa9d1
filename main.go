package main

import (
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/metroequip/rental-desk/agent/contract"
	inventoryx "github.com/metroequip/rental-desk/agent/inventory"
	rentalx "github.com/metroequip/rental-desk/agent/rental"
	toolx "github.com/metroequip/rental-desk/agent/tool"
	verificationx "github.com/metroequip/rental-desk/agent/verification"
	configx "github.com/metroequip/rental-desk/pkg/config"
	_ "github.com/metroequip/rental-desk/pkg/logger/autoload"
	openrouterx "github.com/metroequip/rental-desk/pkg/openrouter"
)

type AppConfig struct {
	CompanyName      string `split_words:"true" default:"Metro Equipment Rentals"`
	InventoryBackend string `split_words:"true" default:"csv"`
	MirrorToCSV      bool   `split_words:"true" default:"false"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	primary, mirror := buildBackends(appCfg)

	storeCfg := configx.MustNew[inventoryx.StoreConfig]("INVENTORY")
	opts := []inventoryx.StoreOption{}
	if mirror != nil {
		opts = append(opts, inventoryx.WithMirror(mirror))
	}
	store, err := inventoryx.NewStore(primary, *storeCfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build inventory store")
	}

	var verifier contractx.Verifier = verificationx.NewStubVerifier()
	svc, err := rentalx.NewService(store, verifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build rental service")
	}
	_ = svc

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if client := openrouterx.NewClient(*openRouterCfg); client == nil {
		log.Fatal().Msg("failed to initialize openrouter client")
	}

	log.Info().
		Str("company", appCfg.CompanyName).
		Str("backend", primary.Name()).
		Int("tools", len(toolx.Infos())).
		Msg("rental desk core initialized")
}

func buildBackends(appCfg *AppConfig) (primary, mirror inventoryx.Backend) {
	switch strings.ToLower(strings.TrimSpace(appCfg.InventoryBackend)) {
	case "sheet":
		sheetCfg := configx.MustNew[inventoryx.SheetConfig]("SHEET")
		sheet, err := inventoryx.NewSheetBackend(*sheetCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build sheet backend")
		}
		if appCfg.MirrorToCSV {
			csvCfg := configx.MustNew[inventoryx.CSVConfig]("INVENTORY_CSV")
			csv, err := inventoryx.NewCSVBackend(*csvCfg)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to build csv mirror backend")
			}
			return sheet, csv
		}
		return sheet, nil

	case "postgres":
		pgCfg := configx.MustNew[inventoryx.PostgresConfig]("POSTGRES")
		pg, err := inventoryx.NewPostgresBackend(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build postgres backend")
		}
		return pg, nil

	default:
		csvCfg := configx.MustNew[inventoryx.CSVConfig]("INVENTORY_CSV")
		csv, err := inventoryx.NewCSVBackend(*csvCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build csv backend")
		}
		return csv, nil
	}
}
