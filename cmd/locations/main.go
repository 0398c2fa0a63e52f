package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"appointment_monitor/internal/config"
	"appointment_monitor/internal/schedulerapi"
	"appointment_monitor/pkg/logger"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// programServices сопоставляет ключ программы в config.json с именем сервиса API
var programServices = map[string]string{
	"nexus":        "NEXUS",
	"global_entry": "Global Entry",
}

// LocationsFile формат locations.json
type LocationsFile struct {
	Locations map[string]map[string]int `json:"locations"`
}

func main() {
	output := flag.String("out", "locations.json", "output file")
	flag.Parse()

	_ = godotenv.Load()
	settings := config.LoadSettings()
	appLogger := logger.New(logger.LevelInfo, os.Stderr)

	client := schedulerapi.NewClient(settings.APIBaseURL, settings.HTTPTimeout, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	file := Collect(ctx, client, programServices, appLogger)

	data, err := json.MarshalIndent(file, "", "    ")
	if err != nil {
		appLogger.Fatal("Failed to encode locations", logger.Error(err))
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		appLogger.Fatal("Failed to write locations file", logger.String("path", *output), logger.Error(err))
	}

	appLogger.Info("Locations data saved", logger.String("path", *output))
}

// LocationFetcher запрашивает справочник локаций сервиса
type LocationFetcher interface {
	FetchLocations(ctx context.Context, serviceName string) ([]schedulerapi.Location, error)
}

// Collect запрашивает локации всех программ параллельно. Программа, для
// которой запрос не удался, получает пустой справочник.
func Collect(ctx context.Context, fetcher LocationFetcher, services map[string]string, log *logger.Logger) LocationsFile {
	type result struct {
		program   string
		locations map[string]int
	}

	results := make(chan result, len(services))
	var g errgroup.Group

	for program, service := range services {
		g.Go(func() error {
			log.Info("Fetching locations", logger.String("program", program))

			byName := map[string]int{}
			locations, err := fetcher.FetchLocations(ctx, service)
			if err != nil {
				log.Error("Error fetching locations", logger.String("program", program), logger.Error(err))
			}
			for _, loc := range locations {
				byName[loc.Name] = loc.ID
			}

			results <- result{program: program, locations: byName}
			return nil
		})
	}

	_ = g.Wait()
	close(results)

	file := LocationsFile{Locations: map[string]map[string]int{}}
	for r := range results {
		file.Locations[r.program] = r.locations
	}
	return file
}
