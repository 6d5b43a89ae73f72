package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	digi "github.com/eic-npg/tofdigi_go/pkg"
	sqlx "github.com/jmoiron/sqlx"
)

var dbConn *sqlx.DB
var configuration digi.Configuration

var (
	logger         Logger
	VerbosityLevel int
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		return
	}
	digi.SetConfiguration(configuration)
	digi.SetLogger(logger)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		return
	}
	defer file.Close()

	evtCount, runNumber := countEvents(file)
	if configuration.RunNumber > 0 {
		runNumber = configuration.RunNumber
	}
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Number of events: %d (run %d)", evtCount, runNumber)
		logger.Info(message, "main")
	}

	geo, err := buildGeometry(runNumber)
	if err != nil {
		message := fmt.Errorf("Error building geometry: %w", err)
		logger.Error(message.Error())
		return
	}
	if dbConn != nil {
		defer dbConn.Close()
	}

	// Validate the quantization parameters before starting any worker
	if _, err := digi.NewDigitizer(configuration, geo, configuration.Seed); err != nil {
		message := fmt.Errorf("Error building digitizer: %w", err)
		logger.Error(message.Error())
		return
	}

	fileReader := NewFileReader(file)
	evtsToRead := numberOfEventsToProcess(evtCount, configuration.Skip, configuration.MaxEvents)

	start := time.Now()
	jobs := make(chan WorkerData, 100)
	results := make(chan digi.EventType, 100)

	for w := 1; w <= configuration.NumWorkers; w++ {
		go worker(w, geo, jobs, results)
	}
	go sendEventsToWorkers(fileReader, jobs)

	events := make([]digi.EventType, 0, evtsToRead)
	var totals digi.DigiStats
	for event := range results {
		if !event.Error {
			totals.Add(event.Stats)
		}
		events = append(events, event)
		if len(events) == evtsToRead {
			break
		}
	}
	// Events arrive in worker completion order, the file is written in
	// event-id order
	sort.Slice(events, func(i, j int) bool {
		return events[i].EventID < events[j].EventID
	})

	if configuration.WriteData {
		writer := digi.NewWriter(configuration.FileOut)
		for _, event := range events {
			digi.ProcessDigitizedEvent(event, configuration, writer)
		}
		if err := writer.Close(); err != nil {
			logger.Error(err.Error())
		}
	}

	duration := time.Since(start)
	message := fmt.Sprintf("Processed %d events in %d ms", len(events), duration.Milliseconds())
	logger.Info(message, "main")
	message = fmt.Sprintf("Hits in: %d, out of window: %d, unknown channels: %d, saturated: %d, suppressed: %d",
		totals.HitsIn, totals.HitsOutOfWindow, totals.UnknownChannels, totals.Saturated, totals.Suppressed)
	logger.Info(message, "main")
}

// buildGeometry assembles the one-time geometry handle: cell-id codec plus
// topology, with the conditions database overriding the configured defaults
// when available.
func buildGeometry(runNumber int) (*digi.Geometry, error) {
	coder, err := digi.NewCellIDCoder(configuration.CellIDEncoding)
	if err != nil {
		return nil, err
	}

	topology := digi.Topology{
		NPhi:        configuration.NPhi,
		SubBins:     configuration.SubBins,
		BarLength:   configuration.BarLength,
		Granularity: configuration.Granularity,
	}

	if !configuration.NoDB {
		if configuration.LocalDB != "" {
			dbConn, err = digi.OpenLocalDatabase(configuration.LocalDB)
		} else {
			dbConn, err = digi.ConnectToDatabase(configuration.User, configuration.Passwd,
				configuration.Host, configuration.DBName)
		}
		if err != nil {
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		topology, err = digi.TopologyFromDB(dbConn, runNumber)
		if err != nil {
			return nil, err
		}
	}

	defaults := digi.ChannelRecord{
		PedestalMean:  configuration.PedestalMean,
		PedestalSigma: configuration.PedestalSigma,
	}
	geo, err := digi.NewGeometry(topology, coder, configuration.PhiField, configuration.ZField, defaults)
	if err != nil {
		return nil, err
	}

	if !configuration.NoDB {
		if err := digi.LoadConditions(dbConn, runNumber, geo); err != nil {
			return nil, err
		}
	}
	return geo, nil
}

func numberOfEventsToProcess(fileEvtCount int, skipEvts int, maxEvtCount int) int {
	evtsToRead := fileEvtCount
	if evtsToRead > maxEvtCount {
		evtsToRead = maxEvtCount
	}
	evtsToRead -= skipEvts
	if evtsToRead < 0 {
		evtsToRead = 0
	}
	return evtsToRead
}
