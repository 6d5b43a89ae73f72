package main

// Validation tool for the smearing model and the digitization throughput.
// Draws a large sample from the configured resolution function and compares
// the sample moments with the expectation, then times the engine on
// synthetic events.

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	digi "github.com/eic-npg/tofdigi_go/pkg"
)

var configuration digi.Configuration

type Logger struct {
	Log *slog.Logger
}

func (l Logger) Info(message string, module string) {
	l.Log.Info(message, "module", module)
}

func (l Logger) Error(message string) {
	l.Log.Error(message)
}

var logger Logger

func init() {
	logger = Logger{Log: slog.New(slog.NewTextHandler(os.Stdout, nil))}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	trials := flag.Int("trials", 100000, "Number of smearing trials")
	energy := flag.Float64("energy", 1.0, "True energy for the smearing sample")
	events := flag.Int("events", 1000, "Number of synthetic events to digitize")
	hitsPerEvent := flag.Int("hits", 50, "Hits per synthetic event")
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

	measureSmearing(*trials, *energy)
	measureThroughput(*events, *hitsPerEvent)
}

func measureSmearing(trials int, energy float64) {
	smearer := digi.Smearer{
		A:    configuration.EnergyResA,
		B:    configuration.EnergyResB,
		C:    configuration.EnergyResC,
		TRes: configuration.TimeRes,
	}
	rng := rand.New(rand.NewSource(configuration.Seed))

	var sum, sumSq float64
	for i := 0; i < trials; i++ {
		smeared, _ := smearer.Smear(rng, energy, 0)
		sum += smeared
		sumSq += smeared * smeared
	}
	mean := sum / float64(trials)
	std := math.Sqrt(sumSq/float64(trials) - mean*mean)
	expected := smearer.RelativeEnergyRes(energy) * energy

	logger.Info(fmt.Sprintf("Trials: %d at E = %f", trials, energy), "smear")
	logger.Info(fmt.Sprintf("Sample mean: %f (true %f, bias %+.3f%%)", mean, energy, 100*(mean-energy)/energy), "smear")
	logger.Info(fmt.Sprintf("Sample std:  %f (expected %f, ratio %.4f)", std, expected, std/expected), "smear")
}

func measureThroughput(events int, hitsPerEvent int) {
	coder, err := digi.NewCellIDCoder(configuration.CellIDEncoding)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	topology := digi.Topology{
		NPhi:        configuration.NPhi,
		SubBins:     configuration.SubBins,
		BarLength:   configuration.BarLength,
		Granularity: configuration.Granularity,
	}
	defaults := digi.ChannelRecord{
		PedestalMean:  configuration.PedestalMean,
		PedestalSigma: configuration.PedestalSigma,
	}
	geo, err := digi.NewGeometry(topology, coder, configuration.PhiField, configuration.ZField, defaults)
	if err != nil {
		logger.Error(err.Error())
		return
	}
	engine, err := digi.NewDigitizer(configuration, geo, configuration.Seed)
	if err != nil {
		logger.Error(err.Error())
		return
	}

	rng := rand.New(rand.NewSource(configuration.Seed))
	cellsPerBar := topology.CellsPerBar()

	totalHits := 0
	start := time.Now()
	for evt := 0; evt < events; evt++ {
		hits := make([]digi.SimHit, hitsPerEvent)
		for i := range hits {
			id, _ := coder.Encode(map[string]uint64{
				configuration.PhiField: uint64(rng.Intn(topology.NPhi)),
				configuration.ZField:   uint64(rng.Intn(cellsPerBar)),
			})
			hits[i] = digi.SimHit{
				CellID: id,
				EDep:   0.5 + rng.Float64(),
				Time:   configuration.TMin + rng.Float64()*10,
			}
		}
		engine.Reseed(configuration.Seed + int64(evt))
		rawHits, _ := engine.Execute(hits)
		totalHits += len(rawHits)
	}
	duration := time.Since(start)

	logger.Info(fmt.Sprintf("Digitized %d events (%d hits each) in %d ms", events, hitsPerEvent, duration.Milliseconds()), "throughput")
	logger.Info(fmt.Sprintf("Raw hits produced: %d", totalHits), "throughput")
	if events > 0 {
		perEvent := float64(duration.Microseconds()) / float64(events)
		logger.Info(fmt.Sprintf("Average: %.1f us/event", perEvent), "throughput")
	}
}
