package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	digi "github.com/eic-npg/tofdigi_go/pkg"
)

// LoadConfiguration reads the JSON configuration file over the built-in
// defaults, then applies TOFDIGI_* environment overrides on top.
func LoadConfiguration(filename string) (digi.Configuration, error) {
	var config digi.Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Verbosity = 0
	config.Skip = 0
	config.RunNumber = 0
	config.Seed = 1

	config.EnergyResA = 0.1
	config.EnergyResB = 0.01
	config.EnergyResC = 0.0
	config.TimeRes = 0.025

	config.DyRangeADC = 10000.0
	config.PedestalMean = 10.0
	config.PedestalSigma = 2.0
	config.ADCBits = 8
	config.TDCBits = 10
	config.TDCResolution = 0.024414
	config.TimePeriod = 25.0
	config.Threshold = 1.0

	config.TMin = 0.1
	config.TMax = 100.0
	config.NBins = 10000

	config.Gain = 80.0
	config.RiseTime = 0.45
	config.SigmaAnalog = 0.293951

	config.SumFields = []string{"system", "layer", "phi", "z"}
	config.CrossTalk = false
	config.CrossTalkScale = 0.1

	config.CellIDEncoding = "system:8,layer:4,phi:10,z:12"
	config.PhiField = "phi"
	config.ZField = "z"
	config.NPhi = 64
	config.SubBins = 4
	config.BarLength = 3.2
	config.Granularity = 4

	config.NoDB = false
	config.Host = "eicdb.bnl.local"
	config.User = "tofreader"
	config.Passwd = "readonly"
	config.DBName = "BTOF"

	config.NumWorkers = 1
	config.WriteData = true
	config.CompressionLevel = 4

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return config, err
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return config, err
		}
	}
	if err := env.Parse(&config); err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config digi.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Local DB: %s", config.LocalDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Energy resolution: %f/sqrt(E) + %f + %f/E", config.EnergyResA, config.EnergyResB, config.EnergyResC), "config")
	logger.Info(fmt.Sprintf("Time resolution: %f ns", config.TimeRes), "config")
	logger.Info(fmt.Sprintf("ADC: %d bit, dynamic range %f", config.ADCBits, config.DyRangeADC), "config")
	logger.Info(fmt.Sprintf("TDC: %d bit, %f ns per count", config.TDCBits, config.TDCResolution), "config")
	logger.Info(fmt.Sprintf("Pedestal: %f +- %f", config.PedestalMean, config.PedestalSigma), "config")
	logger.Info(fmt.Sprintf("Threshold: %f", config.Threshold), "config")
	logger.Info(fmt.Sprintf("Time window: [%f, %f] ns, %d bins", config.TMin, config.TMax, config.NBins), "config")
	logger.Info(fmt.Sprintf("Sum fields: %v", config.SumFields), "config")
	logger.Info(fmt.Sprintf("Cross talk: %t (scale %f)", config.CrossTalk, config.CrossTalkScale), "config")
	logger.Info(fmt.Sprintf("Topology: %d phi x %d sub-bins x granularity %d", config.NPhi, config.SubBins, config.Granularity), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
}
