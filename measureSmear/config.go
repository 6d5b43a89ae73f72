package main

import (
	"encoding/json"
	"os"

	"github.com/caarlos0/env/v11"
	digi "github.com/eic-npg/tofdigi_go/pkg"
)

// LoadConfiguration mirrors the digitizer defaults; the tool only needs the
// resolution, pulse and topology parameters.
func LoadConfiguration(filename string) (digi.Configuration, error) {
	var config digi.Configuration

	config.MaxEvents = 1000000000
	config.Verbosity = 0
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
	config.CrossTalkScale = 0.1

	config.CellIDEncoding = "system:8,layer:4,phi:10,z:12"
	config.PhiField = "phi"
	config.ZField = "z"
	config.NPhi = 64
	config.SubBins = 4
	config.BarLength = 3.2
	config.Granularity = 4

	config.NoDB = true
	config.NumWorkers = 1
	config.WriteData = false

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
