package digi

// Configuration is the full set of knobs for one digitization job. The
// engine receives its own immutable copy at construction time; the writer
// reads the package-level value set by the host through SetConfiguration.
type Configuration struct {
	MaxEvents int    `json:"max_events" env:"TOFDIGI_MAX_EVENTS"`
	Skip      int    `json:"skip" env:"TOFDIGI_SKIP"`
	Verbosity int    `json:"verbosity" env:"TOFDIGI_VERBOSITY"`
	FileIn    string `json:"file_in" env:"TOFDIGI_FILE_IN"`
	FileOut   string `json:"file_out" env:"TOFDIGI_FILE_OUT"`
	RunNumber int    `json:"run_number" env:"TOFDIGI_RUN_NUMBER"`
	Seed      int64  `json:"seed" env:"TOFDIGI_SEED"`

	// Energy resolution: relative std = a/sqrt(E) + b + c/E.
	// c = 0 selects the simple two-term mode.
	EnergyResA float64 `json:"energy_res_a"`
	EnergyResB float64 `json:"energy_res_b"`
	EnergyResC float64 `json:"energy_res_c"`
	// Absolute time resolution, ns.
	TimeRes float64 `json:"time_res"`

	DyRangeADC    float64 `json:"dy_range_adc"`
	PedestalMean  float64 `json:"pedestal_mean"`
	PedestalSigma float64 `json:"pedestal_sigma"`
	ADCBits       int     `json:"adc_bit"`
	TDCBits       int     `json:"tdc_bit"`
	TDCResolution float64 `json:"tdc_resolution"` // ns per TDC count
	TimePeriod    float64 `json:"time_period"`    // bunch-crossing interval, ns
	Threshold     float64 `json:"threshold"`      // zero-suppression amplitude

	// Waveform grid.
	TMin  float64 `json:"t_min"`
	TMax  float64 `json:"t_max"`
	NBins int     `json:"n_bins"`

	// AC-LGAD analog pulse parameters.
	Gain        float64 `json:"gain"`
	RiseTime    float64 `json:"rise_time"`
	SigmaAnalog float64 `json:"sigma_analog"`

	SumFields      []string `json:"sum_fields"`
	CrossTalk      bool     `json:"cross_talk"`
	CrossTalkScale float64  `json:"cross_talk_scale"`

	// Cell identifier layout and barrel topology defaults. The conditions
	// database overrides the topology when available.
	CellIDEncoding string  `json:"cellid_encoding"`
	PhiField       string  `json:"phi_field"`
	ZField         string  `json:"z_field"`
	NPhi           int     `json:"n_phi"`
	SubBins        int     `json:"sub_bins"`
	BarLength      float64 `json:"bar_length"`
	Granularity    int     `json:"granularity"`

	NoDB    bool   `json:"no_db"`
	LocalDB string `json:"local_db" env:"TOFDIGI_LOCAL_DB"`
	Host    string `json:"host" env:"TOFDIGI_DB_HOST"`
	User    string `json:"user" env:"TOFDIGI_DB_USER"`
	Passwd  string `json:"pass" env:"TOFDIGI_DB_PASS"`
	DBName  string `json:"dbname" env:"TOFDIGI_DB_NAME"`

	NumWorkers       int            `json:"num_workers"`
	WriteData        bool           `json:"write_data"`
	UseBlosc         bool           `json:"use_blosc"`
	CompressionLevel int            `json:"compression_level"`
	BloscAlgorithm   BloscAlgorithm `json:"blosc_algorithm"`
	BloscShuffle     BloscShuffle   `json:"blosc_shuffle"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

// Validate checks the quantization and topology parameters the engine
// cannot run without. Everything here is fatal at initialization.
func (c Configuration) Validate() error {
	if c.ADCBits <= 0 || c.ADCBits > 32 {
		return &ErrInvalidConfig{Field: "adc_bit", Reason: "must be in (0, 32]"}
	}
	if c.TDCBits <= 0 || c.TDCBits > 32 {
		return &ErrInvalidConfig{Field: "tdc_bit", Reason: "must be in (0, 32]"}
	}
	if c.DyRangeADC <= 0 {
		return &ErrInvalidConfig{Field: "dy_range_adc", Reason: "must be positive"}
	}
	if c.TDCResolution <= 0 {
		return &ErrInvalidConfig{Field: "tdc_resolution", Reason: "must be positive"}
	}
	if c.TimePeriod <= 0 {
		return &ErrInvalidConfig{Field: "time_period", Reason: "must be positive"}
	}
	if c.TMax <= c.TMin {
		return &ErrInvalidConfig{Field: "t_max", Reason: "time window must be monotonic"}
	}
	if c.NBins <= 0 {
		return &ErrInvalidConfig{Field: "n_bins", Reason: "must be positive"}
	}
	if c.Threshold < 0 {
		return &ErrInvalidConfig{Field: "threshold", Reason: "must not be negative"}
	}
	if c.Gain <= 0 {
		return &ErrInvalidConfig{Field: "gain", Reason: "must be positive"}
	}
	if c.SigmaAnalog <= 0 {
		return &ErrInvalidConfig{Field: "sigma_analog", Reason: "must be positive"}
	}
	if c.PedestalSigma < 0 {
		return &ErrInvalidConfig{Field: "pedestal_sigma", Reason: "must not be negative"}
	}
	if c.TimeRes < 0 {
		return &ErrInvalidConfig{Field: "time_res", Reason: "must not be negative"}
	}
	if c.CrossTalk && c.CrossTalkScale < 0 {
		return &ErrInvalidConfig{Field: "cross_talk_scale", Reason: "must not be negative"}
	}
	if len(c.SumFields) == 0 {
		return &ErrInvalidConfig{Field: "sum_fields", Reason: "at least one merge field is required"}
	}
	return nil
}
